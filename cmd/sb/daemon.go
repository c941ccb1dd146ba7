package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/switchboard/internal/dashboard"
	"github.com/zulandar/switchboard/internal/dispatch"
)

func newDaemonCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the Switchboard daemon",
		Long:  "Owns the delivery pipeline: runs the scheduler worker pool, accepts submissions over HTTP, serves the status dashboard, and emits a periodic health digest until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, gormDB, err := loadEnvironment(configPath)
			if err != nil {
				return err
			}

			// Surface registry problems at startup; bad coordinates are a
			// diagnostic, not fatal, since deliveries fall back to the mailbox.
			out := cmd.OutOrStdout()
			if issues := reg.ValidateAll(); len(issues) > 0 {
				fmt.Fprintf(out, "Registry has %d issues (run `sb validate` for details)\n", len(issues))
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			svc, err := dispatch.NewService(ctx, dispatch.ServiceOpts{
				Config:   cfg,
				Registry: reg,
				DB:       gormDB,
				Out:      out,
			})
			if err != nil {
				return err
			}
			defer svc.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
				cancel()
			}()

			if cfg.Digest.Schedule != "" {
				go runDigestLoop(ctx, gormDB, reg, cfg.Digest.Schedule, out)
			}

			if port <= 0 {
				port = cfg.Dashboard.Port
			}
			return dashboard.Start(ctx, dashboard.StartOpts{
				DB:       gormDB,
				Registry: reg,
				Service:  svc,
				Port:     port,
				Out:      out,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	cmd.Flags().IntVar(&port, "port", 0, "dashboard port (overrides config)")
	return cmd
}
