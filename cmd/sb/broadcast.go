package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/dashboard"
	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/models"
)

func newBroadcastCmd() *cobra.Command {
	var (
		configPath string
		from       string
		priority   string
		tags       []string
	)

	cmd := &cobra.Command{
		Use:   "broadcast <message>",
		Short: "Send a message to every registered agent",
		Long:  "Fans a message out to all agents as independent deliveries; one agent's failure never blocks the others. Routes through a running daemon when one is listening.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx := cmd.Context()
			results, viaDaemon, err := submitViaDaemon(ctx, cfg, dashboard.SubmitRequest{
				Body:     args[0],
				Sender:   from,
				Priority: priority,
				Tags:     tags,
			})
			if err != nil {
				return err
			}

			if !viaDaemon {
				svc, err := openPipeline(ctx, configPath, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				defer svc.Stop()

				results, err = svc.Broadcast(ctx, args[0], dispatch.SendOpts{
					Sender:   from,
					Priority: models.ParsePriority(priority),
					Tags:     tags,
				})
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				printResult(out, res)
			}

			if code := dispatch.CodeFor(results); code != dispatch.CodeOK {
				failed := 0
				for _, r := range results {
					if r.State == models.StateFailed {
						failed++
					}
				}
				fmt.Fprintf(out, "%d of %d deliveries failed\n", failed, len(results))
				return exitWith(code, "partial broadcast failure")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	cmd.Flags().StringVar(&from, "from", "operator", "sender id")
	cmd.Flags().StringVar(&priority, "priority", "normal", "message priority (urgent, high, normal)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "message tag (repeatable)")
	return cmd
}
