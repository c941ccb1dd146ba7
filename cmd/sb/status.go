package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/switchboard/internal/health"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-agent delivery health",
		Long:  "Displays each agent's delivery health (healthy, degraded, unreachable) rebuilt from the delivery log, plus aggregate counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, gormDB, err := loadEnvironment(configPath)
			if err != nil {
				return err
			}

			agg, err := health.Rebuild(gormDB, reg.AgentIDs())
			if err != nil {
				return err
			}

			printSnapshot(cmd.OutOrStdout(), agg.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	return cmd
}

func printSnapshot(out io.Writer, snap health.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tSTATUS\tCONSECUTIVE FAILURES\tLAST SEEN")
	for _, h := range snap.Agents {
		lastSeen := "never"
		if !h.LastSeen.IsZero() {
			lastSeen = h.LastSeen.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", h.AgentID, h.Status, h.ConsecutiveFailures, lastSeen)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d healthy, %d degraded, %d unreachable\n",
		snap.Healthy, snap.Degraded, snap.Unreachable)
}
