package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/dashboard"
	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/router"
)

func newSendCmd() *cobra.Command {
	var (
		configPath string
		from       string
		priority   string
		tags       []string
		urgent     bool
	)

	cmd := &cobra.Command{
		Use:   "send <agent-id> <message>",
		Short: "Send a message to an agent",
		Long:  "Delivers a message to one agent via simulated UI input, falling back to its file mailbox. Routes through a running daemon when one is listening; otherwise delivers through a standalone pipeline.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx := cmd.Context()
			results, viaDaemon, err := submitViaDaemon(ctx, cfg, dashboard.SubmitRequest{
				AgentID:        args[0],
				Body:           args[1],
				Sender:         from,
				Priority:       priority,
				Tags:           tags,
				UrgentOverride: urgent,
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

				res, err := svc.Send(ctx, args[0], args[1], dispatch.SendOpts{
					Sender:         from,
					Priority:       models.ParsePriority(priority),
					Tags:           tags,
					UrgentOverride: urgent,
				})
				if err != nil {
					return err
				}
				results = []router.Result{res}
			}

			printResult(cmd.OutOrStdout(), results[0])
			if code := dispatch.CodeFor(results); code != dispatch.CodeOK {
				return exitWith(code, "delivery to %s failed", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	cmd.Flags().StringVar(&from, "from", "operator", "sender id")
	cmd.Flags().StringVar(&priority, "priority", "normal", "message priority (urgent, high, normal)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "message tag (repeatable)")
	cmd.Flags().BoolVar(&urgent, "urgent-override", false, "bypass duplicate suppression for an emergency resend")
	return cmd
}

// printResult writes one per-recipient outcome.
func printResult(out io.Writer, res router.Result) {
	switch res.State {
	case models.StateDelivered:
		fmt.Fprintf(out, "Delivered to %s via %s (message %s)\n", res.AgentID, res.Channel, res.MessageID)
	case models.StateDuplicate:
		fmt.Fprintf(out, "Duplicate for %s, suppressed (message %s)\n", res.AgentID, res.MessageID)
	default:
		fmt.Fprintf(out, "FAILED for %s: %s (%s)\n", res.AgentID, res.Detail, res.Reason)
	}
}
