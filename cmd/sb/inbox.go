package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/mailbox"
)

func newInboxCmd() *cobra.Command {
	var (
		configPath string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "inbox <agent-id>",
		Short: "View an agent's mailbox",
		Long:  "Lists messages delivered to an agent's file mailbox, oldest first. Use --watch to follow new deliveries.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			agentID := args[0]
			mbox := mailbox.NewChannel(cfg.InboxRoot)
			out := cmd.OutOrStdout()

			entries, err := mbox.List(agentID)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "Inbox for %s is empty\n", agentID)
			}
			for _, e := range entries {
				printEntry(out, e)
			}

			if !watch {
				return nil
			}

			fmt.Fprintf(out, "Watching inbox for %s...\n", agentID)
			return mbox.Watch(cmd.Context(), agentID, func(e *mailbox.Entry) {
				printEntry(out, e)
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	cmd.Flags().BoolVar(&watch, "watch", false, "follow new deliveries")
	return cmd
}

func printEntry(out io.Writer, e *mailbox.Entry) {
	tags := ""
	if len(e.Tags) > 0 {
		tags = fmt.Sprintf(" [%v]", e.Tags)
	}
	fmt.Fprintf(out, "%s  %s  from %s%s\n  %s\n",
		e.Date.Format("2006-01-02 15:04:05"), e.Priority, e.From, tags, e.Body)
}
