package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/registry"
)

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the coordinate registry",
		Long:  "Checks every agent's UI target for missing points, duplicate points, and out-of-range coordinates. Exits non-zero when issues are found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return exitWith(dispatch.CodeInvalidConfig, "load config: %v", err)
			}
			reg, err := registry.Load(cfg.RegistryPath, cfg.Screen.Width, cfg.Screen.Height)
			if err != nil {
				return exitWith(dispatch.CodeInvalidConfig, "load registry: %v", err)
			}

			out := cmd.OutOrStdout()
			issues := reg.ValidateAll()
			if len(issues) == 0 {
				fmt.Fprintf(out, "Registry OK: %d agents\n", len(reg.AgentIDs()))
				return nil
			}

			for _, issue := range issues {
				fmt.Fprintf(out, "%s\n", issue)
			}
			return exitWith(dispatch.CodeInvalidConfig, "%d registry issues", len(issues))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	return cmd
}
