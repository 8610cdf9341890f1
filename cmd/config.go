package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tool-level settings",
	Long: `Manage tool-level settings stored in the user config dir.

Keys:
  default_server   Server used when --server is omitted
  sources_url      Sources mirror override
  home             Install root override (default /var/lib/etsm)`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show a setting, or all settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := toolConfig.Get()
		if len(args) == 0 {
			fmt.Printf("default_server: %s\n", orDash(cfg.DefaultServer))
			fmt.Printf("sources_url:    %s\n", orDash(cfg.SourcesURL))
			fmt.Printf("home:           %s\n", orDash(cfg.Home))
			return nil
		}
		switch args[0] {
		case "default_server":
			fmt.Println(orDash(cfg.DefaultServer))
		case "sources_url":
			fmt.Println(orDash(cfg.SourcesURL))
		case "home":
			fmt.Println(orDash(cfg.Home))
		default:
			return fmt.Errorf("unknown config key: %s", args[0])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "default_server":
			toolConfig.SetDefaultServer(args[1])
		case "sources_url":
			toolConfig.SetSourcesURL(args[1])
		case "home":
			toolConfig.SetHome(args[1])
		default:
			return fmt.Errorf("unknown config key: %s", args[0])
		}
		if err := toolConfig.Save(); err != nil {
			return fmt.Errorf("failed to save tool config: %w", err)
		}
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
