package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/ui/styles"
)

var (
	configFromTemplate string
	configActivate     bool
	configCVarFlags    []string
	mapvoteRealNames   bool
)

var serverConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage config files on this server",
	Long: `Manage config files on this server.

Configs live in the server's private config directory and are
activated by symlinking them into etmain. Edits are idempotent:
setting the same cvar twice leaves a single canonical line.

Examples:
  etsm server config create match --from-template etl_comp --activate
  etsm server config set etl_server sv_hostname "My Server"
  etsm server config get etl_server sv_hostname
  etsm server config mapvote`,
}

var serverConfigCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a config, optionally from a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}

		cvars := make(map[string]string)
		for _, kv := range configCVarFlags {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid --cvar %q, want name=value", kv)
			}
			cvars[key] = value
		}

		if err := m.CreateConfig(args[0], configFromTemplate, cvars, configActivate); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		fmt.Println(styles.FormatSuccess("Config " + args[0] + " created"))
		return nil
	},
}

var serverConfigListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configs and their activation state",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		configs, err := m.ListConfigs()
		if err != nil {
			return fmt.Errorf("failed to list configs: %w", err)
		}
		if len(configs) == 0 {
			fmt.Println("No configs yet")
			fmt.Println("\nCreate one with: etsm server config create <name>")
			return nil
		}
		for _, name := range configs {
			fmt.Printf("%s %s\n", name, styles.FormatActivation(m.ConfigActivated(name)))
		}
		return nil
	},
}

var serverConfigTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List config templates from the sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		templates, err := getSources().ListTemplates()
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}
		if len(templates) == 0 {
			fmt.Println("No templates downloaded")
			fmt.Println("\nSync sources with: etsm sources update")
			return nil
		}
		for _, name := range templates {
			fmt.Println(name)
		}
		return nil
	},
}

var serverConfigActivateCmd = &cobra.Command{
	Use:   "activate <name>",
	Short: "Symlink a config into etmain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.ActivateConfig(args[0])
	},
}

var serverConfigDeactivateCmd = &cobra.Command{
	Use:   "deactivate <name>",
	Short: "Remove a config's etmain symlink",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.DeactivateConfig(args[0])
	},
}

var serverConfigSetCmd = &cobra.Command{
	Use:   "set <config> <cvar> <value>",
	Short: "Set a cvar in a config",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.UpdateCVars(args[0], map[string]string{args[1]: args[2]})
	},
}

var serverConfigGetCmd = &cobra.Command{
	Use:   "get <config> <cvar>",
	Short: "Show a cvar's current value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		value, found, err := m.GetCVar(args[0], args[1])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("cvar %s not set in %s", args[1], args[0])
		}
		fmt.Println(value)
		return nil
	},
}

var serverConfigSetBotCmd = &cobra.Command{
	Use:   "set-bot <config> <setting> <value>",
	Short: "Set a bot setting in a config",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.UpdateBots(args[0], map[string]string{args[1]: args[2]})
	},
}

var serverConfigCVarsCmd = &cobra.Command{
	Use:   "cvars <config>",
	Short: "List cvars set in a config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		names, err := m.ListCVars(args[0])
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var serverConfigExecsCmd = &cobra.Command{
	Use:   "execs <config>",
	Short: "List exec lines in a config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		names, err := m.ListExecs(args[0])
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var serverConfigExecCmd = &cobra.Command{
	Use:   "exec <config> <target>",
	Short: "Chain another config via an exec line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.AddExec(args[0], args[1])
	},
}

var serverConfigRemoveExecCmd = &cobra.Command{
	Use:   "remove-exec <config> <target>",
	Short: "Remove an exec line from a config",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.RemoveExec(args[0], args[1])
	},
}

var serverConfigMapvoteCmd = &cobra.Command{
	Use:   "mapvote",
	Short: "Generate and activate the mapvote cycle config",
	Long: `Generate mapvotecycle.cfg from the maps currently enabled on
this server and activate it. A previously customized cycle is backed
up first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		if err := m.BuildMapvoteCycle(mapvoteRealNames); err != nil {
			return fmt.Errorf("failed to build mapvote cycle: %w", err)
		}
		fmt.Println(styles.FormatSuccess("Mapvote cycle rebuilt"))
		return nil
	},
}

func init() {
	serverConfigCreateCmd.Flags().StringVar(&configFromTemplate, "from-template", "", "Start from a sources template")
	serverConfigCreateCmd.Flags().BoolVar(&configActivate, "activate", false, "Activate the config after creating it")
	serverConfigCreateCmd.Flags().StringArrayVar(&configCVarFlags, "cvar", nil, "Initial cvar as name=value (repeatable)")
	serverConfigMapvoteCmd.Flags().BoolVar(&mapvoteRealNames, "real-names", false, "Use level names read from the map archives")

	serverConfigCmd.AddCommand(serverConfigCreateCmd)
	serverConfigCmd.AddCommand(serverConfigListCmd)
	serverConfigCmd.AddCommand(serverConfigTemplatesCmd)
	serverConfigCmd.AddCommand(serverConfigActivateCmd)
	serverConfigCmd.AddCommand(serverConfigDeactivateCmd)
	serverConfigCmd.AddCommand(serverConfigSetCmd)
	serverConfigCmd.AddCommand(serverConfigGetCmd)
	serverConfigCmd.AddCommand(serverConfigSetBotCmd)
	serverConfigCmd.AddCommand(serverConfigCVarsCmd)
	serverConfigCmd.AddCommand(serverConfigExecsCmd)
	serverConfigCmd.AddCommand(serverConfigExecCmd)
	serverConfigCmd.AddCommand(serverConfigRemoveExecCmd)
	serverConfigCmd.AddCommand(serverConfigMapvoteCmd)
	serverCmd.AddCommand(serverConfigCmd)
}
