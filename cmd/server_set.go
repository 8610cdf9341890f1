package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var serverSetIPCmd = &cobra.Command{
	Use:   "set-ip <ip>",
	Short: "Set the bind address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.SetIP(args[0])
	},
}

var serverSetPortCmd = &cobra.Command{
	Use:   "set-port <port>",
	Short: "Set the listen port",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.Atoi(args[0])
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port: %s", args[0])
		}
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.SetPort(port)
	},
}

var serverSetPasswordCmd = &cobra.Command{
	Use:   "set-password <password>",
	Short: "Set the server password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.SetPassword(args[0])
	},
}

var serverAddStartupCmd = &cobra.Command{
	Use:   "add-startup <config>",
	Short: "Append a config to the startup exec list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.AddStartupConfig(args[0])
	},
}

var serverRemoveStartupCmd = &cobra.Command{
	Use:   "remove-startup <config>",
	Short: "Remove a config from the startup exec list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.RemoveStartupConfig(args[0])
	},
}

func init() {
	serverCmd.AddCommand(serverSetIPCmd)
	serverCmd.AddCommand(serverSetPortCmd)
	serverCmd.AddCommand(serverSetPasswordCmd)
	serverCmd.AddCommand(serverAddStartupCmd)
	serverCmd.AddCommand(serverRemoveStartupCmd)
}
