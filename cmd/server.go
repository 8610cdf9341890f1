package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/server"
)

var serverName string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage a server instance",
	Long: `Manage a dedicated server instance.

The --server flag picks the instance; without it the configured
default server is used.

Examples:
  etsm server create                  # Install the default server
  etsm server -s match create         # Install a second instance
  etsm server run                     # Start in the foreground
  etsm server config set sv_hostname "My Server"`,
}

// getServerManager builds a manager for the selected server, falling
// back to the configured default name.
func getServerManager() (*server.Manager, error) {
	name := serverName
	if name == "" {
		name = toolConfig.Get().DefaultServer
	}
	m, err := server.New(etsmHome(), name, getSources(), getLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to open server: %w", err)
	}
	return m, nil
}

func init() {
	serverCmd.PersistentFlags().StringVarP(&serverName, "server", "s", "", "Server instance name (default from tool config)")
	rootCmd.AddCommand(serverCmd)
}
