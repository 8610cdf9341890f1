package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/sources"
	"github.com/symnet/etsm/internal/ui/download"
)

var serverMapCmd = &cobra.Command{
	Use:   "map",
	Short: "Enable and disable maps on this server",
	Long: `Enable and disable maps on this server.

Maps live once in the shared store; enabling one symlinks it into the
server's etmain. Use "etsm sources maps download" to fetch new maps first.`,
}

var serverMapAddCmd = &cobra.Command{
	Use:   "add <name>...",
	Short: "Enable maps on this server",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}

		// Fetch anything not yet in the shared store, then link.
		src := getSources()
		tasks := []download.Task{{
			Name: "Maps",
			Run: func(report download.ReportFunc) error {
				return src.DownloadMaps(args, sources.ReportFunc(report))
			},
		}}
		if err := download.Run("Downloading maps", tasks); err != nil {
			return err
		}

		for _, name := range args {
			if err := m.AddMap(name); err != nil {
				return fmt.Errorf("failed to enable map %s: %w", name, err)
			}
		}
		return nil
	},
}

var serverMapRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Disable maps on this server",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		for _, name := range args {
			if err := m.RemoveMap(name); err != nil {
				return fmt.Errorf("failed to disable map %s: %w", name, err)
			}
		}
		return nil
	},
}

var serverMapEnabledCmd = &cobra.Command{
	Use:   "enabled",
	Short: "List maps enabled on this server",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		maps, err := m.ListEnabledMaps()
		if err != nil {
			return fmt.Errorf("failed to list enabled maps: %w", err)
		}
		if len(maps) == 0 {
			fmt.Println("No extra maps enabled")
			return nil
		}
		for _, name := range maps {
			fmt.Println(name)
		}
		return nil
	},
}

var serverMapAvailableCmd = &cobra.Command{
	Use:   "available",
	Short: "List downloaded maps not yet enabled here",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		maps, err := m.ListAvailableMaps()
		if err != nil {
			return fmt.Errorf("failed to list available maps: %w", err)
		}
		if len(maps) == 0 {
			fmt.Println("No maps available")
			fmt.Println("\nDownload maps with: etsm sources maps download <name>...")
			return nil
		}
		for _, name := range maps {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	serverMapCmd.AddCommand(serverMapAddCmd)
	serverMapCmd.AddCommand(serverMapRemoveCmd)
	serverMapCmd.AddCommand(serverMapEnabledCmd)
	serverMapCmd.AddCommand(serverMapAvailableCmd)
	serverCmd.AddCommand(serverMapCmd)
}
