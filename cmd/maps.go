package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/sources"
	"github.com/symnet/etsm/internal/ui/download"
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "Browse and download the shared map pool",
	Long: `Browse and download the shared map pool under <home>/source/maps.

Downloaded maps are enabled per-server with "etsm server map add".`,
}

var mapsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List maps already downloaded to the shared store",
	RunE: func(cmd *cobra.Command, args []string) error {
		maps, err := getSources().AvailableMaps()
		if err != nil {
			return fmt.Errorf("failed to list maps: %w", err)
		}
		if len(maps) == 0 {
			fmt.Println("No maps downloaded yet")
			fmt.Println("\nDownload maps with: etsm sources maps download <name>...")
			return nil
		}
		for _, name := range maps {
			fmt.Println(name)
		}
		return nil
	},
}

var mapsSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the remote map index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := getSources().SearchMaps(args[0])
		if err != nil {
			return fmt.Errorf("map search failed: %w", err)
		}
		if len(matches) == 0 {
			fmt.Println("No maps matched")
			return nil
		}
		for _, name := range matches {
			fmt.Println(name)
		}
		return nil
	},
}

var mapsDownloadCmd = &cobra.Command{
	Use:   "download <name>...",
	Short: "Download maps into the shared store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := getSources()
		tasks := []download.Task{{
			Name: "Maps",
			Run: func(report download.ReportFunc) error {
				return src.DownloadMaps(args, sources.ReportFunc(report))
			},
		}}
		return download.Run("Downloading maps", tasks)
	},
}

func init() {
	mapsCmd.AddCommand(mapsListCmd)
	mapsCmd.AddCommand(mapsSearchCmd)
	mapsCmd.AddCommand(mapsDownloadCmd)
	sourcesCmd.AddCommand(mapsCmd)
}
