package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/sources"
	"github.com/symnet/etsm/internal/ui/download"
)

var (
	sourcesAllVersions bool
	sourcesWithMaps    bool
	sourcesPlain       bool
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage the shared installation sources",
	Long: `Manage the shared installation sources under <home>/source.

Sources are downloaded once and shared by every server instance:
server archives, mods, maps, config templates and the systemd unit
template.`,
}

var sourcesUpdateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"sync"},
	Short:   "Download or refresh the installation sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		src := getSources()

		tasks := []download.Task{
			{
				Name: "Base paks",
				Run: func(report download.ReportFunc) error {
					return src.DownloadPaks(sources.ReportFunc(report))
				},
			},
			{
				Name: "Server archives",
				Run: func(report download.ReportFunc) error {
					return src.DownloadServerSources(sourcesAllVersions, sources.ReportFunc(report))
				},
			},
			{
				Name: "Mods",
				Run: func(report download.ReportFunc) error {
					return src.DownloadModSources(sourcesAllVersions, sources.ReportFunc(report))
				},
			},
			{
				Name: "Config templates",
				Run: func(report download.ReportFunc) error {
					return src.DownloadConfigTemplates(sources.ReportFunc(report))
				},
			},
			{
				Name: "Systemd template",
				Run: func(report download.ReportFunc) error {
					return src.DownloadSystemdTemplate(sources.ReportFunc(report))
				},
			},
		}
		if sourcesWithMaps {
			tasks = append(tasks, download.Task{
				Name: "Maps",
				Run: func(report download.ReportFunc) error {
					idx, err := src.Index()
					if err != nil {
						return err
					}
					return src.DownloadMaps(idx.MapNames(), sources.ReportFunc(report))
				},
			})
		}

		if sourcesPlain {
			return download.RunPlain("Updating sources", tasks)
		}
		if err := download.Run("Updating sources", tasks); err != nil {
			return fmt.Errorf("sources update failed: %w", err)
		}
		return nil
	},
}

func init() {
	sourcesUpdateCmd.Flags().BoolVar(&sourcesAllVersions, "all-versions", false, "Download every indexed version, not just the latest")
	sourcesUpdateCmd.Flags().BoolVar(&sourcesWithMaps, "with-maps", false, "Also download the full map pool")
	sourcesUpdateCmd.Flags().BoolVar(&sourcesPlain, "plain", false, "Plain log output instead of the progress UI")
	sourcesCmd.AddCommand(sourcesUpdateCmd)
	rootCmd.AddCommand(sourcesCmd)
}
