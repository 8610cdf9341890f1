package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/server"
	"github.com/symnet/etsm/internal/sources"
	"github.com/symnet/etsm/internal/ui/download"
)

var (
	createVersion    string
	createForce      bool
	createWithMaps   bool
	createDescriptor string
)

var serverCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Install a new server instance",
	Long: `Install a new server instance: sync sources, extract the
server archive and link the base paks.

With -f a declarative descriptor drives the whole setup: mod install,
config creation, map activation and the mapvote cycle in one pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if createDescriptor != "" {
			return createFromDescriptor(createDescriptor, createForce)
		}

		m, err := getServerManager()
		if err != nil {
			return err
		}

		tasks := []download.Task{{
			Name: "Installing " + m.Name,
			Run: func(report download.ReportFunc) error {
				return m.Create(server.CreateOptions{
					Version:  createVersion,
					Force:    createForce,
					WithMaps: createWithMaps,
				}, sources.ReportFunc(report))
			},
		}}
		if err := download.Run("Creating server", tasks); err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		return nil
	},
}

func createFromDescriptor(path string, force bool) error {
	desc, err := server.LoadDescriptor(path)
	if err != nil {
		return err
	}

	if desc.SourcesURL != "" && sourcesURL == "" {
		sourcesURL = desc.SourcesURL
	}
	m, err := server.New(etsmHome(), desc.ServerName, getSources(), getLogger())
	if err != nil {
		return fmt.Errorf("failed to open server: %w", err)
	}

	tasks := []download.Task{{
		Name: "Installing " + m.Name,
		Run: func(report download.ReportFunc) error {
			return m.CreateFromDescriptor(desc, force, sources.ReportFunc(report))
		},
	}}
	if err := download.Run("Creating server", tasks); err != nil {
		return fmt.Errorf("create failed: %w", err)
	}
	return nil
}

func init() {
	serverCreateCmd.Flags().StringVar(&createVersion, "version", "", "Server version to install (default latest)")
	serverCreateCmd.Flags().BoolVar(&createForce, "force", false, "Reinstall over an existing server")
	serverCreateCmd.Flags().BoolVar(&createWithMaps, "with-maps", false, "Also download the full map pool")
	serverCreateCmd.Flags().StringVarP(&createDescriptor, "file", "f", "", "Create from a YAML server descriptor")
	serverCmd.AddCommand(serverCreateCmd)
}
