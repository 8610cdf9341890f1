package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/sources"
	"github.com/symnet/etsm/internal/ui/download"
	"github.com/symnet/etsm/internal/ui/styles"
)

var (
	modVersion string
	modForce   bool
)

var serverModCmd = &cobra.Command{
	Use:   "mod",
	Short: "Manage mods on this server",
}

var serverModListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mods installed on this server",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		mods, err := m.ListMods()
		if err != nil {
			return fmt.Errorf("failed to list mods: %w", err)
		}
		if len(mods) == 0 {
			fmt.Println("No mods installed")
			return nil
		}
		active := m.State().ServerMod
		for _, name := range mods {
			line := name
			if ver := m.InstalledModVersion(name); ver != "" {
				line += " " + styles.MutedText.Render(ver)
			}
			if name == active {
				line += " " + styles.SuccessText.Render("(active)")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var serverModInstallCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a mod from the sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		src := getSources()
		tasks := []download.Task{
			{
				Name: "Syncing mod sources",
				Run: func(report download.ReportFunc) error {
					return src.DownloadModSources(false, sources.ReportFunc(report))
				},
			},
			{
				Name: "Installing " + args[0],
				Run: func(report download.ReportFunc) error {
					return m.InstallMod(args[0], modVersion, modForce)
				},
			},
		}
		if err := download.Run("Installing mod", tasks); err != nil {
			return fmt.Errorf("mod install failed: %w", err)
		}
		return nil
	},
}

var serverModSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Select the mod the server starts with",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		return m.SetMod(args[0])
	},
}

func init() {
	serverModInstallCmd.Flags().StringVar(&modVersion, "version", "", "Mod version (default latest)")
	serverModInstallCmd.Flags().BoolVar(&modForce, "force", false, "Reinstall even when already on the target version")

	serverModCmd.AddCommand(serverModListCmd)
	serverModCmd.AddCommand(serverModInstallCmd)
	serverModCmd.AddCommand(serverModSetCmd)
	serverCmd.AddCommand(serverModCmd)
}
