package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/server"
	"github.com/symnet/etsm/internal/sources"
	"github.com/symnet/etsm/internal/ui/download"
	"github.com/symnet/etsm/internal/ui/styles"
)

var (
	updateVersion string
	updateForce   bool
	deleteYes     bool
)

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List server instances",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := server.ListServers(etsmHome())
		if err != nil {
			return fmt.Errorf("failed to list servers: %w", err)
		}
		if len(names) == 0 {
			fmt.Println("No servers installed")
			fmt.Println("\nCreate one with: etsm server create")
			return nil
		}
		defaultName := toolConfig.Get().DefaultServer
		for _, name := range names {
			if name == defaultName {
				fmt.Println(name + " " + styles.MutedText.Render("(default)"))
			} else {
				fmt.Println(name)
			}
		}
		return nil
	},
}

var serverUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the server installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		tasks := []download.Task{
			{
				Name: "Syncing sources",
				Run: func(report download.ReportFunc) error {
					return getSources().DownloadSources(false, false, sources.ReportFunc(report))
				},
			},
			{
				Name: "Updating " + m.Name,
				Run: func(report download.ReportFunc) error {
					return m.Update(updateVersion, updateForce)
				},
			},
		}
		if err := download.Run("Updating server", tasks); err != nil {
			return fmt.Errorf("update failed: %w", err)
		}
		return nil
	},
}

var serverDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a server instance and all its data",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := serverName
		if name == "" {
			name = toolConfig.Get().DefaultServer
		}
		if name == "" {
			name = "default"
		}
		if !server.Exists(etsmHome(), name) {
			return fmt.Errorf("%w: %s", server.ErrServerNotFound, name)
		}

		m, err := getServerManager()
		if err != nil {
			return err
		}

		if !deleteYes {
			fmt.Printf("Delete server %q and all its data? [y/N] ", m.Name)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted")
				return nil
			}
		}

		if err := m.Delete(); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		fmt.Println(styles.FormatSuccess("Server " + m.Name + " deleted"))
		return nil
	},
}

var serverRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the server in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		if !m.Installed() {
			return fmt.Errorf("server %s is not installed, run: etsm server create", m.Name)
		}
		m.Run()
		return nil
	},
}

var serverLinkServiceCmd = &cobra.Command{
	Use:   "link-service",
	Short: "Install the systemd unit for this server",
	Long: `Render the systemd unit from the sources template and symlink
it into the system unit directory. Requires root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		if err := m.LinkSystemdUnit(); err != nil {
			return fmt.Errorf("link-service failed: %w", err)
		}
		fmt.Println(styles.FormatSuccess("Unit installed, enable with: systemctl enable etsm-" + m.Name))
		return nil
	},
}

func init() {
	serverUpdateCmd.Flags().StringVar(&updateVersion, "version", "", "Target version (default latest)")
	serverUpdateCmd.Flags().BoolVar(&updateForce, "force", false, "Reinstall even when already on the target version")
	serverDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	serverCmd.AddCommand(serverListCmd)
	serverCmd.AddCommand(serverUpdateCmd)
	serverCmd.AddCommand(serverDeleteCmd)
	serverCmd.AddCommand(serverRunCmd)
	serverCmd.AddCommand(serverLinkServiceCmd)
}
