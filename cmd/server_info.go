package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/symnet/etsm/internal/ui/styles"
)

var serverInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the server's state record",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := getServerManager()
		if err != nil {
			return err
		}
		st := m.State()

		installed := styles.FormatError("not installed")
		if m.Installed() {
			installed = styles.FormatSuccess("installed")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "Server:\t%s (%s)\n", m.Name, installed)
		_, _ = fmt.Fprintf(w, "Directory:\t%s\n", m.ServerDir())
		_, _ = fmt.Fprintf(w, "Type:\t%s\n", st.ServerType)
		_, _ = fmt.Fprintf(w, "Version:\t%s\n", orDash(st.InstalledVersion))
		_, _ = fmt.Fprintf(w, "Bind:\t%s:%s\n", st.ServerIP, strconv.Itoa(st.ServerPort))
		_, _ = fmt.Fprintf(w, "Mod:\t%s\n", st.ServerMod)
		_, _ = fmt.Fprintf(w, "Startup configs:\t%s\n", orDash(strings.Join(st.StartupConfigs, ", ")))
		_ = w.Flush()
		return nil
	},
}

func init() {
	serverCmd.AddCommand(serverInfoCmd)
}
