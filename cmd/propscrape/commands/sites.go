package commands

import (
	"os"

	"propfirm-backend/lib/sitelist"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var sitesFile *string

func init() {
	sitesFile = sitesCmd.Flags().String("sites", "sites.yaml", "The site list to print.")
	rootCmd.AddCommand(sitesCmd)
}

var sitesCmd = &cobra.Command{
	Use:   "sites [--sites <sites.yaml>]",
	Short: "Prints the configured scrape targets.",
	Run: func(cmd *cobra.Command, args []string) {
		sites, err := sitelist.Load(*sitesFile)
		if err != nil {
			fatal("failed to load site list", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "URL", "Enabled", "Timeout", "Notes"})
		for _, site := range sites {
			t.AppendRow(table.Row{
				site.Name, site.URL, site.IsEnabled(), site.Timeout().String(), site.Notes,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
