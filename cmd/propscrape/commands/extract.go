package commands

import (
	"os"
	"strconv"

	"propfirm-backend/lib/currency"
	"propfirm-backend/lib/export"
	"propfirm-backend/lib/extract"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	extractFirm *string
	extractURL  *string
	extractOut  *string
)

func init() {
	extractFirm = extractCmd.Flags().String("firm", "Unknown Firm", "The firm name to stamp on records.")
	extractURL = extractCmd.Flags().String("url", "", "The source URL to stamp on records.")
	extractOut = extractCmd.Flags().String("out", "", "Optional CSV file to write records to.")
	rootCmd.AddCommand(extractCmd)
}

// debugging aid: runs the extraction engine over a saved page without
// touching the network.
var extractCmd = &cobra.Command{
	Use:   "extract <page.html> [--firm <name>] [--url <url>] [--out <rules.csv>]",
	Short: "Runs rule extraction over a local HTML file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			fatal("failed to read page", err)
		}

		engine := extract.NewEngine(*extractFirm, *extractURL, currency.NewConverter(nil))
		records, err := engine.ExtractHTML(cmd.Context(), string(raw))
		if err != nil {
			fatal("failed to parse page", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Account Size", "Target", "Max Drawdown", "Daily Loss", "Split %", "Status",
		})
		for _, r := range records {
			t.AppendRow(table.Row{
				r.AccountSize,
				optAmount(r.EvaluationTargetUSD),
				optAmount(r.EvaluationMaxDrawdownUSD),
				optAmount(r.EvaluationDailyLossUSD),
				optPercent(r.ProfitSplitPercent),
				string(r.Status),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		if *extractOut != "" {
			if err := export.WriteFile(*extractOut, records); err != nil {
				fatal("failed to write export", err)
			}
		}
	},
}

func optAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return currency.FormatUSD(*v)
}

func optPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + "%"
}
