package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"propfirm-backend/lib/acquire"
	"propfirm-backend/lib/browser"
	"propfirm-backend/lib/currency"
	"propfirm-backend/lib/export"
	"propfirm-backend/lib/extract"
	"propfirm-backend/lib/firmdata"
	"propfirm-backend/lib/rules"
	"propfirm-backend/lib/rulestore"
	"propfirm-backend/lib/sitelist"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// pause between sites to stay under rate limits
const sitePause = 2 * time.Second

var (
	runSitesFile *string
	runOutFile   *string
	runDbFile    *string
)

func init() {
	runSitesFile = runCmd.Flags().String("sites", "sites.yaml", "The site list to scrape.")
	runOutFile = runCmd.Flags().String("out", "trading_rules.csv", "The CSV file to write results to.")
	runDbFile = runCmd.Flags().String("db", "runs.db", "The database to archive runs in.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--sites <sites.yaml>] [--out <rules.csv>] [--db <runs.db>]",
	Short: "Scrapes every enabled site, exports the extracted rules and archives the run.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		sites, err := sitelist.Load(*runSitesFile)
		if err != nil {
			// the one input whose absence is fatal
			fatal("failed to load site list", err)
		}
		enabled := sitelist.Enabled(sites)

		registry, err := firmdata.Load()
		if err != nil {
			slog.Warn("firm overrides unavailable", "err", err)
		}

		store, err := rulestore.Open(*runDbFile)
		if err != nil {
			fatal("failed to open run archive", err)
		}
		defer store.Close()

		runID, err := store.BeginRun(ctx, time.Now())
		if err != nil {
			fatal("failed to begin run", err)
		}

		pipeline := acquire.NewPipeline(acquire.NewStaticClient(), browser.NewChromeLauncher())
		conv := currency.NewConverter(nil)

		var all []rules.Record
		for i, site := range enabled {
			if i > 0 {
				time.Sleep(sitePause + time.Duration(rand.IntN(1000))*time.Millisecond)
			}
			slog.Info("scraping site", "n", i+1, "of", len(enabled), "name", site.Name, "url", site.URL)
			all = append(all, scrapeSite(ctx, pipeline, registry, conv, site)...)
		}

		if err := store.SaveRecords(ctx, runID, all); err != nil {
			slog.Error("failed to archive records", "err", err)
		}
		if err := store.FinishRun(ctx, runID, time.Now(), len(enabled)); err != nil {
			slog.Error("failed to finish run", "err", err)
		}

		if err := export.WriteFile(*runOutFile, all); err != nil {
			fatal("failed to write export", err)
		}
		slog.Info("export written", "path", *runOutFile, "records", len(all))

		printSummary(all)
	},
}

// scrapeSite runs acquisition and extraction for one site. It never
// returns an error: every failure mode becomes a placeholder record so
// one misbehaving site cannot abort the run.
func scrapeSite(ctx context.Context, pipeline *acquire.Pipeline, registry firmdata.Registry, conv currency.Converter, site sitelist.Site) (records []rules.Record) {
	engine := extract.NewEngine(site.Name, site.URL, conv)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("site scrape panicked", "site", site.Name, "panic", r)
			records = []rules.Record{
				engine.Placeholder(rules.StatusFailed, fmt.Sprintf("panic: %v", r)),
			}
		}
	}()

	content, err := pipeline.Acquire(ctx, site.URL)
	switch {
	case errors.Is(err, acquire.ErrLoginRequired):
		return []rules.Record{engine.Placeholder(rules.StatusLoginRequired, "login wall blocks the site")}
	case errors.Is(err, acquire.ErrExhausted):
		return []rules.Record{engine.Placeholder(rules.StatusMissingData, "all acquisition tiers exhausted, manual review required")}
	case err != nil:
		return []rules.Record{engine.Placeholder(rules.StatusFailed, err.Error())}
	}

	text := content.CombinedText()
	firm, hasOverride := registry.Lookup(site.Name)

	if hasOverride && len(firm.AccountSizesUSD) > 0 {
		records = engine.ExtractSizes(ctx, text, firm.SizeLabels())
	} else {
		records = engine.Extract(ctx, text)
	}
	if hasOverride {
		records = firm.Apply(records)
	}
	return records
}

func printSummary(records []rules.Record) {
	summary := export.Summarize(records)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Status", "Records"})
	for _, status := range []rules.Status{
		rules.StatusOK, rules.StatusMissingData, rules.StatusLoginRequired,
		rules.StatusFailed, rules.StatusNotImplemented,
	} {
		if n := summary.ByStatus[status]; n > 0 {
			t.AppendRow(table.Row{string(status), n})
		}
	}
	t.AppendFooter(table.Row{"Total", summary.Total})
	t.SetStyle(table.StyleRounded)
	t.Render()

	firms := table.NewWriter()
	firms.SetOutputMirror(os.Stdout)
	firms.AppendHeader(table.Row{"Firm", "Records"})
	for firm, n := range summary.ByFirm {
		firms.AppendRow(table.Row{firm, n})
	}
	firms.SortBy([]table.SortBy{{Name: "Firm", Mode: table.Asc}})
	firms.SetStyle(table.StyleRounded)
	firms.Render()
}
