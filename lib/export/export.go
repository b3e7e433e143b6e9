// Package export writes rule records to CSV under a fixed, named column
// set and reads them back without loss. The column names are part of
// the output contract, downstream sheets key on them.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"propfirm-backend/lib/rules"
)

// Columns is the export header, in order. Do not reorder: consumers
// address columns by name but humans diff exports positionally.
var Columns = []string{
	"Firm Name",
	"Account Size",
	"Account Size (USD)",
	"Website URL",
	"Broker",
	"Platform",
	"Last Updated",
	"Status",
	"Evaluation Target (USD)",
	"Evaluation Max Drawdown (USD)",
	"Evaluation Daily Loss (USD)",
	"Evaluation Drawdown Type",
	"Evaluation Min Days",
	"Evaluation Consistency",
	"Funded Max Drawdown (USD)",
	"Funded Daily Loss (USD)",
	"Funded Drawdown Type",
	"Profit Split (%)",
	"Payout Frequency",
	"Min Payout (USD)",
	"Evaluation Fee (USD)",
	"Reset Fee (USD)",
}

const timeLayout = time.RFC3339

// WriteCSV writes the header and one row per record.
func WriteCSV(w io.Writer, records []rules.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to path, creating parent-less files only.
func WriteFile(path string, records []rules.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSV(f, records)
}

func row(r rules.Record) []string {
	return []string{
		r.FirmName,
		r.AccountSize,
		formatFloat(r.AccountSizeUSD),
		r.WebsiteURL,
		string(r.Broker),
		string(r.Platform),
		r.LastUpdated.UTC().Truncate(time.Second).Format(timeLayout),
		string(r.Status),
		optFloat(r.EvaluationTargetUSD),
		optFloat(r.EvaluationMaxDrawdownUSD),
		optFloat(r.EvaluationDailyLossUSD),
		string(r.EvaluationDrawdownKind),
		optInt(r.EvaluationMinDays),
		optBool(r.EvaluationConsistency),
		optFloat(r.FundedMaxDrawdownUSD),
		optFloat(r.FundedDailyLossUSD),
		string(r.FundedDrawdownKind),
		optFloat(r.ProfitSplitPercent),
		string(r.PayoutCadence),
		optFloat(r.MinPayoutUSD),
		optFloat(r.EvaluationFeeUSD),
		optFloat(r.ResetFeeUSD),
	}
}

// ReadCSV parses an export back into records. Diagnostics are not part
// of the column set and come back empty.
func ReadCSV(rd io.Reader) ([]rules.Record, error) {
	cr := csv.NewReader(rd)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty export")
	}
	if len(rows[0]) != len(Columns) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(Columns), len(rows[0]))
	}

	records := make([]rules.Record, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		r, err := parseRow(cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func parseRow(cells []string) (rules.Record, error) {
	var r rules.Record
	p := &rowParser{}

	r.FirmName = cells[0]
	r.AccountSize = cells[1]
	r.AccountSizeUSD = p.float(cells[2])
	r.WebsiteURL = cells[3]
	r.Broker = rules.Broker(cells[4])
	r.Platform = rules.Platform(cells[5])
	r.LastUpdated = p.time(cells[6])
	r.Status = rules.Status(cells[7])
	r.EvaluationTargetUSD = p.optFloat(cells[8])
	r.EvaluationMaxDrawdownUSD = p.optFloat(cells[9])
	r.EvaluationDailyLossUSD = p.optFloat(cells[10])
	r.EvaluationDrawdownKind = rules.DrawdownKind(cells[11])
	r.EvaluationMinDays = p.optInt(cells[12])
	r.EvaluationConsistency = p.optBool(cells[13])
	r.FundedMaxDrawdownUSD = p.optFloat(cells[14])
	r.FundedDailyLossUSD = p.optFloat(cells[15])
	r.FundedDrawdownKind = rules.DrawdownKind(cells[16])
	r.ProfitSplitPercent = p.optFloat(cells[17])
	r.PayoutCadence = rules.PayoutCadence(cells[18])
	r.MinPayoutUSD = p.optFloat(cells[19])
	r.EvaluationFeeUSD = p.optFloat(cells[20])
	r.ResetFeeUSD = p.optFloat(cells[21])

	return r, p.err
}

// rowParser remembers the first parse error so field parsing can stay
// linear instead of an error pyramid.
type rowParser struct {
	err error
}

func (p *rowParser) float(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *rowParser) time(s string) time.Time {
	v, err := time.Parse(timeLayout, s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *rowParser) optFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	return rules.Float(p.float(s))
}

func (p *rowParser) optInt(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return rules.Int(v)
}

func (p *rowParser) optBool(s string) *bool {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return rules.Bool(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

// Summary aggregates a finished run for display.
type Summary struct {
	Total    int
	ByStatus map[rules.Status]int
	ByFirm   map[string]int
}

func Summarize(records []rules.Record) Summary {
	s := Summary{
		Total:    len(records),
		ByStatus: map[rules.Status]int{},
		ByFirm:   map[string]int{},
	}
	for _, r := range records {
		s.ByStatus[r.Status]++
		s.ByFirm[r.FirmName]++
	}
	return s
}
