package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/andresuchdata/replenish/internal/policy"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteAnalysis outputs both review policies of one item.
func WriteAnalysis(w io.Writer, a policy.Analysis, opts Options) error {
	tableFloat, plainFloat := createFormatters(opts)

	switch opts.Format {
	case JSONOut:
		return writeJSON(w, a)
	case CSVOut:
		csvWriter := csv.NewWriter(w)
		if err := writeAnalysisCSV(csvWriter, a, plainFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
		csvWriter.Flush()
		return csvWriter.Error()
	default:
		return writeAnalysisTable(w, a, opts, tableFloat)
	}
}

func writeAnalysisTable(w io.Writer, a policy.Analysis, opts Options, fmtFloat func(float64) string) error {
	p := newPalette(opts.UseColors)
	c, r := a.Continuous, a.Periodic

	title := fmt.Sprintf("ITEM ANALYSIS: %s", a.ItemID)
	if a.Synthetic {
		title += " " + p.yellow("(synthetic demand)")
	}
	if _, err := fmt.Fprintln(w, p.bold(title)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Observations: %d, daily demand: %d units, sigma: %s\n",
		a.Statistics.Observations, a.Statistics.DailyDemand, fmtFloat(a.Statistics.Sigma)); err != nil {
		return err
	}

	table := newTable(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Metric", "Continuous (s,Q)", "Periodic (R,S)"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{"Review period R (days)", "-", strconv.Itoa(r.R)},
		{"Lead time LD (days)", strconv.Itoa(c.LD), strconv.Itoa(r.LD)},
		{"Safety factor k", fmtFloat(c.K), fmtFloat(r.K)},
		{"Demand over window", strconv.Itoa(c.MuLD), strconv.Itoa(r.MuLD)},
		{"Sigma over window", fmtFloat(c.SigmaLD), fmtFloat(r.SigmaLD)},
		{"Reorder point s", p.yellow(fmtFloat(c.ReorderPoint)), "-"},
		{"Order quantity Q", strconv.Itoa(c.Q), "-"},
		{"Order-up-to level S", "-", p.green(fmtFloat(r.S))},
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeAnalysisCSV(w *csv.Writer, a policy.Analysis, fmtFloat func(float64) string) error {
	if err := w.Write(analysisCSVHeader); err != nil {
		return err
	}
	return w.Write(analysisCSVRow(a, fmtFloat))
}

var analysisCSVHeader = []string{
	"item_id",
	"synthetic",
	"observations",
	"daily_demand",
	"sigma",
	"continuous_ld",
	"continuous_k",
	"continuous_mu_ld",
	"continuous_sigma_ld",
	"s",
	"Q",
	"periodic_r",
	"periodic_ld",
	"periodic_k",
	"periodic_mu_ld",
	"periodic_sigma_ld",
	"S",
}

func analysisCSVRow(a policy.Analysis, fmtFloat func(float64) string) []string {
	c, r := a.Continuous, a.Periodic
	return []string{
		a.ItemID,
		strconv.FormatBool(a.Synthetic),
		strconv.Itoa(a.Statistics.Observations),
		strconv.Itoa(a.Statistics.DailyDemand),
		fmtFloat(a.Statistics.Sigma),
		strconv.Itoa(c.LD),
		fmtFloat(c.K),
		strconv.Itoa(c.MuLD),
		fmtFloat(c.SigmaLD),
		fmtFloat(c.ReorderPoint),
		strconv.Itoa(c.Q),
		strconv.Itoa(r.R),
		strconv.Itoa(r.LD),
		fmtFloat(r.K),
		strconv.Itoa(r.MuLD),
		fmtFloat(r.SigmaLD),
		fmtFloat(r.S),
	}
}
