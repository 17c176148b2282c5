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

// WriteComparison outputs a review period comparison.
func WriteComparison(w io.Writer, cmp policy.Comparison, opts Options) error {
	tableFloat, plainFloat := createFormatters(opts)

	switch opts.Format {
	case JSONOut:
		return writeJSON(w, cmp)
	case CSVOut:
		csvWriter := csv.NewWriter(w)
		if err := writeComparisonCSV(csvWriter, cmp, plainFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
		csvWriter.Flush()
		return csvWriter.Error()
	default:
		return writeComparisonTable(w, cmp, opts, tableFloat)
	}
}

func writeComparisonTable(w io.Writer, cmp policy.Comparison, opts Options, fmtFloat func(float64) string) error {
	p := newPalette(opts.UseColors)

	title := fmt.Sprintf("REVIEW PERIOD COMPARISON: %s (LD=%d, k=%s)", cmp.ItemID, cmp.LD, fmtFloat(cmp.K))
	if cmp.Synthetic {
		title += " " + p.yellow("(synthetic demand)")
	}
	if _, err := fmt.Fprintln(w, p.bold(title)); err != nil {
		return err
	}

	table := newTable(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Review Period", "Order-Up-To (S)", "Delta"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, pt := range cmp.Points {
		delta := "-"
		if i > 0 {
			d := pt.S - cmp.Points[i-1].S
			switch {
			case d > 0:
				delta = p.red("+" + fmtFloat(d) + " ▲")
			case d < 0:
				delta = p.green(fmtFloat(d) + " ▼")
			default:
				delta = p.yellow(fmtFloat(0))
			}
		}
		data = append(data, []string{
			fmt.Sprintf("%d days", pt.R),
			fmtFloat(pt.S) + " units",
			delta,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeComparisonCSV(w *csv.Writer, cmp policy.Comparison, fmtFloat func(float64) string) error {
	if err := w.Write([]string{"item_id", "R", "LD", "k", "S"}); err != nil {
		return err
	}
	for _, pt := range cmp.Points {
		row := []string{
			cmp.ItemID,
			strconv.Itoa(pt.R),
			strconv.Itoa(cmp.LD),
			fmtFloat(cmp.K),
			fmtFloat(pt.S),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
