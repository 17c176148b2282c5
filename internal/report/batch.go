package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/pipeline"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteBatch outputs one line per item of a batch run followed by its
// summary.
func WriteBatch(w io.Writer, res *pipeline.Result, opts Options) error {
	tableFloat, plainFloat := createFormatters(opts)

	switch opts.Format {
	case JSONOut:
		return writeJSON(w, res)
	case CSVOut:
		csvWriter := csv.NewWriter(w)
		if err := writeBatchCSV(csvWriter, res, plainFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
		csvWriter.Flush()
		return csvWriter.Error()
	default:
		return writeBatchTable(w, res, opts, tableFloat)
	}
}

func writeBatchTable(w io.Writer, res *pipeline.Result, opts Options, fmtFloat func(float64) string) error {
	p := newPalette(opts.UseColors)

	table := newTable(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Item", "Daily", "Sigma", "s", "Q", "S", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, item := range res.Items {
		if item.Analysis == nil {
			data = append(data, []string{item.ItemID, "-", "-", "-", "-", "-", p.red(item.Error)})
			continue
		}
		a := item.Analysis
		data = append(data, []string{
			item.ItemID,
			strconv.Itoa(a.Statistics.DailyDemand),
			fmtFloat(a.Statistics.Sigma),
			fmtFloat(a.Continuous.ReorderPoint),
			strconv.Itoa(a.Continuous.Q),
			fmtFloat(a.Periodic.S),
			p.green(string(item.Status)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := res.Summary
	_, err := fmt.Fprintf(w, "Processed %d of %d items (%d failed) in %v\n", s.Processed, s.Total, s.Failed, s.Duration)
	return err
}

func writeBatchCSV(w *csv.Writer, res *pipeline.Result, fmtFloat func(float64) string) error {
	header := append(append([]string{}, analysisCSVHeader...), "status", "error")
	if err := w.Write(header); err != nil {
		return err
	}
	for _, item := range res.Items {
		var row []string
		if item.Analysis != nil {
			row = analysisCSVRow(*item.Analysis, fmtFloat)
		} else {
			row = make([]string, len(analysisCSVHeader))
			row[0] = item.ItemID
		}
		row = append(row, string(item.Status), item.Error)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteItems lists the items a demand source offers.
func WriteItems(w io.Writer, items []domain.Item, opts Options) error {
	switch opts.Format {
	case JSONOut:
		return writeJSON(w, items)
	case CSVOut:
		csvWriter := csv.NewWriter(w)
		if err := csvWriter.Write([]string{"index", "item_id", "observations"}); err != nil {
			return err
		}
		for i, item := range items {
			if err := csvWriter.Write([]string{strconv.Itoa(i), item.ID, strconv.Itoa(item.Observations)}); err != nil {
				return err
			}
		}
		csvWriter.Flush()
		return csvWriter.Error()
	default:
		table := newTable(w)
		defer func() { _ = table.Close() }()

		table.Header([]string{"Index", "Item", "Observations"})
		var data [][]string
		for i, item := range items {
			data = append(data, []string{strconv.Itoa(i), item.ID, strconv.Itoa(item.Observations)})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	}
}
