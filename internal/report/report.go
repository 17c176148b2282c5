// Package report renders policy results as console tables, csv or json.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Format selects the output encoding.
type Format string

const (
	TableOut Format = "table"
	CSVOut   Format = "csv"
	JSONOut  Format = "json"
)

// ParseFormat accepts table, csv or json in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", TableOut:
		return TableOut, nil
	case CSVOut, JSONOut:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

type Options struct {
	Format    Format
	Precision int
	UseColors bool
	Locale    string
}

func DefaultOptions() Options {
	return Options{Format: TableOut, Precision: 2, Locale: LocaleEN}
}

// OptionsFrom maps the report config, falling back to table output for an
// unknown format.
func OptionsFrom(cfg config.ReportConfig) Options {
	opts := DefaultOptions()
	if f, err := ParseFormat(cfg.Format); err == nil {
		opts.Format = f
	}
	if cfg.Precision >= 0 {
		opts.Precision = cfg.Precision
	}
	opts.UseColors = cfg.UseColors
	if cfg.Locale == LocaleID {
		opts.Locale = LocaleID
	}
	return opts
}

type palette struct {
	red, green, yellow, bold func(...any) string
}

func newPalette(useColors bool) palette {
	if !useColors {
		return palette{red: fmt.Sprint, green: fmt.Sprint, yellow: fmt.Sprint, bold: fmt.Sprint}
	}
	return palette{
		red:    color.New(color.FgRed).SprintFunc(),
		green:  color.New(color.FgGreen).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		bold:   color.New(color.Bold).SprintFunc(),
	}
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
// newTable keeps header text as written so s and S stay distinct.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithHeaderAutoFormat(tw.Off))
}

func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
