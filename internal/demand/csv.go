package demand

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/spf13/cast"
)

// CSVOptions names the columns of a wide demand table.
type CSVOptions struct {
	ItemColumn      string
	DayColumnPrefix string
}

func DefaultCSVOptions() CSVOptions {
	return CSVOptions{ItemColumn: "ITEM ID", DayColumnPrefix: "DAY"}
}

func CSVOptionsFrom(cfg config.DemandConfig) CSVOptions {
	opts := DefaultCSVOptions()
	if cfg.ItemColumn != "" {
		opts.ItemColumn = cfg.ItemColumn
	}
	if cfg.DayColumnPrefix != "" {
		opts.DayColumnPrefix = cfg.DayColumnPrefix
	}
	return opts
}

// Table is an in-memory demand table keyed by item, preserving the order in
// which items first appear.
type Table struct {
	order  []string
	series map[string][]float64
}

func (t *Table) Items(context.Context) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(t.order))
	for _, id := range t.order {
		items = append(items, domain.Item{ID: id, Observations: len(t.series[id])})
	}
	return items, nil
}

func (t *Table) Series(_ context.Context, itemID string) (domain.DemandSeries, error) {
	id := strings.TrimSpace(itemID)
	values, ok := t.series[id]
	if !ok {
		return domain.DemandSeries{}, fmt.Errorf("%s: %w", id, domain.ErrItemNotFound)
	}
	return domain.DemandSeries{ItemID: id, Values: append([]float64(nil), values...)}, nil
}

type dayColumn struct {
	index int
	day   int
}

// ParseCSV reads a wide table with one item column and numbered day
// columns. Rows sharing an item id are concatenated in file order.
func ParseCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.InvalidInputf("demand csv is empty")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	itemIdx := -1
	itemName := normalizeColumnName(opts.ItemColumn)
	prefix := normalizeColumnName(opts.DayColumnPrefix)
	var days []dayColumn
	for i, h := range header {
		name := normalizeColumnName(h)
		if name == itemName {
			itemIdx = i
			continue
		}
		if rest, ok := strings.CutPrefix(name, prefix); ok && rest != "" {
			if n, err := strconv.Atoi(rest); err == nil {
				days = append(days, dayColumn{index: i, day: n})
			}
		}
	}
	if itemIdx == -1 {
		return nil, domain.InvalidInputf("missing item column %q", opts.ItemColumn)
	}
	if len(days) == 0 {
		return nil, domain.InvalidInputf("no %q day columns", opts.DayColumnPrefix)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].day < days[j].day })

	table := &Table{series: make(map[string][]float64)}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if itemIdx >= len(record) {
			continue
		}
		id := strings.TrimSpace(record[itemIdx])
		if id == "" {
			continue
		}

		if _, seen := table.series[id]; !seen {
			table.order = append(table.order, id)
		}
		values := table.series[id]
		for _, col := range days {
			v, err := parseCell(record, col.index)
			if err != nil {
				return nil, domain.InvalidInputf("line %d, %s: %v", line, header[col.index], err)
			}
			values = append(values, v)
		}
		table.series[id] = values
	}

	return table, nil
}

func parseCell(record []string, idx int) (float64, error) {
	if idx >= len(record) {
		return 0, nil
	}
	v := strings.TrimSpace(record[idx])
	if v == "" {
		return 0, nil
	}
	v = strings.ReplaceAll(v, ",", "")
	return cast.ToFloat64E(v)
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// lazyTable loads a table on first use. A failed load is retried on the
// next call.
type lazyTable struct {
	mu    sync.Mutex
	table *Table
	load  func(ctx context.Context) (*Table, error)
}

func (l *lazyTable) get(ctx context.Context) (*Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.table != nil {
		return l.table, nil
	}
	t, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	l.table = t
	return t, nil
}

func (l *lazyTable) Items(ctx context.Context) ([]domain.Item, error) {
	t, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return t.Items(ctx)
}

func (l *lazyTable) Series(ctx context.Context, itemID string) (domain.DemandSeries, error) {
	t, err := l.get(ctx)
	if err != nil {
		return domain.DemandSeries{}, err
	}
	return t.Series(ctx, itemID)
}

// CSVSource reads a wide demand table from a local file.
type CSVSource struct {
	lazyTable
	path string
}

func NewCSVSource(path string, opts CSVOptions) *CSVSource {
	s := &CSVSource{path: path}
	s.load = func(context.Context) (*Table, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
		}
		defer f.Close()
		return ParseCSV(f, opts)
	}
	return s
}

func (s *CSVSource) Path() string { return s.path }
