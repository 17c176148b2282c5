package demand

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wideCSV = `,ITEM ID,DAY 2,DAY 1,DAY 3
0,FOODS_3_090,6,4,5
1,HOBBIES_1_001,0,,1
2,FOODS_3_090,"1,000",7,3
`

func TestParseCSV(t *testing.T) {
	ctx := context.Background()
	table, err := ParseCSV(strings.NewReader(wideCSV), DefaultCSVOptions())
	require.NoError(t, err)

	items, err := table.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Item{
		{ID: "FOODS_3_090", Observations: 6},
		{ID: "HOBBIES_1_001", Observations: 3},
	}, items)

	// day columns are ordered by number and repeated rows are concatenated
	s, err := table.Series(ctx, "FOODS_3_090")
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6, 5, 7, 1000, 3}, s.Values)

	s, err = table.Series(ctx, " HOBBIES_1_001 ")
	require.NoError(t, err)
	assert.Equal(t, "HOBBIES_1_001", s.ItemID)
	assert.Equal(t, []float64{0, 0, 1}, s.Values)

	_, err = table.Series(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestParseCSVReturnsCopies(t *testing.T) {
	ctx := context.Background()
	table, err := ParseCSV(strings.NewReader(wideCSV), DefaultCSVOptions())
	require.NoError(t, err)

	s, err := table.Series(ctx, "FOODS_3_090")
	require.NoError(t, err)
	s.Values[0] = 99

	again, err := table.Series(ctx, "FOODS_3_090")
	require.NoError(t, err)
	assert.Equal(t, 4.0, again.Values[0])
}

func TestParseCSVCustomColumns(t *testing.T) {
	data := "sku,d_1,d_2\nA,1,2\n"
	table, err := ParseCSV(strings.NewReader(data), CSVOptions{ItemColumn: "SKU", DayColumnPrefix: "d"})
	require.NoError(t, err)

	s, err := table.Series(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, s.Values)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"no item column", "SKU,DAY 1\nA,1\n"},
		{"no day columns", "ITEM ID,QTY\nA,1\n"},
		{"bad cell", "ITEM ID,DAY 1\nA,lots\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.data), DefaultCSVOptions())
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCSVSource(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "df_periodic.csv")
	require.NoError(t, os.WriteFile(path, []byte(wideCSV), 0o644))

	src := NewCSVSource(path, DefaultCSVOptions())
	assert.Equal(t, path, src.Path())

	items, err := src.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// the table is loaded once
	require.NoError(t, os.Remove(path))
	_, err = src.Series(ctx, "HOBBIES_1_001")
	assert.NoError(t, err)
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), DefaultCSVOptions())

	_, err := src.Items(context.Background())
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.NotErrorIs(t, err, domain.ErrItemNotFound)
}

func TestCSVOptionsFrom(t *testing.T) {
	assert.Equal(t, DefaultCSVOptions(), CSVOptionsFrom(config.DemandConfig{}))
	assert.Equal(t, CSVOptions{ItemColumn: "sku", DayColumnPrefix: "d"},
		CSVOptionsFrom(config.DemandConfig{ItemColumn: "sku", DayColumnPrefix: "d"}))
}

func TestNormalizeColumnName(t *testing.T) {
	assert.Equal(t, "itemid", normalizeColumnName(" ITEM ID "))
	assert.Equal(t, "day12", normalizeColumnName("day_12"))
}
