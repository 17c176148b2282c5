package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/pipeline"
	"github.com/andresuchdata/replenish/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenario = []float64{4, 6, 5, 7, 3, 6, 5}

func scenarioAnalysis(t *testing.T) policy.Analysis {
	t.Helper()
	a, err := policy.Default().Analyze("FOODS_3_090", scenario, policy.DefaultContinuousParams(), policy.DefaultPeriodicParams())
	require.NoError(t, err)
	return a
}

func TestFormatLocaleFloat(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		locale   string
		want     string
	}{
		{1234.5, 2, LocaleEN, "1,234.50"},
		{1234.5, 2, LocaleID, "1.234,50"},
		{1000, 2, LocaleID, "1.000"},
		{76.65985898008574, 2, LocaleEN, "76.66"},
		{17.707138387268053, 3, LocaleEN, "17.707"},
		{-1234567.891, 1, LocaleEN, "-1,234,567.9"},
		{0.05, 2, LocaleEN, "0.05"},
		{-0.001, 2, LocaleEN, "0"},
		{999.999, 2, LocaleEN, "1,000"},
		{42, 0, LocaleID, "42"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatLocaleFloat(tt.v, tt.decimals, tt.locale), "%v/%d/%s", tt.v, tt.decimals, tt.locale)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, JSONOut, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, TableOut, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestOptionsFrom(t *testing.T) {
	opts := OptionsFrom(config.ReportConfig{Format: "csv", Precision: 4, UseColors: true, Locale: "id"})
	assert.Equal(t, Options{Format: CSVOut, Precision: 4, UseColors: true, Locale: LocaleID}, opts)

	opts = OptionsFrom(config.ReportConfig{Format: "xml", Locale: "fr", Precision: 2})
	assert.Equal(t, TableOut, opts.Format)
	assert.Equal(t, LocaleEN, opts.Locale)
}

func TestWriteAnalysisTable(t *testing.T) {
	a := scenarioAnalysis(t)
	a.Synthetic = true

	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, a, DefaultOptions()))

	out := buf.String()
	assert.Contains(t, out, "ITEM ANALYSIS: FOODS_3_090 (synthetic demand)")
	assert.Contains(t, out, "daily demand: 6 units, sigma: 1.35")
	assert.Contains(t, out, "17.71")
	assert.Contains(t, out, "76.66")
	assert.Contains(t, out, "30")
	assert.Contains(t, out, "Continuous (s,Q)")
	assert.Contains(t, out, "Periodic (R,S)")
	assert.NotContains(t, out, "CONTINUOUS")
}

func TestWriteAnalysisCSV(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = CSVOut
	opts.Precision = 4
	require.NoError(t, WriteAnalysis(&buf, scenarioAnalysis(t), opts))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, analysisCSVHeader, records[0])

	row := map[string]string{}
	for i, h := range records[0] {
		row[h] = records[1][i]
	}
	assert.Equal(t, "FOODS_3_090", row["item_id"])
	assert.Equal(t, "6", row["daily_demand"])
	assert.Equal(t, "1.3452", row["sigma"])
	assert.Equal(t, "17.7071", row["s"])
	assert.Equal(t, "30", row["Q"])
	assert.Equal(t, "76.6599", row["S"])
}

func TestWriteAnalysisJSON(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = JSONOut
	require.NoError(t, WriteAnalysis(&buf, scenarioAnalysis(t), opts))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	periodic := decoded["periodic"].(map[string]any)
	assert.InDelta(t, 76.65985898008574, periodic["S"], 1e-9)
	continuous := decoded["continuous"].(map[string]any)
	assert.InDelta(t, 17.707138387268053, continuous["s"], 1e-9)
	assert.Equal(t, float64(30), continuous["Q"])
}

func TestWriteComparison(t *testing.T) {
	points, err := policy.Default().CompareReviewPeriods(scenario, policy.DefaultReviewPeriods, policy.DefaultPeriodicParams())
	require.NoError(t, err)
	cmp := policy.Comparison{ItemID: "FOODS_3_090", LD: 2, K: 1, Points: points}

	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, cmp, DefaultOptions()))
	out := buf.String()
	for _, want := range []string{"5 days", "45.56 units", "58.04 units", "76.66 units", "101.38 units", "+12.48 ▲", "Order-Up-To (S)"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	opts := DefaultOptions()
	opts.Format = CSVOut
	require.NoError(t, WriteComparison(&buf, cmp, opts))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "item_id,R,LD,k,S", lines[0])
	assert.Equal(t, "FOODS_3_090,14,2,1.00,101.38", lines[4])
}

func TestWriteBatch(t *testing.T) {
	a := scenarioAnalysis(t)
	res := &pipeline.Result{
		Items: []pipeline.ItemResult{
			{ItemID: "FOODS_3_090", Status: pipeline.ItemStatusCompleted, Analysis: &a, Attempts: 1},
			{ItemID: "HOBBIES_1_001", Status: pipeline.ItemStatusFailed, Error: "invalid input: need at least 2 observations", Attempts: 1},
		},
		Summary: pipeline.Summary{Total: 2, Processed: 1, Failed: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBatch(&buf, res, DefaultOptions()))
	out := buf.String()
	assert.Contains(t, out, "76.66")
	assert.Contains(t, out, "invalid input")
	assert.Contains(t, out, "Processed 1 of 2 items (1 failed)")

	buf.Reset()
	opts := DefaultOptions()
	opts.Format = CSVOut
	require.NoError(t, WriteBatch(&buf, res, opts))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "status", records[0][len(records[0])-2])
	assert.Equal(t, "HOBBIES_1_001", records[2][0])
	assert.Equal(t, "failed", records[2][len(records[2])-2])
}

func TestWriteItems(t *testing.T) {
	items := []domain.Item{{ID: "A", Observations: 365}, {ID: "B", Observations: 730}}

	var buf bytes.Buffer
	require.NoError(t, WriteItems(&buf, items, DefaultOptions()))
	assert.Contains(t, buf.String(), "730")

	buf.Reset()
	opts := DefaultOptions()
	opts.Format = JSONOut
	require.NoError(t, WriteItems(&buf, items, opts))
	var decoded []domain.Item
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, items, decoded)
}
