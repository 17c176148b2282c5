package policy

import (
	"math"
	"testing"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekDemand = []float64{4, 6, 5, 7, 3, 6, 5}

const (
	weekSampleSigma     = 1.3451854182690985
	weekPopulationSigma = 1.2453996981544782
)

// TestStatistics covers the rounding and standard deviation definitions.
func TestStatistics(t *testing.T) {
	tests := []struct {
		name        string
		mode        StdDevMode
		series      []float64
		wantDaily   int
		wantSigma   float64
		wantInvalid bool
	}{
		{name: "sample week", mode: SampleStdDev, series: weekDemand, wantDaily: 6, wantSigma: weekSampleSigma},
		{name: "population week", mode: PopulationStdDev, series: weekDemand, wantDaily: 6, wantSigma: weekPopulationSigma},
		{name: "integral mean is not bumped", mode: SampleStdDev, series: []float64{1, 2, 3}, wantDaily: 2, wantSigma: 1},
		{name: "fractional mean rounds up", mode: SampleStdDev, series: []float64{0, 0, 1}, wantDaily: 1, wantSigma: math.Sqrt(1.0 / 3.0)},
		{name: "constant series", mode: SampleStdDev, series: []float64{3, 3, 3, 3}, wantDaily: 3, wantSigma: 0},
		{name: "all zeros", mode: SampleStdDev, series: []float64{0, 0}, wantDaily: 0, wantSigma: 0},
		{name: "single value population", mode: PopulationStdDev, series: []float64{7}, wantDaily: 7, wantSigma: 0},
		{name: "single value sample", mode: SampleStdDev, series: []float64{7}, wantInvalid: true},
		{name: "empty", mode: SampleStdDev, series: nil, wantInvalid: true},
		{name: "empty population", mode: PopulationStdDev, series: []float64{}, wantInvalid: true},
		{name: "negative observation", mode: SampleStdDev, series: []float64{1, -1}, wantInvalid: true},
		{name: "nan observation", mode: SampleStdDev, series: []float64{1, math.NaN()}, wantInvalid: true},
		{name: "inf observation", mode: SampleStdDev, series: []float64{math.Inf(1), 1}, wantInvalid: true},
		{name: "mean beyond int range", mode: SampleStdDev, series: []float64{1e19, 1e19}, wantInvalid: true},
		{name: "sum overflows float", mode: PopulationStdDev, series: []float64{0, 1e308, 1e308}, wantInvalid: true},
		{name: "huge spread", mode: SampleStdDev, series: []float64{0, 1e300, 1e300}, wantInvalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := NewCalculator(tt.mode).Statistics(tt.series)
			if tt.wantInvalid {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDaily, stats.DailyDemand)
			assert.InDelta(t, tt.wantSigma, stats.Sigma, 1e-12)
			assert.Equal(t, len(tt.series), stats.Observations)
		})
	}
}

// TestStatisticsMeanCeilProperty checks ceil(mean) on a spread of series.
func TestStatisticsMeanCeilProperty(t *testing.T) {
	calc := Default()
	for n := 2; n <= 40; n++ {
		series := make([]float64, n)
		var sum float64
		for i := range series {
			series[i] = float64((i*7 + n) % 11)
			sum += series[i]
		}
		stats, err := calc.Statistics(series)
		require.NoError(t, err)

		mean := sum / float64(n)
		assert.GreaterOrEqual(t, float64(stats.DailyDemand), mean)
		assert.Less(t, float64(stats.DailyDemand)-mean, 1.0)
		assert.GreaterOrEqual(t, stats.Sigma, 0.0)
	}
}

func TestPeriodicScenario(t *testing.T) {
	res, err := Default().Periodic(weekDemand, DefaultPeriodicParams())
	require.NoError(t, err)

	assert.Equal(t, 6, res.DailyDemand)
	assert.InDelta(t, weekSampleSigma, res.Sigma, 1e-12)
	assert.Equal(t, 72, res.MuLD)
	assert.InDelta(t, 4.65985898008574, res.SigmaLD, 1e-9)
	assert.InDelta(t, 76.65985898008574, res.S, 1e-9)
	assert.Equal(t, 10, res.R)
	assert.Equal(t, 2, res.LD)
	assert.Equal(t, 1.0, res.K)
}

func TestContinuousScenario(t *testing.T) {
	res, err := Default().Continuous(weekDemand, DefaultContinuousParams())
	require.NoError(t, err)

	assert.Equal(t, 6, res.DailyDemand)
	assert.Equal(t, 12, res.MuLD)
	assert.InDelta(t, 1.902379462422684, res.SigmaLD, 1e-9)
	assert.InDelta(t, 17.707138387268053, res.ReorderPoint, 1e-9)
	assert.Equal(t, 30, res.Q)
	assert.Equal(t, 2, res.LD)
	assert.Equal(t, 3.0, res.K)
}

func TestPopulationModeScenario(t *testing.T) {
	calc := NewCalculator(PopulationStdDev)

	periodic, err := calc.Periodic(weekDemand, DefaultPeriodicParams())
	require.NoError(t, err)
	assert.InDelta(t, 76.314191105869, periodic.S, 1e-9)

	continuous, err := calc.Continuous(weekDemand, DefaultContinuousParams())
	require.NoError(t, err)
	assert.InDelta(t, 17.283783431116266, continuous.ReorderPoint, 1e-9)
}

// TestScalingLaw checks sigma_ld == sigma * sqrt(window) for both policies.
func TestScalingLaw(t *testing.T) {
	calc := Default()
	for _, ld := range []int{0, 1, 2, 5, 30} {
		for _, r := range []int{1, 7, 14} {
			p, err := calc.Periodic(weekDemand, PeriodicParams{R: r, LD: ld, K: 1})
			require.NoError(t, err)
			assert.Equal(t, p.Sigma*math.Sqrt(float64(ld+r)), p.SigmaLD)
			assert.Equal(t, p.DailyDemand*(ld+r), p.MuLD)
		}

		c, err := calc.Continuous(weekDemand, ContinuousParams{LD: ld, K: 2})
		require.NoError(t, err)
		assert.Equal(t, c.Sigma*math.Sqrt(float64(ld)), c.SigmaLD)
		assert.Equal(t, OrderQuantityDays*c.DailyDemand, c.Q)
	}
}

func TestPeriodicMonotonicity(t *testing.T) {
	calc := Default()

	prev := math.Inf(-1)
	for r := 1; r <= 30; r++ {
		res, err := calc.Periodic(weekDemand, PeriodicParams{R: r, LD: 2, K: 1})
		require.NoError(t, err)
		assert.Greater(t, res.S, prev, "R=%d", r)
		prev = res.S
	}

	prev = math.Inf(-1)
	for _, k := range []float64{0, 0.5, 1, 1.65, 2, 3} {
		res, err := calc.Periodic(weekDemand, PeriodicParams{R: 10, LD: 2, K: k})
		require.NoError(t, err)
		assert.Greater(t, res.S, prev, "k=%v", k)
		prev = res.S
	}
}

func TestPeriodicConstantSeriesIgnoresK(t *testing.T) {
	calc := Default()
	flat := []float64{4, 4, 4, 4, 4}

	low, err := calc.Periodic(flat, PeriodicParams{R: 10, LD: 2, K: 0})
	require.NoError(t, err)
	high, err := calc.Periodic(flat, PeriodicParams{R: 10, LD: 2, K: 5})
	require.NoError(t, err)

	assert.Equal(t, 0.0, low.Sigma)
	assert.Equal(t, low.S, high.S)
	assert.Equal(t, 48.0, high.S)
}

func TestDeterminism(t *testing.T) {
	calc := Default()

	a, err := calc.Periodic(weekDemand, DefaultPeriodicParams())
	require.NoError(t, err)
	b, err := calc.Periodic(weekDemand, DefaultPeriodicParams())
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(a.S), math.Float64bits(b.S))
	assert.Equal(t, a, b)

	c1, err := calc.Continuous(weekDemand, DefaultContinuousParams())
	require.NoError(t, err)
	c2, err := calc.Continuous(weekDemand, DefaultContinuousParams())
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestParamValidation(t *testing.T) {
	calc := Default()

	tests := []struct {
		name string
		call func() error
	}{
		{"zero review period", func() error {
			_, err := calc.Periodic(weekDemand, PeriodicParams{R: 0, LD: 2, K: 1})
			return err
		}},
		{"negative periodic lead time", func() error {
			_, err := calc.Periodic(weekDemand, PeriodicParams{R: 10, LD: -1, K: 1})
			return err
		}},
		{"nan periodic k", func() error {
			_, err := calc.Periodic(weekDemand, PeriodicParams{R: 10, LD: 2, K: math.NaN()})
			return err
		}},
		{"negative continuous lead time", func() error {
			_, err := calc.Continuous(weekDemand, ContinuousParams{LD: -3, K: 1})
			return err
		}},
		{"infinite continuous k", func() error {
			_, err := calc.Continuous(weekDemand, ContinuousParams{LD: 2, K: math.Inf(1)})
			return err
		}},
		{"empty series periodic", func() error {
			_, err := calc.Periodic(nil, DefaultPeriodicParams())
			return err
		}},
		{"short series continuous", func() error {
			_, err := calc.Continuous([]float64{5}, DefaultContinuousParams())
			return err
		}},
		{"lead time plus review period overflows", func() error {
			_, err := calc.Periodic(weekDemand, PeriodicParams{R: 1, LD: math.MaxInt, K: 1})
			return err
		}},
		{"periodic window demand overflows", func() error {
			_, err := calc.Periodic([]float64{1e12, 1e12}, PeriodicParams{R: 1, LD: 100_000_000, K: 1})
			return err
		}},
		{"continuous lead time demand overflows", func() error {
			_, err := calc.Continuous(weekDemand, ContinuousParams{LD: math.MaxInt, K: 3})
			return err
		}},
		{"periodic k overflows level", func() error {
			_, err := calc.Periodic(weekDemand, PeriodicParams{R: 10, LD: 2, K: math.MaxFloat64})
			return err
		}},
		{"continuous k overflows level", func() error {
			_, err := calc.Continuous(weekDemand, ContinuousParams{LD: 2, K: -math.MaxFloat64})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), domain.ErrInvalidInput)
		})
	}
}

func TestZeroLeadTimeContinuous(t *testing.T) {
	res, err := Default().Continuous(weekDemand, ContinuousParams{LD: 0, K: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, res.MuLD)
	assert.Equal(t, 0.0, res.SigmaLD)
	assert.Equal(t, 0.0, res.ReorderPoint)
	assert.Equal(t, 30, res.Q)
}

func TestCompareReviewPeriods(t *testing.T) {
	points, err := Default().CompareReviewPeriods(weekDemand, DefaultReviewPeriods, DefaultPeriodicParams())
	require.NoError(t, err)
	require.Len(t, points, 4)

	want := []ReviewPoint{
		{R: 5, S: 45.55902608401044},
		{R: 7, S: 58.0355562548073},
		{R: 10, S: 76.65985898008574},
		{R: 14, S: 101.3807416730764},
	}
	for i, w := range want {
		assert.Equal(t, w.R, points[i].R)
		assert.InDelta(t, w.S, points[i].S, 1e-9)
		if i > 0 {
			assert.Greater(t, points[i].S, points[i-1].S)
		}
	}
}

func TestCompareReviewPeriodsKeepsCallerOrder(t *testing.T) {
	points, err := Default().CompareReviewPeriods(weekDemand, []int{14, 5}, DefaultPeriodicParams())
	require.NoError(t, err)
	assert.Equal(t, 14, points[0].R)
	assert.Equal(t, 5, points[1].R)
}

func TestCompareReviewPeriodsErrors(t *testing.T) {
	calc := Default()

	_, err := calc.CompareReviewPeriods(weekDemand, nil, DefaultPeriodicParams())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = calc.CompareReviewPeriods(weekDemand, []int{5, 0}, DefaultPeriodicParams())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseStdDevMode(t *testing.T) {
	mode, err := ParseStdDevMode("")
	require.NoError(t, err)
	assert.Equal(t, SampleStdDev, mode)

	mode, err = ParseStdDevMode(" Population ")
	require.NoError(t, err)
	assert.Equal(t, PopulationStdDev, mode)

	_, err = ParseStdDevMode("ddof2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, SampleStdDev, NewCalculator("").Mode())
}

func TestAnalyze(t *testing.T) {
	a, err := Default().Analyze("SKU-5", weekDemand, DefaultContinuousParams(), DefaultPeriodicParams())
	require.NoError(t, err)

	assert.Equal(t, "SKU-5", a.ItemID)
	assert.False(t, a.Synthetic)
	assert.Equal(t, 7, a.Statistics.Observations)
	assert.Equal(t, a.Statistics.DailyDemand, a.Continuous.DailyDemand)
	assert.Equal(t, a.Continuous.Sigma, a.Periodic.Sigma)
	assert.Equal(t, 30, a.Continuous.Q)

	_, err = Default().Analyze("SKU-5", weekDemand, ContinuousParams{LD: -1}, DefaultPeriodicParams())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompare(t *testing.T) {
	base := PeriodicParams{R: 10, LD: 3, K: 1.5}
	cmp, err := Default().Compare("SKU-5", weekDemand, []int{7, 14}, base)
	require.NoError(t, err)

	assert.Equal(t, "SKU-5", cmp.ItemID)
	assert.Equal(t, 3, cmp.LD)
	assert.Equal(t, 1.5, cmp.K)
	require.Len(t, cmp.Points, 2)
	assert.Equal(t, 7, cmp.Points[0].R)

	_, err = Default().Compare("SKU-5", weekDemand, nil, base)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
