package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/demand"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/policy"
	"github.com/rs/zerolog/log"
)

// SyntheticItemID labels an analysis run on generated demand when no item
// id could be resolved.
const SyntheticItemID = "synthetic"

// Params are the policy inputs for one request.
type Params struct {
	Continuous    policy.ContinuousParams
	Periodic      policy.PeriodicParams
	ReviewPeriods []int
}

// ParamsFrom builds request defaults from the policy config.
func ParamsFrom(cfg config.PolicyConfig) Params {
	periods := append([]int(nil), cfg.ReviewPeriods...)
	if len(periods) == 0 {
		periods = append(periods, policy.DefaultReviewPeriods...)
	}
	return Params{
		Continuous:    policy.ContinuousParams{LD: cfg.ContinuousLeadTime, K: cfg.ContinuousSafety},
		Periodic:      policy.PeriodicParams{R: cfg.ReviewPeriod, LD: cfg.PeriodicLeadTime, K: cfg.PeriodicSafety},
		ReviewPeriods: periods,
	}
}

// DefaultParams mirrors the package defaults of the policy calculators.
func DefaultParams() Params {
	return Params{
		Continuous:    policy.DefaultContinuousParams(),
		Periodic:      policy.DefaultPeriodicParams(),
		ReviewPeriods: append([]int(nil), policy.DefaultReviewPeriods...),
	}
}

type Options struct {
	// Fallback substitutes synthetic demand when the source is unavailable.
	Fallback  bool
	Synthetic demand.SyntheticOptions
	// ItemIndex is the position used by AnalyzeIndex when none is given.
	ItemIndex int
}

// PolicyService binds a demand source to the policy calculator.
type PolicyService struct {
	source   demand.Source
	calc     *policy.Calculator
	defaults Params
	opts     Options
}

func NewPolicyService(source demand.Source, calc *policy.Calculator, defaults Params, opts Options) *PolicyService {
	if calc == nil {
		calc = policy.Default()
	}
	return &PolicyService{source: source, calc: calc, defaults: defaults, opts: opts}
}

// NewPolicyServiceFromConfig wires the calculator, defaults and fallback
// from cfg.
func NewPolicyServiceFromConfig(source demand.Source, cfg *config.Config) (*PolicyService, error) {
	mode, err := policy.ParseStdDevMode(cfg.Policy.StdDevMode)
	if err != nil {
		return nil, err
	}
	synthetic := demand.DefaultSyntheticOptions()
	if cfg.Synthetic.Lambda > 0 {
		synthetic.Lambda = cfg.Synthetic.Lambda
	}
	if cfg.Synthetic.Days > 0 {
		synthetic.Days = cfg.Synthetic.Days
	}
	synthetic.Seed = cfg.Synthetic.Seed

	return NewPolicyService(source, policy.NewCalculator(mode), ParamsFrom(cfg.Policy), Options{
		Fallback:  cfg.Demand.SyntheticFallback,
		Synthetic: synthetic,
		ItemIndex: cfg.Policy.ItemIndex,
	}), nil
}

func (s *PolicyService) Defaults() Params {
	p := s.defaults
	p.ReviewPeriods = append([]int(nil), s.defaults.ReviewPeriods...)
	return p
}

func (s *PolicyService) Calculator() *policy.Calculator {
	return s.calc
}

func (s *PolicyService) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.source.Items(ctx)
}

// AnalyzeItem runs both review policies on the demand of itemID.
func (s *PolicyService) AnalyzeItem(ctx context.Context, itemID string, p Params) (policy.Analysis, error) {
	series, synthetic, err := s.loadSeries(ctx, itemID)
	if err != nil {
		return policy.Analysis{}, err
	}
	return s.analyze(series, synthetic, p)
}

func (s *PolicyService) analyze(series domain.DemandSeries, synthetic bool, p Params) (policy.Analysis, error) {
	analysis, err := s.calc.Analyze(series.ItemID, series.Values, p.Continuous, p.Periodic)
	if err != nil {
		return policy.Analysis{}, fmt.Errorf("analyze %s: %w", series.ItemID, err)
	}
	analysis.Synthetic = synthetic
	return analysis, nil
}

// AnalyzeIndex analyzes the item at position index of the source listing.
// A negative index selects the configured default.
func (s *PolicyService) AnalyzeIndex(ctx context.Context, index int, p Params) (policy.Analysis, error) {
	itemID, err := s.ResolveIndex(ctx, index)
	if err != nil {
		if s.useFallback(err) {
			log.Warn().Err(err).Msg("demand data not found, running with synthetic data")
			return s.analyze(s.syntheticSeries(SyntheticItemID), true, p)
		}
		return policy.Analysis{}, err
	}
	return s.AnalyzeItem(ctx, itemID, p)
}

// ResolveIndex returns the item id at position index in source order.
func (s *PolicyService) ResolveIndex(ctx context.Context, index int) (string, error) {
	if index < 0 {
		index = s.opts.ItemIndex
	}
	items, err := s.source.Items(ctx)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(items) {
		return "", domain.InvalidInputf("item index %d out of range, source has %d items", index, len(items))
	}
	return items[index].ID, nil
}

// CompareReviewPeriods evaluates the periodic policy of itemID for each of
// p.ReviewPeriods, keeping p.Periodic's lead time and safety factor.
func (s *PolicyService) CompareReviewPeriods(ctx context.Context, itemID string, p Params) (policy.Comparison, error) {
	series, synthetic, err := s.loadSeries(ctx, itemID)
	if err != nil {
		return policy.Comparison{}, err
	}
	return s.compare(series, synthetic, p)
}

// CompareIndex is CompareReviewPeriods for the item at position index.
func (s *PolicyService) CompareIndex(ctx context.Context, index int, p Params) (policy.Comparison, error) {
	itemID, err := s.ResolveIndex(ctx, index)
	if err != nil {
		if s.useFallback(err) {
			log.Warn().Err(err).Msg("demand data not found, running with synthetic data")
			return s.compare(s.syntheticSeries(SyntheticItemID), true, p)
		}
		return policy.Comparison{}, err
	}
	return s.CompareReviewPeriods(ctx, itemID, p)
}

func (s *PolicyService) compare(series domain.DemandSeries, synthetic bool, p Params) (policy.Comparison, error) {
	cmp, err := s.calc.Compare(series.ItemID, series.Values, p.ReviewPeriods, p.Periodic)
	if err != nil {
		return policy.Comparison{}, fmt.Errorf("compare %s: %w", series.ItemID, err)
	}
	cmp.Synthetic = synthetic
	return cmp, nil
}

// Evaluate runs both policies on a caller supplied series.
func (s *PolicyService) Evaluate(series []float64, p Params) (policy.Analysis, error) {
	return s.calc.Analyze("", series, p.Continuous, p.Periodic)
}

func (s *PolicyService) loadSeries(ctx context.Context, itemID string) (domain.DemandSeries, bool, error) {
	series, err := s.source.Series(ctx, itemID)
	if err == nil {
		return series, false, nil
	}
	if !s.useFallback(err) {
		return domain.DemandSeries{}, false, err
	}

	log.Warn().Err(err).Str("item", itemID).Msg("demand data not found, running with synthetic data")
	if itemID == "" {
		itemID = SyntheticItemID
	}
	return s.syntheticSeries(itemID), true, nil
}

func (s *PolicyService) syntheticSeries(itemID string) domain.DemandSeries {
	o := s.opts.Synthetic
	if o.Days <= 0 {
		o = demand.DefaultSyntheticOptions()
	}
	return domain.DemandSeries{
		ItemID: itemID,
		Values: demand.PoissonSeries(o.Lambda, o.Days, o.Seed),
	}
}

// useFallback reports whether err means the data is missing as a whole,
// not that one item is unknown.
func (s *PolicyService) useFallback(err error) bool {
	return s.opts.Fallback &&
		errors.Is(err, domain.ErrDataUnavailable) &&
		!errors.Is(err, domain.ErrItemNotFound)
}
