package optimizer

import (
	"math"
	"math/rand"

	"github.com/rxtech-lab/argo-optimizer/internal/types"
)

// SearchSpace bounds the parameter ranges a Searcher draws from. Integer
// bounds are inclusive; float ranges are sampled on a fixed step grid.
type SearchSpace struct {
	TrendLengthMin, TrendLengthMax                                 int
	StrengthLengthMin, StrengthLengthMax                           int
	StrengthThresholdMin, StrengthThresholdMax                     int
	MomentumFastMin, MomentumFastMax                               int
	MomentumSlowMin, MomentumSlowMax                               int
	MomentumSignalMin, MomentumSignalMax                           int
	StopLossMin, StopLossMax, StopLossStep                         float64
	TakeProfitMin, TakeProfitMax, TakeProfitStep                   float64
	PositionFractionMin, PositionFractionMax, PositionFractionStep float64
}

// DefaultSearchSpace returns the ranges the optimizer explores out of the
// box.
func DefaultSearchSpace() SearchSpace {
	return SearchSpace{
		TrendLengthMin: 50, TrendLengthMax: 200,
		StrengthLengthMin: 10, StrengthLengthMax: 21,
		StrengthThresholdMin: 22, StrengthThresholdMax: 35,
		MomentumFastMin: 7, MomentumFastMax: 21,
		MomentumSlowMin: 22, MomentumSlowMax: 50,
		MomentumSignalMin: 7, MomentumSignalMax: 14,
		StopLossMin: 0.02, StopLossMax: 0.08, StopLossStep: 0.01,
		TakeProfitMin: 0.04, TakeProfitMax: 0.15, TakeProfitStep: 0.01,
		PositionFractionMin: 0.1, PositionFractionMax: 0.5, PositionFractionStep: 0.05,
	}
}

// Searcher proposes parameter sets for the optimizer to evaluate. Report
// feeds the score of a finished trial back so adaptive searchers can steer;
// searchers that do not learn from history may ignore it.
type Searcher interface {
	Propose(trial int) types.StrategyParams
	Report(params types.StrategyParams, score float64)
}

// RandomSearcher draws parameter sets uniformly from the search space. It is
// deterministic for a fixed seed.
type RandomSearcher struct {
	space SearchSpace
	rng   *rand.Rand
}

func NewRandomSearcher(space SearchSpace, seed int64) *RandomSearcher {
	return &RandomSearcher{
		space: space,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Propose implements Searcher.
func (s *RandomSearcher) Propose(_ int) types.StrategyParams {
	return types.StrategyParams{
		TrendLength:       s.intIn(s.space.TrendLengthMin, s.space.TrendLengthMax),
		StrengthLength:    s.intIn(s.space.StrengthLengthMin, s.space.StrengthLengthMax),
		StrengthThreshold: float64(s.intIn(s.space.StrengthThresholdMin, s.space.StrengthThresholdMax)),
		MomentumFast:      s.intIn(s.space.MomentumFastMin, s.space.MomentumFastMax),
		MomentumSlow:      s.intIn(s.space.MomentumSlowMin, s.space.MomentumSlowMax),
		MomentumSignal:    s.intIn(s.space.MomentumSignalMin, s.space.MomentumSignalMax),
		StopLoss:          s.floatOnGrid(s.space.StopLossMin, s.space.StopLossMax, s.space.StopLossStep),
		TakeProfit:        s.floatOnGrid(s.space.TakeProfitMin, s.space.TakeProfitMax, s.space.TakeProfitStep),
		PositionFraction:  s.floatOnGrid(s.space.PositionFractionMin, s.space.PositionFractionMax, s.space.PositionFractionStep),
	}
}

// Report implements Searcher. Random search does not use trial history.
func (s *RandomSearcher) Report(_ types.StrategyParams, _ float64) {}

func (s *RandomSearcher) intIn(min, max int) int {
	if max <= min {
		return min
	}

	return min + s.rng.Intn(max-min+1)
}

func (s *RandomSearcher) floatOnGrid(min, max, step float64) float64 {
	if step <= 0 || max <= min {
		return min
	}

	steps := int(math.Round((max - min) / step))

	return min + float64(s.rng.Intn(steps+1))*step
}
