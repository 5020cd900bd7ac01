// Package adaptive implements ability estimation and difficulty-matched
// item selection. It approximates one-dimensional IRT item selection by
// comparing item difficulty directly against a scalar ability estimate
// (a zone-of-proximal-development heuristic), without fitting a
// probabilistic response model.
package adaptive

import "math"

const (
	// DefaultLearningRate is the step size for ability updates.
	DefaultLearningRate = 0.1

	// InitialAbility is the estimate assigned at attempt start.
	InitialAbility = 0.5

	// MinAbility and MaxAbility bound every estimate.
	MinAbility = 0.1
	MaxAbility = 1.0
)

// Estimator updates a test-taker's scalar ability estimate after each
// graded answer. The zero value uses DefaultLearningRate.
type Estimator struct {
	// Rate is the learning rate. Values <= 0 fall back to the default.
	Rate float64
}

func NewEstimator(rate float64) Estimator {
	if rate <= 0 {
		rate = DefaultLearningRate
	}
	return Estimator{Rate: rate}
}

// Update returns the new ability after answering an item of the given
// difficulty. A correct answer on a hard item boosts ability more; an
// incorrect answer on an easy item penalizes more. The result is clamped
// to [MinAbility, MaxAbility] and rounded to 3 decimals.
func (e Estimator) Update(current, difficulty float64, correct bool) float64 {
	rate := e.Rate
	if rate <= 0 {
		rate = DefaultLearningRate
	}
	var next float64
	if correct {
		next = current + rate*(0.5+0.5*difficulty)
	} else {
		next = current - rate*(1.0-0.5*difficulty)
	}
	return round3(clamp(next, MinAbility, MaxAbility))
}

// Observation is one graded answer as seen by the estimator.
type Observation struct {
	Difficulty float64
	Correct    bool
}

// FinalAbility folds Update over a full answer history starting from
// InitialAbility. An empty history returns InitialAbility unchanged.
func (e Estimator) FinalAbility(history []Observation) float64 {
	ability := InitialAbility
	for _, obs := range history {
		ability = e.Update(ability, obs.Difficulty, obs.Correct)
	}
	return ability
}

// Distribution is a recommended difficulty mix for exam authoring.
type Distribution struct {
	Easy   int `json:"easy"`   // 0.0-0.3
	Medium int `json:"medium"` // 0.3-0.7
	Hard   int `json:"hard"`   // 0.7-1.0
}

// DifficultyDistribution splits a target question count 30/40/30 across
// easy, medium and hard bands.
func DifficultyDistribution(total int) Distribution {
	return Distribution{
		Easy:   int(float64(total) * 0.3),
		Medium: int(float64(total) * 0.4),
		Hard:   int(float64(total) * 0.3),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
