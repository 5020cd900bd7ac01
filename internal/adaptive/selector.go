package adaptive

import (
	"math"
	"math/rand"

	"github.com/examforge/examforge/internal/exam"
)

// BandWidth widens the minimum distance into a tolerance band for
// SelectWithinBand.
const BandWidth = 0.1

// SelectNext picks the unanswered item whose difficulty sits closest to
// the current ability. Every variant of an item competes alongside its
// base rendering; when a variant wins, the returned copy carries the
// variant's text, difficulty and answer content. Ties keep the first
// item in pool order, so selection is deterministic. Returns nil when
// every pool item has been answered (exam complete).
func SelectNext(pool []exam.Item, ability float64, answeredIDs []string) *exam.Item {
	answered := make(map[string]struct{}, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = struct{}{}
	}

	var best *exam.Item
	bestVariant := -1
	bestDist := math.Inf(1)

	for i := range pool {
		it := &pool[i]
		if _, done := answered[it.ID]; done {
			continue
		}
		dist := math.Abs(it.Difficulty - ability)
		variant := -1
		for j := range it.Variants {
			if d := math.Abs(it.Variants[j].Difficulty - ability); d < dist {
				dist = d
				variant = j
			}
		}
		if dist < bestDist {
			bestDist = dist
			best = it
			bestVariant = variant
		}
	}
	if best == nil {
		return nil
	}

	chosen := *best
	chosen.Variants = nil
	if bestVariant >= 0 {
		v := best.Variants[bestVariant]
		chosen.Text = v.Text
		chosen.Difficulty = v.Difficulty
		if v.CorrectAnswer != "" {
			chosen.CorrectAnswer = v.CorrectAnswer
		}
		if v.ReferenceAnswer != "" {
			chosen.ReferenceAnswer = v.ReferenceAnswer
		}
	}
	return &chosen
}

// SelectWithinBand is the alternate policy for pools without variants:
// collect every unanswered item within BandWidth of the minimum distance
// to the ability and pick uniformly at random among them. Randomness is
// injected so callers (and tests) control the seed.
func SelectWithinBand(pool []exam.Item, ability float64, answeredIDs []string, rng *rand.Rand) *exam.Item {
	answered := make(map[string]struct{}, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = struct{}{}
	}

	minDist := math.Inf(1)
	remaining := make([]exam.Item, 0, len(pool))
	for _, it := range pool {
		if _, done := answered[it.ID]; done {
			continue
		}
		remaining = append(remaining, it)
		if d := math.Abs(it.Difficulty - ability); d < minDist {
			minDist = d
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	band := make([]exam.Item, 0, len(remaining))
	for _, it := range remaining {
		if math.Abs(it.Difficulty-ability) <= minDist+BandWidth {
			band = append(band, it)
		}
	}
	chosen := band[rng.Intn(len(band))]
	chosen.Variants = nil
	return &chosen
}
