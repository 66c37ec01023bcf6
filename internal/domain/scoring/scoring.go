// Package scoring turns raw per-90 statistics into a 0-10 composite score
// using a position profile's weighting hierarchy.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/scoutgrade/internal/domain/catalog"
	"github.com/okian/scoutgrade/internal/domain/cohort"
	"github.com/okian/scoutgrade/internal/domain/model"
)

const (
	maxScore = 10
	// Totals are rounded so sums of weights that are 1.0 on paper compare
	// equal and re-runs encode identically.
	scoreDecimals = 9
)

// Normalize maps v into [0,1] over the distribution's range. A degenerate
// range yields exactly 0.5. Lower-is-better metrics are inverted so 1 is
// always best.
func Normalize(v float64, d cohort.Distribution, lowerIsBetter bool) float64 {
	var n float64
	if d.Degenerate() {
		n = 0.5
	} else {
		n = (v - d.Min) / (d.Max - d.Min)
		n = math.Max(0, math.Min(1, n))
	}
	if lowerIsBetter && !d.Degenerate() {
		n = 1 - n
	}
	return n
}

// Scored is a player's composite score before grading.
type Scored struct {
	Result model.ScoreResult
	// Units holds each scored metric's 0-1 value, composites combined.
	Units map[string]float64
	// Complete marks units whose every leaf was measured.
	Complete map[string]bool
}

// Scorer scores records of one position profile.
type Scorer struct {
	cat     *catalog.Catalog
	profile catalog.Profile
}

// New returns a Scorer for a profile of cat.
func New(cat *catalog.Catalog, profileID string) (*Scorer, error) {
	p, ok := cat.Profile(profileID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profileID)
	}
	return &Scorer{cat: cat, profile: p}, nil
}

// Score computes group values and the Total Score of r against c. Leaves
// that r did not measure, or that c has no valid distribution for,
// contribute zero and are listed in Result.Missing.
func (s *Scorer) Score(r model.PlayerRecord, c *cohort.Cohort) Scored {
	normalized := func(leaf string) (float64, bool) {
		raw, ok := r.Value(leaf)
		if !ok {
			return 0, false
		}
		d, ok := c.Distribution(leaf)
		if !ok || !d.Valid {
			return 0, false
		}
		m, _ := s.cat.Metric(leaf)
		return Normalize(raw, d, m.LowerIsBetter), true
	}

	out := Scored{
		Result: model.ScoreResult{
			Cohort: c.Key,
			Groups: make([]model.GroupScore, 0, len(s.profile.Groups)),
		},
		Units:    map[string]float64{},
		Complete: map[string]bool{},
	}

	var core, specific float64
	for _, g := range s.profile.Groups {
		gs := model.GroupScore{ID: g.ID, Tier: string(g.Tier), Weight: g.Weight}
		var sum float64
		for _, unit := range g.Metrics {
			eval, _ := s.cat.Evaluator(unit)
			v, missing := eval(normalized)
			out.Units[unit] = v
			out.Complete[unit] = len(missing) == 0
			gs.Missing = append(gs.Missing, missing...)
			sum += v
		}
		gs.Value = sum / float64(len(g.Metrics))
		gs.Contribution = gs.Value * g.Weight
		out.Result.Missing = append(out.Result.Missing, gs.Missing...)

		if g.Tier == catalog.TierCore {
			core += gs.Contribution
		} else {
			specific += gs.Contribution
		}
		out.Result.Groups = append(out.Result.Groups, gs)
	}

	out.Result.CoreScore = round(maxScore * core)
	out.Result.SpecificScore = round(maxScore * specific)
	out.Result.TotalScore = round(maxScore * (core + specific))
	return out
}

func round(v float64) float64 {
	p := math.Pow(10, scoreDecimals)
	return math.Round(v*p) / p
}
