// Package progression diffs a player's current Total Score against scores
// already computed for earlier seasons.
package progression

import (
	"sort"

	"github.com/okian/scoutgrade/internal/domain/model"
)

// Tracker indexes prior scores by player.
type Tracker struct {
	priors  map[string][]model.PriorScore
	seasons map[string]map[int]struct{}
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithSeasons indexes the seasons each player appears in. They stand in for
// SeasonsPlayed when a record leaves it unset.
func WithSeasons(records []model.PlayerRecord) Option {
	return func(t *Tracker) {
		for _, r := range records {
			key := model.PlayerKey(r.PlayerID)
			if t.seasons[key] == nil {
				t.seasons[key] = map[int]struct{}{}
			}
			t.seasons[key][r.Season] = struct{}{}
		}
	}
}

// NewTracker indexes priors. Scores are never recomputed here.
func NewTracker(priors []model.PriorScore, opts ...Option) *Tracker {
	t := &Tracker{
		priors:  map[string][]model.PriorScore{},
		seasons: map[string]map[int]struct{}{},
	}
	for _, opt := range opts {
		opt(t)
	}
	for _, p := range priors {
		key := model.PlayerKey(p.PlayerID)
		t.priors[key] = append(t.priors[key], p)
	}
	for id := range t.priors {
		ps := t.priors[id]
		sort.SliceStable(ps, func(i, j int) bool {
			if ps[i].Season != ps[j].Season {
				return ps[i].Season > ps[j].Season
			}
			return ps[i].Profile < ps[j].Profile
		})
	}
	return t
}

// PercentChange is change relative to prior. From a prior of zero, any
// change counts as 100%.
func PercentChange(prior, current float64) float64 {
	change := current - prior
	if prior == 0 {
		if change == 0 {
			return 0
		}
		return 100
	}
	return change / prior * 100
}

// Track compares rec and its current score with the most recent earlier
// season. A prior under the same profile is preferred; a prior under another
// profile is reported as a position change without a numeric delta.
func (t *Tracker) Track(rec model.PlayerRecord, current model.ScoreResult, metrics []string) model.ProgressionResult {
	played := t.SeasonsPlayed(rec)
	out := model.ProgressionResult{
		Status:        model.NoPriorData,
		SeasonsPlayed: played,
		Rookie:        played == 1,
	}

	key := model.PlayerKey(rec.PlayerID)
	var same, other *model.PriorScore
	for i := range t.priors[key] {
		p := &t.priors[key][i]
		if p.Season >= rec.Season {
			continue
		}
		if p.Profile == rec.Profile && same == nil {
			same = p
		}
		if p.Profile != rec.Profile && other == nil {
			other = p
		}
	}

	switch {
	case same != nil:
		out.Status = model.HasPriorScore
		out.PriorSeason = same.Season
		out.PriorProfile = same.Profile
		out.PriorScore = ptr(same.TotalScore)
		out.Delta = ptr(current.TotalScore - same.TotalScore)
		out.PercentChange = ptr(PercentChange(same.TotalScore, current.TotalScore))
		out.ScaleChange = ptr(current.Scale - same.Scale)
		out.MetricChanges = metricChanges(same.Metrics, rec.Metrics, metrics)
	case other != nil:
		out.Status = model.PositionChanged
		out.PriorSeason = other.Season
		out.PriorProfile = other.Profile
	}
	return out
}

// SeasonsPlayed is rec.SeasonsPlayed when set. Otherwise it counts the
// distinct seasons up to rec.Season the player appears in, rec included.
func (t *Tracker) SeasonsPlayed(rec model.PlayerRecord) int {
	if rec.SeasonsPlayed > 0 {
		return rec.SeasonsPlayed
	}
	n := 0
	seen := t.seasons[model.PlayerKey(rec.PlayerID)]
	for s := range seen {
		if s <= rec.Season {
			n++
		}
	}
	if _, ok := seen[rec.Season]; !ok {
		n++
	}
	return n
}

func metricChanges(prior, current map[string]float64, metrics []string) []model.MetricChange {
	var out []model.MetricChange
	for _, id := range metrics {
		p, okPrior := prior[id]
		c, okCur := current[id]
		if !okPrior || !okCur {
			continue
		}
		out = append(out, model.MetricChange{
			Metric:        id,
			Prior:         p,
			Current:       c,
			Change:        c - p,
			PercentChange: ptr(PercentChange(p, c)),
		})
	}
	return out
}

func ptr(v float64) *float64 { return &v }
