// Package stylefit matches players to a reference team's playing style: a
// metric is a fit when the team ranks near the top of its own league on it
// and the player ranks near the top of the player population.
package stylefit

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/scoutgrade/internal/domain/catalog"
	"github.com/okian/scoutgrade/internal/domain/cohort"
	"github.com/okian/scoutgrade/internal/domain/model"
)

// ReferenceRank returns the reference team's competition rank for stat
// within its league, and false if the team has no value for it.
func ReferenceRank(league *model.ReferenceLeague, stat string) (int, bool) {
	lower := false
	for _, s := range league.LowerIsBetter {
		if s == stat {
			lower = true
			break
		}
	}

	var target float64
	found := false
	values := make([]float64, 0, len(league.Teams))
	for _, t := range league.Teams {
		v, ok := t.Stats[stat]
		if !ok {
			continue
		}
		values = append(values, v)
		if t.Team == league.Team {
			target, found = v, true
		}
	}
	if !found {
		return 0, false
	}
	sort.Float64s(values)
	return rankOf(target, values, lower), true
}

// rankOf counts the values at least as good as v, v included.
func rankOf(v float64, sorted []float64, lowerIsBetter bool) int {
	if lowerIsBetter {
		return sort.Search(len(sorted), func(i int) bool { return sorted[i] > v })
	}
	return len(sorted) - sort.SearchFloat64s(sorted, v)
}

// Cutoff is the highest player rank that still counts as elite in a cohort
// of n players.
func Cutoff(n int, fraction float64) int {
	return int(math.Max(1, math.Round(float64(n)*fraction)))
}

// Analyzer evaluates style fit for one profile against one reference team.
type Analyzer struct {
	cat      *catalog.Catalog
	metrics  []string
	fraction float64
	sorted   map[string][]float64
}

// New resolves the profile's style metrics that the reference team ranks in
// its league's top ranks, and indexes the broad cohort for player ranking.
func New(cat *catalog.Catalog, profileID string, league *model.ReferenceLeague, broad *cohort.Cohort) (*Analyzer, error) {
	p, ok := cat.Profile(profileID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profileID)
	}
	if league == nil {
		return nil, ErrNoReference
	}
	th := cat.Thresholds()

	a := &Analyzer{
		cat:      cat,
		fraction: th.StyleFitPlayerFraction,
		sorted:   map[string][]float64{},
	}
	seen := map[string]bool{}
	for _, sf := range p.StyleFit {
		id, ok := cat.Resolve(sf.Metric)
		if !ok || seen[id] {
			continue
		}
		rank, ok := ReferenceRank(league, sf.Reference)
		if !ok || rank > th.ReferenceTopRank {
			continue
		}
		seen[id] = true
		a.metrics = append(a.metrics, id)

		values := broad.Values(id)
		sort.Float64s(values)
		a.sorted[id] = values
	}
	return a, nil
}

// StyleMetrics returns the canonical ids the reference team qualifies on.
func (a *Analyzer) StyleMetrics() []string {
	return append([]string(nil), a.metrics...)
}

// Analyze returns the style metrics where r ranks within the elite cutoff.
func (a *Analyzer) Analyze(r model.PlayerRecord) model.StyleFitResult {
	out := model.StyleFitResult{Qualified: len(a.metrics)}
	for _, id := range a.metrics {
		v, ok := r.Value(id)
		if !ok {
			continue
		}
		values := a.sorted[id]
		if len(values) == 0 {
			continue
		}
		m, _ := a.cat.Metric(id)
		if rankOf(v, values, m.LowerIsBetter) <= Cutoff(len(values), a.fraction) {
			out.Metrics = append(out.Metrics, id)
		}
	}
	out.Count = len(out.Metrics)
	return out
}
