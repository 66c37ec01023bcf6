// Package topn flags players ranked within the top N of the broad cohort on
// each raw metric of their profile.
package topn

import (
	"fmt"
	"sort"

	"github.com/okian/scoutgrade/internal/domain/catalog"
	"github.com/okian/scoutgrade/internal/domain/cohort"
	"github.com/okian/scoutgrade/internal/domain/model"
)

// Ranker ranks one profile's players on every leaf metric.
type Ranker struct {
	n       int
	metrics []string
	lower   map[string]bool
	sorted  map[string][]float64
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithN overrides the catalog's top_n threshold. Values below one are ignored.
func WithN(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.n = n
		}
	}
}

// New indexes the broad cohort of a profile for ranking.
func New(cat *catalog.Catalog, profileID string, broad *cohort.Cohort, opts ...Option) (*Ranker, error) {
	if _, ok := cat.Profile(profileID); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profileID)
	}
	r := &Ranker{
		n:       cat.Thresholds().TopN,
		metrics: cat.LeafMetrics(profileID),
		lower:   map[string]bool{},
		sorted:  map[string][]float64{},
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, id := range r.metrics {
		m, _ := cat.Metric(id)
		r.lower[id] = m.LowerIsBetter
		values := broad.Values(id)
		sort.Float64s(values)
		r.sorted[id] = values
	}
	return r, nil
}

// N returns the flagging cutoff.
func (r *Ranker) N() int { return r.n }

// Rank returns the competition rank of value among the cohort: one plus the
// number of strictly better values. Tied values share a rank, so every
// player tied at the Nth place is flagged.
func (r *Ranker) Rank(metric string, value float64) int {
	values := r.sorted[metric]
	if r.lower[metric] {
		return 1 + sort.SearchFloat64s(values, value)
	}
	above := sort.Search(len(values), func(i int) bool { return values[i] > value })
	return 1 + len(values) - above
}

// Flags ranks rec on every metric and returns the flags plus how many are
// raised. Unmeasured metrics get rank 0 and are never flagged.
func (r *Ranker) Flags(rec model.PlayerRecord) ([]model.TopNFlag, int) {
	flags := make([]model.TopNFlag, 0, len(r.metrics))
	raised := 0
	for _, id := range r.metrics {
		v, ok := rec.Value(id)
		if !ok {
			flags = append(flags, model.TopNFlag{Metric: id})
			continue
		}
		rank := r.Rank(id, v)
		f := model.TopNFlag{Metric: id, Rank: rank, Value: v, Flagged: rank <= r.n}
		if f.Flagged {
			raised++
		}
		flags = append(flags, f)
	}
	return flags, raised
}
