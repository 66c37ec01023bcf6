package cohort

import (
	"sort"

	"github.com/okian/scoutgrade/internal/domain/catalog"
	"github.com/okian/scoutgrade/internal/domain/model"
)

// AllKey identifies the cohort of every eligible player.
const AllKey = "all"

// Cohort is a population of records with its distributions.
type Cohort struct {
	Key     string
	Members []model.PlayerRecord
	dists   map[string]Distribution
}

// Distribution returns the summary of a metric; ok is false for metrics the
// cohort was not built for.
func (c *Cohort) Distribution(metric string) (Distribution, bool) {
	d, ok := c.dists[metric]
	return d, ok
}

// Size returns the number of members.
func (c *Cohort) Size() int { return len(c.Members) }

// Values returns the measured values of a metric in member order.
func (c *Cohort) Values(metric string) []float64 {
	return collect(c.Members, metric)
}

// Set holds every cohort one position profile is compared against: the broad
// population used for rankings, and the grading cohorts.
type Set struct {
	Profile string
	Broad   *Cohort
	scope   string
	grading map[string]*Cohort
}

type setOptions struct {
	scope      string
	history    []model.PlayerRecord
	historical bool
}

// Option configures NewSet.
type Option func(*setOptions)

// WithGradingScope selects conference or all-eligible grading cohorts.
func WithGradingScope(scope string) Option {
	return func(o *setOptions) {
		if scope != "" {
			o.scope = scope
		}
	}
}

// WithHistory supplies earlier seasons of the same profile. They widen
// normalization ranges only when historical is true.
func WithHistory(history []model.PlayerRecord, historical bool) Option {
	return func(o *setOptions) {
		o.history = history
		o.historical = historical
	}
}

// NewSet partitions records of one profile into cohorts and builds their
// distributions for metrics. The returned Set is read-only.
func NewSet(profile string, records []model.PlayerRecord, metrics []string, opts ...Option) *Set {
	o := setOptions{scope: catalog.GradeByConference}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Set{
		Profile: profile,
		scope:   o.scope,
		grading: map[string]*Cohort{},
	}

	var broadOpts []BuildOption
	if o.historical {
		broadOpts = append(broadOpts, WithRangeHistory(o.history))
	}
	s.Broad = &Cohort{Key: AllKey, Members: records, dists: Build(records, metrics, broadOpts...)}

	if s.scope == catalog.GradeByAll {
		s.grading[AllKey] = s.Broad
		return s
	}

	members := map[string][]model.PlayerRecord{}
	for _, r := range records {
		key := s.Key(r)
		members[key] = append(members[key], r)
	}
	past := map[string][]model.PlayerRecord{}
	if o.historical {
		for _, r := range o.history {
			key := s.Key(r)
			past[key] = append(past[key], r)
		}
	}
	for key, rs := range members {
		var bo []BuildOption
		if o.historical {
			bo = append(bo, WithRangeHistory(past[key]))
		}
		s.grading[key] = &Cohort{Key: key, Members: rs, dists: Build(rs, metrics, bo...)}
	}
	return s
}

// Key returns the grading cohort a record belongs to.
func (s *Set) Key(r model.PlayerRecord) string {
	if s.scope == catalog.GradeByAll {
		return AllKey
	}
	return r.Conference
}

// Grading returns a grading cohort by key.
func (s *Set) Grading(key string) (*Cohort, bool) {
	c, ok := s.grading[key]
	return c, ok
}

// Keys returns the grading cohort keys sorted.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.grading))
	for k := range s.grading {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
