// Package cohort builds read-only reference statistics over a population of
// player records.
package cohort

import (
	"sort"

	"github.com/okian/scoutgrade/internal/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes one metric over one cohort. It is never mutated
// after Build returns. A Distribution with Valid false had no measured
// values and must not be scored against.
type Distribution struct {
	Metric string  `json:"metric"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
	Valid  bool    `json:"valid"`
}

// Degenerate reports whether every value in range is identical.
func (d Distribution) Degenerate() bool { return d.Max == d.Min }

type buildOptions struct {
	history []model.PlayerRecord
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithRangeHistory widens Min and Max with values from earlier seasons.
// Mean, StdDev, Median and Count still describe the current cohort only.
func WithRangeHistory(history []model.PlayerRecord) BuildOption {
	return func(o *buildOptions) {
		o.history = history
	}
}

// Build summarizes each metric over records.
func Build(records []model.PlayerRecord, metrics []string, opts ...BuildOption) map[string]Distribution {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	out := make(map[string]Distribution, len(metrics))
	for _, metric := range metrics {
		values := collect(records, metric)
		d := Distribution{Metric: metric, Count: len(values)}
		if len(values) == 0 {
			out[metric] = d
			continue
		}

		d.Valid = true
		d.Mean, d.StdDev = stat.PopMeanStdDev(values, nil)

		sort.Float64s(values)
		d.Median = stat.Quantile(0.5, stat.Empirical, values, nil)

		rangeValues := values
		if len(o.history) > 0 {
			rangeValues = append(collect(o.history, metric), values...)
		}
		d.Min = floats.Min(rangeValues)
		d.Max = floats.Max(rangeValues)
		out[metric] = d
	}
	return out
}

func collect(records []model.PlayerRecord, metric string) []float64 {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := r.Value(metric); ok {
			values = append(values, v)
		}
	}
	return values
}
