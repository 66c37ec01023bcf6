// Package consistency classifies a player's metrics as above, at or below
// the cohort average and derives a consistency score.
package consistency

import (
	"math"

	"github.com/okian/scoutgrade/internal/domain/model"
)

// Class is a metric's position relative to the cohort mean.
type Class int

const (
	Below Class = iota - 1
	At
	Above
)

func (c Class) String() string {
	switch c {
	case Above:
		return "above"
	case Below:
		return "below"
	default:
		return "at"
	}
}

// Observation is one metric unit to compare. Composite metrics arrive as a
// single observation carrying their combined value.
type Observation struct {
	Metric        string
	Value         float64
	Mean          float64
	LowerIsBetter bool
}

// Classify compares value with mean using a band of relTolerance*|mean|.
// A zero mean has a zero band, so any nonzero value is above or below.
func Classify(value, mean, relTolerance float64, lowerIsBetter bool) Class {
	tol := math.Abs(mean) * relTolerance
	var c Class
	switch {
	case value > mean+tol:
		c = Above
	case value < mean-tol:
		c = Below
	default:
		c = At
	}
	if lowerIsBetter {
		c = -c
	}
	return c
}

// Analyze classifies every observation. Above+At+Below always equals
// Evaluated; an empty input scores zero.
func Analyze(obs []Observation, relTolerance float64) model.ConsistencyResult {
	var out model.ConsistencyResult
	for _, o := range obs {
		switch Classify(o.Value, o.Mean, relTolerance, o.LowerIsBetter) {
		case Above:
			out.Above++
		case Below:
			out.Below++
			out.BelowMetrics = append(out.BelowMetrics, o.Metric)
		default:
			out.At++
		}
	}
	out.Evaluated = len(obs)
	if out.Evaluated == 0 {
		return out
	}

	total := float64(out.Evaluated)
	out.Score = round1(math.Max(0, 100-float64(out.Below)*(100/total)))
	out.Percentage = round1(float64(out.Above) / total * 100)
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
