// Package grading ranks Total Scores within a cohort and maps the resulting
// percentile onto a 1-10 scale and a letter grade.
package grading

import (
	"math"
	"sort"

	"github.com/okian/scoutgrade/internal/domain/model"
)

const (
	deciles  = 10
	minScale = 1.0
	maxScale = 10.0
)

// Percentile returns the share of sorted scores at or below score, in 0-100.
// sorted must be in ascending order.
func Percentile(score float64, sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	atOrBelow := sort.Search(len(sorted), func(i int) bool { return sorted[i] > score })
	return float64(atOrBelow) / float64(len(sorted)) * 100
}

// Scale interpolates linearly inside the percentile's decile band: the
// 70th-80th percentile band spans scale 7.0-8.0. Anything below the first
// decile floors at 1.0.
func Scale(percentile float64) float64 {
	if percentile >= 100 {
		return maxScale
	}
	band := math.Floor(percentile / deciles)
	if band < 1 {
		return minScale
	}
	return band + (percentile-band*deciles)/deciles
}

// LetterFunc maps a scale value to a letter grade.
type LetterFunc func(scale float64) string

// Grader assigns percentile, scale and grade within one cohort.
type Grader struct {
	letter LetterFunc
}

// New returns a Grader using letter for grade bands.
func New(letter LetterFunc) *Grader {
	return &Grader{letter: letter}
}

// Grade fills Percentile, Scale and Grade of every result from the cohort's
// Total Scores. Equal Total Scores always get equal grades.
func (g *Grader) Grade(results []*model.ScoreResult) {
	sorted := totals(results)
	for _, r := range results {
		s := g.standing(r.TotalScore, sorted)
		r.Percentile, r.Scale, r.Grade = s.Percentile, s.Scale, s.Grade
	}
}

// GradeBroad fills Broad of every result, ranking all of them as one
// population regardless of their grading cohort.
func (g *Grader) GradeBroad(results []*model.ScoreResult) {
	sorted := totals(results)
	for _, r := range results {
		r.Broad = g.standing(r.TotalScore, sorted)
	}
}

func (g *Grader) standing(total float64, sorted []float64) model.Standing {
	pct := Percentile(total, sorted)
	scale := Scale(pct)
	return model.Standing{Percentile: pct, Scale: scale, Grade: g.letter(scale)}
}

func totals(results []*model.ScoreResult) []float64 {
	sorted := make([]float64, len(results))
	for i, r := range results {
		sorted[i] = r.TotalScore
	}
	sort.Float64s(sorted)
	return sorted
}
