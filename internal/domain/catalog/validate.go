package catalog

import (
	"fmt"
	"math"
	"strings"
)

// build validates a document and resolves it into a Catalog. Every problem
// found is reported in one ConfigurationError.
func build(doc Document, variant string) (*Catalog, error) { //nolint:gocyclo,funlen // single pass over the document
	applyDefaults(&doc)
	v := &validator{}
	tol := doc.Thresholds.WeightTolerance

	c := &Catalog{
		doc:        doc,
		variant:    variant,
		metrics:    make(map[string]Metric, len(doc.Metrics)),
		aliases:    make(map[string]string),
		profiles:   make(map[string]Profile, len(doc.Profiles)),
		evaluators: make(map[string]Evaluator, len(doc.Metrics)),
		leaves:     make(map[string][]string, len(doc.Metrics)),
	}

	if len(doc.Metrics) == 0 {
		v.addf("metrics: at least one metric is required")
	}
	for i, m := range doc.Metrics {
		path := fmt.Sprintf("metrics[%d]", i)
		if m.ID == "" {
			v.addf("%s: id is required", path)
			continue
		}
		if _, dup := c.metrics[m.ID]; dup {
			v.addf("%s: duplicate metric id %q", path, m.ID)
			continue
		}
		switch m.Kind {
		case KindRatePer90, KindPercentage:
			if len(m.Components) > 0 {
				v.addf("%s: %q is %s and cannot have components", path, m.ID, m.Kind)
			}
		case KindComposite:
			if len(m.Components) == 0 {
				v.addf("%s: composite %q needs components", path, m.ID)
			}
		default:
			v.addf("%s: %q has unknown kind %q", path, m.ID, m.Kind)
		}
		c.metrics[m.ID] = m
	}

	// Alias table: ids, display names and aliases all resolve to the id.
	for _, m := range doc.Metrics {
		if m.ID == "" {
			continue
		}
		for _, name := range append([]string{m.ID, m.Name}, m.Aliases...) {
			if name == "" {
				continue
			}
			key := normalizeKey(name)
			if owner, taken := c.aliases[key]; taken && owner != m.ID {
				v.addf("metrics: name %q is used by both %q and %q", name, owner, m.ID)
				continue
			}
			c.aliases[key] = m.ID
		}
	}

	for _, m := range doc.Metrics {
		if _, done := c.evaluators[m.ID]; done || m.ID == "" {
			continue
		}
		if !m.IsComposite() {
			c.evaluators[m.ID] = simpleEvaluator(m.ID)
			c.leaves[m.ID] = []string{m.ID}
			continue
		}
		v.checkComponents("metrics."+m.ID, m.Components, c.metrics, tol)
		c.evaluators[m.ID] = compositeEvaluator(m.Components)
		leaves := make([]string, 0, len(m.Components))
		for _, comp := range m.Components {
			leaves = append(leaves, comp.Metric)
		}
		c.leaves[m.ID] = leaves
	}

	if len(doc.Profiles) == 0 {
		v.addf("profiles: at least one profile is required")
	}
	for i, p := range doc.Profiles {
		path := fmt.Sprintf("profiles[%d]", i)
		if p.ID == "" {
			v.addf("%s: id is required", path)
			continue
		}
		if _, dup := c.profiles[p.ID]; dup {
			v.addf("%s: duplicate profile id %q", path, p.ID)
			continue
		}
		path = "profiles." + p.ID
		if len(p.Groups) == 0 {
			v.addf("%s: at least one group is required", path)
		}
		var sum float64
		used := map[string]string{}
		for _, g := range p.Groups {
			gpath := path + ".groups." + g.ID
			if g.Tier != TierCore && g.Tier != TierSpecific {
				v.addf("%s: unknown tier %q", gpath, g.Tier)
			}
			if g.Weight <= 0 {
				v.addf("%s: weight must be positive, got %v", gpath, g.Weight)
			}
			sum += g.Weight
			if len(g.Metrics) == 0 {
				v.addf("%s: at least one metric is required", gpath)
			}
			for _, id := range g.Metrics {
				if _, ok := c.metrics[id]; !ok {
					v.addf("%s: unknown metric %q", gpath, id)
				}
				if other, dup := used[id]; dup {
					v.addf("%s: metric %q already scored in group %q", gpath, id, other)
				}
				used[id] = g.ID
			}
		}
		if len(p.Groups) > 0 && math.Abs(sum-1) > tol {
			v.addf("%s: group weights sum to %v, want 1.0", path, sum)
		}
		for _, sf := range p.StyleFit {
			id, ok := c.aliases[normalizeKey(sf.Metric)]
			if !ok {
				v.addf("%s.style_fit: unknown metric %q", path, sf.Metric)
				continue
			}
			if c.metrics[id].IsComposite() {
				v.addf("%s.style_fit: %q is composite; style fit ranks raw statistics", path, sf.Metric)
			}
			if sf.Reference == "" {
				v.addf("%s.style_fit: %q has no reference statistic", path, sf.Metric)
			}
		}
		c.profiles[p.ID] = p
	}

	v.checkThresholds(doc.Thresholds)
	v.checkShortlistGrade(doc.Thresholds.ShortlistMinGrade, doc.Grades)
	v.checkGrades(doc.Grades)

	switch doc.Normalization.Mode {
	case ModeSingleSeason, ModeHistorical:
	default:
		v.addf("normalization.mode: unknown mode %q", doc.Normalization.Mode)
	}
	switch doc.Cohorts.Grading {
	case GradeByConference, GradeByAll:
	default:
		v.addf("cohorts.grading: unknown scope %q", doc.Cohorts.Grading)
	}

	seenVariant := map[string]bool{}
	for _, vr := range doc.Variants {
		if vr.Name == "" {
			v.addf("variants: name is required")
			continue
		}
		if seenVariant[vr.Name] {
			v.addf("variants: duplicate variant %q", vr.Name)
		}
		seenVariant[vr.Name] = true
		for _, o := range vr.Overrides {
			m, ok := c.metrics[o.Metric]
			if !ok || !m.IsComposite() {
				v.addf("variants.%s: %q is not a composite metric", vr.Name, o.Metric)
				continue
			}
			v.checkComponents("variants."+vr.Name+"."+o.Metric, o.Components, c.metrics, tol)
		}
	}

	if err := v.err(); err != nil {
		return nil, err
	}
	if variant == "" {
		c.base = cloneDocument(doc)
	}
	return c, nil
}

// applyDefaults fills the grade table, normalization mode and grading
// scope when the document leaves them unset. Thresholds are defaulted
// before decoding so that explicit zeros survive.
func applyDefaults(doc *Document) {
	if len(doc.Grades) == 0 {
		doc.Grades = DefaultGrades()
	}
	if doc.Normalization.Mode == "" {
		doc.Normalization.Mode = ModeSingleSeason
	}
	if doc.Cohorts.Grading == "" {
		doc.Cohorts.Grading = GradeByConference
	}
}

type validator struct {
	problems []string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ConfigurationError{Problems: v.problems}
}

func (v *validator) checkComponents(path string, comps []Component, metrics map[string]Metric, tol float64) {
	var sum float64
	seen := map[string]bool{}
	for _, comp := range comps {
		m, ok := metrics[comp.Metric]
		switch {
		case !ok:
			v.addf("%s: unknown component %q", path, comp.Metric)
		case m.IsComposite():
			v.addf("%s: component %q is itself composite", path, comp.Metric)
		}
		if seen[comp.Metric] {
			v.addf("%s: component %q listed twice", path, comp.Metric)
		}
		seen[comp.Metric] = true
		if comp.Weight < 0 {
			v.addf("%s: component %q has negative weight", path, comp.Metric)
		}
		sum += comp.Weight
	}
	if len(comps) > 0 && math.Abs(sum-1) > tol {
		v.addf("%s: component weights sum to %v, want 1.0", path, sum)
	}
}

func (v *validator) checkThresholds(t Thresholds) {
	if t.ConsistencyTolerance < 0 {
		v.addf("thresholds.consistency_tolerance: must not be negative")
	}
	if t.StyleFitPlayerFraction <= 0 || t.StyleFitPlayerFraction > 1 {
		v.addf("thresholds.style_fit_player_fraction: must be in (0, 1], got %v", t.StyleFitPlayerFraction)
	}
	if t.ReferenceTopRank < 1 {
		v.addf("thresholds.reference_top_rank: must be at least 1")
	}
	if t.TopN < 1 {
		v.addf("thresholds.top_n: must be at least 1")
	}
	if t.WeightTolerance <= 0 {
		v.addf("thresholds.weight_tolerance: must be positive")
	}
	if t.MinMinutes < 0 {
		v.addf("thresholds.min_minutes: must not be negative")
	}
	if t.ShortlistTeamMinutesPct < 0 || t.ShortlistTeamMinutesPct > 100 {
		v.addf("thresholds.shortlist_team_minutes_pct: must be in [0, 100], got %v", t.ShortlistTeamMinutesPct)
	}
}

func (v *validator) checkShortlistGrade(letter string, bands []GradeBand) {
	for _, b := range bands {
		if b.Letter == letter {
			return
		}
	}
	v.addf("thresholds.shortlist_min_grade: %q is not a configured grade", letter)
}

// checkGrades requires strictly decreasing minimums ending at 0 so a higher
// scale value can never map to a lower letter.
func (v *validator) checkGrades(bands []GradeBand) {
	seen := map[string]bool{}
	for i, b := range bands {
		if b.Letter == "" {
			v.addf("grades[%d]: letter is required", i)
		}
		if seen[b.Letter] {
			v.addf("grades[%d]: duplicate letter %q", i, b.Letter)
		}
		seen[b.Letter] = true
		if i > 0 && b.Min >= bands[i-1].Min {
			v.addf("grades[%d]: min %v must be below %v", i, b.Min, bands[i-1].Min)
		}
	}
	if len(bands) > 0 && bands[len(bands)-1].Min != 0 {
		v.addf("grades: last band must start at 0")
	}
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
