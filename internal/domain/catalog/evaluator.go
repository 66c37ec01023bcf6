package catalog

import (
	"fmt"
)

// Evaluator combines leaf values into one metric value. Leaves for which
// value reports false contribute zero and are returned as missing.
//
// Simple and composite metrics are both resolved into an Evaluator when the
// catalog is built, so scoring never inspects a metric's kind.
type Evaluator func(value func(leaf string) (float64, bool)) (float64, []string)

func simpleEvaluator(id string) Evaluator {
	return func(value func(string) (float64, bool)) (float64, []string) {
		v, ok := value(id)
		if !ok {
			return 0, []string{id}
		}
		return v, nil
	}
}

func compositeEvaluator(components []Component) Evaluator {
	cs := append([]Component(nil), components...)
	return func(value func(string) (float64, bool)) (float64, []string) {
		var total float64
		var missing []string
		for _, c := range cs {
			v, ok := value(c.Metric)
			if !ok {
				missing = append(missing, c.Metric)
				continue
			}
			total += c.Weight * v
		}
		return total, missing
	}
}

// WithVariant returns a new catalog whose composite weights follow the named
// variant. An empty name restores the base weights.
func (c *Catalog) WithVariant(name string) (*Catalog, error) {
	if name == "" {
		return build(c.base, "")
	}
	var variant *Variant
	for i := range c.base.Variants {
		if c.base.Variants[i].Name == name {
			variant = &c.base.Variants[i]
			break
		}
	}
	if variant == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}

	doc := cloneDocument(c.base)
	for _, o := range variant.Overrides {
		for i := range doc.Metrics {
			if doc.Metrics[i].ID == o.Metric {
				doc.Metrics[i].Components = append([]Component(nil), o.Components...)
			}
		}
	}
	out, err := build(doc, name)
	if err != nil {
		return nil, err
	}
	out.base = c.base
	return out, nil
}

func cloneDocument(d Document) Document {
	out := d
	out.Metrics = make([]Metric, len(d.Metrics))
	for i, m := range d.Metrics {
		m.Aliases = append([]string(nil), m.Aliases...)
		m.Components = append([]Component(nil), m.Components...)
		out.Metrics[i] = m
	}
	out.Profiles = make([]Profile, len(d.Profiles))
	for i, p := range d.Profiles {
		groups := make([]Group, len(p.Groups))
		for j, g := range p.Groups {
			g.Metrics = append([]string(nil), g.Metrics...)
			groups[j] = g
		}
		p.Groups = groups
		p.StyleFit = append([]StyleFitMetric(nil), p.StyleFit...)
		out.Profiles[i] = p
	}
	out.Grades = append([]GradeBand(nil), d.Grades...)
	out.Cohorts.Eligible = append([]string(nil), d.Cohorts.Eligible...)
	out.Variants = make([]Variant, len(d.Variants))
	for i, v := range d.Variants {
		overrides := make([]Override, len(v.Overrides))
		for j, o := range v.Overrides {
			o.Components = append([]Component(nil), o.Components...)
			overrides[j] = o
		}
		v.Overrides = overrides
		out.Variants[i] = v
	}
	return out
}
