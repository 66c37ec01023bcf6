package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/scoutgrade/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

const twoGroupCatalog = `
metrics:
  - { id: tackles, kind: rate_per_90 }
  - { id: passes, kind: rate_per_90 }
  - { id: pass_pct, kind: percentage }
  - id: passing
    kind: composite
    components:
      - { metric: passes, weight: 0.7 }
      - { metric: pass_pct, weight: 0.3 }
profiles:
  - id: cb
    groups:
      - { id: d, tier: core, weight: 0.5, metrics: [tackles] }
      - { id: p, tier: specific, weight: 0.5, metrics: [passing] }
`

func TestDefaultCatalog(t *testing.T) {
	Convey("Given the built-in catalog", t, func() {
		c, err := catalog.Default(context.Background())
		So(err, ShouldBeNil)

		Convey("Then every profile is available in declaration order", func() {
			ids := []string{}
			for _, p := range c.Profiles() {
				ids = append(ids, p.ID)
			}
			So(ids, ShouldResemble, []string{"hybrid_cb", "centre_midfielder", "winger"})
			So(c.ProfileIDs(), ShouldResemble, []string{"centre_midfielder", "hybrid_cb", "winger"})
		})

		Convey("Then thresholds and grades are explicit", func() {
			th := c.Thresholds()
			So(th.ConsistencyTolerance, ShouldEqual, 0.01)
			So(th.StyleFitPlayerFraction, ShouldEqual, 0.2)
			So(th.ReferenceTopRank, ShouldEqual, 3)
			So(th.TopN, ShouldEqual, 15)
			So(c.Grades(), ShouldHaveLength, 5)
			So(c.NormalizationMode(), ShouldEqual, catalog.ModeSingleSeason)
			So(c.GradingScope(), ShouldEqual, catalog.GradeByConference)
		})

		Convey("Then names and aliases resolve to canonical ids", func() {
			id, ok := c.Resolve("Prog passes per 90")
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, "progressive_passes")

			id, ok = c.Resolve("progressive passes per 90")
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, "progressive_passes")

			_, ok = c.Resolve("xG per 90")
			So(ok, ShouldBeFalse)
		})

		Convey("Then leaf metrics expand composites once", func() {
			leaves := c.LeafMetrics("hybrid_cb")
			So(leaves, ShouldContain, "defensive_duels")
			So(leaves, ShouldContain, "defensive_duels_won_pct")
			So(leaves, ShouldNotContain, "defensive_duel_quality")
			seen := map[string]int{}
			for _, l := range leaves {
				seen[l]++
			}
			for _, n := range seen {
				So(n, ShouldEqual, 1)
			}
		})

		Convey("Then eligibility follows the configured conferences", func() {
			So(c.Eligible("ACC"), ShouldBeTrue)
			So(c.Eligible("WCC"), ShouldBeFalse)
		})

		Convey("Then grades are monotonic in the scale", func() {
			So(c.Grade(10), ShouldEqual, "A")
			So(c.Grade(9), ShouldEqual, "A")
			So(c.Grade(8.99), ShouldEqual, "B")
			So(c.Grade(7), ShouldEqual, "C")
			So(c.Grade(6.5), ShouldEqual, "D")
			So(c.Grade(1), ShouldEqual, "F")
		})
	})
}

func TestEvaluators(t *testing.T) {
	Convey("Given a catalog with a composite metric", t, func() {
		c, err := catalog.Parse(context.Background(), []byte(twoGroupCatalog))
		So(err, ShouldBeNil)

		values := map[string]float64{"passes": 1, "pass_pct": 0.5, "tackles": 0.25}
		lookup := func(id string) (float64, bool) {
			v, ok := values[id]
			return v, ok
		}

		Convey("When evaluating a simple metric", func() {
			eval, ok := c.Evaluator("tackles")
			So(ok, ShouldBeTrue)
			v, missing := eval(lookup)
			So(v, ShouldEqual, 0.25)
			So(missing, ShouldBeEmpty)
		})

		Convey("When evaluating the composite", func() {
			eval, _ := c.Evaluator("passing")
			v, missing := eval(lookup)
			So(v, ShouldAlmostEqual, 0.85, 1e-9)
			So(missing, ShouldBeEmpty)
		})

		Convey("When a component is missing", func() {
			delete(values, "pass_pct")
			eval, _ := c.Evaluator("passing")
			v, missing := eval(lookup)
			So(v, ShouldAlmostEqual, 0.7, 1e-9)
			So(missing, ShouldResemble, []string{"pass_pct"})
		})

		Convey("Then defaults are filled for omitted sections", func() {
			So(c.Thresholds(), ShouldResemble, catalog.DefaultThresholds())
			So(c.Grades(), ShouldResemble, catalog.DefaultGrades())
			So(c.Units("cb"), ShouldResemble, []string{"tackles", "passing"})
			So(c.Leaves("passing"), ShouldResemble, []string{"passes", "pass_pct"})
		})
	})
}

func TestCatalogValidation(t *testing.T) {
	ctx := context.Background()

	Convey("Given catalogs that break weighting rules", t, func() {
		Convey("When group weights do not sum to 1", func() {
			_, err := catalog.Parse(ctx, []byte(`
metrics:
  - { id: a, kind: rate_per_90 }
  - { id: b, kind: rate_per_90 }
profiles:
  - id: p
    groups:
      - { id: g1, tier: core, weight: 0.5, metrics: [a] }
      - { id: g2, tier: specific, weight: 0.4, metrics: [b] }
`))
			Convey("Then loading fails with a configuration error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
				var cfgErr *catalog.ConfigurationError
				So(errors.As(err, &cfgErr), ShouldBeTrue)
				So(cfgErr.Error(), ShouldContainSubstring, "group weights sum")
			})
		})

		Convey("When composite weights do not sum to 1", func() {
			_, err := catalog.Parse(ctx, []byte(`
metrics:
  - { id: a, kind: rate_per_90 }
  - { id: b, kind: percentage }
  - id: c
    kind: composite
    components:
      - { metric: a, weight: 0.7 }
      - { metric: b, weight: 0.2 }
profiles:
  - id: p
    groups:
      - { id: g1, tier: core, weight: 1, metrics: [c] }
`))
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "component weights sum")
		})

		Convey("When a sum is off by less than the tolerance", func() {
			_, err := catalog.Parse(ctx, []byte(`
metrics:
  - { id: a, kind: rate_per_90 }
  - { id: b, kind: rate_per_90 }
profiles:
  - id: p
    groups:
      - { id: g1, tier: core, weight: 0.5000001, metrics: [a] }
      - { id: g2, tier: core, weight: 0.5, metrics: [b] }
`))
			So(err, ShouldBeNil)
		})

		Convey("When a group references an unknown metric", func() {
			_, err := catalog.Parse(ctx, []byte(`
metrics:
  - { id: a, kind: rate_per_90 }
profiles:
  - id: p
    groups:
      - { id: g1, tier: core, weight: 1, metrics: [a, nope] }
`))
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `unknown metric "nope"`)
		})

		Convey("When grade bands are not monotonic", func() {
			_, err := catalog.Parse(ctx, []byte(twoGroupCatalog+`
grades:
  - { letter: A, min: 8 }
  - { letter: B, min: 9 }
  - { letter: F, min: 0 }
`))
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "grades[1]")
		})
	})

	Convey("Given catalogs the schema rejects", t, func() {
		Convey("When a metric has an unknown kind", func() {
			_, err := catalog.Parse(ctx, []byte(`
metrics:
  - { id: a, kind: per_game }
profiles:
  - id: p
    groups:
      - { id: g1, tier: core, weight: 1, metrics: [a] }
`))
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When a key is misspelled", func() {
			_, err := catalog.Parse(ctx, []byte(twoGroupCatalog+`
threshold:
  top_n: 10
`))
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When profiles are missing", func() {
			_, err := catalog.Parse(ctx, []byte(`
metrics:
  - { id: a, kind: rate_per_90 }
`))
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
		})
	})
}

func TestThresholdOverrides(t *testing.T) {
	ctx := context.Background()

	Convey("Given a catalog that sets some thresholds explicitly", t, func() {
		c, err := catalog.Parse(ctx, []byte(twoGroupCatalog+`
thresholds:
  consistency_tolerance: 0
  top_n: 5
  shortlist_team_minutes_pct: 0
`))
		So(err, ShouldBeNil)
		th := c.Thresholds()

		Convey("Then explicit zeros are kept", func() {
			So(th.ConsistencyTolerance, ShouldEqual, 0)
			So(th.ShortlistTeamMinutesPct, ShouldEqual, 0)
			So(th.TopN, ShouldEqual, 5)
		})

		Convey("Then omitted thresholds take their defaults", func() {
			def := catalog.DefaultThresholds()
			So(th.StyleFitPlayerFraction, ShouldEqual, def.StyleFitPlayerFraction)
			So(th.ReferenceTopRank, ShouldEqual, def.ReferenceTopRank)
			So(th.ShortlistMinGrade, ShouldEqual, "B")
		})
	})

	Convey("Given thresholds that cannot be honoured", t, func() {
		Convey("When the style fit fraction is zero", func() {
			_, err := catalog.Parse(ctx, []byte(twoGroupCatalog+`
thresholds:
  style_fit_player_fraction: 0
`))
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When the reference rank is zero", func() {
			_, err := catalog.Parse(ctx, []byte(twoGroupCatalog+`
thresholds:
  reference_top_rank: 0
`))
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
		})

		Convey("When the shortlist grade is not in the grade table", func() {
			_, err := catalog.Parse(ctx, []byte(twoGroupCatalog+`
thresholds:
  shortlist_min_grade: Z
`))
			So(errors.Is(err, catalog.ErrConfiguration), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "shortlist_min_grade")
		})
	})

	Convey("Given the default grade table", t, func() {
		c, err := catalog.Default(ctx)
		So(err, ShouldBeNil)

		Convey("Then letters compare by band order", func() {
			So(c.GradeAtLeast("A", "B"), ShouldBeTrue)
			So(c.GradeAtLeast("B", "B"), ShouldBeTrue)
			So(c.GradeAtLeast("C", "B"), ShouldBeFalse)
			So(c.GradeAtLeast("", "B"), ShouldBeFalse)
			So(c.GradeAtLeast("A", "Z"), ShouldBeFalse)
		})
	})
}

func TestVariants(t *testing.T) {
	Convey("Given the built-in catalog", t, func() {
		base, err := catalog.Default(context.Background())
		So(err, ShouldBeNil)
		So(base.Variants(), ShouldResemble, []string{"intent_focused", "balanced"})

		Convey("When switching to the intent focused variant", func() {
			v, err := base.WithVariant("intent_focused")
			So(err, ShouldBeNil)
			m, _ := v.Metric("passing")

			Convey("Then composite weights follow the override", func() {
				So(v.Variant(), ShouldEqual, "intent_focused")
				So(m.Components[0].Weight, ShouldEqual, 0.8)
				So(m.Components[1].Weight, ShouldEqual, 0.2)
			})

			Convey("Then the base catalog is untouched", func() {
				bm, _ := base.Metric("passing")
				So(bm.Components[0].Weight, ShouldEqual, 0.7)
			})

			Convey("Then another variant can be chosen from it", func() {
				b, err := v.WithVariant("balanced")
				So(err, ShouldBeNil)
				bm, _ := b.Metric("passing")
				So(bm.Components[0].Weight, ShouldEqual, 0.6)

				r, err := b.WithVariant("")
				So(err, ShouldBeNil)
				rm, _ := r.Metric("passing")
				So(rm.Components[0].Weight, ShouldEqual, 0.7)
			})
		})

		Convey("When the variant is unknown", func() {
			_, err := base.WithVariant("nope")
			So(errors.Is(err, catalog.ErrUnknownVariant), ShouldBeTrue)
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	Convey("Given a catalog file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		So(os.WriteFile(path, catalog.DefaultSource(), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			c, err := catalog.Load(context.Background(), path)
			So(err, ShouldBeNil)
			_, ok := c.Profile("winger")
			So(ok, ShouldBeTrue)
		})

		Convey("When the file does not exist", func() {
			_, err := catalog.Load(context.Background(), path+".missing")
			So(errors.Is(err, catalog.ErrLoadCatalog), ShouldBeTrue)
		})
	})
}
