package stylefit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/scoutgrade/internal/domain/catalog"
	"github.com/okian/scoutgrade/internal/domain/cohort"
	"github.com/okian/scoutgrade/internal/domain/model"
	"github.com/okian/scoutgrade/internal/domain/stylefit"
	. "github.com/smartystreets/goconvey/convey"
)

const styleCatalog = `
metrics:
  - { id: prog_passes, name: Progressive passes per 90, kind: rate_per_90, aliases: [Prog passes] }
  - { id: crosses, kind: rate_per_90 }
  - { id: losses, kind: rate_per_90, lower_is_better: true }
  - { id: shots, kind: rate_per_90 }
profiles:
  - id: fb
    groups:
      - { id: all, tier: core, weight: 1, metrics: [prog_passes, crosses, losses, shots] }
    style_fit:
      - { metric: prog_passes, reference: Progressive passes }
      - { metric: Prog passes, reference: Progressive passes }
      - { metric: Progressive passes per 90, reference: Progressive passes }
      - { metric: crosses, reference: Crosses }
      - { metric: losses, reference: Losses }
      - { metric: shots, reference: Shots }
`

// league of 14 teams where "Target" ranks 1st on progressive passes, 3rd on
// crosses, 2nd (fewest) on losses and 9th on shots.
func league() *model.ReferenceLeague {
	l := &model.ReferenceLeague{Team: "Target", LowerIsBetter: []string{"Losses"}}
	for i := 0; i < 13; i++ {
		l.Teams = append(l.Teams, model.TeamStats{
			Team: fmt.Sprintf("Team %02d", i),
			Stats: map[string]float64{
				"Progressive passes": float64(10 + i),
				"Crosses":            float64(i),
				"Losses":             float64(20 + i),
				"Shots":              float64(i),
			},
		})
	}
	l.Teams = append(l.Teams, model.TeamStats{
		Team: "Target",
		Stats: map[string]float64{
			"Progressive passes": 40,
			"Crosses":            10.5,
			"Losses":             20.5,
			"Shots":              4.5,
		},
	})
	return l
}

func players(n int) []model.PlayerRecord {
	out := make([]model.PlayerRecord, n)
	for i := range out {
		out[i] = model.PlayerRecord{
			PlayerID: fmt.Sprintf("p%02d", i),
			Metrics: map[string]float64{
				"prog_passes": float64(i),
				"crosses":     float64(i),
				"losses":      float64(i),
				"shots":       float64(i),
			},
		}
	}
	return out
}

func TestReferenceRank(t *testing.T) {
	Convey("Given a reference league of 14 teams", t, func() {
		l := league()

		Convey("Then ranks count teams at least as good", func() {
			r, ok := stylefit.ReferenceRank(l, "Progressive passes")
			So(ok, ShouldBeTrue)
			So(r, ShouldEqual, 1)

			r, _ = stylefit.ReferenceRank(l, "Crosses")
			So(r, ShouldEqual, 3)

			r, _ = stylefit.ReferenceRank(l, "Losses")
			So(r, ShouldEqual, 2)

			r, _ = stylefit.ReferenceRank(l, "Shots")
			So(r, ShouldEqual, 9)
		})

		Convey("Then a missing stat has no rank", func() {
			_, ok := stylefit.ReferenceRank(l, "xG")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCutoff(t *testing.T) {
	Convey("Given the elite cutoff", t, func() {
		So(stylefit.Cutoff(20, 0.2), ShouldEqual, 4)
		So(stylefit.Cutoff(14, 0.2), ShouldEqual, 3)
		So(stylefit.Cutoff(2, 0.2), ShouldEqual, 1)
		So(stylefit.Cutoff(0, 0.2), ShouldEqual, 1)
	})
}

func TestAnalyzer(t *testing.T) {
	Convey("Given twenty players and a reference team", t, func() {
		cat, err := catalog.Parse(context.Background(), []byte(styleCatalog))
		So(err, ShouldBeNil)
		records := players(20)
		set := cohort.NewSet("fb", records, cat.LeafMetrics("fb"))

		a, err := stylefit.New(cat, "fb", league(), set.Broad)
		So(err, ShouldBeNil)

		Convey("Then duplicate display names count once", func() {
			So(a.StyleMetrics(), ShouldResemble, []string{"prog_passes", "crosses", "losses"})
		})

		Convey("When the player is top of the cohort", func() {
			r := a.Analyze(records[19])

			Convey("Then higher-is-better style metrics fit", func() {
				So(r.Metrics, ShouldResemble, []string{"prog_passes", "crosses"})
				So(r.Count, ShouldEqual, 2)
				So(r.Qualified, ShouldEqual, 3)
			})
		})

		Convey("When the player has the fewest losses", func() {
			r := a.Analyze(records[0])
			So(r.Metrics, ShouldResemble, []string{"losses"})
		})

		Convey("When the player sits at the 20% boundary", func() {
			r := a.Analyze(records[16])
			So(r.Count, ShouldEqual, 2)
			r = a.Analyze(records[15])
			So(r.Count, ShouldEqual, 0)
		})

		Convey("Then no player ever fits more than the team qualifies on", func() {
			for _, p := range records {
				r := a.Analyze(p)
				So(r.Count, ShouldBeLessThanOrEqualTo, r.Qualified)
			}
		})
	})

	Convey("Given no reference league", t, func() {
		cat, err := catalog.Parse(context.Background(), []byte(styleCatalog))
		So(err, ShouldBeNil)
		set := cohort.NewSet("fb", players(3), cat.LeafMetrics("fb"))
		_, err = stylefit.New(cat, "fb", nil, set.Broad)
		So(errors.Is(err, stylefit.ErrNoReference), ShouldBeTrue)
	})
}
