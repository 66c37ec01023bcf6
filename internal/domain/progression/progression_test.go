package progression_test

import (
	"testing"

	"github.com/okian/scoutgrade/internal/domain/model"
	"github.com/okian/scoutgrade/internal/domain/progression"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPercentChange(t *testing.T) {
	Convey("Given prior and current values", t, func() {
		So(progression.PercentChange(4, 5), ShouldEqual, 25)
		So(progression.PercentChange(5, 4), ShouldEqual, -20)
		So(progression.PercentChange(0, 0), ShouldEqual, 0)
		So(progression.PercentChange(0, 2), ShouldEqual, 100)
	})
}

func TestTracker(t *testing.T) {
	Convey("Given prior scores across seasons and profiles", t, func() {
		tr := progression.NewTracker([]model.PriorScore{
			{PlayerID: "a", Season: 2023, Profile: "cb", TotalScore: 4, Scale: 5},
			{PlayerID: "a", Season: 2024, Profile: "cb", TotalScore: 6, Scale: 7, Metrics: map[string]float64{"tackles": 2, "passes": 30}},
			{PlayerID: "b", Season: 2024, Profile: "winger", TotalScore: 7},
			{PlayerID: "c", Season: 2024, Profile: "winger", TotalScore: 7},
			{PlayerID: "c", Season: 2023, Profile: "cb", TotalScore: 3, Scale: 2},
			{PlayerID: "d", Season: 2025, Profile: "cb", TotalScore: 9},
		})
		current := model.ScoreResult{TotalScore: 7.5, Scale: 8}

		Convey("When the player has a prior under the same profile", func() {
			rec := model.PlayerRecord{PlayerID: "a", Profile: "cb", Season: 2025, Metrics: map[string]float64{"tackles": 3, "passes": 30, "shots": 1}}
			p := tr.Track(rec, current, []string{"tackles", "passes", "shots"})

			Convey("Then the most recent prior is diffed", func() {
				So(p.Status, ShouldEqual, model.HasPriorScore)
				So(p.PriorSeason, ShouldEqual, 2024)
				So(*p.PriorScore, ShouldEqual, 6)
				So(*p.Delta, ShouldEqual, 1.5)
				So(*p.PercentChange, ShouldEqual, 25)
				So(*p.ScaleChange, ShouldEqual, 1)
			})

			Convey("Then metric changes cover metrics measured in both seasons", func() {
				So(p.MetricChanges, ShouldHaveLength, 2)
				So(p.MetricChanges[0].Metric, ShouldEqual, "tackles")
				So(p.MetricChanges[0].Change, ShouldEqual, 1)
				So(*p.MetricChanges[0].PercentChange, ShouldEqual, 50)
				So(*p.MetricChanges[1].PercentChange, ShouldEqual, 0)
			})
		})

		Convey("When the only prior is under another profile", func() {
			rec := model.PlayerRecord{PlayerID: "b", Profile: "cb", Season: 2025}
			p := tr.Track(rec, current, nil)

			Convey("Then it is a position change without a delta", func() {
				So(p.Status, ShouldEqual, model.PositionChanged)
				So(p.PriorProfile, ShouldEqual, "winger")
				So(p.Delta, ShouldBeNil)
				So(p.PriorScore, ShouldBeNil)
			})
		})

		Convey("When an older prior shares the profile", func() {
			rec := model.PlayerRecord{PlayerID: "c", Profile: "cb", Season: 2025}
			p := tr.Track(rec, current, nil)
			So(p.Status, ShouldEqual, model.HasPriorScore)
			So(p.PriorSeason, ShouldEqual, 2023)
			So(*p.Delta, ShouldEqual, 4.5)
		})

		Convey("When there is no earlier season", func() {
			p := tr.Track(model.PlayerRecord{PlayerID: "d", Profile: "cb", Season: 2025, SeasonsPlayed: 1}, current, nil)

			Convey("Then the delta is undefined", func() {
				So(p.Status, ShouldEqual, model.NoPriorData)
				So(p.Delta, ShouldBeNil)
				So(p.Rookie, ShouldBeTrue)
			})
		})

		Convey("When the player is unknown", func() {
			p := tr.Track(model.PlayerRecord{PlayerID: "z", Profile: "cb", Season: 2025}, current, nil)
			So(p.Status, ShouldEqual, model.NoPriorData)
			So(p.SeasonsPlayed, ShouldEqual, 1)
			So(p.Rookie, ShouldBeTrue)
		})

		Convey("When the record id differs only in case and spacing", func() {
			rec := model.PlayerRecord{PlayerID: " A ", Profile: "cb", Season: 2025}
			p := tr.Track(rec, current, nil)
			So(p.Status, ShouldEqual, model.HasPriorScore)
			So(p.PriorSeason, ShouldEqual, 2024)
		})
	})

	Convey("Given season records without a seasons played count", t, func() {
		seasons := []model.PlayerRecord{
			{PlayerID: "vet", Season: 2022},
			{PlayerID: "vet", Season: 2023},
			{PlayerID: "VET", Season: 2024},
			{PlayerID: "vet", Season: 2024},
			{PlayerID: "vet", Season: 2026},
			{PlayerID: "new", Season: 2024},
		}
		tr := progression.NewTracker(nil, progression.WithSeasons(seasons))
		current := model.ScoreResult{TotalScore: 5}

		Convey("When a veteran is tracked", func() {
			p := tr.Track(model.PlayerRecord{PlayerID: "vet", Profile: "cb", Season: 2024}, current, nil)

			Convey("Then distinct seasons up to the scored one are counted", func() {
				So(p.SeasonsPlayed, ShouldEqual, 3)
				So(p.Rookie, ShouldBeFalse)
			})
		})

		Convey("When a first-season player is tracked", func() {
			p := tr.Track(model.PlayerRecord{PlayerID: "new", Profile: "cb", Season: 2024}, current, nil)
			So(p.SeasonsPlayed, ShouldEqual, 1)
			So(p.Rookie, ShouldBeTrue)
		})

		Convey("When the record carries its own count", func() {
			p := tr.Track(model.PlayerRecord{PlayerID: "new", Profile: "cb", Season: 2024, SeasonsPlayed: 4}, current, nil)
			So(p.SeasonsPlayed, ShouldEqual, 4)
			So(p.Rookie, ShouldBeFalse)
		})
	})
}
