package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/okian/scoutgrade/internal/adapters/output"
	"github.com/okian/scoutgrade/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleReport() model.Report {
	delta := 1.25
	return model.Report{
		Season:  2025,
		Variant: "balanced",
		Profiles: []model.ProfileSummary{
			{Profile: "cb", Players: 2, Cohorts: []string{"ACC"}, Shortlisted: 1, StyleMetrics: []string{"tackles"}},
			{Profile: "dm", Players: 0, Cohorts: []string{}},
		},
		Bundles: []model.Bundle{
			{
				PlayerID: "p1", Name: "Ada Stone", Team: "Tigers", Profile: "cb",
				Score: model.ScoreResult{
					TotalScore: 8.5, Percentile: 100, Scale: 10, Grade: "A", Cohort: "ACC",
					Broad: model.Standing{Percentile: 80, Scale: 8, Grade: "B"},
				},
				StyleFit:    &model.StyleFitResult{Count: 1, Qualified: 1, Metrics: []string{"tackles"}},
				TopNCount:   2,
				Progression: &model.ProgressionResult{Status: model.HasPriorScore, Delta: &delta},
				Shortlisted: true,
			},
			{
				PlayerID: "p2", Team: "Owls", Profile: "cb",
				Score:       model.ScoreResult{TotalScore: 3, Percentile: 50, Scale: 5, Grade: "F", Cohort: "ACC"},
				Progression: &model.ProgressionResult{Status: model.PositionChanged},
			},
		},
		Warnings: []model.Warning{
			{Kind: model.MissingValue, PlayerID: "p2", Metric: "passes"},
			{Kind: model.MissingValue, PlayerID: "p2", Metric: "crosses"},
			{Kind: model.DuplicateRecord, PlayerID: "p1"},
		},
	}
}

func TestFormatters(t *testing.T) {
	Convey("Given a report", t, func() {
		report := sampleReport()

		Convey("When encoded as JSON", func() {
			f, err := output.New("json")
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(f.Format(&buf, report), ShouldBeNil)

			Convey("Then it decodes back to the same bundles", func() {
				var back model.Report
				So(json.Unmarshal(buf.Bytes(), &back), ShouldBeNil)
				So(back.Bundles[0].PlayerID, ShouldEqual, "p1")
				So(*back.Bundles[0].Progression.Delta, ShouldEqual, 1.25)
				So(back.Bundles[0].Score.Broad.Grade, ShouldEqual, "B")
				So(back.Bundles[0].Shortlisted, ShouldBeTrue)
			})
		})

		Convey("When encoded as YAML", func() {
			f, err := output.New("yaml")
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(f.Format(&buf, report), ShouldBeNil)

			Convey("Then snake_case keys are used", func() {
				So(buf.String(), ShouldContainSubstring, "total_score: 8.5")
				var back model.Report
				So(yaml.Unmarshal(buf.Bytes(), &back), ShouldBeNil)
				So(back.Season, ShouldEqual, 2025)
			})
		})

		Convey("When rendered for the console", func() {
			f, err := output.New("console")
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(f.Format(&buf, report), ShouldBeNil)
			out := buf.String()

			Convey("Then each profile and a warning summary are shown", func() {
				So(out, ShouldContainSubstring, "Season 2025 (balanced weights)")
				So(out, ShouldContainSubstring, "cb: 2 players, cohorts ACC, 1 shortlisted")
				So(out, ShouldContainSubstring, "Broad")
				So(out, ShouldContainSubstring, "yes")
				So(out, ShouldContainSubstring, "Ada Stone")
				So(out, ShouldContainSubstring, "+1.25")
				So(out, ShouldContainSubstring, "moved")
				So(out, ShouldContainSubstring, "1/1")
				So(out, ShouldContainSubstring, "3 warnings: duplicate_record=1 missing_value=2")
			})
		})

		Convey("When the format is unknown", func() {
			_, err := output.New("pdf")
			So(errors.Is(err, output.ErrUnknownFormat), ShouldBeTrue)
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given an output path", t, func() {
		path := filepath.Join(t.TempDir(), "report.json")
		w, err := output.Open(path)
		So(err, ShouldBeNil)
		_, err = w.Write([]byte("{}"))
		So(err, ShouldBeNil)
		So(w.Close(), ShouldBeNil)

		data, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, "{}")

		stdout, err := output.Open("-")
		So(err, ShouldBeNil)
		So(stdout.Close(), ShouldBeNil)
	})
}
