package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutgrade/internal/adapters/http/api"
	"github.com/okian/scoutgrade/internal/adapters/repository"
	"github.com/okian/scoutgrade/internal/domain/model"
	"github.com/okian/scoutgrade/internal/domain/types"
)

type mockDeps struct {
	run         *model.Run
	entries     []types.Entry
	lastLimit   int
	lastCohort  string
	latestCalls int
}

func (m *mockDeps) Leaderboard(_ context.Context, profile, cohort string, limit int) ([]types.Entry, error) {
	if m.run == nil {
		return nil, repository.ErrNoRun
	}
	if profile != "cb" {
		return nil, fmt.Errorf("profile %q: %w", profile, repository.ErrNotFound)
	}
	m.lastLimit = limit
	m.lastCohort = cohort
	return m.entries, nil
}

func (m *mockDeps) Player(_ context.Context, id string) (types.PlayerBundle, error) {
	if m.run == nil {
		return types.PlayerBundle{}, repository.ErrNoRun
	}
	for _, b := range m.run.Report.Bundles {
		if b.PlayerID == id {
			return types.PlayerBundle{RunID: m.run.ID, Bundle: b}, nil
		}
	}
	return types.PlayerBundle{}, fmt.Errorf("player %q: %w", id, repository.ErrNotFound)
}

func (m *mockDeps) LatestRun(context.Context) (model.Run, error) {
	m.latestCalls++
	if m.run == nil {
		return model.Run{}, repository.ErrNoRun
	}
	return *m.run, nil
}

func (m *mockDeps) RunByID(_ context.Context, id string) (model.Run, error) {
	if m.run == nil || m.run.ID != id {
		return model.Run{}, fmt.Errorf("run %q: %w", id, repository.ErrNotFound)
	}
	return *m.run, nil
}

func (m *mockDeps) Profiles() []string { return []string{"cb", "dm"} }

func (m *mockDeps) GetStats(context.Context) map[string]any {
	return map[string]any{"runs": 1}
}

func newMux(deps api.Dependencies, maxLimit int) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, maxLimit).Register(context.Background(), mux)
	return mux
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestReadAPI(t *testing.T) {
	Convey("Given a server with a published run", t, func() {
		deps := &mockDeps{
			run: &model.Run{
				ID: "run-1",
				Report: model.Report{
					Season:  2025,
					Bundles: []model.Bundle{{PlayerID: "p1", Team: "A", Profile: "cb"}},
				},
			},
			entries: []types.Entry{
				{Rank: 1, PlayerID: "p1", Score: 10, Grade: "A"},
				{Rank: 2, PlayerID: "p2", Score: 5, Grade: "D"},
			},
		}
		mux := newMux(deps, 50)

		Convey("When fetching a leaderboard with defaults", func() {
			rec := get(mux, "/leaderboard?profile=cb")

			Convey("Then entries are returned with the default limit", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got []types.Entry
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[0].PlayerID, ShouldEqual, "p1")
				So(deps.lastLimit, ShouldEqual, 25)
			})
		})

		Convey("When filtering by cohort with an explicit limit", func() {
			rec := get(mux, "/leaderboard?profile=cb&cohort=ACC&limit=10")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 10)
			So(deps.lastCohort, ShouldEqual, "ACC")
		})

		Convey("When the query is malformed", func() {
			So(get(mux, "/leaderboard").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/leaderboard?profile=cb&limit=abc").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/leaderboard?profile=cb&limit=0").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/leaderboard?profile=cb&limit=51").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the profile is unknown", func() {
			So(get(mux, "/leaderboard?profile=gk").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When fetching a player", func() {
			rec := get(mux, "/players/p1")

			Convey("Then the bundle carries the run id", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got struct {
					RunID  string       `json:"run_id"`
					Bundle model.Bundle `json:"bundle"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.RunID, ShouldEqual, "run-1")
				So(got.Bundle.Team, ShouldEqual, "A")
			})

			Convey("Then the player and run id come from a single store read", func() {
				So(deps.latestCalls, ShouldEqual, 0)
			})

			So(get(mux, "/players/nobody").Code, ShouldEqual, http.StatusNotFound)
			So(get(mux, "/players/").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching runs", func() {
			rec := get(mux, "/runs/latest")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var got model.Run
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.ID, ShouldEqual, "run-1")
			So(got.Report.Season, ShouldEqual, 2025)

			So(get(mux, "/runs/run-1").Code, ShouldEqual, http.StatusOK)
			So(get(mux, "/runs/run-9").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When listing profiles and stats", func() {
			rec := get(mux, "/profiles")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"dm"`)

			rec = get(mux, "/stats")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"runs":1`)
		})

		Convey("When a write method is used", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leaderboard?profile=cb", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When scraping health", func() {
			get(mux, "/stats")
			rec := get(mux, "/healthz")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "http_requests_total")
		})
	})

	Convey("Given a server before the first run", t, func() {
		mux := newMux(&mockDeps{}, 0)

		Convey("Then reads report the service as unavailable", func() {
			rec := get(mux, "/leaderboard?profile=cb")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(rec.Body.String(), ShouldContainSubstring, `"code":"no_run"`)
			So(get(mux, "/runs/latest").Code, ShouldEqual, http.StatusServiceUnavailable)
			So(get(mux, "/players/p1").Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
