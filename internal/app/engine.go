package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scoutgrade/internal/adapters/worker"
	"github.com/okian/scoutgrade/internal/domain/catalog"
	"github.com/okian/scoutgrade/internal/domain/cohort"
	"github.com/okian/scoutgrade/internal/domain/consistency"
	"github.com/okian/scoutgrade/internal/domain/dedupe"
	"github.com/okian/scoutgrade/internal/domain/grading"
	"github.com/okian/scoutgrade/internal/domain/model"
	"github.com/okian/scoutgrade/internal/domain/progression"
	"github.com/okian/scoutgrade/internal/domain/scoring"
	"github.com/okian/scoutgrade/internal/domain/stylefit"
	"github.com/okian/scoutgrade/internal/domain/topn"
	"github.com/okian/scoutgrade/pkg/logger"
	"github.com/okian/scoutgrade/pkg/metrics"
)

// Engine runs the scoring pipeline over one snapshot. It holds no state
// between runs.
type Engine struct {
	cat    *catalog.Catalog
	pool   *worker.Pool
	logger logger.Logger
	now    func() time.Time
	season int
	topN   int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPool runs profile pipelines on p.
func WithPool(p *worker.Pool) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.pool = p
		}
	}
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock replaces time.Now for run metadata.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSeason pins the scored season. By default the latest season in the
// snapshot is scored and earlier ones are treated as history.
func WithSeason(season int) EngineOption {
	return func(e *Engine) {
		if season > 0 {
			e.season = season
		}
	}
}

// WithTopN overrides the catalog's top_n threshold.
func WithTopN(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

// NewEngine creates an Engine for a validated catalog.
func NewEngine(cat *catalog.Catalog, opts ...EngineOption) (*Engine, error) {
	if cat == nil {
		return nil, ErrNoCatalog
	}
	e := &Engine{
		cat:    cat,
		logger: logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pool == nil {
		e.pool = worker.New(worker.WithLogger(e.logger))
	}
	e.logger = e.logger.Named("engine")
	return e, nil
}

// Catalog returns the catalog the engine scores with.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Run scores snap and wraps the report with run metadata.
func (e *Engine) Run(ctx context.Context, snap model.Snapshot) (model.Run, error) {
	start := e.now()
	metrics.IncRunsInFlight()
	defer metrics.DecRunsInFlight()

	report, err := e.Report(ctx, snap)
	elapsed := e.now().Sub(start)
	if err != nil {
		metrics.RecordRun(metrics.OutcomeFailure, float64(elapsed.Milliseconds()))
		e.logger.Error(ctx, "scoring run failed", logger.Error(err))
		return model.Run{}, err
	}
	metrics.RecordRun(metrics.OutcomeSuccess, float64(elapsed.Milliseconds()))
	metrics.UpdateLastRun(start.Unix(), len(report.Bundles))

	run := model.Run{
		ID:        uuid.NewString(),
		StartedAt: start.UTC(),
		Duration:  elapsed,
		Report:    report,
	}
	e.logger.Info(ctx, "scoring run completed",
		logger.String("run_id", run.ID),
		logger.Int("season", report.Season),
		logger.Int("players", len(report.Bundles)),
		logger.Int("warnings", len(report.Warnings)),
	)
	return run, nil
}

// profileOutcome is what one profile pipeline returns.
type profileOutcome struct {
	summary  model.ProfileSummary
	bundles  []model.Bundle
	warnings []model.Warning
}

// scoredPlayer pairs a record with its graded score.
type scoredPlayer struct {
	rec    model.PlayerRecord
	scored scoring.Scored
}

// Report scores snap. Identical snapshots always produce identical reports.
func (e *Engine) Report(ctx context.Context, snap model.Snapshot) (model.Report, error) {
	season := e.season
	if season == 0 {
		for _, r := range snap.Records {
			season = max(season, r.Season)
		}
	}

	var current, past []model.PlayerRecord
	later := 0
	for _, r := range snap.Records {
		switch {
		case r.Season == season:
			current = append(current, r)
		case r.Season < season:
			past = append(past, r)
		default:
			later++
		}
	}
	for _, r := range snap.History {
		if r.Season < season {
			past = append(past, r)
		} else {
			later++
		}
	}
	if later > 0 {
		e.logger.Debug(ctx, "out-of-range seasons ignored",
			logger.Int("season", season), logger.Int("records", later))
	}

	var warnings []model.Warning
	current, ws := e.clean(ctx, current, true)
	warnings = append(warnings, ws...)
	past, _ = e.clean(ctx, past, false)

	byProfile := groupByProfile(current)
	historyByProfile := groupByProfile(past)

	priors, err := e.priorScores(ctx, past, historyByProfile)
	if err != nil {
		return model.Report{}, err
	}
	tracker := progression.NewTracker(priors, progression.WithSeasons(slices.Concat(snap.Records, snap.History)))

	profiles := e.cat.Profiles()
	jobs := make([]worker.Job[profileOutcome], len(profiles))
	for i, p := range profiles {
		jobs[i] = func(ctx context.Context) (profileOutcome, error) {
			return e.runProfile(ctx, p, byProfile[p.ID], historyByProfile[p.ID], snap.Reference, tracker)
		}
	}
	outcomes, err := worker.Run(ctx, e.pool, jobs)
	if err != nil {
		return model.Report{}, fmt.Errorf("score profiles: %w", err)
	}

	report := model.Report{
		Season:   season,
		Variant:  e.cat.Variant(),
		Profiles: make([]model.ProfileSummary, 0, len(outcomes)),
		Bundles:  make([]model.Bundle, 0, len(current)),
	}
	for _, o := range outcomes {
		report.Profiles = append(report.Profiles, o.summary)
		report.Bundles = append(report.Bundles, o.bundles...)
		warnings = append(warnings, o.warnings...)
	}
	sortWarnings(warnings)
	report.Warnings = warnings
	return report, nil
}

// clean drops repeated player-seasons, unknown profiles, ineligible
// conferences and players under the minute minimum. Records with zero or
// no measured values stay in the population. Warnings are only produced
// for the scored season.
func (e *Engine) clean(ctx context.Context, records []model.PlayerRecord, warn bool) ([]model.PlayerRecord, []model.Warning) {
	kept, dropped := dedupe.Records(ctx, dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(records))), records)

	var warnings []model.Warning
	add := func(w model.Warning) {
		if warn {
			warnings = append(warnings, w)
		}
	}
	for _, r := range dropped {
		add(model.Warning{
			Kind:     model.DuplicateRecord,
			Profile:  r.Profile,
			PlayerID: r.PlayerID,
			Message:  fmt.Sprintf("repeated record for season %d dropped", r.Season),
		})
	}

	minMinutes := e.cat.Thresholds().MinMinutes
	out := kept[:0]
	for _, r := range kept {
		switch {
		case !e.cat.Eligible(r.Conference):
			e.logger.Debug(ctx, "record outside eligible conferences",
				logger.String("player_id", r.PlayerID), logger.String("conference", r.Conference))
		case !e.hasProfile(r.Profile):
			add(model.Warning{
				Kind:     model.UnknownProfile,
				Profile:  r.Profile,
				PlayerID: r.PlayerID,
				Message:  "position profile not in catalog",
			})
		case r.Minutes < minMinutes:
			add(model.Warning{
				Kind:     model.NoData,
				Profile:  r.Profile,
				PlayerID: r.PlayerID,
				Message:  fmt.Sprintf("%.0f minutes is below the %.0f minute minimum", r.Minutes, minMinutes),
			})
		default:
			out = append(out, r)
		}
	}
	return out, warnings
}

func (e *Engine) hasProfile(id string) bool {
	_, ok := e.cat.Profile(id)
	return ok
}

func groupByProfile(records []model.PlayerRecord) map[string][]model.PlayerRecord {
	out := map[string][]model.PlayerRecord{}
	for _, r := range records {
		out[r.Profile] = append(out[r.Profile], r)
	}
	return out
}

// priorScores scores every earlier season on its own, one job per season.
func (e *Engine) priorScores(ctx context.Context, past []model.PlayerRecord, history map[string][]model.PlayerRecord) ([]model.PriorScore, error) {
	bySeason := map[int][]model.PlayerRecord{}
	for _, r := range past {
		bySeason[r.Season] = append(bySeason[r.Season], r)
	}
	seasons := make([]int, 0, len(bySeason))
	for s := range bySeason {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)

	jobs := make([]worker.Job[[]model.PriorScore], len(seasons))
	for i, s := range seasons {
		jobs[i] = func(ctx context.Context) ([]model.PriorScore, error) {
			var out []model.PriorScore
			records := groupByProfile(bySeason[s])
			for _, p := range e.cat.Profiles() {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				if len(records[p.ID]) == 0 {
					continue
				}
				_, players, err := e.scoreProfile(p, records[p.ID], history[p.ID])
				if err != nil {
					return nil, err
				}
				for _, sp := range players {
					out = append(out, model.PriorScore{
						PlayerID:   sp.rec.PlayerID,
						Season:     s,
						Profile:    p.ID,
						TotalScore: sp.scored.Result.TotalScore,
						Scale:      sp.scored.Result.Scale,
						Metrics:    sp.rec.Metrics,
					})
				}
			}
			return out, nil
		}
	}
	results, err := worker.Run(ctx, e.pool, jobs)
	if err != nil {
		return nil, fmt.Errorf("score history: %w", err)
	}
	var priors []model.PriorScore
	for _, r := range results {
		priors = append(priors, r...)
	}
	return priors, nil
}

// scoreProfile builds the cohorts of one profile, scores every record
// against its grading cohort and grades each cohort. Every player is also
// graded against the whole profile population.
func (e *Engine) scoreProfile(p catalog.Profile, records, history []model.PlayerRecord) (*cohort.Set, []*scoredPlayer, error) {
	scorer, err := scoring.New(e.cat, p.ID)
	if err != nil {
		return nil, nil, err
	}
	set := cohort.NewSet(p.ID, records, e.cat.LeafMetrics(p.ID),
		cohort.WithGradingScope(e.cat.GradingScope()),
		cohort.WithHistory(history, e.cat.NormalizationMode() == catalog.ModeHistorical),
	)

	players := make([]*scoredPlayer, len(records))
	all := make([]*model.ScoreResult, len(records))
	byCohort := map[string][]*model.ScoreResult{}
	for i, r := range records {
		c, _ := set.Grading(set.Key(r))
		sp := &scoredPlayer{rec: r, scored: scorer.Score(r, c)}
		players[i] = sp
		all[i] = &sp.scored.Result
		byCohort[c.Key] = append(byCohort[c.Key], &sp.scored.Result)
	}

	g := grading.New(e.cat.Grade)
	for _, key := range set.Keys() {
		g.Grade(byCohort[key])
	}
	g.GradeBroad(all)
	return set, players, nil
}

func (e *Engine) runProfile(
	ctx context.Context,
	p catalog.Profile,
	records, history []model.PlayerRecord,
	reference *model.ReferenceLeague,
	tracker *progression.Tracker,
) (profileOutcome, error) {
	start := time.Now()
	out := profileOutcome{summary: model.ProfileSummary{Profile: p.ID, Players: len(records), Cohorts: []string{}}}
	if len(records) == 0 {
		return out, nil
	}

	set, players, err := e.scoreProfile(p, records, history)
	if err != nil {
		return out, err
	}
	out.summary.Cohorts = set.Keys()
	out.warnings = append(out.warnings, e.cohortWarnings(p.ID, set)...)

	var analyzer *stylefit.Analyzer
	if reference != nil {
		analyzer, err = stylefit.New(e.cat, p.ID, reference, set.Broad)
		if err != nil {
			return out, err
		}
		out.summary.StyleMetrics = analyzer.StyleMetrics()
	}
	ranker, err := topn.New(e.cat, p.ID, set.Broad, topn.WithN(e.topN))
	if err != nil {
		return out, err
	}

	means := e.unitMeans(p.ID, set, players)
	leaves := e.cat.LeafMetrics(p.ID)
	var fits, flags int

	for _, sp := range players {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		b := model.Bundle{
			PlayerID:    sp.rec.PlayerID,
			Name:        sp.rec.Name,
			Team:        sp.rec.Team,
			Conference:  sp.rec.Conference,
			Profile:     p.ID,
			Season:      sp.rec.Season,
			Minutes:     sp.rec.Minutes,
			Score:       sp.scored.Result,
			Consistency: e.consistency(p.ID, sp, means[sp.scored.Result.Cohort]),
		}
		if analyzer != nil {
			fit := analyzer.Analyze(sp.rec)
			b.StyleFit = &fit
			fits += fit.Count
		}
		b.TopN, b.TopNCount = ranker.Flags(sp.rec)
		flags += b.TopNCount
		if pct, ok := sp.rec.TeamMinutesShare(); ok {
			b.TeamMinutesPct = &pct
		}
		b.Shortlisted = e.shortlisted(b)
		if b.Shortlisted {
			out.summary.Shortlisted++
		}

		prog := tracker.Track(sp.rec, sp.scored.Result, leaves)
		b.Progression = &prog
		if prog.Status == model.PositionChanged {
			out.warnings = append(out.warnings, model.Warning{
				Kind:     model.IncomparablePeriod,
				Profile:  p.ID,
				PlayerID: sp.rec.PlayerID,
				Message:  fmt.Sprintf("position changed from %s in season %d", prog.PriorProfile, prog.PriorSeason),
			})
		}
		c, _ := set.Grading(sp.scored.Result.Cohort)
		out.warnings = append(out.warnings, missingWarnings(p.ID, c, sp)...)
		out.bundles = append(out.bundles, b)
	}

	sort.SliceStable(out.bundles, func(i, j int) bool {
		x, y := out.bundles[i], out.bundles[j]
		if x.Score.TotalScore != y.Score.TotalScore {
			return x.Score.TotalScore > y.Score.TotalScore
		}
		return x.PlayerID < y.PlayerID
	})

	metrics.RecordPlayersScored(p.ID, len(players))
	metrics.RecordStyleFits(p.ID, fits)
	metrics.RecordTopNFlags(p.ID, flags)
	for _, w := range out.warnings {
		metrics.RecordWarning(p.ID, string(w.Kind))
	}
	metrics.RecordProfileDuration(p.ID, float64(time.Since(start).Milliseconds()))
	e.logger.Debug(ctx, "profile scored",
		logger.String("profile", p.ID),
		logger.Int("players", len(players)),
		logger.Int("cohorts", len(out.summary.Cohorts)),
		logger.Int("shortlisted", out.summary.Shortlisted),
	)
	return out, nil
}

// shortlisted keeps players graded at least the shortlist grade in both
// their cohort and the broad population who played enough of their team's
// minutes. An unknown minutes share does not exclude a player.
func (e *Engine) shortlisted(b model.Bundle) bool {
	th := e.cat.Thresholds()
	if !e.cat.GradeAtLeast(b.Score.Grade, th.ShortlistMinGrade) ||
		!e.cat.GradeAtLeast(b.Score.Broad.Grade, th.ShortlistMinGrade) {
		return false
	}
	return b.TeamMinutesPct == nil || *b.TeamMinutesPct >= th.ShortlistTeamMinutesPct
}

func (e *Engine) cohortWarnings(profile string, set *cohort.Set) []model.Warning {
	var out []model.Warning
	leaves := e.cat.LeafMetrics(profile)
	for _, key := range set.Keys() {
		c, _ := set.Grading(key)
		for _, leaf := range leaves {
			if d, ok := c.Distribution(leaf); ok && d.Valid {
				continue
			}
			out = append(out, model.Warning{
				Kind:    model.InsufficientCohort,
				Profile: profile,
				Cohort:  key,
				Metric:  leaf,
				Message: "no player in cohort has a value; metric scored as missing",
			})
		}
	}
	return out
}

// unitMeans averages every composite unit over the cohort members that
// measured all of its leaves. Simple metrics use their distribution mean.
func (e *Engine) unitMeans(profile string, set *cohort.Set, players []*scoredPlayer) map[string]map[string]float64 {
	type acc struct {
		sum float64
		n   int
	}
	sums := map[string]map[string]*acc{}
	for _, sp := range players {
		key := sp.scored.Result.Cohort
		if sums[key] == nil {
			sums[key] = map[string]*acc{}
		}
		for _, unit := range e.cat.Units(profile) {
			m, _ := e.cat.Metric(unit)
			if !m.IsComposite() || !sp.scored.Complete[unit] {
				continue
			}
			a := sums[key][unit]
			if a == nil {
				a = &acc{}
				sums[key][unit] = a
			}
			a.sum += sp.scored.Units[unit]
			a.n++
		}
	}

	out := map[string]map[string]float64{}
	for _, key := range set.Keys() {
		c, _ := set.Grading(key)
		means := map[string]float64{}
		for _, unit := range e.cat.Units(profile) {
			m, _ := e.cat.Metric(unit)
			if m.IsComposite() {
				if a := sums[key][unit]; a != nil {
					means[unit] = a.sum / float64(a.n)
				}
				continue
			}
			if d, ok := c.Distribution(unit); ok && d.Valid {
				means[unit] = d.Mean
			}
		}
		out[key] = means
	}
	return out
}

// consistency compares each measured unit with its cohort mean. Composites
// are compared on their combined normalized value.
func (e *Engine) consistency(profile string, sp *scoredPlayer, means map[string]float64) model.ConsistencyResult {
	var obs []consistency.Observation
	for _, unit := range e.cat.Units(profile) {
		mean, ok := means[unit]
		if !ok {
			continue
		}
		m, _ := e.cat.Metric(unit)
		var v float64
		if m.IsComposite() {
			if !sp.scored.Complete[unit] {
				continue
			}
			v = sp.scored.Units[unit]
		} else {
			raw, measured := sp.rec.Value(unit)
			if !measured {
				continue
			}
			v = raw
		}
		obs = append(obs, consistency.Observation{
			Metric:        unit,
			Value:         v,
			Mean:          mean,
			LowerIsBetter: m.LowerIsBetter && !m.IsComposite(),
		})
	}
	return consistency.Analyze(obs, e.cat.Thresholds().ConsistencyTolerance)
}

// missingWarnings reports leaves the player did not measure. Leaves missing
// because the whole cohort lacks them are covered by cohort warnings.
func missingWarnings(profile string, c *cohort.Cohort, sp *scoredPlayer) []model.Warning {
	var out []model.Warning
	seen := map[string]bool{}
	for _, leaf := range sp.scored.Result.Missing {
		if seen[leaf] {
			continue
		}
		seen[leaf] = true
		if _, ok := sp.rec.Value(leaf); ok {
			continue
		}
		if d, ok := c.Distribution(leaf); !ok || !d.Valid {
			continue
		}
		out = append(out, model.Warning{
			Kind:     model.MissingValue,
			Profile:  profile,
			Cohort:   sp.scored.Result.Cohort,
			PlayerID: sp.rec.PlayerID,
			Metric:   leaf,
			Message:  "metric not measured; contributes zero",
		})
	}
	return out
}

func sortWarnings(ws []model.Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		a, b := ws[i], ws[j]
		switch {
		case a.Profile != b.Profile:
			return a.Profile < b.Profile
		case a.Kind != b.Kind:
			return a.Kind < b.Kind
		case a.Cohort != b.Cohort:
			return a.Cohort < b.Cohort
		case a.PlayerID != b.PlayerID:
			return a.PlayerID < b.PlayerID
		case a.Metric != b.Metric:
			return a.Metric < b.Metric
		default:
			return a.Message < b.Message
		}
	})
}
