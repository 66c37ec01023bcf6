// Package service wires the scoring engine to a snapshot source, the run
// store and an optional rescoring schedule, and implements the read
// dependencies of the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/scoutgrade/internal/adapters/repository"
	"github.com/okian/scoutgrade/internal/domain/model"
	"github.com/okian/scoutgrade/internal/domain/types"
	"github.com/okian/scoutgrade/pkg/logger"
)

const cronStopTimeout = 5 * time.Second

// Source loads the snapshot a run scores.
type Source interface {
	Snapshot(ctx context.Context) (model.Snapshot, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (model.Snapshot, error)

// Snapshot calls f.
func (f SourceFunc) Snapshot(ctx context.Context) (model.Snapshot, error) { return f(ctx) }

// Service runs the engine and publishes its runs.
type Service struct {
	mu sync.RWMutex
	// runMu serializes rescoring so runs publish in order.
	runMu sync.Mutex

	engine *Engine
	source Source
	store  repository.Store

	schedule string
	cron     *cron.Cron
	started  bool
	// starting is held between a Start's first check and its outcome.
	starting bool
	runs     int
	lastErr  error

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the run store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSchedule rescores on a cron spec, e.g. "@every 1h" or "0 6 * * *".
func WithSchedule(spec string) Option {
	return func(s *Service) {
		s.schedule = spec
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service.
func New(engine *Engine, source Source, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	if source == nil {
		return nil, ErrNoSource
	}
	s := &Service{
		engine: engine,
		source: source,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewRunStore()
	}
	s.logger = s.logger.Named("service")
	return s, nil
}

// Start scores once and publishes the run, then starts the rescoring
// schedule if one is configured. A failed first run fails Start. Only one
// of several concurrent Start calls proceeds; the rest get ErrAlreadyActive.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started || s.starting {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	s.starting = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting scoring service...")
	if _, err := s.Rescore(ctx); err != nil {
		s.mu.Lock()
		s.starting = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.starting = false
	if s.schedule != "" {
		c := cron.New(cron.WithLogger(cronLogger{s.logger}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})))
		if _, err := c.AddFunc(s.schedule, func() {
			if _, err := s.Rescore(ctx); err != nil {
				s.logger.Error(ctx, "scheduled rescore failed", logger.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("%w %q: %w", ErrBadSchedule, s.schedule, err)
		}
		c.Start()
		s.cron = c
	}
	s.started = true
	s.logger.Info(ctx, "scoring service started", logger.String("schedule", s.schedule))
	return nil
}

// Stop halts the schedule and waits briefly for a running rescore.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	if s.cron != nil {
		select {
		case <-s.cron.Stop().Done():
		case <-time.After(cronStopTimeout):
			s.logger.Warn(context.Background(), "rescore still running at shutdown")
		}
		s.cron = nil
	}
	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

// Rescore loads a fresh snapshot, scores it and publishes the run.
func (s *Service) Rescore(ctx context.Context) (model.Run, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	run, err := s.rescore(ctx)
	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.runs++
	}
	s.mu.Unlock()
	return run, err
}

func (s *Service) rescore(ctx context.Context) (model.Run, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return model.Run{}, fmt.Errorf("load snapshot: %w", err)
	}
	run, err := s.engine.Run(ctx, snap)
	if err != nil {
		return model.Run{}, err
	}
	if err := s.store.Publish(ctx, run); err != nil {
		return model.Run{}, fmt.Errorf("publish run: %w", err)
	}
	return run, nil
}

// Leaderboard returns ranked entries of a profile from the latest run.
func (s *Service) Leaderboard(ctx context.Context, profile, cohort string, limit int) ([]types.Entry, error) {
	return s.store.Leaderboard(ctx, profile, cohort, limit)
}

// Player returns a player's bundle from the latest run with that run's id.
func (s *Service) Player(ctx context.Context, playerID string) (types.PlayerBundle, error) {
	return s.store.Player(ctx, playerID)
}

// LatestRun returns the latest published run.
func (s *Service) LatestRun(ctx context.Context) (model.Run, error) {
	return s.store.Latest(ctx)
}

// RunByID returns a retained run.
func (s *Service) RunByID(ctx context.Context, id string) (model.Run, error) {
	return s.store.Run(ctx, id)
}

// Profiles lists the catalog's profile ids in declaration order.
func (s *Service) Profiles() []string {
	ps := s.engine.Catalog().Profiles()
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":  s.started,
		"runs":     s.runs,
		"players":  s.store.Count(ctx),
		"schedule": s.schedule,
		"variant":  s.engine.Catalog().Variant(),
	}
	if run, err := s.store.Latest(ctx); err == nil {
		stats["latest_run"] = run.ID
		stats["season"] = run.Report.Season
		stats["warnings"] = len(run.Report.Warnings)
	}
	if s.lastErr != nil {
		stats["last_error"] = s.lastErr.Error()
	}
	return stats
}

// cronLogger routes scheduler logs through the service logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(context.Background(), msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(context.Background(), msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
