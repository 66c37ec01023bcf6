package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/okian/scoutgrade/internal/domain/model"
	"github.com/okian/scoutgrade/internal/domain/types"
)

const defaultRetention = 5

// snapshot is an indexed, read-only view of one run.
type snapshot struct {
	run      model.Run
	byPlayer map[string]int
	// boards holds bundle indexes per profile, best first.
	boards map[string][]int
}

// RunStore is an in-memory Store. Reads are lock-free over an immutable
// snapshot swapped in atomically on Publish.
type RunStore struct {
	current   atomic.Pointer[snapshot]
	mu        sync.Mutex
	retained  []*snapshot
	retention int
}

// NewRunStore creates an empty store.
func NewRunStore(opts ...Option) *RunStore {
	s := &RunStore{retention: defaultRetention}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newSnapshot(run model.Run) *snapshot {
	snap := &snapshot{
		run:      run,
		byPlayer: make(map[string]int, len(run.Report.Bundles)),
		boards:   map[string][]int{},
	}
	bundles := run.Report.Bundles
	for i, b := range bundles {
		key := model.PlayerKey(b.PlayerID)
		if _, dup := snap.byPlayer[key]; !dup {
			snap.byPlayer[key] = i
		}
		snap.boards[b.Profile] = append(snap.boards[b.Profile], i)
	}
	for _, idx := range snap.boards {
		sort.SliceStable(idx, func(a, b int) bool {
			x, y := bundles[idx[a]], bundles[idx[b]]
			if x.Score.TotalScore != y.Score.TotalScore {
				return x.Score.TotalScore > y.Score.TotalScore
			}
			return x.PlayerID < y.PlayerID
		})
	}
	return snap
}

// Publish indexes run and makes it the latest.
func (s *RunStore) Publish(ctx context.Context, run model.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := newSnapshot(run)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.retained = append(s.retained, snap)
	if len(s.retained) > s.retention {
		s.retained = s.retained[len(s.retained)-s.retention:]
	}
	s.current.Store(snap)
	return nil
}

// Latest returns the most recently published run.
func (s *RunStore) Latest(_ context.Context) (model.Run, error) {
	snap := s.current.Load()
	if snap == nil {
		return model.Run{}, ErrNoRun
	}
	return snap.run, nil
}

// Run returns a retained run by id.
func (s *RunStore) Run(_ context.Context, id string) (model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.retained) - 1; i >= 0; i-- {
		if s.retained[i].run.ID == id {
			return s.retained[i].run, nil
		}
	}
	return model.Run{}, fmt.Errorf("run %q: %w", id, ErrNotFound)
}

// Leaderboard ranks a profile's players of the latest run. Equal Total
// Scores share a rank.
func (s *RunStore) Leaderboard(_ context.Context, profile, cohort string, limit int) ([]types.Entry, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoRun
	}
	idx, ok := snap.boards[profile]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", profile, ErrNotFound)
	}

	out := make([]types.Entry, 0, len(idx))
	for _, i := range idx {
		b := snap.run.Report.Bundles[i]
		if cohort != "" && b.Score.Cohort != cohort {
			continue
		}
		rank := len(out) + 1
		if n := len(out); n > 0 && out[n-1].Score == b.Score.TotalScore {
			rank = out[n-1].Rank
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, types.Entry{
			Rank:       rank,
			PlayerID:   b.PlayerID,
			Name:       b.Name,
			Team:       b.Team,
			Conference: b.Conference,
			Cohort:     b.Score.Cohort,
			Score:      b.Score.TotalScore,
			Percentile: b.Score.Percentile,
			Scale:      b.Score.Scale,
			Grade:      b.Score.Grade,
		})
	}
	return out, nil
}

// Player returns a player's bundle from the latest run. The run id comes
// from the same snapshot as the bundle.
func (s *RunStore) Player(_ context.Context, playerID string) (types.PlayerBundle, error) {
	snap := s.current.Load()
	if snap == nil {
		return types.PlayerBundle{}, ErrNoRun
	}
	i, ok := snap.byPlayer[model.PlayerKey(playerID)]
	if !ok {
		return types.PlayerBundle{}, fmt.Errorf("player %q: %w", playerID, ErrNotFound)
	}
	return types.PlayerBundle{RunID: snap.run.ID, Bundle: snap.run.Report.Bundles[i]}, nil
}

// Count returns the number of bundles in the latest run.
func (s *RunStore) Count(_ context.Context) int {
	snap := s.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.run.Report.Bundles)
}

var _ Store = (*RunStore)(nil)
