// Package dedupe drops repeated player-season records from an input
// snapshot so a player is never counted twice in a cohort.
package dedupe

import (
	"context"
	"strconv"
	"sync"

	"github.com/okian/scoutgrade/internal/domain/model"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	Size() int
}

type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates an unbounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	o := options{capacity: 0}
	for _, opt := range opts {
		opt(&o)
	}
	return &inMemoryDeduper{seen: make(map[string]struct{}, o.capacity)}
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Key identifies a player-season by model.PlayerKey and season.
func Key(r model.PlayerRecord) string {
	return model.PlayerKey(r.PlayerID) + "|" + strconv.Itoa(r.Season)
}

// Records keeps the first record of every player-season and returns the
// dropped repeats separately. Input order is preserved.
func Records(ctx context.Context, d Deduper, records []model.PlayerRecord) (kept, dropped []model.PlayerRecord) {
	kept = make([]model.PlayerRecord, 0, len(records))
	for _, r := range records {
		if d.SeenAndRecord(ctx, Key(r)) {
			dropped = append(dropped, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}
