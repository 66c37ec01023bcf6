package input

import (
	"context"

	"github.com/okian/scoutgrade/internal/domain/model"
)

// Files reads a snapshot from disk on every call, so a rescore picks up
// changed files.
type Files struct {
	Records       string
	History       string
	Reference     string
	ReferenceTeam string
}

// Snapshot loads the configured files.
func (f Files) Snapshot(ctx context.Context) (model.Snapshot, error) {
	records, err := Records(ctx, f.Records, true)
	if err != nil {
		return model.Snapshot{}, err
	}
	history, err := Records(ctx, f.History, false)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap := model.Snapshot{Records: records, History: history}
	if f.Reference != "" {
		if snap.Reference, err = Reference(f.Reference, f.ReferenceTeam); err != nil {
			return model.Snapshot{}, err
		}
	}
	return snap, nil
}
