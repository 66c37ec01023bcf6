package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/scoutgrade/internal/domain/model"
)

// RunDependencies defines the interface for run lookups.
type RunDependencies interface {
	LatestRun(ctx context.Context) (model.Run, error)
	RunByID(ctx context.Context, id string) (model.Run, error)
}

// RunHandler serves whole runs.
type RunHandler struct {
	deps RunDependencies
}

// NewRunHandler creates a new run handler.
func NewRunHandler(deps RunDependencies) *RunHandler {
	return &RunHandler{deps: deps}
}

// HandleGetRun handles GET /runs/latest and GET /runs/{run_id}.
func (h *RunHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/runs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	var (
		run model.Run
		err error
	)
	if id == "latest" {
		run, err = h.deps.LatestRun(r.Context())
	} else {
		run, err = h.deps.RunByID(r.Context(), id)
	}
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
