package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/skincare-api/internal/api/shared"
	"github.com/phrazzld/skincare-api/internal/task"
)

// TaskIDParam is the route parameter holding the task id.
const TaskIDParam = "task_id"

// TaskReader looks up task records.
type TaskReader interface {
	Get(ctx context.Context, id string) (task.Record, error)
}

// ResultHandler handles GET /result/{task_id}.
type ResultHandler struct {
	tasks  TaskReader
	logger *slog.Logger
}

// NewResultHandler creates a ResultHandler.
func NewResultHandler(tasks TaskReader, logger *slog.Logger) *ResultHandler {
	return &ResultHandler{
		tasks:  tasks,
		logger: logger.With("handler", "result"),
	}
}

// Result returns the task record. Unknown ids yield status not_found with
// 200, never 404.
func (h *ResultHandler) Result(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, TaskIDParam)

	record, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, msgResultLookupFailure, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, record)
}
