package handler

import (
	"net/http"

	"github.com/nemuzard/notesys/internal/hub"
	"github.com/nemuzard/notesys/internal/queue"
)

// MetricsHandler serves a human-readable JSON snapshot of live state.
// Raw Prometheus metrics are available at /metrics via promhttp and are
// separate from this endpoint.
type MetricsHandler struct {
	q       queue.TaskQueue
	pushHub *hub.Hub
}

func NewMetricsHandler(q queue.TaskQueue, pushHub *hub.Hub) *MetricsHandler {
	return &MetricsHandler{q: q, pushHub: pushHub}
}

// GetMetrics handles GET /api/v1/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	depth, err := h.q.Len(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "task queue unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"email_queue_depth": depth,
		"live_connections":  h.pushHub.ConnectionCount(),
	})
}
