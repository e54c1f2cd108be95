package api

import "net/http"

// QueueHandler handles matchmaking queue read requests.
type QueueHandler struct {
	deps Dependencies
}

// NewQueueHandler creates a new queue handler.
func NewQueueHandler(deps Dependencies) *QueueHandler {
	return &QueueHandler{deps: deps}
}

// HandleGetStatus handles GET /queue/status?mode=M requests. Without a
// mode it reports every configured queue.
func (h *QueueHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_queue_status"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode != "" {
		status, err := h.deps.QueueStatus(r.Context(), mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	statuses := make([]any, 0, len(h.deps.Modes()))
	for _, m := range h.deps.Modes() {
		if status, err := h.deps.QueueStatus(r.Context(), m); err == nil {
			statuses = append(statuses, status)
		}
	}
	writeJSON(w, http.StatusOK, statuses)
}
