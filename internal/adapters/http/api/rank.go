package api

import (
	"net/http"
	"strings"

	"github.com/vityaz/arena/internal/domain/model"
)

// RankHandler handles player rank requests.
type RankHandler struct {
	deps Dependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps Dependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// rankResponse is the read shape for GET /rank/{playerID}.
type rankResponse struct {
	Rank   int                `json:"rank"`
	Record model.RatingRecord `json:"record"`
}

// HandleGetRank handles GET /rank/{playerID} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	playerID := strings.TrimPrefix(r.URL.Path, "/rank/")
	if playerID == "" || strings.Contains(playerID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	rank, rec, err := h.deps.Rank(r.Context(), playerID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{Rank: rank, Record: rec})
}
