package handler

import (
	"net/http"

	"github.com/nemuzard/notesys/internal/ranking"
)

// RankingHandler serves the most recently published ranking snapshot.
type RankingHandler struct {
	holder *ranking.Holder
}

func NewRankingHandler(holder *ranking.Holder) *RankingHandler {
	return &RankingHandler{holder: holder}
}

// GetCurrent handles GET /api/v1/rankings
//
// Before the first aggregation run (and with no mirrored snapshot to
// restore) the ranking is simply empty, not an error.
func (h *RankingHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	s := h.holder.Current()
	if s == nil {
		respondJSON(w, http.StatusOK, map[string]any{"entries": []ranking.Entry{}})
		return
	}
	respondJSON(w, http.StatusOK, s)
}
