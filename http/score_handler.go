package http

import (
	"net/http"

	"loandesk/service"
)

type ScoreHandler struct {
	service *service.ScoringService
}

func NewScoreHandler(service *service.ScoringService) *ScoreHandler {
	return &ScoreHandler{service: service}
}

// Score handles POST /score/{cid}.
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ScoreClient(r.Context(), r.PathValue("cid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
