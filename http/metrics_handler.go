package http

import (
	"net/http"

	"loandesk/service"
)

type MetricsHandler struct {
	service *service.MetricsService
}

func NewMetricsHandler(service *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// Compute handles POST /metrics/{cid}.
func (h *MetricsHandler) Compute(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.ComputeForClient(r.Context(), r.PathValue("cid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
