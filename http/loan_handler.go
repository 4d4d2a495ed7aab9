package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"loandesk/domain"
	"loandesk/service"
)

type LoanHandler struct {
	service *service.LoanService
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

type submitRequest struct {
	RequestedAmount *decimal.Decimal `json:"requestedAmount"`
}

// Submit handles POST /loan/{cid}/submit.
func (h *LoanHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RequestedAmount == nil {
		http.Error(w, "requestedAmount is required", http.StatusBadRequest)
		return
	}

	entry, err := h.service.Submit(r.Context(), r.PathValue("cid"), *req.RequestedAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type decisionRequest struct {
	Decision       string           `json:"decision"`
	ApprovedAmount *decimal.Decimal `json:"approvedAmount"`
}

// Decide handles POST /loan/{cid}/decision.
func (h *LoanHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	decision, err := service.ParseDecision(req.Decision)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.service.Decide(r.Context(), r.PathValue("cid"), decision, req.ApprovedAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type amountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// ReviseAmount handles POST /loan/{cid}/amount.
func (h *LoanHandler) ReviseAmount(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount == nil {
		http.Error(w, "amount is required", http.StatusBadRequest)
		return
	}

	entry, err := h.service.ReviseAmount(r.Context(), r.PathValue("cid"), *req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Status handles GET /loan/{cid}.
func (h *LoanHandler) Status(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.CurrentState(r.Context(), r.PathValue("cid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type clientListResponse struct {
	Clients []domain.ClientSummary `json:"clients"`
}

// Clients handles GET /clients.
func (h *LoanHandler) Clients(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ClientSummaries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clientListResponse{Clients: summaries})
}
