package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"loandesk/domain"
	"loandesk/repository"
	"loandesk/service"
)

func newLoanHandler(t *testing.T) (*LoanHandler, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	notifications := service.NewNotificationService(store, time.Second)
	loans := service.NewLoanService(store, notifications, time.Second)
	return NewLoanHandler(loans), store
}

func seedPendingClient(t *testing.T, store *repository.MemoryStore, cid string) {
	t.Helper()
	ledger := domain.RawClientLedger{
		CID: cid,
		LoanHistory: []domain.LoanEntry{{
			DateApplied:     time.Now().UTC().Add(-time.Hour),
			Status:          domain.StatusPending,
			RequestedAmount: decimal.RequireFromString("5000"),
		}},
	}
	data, _ := json.Marshal(ledger)
	if err := store.Upload(context.Background(), "client-metrics/"+cid+"-raw.json", data, "application/json"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target, cid, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	if cid != "" {
		req.SetPathValue("cid", cid)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestDecideHandler_OK(t *testing.T) {
	handler, store := newLoanHandler(t)
	seedPendingClient(t, store, "c1")

	w := postJSON(t, handler.Decide, "/loan/c1/decision", "c1", `{"decision":"approved","approvedAmount":4000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var record domain.LoanDecision
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if record.Decision != domain.StatusApproved {
		t.Errorf("expected Approved, got %s", record.Decision)
	}
}

func TestDecideHandler_InvalidDecision(t *testing.T) {
	handler, store := newLoanHandler(t)
	seedPendingClient(t, store, "c1")

	w := postJSON(t, handler.Decide, "/loan/c1/decision", "c1", `{"decision":"escalated"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDecideHandler_SecondDecisionConflicts(t *testing.T) {
	handler, store := newLoanHandler(t)
	seedPendingClient(t, store, "c1")

	if w := postJSON(t, handler.Decide, "/loan/c1/decision", "c1", `{"decision":"declined"}`); w.Code != http.StatusOK {
		t.Fatalf("first decision failed: %d", w.Code)
	}
	w := postJSON(t, handler.Decide, "/loan/c1/decision", "c1", `{"decision":"approved"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestDecideHandler_BadBody(t *testing.T) {
	handler, _ := newLoanHandler(t)

	w := postJSON(t, handler.Decide, "/loan/c1/decision", "c1", `{invalid-json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestReviseAmountHandler_MissingAmount(t *testing.T) {
	handler, _ := newLoanHandler(t)

	w := postJSON(t, handler.ReviseAmount, "/loan/c1/amount", "c1", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for absent amount, got %d", w.Code)
	}

	w = postJSON(t, handler.ReviseAmount, "/loan/c1/amount", "c1", `{"amount":"lots"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric amount, got %d", w.Code)
	}
}

func TestReviseAmountHandler_NoApprovedLoan(t *testing.T) {
	handler, store := newLoanHandler(t)
	seedPendingClient(t, store, "c1")

	w := postJSON(t, handler.ReviseAmount, "/loan/c1/amount", "c1", `{"amount":1000}`)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestStatusHandler_UnknownClient(t *testing.T) {
	handler, _ := newLoanHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/loan/ghost", nil)
	req.SetPathValue("cid", "ghost")
	w := httptest.NewRecorder()
	handler.Status(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestClientsHandler_EmptyIndex(t *testing.T) {
	handler, _ := newLoanHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	w := httptest.NewRecorder()
	handler.Clients(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp clientListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if len(resp.Clients) != 0 {
		t.Errorf("expected empty index, got %+v", resp.Clients)
	}
}

func TestSubmitHandler_CreatesPending(t *testing.T) {
	handler, store := newLoanHandler(t)
	seedPendingClient(t, store, "c1")

	w := postJSON(t, handler.Submit, "/loan/c1/submit", "c1", `{"requestedAmount":2500}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}
