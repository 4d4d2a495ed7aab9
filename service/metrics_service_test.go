package service

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"loandesk/domain"
	"loandesk/repository"
)

func newMetricsFixture(t *testing.T) (*MetricsService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewMetricsService(store, repository.NewMockCache(), time.Second)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc, store
}

func baseLedger(cid string) domain.RawClientLedger {
	return domain.RawClientLedger{
		CID: cid,
		PaymentHistoryLog: []domain.PaymentPeriod{
			{OnTimePayments: 10, LatePayments: 0},
		},
		UtilizationData: domain.UtilizationData{
			TotalUsed:        300,
			TotalCreditLimit: 1000,
		},
		CreditHistoryStartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		CreditAccounts:         []domain.CreditAccount{{Type: "card"}},
	}
}

func TestComputePaymentHistoryRatio(t *testing.T) {
	svc, _ := newMetricsFixture(t)

	ledger := baseLedger("c1")
	ledger.PaymentHistoryLog = []domain.PaymentPeriod{
		{OnTimePayments: 8, LatePayments: 1},
		{OnTimePayments: 12, LatePayments: 1},
	}

	metrics, err := svc.Compute(ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := 100.0 * 20 / 22
	if math.Abs(metrics.PaymentHistory-expected) > 1e-9 {
		t.Errorf("expected payment history %.6f, got %.6f", expected, metrics.PaymentHistory)
	}
}

func TestComputeEmptyPaymentLog(t *testing.T) {
	svc, _ := newMetricsFixture(t)

	ledger := baseLedger("c1")
	ledger.PaymentHistoryLog = nil

	_, err := svc.Compute(ledger)
	if err == nil {
		t.Fatal("expected error for empty payment log")
	}
	if domain.KindOf(err) != domain.KindComputation {
		t.Errorf("expected computation kind, got %q", domain.KindOf(err))
	}
}

func TestComputeOverLimitUtilizationNotClamped(t *testing.T) {
	svc, _ := newMetricsFixture(t)

	ledger := baseLedger("c1")
	ledger.UtilizationData = domain.UtilizationData{TotalUsed: 1500, TotalCreditLimit: 1000}

	metrics, err := svc.Compute(ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.CreditUtilization != 150 {
		t.Errorf("expected utilization 150, got %.2f", metrics.CreditUtilization)
	}
}

func TestComputeZeroCreditLimit(t *testing.T) {
	svc, _ := newMetricsFixture(t)

	ledger := baseLedger("c1")
	ledger.UtilizationData = domain.UtilizationData{TotalUsed: 100, TotalCreditLimit: 0}

	_, err := svc.Compute(ledger)
	if domain.KindOf(err) != domain.KindComputation {
		t.Fatalf("expected computation error, got %v", err)
	}
}

func TestComputeCreditMixCapped(t *testing.T) {
	svc, _ := newMetricsFixture(t)

	ledger := baseLedger("c1")
	ledger.CreditAccounts = nil
	for _, typ := range []string{"card", "auto", "mortgage", "card", "student"} {
		ledger.CreditAccounts = append(ledger.CreditAccounts, domain.CreditAccount{Type: typ})
	}

	metrics, err := svc.Compute(ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 4 distinct types, duplicates ignored
	if metrics.CreditMix != 40 {
		t.Errorf("expected credit mix 40, got %.0f", metrics.CreditMix)
	}

	for i := 0; i < 12; i++ {
		ledger.CreditAccounts = append(ledger.CreditAccounts, domain.CreditAccount{Type: string(rune('a' + i))})
	}
	metrics, err = svc.Compute(ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.CreditMix != 100 {
		t.Errorf("expected credit mix capped at 100, got %.0f", metrics.CreditMix)
	}
}

func TestComputeHistoryLengthUses30DayMonths(t *testing.T) {
	svc, _ := newMetricsFixture(t)
	now := svc.now()

	ledger := baseLedger("c1")
	ledger.CreditHistoryStartDate = now.AddDate(0, 0, -95)

	metrics, err := svc.Compute(ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.CreditHistoryLength != 3 {
		t.Errorf("expected 3 months for 95 days, got %d", metrics.CreditHistoryLength)
	}

	ledger.CreditHistoryStartDate = now.AddDate(0, 0, 10) // future start
	metrics, err = svc.Compute(ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.CreditHistoryLength != 0 {
		t.Errorf("expected 0 months for future start, got %d", metrics.CreditHistoryLength)
	}
}

func TestComputeNewInquiriesWindow(t *testing.T) {
	svc, _ := newMetricsFixture(t)
	now := svc.now()

	ledger := baseLedger("c1")
	ledger.LoanHistory = []domain.LoanEntry{
		{DateApplied: now.AddDate(0, 0, -10), Status: domain.StatusApproved},
		{DateApplied: now.AddDate(0, 0, -365), Status: domain.StatusDeclined}, // boundary, inclusive
		{DateApplied: now.AddDate(0, 0, -366), Status: domain.StatusDeclined}, // outside
	}

	metrics, err := svc.Compute(ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.NewInquiries != 2 {
		t.Errorf("expected 2 inquiries in window, got %d", metrics.NewInquiries)
	}
}

func TestComputeForClientMissingRaw(t *testing.T) {
	svc, _ := newMetricsFixture(t)

	_, err := svc.ComputeForClient(context.Background(), "ghost")
	if domain.KindOf(err) != domain.KindComputation {
		t.Fatalf("expected computation error for missing raw file, got %v", err)
	}
}

func TestComputeForClientMalformedRaw(t *testing.T) {
	svc, store := newMetricsFixture(t)
	ctx := context.Background()

	if err := store.Upload(ctx, "client-metrics/c1-raw.json", []byte("{not json"), "application/json"); err != nil {
		t.Fatalf("seed upload failed: %v", err)
	}

	_, err := svc.ComputeForClient(ctx, "c1")
	if domain.KindOf(err) != domain.KindComputation {
		t.Fatalf("expected computation error for malformed raw file, got %v", err)
	}
}

func TestComputeForClientPersistsProcessed(t *testing.T) {
	svc, store := newMetricsFixture(t)
	ctx := context.Background()

	raw, _ := json.Marshal(baseLedger("c1"))
	if err := store.Upload(ctx, "client-metrics/c1-raw.json", raw, "application/json"); err != nil {
		t.Fatalf("seed upload failed: %v", err)
	}

	metrics, err := svc.ComputeForClient(ctx, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.CID != "c1" {
		t.Errorf("expected cid c1, got %q", metrics.CID)
	}

	ok, err := store.Exists(ctx, "client-metrics/processed/c1.json")
	if err != nil || !ok {
		t.Fatalf("expected processed metrics document, ok=%v err=%v", ok, err)
	}

	reloaded, err := svc.ProcessedMetrics(ctx, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded != metrics {
		t.Errorf("expected reloaded metrics %+v, got %+v", metrics, reloaded)
	}
}

func TestProcessedMetricsMissing(t *testing.T) {
	svc, _ := newMetricsFixture(t)

	_, err := svc.ProcessedMetrics(context.Background(), "ghost")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
