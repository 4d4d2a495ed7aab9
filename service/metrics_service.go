package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"loandesk/domain"
	"loandesk/repository"
)

// MetricsService derives normalized financial factors from a client's raw
// ledger. Computation itself is pure; the service adds the read/cache/persist
// cycle around it.
type MetricsService struct {
	store   repository.DocumentStore
	cache   repository.CacheRepository
	timeout time.Duration
	now     func() time.Time
}

func NewMetricsService(store repository.DocumentStore,
	cache repository.CacheRepository,
	timeout time.Duration,
) *MetricsService {
	return &MetricsService{
		store:   store,
		cache:   cache,
		timeout: timeout,
		now:     time.Now,
	}
}

// Compute is the deterministic metrics derivation. A ledger with no payment
// log entries cannot produce a payment-history ratio; that surfaces as a
// computation error, never as a silent zero.
func (s *MetricsService) Compute(ledger domain.RawClientLedger) (domain.ComputedMetrics, error) {
	var onTime, late int
	for _, p := range ledger.PaymentHistoryLog {
		onTime += p.OnTimePayments
		late += p.LatePayments
	}
	if onTime+late == 0 {
		return domain.ComputedMetrics{}, domain.NewComputation(
			"cannot compute payment history for client %s: ledger has no payment log entries", ledger.CID)
	}
	paymentHistory := 100 * float64(onTime) / float64(onTime+late)

	if ledger.UtilizationData.TotalCreditLimit <= 0 {
		return domain.ComputedMetrics{}, domain.NewComputation(
			"cannot compute utilization for client %s: total credit limit is zero", ledger.CID)
	}
	// Over-limit clients legitimately exceed 100 here; clamping is the
	// scoring engine's concern.
	utilization := 100 * ledger.UtilizationData.TotalUsed / ledger.UtilizationData.TotalCreditLimit

	now := s.now()
	historyMonths := 0
	if now.After(ledger.CreditHistoryStartDate) {
		days := int(now.Sub(ledger.CreditHistoryStartDate).Hours() / 24)
		historyMonths = days / DaysPerMonth
	}

	types := make(map[string]struct{})
	for _, a := range ledger.CreditAccounts {
		types[a.Type] = struct{}{}
	}
	creditMix := float64(10 * len(types))
	if creditMix > 100 {
		creditMix = 100
	}

	cutoff := now.AddDate(0, 0, -InquiryWindowDays)
	inquiries := 0
	for _, e := range ledger.LoanHistory {
		if !e.DateApplied.Before(cutoff) {
			inquiries++
		}
	}

	return domain.ComputedMetrics{
		CID:                 ledger.CID,
		PaymentHistory:      paymentHistory,
		CreditUtilization:   utilization,
		CreditHistoryLength: historyMonths,
		CreditMix:           creditMix,
		NewInquiries:        inquiries,
	}, nil
}

// ComputeForClient reads the raw ledger, derives metrics, persists the
// processed document and refreshes the cache. A missing or malformed raw
// file is a computation failure: the surface contract promises a 500 there,
// not a 404.
func (s *MetricsService) ComputeForClient(ctx context.Context, cid string) (domain.ComputedMetrics, error) {
	if err := validateCID(cid); err != nil {
		return domain.ComputedMetrics{}, err
	}

	var ledger domain.RawClientLedger
	err := fetchJSON(ctx, s.store, s.timeout, rawLedgerPath(cid), &ledger)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ComputedMetrics{}, domain.NewComputation("no raw ledger for client %s", cid)
	}
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			return domain.ComputedMetrics{}, domain.NewComputation("raw ledger for client %s is malformed", cid)
		}
		return domain.ComputedMetrics{}, err
	}
	if ledger.CID == "" {
		ledger.CID = cid
	}

	metrics, err := s.Compute(ledger)
	if err != nil {
		return domain.ComputedMetrics{}, err
	}

	if err := putJSON(ctx, s.store, s.timeout, processedMetricsPath(cid), metrics); err != nil {
		return domain.ComputedMetrics{}, err
	}
	s.cacheMetrics(ctx, metrics)

	return metrics, nil
}

// ProcessedMetrics is the read path used by scoring: cache first, then the
// processed document.
func (s *MetricsService) ProcessedMetrics(ctx context.Context, cid string) (domain.ComputedMetrics, error) {
	if err := validateCID(cid); err != nil {
		return domain.ComputedMetrics{}, err
	}

	if raw, ok := s.cache.Get(ctx, metricsCacheKey(cid)); ok {
		var metrics domain.ComputedMetrics
		if err := json.Unmarshal([]byte(raw), &metrics); err == nil {
			return metrics, nil
		}
		log.Printf("Warning: discarding unreadable cached metrics for %s", cid)
	}

	var metrics domain.ComputedMetrics
	err := fetchJSON(ctx, s.store, s.timeout, processedMetricsPath(cid), &metrics)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ComputedMetrics{}, domain.NewNotFound(
			"no processed metrics for client %s: compute metrics first", cid)
	}
	if err != nil {
		return domain.ComputedMetrics{}, err
	}
	s.cacheMetrics(ctx, metrics)
	return metrics, nil
}

func (s *MetricsService) cacheMetrics(ctx context.Context, metrics domain.ComputedMetrics) {
	data, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, metricsCacheKey(metrics.CID), string(data), metricsCacheTTL); err != nil {
		log.Printf("Warning: failed to cache metrics for %s: %v", metrics.CID, err)
	}
}
