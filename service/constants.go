package service

import "time"

const (
	MaxCIDLength       = 64
	MaxRequestedAmount = 1_000_000_000.0 // hard ceiling on any loan amount

	// Metrics formulas use a 30-day month on purpose: stable and testable,
	// not calendar-accurate.
	DaysPerMonth      = 30
	InquiryWindowDays = 365

	jsonContentType  = "application/json"
	metricsCacheTTL  = 15 * time.Minute
	defaultStoreTime = 5 * time.Second
)

const clientIndexPath = "clients/clients.json"

func rawLedgerPath(cid string) string {
	return "client-metrics/" + cid + "-raw.json"
}

func processedMetricsPath(cid string) string {
	return "client-metrics/processed/" + cid + ".json"
}

func scorePath(cid string) string {
	return "scores/" + cid + ".json"
}

func decisionPath(cid string) string {
	return "decisions/" + cid + ".json"
}

// Legacy layout: decision class encoded by location. Read-only fallback.
func legacyApprovedPath(cid string) string {
	return "clients-approved/" + cid + ".json"
}

func legacyDeclinedPath(cid string) string {
	return "clients-declined/" + cid + ".json"
}

func notificationsPath(role string) string {
	return "notifications/" + role + ".json"
}

func metricsCacheKey(cid string) string {
	return "metrics:" + cid
}
