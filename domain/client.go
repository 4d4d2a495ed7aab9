package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPeriod is one reporting window in a client's payment log.
type PaymentPeriod struct {
	OnTimePayments int `json:"onTimePayments"`
	LatePayments   int `json:"latePayments"`
}

type UtilizationData struct {
	TotalUsed        float64 `json:"totalUsed"`
	TotalCreditLimit float64 `json:"totalCreditLimit"`
}

type CreditAccount struct {
	Type string `json:"type"`
}

// RawClientLedger is the upstream source-of-truth document for a client.
// Data entry mutates it; this service only appends to LoanHistory and
// updates decided entries.
type RawClientLedger struct {
	CID                    string          `json:"cid"`
	PaymentHistoryLog      []PaymentPeriod `json:"paymentHistoryLog"`
	UtilizationData        UtilizationData `json:"utilizationData"`
	CreditHistoryStartDate time.Time       `json:"creditHistoryStartDate"`
	CreditAccounts         []CreditAccount `json:"creditAccounts"`
	LoanHistory            []LoanEntry     `json:"loanHistory"`
}

// ComputedMetrics are the normalized financial factors derived from a raw
// ledger. Recomputed on demand, cached per client, never hand-edited.
type ComputedMetrics struct {
	CID                 string  `json:"cid"`
	PaymentHistory      float64 `json:"paymentHistory"`      // percent on-time
	CreditUtilization   float64 `json:"creditUtilization"`   // percent, may exceed 100
	CreditHistoryLength int     `json:"creditHistoryLength"` // whole months
	CreditMix           float64 `json:"creditMix"`           // 0-100
	NewInquiries        int     `json:"newInquiries"`        // trailing 365 days
}

// ClientSummary is one row in the aggregate client index consumed by
// downstream screens.
type ClientSummary struct {
	CID            string           `json:"cid"`
	Status         LoanStatus       `json:"status"`
	DecidedAt      *time.Time       `json:"decidedAt,omitempty"`
	ApprovedAmount *decimal.Decimal `json:"approvedAmount,omitempty"`
}

// ClientIndex is the aggregate index document. Updated one client at a
// time under the lifecycle manager's lock, never rewritten from scratch.
type ClientIndex struct {
	Clients map[string]ClientSummary `json:"clients"`
}
