package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	StatusPending  LoanStatus = "Pending"
	StatusApproved LoanStatus = "Approved"
	StatusDeclined LoanStatus = "Declined"
)

// LoanEntry is one submission cycle in a client's loan history. A client may
// accumulate several entries over time; the one with the most recent
// DateApplied is the active cycle.
type LoanEntry struct {
	DateApplied     time.Time        `json:"dateApplied"`
	Status          LoanStatus       `json:"status"`
	RequestedAmount decimal.Decimal  `json:"requestedAmount"`
	ApprovedAmount  *decimal.Decimal `json:"approvedAmount,omitempty"`
	AmountDue       *decimal.Decimal `json:"amountDue,omitempty"`
	DecidedAt       *time.Time       `json:"decidedAt,omitempty"`
}

// LoanDecision is the terminal record written when an operator approves or
// declines an application. One record per client; a newer submission cycle
// supersedes it once a new pending entry exists.
type LoanDecision struct {
	CID             string           `json:"cid"`
	Decision        LoanStatus       `json:"decision"`
	RequestedAmount decimal.Decimal  `json:"requestedAmount"`
	ApprovedAmount  *decimal.Decimal `json:"approvedAmount,omitempty"`
	AmountDue       *decimal.Decimal `json:"amountDue,omitempty"`
	DecidedAt       time.Time        `json:"decidedAt"`
}

// ClientLoanState is the resolved view of a client's loan position: the
// current status plus the decision record backing it, if any.
type ClientLoanState struct {
	CID      string        `json:"cid"`
	Status   LoanStatus    `json:"status"`
	Decision *LoanDecision `json:"decision,omitempty"`
}
