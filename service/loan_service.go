package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"loandesk/domain"
	"loandesk/repository"
)

// amountDueFactor is the flat 5% add-on applied to an approved amount. Not
// compounding: revising an amount recomputes from the new principal.
var amountDueFactor = decimal.RequireFromString("1.05")

// LoanService owns the per-client application state machine: Pending until
// a decision record exists, Approved/Declined after, Pending again once a
// newer submission lands. The backing store has no compare-and-swap, so all
// same-client writes are serialized through an in-process keyed lock.
type LoanService struct {
	store         repository.DocumentStore
	notifications *NotificationService
	timeout       time.Duration
	now           func() time.Time

	mu    sync.Mutex
	locks map[string]*clientLock

	indexMu sync.Mutex
}

// clientLock serializes writes for one client. The refcount lets the map
// drop entries as soon as the last holder releases, so the map only ever
// tracks clients with an operation in flight.
type clientLock struct {
	mu   sync.Mutex
	refs int
}

func NewLoanService(store repository.DocumentStore,
	notifications *NotificationService,
	timeout time.Duration,
) *LoanService {
	return &LoanService{
		store:         store,
		notifications: notifications,
		timeout:       timeout,
		now:           time.Now,
		locks:         make(map[string]*clientLock),
	}
}

// lockClient acquires the client's write lock and returns the release
// function.
func (s *LoanService) lockClient(cid string) func() {
	s.mu.Lock()
	l, ok := s.locks[cid]
	if !ok {
		l = &clientLock{}
		s.locks[cid] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, cid)
		}
		s.mu.Unlock()
	}
}

func (s *LoanService) loadLedger(ctx context.Context, cid string) (domain.RawClientLedger, error) {
	var ledger domain.RawClientLedger
	err := fetchJSON(ctx, s.store, s.timeout, rawLedgerPath(cid), &ledger)
	if errors.Is(err, repository.ErrNotFound) {
		return ledger, domain.NewNotFound("unknown client %s", cid)
	}
	if err != nil {
		return ledger, err
	}
	if ledger.CID == "" {
		ledger.CID = cid
	}
	return ledger, nil
}

// latestEntry returns the loan-history entry with the most recent
// DateApplied, or -1 when the history is empty.
func latestEntry(history []domain.LoanEntry) int {
	idx := -1
	for i, e := range history {
		if idx == -1 || e.DateApplied.After(history[idx].DateApplied) {
			idx = i
		}
	}
	return idx
}

// Submit snapshots a new Pending application for the client. A still-open
// pending entry is overwritten rather than duplicated; a prior terminal
// decision simply starts a new cycle.
func (s *LoanService) Submit(ctx context.Context, cid string, requestedAmount decimal.Decimal) (domain.LoanEntry, error) {
	if err := validateCID(cid); err != nil {
		return domain.LoanEntry{}, err
	}
	if requestedAmount.LessThanOrEqual(decimal.Zero) {
		return domain.LoanEntry{}, domain.NewValidation("requested amount must be greater than zero")
	}
	if requestedAmount.GreaterThan(decimal.NewFromFloat(MaxRequestedAmount)) {
		return domain.LoanEntry{}, domain.NewValidation("requested amount exceeds the maximum of %.2f", MaxRequestedAmount)
	}

	unlock := s.lockClient(cid)
	defer unlock()

	ledger, err := s.loadLedger(ctx, cid)
	if err != nil {
		return domain.LoanEntry{}, err
	}

	entry := domain.LoanEntry{
		DateApplied:     s.now().UTC(),
		Status:          domain.StatusPending,
		RequestedAmount: requestedAmount,
	}

	if idx := latestEntry(ledger.LoanHistory); idx >= 0 && ledger.LoanHistory[idx].Status == domain.StatusPending {
		ledger.LoanHistory[idx] = entry
	} else {
		ledger.LoanHistory = append(ledger.LoanHistory, entry)
	}

	if err := putJSON(ctx, s.store, s.timeout, rawLedgerPath(cid), ledger); err != nil {
		return domain.LoanEntry{}, err
	}

	s.notify(ctx, domain.Notification{
		CID:           cid,
		Type:          domain.NotifNewApplication,
		RecipientRole: domain.RoleOpsManager,
		Message:       fmt.Sprintf("Client %s submitted a loan application for %s", cid, requestedAmount.StringFixed(2)),
	})

	return entry, nil
}

// ParseDecision maps a wire decision value onto a terminal status.
func ParseDecision(raw string) (domain.LoanStatus, error) {
	switch strings.ToLower(raw) {
	case "approved":
		return domain.StatusApproved, nil
	case "declined":
		return domain.StatusDeclined, nil
	}
	return "", domain.NewValidation("decision must be approved or declined, got %q", raw)
}

// Decide resolves the client's pending application. Valid only while the
// latest submission is still Pending and no decision newer than it exists;
// a second decide on the same submission is a conflict, not a retryable
// error.
func (s *LoanService) Decide(ctx context.Context, cid string, decision domain.LoanStatus, approvedAmount *decimal.Decimal) (domain.LoanDecision, error) {
	if err := validateCID(cid); err != nil {
		return domain.LoanDecision{}, err
	}
	if decision != domain.StatusApproved && decision != domain.StatusDeclined {
		return domain.LoanDecision{}, domain.NewValidation("decision must be approved or declined, got %q", decision)
	}

	unlock := s.lockClient(cid)
	defer unlock()

	ledger, err := s.loadLedger(ctx, cid)
	if err != nil {
		return domain.LoanDecision{}, err
	}

	idx := latestEntry(ledger.LoanHistory)
	if idx < 0 || ledger.LoanHistory[idx].Status != domain.StatusPending {
		return domain.LoanDecision{}, domain.NewConflict("no pending application for client %s", cid)
	}
	entry := ledger.LoanHistory[idx]

	var existing domain.LoanDecision
	err = fetchJSON(ctx, s.store, s.timeout, decisionPath(cid), &existing)
	switch {
	case err == nil:
		if !existing.DecidedAt.Before(entry.DateApplied) {
			return domain.LoanDecision{}, domain.NewConflict("application for client %s is already decided", cid)
		}
	case errors.Is(err, repository.ErrNotFound):
		// first decision for this client
	default:
		return domain.LoanDecision{}, err
	}

	decidedAt := s.now().UTC()
	record := domain.LoanDecision{
		CID:             cid,
		Decision:        decision,
		RequestedAmount: entry.RequestedAmount,
		DecidedAt:       decidedAt,
	}

	if decision == domain.StatusApproved {
		amount := entry.RequestedAmount
		if approvedAmount != nil {
			amount = *approvedAmount
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return domain.LoanDecision{}, domain.NewValidation("approved amount must be greater than zero")
		}
		due := amount.Mul(amountDueFactor)
		record.ApprovedAmount = &amount
		record.AmountDue = &due
	}

	entry.Status = decision
	entry.ApprovedAmount = record.ApprovedAmount
	entry.AmountDue = record.AmountDue
	entry.DecidedAt = &decidedAt
	ledger.LoanHistory[idx] = entry

	// The decision record goes first. If it fails the ledger entry is still
	// Pending and the caller can retry; if the ledger write after it fails,
	// status resolution reads the record, which is authoritative.
	if err := putJSON(ctx, s.store, s.timeout, decisionPath(cid), record); err != nil {
		return domain.LoanDecision{}, err
	}
	if err := putJSON(ctx, s.store, s.timeout, rawLedgerPath(cid), ledger); err != nil {
		return domain.LoanDecision{}, err
	}
	if err := s.updateIndex(ctx, domain.ClientSummary{
		CID:            cid,
		Status:         decision,
		DecidedAt:      &decidedAt,
		ApprovedAmount: record.ApprovedAmount,
	}); err != nil {
		return domain.LoanDecision{}, err
	}

	s.notify(ctx, domain.Notification{
		CID:           cid,
		Type:          domain.NotifStatusChange,
		RecipientRole: domain.RoleOpsManager.Opposite(),
		Message:       fmt.Sprintf("Loan application for client %s was %s", cid, strings.ToLower(string(decision))),
	})

	return record, nil
}

// ReviseAmount changes the approved amount on the client's current approved
// loan and recomputes the amount due from the new principal.
func (s *LoanService) ReviseAmount(ctx context.Context, cid string, newAmount decimal.Decimal) (domain.LoanEntry, error) {
	if err := validateCID(cid); err != nil {
		return domain.LoanEntry{}, err
	}
	if newAmount.LessThanOrEqual(decimal.Zero) {
		return domain.LoanEntry{}, domain.NewValidation("amount must be greater than zero")
	}

	unlock := s.lockClient(cid)
	defer unlock()

	ledger, err := s.loadLedger(ctx, cid)
	if err != nil {
		return domain.LoanEntry{}, err
	}

	// Only the most recent entry can carry the revision, and only while it
	// is approved.
	idx := latestEntry(ledger.LoanHistory)
	if idx < 0 || ledger.LoanHistory[idx].Status != domain.StatusApproved {
		return domain.LoanEntry{}, domain.NewConflict("no approved loan for client %s", cid)
	}

	due := newAmount.Mul(amountDueFactor)
	entry := ledger.LoanHistory[idx]
	entry.ApprovedAmount = &newAmount
	entry.AmountDue = &due
	ledger.LoanHistory[idx] = entry

	if err := putJSON(ctx, s.store, s.timeout, rawLedgerPath(cid), ledger); err != nil {
		return domain.LoanEntry{}, err
	}

	var record domain.LoanDecision
	err = fetchJSON(ctx, s.store, s.timeout, decisionPath(cid), &record)
	switch {
	case err == nil:
		record.ApprovedAmount = &newAmount
		record.AmountDue = &due
		if err := putJSON(ctx, s.store, s.timeout, decisionPath(cid), record); err != nil {
			return domain.LoanEntry{}, err
		}
	case errors.Is(err, repository.ErrNotFound):
		// approved entry predates the decision-record layout; ledger is
		// authoritative
	default:
		return domain.LoanEntry{}, err
	}

	if err := s.updateIndex(ctx, domain.ClientSummary{
		CID:            cid,
		Status:         domain.StatusApproved,
		DecidedAt:      entry.DecidedAt,
		ApprovedAmount: &newAmount,
	}); err != nil {
		return domain.LoanEntry{}, err
	}

	s.notify(ctx, domain.Notification{
		CID:           cid,
		Type:          domain.NotifAmountChange,
		RecipientRole: domain.RoleOpsManager.Opposite(),
		Message:       fmt.Sprintf("Approved amount for client %s revised to %s", cid, newAmount.StringFixed(2)),
	})

	return entry, nil
}

// CurrentState resolves the client's effective status. The single decision
// record is authoritative; the legacy two-location layout is consulted only
// when no record exists, with the later decidedAt winning and ties reading
// as Declined.
func (s *LoanService) CurrentState(ctx context.Context, cid string) (domain.ClientLoanState, error) {
	if err := validateCID(cid); err != nil {
		return domain.ClientLoanState{}, err
	}

	ledger, err := s.loadLedger(ctx, cid)
	if err != nil {
		return domain.ClientLoanState{}, err
	}

	var pendingAt *time.Time
	if idx := latestEntry(ledger.LoanHistory); idx >= 0 && ledger.LoanHistory[idx].Status == domain.StatusPending {
		t := ledger.LoanHistory[idx].DateApplied
		pendingAt = &t
	}

	decision, err := s.resolveDecision(ctx, cid)
	if err != nil {
		return domain.ClientLoanState{}, err
	}

	state := domain.ClientLoanState{CID: cid, Status: domain.StatusPending}
	if decision != nil {
		state.Decision = decision
		state.Status = decision.Decision
		// A submission newer than the decision re-enters Pending.
		if pendingAt != nil && pendingAt.After(decision.DecidedAt) {
			state.Status = domain.StatusPending
		}
	}
	return state, nil
}

func (s *LoanService) resolveDecision(ctx context.Context, cid string) (*domain.LoanDecision, error) {
	var record domain.LoanDecision
	err := fetchJSON(ctx, s.store, s.timeout, decisionPath(cid), &record)
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	approved, err := s.legacyDecision(ctx, legacyApprovedPath(cid), domain.StatusApproved)
	if err != nil {
		return nil, err
	}
	declined, err := s.legacyDecision(ctx, legacyDeclinedPath(cid), domain.StatusDeclined)
	if err != nil {
		return nil, err
	}

	switch {
	case approved == nil:
		return declined, nil
	case declined == nil:
		return approved, nil
	case approved.DecidedAt.After(declined.DecidedAt):
		return approved, nil
	default:
		// Later declined wins; the equal-timestamp tie also reads as
		// Declined, the conservative answer.
		return declined, nil
	}
}

func (s *LoanService) legacyDecision(ctx context.Context, path string, decision domain.LoanStatus) (*domain.LoanDecision, error) {
	var record domain.LoanDecision
	err := fetchJSON(ctx, s.store, s.timeout, path, &record)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// Legacy records encode the decision by location, not by field.
	if record.Decision == "" {
		record.Decision = decision
	}
	return &record, nil
}

// updateIndex rewrites one client's row in the aggregate index. The index
// mutex serializes the read-modify-write; per-client data is never clobbered
// by concurrent decisions on other clients within this process.
func (s *LoanService) updateIndex(ctx context.Context, summary domain.ClientSummary) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	var index domain.ClientIndex
	err := fetchJSON(ctx, s.store, s.timeout, clientIndexPath, &index)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if index.Clients == nil {
		index.Clients = make(map[string]domain.ClientSummary)
	}
	index.Clients[summary.CID] = summary

	return putJSON(ctx, s.store, s.timeout, clientIndexPath, index)
}

// ClientSummaries returns the aggregate index sorted by client id.
func (s *LoanService) ClientSummaries(ctx context.Context) ([]domain.ClientSummary, error) {
	var index domain.ClientIndex
	err := fetchJSON(ctx, s.store, s.timeout, clientIndexPath, &index)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	out := make([]domain.ClientSummary, 0, len(index.Clients))
	for _, summary := range index.Clients {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CID < out[j].CID })
	return out, nil
}

// notify raises a lifecycle notification. A duplicate means the counter-role
// was already told and is not an error; anything else is logged and dropped,
// since the decision itself has already been persisted.
func (s *LoanService) notify(ctx context.Context, n domain.Notification) {
	if _, err := s.notifications.Create(ctx, n); err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return
		}
		log.Printf("Warning: failed to create %s notification for %s: %v", n.Type, n.CID, err)
	}
}
