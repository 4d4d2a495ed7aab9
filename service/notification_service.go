package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"loandesk/domain"
	"loandesk/repository"
)

// NotificationService appends role-addressed notifications with an
// idempotence guarantee: while an identical (cid, type, role) notification
// is still unread, creating another is rejected as a duplicate.
type NotificationService struct {
	store   repository.DocumentStore
	timeout time.Duration
	now     func() time.Time

	mu sync.Mutex
}

func NewNotificationService(store repository.DocumentStore, timeout time.Duration) *NotificationService {
	return &NotificationService{
		store:   store,
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *NotificationService) loadList(ctx context.Context, role domain.Role) ([]domain.Notification, error) {
	var list []domain.Notification
	err := fetchJSON(ctx, s.store, s.timeout, notificationsPath(string(role)), &list)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return list, nil
}

// Create validates, deduplicates and appends. Callers receiving a conflict
// must treat it as "already notified", not as a failure to retry.
func (s *NotificationService) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if err := validateCID(n.CID); err != nil {
		return domain.Notification{}, err
	}
	if !n.Type.Valid() {
		return domain.Notification{}, domain.NewValidation("unknown notification type %q", n.Type)
	}
	if !n.RecipientRole.Valid() {
		return domain.Notification{}, domain.NewValidation("unknown recipient role %q", n.RecipientRole)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadList(ctx, n.RecipientRole)
	if err != nil {
		return domain.Notification{}, err
	}

	for _, existing := range list {
		if !existing.Read && existing.CID == n.CID && existing.Type == n.Type {
			return domain.Notification{}, domain.NewConflict(
				"unread %s notification for client %s already pending for %s", n.Type, n.CID, n.RecipientRole)
		}
	}

	n.ID = uuid.NewString()
	n.Timestamp = s.now().UTC()
	n.Read = false
	list = append(list, n)

	if err := putJSON(ctx, s.store, s.timeout, notificationsPath(string(n.RecipientRole)), list); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

// MarkRead flips matching notifications to read. Unknown ids are ignored so
// the operation is idempotent; the updated count is returned for logging.
func (s *NotificationService) MarkRead(ctx context.Context, ids []string, role domain.Role) (int, error) {
	if !role.Valid() {
		return 0, domain.NewValidation("unknown recipient role %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadList(ctx, role)
	if err != nil {
		return 0, err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	updated := 0
	for i := range list {
		if _, ok := wanted[list[i].ID]; ok && !list[i].Read {
			list[i].Read = true
			updated++
		}
	}
	if updated == 0 {
		return 0, nil
	}

	if err := putJSON(ctx, s.store, s.timeout, notificationsPath(string(role)), list); err != nil {
		return 0, err
	}
	return updated, nil
}

// List returns the role's notifications newest first; equal timestamps keep
// the later-inserted entry first.
func (s *NotificationService) List(ctx context.Context, role domain.Role) ([]domain.Notification, error) {
	if !role.Valid() {
		return nil, domain.NewValidation("unknown recipient role %q", role)
	}

	list, err := s.loadList(ctx, role)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Notification, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
