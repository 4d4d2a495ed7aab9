package domain

import "time"

type Role string

const (
	RoleLoanOfficer Role = "loan_officer"
	RoleOpsManager  Role = "ops_manager"
)

func (r Role) Valid() bool {
	return r == RoleLoanOfficer || r == RoleOpsManager
}

// Opposite returns the counter-role a lifecycle event notifies.
func (r Role) Opposite() Role {
	if r == RoleOpsManager {
		return RoleLoanOfficer
	}
	return RoleOpsManager
}

type NotificationType string

const (
	NotifStatusChange   NotificationType = "status_change"
	NotifAmountChange   NotificationType = "amount_change"
	NotifNewApplication NotificationType = "new_application"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifStatusChange, NotifAmountChange, NotifNewApplication:
		return true
	}
	return false
}

// Notification is one row in a role's append-only notification list. Only
// the Read flag is ever mutated after creation.
type Notification struct {
	ID            string           `json:"id"`
	Timestamp     time.Time        `json:"timestamp"`
	Read          bool             `json:"read"`
	CID           string           `json:"cid"`
	Type          NotificationType `json:"type"`
	RecipientRole Role             `json:"recipientRole"`
	Message       string           `json:"message"`
}
