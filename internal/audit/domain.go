package audit

import "time"

// Actions recorded for privileged state changes.
const (
	ActionCreateDashboard        = "CREATE_DASHBOARD"
	ActionCreateManager          = "CREATE_MANAGER"
	ActionCreateStaff            = "CREATE_STAFF"
	ActionDeleteManager          = "DELETE_MANAGER"
	ActionDeleteStaff            = "DELETE_STAFF"
	ActionActivateSubscription   = "ACTIVATE_SUBSCRIPTION"
	ActionDeactivateSubscription = "DEACTIVATE_SUBSCRIPTION"
	ActionExtendSubscription     = "EXTEND_SUBSCRIPTION"
	ActionBlockAdmin             = "BLOCK_ADMIN"
	ActionUnblockAdmin           = "UNBLOCK_ADMIN"
)

// Entry is one append-only audit record. Entries are never mutated or
// deleted; retrieval is newest-first.
type Entry struct {
	ID         string
	ActorID    string
	ActorRole  string
	Action     string
	TargetType string
	TargetID   string
	Message    string
	CreatedAt  time.Time
}
