package subscriptions

import "time"

// Subscription is the billing unit, keyed by the tenant-owning admin's
// email. The Active flag caches a time-dependent predicate; the gate and
// the reminder sweep correct it lazily.
type Subscription struct {
	ID        string
	Email     string
	PlanID    string
	StartDate time.Time
	EndDate   time.Time
	Active    bool
}

// NewTerm returns the start and end of a fresh one-year term.
func NewTerm(now time.Time) (time.Time, time.Time) {
	return now, now.AddDate(1, 0, 0)
}
