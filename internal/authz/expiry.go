package authz

import (
	"math"
	"time"
)

// MaterializeExpiry applies the expiry rule to a subscription and reports
// whether the record changed. The transition is one-way: a subscription that
// is already inactive is never revived here, only an explicit superadmin
// toggle or extend does that.
func MaterializeExpiry(sub Subscription, now time.Time) (Subscription, bool) {
	if !sub.Active {
		return sub, false
	}
	if now.Before(sub.EndDate) {
		return sub, false
	}
	sub.Active = false
	return sub, true
}

// DaysLeft returns the number of whole days until endDate, rounded up.
// Reminders fire only on exact values, so a skipped evaluation day means
// that reminder is permanently missed.
func DaysLeft(endDate, now time.Time) int {
	return int(math.Ceil(endDate.Sub(now).Hours() / 24))
}
