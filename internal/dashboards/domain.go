package dashboards

import "time"

// Dashboard is a named resource container scoped to one tenant.
type Dashboard struct {
	ID        string
	Name      string
	TenantID  string
	CreatedAt time.Time
}
