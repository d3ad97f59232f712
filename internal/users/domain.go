package users

import (
	"time"

	"github.com/relaycrm/relay/internal/authz"
)

// User represents an account. Admins own a tenant and a subscription;
// managers and staff are bound to one dashboard inside the admin's tenant.
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Role            authz.Role
	TenantID        string
	SubscriptionID  string
	DashboardID     string
	LastDashboardID string
	IsBlocked       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Actor converts the stored user into the immutable identity the gate
// evaluates.
func (u User) Actor() authz.Actor {
	return authz.Actor{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		TenantID:    u.TenantID,
		DashboardID: u.DashboardID,
		IsBlocked:   u.IsBlocked,
	}
}

// TeamMember is a manager or staff row joined with its dashboard name.
type TeamMember struct {
	User
	DashboardName string
}

// authzRole parses a stored role, zero on rows written before the role set
// was closed.
func authzRole(raw string) authz.Role {
	role, _ := authz.ParseRole(raw)
	return role
}
