package authz

import "net/http"

// Reason identifies why a request was denied. Codes are stable and map 1:1
// to HTTP status codes on the API surface.
type Reason string

const (
	ReasonUnauthenticated       Reason = "UNAUTHENTICATED"
	ReasonBlocked               Reason = "BLOCKED"
	ReasonForbiddenRole         Reason = "FORBIDDEN_ROLE"
	ReasonNoSubscription        Reason = "NO_SUBSCRIPTION"
	ReasonSubscriptionExpired   Reason = "SUBSCRIPTION_EXPIRED"
	ReasonSubscriptionInactive  Reason = "SUBSCRIPTION_INACTIVE"
	ReasonTenantMismatch        Reason = "TENANT_MISMATCH"
	ReasonNoDashboardAssigned   Reason = "NO_DASHBOARD_ASSIGNED"
	ReasonPlanLimitReached      Reason = "PLAN_LIMIT_REACHED"
	ReasonPaymentVerifyFailed   Reason = "PAYMENT_VERIFICATION_FAILED"
)

// HTTPStatus maps the denial reason to its response status code.
func (r Reason) HTTPStatus() int {
	switch r {
	case ReasonUnauthenticated:
		return http.StatusUnauthorized
	case ReasonPaymentVerifyFailed:
		return http.StatusBadRequest
	default:
		return http.StatusForbidden
	}
}

// Denial is the error form of a DENY decision. Services return it so the
// HTTP layer can answer with the stable reason code.
type Denial struct {
	Reason  Reason
	Message string
}

func (d *Denial) Error() string {
	if d.Message != "" {
		return string(d.Reason) + ": " + d.Message
	}
	return string(d.Reason)
}

// Denied builds a Denial error.
func Denied(reason Reason, message string) *Denial {
	return &Denial{Reason: reason, Message: message}
}

// ProblemStatus implements the HTTP error mapping for a denial.
func (d *Denial) ProblemStatus() int { return d.Reason.HTTPStatus() }

// ProblemCode returns the stable reason code.
func (d *Denial) ProblemCode() string { return string(d.Reason) }

// ProblemDetail returns the human-readable message.
func (d *Denial) ProblemDetail() string { return d.Message }
