package authz

import (
	"net/http"

	"github.com/relaycrm/relay/internal/platform/httpx"
)

// Middleware fronts HTTP routes with gate checks.
type Middleware struct {
	Gate *Gate
}

// Require evaluates the operation for the request's actor before passing
// control on. The target tenant defaults to the actor's own tenant;
// handlers that touch a concrete resource re-check against its tenant.
func (m Middleware) Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			target := Target{}
			if actor != nil {
				target.TenantID = actor.TenantID
			}
			decision := m.Gate.Decide(r.Context(), actor, op, target)
			if !decision.Allowed {
				httpx.Problem(w, decision.Reason.HTTPStatus(), string(decision.Reason), decision.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
