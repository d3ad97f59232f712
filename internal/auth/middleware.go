package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/platform/httpx"
	"github.com/relaycrm/relay/internal/users"
)

// ActorStore fetches the fresh account backing a verified token. Role and
// blocked state are always read from the store, never trusted from claims.
type ActorStore interface {
	FindByID(ctx context.Context, id string) (users.User, error)
}

// Authenticator turns bearer tokens into an immutable actor on the
// request context.
type Authenticator struct {
	tokens *TokenManager
	store  ActorStore
	logger *slog.Logger
}

// NewAuthenticator constructs the middleware.
func NewAuthenticator(tokens *TokenManager, store ActorStore, logger *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, store: store, logger: logger}
}

// Middleware rejects requests without a valid token and attaches the actor.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if raw == "" {
			httpx.Problem(w, http.StatusUnauthorized, string(authz.ReasonUnauthenticated), "no token, authorization denied")
			return
		}
		claims, err := a.tokens.Verify(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		user, err := a.store.FindByID(r.Context(), claims.UserID)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, string(authz.ReasonUnauthenticated), "user not found")
			return
		}
		actor := user.Actor()
		ctx := authz.ContextWithActor(r.Context(), &actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
