package authz

import "context"

// Actor is the immutable authenticated identity a request acts as. It is
// built once after token verification and passed by value from there on.
type Actor struct {
	ID          string
	Email       string
	Role        Role
	TenantID    string
	DashboardID string
	IsBlocked   bool
}

type actorContextKey struct{}

// ContextWithActor stores the actor in the request context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor, nil when unauthenticated.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}
