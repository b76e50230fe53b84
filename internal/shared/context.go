package shared

import "context"

type actorContextKey struct{}

// Actor identifies the authenticated user attached to a request.
type Actor struct {
	ID    int64
	Email string
	Role  string
}

// ContextWithActor stores the actor in the context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext retrieves the actor, nil when unauthenticated.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}
