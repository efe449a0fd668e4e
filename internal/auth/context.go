package auth

import "context"

type contextKey string

const actorKey contextKey = "actor"

// ContextWithActor returns a new context carrying the acting user id.
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey, actorID)
}

// ActorFromContext retrieves the acting user id from the context, if any.
// Import runs record it as created_by when the request carries no explicit
// actor.
func ActorFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value := ctx.Value(actorKey)
	if value == nil {
		return "", false
	}
	actorID, ok := value.(string)
	if !ok || actorID == "" {
		return "", false
	}
	return actorID, true
}
