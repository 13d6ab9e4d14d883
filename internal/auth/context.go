package auth

import "context"

type contextKey struct{}

// Context carries the verified identity for the active request.
type Context struct {
	UserID    int64
	Username  string
	SessionID int64
}

// Actor identifies who performed a mutation, for notification messages.
type Actor struct {
	UserID   int64
	Username string
}

func (c Context) Actor() Actor {
	return Actor{UserID: c.UserID, Username: c.Username}
}

func WithAuth(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (Context, bool) {
	ac, ok := ctx.Value(contextKey{}).(Context)
	return ac, ok
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

func Username(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.Username
}
