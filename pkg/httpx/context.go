package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRole   ctxKey = "role"
)

// Principal is the caller identity resolved from a session.
type Principal struct {
	UserID string
	Role   string
}

func contextWithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, p.UserID)
	ctx = context.WithValue(ctx, CtxKeyRole, p.Role)
	return ctx
}

// PrincipalFromContext returns the identity placed by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	uid, ok := ctx.Value(CtxKeyUserID).(string)
	if !ok || uid == "" {
		return Principal{}, false
	}
	role, _ := ctx.Value(CtxKeyRole).(string)
	return Principal{UserID: uid, Role: role}, true
}
