package auth

import "context"

type contextKey int

const (
	userIDKey contextKey = iota
	principalKey
)

// Principal - ячейка для id пользователя, видимая middleware, которые стоят
// снаружи auth (например, логирование запросов). Заполняется в WithUserID.
type Principal struct {
	userID string
}

// UserID возвращает id аутентифицированного пользователя или "".
func (p *Principal) UserID() string {
	if p == nil {
		return ""
	}
	return p.userID
}

// WithPrincipal кладёт в контекст пустую ячейку Principal.
func WithPrincipal(ctx context.Context) (context.Context, *Principal) {
	p := &Principal{}
	return context.WithValue(ctx, principalKey, p), p
}

func WithUserID(ctx context.Context, userID string) context.Context {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		p.userID = userID
	}
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
