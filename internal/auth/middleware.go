package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gastos/internal/core"
	"gastos/internal/log"
)

const (
	MsgTokenMissing = "Token ausente"
	MsgTokenInvalid = "Token inválido"
	MsgUserInvalid  = "Usuário inválido"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// UserLookup resolves the account a verified token points at.
type UserLookup interface {
	UserByID(ctx context.Context, id int64) (core.User, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// token's user in the request context.
type Middleware struct {
	tokens *TokenIssuer
	users  UserLookup
}

func NewMiddleware(tokens *TokenIssuer, users UserLookup) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context()).WithComponent(log.ComponentAuth)

		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeUnauthorized(w, MsgTokenMissing)
			return
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			logger.WarnContext(r.Context(), "Rejected token", log.FieldError, err)
			writeUnauthorized(w, MsgTokenInvalid)
			return
		}

		user, err := m.users.UserByID(r.Context(), userID)
		if core.IsKind(err, core.KindNotFound) {
			writeUnauthorized(w, MsgUserInvalid)
			return
		}
		if err != nil {
			logger.ErrorContext(r.Context(), "User lookup failed", log.FieldUserID, userID, log.FieldError, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Erro interno do servidor"})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// bearerToken strips an optional "Bearer " scheme from an Authorization
// header value.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		header = header[7:]
	}
	return strings.TrimSpace(header)
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userContextKey).(core.User)
	return u, ok
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
