package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	identityCookie = "qk_uid"
	identityHeader = "X-User-ID"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// identityMiddleware gives every caller an opaque user id. Browsers keep it
// in a cookie; other clients may send it in the X-User-ID header instead.
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(identityHeader))
		if id == "" {
			if cookie, err := r.Cookie(identityCookie); err == nil {
				id = strings.TrimSpace(cookie.Value)
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     identityCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), ctxKeyUser, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyUser).(string)
	return id
}
