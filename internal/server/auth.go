package server

import (
	"context"
	"net/http"

	"github.com/bjarke-xyz/careercode/internal/domain"
	"github.com/samber/lo"
)

var tokenCookieKey = "token"

var (
	IdentityCtxKey = &contextKey{"Identity"}
)

type tokenIssuedResponse struct {
	Success bool `json:"success"`
}

func (s *server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	claims := make(map[string]any)
	if err := decodeJSON(w, r, &claims); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	token, expiresAt, err := s.sessions.Issue(claims)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	sessionEvents.WithLabelValues("issued").Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieKey,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
	})
	jsonResponse(w, http.StatusOK, tokenIssuedResponse{Success: true})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieKey,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
	})
	jsonResponse(w, http.StatusOK, tokenIssuedResponse{Success: true})
}

func (s *server) sessionVerifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCookie, ok := lo.Find(r.Cookies(), func(c *http.Cookie) bool { return c.Name == tokenCookieKey })
		if !ok || len(tokenCookie.Value) == 0 {
			sessionEvents.WithLabelValues("missing").Inc()
			s.errorResponse(w, r, domain.ErrUnauthenticated)
			return
		}

		identity, err := s.sessions.Verify(tokenCookie.Value)
		if err != nil {
			sessionEvents.WithLabelValues("rejected").Inc()
			s.logger.Info("rejected session", "error", err, "path", r.URL.Path)
			s.errorResponse(w, r, err)
			return
		}
		ctx := NewContext(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey struct {
	name string
}

func NewContext(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityCtxKey, identity)
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityCtxKey).(domain.Identity)
	return identity, ok
}
