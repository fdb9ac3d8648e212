package auth

import (
	"context"
	"net/http"
	"net/url"
)

const CookieName = "session"

type ctxKey struct{}

func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// RequireSession sends requests without a valid session cookie to
// loginPath, remembering where they were headed.
func (s *Sessions) RequireSession(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie(CookieName)
			if err == nil {
				if claims, err := s.Verify(ck.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
					return
				}
			}
			q := url.Values{"callbackUrl": {r.URL.RequestURI()}}
			http.Redirect(w, r, loginPath+"?"+q.Encode(), http.StatusSeeOther)
		})
	}
}

func (s *Sessions) SetCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
