package httpx

import (
	"net/http"
	"time"

	"github.com/ariefcatur/go-dashboard-invoices/internal/auth"
	"github.com/ariefcatur/go-dashboard-invoices/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

func NewRouter(log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(hlog.NewHandler(log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Mount wires metrics, the login endpoints and the session-protected
// dashboard onto r.
func Mount(r chi.Router, m *Metrics, sessions *auth.Sessions, pages *redisx.PageCache, ah *AuthHandler, ih *InvoicesHandler) {
	r.Handle("/metrics", m.Handler())
	ah.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireSession(LoginPath))
		r.Use(sessionUser)
		r.Use(PageCache(pages, m))
		ih.Register(r)
	})
}

// sessionUser tags the request logger, and so the access log line, with
// the signed-in user.
func sessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := auth.ClaimsFrom(r.Context()); ok {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", claims.Subject).Str("user_email", claims.Email)
			})
		}
		next.ServeHTTP(w, r)
	})
}
