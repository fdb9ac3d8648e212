package httpx

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-dashboard-invoices/internal/redisx"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
)

// PageCache serves GET responses from the Redis page cache and stores
// fresh 200 responses, unless the path was revalidated while rendering.
// Cache errors fall through to the handler.
func PageCache(c *redisx.PageCache, m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			path, query := r.URL.Path, r.URL.RawQuery

			p, ok, err := c.Get(ctx, path, query)
			if err != nil {
				hlog.FromRequest(r).Warn().Err(err).Str("path", path).Msg("page cache read")
			}
			if ok {
				m.cacheResult("hit")
				if p.ContentType != "" {
					w.Header().Set("Content-Type", p.ContentType)
				}
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(p.Body)
				return
			}
			m.cacheResult("miss")

			ver, err := c.Version(ctx, path)
			if err != nil {
				hlog.FromRequest(r).Warn().Err(err).Str("path", path).Msg("page cache version")
				next.ServeHTTP(w, r)
				return
			}

			var buf bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&buf)
			ww.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(ww, r)

			if ww.Status() != http.StatusOK {
				return
			}
			page := redisx.Page{ContentType: ww.Header().Get("Content-Type"), Body: buf.Bytes()}
			switch err := c.Put(ctx, path, query, ver, page); {
			case errors.Is(err, redisx.ErrStalePage):
				hlog.FromRequest(r).Debug().Str("path", path).Msg("page revalidated during render, not cached")
			case err != nil:
				hlog.FromRequest(r).Warn().Err(err).Str("path", path).Msg("page cache write")
			}
		})
	}
}
