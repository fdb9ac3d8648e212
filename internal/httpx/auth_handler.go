package httpx

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/go-dashboard-invoices/internal/actions"
	"github.com/ariefcatur/go-dashboard-invoices/internal/auth"
	"github.com/ariefcatur/go-dashboard-invoices/internal/invoices"
	"github.com/go-chi/chi/v5"
)

const LoginPath = "/login"

type AuthHandler struct {
	Actions  *actions.Actions
	Sessions *auth.Sessions
	Metrics  *Metrics
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post(LoginPath, h.login)
	r.Post("/logout", h.logout)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResp{Error: "invalid form"})
		return
	}
	ctx, cancel := actionContext(r)
	defer cancel()

	out, err := h.Actions.Authenticate(ctx, "", form)
	if err != nil {
		h.Metrics.action("authenticate", "fatal")
		writeError(w, r, err)
		return
	}
	if out.Message != "" {
		h.Metrics.action("authenticate", "rejected")
		writeJSON(w, r, http.StatusOK, actions.State{Message: out.Message})
		return
	}
	h.Metrics.action("authenticate", "ok")
	h.Sessions.SetCookie(w, out.Session)
	redirect(w, r, callbackURL(form.Get("redirectTo"), r.URL.Query().Get("callbackUrl")))
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w)
	redirect(w, r, LoginPath)
}

// callbackURL picks the first local path among candidates, falling back to
// the dashboard.
func callbackURL(candidates ...string) string {
	for _, c := range candidates {
		if strings.HasPrefix(c, "/") && !strings.HasPrefix(c, "//") {
			return c
		}
	}
	return invoices.DashboardPath
}
