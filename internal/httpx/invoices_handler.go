package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-dashboard-invoices/internal/actions"
	"github.com/ariefcatur/go-dashboard-invoices/internal/invoices"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type InvoiceReader interface {
	ListInvoices(ctx context.Context, query string, page int) ([]invoices.Row, error)
	CountPages(ctx context.Context, query string) (int, error)
	GetInvoice(ctx context.Context, id string) (invoices.Invoice, error)
	Summary(ctx context.Context) (invoices.Summary, error)
}

type InvoicesHandler struct {
	Actions *actions.Actions
	Reader  InvoiceReader
	Metrics *Metrics
}

type listResp struct {
	Invoices   []invoices.Row `json:"invoices"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

func (h *InvoicesHandler) Register(r chi.Router) {
	r.Get(invoices.DashboardPath, h.overview)
	r.Get(invoices.ListPath, h.list)
	r.Get(invoices.ListPath+"/{id}/edit", h.edit)
	r.Post(invoices.ListPath, h.create)
	r.Post(invoices.ListPath+"/{id}", h.update)
	r.Put(invoices.ListPath+"/{id}", h.update)
	r.Post(invoices.ListPath+"/{id}/delete", h.delete)
	r.Delete(invoices.ListPath+"/{id}", h.delete)
}

func actionContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := actions.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
	return context.WithTimeout(ctx, 5*time.Second)
}

func (h *InvoicesHandler) create(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResp{Error: "invalid form"})
		return
	}
	ctx, cancel := actionContext(r)
	defer cancel()

	out := h.Actions.CreateInvoice(ctx, actions.State{}, form)
	switch {
	case out.Redirected():
		h.Metrics.action("create", "redirect")
		redirect(w, r, out.RedirectTo)
	case out.State.Errors != nil:
		h.Metrics.action("create", "invalid")
		writeJSON(w, r, http.StatusOK, out.State)
	default:
		h.Metrics.action("create", "db_error")
		writeJSON(w, r, http.StatusOK, out.State)
	}
}

func (h *InvoicesHandler) update(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResp{Error: "invalid form"})
		return
	}
	ctx, cancel := actionContext(r)
	defer cancel()

	out, err := h.Actions.UpdateInvoice(ctx, chi.URLParam(r, "id"), form)
	if err != nil {
		h.Metrics.action("update", "fatal")
		writeError(w, r, err)
		return
	}
	if out.Redirected() {
		h.Metrics.action("update", "redirect")
		redirect(w, r, out.RedirectTo)
		return
	}
	h.Metrics.action("update", "db_error")
	writeJSON(w, r, http.StatusOK, out.State)
}

func (h *InvoicesHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := actionContext(r)
	defer cancel()

	out, err := h.Actions.DeleteInvoice(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.Metrics.action("delete", "fatal")
		writeError(w, r, err)
		return
	}
	h.Metrics.action("delete", "ok")
	writeJSON(w, r, http.StatusOK, out.State)
}

func (h *InvoicesHandler) overview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Reader.Summary(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}

func (h *InvoicesHandler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rows, err := h.Reader.ListInvoices(ctx, query, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := h.Reader.CountPages(ctx, query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, listResp{Invoices: rows, Page: page, TotalPages: total})
}

func (h *InvoicesHandler) edit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	inv, err := h.Reader.GetInvoice(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, inv)
}
