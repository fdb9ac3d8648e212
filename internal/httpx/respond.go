package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ariefcatur/go-dashboard-invoices/internal/actions"
	"github.com/ariefcatur/go-dashboard-invoices/internal/invoices"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/hlog"
)

const maxFormMemory = 1 << 20

type errorResp struct {
	Error  string               `json:"error"`
	Errors invoices.FieldErrors `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	render.Status(r, code)
	render.JSON(w, r, v)
}

// writeError answers a fatal action error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := invoices.AsValidationError(err); ok {
		writeJSON(w, r, http.StatusBadRequest, errorResp{Error: ve.Error(), Errors: ve.Fields})
		return
	}
	switch {
	case errors.Is(err, invoices.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, errorResp{Error: "not found"})
	case errors.Is(err, actions.ErrDeleteInvoice):
		writeJSON(w, r, http.StatusInternalServerError, errorResp{Error: err.Error()})
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, r, http.StatusInternalServerError, errorResp{Error: "Something went wrong."})
	}
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// parseForm reads an urlencoded or multipart body.
func parseForm(r *http.Request) (url.Values, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}
