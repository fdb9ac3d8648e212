package actions

import (
	"context"
	"errors"
	"net/url"

	"github.com/ariefcatur/go-dashboard-invoices/internal/invoices"
)

const (
	MsgMissingFields  = "Missing fields. Failed to create invoice."
	MsgCreateDBError  = "Database Error: Failed to create invoice."
	MsgUpdateDBError  = "Database Error: Failed to update invoice."
	MsgDeleteDBError  = "Database Error: Failed to delete invoice."
	MsgInvoiceDeleted = "Deleted Invoice."
)

// ErrDeleteInvoice is returned by DeleteInvoice while deletes are disabled.
var ErrDeleteInvoice = errors.New("Failed to Delete Invoice.")

// CreateInvoice validates the form, inserts one invoice dated today and
// redirects to the invoice list. The previous state is not consulted.
func (a *Actions) CreateInvoice(ctx context.Context, _ State, form url.Values) Outcome {
	in, err := a.Schema.ParseCreate(FormFields(form))
	if err != nil {
		ve, ok := invoices.AsValidationError(err)
		if !ok {
			a.Log.Error().Err(err).Msg("create invoice: validate")
			return Outcome{State: State{Message: MsgMissingFields}}
		}
		a.Log.Debug().Interface("errors", ve.Fields).Msg("create invoice: invalid form")
		return Outcome{State: State{Errors: ve.Fields, Message: MsgMissingFields}}
	}

	rec := invoices.NewInvoice{
		CustomerID:  in.CustomerID,
		AmountCents: in.AmountInCents(),
		Status:      in.Status,
		Date:        a.today(),
	}
	id, err := a.Store.CreateInvoice(ctx, rec)
	if err != nil {
		a.Log.Error().Err(err).Str("customer_id", rec.CustomerID).Msg("create invoice: insert")
		return Outcome{State: State{Message: MsgCreateDBError}}
	}

	a.revalidate(ctx, invoices.ListPath)
	a.publish(ctx, invoices.EventInvoiceCreated, invoices.InvoiceChangedPayload{
		InvoiceID:   id,
		CustomerID:  rec.CustomerID,
		AmountCents: rec.AmountCents,
		Status:      rec.Status,
		Date:        rec.Date,
	})
	return Outcome{RedirectTo: invoices.ListPath}
}

// UpdateInvoice rewrites customer, amount and status of invoice id.
// Invalid input is returned as a *invoices.ValidationError and nothing is
// written; a store failure is reported through the State.
func (a *Actions) UpdateInvoice(ctx context.Context, id string, form url.Values) (Outcome, error) {
	in, err := a.Schema.ParseUpdate(id, map[string]string{
		invoices.FieldCustomerID: form.Get(invoices.FieldCustomerID),
		invoices.FieldAmount:     form.Get(invoices.FieldAmount),
		invoices.FieldStatus:     form.Get(invoices.FieldStatus),
	})
	if err != nil {
		return Outcome{}, err
	}

	upd := invoices.InvoiceUpdate{
		ID:          in.ID,
		CustomerID:  in.CustomerID,
		AmountCents: in.AmountInCents(),
		Status:      in.Status,
	}
	n, err := a.Store.UpdateInvoice(ctx, upd)
	if err != nil {
		a.Log.Error().Err(err).Str("invoice_id", id).Msg("update invoice")
		return Outcome{State: State{Message: MsgUpdateDBError}}, nil
	}
	if n == 0 {
		a.Log.Warn().Str("invoice_id", id).Msg("update invoice: no row matched")
	}

	a.revalidate(ctx, invoices.ListPath)
	a.publish(ctx, invoices.EventInvoiceUpdated, invoices.InvoiceChangedPayload{
		InvoiceID:   upd.ID,
		CustomerID:  upd.CustomerID,
		AmountCents: upd.AmountCents,
		Status:      upd.Status,
	})
	return Outcome{RedirectTo: invoices.ListPath}, nil
}

// DeleteInvoice fails with ErrDeleteInvoice before touching the store
// unless DeleteEnabled is set. When enabled it deletes, revalidates the
// list and answers with a message instead of a redirect.
func (a *Actions) DeleteInvoice(ctx context.Context, id string) (Outcome, error) {
	if !a.DeleteEnabled {
		return Outcome{}, ErrDeleteInvoice
	}

	if _, err := a.Store.DeleteInvoice(ctx, id); err != nil {
		a.Log.Error().Err(err).Str("invoice_id", id).Msg("delete invoice")
		return Outcome{State: State{Message: MsgDeleteDBError}}, nil
	}

	a.revalidate(ctx, invoices.ListPath)
	a.publish(ctx, invoices.EventInvoiceDeleted, invoices.InvoiceChangedPayload{InvoiceID: id})
	return Outcome{State: State{Message: MsgInvoiceDeleted}}, nil
}
