// Package actions implements the dashboard's form actions: create, update
// and delete an invoice, and sign in with credentials.
//
// Every action takes its collaborators from Actions and answers with an
// explicit value. A completed mutation answers with Outcome.RedirectTo set;
// a recoverable failure answers with a State for the form to render. Errors
// returned alongside are fatal for the request.
package actions

import (
	"context"
	"net/url"
	"time"

	"github.com/ariefcatur/go-dashboard-invoices/internal/auth"
	"github.com/ariefcatur/go-dashboard-invoices/internal/invoices"
	kafkax "github.com/ariefcatur/go-dashboard-invoices/internal/kafka"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

type Store interface {
	CreateInvoice(ctx context.Context, in invoices.NewInvoice) (string, error)
	UpdateInvoice(ctx context.Context, in invoices.InvoiceUpdate) (int64, error)
	DeleteInvoice(ctx context.Context, id string) (int64, error)
}

// Revalidator drops cached renderings of a route.
type Revalidator interface {
	RevalidatePath(ctx context.Context, path string) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type IdentityProvider interface {
	SignIn(ctx context.Context, strategy string, creds map[string]string) (*auth.Session, error)
}

// State is what a form renders after a failed submission.
type State struct {
	Errors  invoices.FieldErrors `json:"errors,omitempty"`
	Message string               `json:"message,omitempty"`
}

type Outcome struct {
	State      State
	RedirectTo string
}

func (o Outcome) Redirected() bool { return o.RedirectTo != "" }

type Actions struct {
	Store    Store
	Cache    Revalidator
	Events   Publisher // optional
	Identity IdentityProvider
	Schema   *invoices.Schema
	Log      zerolog.Logger
	Service  string

	// DeleteEnabled lets DeleteInvoice reach the store.
	DeleteEnabled bool

	Now func() time.Time
}

func (a *Actions) today() string {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return now().UTC().Format("2006-01-02")
}

// FormFields flattens a form submission to one value per key. When a key
// repeats, the last value wins.
func FormFields(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k, vs := range form {
		if len(vs) > 0 {
			out[k] = vs[len(vs)-1]
		}
	}
	return out
}

// revalidate is issued before the redirect is produced; a failure only
// leaves a stale page until the cache TTL runs out.
func (a *Actions) revalidate(ctx context.Context, path string) {
	if a.Cache == nil {
		return
	}
	if err := a.Cache.RevalidatePath(ctx, path); err != nil {
		a.Log.Warn().Err(err).Str("path", path).Msg("revalidate failed")
	}
}

func (a *Actions) publish(ctx context.Context, eventType string, p invoices.InvoiceChangedPayload) {
	if a.Events == nil {
		return
	}
	ev := invoices.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      a.Service,
		TraceID:       traceID(ctx),
		CorrelationID: p.InvoiceID,
		Payload:       kafkax.MustMarshal(p),
	}
	a.Events.Publish(invoices.PartitionKey(p.InvoiceID), kafkax.MustMarshal(ev), kafkax.EventHeaders(eventType, 1)...)
}

type traceKey struct{}

// WithTraceID tags ctx so published events carry the request id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func traceID(ctx context.Context) string {
	s, _ := ctx.Value(traceKey{}).(string)
	return s
}
