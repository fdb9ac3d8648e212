package revalidate

import (
	"context"
	"encoding/json"

	"github.com/ariefcatur/go-dashboard-invoices/internal/invoices"
	kafkax "github.com/ariefcatur/go-dashboard-invoices/internal/kafka"
	"github.com/ariefcatur/go-dashboard-invoices/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

type Revalidator interface {
	RevalidatePath(ctx context.Context, path string) error
}

// Service refreshes the views derived from invoice data that the action
// itself does not revalidate: the dashboard overview and the edit page.
type Service struct {
	Cache       Revalidator
	Redis       redis.Cmdable
	ServiceName string
	Log         zerolog.Logger
}

// HandleInvoiceChanged is installed as the consumer handler.
func (s *Service) HandleInvoiceChanged(ctx context.Context, m kafkago.Message) error {
	var env invoices.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// poison message; committing it is the only way forward
		s.Log.Error().Err(err).Int64("offset", m.Offset).Msg("drop undecodable event")
		return nil
	}

	paths := Paths(env)
	if paths == nil {
		return nil
	}

	seen, err := redisx.Seen(ctx, s.Redis, s.ServiceName, env.EventID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	for _, p := range paths {
		if err := s.Cache.RevalidatePath(ctx, p); err != nil {
			return err
		}
	}
	// marked only once every path is gone, so a redelivery after a failure
	// revalidates again
	if err := redisx.MarkSeen(ctx, s.Redis, s.ServiceName, env.EventID); err != nil {
		return err
	}
	s.Log.Debug().Str("event_type", env.EventType).Str("invoice_id", env.CorrelationID).Strs("paths", paths).Msg("revalidated")
	return nil
}

// Paths lists the routes an invoice event makes stale. Unknown event types
// yield nil.
func Paths(env invoices.Envelope) []string {
	p, err := kafkax.UnwrapPayload[invoices.InvoiceChangedPayload](env.Payload)
	if err != nil {
		return nil
	}
	switch env.EventType {
	case invoices.EventInvoiceCreated:
		return []string{invoices.DashboardPath}
	case invoices.EventInvoiceUpdated, invoices.EventInvoiceDeleted:
		return []string{invoices.DashboardPath, invoices.EditPath(p.InvoiceID)}
	}
	return nil
}
