package invoices

import (
	"encoding/json"
	"time"
)

const (
	EventInvoiceCreated = "InvoiceCreated"
	EventInvoiceUpdated = "InvoiceUpdated"
	EventInvoiceDeleted = "InvoiceDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // invoice id
	Payload       json.RawMessage `json:"payload"`
}

type InvoiceChangedPayload struct {
	InvoiceID   string `json:"invoice_id"`
	CustomerID  string `json:"customer_id,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Status      Status `json:"status,omitempty"`
	Date        string `json:"date,omitempty"`
}
