package invoices

// Invoice as stored. AmountCents is in minor units; Date is YYYY-MM-DD.
type Invoice struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	AmountCents int64  `json:"amount"`
	Status      Status `json:"status"`
	Date        string `json:"date"`
}

type NewInvoice struct {
	CustomerID  string
	AmountCents int64
	Status      Status
	Date        string
}

// InvoiceUpdate carries the mutable columns. Date is never rewritten.
type InvoiceUpdate struct {
	ID          string
	CustomerID  string
	AmountCents int64
	Status      Status
}

// Row is one line of the invoices table view, joined with its customer.
type Row struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ImageURL    string `json:"image_url"`
	AmountCents int64  `json:"amount"`
	Status      Status `json:"status"`
	Date        string `json:"date"`
}

type Summary struct {
	InvoiceCount      int   `json:"invoice_count"`
	CustomerCount     int   `json:"customer_count"`
	TotalPaidCents    int64 `json:"total_paid"`
	TotalPendingCents int64 `json:"total_pending"`
}
