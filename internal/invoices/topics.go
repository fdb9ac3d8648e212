package invoices

const TopicInvoiceChanged = "invoice.changed"

// Partition key = invoice id, so every event of one invoice stays ordered.
func PartitionKey(invoiceID string) []byte { return []byte(invoiceID) }
