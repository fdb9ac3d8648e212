package invoices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const ItemsPerPage = 6

var ErrNotFound = errors.New("invoice not found")

// DB is the subset of *pgxpool.Pool the repo needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct{ DB DB }

// CreateInvoice inserts one row and returns the id the database assigned.
func (r *Repo) CreateInvoice(ctx context.Context, in NewInvoice) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx, `
		INSERT INTO invoices (customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text
	`, in.CustomerID, in.AmountCents, string(in.Status), in.Date).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateInvoice rewrites customer, amount and status. A missing id is not
// an error: the statement simply matches nothing.
func (r *Repo) UpdateInvoice(ctx context.Context, in InvoiceUpdate) (int64, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE invoices
		SET customer_id = $1, amount = $2, status = $3
		WHERE id = $4
	`, in.CustomerID, in.AmountCents, string(in.Status), in.ID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repo) DeleteInvoice(ctx context.Context, id string) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repo) GetInvoice(ctx context.Context, id string) (Invoice, error) {
	var inv Invoice
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id::text, customer_id::text, amount, status, to_char(date, 'YYYY-MM-DD')
		FROM invoices WHERE id = $1
	`, id).Scan(&inv.ID, &inv.CustomerID, &inv.AmountCents, &status, &inv.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrNotFound
	}
	if err != nil {
		return Invoice{}, err
	}
	inv.Status = Status(status)
	return inv, nil
}

const filterClause = `
	FROM invoices
	JOIN customers ON invoices.customer_id = customers.id
	WHERE customers.name ILIKE $1
	   OR customers.email ILIKE $1
	   OR invoices.amount::text ILIKE $1
	   OR invoices.date::text ILIKE $1
	   OR invoices.status ILIKE $1`

// ListInvoices returns one page (1-based) of invoices matching query,
// newest first.
func (r *Repo) ListInvoices(ctx context.Context, query string, page int) ([]Row, error) {
	if page < 1 {
		page = 1
	}
	rows, err := r.DB.Query(ctx, `
		SELECT invoices.id::text, invoices.customer_id::text, customers.name, customers.email,
		       customers.image_url, invoices.amount, invoices.status, to_char(invoices.date, 'YYYY-MM-DD')`+
		filterClause+`
		ORDER BY invoices.date DESC
		LIMIT $2 OFFSET $3`,
		"%"+query+"%", ItemsPerPage, (page-1)*ItemsPerPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var x Row
		var status string
		if err := rows.Scan(&x.ID, &x.CustomerID, &x.Name, &x.Email, &x.ImageURL, &x.AmountCents, &status, &x.Date); err != nil {
			return nil, err
		}
		x.Status = Status(status)
		out = append(out, x)
	}
	return out, rows.Err()
}

// CountPages returns how many pages ListInvoices has for query.
func (r *Repo) CountPages(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*)`+filterClause, "%"+query+"%").Scan(&n); err != nil {
		return 0, err
	}
	return (n + ItemsPerPage - 1) / ItemsPerPage, nil
}

func (r *Repo) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	err := r.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM invoices),
			(SELECT COUNT(*) FROM customers),
			COALESCE((SELECT SUM(amount) FROM invoices WHERE status = 'paid'), 0),
			COALESCE((SELECT SUM(amount) FROM invoices WHERE status = 'pending'), 0)
	`).Scan(&s.InvoiceCount, &s.CustomerCount, &s.TotalPaidCents, &s.TotalPendingCents)
	return s, err
}
