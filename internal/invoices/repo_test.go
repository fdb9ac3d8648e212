package invoices

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case *int64:
			*p = r.vals[i].(int64)
		case *int:
			*p = r.vals[i].(int)
		}
	}
	return nil
}

type fakeDB struct {
	sql  string
	args []any
	tag  string
	row  fakeRow
	err  error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	return pgconn.NewCommandTag(f.tag), f.err
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sql, f.args = sql, args
	return nil, errors.New("not supported")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.sql, f.args = sql, args
	return f.row
}

func TestRepoCreateInvoice(t *testing.T) {
	db := &fakeDB{row: fakeRow{vals: []any{"inv-9"}}}
	r := &Repo{DB: db}

	id, err := r.CreateInvoice(context.Background(), NewInvoice{
		CustomerID: "c1", AmountCents: 1250, Status: StatusPending, Date: "2026-10-19",
	})
	require.NoError(t, err)
	assert.Equal(t, "inv-9", id)
	assert.Contains(t, db.sql, "INSERT INTO invoices (customer_id, amount, status, date)")
	assert.Equal(t, []any{"c1", int64(1250), "pending", "2026-10-19"}, db.args)
}

func TestRepoCreateInvoiceError(t *testing.T) {
	boom := errors.New("fk violation")
	r := &Repo{DB: &fakeDB{row: fakeRow{err: boom}}}

	_, err := r.CreateInvoice(context.Background(), NewInvoice{CustomerID: "nope"})
	assert.ErrorIs(t, err, boom)
}

func TestRepoUpdateInvoice(t *testing.T) {
	db := &fakeDB{tag: "UPDATE 1"}
	r := &Repo{DB: db}

	n, err := r.UpdateInvoice(context.Background(), InvoiceUpdate{
		ID: "inv-1", CustomerID: "c2", AmountCents: 310, Status: StatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NotContains(t, db.sql, "date")
	assert.Equal(t, []any{"c2", int64(310), "paid", "inv-1"}, db.args)
}

func TestRepoDeleteInvoice(t *testing.T) {
	db := &fakeDB{tag: "DELETE 0"}
	r := &Repo{DB: db}

	n, err := r.DeleteInvoice(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []any{"inv-1"}, db.args)
}

func TestRepoGetInvoiceNotFound(t *testing.T) {
	r := &Repo{DB: &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}}

	_, err := r.GetInvoice(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepoCountPages(t *testing.T) {
	db := &fakeDB{row: fakeRow{vals: []any{13}}}
	r := &Repo{DB: db}

	pages, err := r.CountPages(context.Background(), "lee")
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.Equal(t, []any{"%lee%"}, db.args)
}
