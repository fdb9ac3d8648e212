package actions

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-dashboard-invoices/internal/auth"
	"github.com/ariefcatur/go-dashboard-invoices/internal/invoices"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateInvoice(ctx context.Context, in invoices.NewInvoice) (string, error) {
	args := m.Called(in)
	return args.String(0), args.Error(1)
}

func (m *MockStore) UpdateInvoice(ctx context.Context, in invoices.InvoiceUpdate) (int64, error) {
	args := m.Called(in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteInvoice(ctx context.Context, id string) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

type fakeCache struct {
	paths []string
	err   error
}

func (c *fakeCache) RevalidatePath(_ context.Context, path string) error {
	c.paths = append(c.paths, path)
	return c.err
}

type fakePublisher struct {
	mu   sync.Mutex
	envs []invoices.Envelope
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var env invoices.Envelope
	_ = json.Unmarshal(value, &env)
	p.envs = append(p.envs, env)
}

type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) SignIn(ctx context.Context, strategy string, creds map[string]string) (*auth.Session, error) {
	args := m.Called(strategy, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

var fixedNow = time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC)

func newActions(store *MockStore) (*Actions, *fakeCache, *fakePublisher) {
	cache := &fakeCache{}
	pub := &fakePublisher{}
	return &Actions{
		Store:   store,
		Cache:   cache,
		Events:  pub,
		Schema:  invoices.NewSchema(),
		Log:     zerolog.Nop(),
		Service: "dashboard-api",
		Now:     func() time.Time { return fixedNow },
	}, cache, pub
}

func TestCreateInvoice(t *testing.T) {
	store := new(MockStore)
	store.On("CreateInvoice", invoices.NewInvoice{
		CustomerID: "c1", AmountCents: 1250, Status: invoices.StatusPending, Date: "2026-10-19",
	}).Return("inv-1", nil).Once()
	a, cache, pub := newActions(store)

	out := a.CreateInvoice(context.Background(), State{}, url.Values{
		"customerId": {"c1"}, "amount": {"12.50"}, "status": {"pending"},
	})

	assert.True(t, out.Redirected())
	assert.Equal(t, "/dashboard/invoices", out.RedirectTo)
	assert.Equal(t, State{}, out.State)
	assert.Equal(t, []string{"/dashboard/invoices"}, cache.paths)
	store.AssertExpectations(t)

	require.Len(t, pub.envs, 1)
	assert.Equal(t, invoices.EventInvoiceCreated, pub.envs[0].EventType)
	assert.Equal(t, "inv-1", pub.envs[0].CorrelationID)
	assert.Equal(t, "dashboard-api", pub.envs[0].Producer)
}

func TestCreateInvoiceLastValueWins(t *testing.T) {
	store := new(MockStore)
	store.On("CreateInvoice", mock.MatchedBy(func(in invoices.NewInvoice) bool {
		return in.Status == invoices.StatusPaid && in.AmountCents == 500
	})).Return("inv-2", nil).Once()
	a, _, _ := newActions(store)

	out := a.CreateInvoice(context.Background(), State{}, url.Values{
		"customerId": {"c1"}, "amount": {"1", "5"}, "status": {"pending", "paid"},
	})
	assert.True(t, out.Redirected())
	store.AssertExpectations(t)
}

func TestCreateInvoiceInvalid(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want State
	}{
		{
			name: "zero amount",
			form: url.Values{"customerId": {"c1"}, "amount": {"0"}, "status": {"pending"}},
			want: State{
				Errors:  invoices.FieldErrors{"amount": {"Amount must be greater than 0."}},
				Message: "Missing fields. Failed to create invoice.",
			},
		},
		{
			name: "negative amount",
			form: url.Values{"customerId": {"c1"}, "amount": {"-0.01"}, "status": {"paid"}},
			want: State{
				Errors:  invoices.FieldErrors{"amount": {"Amount must be greater than 0."}},
				Message: MsgMissingFields,
			},
		},
		{
			name: "status outside the set",
			form: url.Values{"customerId": {"c1"}, "amount": {"3"}, "status": {"refunded"}},
			want: State{
				Errors:  invoices.FieldErrors{"status": {"Please select a status."}},
				Message: MsgMissingFields,
			},
		},
		{
			name: "amount whose cents wrap int64",
			form: url.Values{"customerId": {"c1"}, "amount": {"184467440737095511.16"}, "status": {"paid"}},
			want: State{
				Errors:  invoices.FieldErrors{"amount": {"Amount is too large."}},
				Message: MsgMissingFields,
			},
		},
		{
			name: "amount with a huge exponent",
			form: url.Values{"customerId": {"c1"}, "amount": {"1e200000000"}, "status": {"paid"}},
			want: State{
				Errors:  invoices.FieldErrors{"amount": {"Amount is too large."}},
				Message: MsgMissingFields,
			},
		},
		{
			name: "no customer",
			form: url.Values{"amount": {"3"}, "status": {"paid"}},
			want: State{
				Errors:  invoices.FieldErrors{"customerId": {"Please select a customer."}},
				Message: MsgMissingFields,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			a, cache, pub := newActions(store)

			out := a.CreateInvoice(context.Background(), State{}, tt.form)

			assert.False(t, out.Redirected())
			assert.Equal(t, tt.want, out.State)
			store.AssertNotCalled(t, "CreateInvoice", mock.Anything)
			assert.Empty(t, cache.paths)
			assert.Empty(t, pub.envs)
		})
	}
}

func TestCreateInvoiceDBError(t *testing.T) {
	store := new(MockStore)
	store.On("CreateInvoice", mock.Anything).Return("", errors.New("insert or update violates foreign key")).Once()
	a, cache, pub := newActions(store)

	out := a.CreateInvoice(context.Background(), State{}, url.Values{
		"customerId": {"c1"}, "amount": {"1"}, "status": {"paid"},
	})

	assert.False(t, out.Redirected())
	assert.Equal(t, State{Message: "Database Error: Failed to create invoice."}, out.State)
	assert.Nil(t, out.State.Errors)
	assert.Empty(t, cache.paths)
	assert.Empty(t, pub.envs)
}

func TestCreateInvoiceRevalidateFailureStillRedirects(t *testing.T) {
	store := new(MockStore)
	store.On("CreateInvoice", mock.Anything).Return("inv-1", nil).Once()
	a, cache, _ := newActions(store)
	cache.err = errors.New("redis down")

	out := a.CreateInvoice(context.Background(), State{}, url.Values{
		"customerId": {"c1"}, "amount": {"1"}, "status": {"paid"},
	})
	assert.Equal(t, "/dashboard/invoices", out.RedirectTo)
}

func TestUpdateInvoice(t *testing.T) {
	store := new(MockStore)
	store.On("UpdateInvoice", invoices.InvoiceUpdate{
		ID: "inv-1", CustomerID: "c2", AmountCents: 9999, Status: invoices.StatusPaid,
	}).Return(int64(1), nil).Once()
	a, cache, pub := newActions(store)

	out, err := a.UpdateInvoice(context.Background(), "inv-1", url.Values{
		"id":         {"ignored"},
		"customerId": {"c2", "c3"},
		"amount":     {"99.99"},
		"status":     {"paid"},
	})

	require.NoError(t, err)
	assert.Equal(t, "/dashboard/invoices", out.RedirectTo)
	assert.Equal(t, []string{"/dashboard/invoices"}, cache.paths)
	store.AssertExpectations(t)
	require.Len(t, pub.envs, 1)
	assert.Equal(t, invoices.EventInvoiceUpdated, pub.envs[0].EventType)
}

func TestUpdateInvoiceInvalidIsFatal(t *testing.T) {
	store := new(MockStore)
	a, cache, _ := newActions(store)

	out, err := a.UpdateInvoice(context.Background(), "inv-1", url.Values{
		"customerId": {"c2"}, "amount": {"abc"}, "status": {"paid"},
	})

	require.Error(t, err)
	ve, ok := invoices.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, invoices.FieldErrors{"amount": {invoices.MsgAmountNaN}}, ve.Fields)
	assert.Equal(t, Outcome{}, out)
	store.AssertNotCalled(t, "UpdateInvoice", mock.Anything)
	assert.Empty(t, cache.paths)
}

func TestUpdateInvoiceRejectsAmountPastColumn(t *testing.T) {
	store := new(MockStore)
	a, _, _ := newActions(store)

	_, err := a.UpdateInvoice(context.Background(), "inv-1", url.Values{
		"customerId": {"c2"}, "amount": {"1e17"}, "status": {"paid"},
	})

	ve, ok := invoices.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, invoices.FieldErrors{"amount": {invoices.MsgAmountTooLarge}}, ve.Fields)
	store.AssertNotCalled(t, "UpdateInvoice", mock.Anything)
}

func TestUpdateInvoiceDBError(t *testing.T) {
	store := new(MockStore)
	store.On("UpdateInvoice", mock.Anything).Return(int64(0), errors.New("timeout")).Once()
	a, cache, _ := newActions(store)

	out, err := a.UpdateInvoice(context.Background(), "inv-1", url.Values{
		"customerId": {"c2"}, "amount": {"1"}, "status": {"pending"},
	})

	require.NoError(t, err)
	assert.False(t, out.Redirected())
	assert.Equal(t, State{Message: "Database Error: Failed to update invoice."}, out.State)
	assert.Empty(t, cache.paths)
}

func TestDeleteInvoiceAlwaysFails(t *testing.T) {
	for _, id := range []string{"inv-1", "", "does-not-exist"} {
		store := new(MockStore)
		a, cache, pub := newActions(store)

		_, err := a.DeleteInvoice(context.Background(), id)

		assert.ErrorIs(t, err, ErrDeleteInvoice)
		assert.EqualError(t, err, "Failed to Delete Invoice.")
		store.AssertNotCalled(t, "DeleteInvoice", mock.Anything)
		assert.Empty(t, cache.paths)
		assert.Empty(t, pub.envs)
	}
}

func TestDeleteInvoiceEnabled(t *testing.T) {
	store := new(MockStore)
	store.On("DeleteInvoice", "inv-1").Return(int64(1), nil).Once()
	store.On("DeleteInvoice", "inv-2").Return(int64(0), errors.New("conn reset")).Once()
	a, cache, pub := newActions(store)
	a.DeleteEnabled = true

	out, err := a.DeleteInvoice(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.False(t, out.Redirected())
	assert.Equal(t, State{Message: MsgInvoiceDeleted}, out.State)
	assert.Equal(t, []string{"/dashboard/invoices"}, cache.paths)
	require.Len(t, pub.envs, 1)
	assert.Equal(t, invoices.EventInvoiceDeleted, pub.envs[0].EventType)

	out, err = a.DeleteInvoice(context.Background(), "inv-2")
	require.NoError(t, err)
	assert.Equal(t, State{Message: "Database Error: Failed to delete invoice."}, out.State)
	assert.Len(t, cache.paths, 1)
	store.AssertExpectations(t)
}

func TestAuthenticate(t *testing.T) {
	creds := url.Values{"email": {"user@nextmail.com"}, "password": {"123456"}}
	flat := map[string]string{"email": "user@nextmail.com", "password": "123456"}

	t.Run("accepted", func(t *testing.T) {
		id := new(MockIdentity)
		sess := &auth.Session{Token: "tok", User: &auth.User{ID: "u1"}}
		id.On("SignIn", "credentials", flat).Return(sess, nil)
		a := &Actions{Identity: id, Log: zerolog.Nop()}

		out, err := a.Authenticate(context.Background(), "", creds)
		require.NoError(t, err)
		assert.Empty(t, out.Message)
		assert.Equal(t, sess, out.Session)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		id := new(MockIdentity)
		id.On("SignIn", "credentials", flat).Return(nil, auth.ErrCredentialsSignin)
		a := &Actions{Identity: id, Log: zerolog.Nop()}

		out, err := a.Authenticate(context.Background(), "", creds)
		require.NoError(t, err)
		assert.Equal(t, "CredentialSignin", out.Message)
		assert.Nil(t, out.Session)
	})

	t.Run("other failure propagates", func(t *testing.T) {
		boom := errors.New("user store unreachable")
		id := new(MockIdentity)
		id.On("SignIn", "credentials", flat).Return(nil, boom)
		a := &Actions{Identity: id, Log: zerolog.Nop()}

		_, err := a.Authenticate(context.Background(), "", creds)
		assert.ErrorIs(t, err, boom)
	})
}

func TestFormFields(t *testing.T) {
	got := FormFields(url.Values{"a": {"1", "2"}, "b": {}, "c": {"3"}})
	assert.Equal(t, map[string]string{"a": "2", "c": "3"}, got)
}
