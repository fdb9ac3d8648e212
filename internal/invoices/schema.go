package invoices

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	MsgSelectCustomer = "Please select a customer."
	MsgAmountPositive = "Amount must be greater than 0."
	MsgAmountNaN      = "Expected number, received nan"
	MsgAmountTooLarge = "Amount is too large."
	MsgSelectStatus   = "Please select a status."
	MsgIDRequired     = "Invoice id is required."
)

// Form field names as submitted by the dashboard forms.
const (
	FieldID         = "id"
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

var fieldMessages = map[string]string{
	FieldID:         MsgIDRequired,
	FieldCustomerID: MsgSelectCustomer,
	FieldAmount:     MsgAmountPositive,
	FieldStatus:     MsgSelectStatus,
}

// MaxAmountCents is the largest amount the invoices.amount INT column holds.
const MaxAmountCents = math.MaxInt32

const (
	maxAmountLen      = 32
	maxAmountExponent = 32
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(MaxAmountCents)
)

// FieldErrors maps a form field to its messages, in the order they were found.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "invalid invoice fields: " + strings.Join(names, ", ")
}

// AsValidationError unwraps err into a *ValidationError if it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// InvoiceFields is the part of an invoice a form may set.
type InvoiceFields struct {
	CustomerID string          `form:"customerId" validate:"required"`
	Amount     decimal.Decimal `form:"amount" validate:"gt=0"`
	Status     Status          `form:"status" validate:"required,invoice_status"`
}

// AmountInCents converts the major-unit amount to minor units, rounding
// half away from zero. Parsed amounts always fit MaxAmountCents.
func (f InvoiceFields) AmountInCents() int64 {
	return f.Amount.Mul(hundred).Round(0).IntPart()
}

// CreateInput omits id and date: both are assigned server side.
type CreateInput struct {
	InvoiceFields
}

// UpdateInput identifies an existing invoice. Date stays out of reach.
type UpdateInput struct {
	ID string `form:"id" validate:"required"`
	InvoiceFields
}

type Schema struct {
	v *validator.Validate
}

func NewSchema() *Schema {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// validate decimals as their float value so gt=0 applies
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("invoice_status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	return &Schema{v: v}
}

// ParseCreate coerces and validates the create-form fields.
// A failure is always a *ValidationError.
func (s *Schema) ParseCreate(fields map[string]string) (CreateInput, error) {
	in, coerceErrs := coerceFields(fields)
	out := CreateInput{InvoiceFields: in}
	if err := s.check(out, coerceErrs); err != nil {
		return CreateInput{}, err
	}
	return out, nil
}

// ParseUpdate validates the update shape for the invoice identified by id.
func (s *Schema) ParseUpdate(id string, fields map[string]string) (UpdateInput, error) {
	in, coerceErrs := coerceFields(fields)
	out := UpdateInput{ID: id, InvoiceFields: in}
	if err := s.check(out, coerceErrs); err != nil {
		return UpdateInput{}, err
	}
	return out, nil
}

func (s *Schema) check(v any, coerceErrs FieldErrors) error {
	fe := FieldErrors{}
	if err := s.v.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			field := e.Field()
			if _, coerced := coerceErrs[field]; coerced {
				continue
			}
			msg, ok := fieldMessages[field]
			if !ok {
				msg = "Invalid value."
			}
			fe.Add(field, msg)
		}
	}
	for field, msgs := range coerceErrs {
		fe[field] = append(msgs, fe[field]...)
	}
	if len(fe) > 0 {
		return &ValidationError{Fields: fe}
	}
	return nil
}

func coerceFields(fields map[string]string) (InvoiceFields, FieldErrors) {
	errs := FieldErrors{}
	amount, msg := coerceAmount(fields[FieldAmount])
	if msg != "" {
		errs.Add(FieldAmount, msg)
	}
	return InvoiceFields{
		CustomerID: fields[FieldCustomerID],
		Amount:     amount,
		Status:     Status(fields[FieldStatus]),
	}, errs
}

// coerceAmount treats a blank amount as zero, the way numeric coercion of
// an empty form input does. A positive amount that rounds to zero cents
// also comes back as zero so gt=0 rejects it. The returned message is set
// when the input cannot be used at all.
func coerceAmount(raw string) (decimal.Decimal, string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ""
	}
	if len(s) > maxAmountLen {
		return decimal.Zero, MsgAmountTooLarge
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, MsgAmountNaN
	}
	if d.Sign() <= 0 {
		return decimal.Zero, ""
	}
	// the exponent bounds the cost of scaling to cents
	exp := d.Exponent()
	if exp > maxAmountExponent {
		return decimal.Zero, MsgAmountTooLarge
	}
	if exp < -maxAmountExponent {
		return decimal.Zero, ""
	}
	cents := d.Mul(hundred).Round(0)
	if cents.GreaterThan(maxCents) {
		return decimal.Zero, MsgAmountTooLarge
	}
	if cents.Sign() == 0 {
		return decimal.Zero, ""
	}
	return d, ""
}
