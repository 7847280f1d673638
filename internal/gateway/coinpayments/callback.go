package coinpayments

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Callback is the typed IPN payload.
type Callback struct {
	IPNMode          string
	IPNType          string
	Merchant         string
	Invoice          string
	Custom           string
	Currency1        string
	Amount1          decimal.NullDecimal
	Amount2          decimal.NullDecimal
	Status           int
	StatusText       string
	TxnID            string
	FirstName        string
	LastName         string
	Email            string
	ReceivedConfirms int
	ReceivedAmount   decimal.NullDecimal
}

// FieldError reports a required field that is missing or a numeric field that
// does not parse.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("IPN field %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("IPN field %s %s: %q", e.Field, e.Reason, e.Value)
}

// ParseCallback maps posted form values onto a Callback. status is the only
// required field; optional numeric fields are left null when absent.
func ParseCallback(values url.Values) (*Callback, error) {
	cb := &Callback{
		IPNMode:    values.Get("ipn_mode"),
		IPNType:    values.Get("ipn_type"),
		Merchant:   values.Get("merchant"),
		Invoice:    values.Get("invoice"),
		Custom:     values.Get("custom"),
		Currency1:  values.Get("currency1"),
		StatusText: values.Get("status_text"),
		TxnID:      values.Get("txn_id"),
		FirstName:  values.Get("first_name"),
		LastName:   values.Get("last_name"),
		Email:      values.Get("email"),
	}

	status := strings.TrimSpace(values.Get("status"))
	if status == "" {
		return nil, &FieldError{Field: "status", Reason: "is required"}
	}
	n, err := parseInt(status)
	if err != nil {
		return nil, &FieldError{Field: "status", Value: status, Reason: "is not an integer"}
	}
	cb.Status = n

	if v := strings.TrimSpace(values.Get("received_confirms")); v != "" {
		n, err := parseInt(v)
		if err != nil {
			return nil, &FieldError{Field: "received_confirms", Value: v, Reason: "is not an integer"}
		}
		cb.ReceivedConfirms = n
	}

	for _, f := range []struct {
		name string
		dst  *decimal.NullDecimal
	}{
		{"amount1", &cb.Amount1},
		{"amount2", &cb.Amount2},
		{"received_amount", &cb.ReceivedAmount},
	} {
		v := strings.TrimSpace(values.Get(f.name))
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, &FieldError{Field: f.name, Value: v, Reason: "is not a number"}
		}
		*f.dst = decimal.NewNullDecimal(d)
	}

	return cb, nil
}

// parseInt accepts integers and integral decimals such as "100.0".
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return int(d.IntPart()), nil
}
