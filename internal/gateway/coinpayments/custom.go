package coinpayments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/shopspring/decimal"
)

var (
	ErrMalformedCustom = errors.New("malformed custom field")
	ErrOrderNotFound   = errors.New("order not found for callback")
)

// CustomKind tells which of the three historical encodings the custom field used.
type CustomKind int

const (
	// CustomLegacyID is a bare order id; the invoice carries the order key.
	CustomLegacyID CustomKind = iota + 1
	// CustomPrefixed is an invoice-prefixed string that is also the order key.
	CustomPrefixed
	// CustomTuple is the current [id, "key"] array.
	CustomTuple
)

func (k CustomKind) String() string {
	switch k {
	case CustomLegacyID:
		return "legacy-id"
	case CustomPrefixed:
		return "prefixed"
	case CustomTuple:
		return "tuple"
	}
	return "unknown"
}

// Custom is the decoded custom field: which order the callback refers to.
type Custom struct {
	Kind     CustomKind
	OrderID  int64
	OrderKey string
}

// ParseCustom decodes the JSON custom field.
func ParseCustom(raw, invoice, invoicePrefix string) (Custom, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Custom{}, fmt.Errorf("%w: %v", ErrMalformedCustom, err)
	}

	switch val := v.(type) {
	case json.Number:
		return Custom{Kind: CustomLegacyID, OrderID: numericID(val.String()), OrderKey: invoice}, nil
	case string:
		if isNumeric(val) {
			return Custom{Kind: CustomLegacyID, OrderID: numericID(val), OrderKey: invoice}, nil
		}
		return Custom{
			Kind:     CustomPrefixed,
			OrderID:  leadingInt(strings.ReplaceAll(val, invoicePrefix, "")),
			OrderKey: val,
		}, nil
	case []any:
		if len(val) < 2 {
			return Custom{}, fmt.Errorf("%w: tuple needs id and key", ErrMalformedCustom)
		}
		key, ok := val[1].(string)
		if !ok {
			return Custom{}, fmt.Errorf("%w: order key is not a string", ErrMalformedCustom)
		}
		var id int64
		switch rawID := val[0].(type) {
		case json.Number:
			id = numericID(rawID.String())
		case string:
			id = leadingInt(rawID)
		default:
			return Custom{}, fmt.Errorf("%w: order id is not a number", ErrMalformedCustom)
		}
		return Custom{Kind: CustomTuple, OrderID: id, OrderKey: key}, nil
	}
	return Custom{}, fmt.Errorf("%w: unsupported JSON type %T", ErrMalformedCustom, v)
}

// EncodeCustom produces the tuple form sent on outbound redirects.
func EncodeCustom(id int64, key string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode([]any{id, key})
	return strings.TrimRight(buf.String(), "\n")
}

// ResolveOrder finds the order a callback refers to. When the id misses, the
// key is used to look the id up again, which covers invoice prefix changes.
// The stored key must match the callback's key.
func ResolveOrder(ctx context.Context, orders order.Store, c Custom) (*order.Order, error) {
	o, err := orders.GetByID(ctx, c.OrderID)
	if errors.Is(err, order.ErrNotFound) {
		id, kerr := orders.GetIDByKey(ctx, c.OrderKey)
		if errors.Is(kerr, order.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		if kerr != nil {
			return nil, kerr
		}
		o, err = orders.GetByID(ctx, id)
	}
	if errors.Is(err, order.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.Key != c.OrderKey {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func isNumeric(s string) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(s))
	return err == nil
}

func numericID(s string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return d.IntPart()
}

// leadingInt converts the leading integer of s, ignoring anything after it.
// Strings without one yield 0.
func leadingInt(s string) int64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
