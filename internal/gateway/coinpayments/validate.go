package coinpayments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"go.uber.org/zap"
)

// Rejection reasons, reported verbatim in order notes, logs and emails.
const (
	ReasonUnknownMode      = "Unknown IPN verification method."
	ReasonNoSignature      = "No HMAC signature sent."
	ReasonNoBody           = "Error reading POST data"
	ReasonBadMerchantAuth  = "No or incorrect Merchant ID passed"
	ReasonBadSignature     = "HMAC signature does not match"
	ReasonOrderNotFound    = "Could not find order info for order: %s"
	ReasonBadIPNType       = "ipn_type != button or simple"
	ReasonMerchantMismatch = "Merchant ID doesn't match!"
	ReasonCurrencyMismatch = "Original currency doesn't match!"
	ReasonAmountTooLow     = "Amount received is less than the total!"
)

// IPNRequest is the raw callback as received over HTTP.
type IPNRequest struct {
	// Signature is the HMAC request header.
	Signature string
	Body      []byte
}

// Validated is an authenticated callback matched to its order.
type Validated struct {
	Order    *order.Order
	Callback *Callback
	Settings Settings
}

// RejectError stops validation. Order is set once the callback was matched
// to an order.
type RejectError struct {
	Reason string
	Order  *order.Order
	Err    error
}

func (e *RejectError) Error() string {
	return e.Reason
}

func (e *RejectError) Unwrap() error {
	return e.Err
}

// ValidateIPN authenticates a callback, resolves its order and verifies the
// payment fields against it. Failures are returned as *RejectError.
func (g *Gateway) ValidateIPN(ctx context.Context, req IPNRequest) (*Validated, error) {
	s, err := g.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	values, _ := url.ParseQuery(string(req.Body))
	return g.validate(ctx, req, values, s)
}

func (g *Gateway) validate(ctx context.Context, req IPNRequest, values url.Values, s Settings) (*Validated, error) {
	if err := authenticate(req, values, s); err != nil {
		return nil, err
	}

	invoice := values.Get("invoice")
	o, err := g.resolve(ctx, values, s)
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) && !errors.Is(err, ErrMalformedCustom) {
			g.logger.Error("order lookup failed", zap.String("invoice", invoice), zap.Error(err))
		}
		return nil, &RejectError{Reason: fmt.Sprintf(ReasonOrderNotFound, invoice), Err: err}
	}

	cb, err := ParseCallback(values)
	if err != nil {
		return nil, &RejectError{Reason: err.Error(), Order: o, Err: err}
	}

	if err := verifyFields(cb, o, s); err != nil {
		return nil, err
	}

	return &Validated{Order: o, Callback: cb, Settings: s}, nil
}

func authenticate(req IPNRequest, values url.Values, s Settings) error {
	if values.Get("ipn_mode") != "hmac" {
		return &RejectError{Reason: ReasonUnknownMode}
	}
	if req.Signature == "" {
		return &RejectError{Reason: ReasonNoSignature}
	}
	if len(req.Body) == 0 {
		return &RejectError{Reason: ReasonNoBody}
	}
	if strings.TrimSpace(values.Get("merchant")) != strings.TrimSpace(s.MerchantID) {
		return &RejectError{Reason: ReasonBadMerchantAuth}
	}
	if !Verify(req.Body, strings.TrimSpace(s.IPNSecret), req.Signature) {
		return &RejectError{Reason: ReasonBadSignature}
	}
	return nil
}

func (g *Gateway) resolve(ctx context.Context, values url.Values, s Settings) (*order.Order, error) {
	invoice, raw := values.Get("invoice"), values.Get("custom")
	if invoice == "" || raw == "" {
		return nil, ErrOrderNotFound
	}
	c, err := ParseCustom(raw, invoice, s.InvoicePrefix)
	if err != nil {
		return nil, err
	}
	return ResolveOrder(ctx, g.orders, c)
}

// verifyFields checks the payment against the order. The merchant is compared
// against the stored value untrimmed.
func verifyFields(cb *Callback, o *order.Order, s Settings) error {
	reject := func(reason string) error {
		return &RejectError{Reason: reason, Order: o}
	}

	if cb.IPNType != "button" && cb.IPNType != "simple" {
		return reject(ReasonBadIPNType)
	}
	if strings.TrimSpace(cb.Merchant) != s.MerchantID {
		return reject(ReasonMerchantMismatch)
	}
	if strings.TrimSpace(cb.Currency1) != o.Currency {
		return reject(ReasonCurrencyMismatch)
	}
	if !cb.Amount1.Valid || cb.Amount1.Decimal.LessThan(o.Total) {
		return reject(ReasonAmountTooLow)
	}
	return nil
}
