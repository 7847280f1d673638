// Package gateway defines the payment-gateway capability set and the registry
// that filters registered gateways against the admin's enabled list.
package gateway

import (
	"context"
	"errors"
)

var (
	ErrUnknownGateway = errors.New("unknown payment gateway")
	ErrInvalidField   = errors.New("invalid settings field")
)

// FieldType is the input kind rendered for a settings field.
type FieldType string

const (
	FieldTitle    FieldType = "title"
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldCheckbox FieldType = "checkbox"
	FieldPassword FieldType = "password"
)

type FormField struct {
	Key         string
	Type        FieldType
	Title       string
	Label       string
	Description string
	Default     string
}

// PaymentResult is returned from ProcessPayment: Result is "success" and the
// customer is sent to Redirect.
type PaymentResult struct {
	Result   string `json:"result"`
	Redirect string `json:"redirect"`
}

// Gateway is what a payment gateway exposes to the checkout and admin surfaces.
type Gateway interface {
	// ID is the checkout-facing identifier.
	ID() string
	// Name is the short name stored in the enabled-gateways record.
	Name() string
	MethodTitle() string
	// Title is the checkout-facing title from the gateway's settings.
	Title(ctx context.Context) string
	FormFields() []FormField
	IsAvailable(ctx context.Context) bool
	ProcessPayment(ctx context.Context, orderID int64) (*PaymentResult, error)
	ReceiptMessage() string
	// Settings returns the stored settings as form values, secrets blanked.
	Settings(ctx context.Context) (map[string]string, error)
	UpdateSettings(ctx context.Context, values map[string]string) error
}

// EnabledChecker reports whether a gateway short name is enabled by the admin.
type EnabledChecker interface {
	IsGatewayEnabled(ctx context.Context, name string) (bool, error)
}
