package coinpayments

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/VladKovDev/cryptocart/internal/domain/option"
	"github.com/VladKovDev/cryptocart/internal/gateway"
)

const (
	yes = "yes"
	no  = "no"
)

// Settings is the gateway configuration edited on the gateway settings form.
type Settings struct {
	Enabled          bool
	Title            string
	Description      string
	MerchantID       string
	IPNSecret        string
	SendShipping     bool
	DebugEmail       string
	AllowZeroConfirm bool
	InvoicePrefix    string
	SimpleTotal      bool
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:       true,
		Title:         "CoinPayments.net",
		Description:   "Pay with Bitcoin, Litecoin, or other altcoins via CoinPayments.net",
		SendShipping:  true,
		InvoicePrefix: "WC-",
	}
}

var formFields = []gateway.FormField{
	{Key: "enabled", Type: gateway.FieldCheckbox, Title: "Enable/Disable", Label: "Enable CoinPayments.net", Default: yes},
	{Key: "title", Type: gateway.FieldText, Title: "Title", Description: "This controls the title which the user sees during checkout.", Default: "CoinPayments.net"},
	{Key: "description", Type: gateway.FieldTextarea, Title: "Description", Description: "This controls the description which the user sees during checkout.", Default: "Pay with Bitcoin, Litecoin, or other altcoins via CoinPayments.net"},
	{Key: "merchant_id", Type: gateway.FieldText, Title: "Merchant ID", Description: "Please enter your CoinPayments.net Merchant ID."},
	{Key: "ipn_secret", Type: gateway.FieldPassword, Title: "IPN Secret", Description: "Please enter your CoinPayments.net IPN Secret."},
	{Key: "simple_total", Type: gateway.FieldCheckbox, Title: "Compatibility Mode", Label: "This may be needed for compatibility with certain addons if the order total isn't correct."},
	{Key: "send_shipping", Type: gateway.FieldCheckbox, Title: "Collect Shipping Info?", Label: "Enable Shipping Information on Checkout page", Default: yes},
	{Key: "allow_zero_confirm", Type: gateway.FieldCheckbox, Title: "Enable 1st-confirm payments?", Label: "* WARNING * If this is selected orders will be marked as paid as soon as your buyer's payment is detected, but before it is fully confirmed. This can be dangerous if the payment never confirms and is only recommended for digital downloads."},
	{Key: "invoice_prefix", Type: gateway.FieldText, Title: "Invoice Prefix", Description: "Please enter a prefix for your invoice numbers. If you use your CoinPayments.net account for multiple stores ensure this prefix is unique.", Default: "WC-"},
	{Key: "testing", Type: gateway.FieldTitle, Title: "Gateway Testing"},
	{Key: "debug_email", Type: gateway.FieldText, Title: "Debug Email", Description: "Send copies of invalid IPNs to this email address."},
}

// settingsFromValues reads the stored form values. Keys that were never saved
// keep their defaults.
func settingsFromValues(values map[string]string) Settings {
	s := DefaultSettings()

	str := func(key string, dst *string) {
		if v, ok := values[key]; ok {
			*dst = v
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := values[key]; ok {
			*dst = v == yes
		}
	}

	flag("enabled", &s.Enabled)
	str("title", &s.Title)
	str("description", &s.Description)
	str("merchant_id", &s.MerchantID)
	str("ipn_secret", &s.IPNSecret)
	flag("send_shipping", &s.SendShipping)
	str("debug_email", &s.DebugEmail)
	flag("allow_zero_confirm", &s.AllowZeroConfirm)
	str("invoice_prefix", &s.InvoicePrefix)
	flag("simple_total", &s.SimpleTotal)
	return s
}

func (s Settings) values() map[string]string {
	return map[string]string{
		"enabled":            yesNo(s.Enabled),
		"title":              s.Title,
		"description":        s.Description,
		"merchant_id":        s.MerchantID,
		"ipn_secret":         s.IPNSecret,
		"send_shipping":      yesNo(s.SendShipping),
		"debug_email":        s.DebugEmail,
		"allow_zero_confirm": yesNo(s.AllowZeroConfirm),
		"invoice_prefix":     s.InvoicePrefix,
		"simple_total":       yesNo(s.SimpleTotal),
	}
}

func yesNo(b bool) string {
	if b {
		return yes
	}
	return no
}

// LoadSettings reads the settings option fresh from the store.
func (g *Gateway) LoadSettings(ctx context.Context) (Settings, error) {
	values, err := option.Load[map[string]string](ctx, g.options, option.CoinPaymentsSettingName)
	if errors.Is(err, option.ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load gateway settings: %w", err)
	}

	s := settingsFromValues(values)
	if g.cipher != nil {
		secret, err := g.cipher.DecryptString(s.IPNSecret, option.CoinPaymentsSettingName)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to decrypt ipn secret: %w", err)
		}
		s.IPNSecret = secret
	}
	return s, nil
}

func (g *Gateway) SaveSettings(ctx context.Context, s Settings) error {
	values := s.values()
	if g.cipher != nil && s.IPNSecret != "" {
		sealed, err := g.cipher.EncryptString(s.IPNSecret, option.CoinPaymentsSettingName)
		if err != nil {
			return fmt.Errorf("failed to encrypt ipn secret: %w", err)
		}
		values["ipn_secret"] = sealed
	}

	if _, err := option.Save(ctx, g.options, option.CoinPaymentsSettingName, values); err != nil {
		return fmt.Errorf("failed to save gateway settings: %w", err)
	}
	return nil
}

// Settings returns the form values shown on the admin page. The IPN secret is
// never echoed back.
func (g *Gateway) Settings(ctx context.Context) (map[string]string, error) {
	s, err := g.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	values := s.values()
	values["ipn_secret"] = ""
	return values, nil
}

// UpdateSettings applies a submitted settings form. Unchecked checkboxes are
// absent from the form and mean "no"; an empty IPN secret keeps the stored one.
func (g *Gateway) UpdateSettings(ctx context.Context, form map[string]string) error {
	current, err := g.LoadSettings(ctx)
	if err != nil {
		return err
	}

	values := make(map[string]string, len(formFields))
	for _, f := range formFields {
		v := strings.TrimSpace(form[f.Key])
		switch f.Type {
		case gateway.FieldTitle:
			continue
		case gateway.FieldCheckbox:
			values[f.Key] = yesNo(isChecked(v))
		default:
			values[f.Key] = v
		}
	}

	if email := values["debug_email"]; email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: debug_email: %v", gateway.ErrInvalidField, err)
		}
	}

	next := settingsFromValues(values)
	if next.IPNSecret == "" {
		next.IPNSecret = current.IPNSecret
	}
	return g.SaveSettings(ctx, next)
}

func isChecked(v string) bool {
	switch strings.ToLower(v) {
	case "1", yes, "on", "true":
		return true
	}
	return false
}
