package coinpayments

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const redirectNote = "Customer is being redirected to CoinPayments..."

var phoneStripper = strings.NewReplacer("(", "", ")", "", "-", "", " ", "", ".", "")

// NormalizePhone strips punctuation from US and CA phone numbers.
func NormalizePhone(country, phone string) string {
	if country != "US" && country != "CA" {
		return phone
	}
	return phoneStripper.Replace(phone)
}

// Amounts is the amount/shipping/tax split sent to the provider.
type Amounts struct {
	Amount   decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
}

// SplitAmounts decomposes the order total. simple_total sends the whole total
// as the amount; tax-inclusive prices fold shipping tax into shipping; the
// default sends net amount, shipping and tax separately.
func SplitAmounts(o *order.Order, s Settings, store StoreSettings) Amounts {
	switch {
	case s.SimpleTotal:
		return Amounts{Amount: o.Total, Shipping: decimal.Zero, Tax: decimal.Zero}
	case store.TaxEnabled && store.PricesIncludeTax:
		return Amounts{
			Amount:   o.Total.Sub(o.ShippingTotal).Sub(o.ShippingTax),
			Shipping: o.ShippingTotal.Add(o.ShippingTax),
			Tax:      decimal.Zero,
		}
	default:
		return Amounts{
			Amount:   o.Total.Sub(o.ShippingTotal).Sub(o.TotalTax),
			Shipping: o.ShippingTotal,
			Tax:      o.TotalTax,
		}
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(8)
}

// Args builds the redirect query fields for o.
func (g *Gateway) Args(ctx context.Context, o *order.Order) (url.Values, error) {
	s, err := g.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	return g.buildArgs(o, s), nil
}

func (g *Gateway) buildArgs(o *order.Order, s Settings) url.Values {
	billing := o.Billing
	billing.Phone = NormalizePhone(billing.Country, billing.Phone)

	args := url.Values{}
	args.Set("cmd", "_pay_auto")
	args.Set("merchant", s.MerchantID)
	args.Set("allow_extra", "0")
	args.Set("currency", o.Currency)
	args.Set("reset", "1")
	args.Set("success_url", g.ReturnURL(o))
	args.Set("cancel_url", g.CancelURL(o))
	args.Set("invoice", s.InvoicePrefix+o.OrderNumber())
	args.Set("custom", EncodeCustom(o.ID, o.Key))
	args.Set("ipn_url", g.IPNURL())
	args.Set("first_name", billing.FirstName)
	args.Set("last_name", billing.LastName)
	args.Set("email", billing.Email)

	if s.SendShipping {
		args.Set("want_shipping", "1")
		args.Set("company", billing.Company)
		args.Set("address1", billing.Address1)
		args.Set("address2", billing.Address2)
		args.Set("city", billing.City)
		args.Set("state", billing.State)
		args.Set("zip", billing.Postcode)
		args.Set("country", billing.Country)
		args.Set("phone", billing.Phone)
	} else {
		args.Set("want_shipping", "0")
	}

	args.Set("item_name", fmt.Sprintf("Order %s", o.OrderNumber()))
	args.Set("quantity", "1")

	amounts := SplitAmounts(o, s, g.store)
	args.Set("amountf", money(amounts.Amount))
	args.Set("shippingf", money(amounts.Shipping))
	args.Set("taxf", money(amounts.Tax))

	for _, f := range g.argsFilters {
		f(args, o)
	}
	return args
}

// RedirectURL moves an unpaid order to pending and returns the provider
// checkout URL carrying its fields.
func (g *Gateway) RedirectURL(ctx context.Context, o *order.Order) (string, error) {
	s, err := g.LoadSettings(ctx)
	if err != nil {
		return "", err
	}

	if !o.IsPaid() {
		if err := g.orders.UpdateStatus(ctx, o.ID, order.StatusPending, redirectNote); err != nil {
			return "", fmt.Errorf("failed to mark order %d pending: %w", o.ID, err)
		}
		o.Status = order.StatusPending
	}

	args := g.buildArgs(o, s)
	g.logger.Debug("built checkout redirect",
		zap.Int64("order_id", o.ID),
		zap.String("invoice", args.Get("invoice")),
	)
	return g.checkoutURL + "?" + args.Encode(), nil
}
