// Package coinpayments implements the CoinPayments.net gateway: the outbound
// checkout redirect and the inbound IPN validation and order reconciliation.
package coinpayments

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/VladKovDev/cryptocart/internal/debuglog"
	"github.com/VladKovDev/cryptocart/internal/domain/option"
	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/VladKovDev/cryptocart/internal/gateway"
	"github.com/VladKovDev/cryptocart/pkg/logger"
	"go.uber.org/zap"
)

const (
	GatewayID          = "wprobo_ccp_coinpayments"
	GatewayName        = "coinpayment"
	GatewayMethodTitle = "CoinPayments.net - CryptoCart Lite"
	// APIName is the wc-api query value the IPN webhook listens on.
	APIName            = "wprobo_ccp_gateway"
	DefaultCheckoutURL = "https://www.coinpayments.net/index.php"

	receiptMessage = "Thank you for your order, please click the button below to pay with CoinPayments.net."
)

// Cipher seals the IPN secret at rest. *crypto.KeyStore implements it.
type Cipher interface {
	EncryptString(plain, scope string) (string, error)
	DecryptString(value, scope string) (string, error)
}

// Mailer delivers invalid-IPN reports to the debug email address.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier pushes invalid-IPN reports to an operator channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// StoreSettings are the shop-wide tax flags used for amount decomposition.
type StoreSettings struct {
	TaxEnabled       bool
	PricesIncludeTax bool
}

// ArgsFilter may add or override redirect fields before the URL is built.
type ArgsFilter func(args url.Values, o *order.Order)

type Gateway struct {
	options     option.Store
	orders      order.Store
	logger      logger.Logger
	debug       *debuglog.Logger
	cipher      Cipher
	mailer      Mailer
	notifiers   []Notifier
	store       StoreSettings
	siteURL     string
	checkoutURL string
	argsFilters []ArgsFilter
	locks       *orderLocks
	now         func() time.Time
}

type Option func(*Gateway)

func WithCipher(c Cipher) Option {
	return func(g *Gateway) { g.cipher = c }
}

func WithMailer(m Mailer) Option {
	return func(g *Gateway) { g.mailer = m }
}

func WithNotifier(n Notifier) Option {
	return func(g *Gateway) { g.notifiers = append(g.notifiers, n) }
}

func WithDebugLog(l *debuglog.Logger) Option {
	return func(g *Gateway) { g.debug = l }
}

func WithStoreSettings(s StoreSettings) Option {
	return func(g *Gateway) { g.store = s }
}

func WithSiteURL(u string) Option {
	return func(g *Gateway) { g.siteURL = u }
}

func WithCheckoutURL(u string) Option {
	return func(g *Gateway) { g.checkoutURL = u }
}

func WithArgsFilter(f ArgsFilter) Option {
	return func(g *Gateway) { g.argsFilters = append(g.argsFilters, f) }
}

func New(options option.Store, orders order.Store, log logger.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		options:     options,
		orders:      orders,
		logger:      log.With(zap.String("gateway", GatewayID)),
		debug:       debuglog.Discard(),
		siteURL:     "http://localhost",
		checkoutURL: DefaultCheckoutURL,
		locks:       newOrderLocks(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ gateway.Gateway = (*Gateway)(nil)

func (g *Gateway) ID() string          { return GatewayID }
func (g *Gateway) Name() string        { return GatewayName }
func (g *Gateway) MethodTitle() string { return GatewayMethodTitle }

func (g *Gateway) FormFields() []gateway.FormField {
	return slices.Clone(formFields)
}

func (g *Gateway) ReceiptMessage() string {
	return receiptMessage
}

// IsAvailable reports whether the gateway is switched on in its own settings.
func (g *Gateway) IsAvailable(ctx context.Context) bool {
	s, err := g.LoadSettings(ctx)
	if err != nil {
		g.logger.Error("failed to load settings for availability check", zap.Error(err))
		return false
	}
	return s.Enabled
}

// Title is the checkout-facing title from settings.
func (g *Gateway) Title(ctx context.Context) string {
	s, err := g.LoadSettings(ctx)
	if err != nil {
		return DefaultSettings().Title
	}
	return s.Title
}

// IPNURL is where the provider posts callbacks.
func (g *Gateway) IPNURL() string {
	return g.siteURL + "/?" + url.Values{"wc-api": {APIName}}.Encode()
}

// ReturnURL is the order-received page the customer lands on after paying.
func (g *Gateway) ReturnURL(o *order.Order) string {
	q := url.Values{"key": {o.Key}}
	return fmt.Sprintf("%s/checkout/order-received/%d/?%s", g.siteURL, o.ID, q.Encode())
}

// CancelURL cancels the order and returns the customer to the cart.
func (g *Gateway) CancelURL(o *order.Order) string {
	q := url.Values{
		"cancel_order": {"true"},
		"order":        {o.Key},
		"order_id":     {strconv.FormatInt(o.ID, 10)},
		"redirect":     {""},
	}
	return g.siteURL + "/cart/?" + q.Encode()
}

func (g *Gateway) ProcessPayment(ctx context.Context, orderID int64) (*gateway.PaymentResult, error) {
	o, err := g.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}

	redirect, err := g.RedirectURL(ctx, o)
	if err != nil {
		return nil, err
	}

	return &gateway.PaymentResult{Result: "success", Redirect: redirect}, nil
}
