package coinpayments

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/VladKovDev/cryptocart/internal/repository/memory"
	"github.com/VladKovDev/cryptocart/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	testMerchant = "M123"
	testSecret   = "ipn-secret"
	testOrderID  = 42
	testOrderKey = "wc_order_abc"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	to, subject, body string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type fakeNotifier struct {
	texts []string
}

func (n *fakeNotifier) Notify(_ context.Context, text string) error {
	n.texts = append(n.texts, text)
	return nil
}

type fixture struct {
	gw      *Gateway
	orders  *memory.OrderStore
	options *memory.OptionStore
	mailer  *fakeMailer
}

func newFixture(t *testing.T, mutate func(*Settings), opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		orders:  memory.NewOrderStore(),
		options: memory.NewOptionStore(),
		mailer:  &fakeMailer{},
	}
	opts = append([]Option{
		WithMailer(f.mailer),
		WithSiteURL("https://shop.example.com"),
	}, opts...)
	f.gw = New(f.options, f.orders, logger.Noop(), opts...)
	f.gw.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	s := DefaultSettings()
	s.MerchantID = testMerchant
	s.IPNSecret = testSecret
	if mutate != nil {
		mutate(&s)
	}
	if err := f.gw.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	o := &order.Order{
		ID:            testOrderID,
		Key:           testOrderKey,
		Currency:      "USD",
		Status:        order.StatusPending,
		Total:         decimal.RequireFromString("110"),
		ShippingTotal: decimal.RequireFromString("10"),
		Billing: order.Address{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Country:   "US",
			Phone:     "(555) 123-4567",
		},
	}
	if err := f.orders.Create(ctx, o); err != nil {
		t.Fatalf("Create order: %v", err)
	}
	return f
}

func (f *fixture) order(t *testing.T) *order.Order {
	t.Helper()
	o, err := f.orders.GetByID(context.Background(), testOrderID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return o
}

func (f *fixture) notes(t *testing.T) []string {
	t.Helper()
	notes, err := f.orders.Notes(context.Background(), testOrderID)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Content
	}
	return out
}

// callbackValues is an accepted callback for the fixture order.
func callbackValues() url.Values {
	return url.Values{
		"ipn_mode":    {"hmac"},
		"ipn_type":    {"button"},
		"merchant":    {testMerchant},
		"invoice":     {"WC-42"},
		"custom":      {`[42,"wc_order_abc"]`},
		"currency1":   {"USD"},
		"amount1":     {"110.00"},
		"status":      {"100"},
		"status_text": {"Complete"},
		"txn_id":      {"CPTX1"},
		"first_name":  {"Ada"},
		"last_name":   {"Lovelace"},
		"email":       {"ada@example.com"},
	}
}

func signed(values url.Values, secret string) IPNRequest {
	body := []byte(values.Encode())
	return IPNRequest{Signature: Sign(body, secret), Body: body}
}
