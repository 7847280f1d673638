package gateway

import (
	"context"
	"errors"
	"slices"
	"testing"
)

type fakeGateway struct {
	id, name  string
	available bool
}

func (f *fakeGateway) ID() string { return f.id }
func (f *fakeGateway) Name() string { return f.name }
func (f *fakeGateway) MethodTitle() string { return f.name + " title" }
func (f *fakeGateway) Title(context.Context) string { return f.name + " title" }
func (f *fakeGateway) FormFields() []FormField { return nil }
func (f *fakeGateway) IsAvailable(context.Context) bool { return f.available }
func (f *fakeGateway) ReceiptMessage() string { return "" }
func (f *fakeGateway) ProcessPayment(context.Context, int64) (*PaymentResult, error) {
	return &PaymentResult{Result: "success"}, nil
}
func (f *fakeGateway) Settings(context.Context) (map[string]string, error) { return nil, nil }
func (f *fakeGateway) UpdateSettings(context.Context, map[string]string) error {
	return nil
}

type staticChecker struct {
	enabled []string
	err     error
}

func (s staticChecker) IsGatewayEnabled(_ context.Context, name string) (bool, error) {
	return slices.Contains(s.enabled, name), s.err
}

func TestRegistry_AddPaymentGateways(t *testing.T) {
	tests := []struct {
		name    string
		enabled []string
		want    []string
	}{
		{name: "none enabled", enabled: nil, want: []string{"bacs"}},
		{name: "coinpayment enabled", enabled: []string{"coinpayment"}, want: []string{"bacs", "wprobo_ccp_coinpayments"}},
		{name: "unknown name ignored", enabled: []string{"paypal"}, want: []string{"bacs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			r.Register(&fakeGateway{id: "wprobo_ccp_coinpayments", name: "coinpayment", available: true})
			r.SetEnabledChecker(staticChecker{enabled: tt.enabled})

			got, err := r.AddPaymentGateways(context.Background(), []string{"bacs"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_AvailableSkipsUnavailable(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeGateway{id: "a", name: "a", available: true})
	r.Register(&fakeGateway{id: "b", name: "b", available: false})
	r.SetEnabledChecker(staticChecker{enabled: []string{"a", "b"}})

	got, err := r.Available(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" || got[0].Title != "a title" {
		t.Errorf("unexpected methods %+v", got)
	}
}

func TestRegistry_NoCheckerMeansNothingEnabled(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeGateway{id: "a", name: "a", available: true})

	got, err := r.Available(context.Background())
	if err != nil || len(got) != 0 {
		t.Errorf("Available() = %v, %v; want empty", got, err)
	}
}

func TestRegistry_CheckerError(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeGateway{id: "a", name: "a"})
	r.SetEnabledChecker(staticChecker{err: errors.New("db down")})

	if _, err := r.AddPaymentGateways(context.Background(), nil); err == nil {
		t.Error("expected checker error to propagate")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	g := &fakeGateway{id: "wprobo_ccp_coinpayments", name: "coinpayment"}
	r.Register(g)
	r.Register(g)

	if len(r.Registered()) != 1 {
		t.Fatalf("duplicate registration must be ignored")
	}
	if _, err := r.Get("wprobo_ccp_coinpayments"); err != nil {
		t.Errorf("Get: %v", err)
	}
	if _, err := r.GetByName("coinpayment"); err != nil {
		t.Errorf("GetByName: %v", err)
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrUnknownGateway) {
		t.Errorf("expected ErrUnknownGateway, got %v", err)
	}
}
