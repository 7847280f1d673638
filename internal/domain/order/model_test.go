package order

import "testing"

func TestOrder_IsPaid(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		want  bool
	}{
		{name: "pending", order: Order{Status: StatusPending}, want: false},
		{name: "completed", order: Order{Status: StatusCompleted}, want: true},
		{
			name:  "flagged",
			order: Order{Status: StatusOnHold, Meta: map[string]string{MetaPaymentComplete: "Yes"}},
			want:  true,
		},
		{
			name:  "flag other value",
			order: Order{Status: StatusPending, Meta: map[string]string{MetaPaymentComplete: "No"}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.order.IsPaid(); got != tt.want {
				t.Errorf("IsPaid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrder_OrderNumber(t *testing.T) {
	o := Order{ID: 42}
	if got := o.OrderNumber(); got != "42" {
		t.Errorf("OrderNumber() = %q, want 42", got)
	}
	o.Number = "A-42"
	if got := o.OrderNumber(); got != "A-42" {
		t.Errorf("OrderNumber() = %q, want A-42", got)
	}
}

func TestOrder_MarkPaymentComplete(t *testing.T) {
	var o Order
	o.MarkPaymentComplete()
	if !o.IsPaid() {
		t.Error("expected order to be paid after MarkPaymentComplete")
	}
}
