package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VladKovDev/cryptocart/internal/domain/option"
	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/shopspring/decimal"
)

func TestOrderStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewOrderStore()

	o := &order.Order{Key: "wc_order_abc", Currency: "USD", Total: decimal.RequireFromString("10")}
	if err := s.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.ID != 1 {
		t.Fatalf("expected id 1, got %d", o.ID)
	}

	id, err := s.GetIDByKey(ctx, "wc_order_abc")
	if err != nil || id != 1 {
		t.Fatalf("GetIDByKey = %d, %v", id, err)
	}

	if err := s.UpdateStatus(ctx, 1, order.StatusOnHold, "held"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := s.UpdateMeta(ctx, 1, order.MetaTransactionID, "TX1"); err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}
	if err := s.PaymentComplete(ctx, 1); err != nil {
		t.Fatalf("PaymentComplete: %v", err)
	}

	got, err := s.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != order.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.MetaValue(order.MetaTransactionID) != "TX1" {
		t.Errorf("meta not stored: %v", got.Meta)
	}

	got.Meta[order.MetaTransactionID] = "mutated"
	again, _ := s.GetByID(ctx, 1)
	if again.MetaValue(order.MetaTransactionID) != "TX1" {
		t.Error("GetByID must return a copy")
	}

	notes, err := s.Notes(ctx, 1)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(notes) != 1 || notes[0].Content != "held" {
		t.Errorf("unexpected notes %+v", notes)
	}
}

func TestOrderStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewOrderStore()

	if _, err := s.GetByID(ctx, 7); !errors.Is(err, order.ErrNotFound) {
		t.Errorf("GetByID: %v", err)
	}
	if _, err := s.GetIDByKey(ctx, "nope"); !errors.Is(err, order.ErrNotFound) {
		t.Errorf("GetIDByKey: %v", err)
	}
	if err := s.AddNote(ctx, 7, "x"); !errors.Is(err, order.ErrNotFound) {
		t.Errorf("AddNote: %v", err)
	}
}

func TestOptionStore_EnabledGateways(t *testing.T) {
	ctx := context.Background()
	s := NewOptionStore()

	rec, err := option.LoadEnabledGateways(ctx, s)
	if err != nil {
		t.Fatalf("LoadEnabledGateways: %v", err)
	}
	if rec.Contains("coinpayment") {
		t.Fatal("empty record must not contain gateways")
	}

	now := time.Unix(1700000000, 0)
	changed, err := option.Save(ctx, s, option.EnabledGatewaysName, option.NewEnabledGateways([]string{"coinpayment"}, now))
	if err != nil || !changed {
		t.Fatalf("Save = %v, %v", changed, err)
	}

	changed, err = option.Save(ctx, s, option.EnabledGatewaysName, option.NewEnabledGateways([]string{"coinpayment"}, now))
	if err != nil || changed {
		t.Fatalf("identical Save should report unchanged, got %v, %v", changed, err)
	}

	rec, err = option.LoadEnabledGateways(ctx, s)
	if err != nil {
		t.Fatalf("LoadEnabledGateways: %v", err)
	}
	if !rec.Contains("coinpayment") || rec.LastUpdated != now.Unix() {
		t.Errorf("unexpected record %+v", rec)
	}

	if err := s.Delete(ctx, option.EnabledGatewaysName); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, option.EnabledGatewaysName); !errors.Is(err, option.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
