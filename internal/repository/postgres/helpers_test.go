package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func TestTextToDecimal(t *testing.T) {
	tests := []struct {
		name    string
		in      pgtype.Text
		want    string
		wantErr bool
	}{
		{name: "null", in: pgtype.Text{}, want: "0"},
		{name: "numeric", in: pgtype.Text{String: "110.00000000", Valid: true}, want: "110"},
		{name: "garbage", in: pgtype.Text{String: "abc", Valid: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := textToDecimal(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBillingJSON(t *testing.T) {
	in := order.Address{FirstName: "Ada", Country: "US", Phone: "555"}
	raw, err := billingToJSON(in)
	if err != nil {
		t.Fatalf("billingToJSON: %v", err)
	}
	out, err := jsonToBilling(raw)
	if err != nil {
		t.Fatalf("jsonToBilling: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}

	empty, err := jsonToBilling(nil)
	if err != nil || empty != (order.Address{}) {
		t.Errorf("empty billing = %+v, %v", empty, err)
	}
}

func TestNotFound(t *testing.T) {
	wrapped := fmt.Errorf("scan: %w", pgx.ErrNoRows)
	if err := notFound(wrapped, order.ErrNotFound); !errors.Is(err, order.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	other := errors.New("boom")
	if err := notFound(other, order.ErrNotFound); err != other {
		t.Errorf("unrelated errors must pass through, got %v", err)
	}
}
