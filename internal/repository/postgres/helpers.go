package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Timestamp conversion helpers

// pgtypeToTime converts pgtype.Timestamptz to time.Time.
func pgtypeToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}

// Numeric helpers. NUMERIC columns are selected as ::text and parsed with
// decimal so no precision is lost through float64.

func textToDecimal(t pgtype.Text) (decimal.Decimal, error) {
	if !t.Valid || t.String == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(t.String)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric %q: %w", t.String, err)
	}
	return d, nil
}

// JSON helpers

func billingToJSON(a order.Address) ([]byte, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal billing: %w", err)
	}
	return raw, nil
}

func jsonToBilling(raw []byte) (order.Address, error) {
	var a order.Address
	if len(raw) == 0 {
		return a, nil
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return a, fmt.Errorf("unmarshal billing: %w", err)
	}
	return a, nil
}

// notFound maps pgx.ErrNoRows onto the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}
