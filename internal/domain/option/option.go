package option

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Option names owned by the plugin.
const (
	EnabledGatewaysName     = "wprobo_ccp"
	CoinPaymentsSettingName = "woocommerce_wprobo_ccp_coinpayments_settings"
)

var ErrNotFound = errors.New("option not found")

// Store persists named JSON values. Set reports whether the stored value changed.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, value []byte) (bool, error)
	Delete(ctx context.Context, name string) error
}

// EnabledGateways is the admin-selected list of gateway short names.
type EnabledGateways struct {
	Gateways    []string `json:"gateways"`
	LastUpdated int64    `json:"last_updated"`
}

func (e EnabledGateways) Contains(name string) bool {
	return slices.Contains(e.Gateways, name)
}

func NewEnabledGateways(gateways []string, now time.Time) EnabledGateways {
	if gateways == nil {
		gateways = []string{}
	}
	return EnabledGateways{Gateways: gateways, LastUpdated: now.Unix()}
}

// Load reads option name into T. A missing option yields the zero value and
// ErrNotFound.
func Load[T any](ctx context.Context, s Store, name string) (T, error) {
	var data T
	raw, err := s.Get(ctx, name)
	if err != nil {
		return data, err
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("unmarshal option %q: %w", name, err)
	}
	return data, nil
}

func Save[T any](ctx context.Context, s Store, name string, data T) (bool, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("marshal option %q: %w", name, err)
	}

	changed, err := s.Set(ctx, name, raw)
	if err != nil {
		return false, fmt.Errorf("write option %q: %w", name, err)
	}
	return changed, nil
}

// LoadEnabledGateways returns the record, or an empty one when never saved.
func LoadEnabledGateways(ctx context.Context, s Store) (EnabledGateways, error) {
	rec, err := Load[EnabledGateways](ctx, s, EnabledGatewaysName)
	if errors.Is(err, ErrNotFound) {
		return EnabledGateways{Gateways: []string{}}, nil
	}
	return rec, err
}
