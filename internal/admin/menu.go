// Package admin is the operator-facing settings surface: the list of enabled
// crypto gateways and each gateway's own configuration form.
package admin

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/VladKovDev/cryptocart/internal/domain/option"
	"github.com/VladKovDev/cryptocart/internal/gateway"
	"github.com/VladKovDev/cryptocart/pkg/logger"
	"go.uber.org/zap"
)

// Menu owns the enabled-gateways record. It is the registry's EnabledChecker.
type Menu struct {
	options       option.Store
	registry      *gateway.Registry
	logger        logger.Logger
	commerceReady bool
	now           func() time.Time
}

// NewMenu builds the menu. commerceReady is false when the order store could
// not be reached, in which case only the blocking notice is shown.
func NewMenu(options option.Store, registry *gateway.Registry, log logger.Logger, commerceReady bool) *Menu {
	return &Menu{
		options:       options,
		registry:      registry,
		logger:        log.With(zap.String("component", "admin_menu")),
		commerceReady: commerceReady,
		now:           time.Now,
	}
}

var _ gateway.EnabledChecker = (*Menu)(nil)

func (m *Menu) CommerceReady() bool {
	return m.commerceReady
}

// Notices are shown on every admin page.
func (m *Menu) Notices() []Notice {
	if !m.commerceReady {
		return []Notice{errorNotice(MsgCommerceMissing)}
	}
	return nil
}

func (m *Menu) EnabledGateways(ctx context.Context) (option.EnabledGateways, error) {
	return option.LoadEnabledGateways(ctx, m.options)
}

func (m *Menu) IsGatewayEnabled(ctx context.Context, name string) (bool, error) {
	rec, err := m.EnabledGateways(ctx)
	if err != nil {
		return false, err
	}
	return rec.Contains(name), nil
}

// SaveGateways replaces the enabled list. Unknown names are dropped. An
// unchanged record counts as a failed save, the same as a store error.
func (m *Menu) SaveGateways(ctx context.Context, names []string) Notice {
	gateways := m.sanitize(names)
	rec := option.NewEnabledGateways(gateways, m.now())

	changed, err := option.Save(ctx, m.options, option.EnabledGatewaysName, rec)
	if err != nil {
		m.logger.Error("failed to save enabled gateways", zap.Error(err))
		return warningNotice(MsgSaveFailed)
	}
	if !changed {
		return warningNotice(MsgSaveFailed)
	}

	m.logger.Info("enabled gateways saved", zap.Strings("gateways", gateways))
	return successNotice(MsgSaved)
}

// SetGatewayEnabled toggles a single gateway in the record.
func (m *Menu) SetGatewayEnabled(ctx context.Context, name string, enabled bool) error {
	if _, err := m.registry.GetByName(name); err != nil {
		return err
	}

	rec, err := m.EnabledGateways(ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled gateways: %w", err)
	}

	names := slices.DeleteFunc(slices.Clone(rec.Gateways), func(n string) bool { return n == name })
	if enabled {
		names = append(names, name)
	}

	notice := m.SaveGateways(ctx, names)
	if notice.Type != NoticeSuccess && !slices.Equal(names, rec.Gateways) {
		return fmt.Errorf("%s", notice.Message)
	}
	return nil
}

func (m *Menu) sanitize(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		if _, err := m.registry.GetByName(n); err != nil {
			m.logger.Warn("ignoring unknown gateway", zap.String("gateway", n))
			continue
		}
		out = append(out, n)
	}
	return out
}
