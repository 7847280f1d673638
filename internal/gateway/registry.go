package gateway

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Method is one entry of the checkout payment-method catalog.
type Method struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Registry struct {
	mu       sync.RWMutex
	gateways []Gateway
	byID     map[string]Gateway
	enabled  EnabledChecker
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Gateway),
	}
}

func (r *Registry) Register(g Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[g.ID()]; exists {
		return
	}
	r.gateways = append(r.gateways, g)
	r.byID[g.ID()] = g
}

// SetEnabledChecker wires the source of the enabled-gateways record. Without
// one every registered gateway is considered disabled.
func (r *Registry) SetEnabledChecker(c EnabledChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = c
}

func (r *Registry) Get(id string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGateway, id)
	}
	return g, nil
}

// GetByName looks a gateway up by its short name.
func (r *Registry) GetByName(name string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.gateways {
		if g.Name() == name {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownGateway, name)
}

// Registered returns all gateways in registration order.
func (r *Registry) Registered() []Gateway {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.gateways)
}

// AddPaymentGateways appends the ids of enabled gateways to methods, leaving
// the existing entries in order.
func (r *Registry) AddPaymentGateways(ctx context.Context, methods []string) ([]string, error) {
	enabled, err := r.enabledGateways(ctx)
	if err != nil {
		return methods, err
	}
	for _, g := range enabled {
		methods = append(methods, g.ID())
	}
	return methods, nil
}

// Available returns the enabled gateways whose own availability check passes.
func (r *Registry) Available(ctx context.Context) ([]Method, error) {
	enabled, err := r.enabledGateways(ctx)
	if err != nil {
		return nil, err
	}

	methods := make([]Method, 0, len(enabled))
	for _, g := range enabled {
		if !g.IsAvailable(ctx) {
			continue
		}
		methods = append(methods, Method{ID: g.ID(), Title: g.Title(ctx)})
	}
	return methods, nil
}

func (r *Registry) enabledGateways(ctx context.Context) ([]Gateway, error) {
	r.mu.RLock()
	checker := r.enabled
	gateways := slices.Clone(r.gateways)
	r.mu.RUnlock()

	if checker == nil {
		return nil, nil
	}

	out := make([]Gateway, 0, len(gateways))
	for _, g := range gateways {
		ok, err := checker.IsGatewayEnabled(ctx, g.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to check gateway %s: %w", g.Name(), err)
		}
		if ok {
			out = append(out, g)
		}
	}
	return out, nil
}
