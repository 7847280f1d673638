package coinpayments

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"go.uber.org/zap"
)

// Action is the order transition chosen for an accepted callback.
type Action int

const (
	ActionComplete Action = iota + 1
	ActionCancel
	ActionPending
)

func (a Action) String() string {
	switch a {
	case ActionComplete:
		return "complete"
	case ActionCancel:
		return "cancel"
	case ActionPending:
		return "pending"
	}
	return "unknown"
}

type Decision struct {
	Action Action
	Status order.Status
	Note   string
}

// DecideStatus maps provider status codes onto an order transition. Codes of
// 100 and above, and 2, mean paid. With zero-confirm payments allowed, a
// non-negative status that has confirmations and covers amount2 also counts.
// Negative codes are cancellations; everything else stays pending.
func DecideStatus(cb *Callback, allowZeroConfirm bool) Decision {
	switch {
	case cb.Status >= 100 || cb.Status == 2 || (allowZeroConfirm && zeroConfirmPaid(cb)):
		return Decision{Action: ActionComplete, Status: order.StatusCompleted}
	case cb.Status < 0:
		return Decision{
			Action: ActionCancel,
			Status: order.StatusCancelled,
			Note:   "CoinPayments.net Payment cancelled/timed out: " + cb.StatusText,
		}
	default:
		return Decision{
			Action: ActionPending,
			Status: order.StatusPending,
			Note:   "CoinPayments.net Payment pending: " + cb.StatusText,
		}
	}
}

func zeroConfirmPaid(cb *Callback) bool {
	return cb.Status >= 0 &&
		cb.ReceivedConfirms > 0 &&
		cb.ReceivedAmount.Valid && cb.Amount2.Valid &&
		cb.ReceivedAmount.Decimal.GreaterThanOrEqual(cb.Amount2.Decimal)
}

// SuccessfulRequest applies an accepted callback to its order. Orders that are
// already completed or flagged paid only receive the status note.
func (g *Gateway) SuccessfulRequest(ctx context.Context, v *Validated) IPNResponse {
	cb := v.Callback

	unlock := g.locks.lock(v.Order.ID)
	defer unlock()

	// Re-read under the lock so concurrent callbacks see each other's writes.
	o, err := g.reresolve(ctx, cb, v.Settings)
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			g.logger.Error("failed to reload order", zap.String("invoice", cb.Invoice), zap.Error(err))
		}
		return IPNResponse{
			Status: http.StatusOK,
			Body:   "IPN Error: " + fmt.Sprintf(ReasonOrderNotFound, cb.Invoice),
		}
	}

	log := g.logger.With(zap.Int64("order_id", o.ID), zap.String("invoice", cb.Invoice))
	log.Info(fmt.Sprintf("Order #%d payment status: %s", o.ID, cb.StatusText), zap.Int("status", cb.Status))
	_ = g.debug.Add(fmt.Sprintf("Order #%d payment status: %s", o.ID, cb.StatusText))

	if err := g.orders.AddNote(ctx, o.ID, "CoinPayments.net Payment Status: "+cb.StatusText); err != nil {
		log.Error("failed to add status note", zap.Error(err))
		return failureResponse()
	}

	if o.IsPaid() {
		log.Info("order already paid, skipping status update")
		return okResponse()
	}

	if err := g.applyDecision(ctx, o, cb, v.Settings); err != nil {
		log.Error("failed to update order from callback", zap.Error(err))
		return failureResponse()
	}
	return okResponse()
}

func (g *Gateway) reresolve(ctx context.Context, cb *Callback, s Settings) (*order.Order, error) {
	if cb.Invoice == "" || cb.Custom == "" {
		return nil, ErrOrderNotFound
	}
	c, err := ParseCustom(cb.Custom, cb.Invoice, s.InvoicePrefix)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return ResolveOrder(ctx, g.orders, c)
}

func (g *Gateway) applyDecision(ctx context.Context, o *order.Order, cb *Callback, s Settings) error {
	for _, m := range []struct{ key, value string }{
		{order.MetaTransactionID, cb.TxnID},
		{order.MetaPayerFirstName, cb.FirstName},
		{order.MetaPayerLastName, cb.LastName},
		{order.MetaPayerEmail, cb.Email},
	} {
		if m.value == "" {
			continue
		}
		if err := g.orders.UpdateMeta(ctx, o.ID, m.key, m.value); err != nil {
			return err
		}
	}

	d := DecideStatus(cb, s.AllowZeroConfirm)
	g.logger.Info("applying callback decision",
		zap.Int64("order_id", o.ID),
		zap.Stringer("action", d.Action),
	)

	switch d.Action {
	case ActionComplete:
		if err := g.orders.UpdateMeta(ctx, o.ID, order.MetaPaymentComplete, "Yes"); err != nil {
			return err
		}
		return g.orders.PaymentComplete(ctx, o.ID)
	default:
		return g.orders.UpdateStatus(ctx, o.ID, d.Status, d.Note)
	}
}
