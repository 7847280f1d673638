package coinpayments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"go.uber.org/zap"
)

const failureBody = "CoinPayments.net IPN Request Failure"

// IPNResponse is what the webhook writes back to the provider.
type IPNResponse struct {
	Status int
	Body   string
}

func okResponse() IPNResponse {
	return IPNResponse{Status: http.StatusOK, Body: "IPN OK"}
}

func failureResponse() IPNResponse {
	return IPNResponse{Status: http.StatusInternalServerError, Body: failureBody}
}

// HandleIPN runs a callback through validation and, when accepted, applies it.
// Rejected callbacks are reported and answered with a failure response.
func (g *Gateway) HandleIPN(ctx context.Context, req IPNRequest) IPNResponse {
	values, _ := url.ParseQuery(string(req.Body))
	if len(values) == 0 {
		g.logger.Warn("empty IPN request")
		return failureResponse()
	}

	s, err := g.LoadSettings(ctx)
	if err != nil {
		g.logger.Error("failed to load settings for IPN", zap.Error(err))
		return failureResponse()
	}

	v, err := g.validate(ctx, req, values, s)
	if err != nil {
		var rej *RejectError
		if errors.As(err, &rej) {
			g.reject(ctx, rej, parseFields(req.Body), s)
		} else {
			g.logger.Error("IPN validation failed", zap.Error(err))
		}
		return failureResponse()
	}

	return g.SuccessfulRequest(ctx, v)
}

// reject records a failed callback: debug log, order hold, debug email and
// operator notification. Delivery failures are logged and otherwise ignored.
func (g *Gateway) reject(ctx context.Context, rej *RejectError, fields []Field, s Settings) {
	report := NewReport(rej.Reason, fields, g.now())
	log := g.logger.With(zap.String("report_id", report.ID.String()), zap.String("reason", rej.Reason))
	log.Warn("IPN rejected")

	if err := g.debug.Add("IPN Error: " + rej.Reason); err != nil {
		log.Error("failed to write debug log", zap.Error(err))
	}
	if err := g.debug.Add(report.String()); err != nil {
		log.Error("failed to write debug log", zap.Error(err))
	}

	if rej.Order != nil {
		note := fmt.Sprintf("CoinPayments.net IPN Error: %s", rej.Reason)
		if err := g.orders.UpdateStatus(ctx, rej.Order.ID, order.StatusOnHold, note); err != nil {
			log.Error("failed to put order on hold", zap.Int64("order_id", rej.Order.ID), zap.Error(err))
		}
	}

	if s.DebugEmail != "" && g.mailer != nil {
		if err := g.mailer.Send(ctx, s.DebugEmail, reportSubject, report.String()); err != nil {
			log.Error("failed to email IPN report", zap.Error(err))
		}
	}

	for _, n := range g.notifiers {
		text := fmt.Sprintf("%s\nReport: %s\n\n%s", reportSubject, report.ID, report.String())
		if err := n.Notify(ctx, text); err != nil {
			log.Error("failed to send IPN report notification", zap.Error(err))
		}
	}
}
