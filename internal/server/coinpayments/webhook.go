package coinpayments

import (
	"context"
	"io"
	"net/http"

	"github.com/VladKovDev/cryptocart/internal/gateway/coinpayments"
	"github.com/VladKovDev/cryptocart/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignatureHeader carries the hex HMAC-SHA512 of the raw body.
const SignatureHeader = "HMAC"

const maxBodyBytes = 1 << 20

// IPNProcessor validates and applies a callback.
type IPNProcessor interface {
	HandleIPN(ctx context.Context, req coinpayments.IPNRequest) coinpayments.IPNResponse
}

// Handler handles CoinPayments IPN requests
type Handler struct {
	processor IPNProcessor
	logger    logger.Logger
}

func NewHandler(processor IPNProcessor, log logger.Logger) *Handler {
	return &Handler{
		processor: processor,
		logger:    log.With(zap.String("handler", "coinpayments_ipn")),
	}
}

func (h *Handler) Handle(c *gin.Context) {
	// The body is read once: the signature covers the exact bytes received.
	bodyBytes, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("failed to read IPN body", zap.Error(err))
		c.String(http.StatusBadRequest, "Error reading POST data")
		return
	}

	h.logger.Debug("IPN received",
		zap.String("remote_addr", c.ClientIP()),
		zap.String("content_type", c.ContentType()),
		zap.Int("body_bytes", len(bodyBytes)),
		zap.Bool("signed", c.GetHeader(SignatureHeader) != ""),
	)

	resp := h.processor.HandleIPN(c.Request.Context(), coinpayments.IPNRequest{
		Signature: c.GetHeader(SignatureHeader),
		Body:      bodyBytes,
	})

	h.logger.Info("IPN handled", zap.Int("status", resp.Status))
	c.String(resp.Status, resp.Body)
}
