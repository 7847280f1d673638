package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/VladKovDev/cryptocart/internal/gateway"
	"github.com/VladKovDev/cryptocart/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type checkoutHandler struct {
	registry       *gateway.Registry
	orders         order.Store
	paymentMethods []string
	logger         logger.Logger
}

type paymentRequest struct {
	Gateway string `form:"payment_method" json:"payment_method" binding:"required"`
	Key     string `form:"key" json:"key" binding:"required"`
}

// paymentMethodsList returns the shop's methods with enabled gateways appended, and
// the gateways a customer can pick right now.
func (h *checkoutHandler) paymentMethodsList(c *gin.Context) {
	ctx := c.Request.Context()

	methods, err := h.registry.AddPaymentGateways(ctx, append([]string(nil), h.paymentMethods...))
	if err != nil {
		h.logger.Error("failed to filter payment gateways", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payment methods"})
		return
	}

	available, err := h.registry.Available(ctx)
	if err != nil {
		h.logger.Error("failed to list available gateways", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payment methods"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_methods": methods, "gateways": available})
}

func (h *checkoutHandler) processPayment(c *gin.Context) {
	ctx := c.Request.Context()

	var req paymentRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	o, ok := h.loadOrder(c, req.Key)
	if !ok {
		return
	}

	g, ok := h.availableGateway(c, req.Gateway)
	if !ok {
		return
	}

	result, err := g.ProcessPayment(ctx, o.ID)
	if err != nil {
		h.logger.Error("failed to process payment", zap.Int64("order_id", o.ID), zap.String("gateway", g.ID()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"result": "failure"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *checkoutHandler) receipt(c *gin.Context) {
	if _, ok := h.loadOrder(c, c.Query("key")); !ok {
		return
	}

	g, ok := h.availableGateway(c, c.Query("payment_method"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": g.ReceiptMessage()})
}

func (h *checkoutHandler) loadOrder(c *gin.Context, key string) (*order.Order, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return nil, false
	}

	o, err := h.orders.GetByID(c.Request.Context(), id)
	if errors.Is(err, order.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to load order", zap.Int64("order_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return nil, false
	}

	// Unknown and mismatched keys look the same to the caller.
	if key == "" || key != o.Key {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return nil, false
	}
	return o, true
}

func (h *checkoutHandler) availableGateway(c *gin.Context, id string) (gateway.Gateway, bool) {
	ctx := c.Request.Context()

	available, err := h.registry.Available(ctx)
	if err != nil {
		h.logger.Error("failed to list available gateways", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payment methods"})
		return nil, false
	}

	for _, m := range available {
		if m.ID != id {
			continue
		}
		g, err := h.registry.Get(id)
		if err != nil {
			break
		}
		return g, true
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "payment method not available"})
	return nil, false
}
