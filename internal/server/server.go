package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/VladKovDev/cryptocart/internal/admin"
	"github.com/VladKovDev/cryptocart/internal/config"
	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/VladKovDev/cryptocart/internal/gateway"
	gwcoinpayments "github.com/VladKovDev/cryptocart/internal/gateway/coinpayments"
	"github.com/VladKovDev/cryptocart/internal/server/coinpayments"
	"github.com/VladKovDev/cryptocart/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the services the HTTP surface is built from. Orders is nil when
// the shop's order store is unavailable; the IPN and checkout routes are then
// left out.
type Deps struct {
	Logger         logger.Logger
	Registry       *gateway.Registry
	IPN            coinpayments.IPNProcessor
	Orders         order.Store
	PaymentMethods []string
	Admin          *admin.Handler
	AdminAccounts  gin.Accounts
	HealthCheck    func(ctx context.Context) error
}

// NewRouter builds the gin engine with every route.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(d.Logger))

	router.GET("/healthz", healthz(d.HealthCheck))

	if d.Orders != nil && d.IPN != nil {
		ipn := coinpayments.NewHandler(d.IPN, d.Logger)
		router.POST("/", func(c *gin.Context) {
			if c.Query("wc-api") != gwcoinpayments.APIName {
				c.Status(http.StatusNotFound)
				return
			}
			ipn.Handle(c)
		})

		checkout := &checkoutHandler{
			registry:       d.Registry,
			orders:         d.Orders,
			paymentMethods: d.PaymentMethods,
			logger:         d.Logger.With(zap.String("handler", "checkout")),
		}
		group := router.Group("/checkout")
		{
			group.GET("/payment-methods", checkout.paymentMethodsList)
			group.POST("/orders/:id/payment", checkout.processPayment)
			group.GET("/orders/:id/receipt", checkout.receipt)
		}
	}

	if d.Admin != nil {
		d.Admin.Register(router.Group("/admin"), d.AdminAccounts)
	}

	return router
}

func healthz(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

type Server struct {
	server          *http.Server
	logger          logger.Logger
	shutdownTimeout time.Duration
}

func New(cfg config.ServerConfig, handler http.Handler, log logger.Logger) *Server {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Server{server: srv, logger: log, shutdownTimeout: timeout}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	errChan := make(chan error, 1)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
