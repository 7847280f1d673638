package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/VladKovDev/cryptocart/internal/admin"
	"github.com/VladKovDev/cryptocart/internal/config"
	"github.com/VladKovDev/cryptocart/internal/crypto"
	"github.com/VladKovDev/cryptocart/internal/debuglog"
	"github.com/VladKovDev/cryptocart/internal/domain/option"
	"github.com/VladKovDev/cryptocart/internal/domain/order"
	"github.com/VladKovDev/cryptocart/internal/gateway"
	"github.com/VladKovDev/cryptocart/internal/gateway/coinpayments"
	"github.com/VladKovDev/cryptocart/internal/repository/memory"
	"github.com/VladKovDev/cryptocart/internal/repository/postgres"
	"github.com/VladKovDev/cryptocart/internal/server"
	"github.com/VladKovDev/cryptocart/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App holds high-level application dependencies. It is built once at start-up
// and passed explicitly to everything that needs it.
type App struct {
	Config   *config.Config
	Logger   logger.Logger
	DB       *postgres.Pool
	KeyStore *crypto.KeyStore
	Options  option.Store
	// Orders is nil when the shop's order store is unavailable.
	Orders   order.Store
	DebugLog *debuglog.Logger
	Registry *gateway.Registry
	Gateway  *coinpayments.Gateway
	Menu     *admin.Menu
}

// NewApp connects storage and wires the gateway, registry and admin menu.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	if err := a.initStorage(ctx); err != nil {
		return nil, err
	}

	keyStore, err := initEncryptor(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to init encryptor: %w", err)
	}
	a.KeyStore = keyStore

	a.DebugLog = initDebugLog(cfg, log)

	opts := []coinpayments.Option{
		coinpayments.WithDebugLog(a.DebugLog),
		coinpayments.WithSiteURL(cfg.Server.SiteURL),
		coinpayments.WithCheckoutURL(cfg.Gateway.CheckoutURL),
		coinpayments.WithStoreSettings(coinpayments.StoreSettings{
			TaxEnabled:       cfg.Store.TaxEnabled,
			PricesIncludeTax: cfg.Store.PricesIncludeTax,
		}),
	}
	if keyStore != nil {
		opts = append(opts, coinpayments.WithCipher(keyStore))
		log.Info("ipn secret encryption enabled", zap.Int("key_version", keyStore.Current()))
	} else {
		log.Warn("no encryption keys configured, IPN secret is stored in plaintext")
	}
	opts = append(opts, initNotifiers(cfg, log)...)

	a.Gateway = coinpayments.New(a.Options, a.Orders, log, opts...)
	a.Registry = gateway.NewRegistry()
	a.Registry.Register(a.Gateway)

	a.Menu = admin.NewMenu(a.Options, a.Registry, log, a.Orders != nil)
	a.Registry.SetEnabledChecker(a.Menu)

	if a.Orders == nil {
		log.Warn(admin.MsgCommerceMissing)
	}

	return a, nil
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.Config.Storage.Driver {
	case "memory":
		a.Options = memory.NewOptionStore()
		a.Orders = memory.NewOrderStore()
		return nil
	case "postgres":
	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidStorageDriver, a.Config.Storage.Driver)
	}

	pool, err := postgres.NewPool(ctx, &a.Config.Database, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	a.DB = pool

	if err := postgres.Migrate(ctx, pool.Pool, false); err != nil {
		pool.Close()
		return err
	}
	a.Options = postgres.NewOptionRepository(pool.Pool)

	ok, err := postgres.HasOrderTables(ctx, pool.Pool)
	if err != nil {
		pool.Close()
		return err
	}
	if ok {
		a.Orders = postgres.NewOrderRepository(pool.Pool)
	}
	return nil
}

// Router builds the HTTP surface.
func (a *App) Router() *gin.Engine {
	if a.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := server.Deps{
		Logger:         a.Logger,
		Registry:       a.Registry,
		PaymentMethods: a.Config.Store.PaymentMethods,
		Admin:          admin.NewHandler(a.Menu, a.Registry, admin.NewNonces(a.Config.Admin.NonceSecret, a.Config.Admin.NonceTTL)),
		AdminAccounts:  gin.Accounts{a.Config.Admin.Username: a.Config.Admin.Password},
		HealthCheck:    a.HealthCheck,
	}
	if a.Orders != nil {
		deps.Orders = a.Orders
		deps.IPN = a.Gateway
	}
	return server.NewRouter(deps)
}

func (a *App) HealthCheck(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.HealthCheck(ctx)
}

// Uninstall removes every option the plugin owns.
func (a *App) Uninstall(ctx context.Context) error {
	var errs []error
	for _, name := range []string{option.EnabledGatewaysName, option.CoinPaymentsSettingName} {
		if err := a.Options.Delete(ctx, name); err != nil && !errors.Is(err, option.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete option %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) Close() {
	if a.DebugLog != nil {
		if err := a.DebugLog.Close(); err != nil {
			a.Logger.Warn("failed to close debug log", zap.Error(err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
