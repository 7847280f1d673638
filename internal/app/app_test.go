package app

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/VladKovDev/cryptocart/internal/config"
	"github.com/VladKovDev/cryptocart/internal/domain/option"
	"github.com/VladKovDev/cryptocart/internal/gateway/coinpayments"
	"github.com/VladKovDev/cryptocart/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.SetDefaultConfig()
	cfg.Storage.Driver = "memory"
	cfg.Admin.Password = "pw"
	cfg.Admin.NonceSecret = "nonce"
	cfg.DebugLog.Path = filepath.Join(t.TempDir(), "wprobo-logs", "debug.log")
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := NewApp(context.Background(), cfg, logger.Noop())
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewApp_Memory(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	if a.Orders == nil || a.Options == nil {
		t.Fatal("memory stores not wired")
	}
	if !a.Menu.CommerceReady() {
		t.Error("commerce should be ready with memory storage")
	}
	if a.KeyStore != nil {
		t.Error("key store built without keys")
	}

	g, err := a.Registry.Get(coinpayments.GatewayID)
	if err != nil || g != a.Gateway {
		t.Errorf("registry gateway = %v, %v", g, err)
	}
}

func TestNewApp_InvalidDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "sqlite"

	_, err := NewApp(context.Background(), cfg, logger.Noop())
	if !errors.Is(err, config.ErrInvalidStorageDriver) {
		t.Errorf("NewApp() error = %v, want ErrInvalidStorageDriver", err)
	}
}

func TestNewApp_EncryptsSecret(t *testing.T) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t)
	cfg.Crypto.Keys = map[int][]byte{1: key}
	cfg.Crypto.CurrentVersion = 1

	a := newTestApp(t, cfg)
	ctx := context.Background()

	s := coinpayments.DefaultSettings()
	s.IPNSecret = "top-secret"
	if err := a.Gateway.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	raw, err := a.Options.Get(ctx, option.CoinPaymentsSettingName)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if strings.Contains(string(raw), "top-secret") {
		t.Error("secret stored in plaintext")
	}

	loaded, err := a.Gateway.LoadSettings(ctx)
	if err != nil || loaded.IPNSecret != "top-secret" {
		t.Errorf("LoadSettings() = %q, %v", loaded.IPNSecret, err)
	}
}

func TestApp_Router(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	router := a.Router()

	tests := []struct {
		name   string
		method string
		path   string
		auth   bool
		want   int
	}{
		{"health", http.MethodGet, "/healthz", false, http.StatusOK},
		{"methods", http.MethodGet, "/checkout/payment-methods", false, http.StatusOK},
		{"admin without auth", http.MethodGet, "/admin/wprobo-ccp", false, http.StatusUnauthorized},
		{"admin", http.MethodGet, "/admin/wprobo-ccp", true, http.StatusOK},
		{"empty ipn", http.MethodPost, "/?wc-api=" + coinpayments.APIName, false, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth {
				req.SetBasicAuth(a.Config.Admin.Username, a.Config.Admin.Password)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestApp_Uninstall(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	ctx := context.Background()

	if err := a.Menu.SetGatewayEnabled(ctx, coinpayments.GatewayName, true); err != nil {
		t.Fatalf("SetGatewayEnabled() error = %v", err)
	}
	if err := a.Gateway.SaveSettings(ctx, coinpayments.DefaultSettings()); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	if err := a.Uninstall(ctx); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}

	for _, name := range []string{option.EnabledGatewaysName, option.CoinPaymentsSettingName} {
		if _, err := a.Options.Get(ctx, name); !errors.Is(err, option.ErrNotFound) {
			t.Errorf("option %q still present: %v", name, err)
		}
	}
}

func TestGracefulShutdown(t *testing.T) {
	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		serverErr := make(chan error, 1)

		go func() {
			<-ctx.Done()
			serverErr <- nil
		}()
		cancel()

		if err := gracefulShutdown(ctx, cancel, logger.Noop(), serverErr, time.Second); err != nil {
			t.Errorf("gracefulShutdown() error = %v", err)
		}
	})

	t.Run("server failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		serverErr := make(chan error, 1)
		serverErr <- errors.New("bind: address in use")

		if err := gracefulShutdown(ctx, cancel, logger.Noop(), serverErr, time.Second); err == nil {
			t.Error("gracefulShutdown() error = nil, want server error")
		}
	})
}
