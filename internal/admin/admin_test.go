package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/VladKovDev/cryptocart/internal/domain/option"
	"github.com/VladKovDev/cryptocart/internal/gateway"
	"github.com/VladKovDev/cryptocart/internal/gateway/coinpayments"
	"github.com/VladKovDev/cryptocart/internal/repository/memory"
	"github.com/VladKovDev/cryptocart/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	testUser     = "admin"
	testPassword = "secret"
)

type brokenOptions struct{}

func (brokenOptions) Get(context.Context, string) ([]byte, error) {
	return nil, option.ErrNotFound
}

func (brokenOptions) Set(context.Context, string, []byte) (bool, error) {
	return false, errors.New("disk full")
}

func (brokenOptions) Delete(context.Context, string) error { return nil }

type env struct {
	options  option.Store
	registry *gateway.Registry
	menu     *Menu
	nonces   *Nonces
	router   *gin.Engine
}

func newEnv(t *testing.T, options option.Store, commerceReady bool) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := gateway.NewRegistry()
	registry.Register(coinpayments.New(options, memory.NewOrderStore(), logger.Noop()))

	menu := NewMenu(options, registry, logger.Noop(), commerceReady)
	registry.SetEnabledChecker(menu)

	nonces := NewNonces("nonce-secret", time.Hour)
	router := gin.New()
	NewHandler(menu, registry, nonces).Register(router.Group("/admin"), gin.Accounts{testUser: testPassword})

	return &env{options: options, registry: registry, menu: menu, nonces: nonces, router: router}
}

func (e *env) do(t *testing.T, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.SetBasicAuth(testUser, testPassword)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestNotice_HTML(t *testing.T) {
	tests := []struct {
		name   string
		notice Notice
		want   string
	}{
		{
			name:   "dismissible success",
			notice: successNotice(MsgSaved),
			want:   `<div class="notice notice-success is-dismissible"><p>Settings were successfully Saved.</p></div>`,
		},
		{
			name:   "warning",
			notice: warningNotice(MsgSaveFailed),
			want:   `<div class="notice notice-warning "><p>Unable to save the settings. Some internal error occurred. Please try again.</p></div>`,
		},
		{
			name:   "escapes message",
			notice: errorNotice("<b>x</b>"),
			want:   `<div class="notice notice-error "><p>&lt;b&gt;x&lt;/b&gt;</p></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(tt.notice.HTML()); got != tt.want {
				t.Errorf("HTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNonces(t *testing.T) {
	n := NewNonces("k", time.Minute)
	token, err := n.Create(NonceAction, "alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	other := NewNonces("other-key", time.Minute)
	expired := NewNonces("k", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	tests := []struct {
		name    string
		nonces  *Nonces
		token   string
		action  string
		user    string
		wantErr bool
	}{
		{"valid", n, token, NonceAction, "alice", false},
		{"empty", n, "", NonceAction, "alice", true},
		{"wrong action", n, token, "other", "alice", true},
		{"wrong user", n, token, NonceAction, "bob", true},
		{"wrong key", other, token, NonceAction, "alice", true},
		{"expired", expired, token, NonceAction, "alice", true},
		{"garbage", n, "not-a-token", NonceAction, "alice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nonces.Verify(tt.token, tt.action, tt.user)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidNonce) {
				t.Errorf("Verify() error = %v, want ErrInvalidNonce", err)
			}
		})
	}
}

func TestMenu_SaveGateways(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, memory.NewOptionStore(), true)

	if ok, err := e.menu.IsGatewayEnabled(ctx, coinpayments.GatewayName); err != nil || ok {
		t.Fatalf("IsGatewayEnabled() before save = %v, %v", ok, err)
	}

	notice := e.menu.SaveGateways(ctx, []string{coinpayments.GatewayName, " ", "bogus", coinpayments.GatewayName})
	if notice.Type != NoticeSuccess || notice.Message != MsgSaved || !notice.Dismissible {
		t.Fatalf("SaveGateways() notice = %+v", notice)
	}

	rec, err := e.menu.EnabledGateways(ctx)
	if err != nil {
		t.Fatalf("EnabledGateways() error = %v", err)
	}
	if len(rec.Gateways) != 1 || rec.Gateways[0] != coinpayments.GatewayName {
		t.Errorf("Gateways = %v, want [%s]", rec.Gateways, coinpayments.GatewayName)
	}
	if rec.LastUpdated == 0 {
		t.Error("LastUpdated not set")
	}

	ids, err := e.registry.AddPaymentGateways(ctx, []string{"bacs"})
	if err != nil {
		t.Fatalf("AddPaymentGateways() error = %v", err)
	}
	if len(ids) != 2 || ids[1] != coinpayments.GatewayID {
		t.Errorf("AddPaymentGateways() = %v", ids)
	}
}

func TestMenu_SaveGateways_Unchanged(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, memory.NewOptionStore(), true)
	fixed := time.Unix(1700000000, 0)
	e.menu.now = func() time.Time { return fixed }

	if n := e.menu.SaveGateways(ctx, []string{coinpayments.GatewayName}); n.Type != NoticeSuccess {
		t.Fatalf("first save notice = %+v", n)
	}
	if n := e.menu.SaveGateways(ctx, []string{coinpayments.GatewayName}); n.Type != NoticeWarning || n.Message != MsgSaveFailed {
		t.Errorf("repeat save notice = %+v, want warning", n)
	}
}

func TestMenu_SaveGateways_StoreError(t *testing.T) {
	e := newEnv(t, brokenOptions{}, true)

	n := e.menu.SaveGateways(context.Background(), []string{coinpayments.GatewayName})
	if n.Type != NoticeWarning || n.Dismissible {
		t.Errorf("notice = %+v, want non-dismissible warning", n)
	}
}

func TestMenu_SetGatewayEnabled(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, memory.NewOptionStore(), true)

	if err := e.menu.SetGatewayEnabled(ctx, "bogus", true); !errors.Is(err, gateway.ErrUnknownGateway) {
		t.Fatalf("SetGatewayEnabled(bogus) error = %v", err)
	}

	if err := e.menu.SetGatewayEnabled(ctx, coinpayments.GatewayName, true); err != nil {
		t.Fatalf("enable error = %v", err)
	}
	if ok, _ := e.menu.IsGatewayEnabled(ctx, coinpayments.GatewayName); !ok {
		t.Error("gateway not enabled")
	}

	if err := e.menu.SetGatewayEnabled(ctx, coinpayments.GatewayName, false); err != nil {
		t.Fatalf("disable error = %v", err)
	}
	if ok, _ := e.menu.IsGatewayEnabled(ctx, coinpayments.GatewayName); ok {
		t.Error("gateway still enabled")
	}
}

func TestSettingsPage(t *testing.T) {
	e := newEnv(t, memory.NewOptionStore(), true)
	nonce, err := e.nonces.Create(NonceAction, testUser)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name        string
		method      string
		form        url.Values
		wantContain []string
		wantEnabled bool
	}{
		{
			name:        "get renders form",
			method:      http.MethodGet,
			wantContain: []string{PageTitle, PageDescription, "Enable Coin Payment", `name="ccp-gateways[]"`, `name="wprobo-ccp"`},
		},
		{
			name:        "expired nonce",
			method:      http.MethodPost,
			form:        url.Values{NonceAction: {"stale"}, "ccp-gateways[]": {coinpayments.GatewayName}},
			wantContain: []string{`notice-error`, MsgNonceExpired},
		},
		{
			name:        "valid nonce saves",
			method:      http.MethodPost,
			form:        url.Values{NonceAction: {nonce}, "ccp-gateways[]": {coinpayments.GatewayName}},
			wantContain: []string{`notice-success is-dismissible`, MsgSaved, "ccp-enable"},
			wantEnabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, tt.method, "/admin/wprobo-ccp", tt.form)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			for _, s := range tt.wantContain {
				if !strings.Contains(w.Body.String(), s) {
					t.Errorf("body missing %q", s)
				}
			}
			ok, _ := e.menu.IsGatewayEnabled(context.Background(), coinpayments.GatewayName)
			if ok != tt.wantEnabled {
				t.Errorf("enabled = %v, want %v", ok, tt.wantEnabled)
			}
		})
	}
}

func TestSettingsPage_RequiresAuth(t *testing.T) {
	e := newEnv(t, memory.NewOptionStore(), true)

	req := httptest.NewRequest(http.MethodGet, "/admin/wprobo-ccp", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSettingsPage_CommerceMissing(t *testing.T) {
	e := newEnv(t, memory.NewOptionStore(), false)

	w := e.do(t, http.MethodGet, "/admin/wprobo-ccp", nil)
	if !strings.Contains(w.Body.String(), MsgCommerceMissing) {
		t.Error("missing commerce notice not rendered")
	}
	if strings.Contains(w.Body.String(), "ccp-gateways[]") {
		t.Error("gateway form rendered without commerce")
	}

	w = e.do(t, http.MethodGet, "/admin/gateways/"+coinpayments.GatewayID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("gateway settings status = %d, want 404", w.Code)
	}
}

func TestGatewaySettingsPage(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, memory.NewOptionStore(), true)
	path := "/admin/gateways/" + coinpayments.GatewayID
	prefix := "woocommerce_" + coinpayments.GatewayID + "_"

	w := e.do(t, http.MethodGet, path, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), prefix+"merchant_id") {
		t.Fatalf("GET status = %d, body missing merchant field", w.Code)
	}

	nonce, err := e.nonces.Create(gatewayAction+":"+coinpayments.GatewayID, testUser)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	form := url.Values{
		NonceAction:               {nonce},
		prefix + "enabled":        {"1"},
		prefix + "title":          {"Pay with crypto"},
		prefix + "merchant_id":    {"M999"},
		prefix + "ipn_secret":     {"s3cret"},
		prefix + "debug_email":    {"ops@example.com"},
		prefix + "simple_total":   {"1"},
		prefix + "invoice_prefix": {"WC-"},
	}
	w = e.do(t, http.MethodPost, path, form)
	if !strings.Contains(w.Body.String(), MsgGatewaySaved) {
		t.Fatalf("body missing saved notice: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "s3cret") {
		t.Error("ipn secret echoed back")
	}

	g, err := e.registry.Get(coinpayments.GatewayID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	values, err := g.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if values["merchant_id"] != "M999" || values["enabled"] != "yes" || values["send_shipping"] != "no" {
		t.Errorf("settings = %v", values)
	}

	form.Set(prefix+"debug_email", "not an email")
	w = e.do(t, http.MethodPost, path, form)
	if !strings.Contains(w.Body.String(), "notice-error") {
		t.Error("invalid email not rejected")
	}
}
