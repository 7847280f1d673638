package admin

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/VladKovDev/cryptocart/internal/gateway"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	PageTitle       = "CryptoCart Lite"
	PageDescription = "Enable the Gateway before continue."

	settingsPath  = "/wprobo-ccp"
	gatewaysPath  = "/gateways"
	gatewayAction = "woocommerce-settings"
)

// gatewayLabels are the checkbox captions on the settings page.
var gatewayLabels = map[string]string{
	"coinpayment": "Coin Payment",
}

type Handler struct {
	menu     *Menu
	registry *gateway.Registry
	nonces   *Nonces
	base     string
}

func NewHandler(menu *Menu, registry *gateway.Registry, nonces *Nonces) *Handler {
	return &Handler{menu: menu, registry: registry, nonces: nonces}
}

// Register mounts the admin pages on group behind basic auth.
func (h *Handler) Register(group *gin.RouterGroup, accounts gin.Accounts) {
	h.base = group.BasePath()
	group.Use(gin.BasicAuth(accounts))

	group.GET(settingsPath, h.settingsPage)
	group.POST(settingsPath, h.settingsPage)

	if h.menu.CommerceReady() {
		group.GET(gatewaysPath+"/:id", h.gatewaySettings)
		group.POST(gatewaysPath+"/:id", h.gatewaySettings)
	}
}

func (h *Handler) settingsPage(c *gin.Context) {
	ctx := c.Request.Context()
	user := c.GetString(gin.AuthUserKey)
	notices := h.menu.Notices()

	if h.menu.CommerceReady() && c.Request.Method == http.MethodPost {
		if _, submitted := c.GetPostForm(NonceAction); submitted {
			if err := h.nonces.Verify(c.PostForm(NonceAction), NonceAction, user); err != nil {
				notices = append(notices, errorNotice(MsgNonceExpired))
			} else {
				notices = append(notices, h.menu.SaveGateways(ctx, c.PostFormArray("ccp-gateways[]")))
			}
		}
	}

	view := gatewaysView{
		page:        page{Title: PageTitle, Notices: notices, Ready: h.menu.CommerceReady()},
		Description: PageDescription,
		NonceField:  NonceAction,
	}

	if view.Ready {
		rec, err := h.menu.EnabledGateways(ctx)
		if err != nil {
			h.menu.logger.Error("failed to load enabled gateways", zap.Error(err))
			c.String(http.StatusInternalServerError, "failed to load settings")
			return
		}

		for _, g := range h.registry.Registered() {
			label, ok := gatewayLabels[g.Name()]
			if !ok {
				label = g.MethodTitle()
			}
			view.Gateways = append(view.Gateways, gatewayRow{
				Name:        g.Name(),
				Label:       label,
				Enabled:     rec.Contains(g.Name()),
				SettingsURL: h.base + gatewaysPath + "/" + g.ID(),
			})
		}

		nonce, err := h.nonces.Create(NonceAction, user)
		if err != nil {
			h.menu.logger.Error("failed to create nonce", zap.Error(err))
			c.String(http.StatusInternalServerError, "failed to create nonce")
			return
		}
		view.Nonce = nonce
	}

	h.render(c, gatewaysPage, view)
}

func (h *Handler) gatewaySettings(c *gin.Context) {
	ctx := c.Request.Context()
	user := c.GetString(gin.AuthUserKey)

	g, err := h.registry.Get(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "unknown payment gateway")
		return
	}

	action := gatewayAction + ":" + g.ID()
	notices := h.menu.Notices()

	if c.Request.Method == http.MethodPost {
		if err := h.nonces.Verify(c.PostForm(NonceAction), action, user); err != nil {
			notices = append(notices, errorNotice(MsgNonceExpired))
		} else {
			notices = append(notices, h.updateGateway(c, g))
		}
	}

	values, err := g.Settings(ctx)
	if err != nil {
		h.menu.logger.Error("failed to load gateway settings", zap.String("gateway", g.ID()), zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to load settings")
		return
	}

	nonce, err := h.nonces.Create(action, user)
	if err != nil {
		h.menu.logger.Error("failed to create nonce", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to create nonce")
		return
	}

	view := gatewaySettingsView{
		page:        page{Title: PageTitle, Notices: notices, Ready: true},
		MethodTitle: g.MethodTitle(),
		NonceField:  NonceAction,
		Nonce:       nonce,
	}
	for _, f := range g.FormFields() {
		view.Fields = append(view.Fields, fieldView{
			Name:        fieldName(g.ID(), f.Key),
			Type:        string(f.Type),
			Title:       f.Title,
			Label:       f.Label,
			Description: f.Description,
			Value:       values[f.Key],
			Checked:     values[f.Key] == "yes",
		})
	}

	h.render(c, gatewaySettingsPage, view)
}

func (h *Handler) updateGateway(c *gin.Context, g gateway.Gateway) Notice {
	form := make(map[string]string)
	for _, f := range g.FormFields() {
		if f.Type == gateway.FieldTitle {
			continue
		}
		form[f.Key] = c.PostForm(fieldName(g.ID(), f.Key))
	}

	if err := g.UpdateSettings(c.Request.Context(), form); err != nil {
		if errors.Is(err, gateway.ErrInvalidField) {
			return errorNotice(err.Error())
		}
		h.menu.logger.Error("failed to save gateway settings", zap.String("gateway", g.ID()), zap.Error(err))
		return warningNotice(MsgGatewaySaveError)
	}
	return successNotice(MsgGatewaySaved)
}

func (h *Handler) render(c *gin.Context, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.menu.logger.Error("failed to render admin page", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// fieldName is the form input name for a settings key.
func fieldName(gatewayID, key string) string {
	return "woocommerce_" + gatewayID + "_" + key
}
