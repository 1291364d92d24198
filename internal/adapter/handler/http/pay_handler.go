package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/tagrelay/internal/config"
)

const paymentLinkBase = "https://buy.stripe.com/"

// PayHandler issues localized payment-link redirects. The chat id travels as
// client_reference_id through the checkout session and comes back on the
// completion webhook.
type PayHandler struct {
	logger *zap.Logger
	links  map[string]config.PaymentLink
}

func NewPayHandler(logger *zap.Logger, links map[string]config.PaymentLink) *PayHandler {
	return &PayHandler{
		logger: logger,
		links:  links,
	}
}

func (h *PayHandler) Redirect(c echo.Context) error {
	lang := strings.ToLower(c.Param("lang"))
	tgID := strings.TrimSpace(c.QueryParam("tg_id"))

	link, ok := h.links[lang]
	if !ok || link.Code == "" {
		return c.String(http.StatusBadRequest, "Unknown language: "+lang)
	}

	base := paymentLinkBase + link.Code

	params := url.Values{}
	if tgID != "" {
		params.Set("client_reference_id", tgID)
	}
	if link.Locale != "" {
		params.Set("locale", link.Locale)
	}

	target := base
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	h.logger.Info("payment link redirect",
		zap.String("lang", lang),
		zap.String("tg_id", tgID),
	)

	return c.Redirect(http.StatusFound, target)
}
