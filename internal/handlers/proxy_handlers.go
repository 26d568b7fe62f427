package handlers

import (
	"github.com/labstack/echo/v4"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/services"
)

// ProxyHandlers relays live platform reads for dashboard views that cannot
// wait for the next sync pass.
type ProxyHandlers struct {
	proxyService services.ProxyService
}

func NewProxyHandlers(proxyService services.ProxyService) *ProxyHandlers {
	return &ProxyHandlers{proxyService: proxyService}
}

// Relay handles POST /api/klaviyo-proxy/:action?clientSlug=
// A missing clientSlug fails before any external call is made.
func (h *ProxyHandlers) Relay(c echo.Context) error {
	clientSlug := c.QueryParam("clientSlug")
	if clientSlug == "" {
		return apierrors.Validation("clientSlug query parameter is required")
	}
	action := c.Param("action")

	var req services.ProxyRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.Validation("invalid request body")
	}

	result, err := h.proxyService.Relay(c.Request().Context(), clientSlug, action, &req)
	if err != nil {
		return err
	}
	return common.RespondOK(c, result)
}
