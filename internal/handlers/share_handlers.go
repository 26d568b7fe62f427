package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/caching"
	"pulsedash/internal/common"
	"pulsedash/internal/services"
)

const (
	shareRateLimit  = 30
	shareRateWindow = time.Minute
)

// ShareHandlers serves the unauthenticated ops share surface. Resolution is
// rate limited per caller IP; everything else requires a dashboard session.
type ShareHandlers struct {
	shareService services.ShareService
	cache        caching.CacheService
}

func NewShareHandlers(shareService services.ShareService, cache caching.CacheService) *ShareHandlers {
	return &ShareHandlers{shareService: shareService, cache: cache}
}

// Resolve handles GET /api/ops-share/:token
func (h *ShareHandlers) Resolve(c echo.Context) error {
	limited, err := h.cache.IsRateLimited(c.Request().Context(),
		fmt.Sprintf("pulsedash:share-rl:%s", c.RealIP()), shareRateLimit, shareRateWindow)
	if err == nil && limited {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	}

	token := c.Param("token")
	if token == "" {
		return apierrors.NotFound("share link")
	}

	payload, err := h.shareService.Resolve(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return common.RespondOK(c, payload)
}

// Generate handles POST /api/ops-share/generate
func (h *ShareHandlers) Generate(c echo.Context) error {
	agencyID, ok := common.GetAgencyIDFromContext(c.Request().Context())
	if !ok {
		return apierrors.Auth("agency context missing")
	}

	token, err := h.shareService.Generate(c.Request().Context(), agencyID)
	if err != nil {
		return err
	}
	return common.RespondOK(c, map[string]string{"token": token})
}

// Disable handles POST /api/ops-share/disable
func (h *ShareHandlers) Disable(c echo.Context) error {
	agencyID, ok := common.GetAgencyIDFromContext(c.Request().Context())
	if !ok {
		return apierrors.Auth("agency context missing")
	}

	if err := h.shareService.Disable(c.Request().Context(), agencyID); err != nil {
		return err
	}
	return common.RespondMessage(c, "share link disabled")
}
