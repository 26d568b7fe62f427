package handlers

import (
	"github.com/labstack/echo/v4"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/services"
)

// MetricsHandlers serves persisted metric snapshots. These routes never
// touch the external platform; sync keeps the rows current.
type MetricsHandlers struct {
	metricsService services.MetricsService
}

func NewMetricsHandlers(metricsService services.MetricsService) *MetricsHandlers {
	return &MetricsHandlers{metricsService: metricsService}
}

// FlowEmails handles GET /api/flow-emails?flowId=&clientSlug=&timeframe=
func (h *MetricsHandlers) FlowEmails(c echo.Context) error {
	clientSlug := c.QueryParam("clientSlug")
	flowID := c.QueryParam("flowId")
	timeframe := c.QueryParam("timeframe")
	if timeframe == "" {
		timeframe = "last-30-days"
	}
	if err := common.ValidateSlug(clientSlug, "clientSlug"); err != nil {
		return apierrors.Validation("%v", err)
	}
	if err := common.ValidateRequiredString(flowID, "flowId"); err != nil {
		return apierrors.Validation("%v", err)
	}

	report, err := h.metricsService.FlowEmails(c.Request().Context(), clientSlug, flowID, timeframe)
	if err != nil {
		return err
	}
	return common.RespondOK(c, report)
}

// Campaigns handles GET /api/campaigns?clientSlug=&timeframe=
func (h *MetricsHandlers) Campaigns(c echo.Context) error {
	clientSlug := c.QueryParam("clientSlug")
	timeframe := c.QueryParam("timeframe")
	if timeframe == "" {
		timeframe = "last-30-days"
	}
	if err := common.ValidateSlug(clientSlug, "clientSlug"); err != nil {
		return apierrors.Validation("%v", err)
	}

	report, err := h.metricsService.Campaigns(c.Request().Context(), clientSlug, timeframe)
	if err != nil {
		return err
	}
	return common.RespondOK(c, report)
}
