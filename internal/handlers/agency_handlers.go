package handlers

import (
	"github.com/labstack/echo/v4"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/services"
)

// AgencyHandlers serves the agency dashboard payload and branding updates.
type AgencyHandlers struct {
	agencyService services.AgencyService
}

func NewAgencyHandlers(agencyService services.AgencyService) *AgencyHandlers {
	return &AgencyHandlers{agencyService: agencyService}
}

// GetOverview handles GET /api/agency?agencySlug=
func (h *AgencyHandlers) GetOverview(c echo.Context) error {
	slug := c.QueryParam("agencySlug")
	if err := common.ValidateSlug(slug, "agencySlug"); err != nil {
		return apierrors.Validation("%v", err)
	}

	overview, err := h.agencyService.GetOverviewBySlug(c.Request().Context(), slug)
	if err != nil {
		return err
	}
	return common.RespondOK(c, overview)
}

// UpdateBranding handles PATCH /api/agencies/:id
func (h *AgencyHandlers) UpdateBranding(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return apierrors.Validation("%v", err)
	}

	var req services.UpdateBrandingRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.Validation("invalid request body")
	}

	agency, err := h.agencyService.UpdateBranding(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return common.RespondOK(c, agency)
}

// UploadLogo handles POST /api/agencies/:id/logo
func (h *AgencyHandlers) UploadLogo(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return apierrors.Validation("%v", err)
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return apierrors.Validation("logo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return apierrors.Validation("could not read uploaded file")
	}
	defer src.Close()

	url, err := h.agencyService.UploadLogo(c.Request().Context(), id, file.Filename, file.Header.Get("Content-Type"), src, file.Size)
	if err != nil {
		return err
	}
	return common.RespondOK(c, map[string]string{"logo_url": url})
}
