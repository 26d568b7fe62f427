package handlers

import (
	"github.com/labstack/echo/v4"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/services"
)

type OpsFormHandlers struct {
	opsFormService services.OpsFormService
}

func NewOpsFormHandlers(opsFormService services.OpsFormService) *OpsFormHandlers {
	return &OpsFormHandlers{opsFormService: opsFormService}
}

// Create handles POST /api/ops/forms
func (h *OpsFormHandlers) Create(c echo.Context) error {
	var req services.CreateOpsFormRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.Validation("invalid request body")
	}

	form, err := h.opsFormService.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return common.RespondCreated(c, form)
}

// List handles GET /api/ops/forms?clientSlug=
func (h *OpsFormHandlers) List(c echo.Context) error {
	clientSlug := c.QueryParam("clientSlug")
	if err := common.ValidateSlug(clientSlug, "clientSlug"); err != nil {
		return apierrors.Validation("%v", err)
	}

	forms, err := h.opsFormService.ListByClientSlug(c.Request().Context(), clientSlug)
	if err != nil {
		return err
	}
	return common.RespondOK(c, forms)
}

// Update handles PATCH /api/ops/forms/:id
func (h *OpsFormHandlers) Update(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return apierrors.Validation("%v", err)
	}

	var req services.UpdateOpsFormRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.Validation("invalid request body")
	}

	form, err := h.opsFormService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return common.RespondOK(c, form)
}
