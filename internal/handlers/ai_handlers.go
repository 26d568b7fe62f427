package handlers

import (
	"github.com/labstack/echo/v4"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/services"
)

type AIHandlers struct {
	copyService services.CopyService
}

func NewAIHandlers(copyService services.CopyService) *AIHandlers {
	return &AIHandlers{copyService: copyService}
}

// ReviseCopy handles POST /api/ai/revise-copy
func (h *AIHandlers) ReviseCopy(c echo.Context) error {
	var req struct {
		Copy  string `json:"copy"`
		Notes string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return apierrors.Validation("invalid request body")
	}
	if err := common.ValidateRequiredString(req.Copy, "copy"); err != nil {
		return apierrors.Validation("%v", err)
	}
	if err := common.ValidateRequiredString(req.Notes, "notes"); err != nil {
		return apierrors.Validation("%v", err)
	}

	revised, err := h.copyService.ReviseCopy(c.Request().Context(), req.Copy, req.Notes)
	if err != nil {
		return err
	}
	return common.RespondOK(c, map[string]string{"revised_copy": revised})
}
