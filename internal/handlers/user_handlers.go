package handlers

import (
	"github.com/labstack/echo/v4"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/services"
)

// UserHandlers covers dashboard user management. Deletion removes the
// profile row first, then the identity-provider account; if the provider
// call fails the request is reported as failed.
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// Delete handles DELETE /api/users/:id
func (h *UserHandlers) Delete(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return apierrors.Validation("%v", err)
	}

	if err := h.userService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return common.RespondMessage(c, "user deleted")
}
