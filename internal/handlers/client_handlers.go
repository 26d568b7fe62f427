package handlers

import (
	"github.com/labstack/echo/v4"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/services"
)

// ClientHandlers covers client CRUD and credential rotation. Credentials
// arrive in plaintext over TLS and are sealed before they touch the database.
type ClientHandlers struct {
	clientService services.ClientService
}

func NewClientHandlers(clientService services.ClientService) *ClientHandlers {
	return &ClientHandlers{clientService: clientService}
}

// Create handles POST /api/clients
func (h *ClientHandlers) Create(c echo.Context) error {
	var req services.CreateClientRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.Validation("invalid request body")
	}

	client, err := h.clientService.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return common.RespondCreated(c, client)
}

// Get handles GET /api/clients/:slug
func (h *ClientHandlers) Get(c echo.Context) error {
	slug := c.Param("slug")
	if err := common.ValidateSlug(slug, "slug"); err != nil {
		return apierrors.Validation("%v", err)
	}

	client, err := h.clientService.GetBySlug(c.Request().Context(), slug)
	if err != nil {
		return err
	}
	return common.RespondOK(c, client)
}

// Update handles PATCH /api/clients/:id
func (h *ClientHandlers) Update(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return apierrors.Validation("%v", err)
	}

	var req services.UpdateClientRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.Validation("invalid request body")
	}

	client, err := h.clientService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return common.RespondOK(c, client)
}

// RotateCredential handles POST /api/clients/:id/credential
func (h *ClientHandlers) RotateCredential(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return apierrors.Validation("%v", err)
	}

	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := c.Bind(&req); err != nil {
		return apierrors.Validation("invalid request body")
	}
	if err := common.ValidateRequiredString(req.APIKey, "api_key"); err != nil {
		return apierrors.Validation("%v", err)
	}

	if err := h.clientService.RotateCredential(c.Request().Context(), id, req.APIKey); err != nil {
		return err
	}
	return common.RespondMessage(c, "credential updated")
}

// SetActive handles POST /api/clients/:id/active
func (h *ClientHandlers) SetActive(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return apierrors.Validation("%v", err)
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return apierrors.Validation("invalid request body")
	}

	if err := h.clientService.SetActive(c.Request().Context(), id, req.Active); err != nil {
		return err
	}
	return common.RespondMessage(c, "client updated")
}
