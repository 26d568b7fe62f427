package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/services"
)

// SyncHandlers triggers sync runs. Both routes sit behind the sync bearer
// key middleware; the dashboard never calls them directly.
type SyncHandlers struct {
	syncService services.SyncService
}

func NewSyncHandlers(syncService services.SyncService) *SyncHandlers {
	return &SyncHandlers{syncService: syncService}
}

// SyncAll handles POST /api/sync. Per-client failures are reported in the
// result list, never as a failed request.
func (h *SyncHandlers) SyncAll(c echo.Context) error {
	results := h.syncService.SyncAll(c.Request().Context())
	return common.RespondOK(c, results)
}

// syncRunResponse carries the headline fields of a single run at the top of
// the envelope; stage detail and entity counts stay under data.
type syncRunResponse struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Client    string               `json:"client"`
	Timestamp time.Time            `json:"timestamp"`
	Data      *services.SyncResult `json:"data"`
}

// SyncClient handles POST /api/sync/:clientSlug
func (h *SyncHandlers) SyncClient(c echo.Context) error {
	slug := c.Param("clientSlug")
	if err := common.ValidateSlug(slug, "clientSlug"); err != nil {
		return apierrors.Validation("%v", err)
	}

	result, err := h.syncService.SyncClientBySlug(c.Request().Context(), slug)
	if err != nil && result == nil {
		return err
	}
	return c.JSON(http.StatusOK, syncRunResponse{
		Success:   result.Success,
		Message:   result.Message,
		Client:    result.ClientSlug,
		Timestamp: result.Timestamp,
		Data:      result,
	})
}
