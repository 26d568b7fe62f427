package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminAPI is the identity-provider surface the user service depends on.
type AdminAPI interface {
	DeleteAccount(ctx context.Context, accountID uuid.UUID) error
}

// AdminClient calls the identity provider's admin REST API with the
// service-role key. Used for the profile deletion cascade.
type AdminClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAdminClient(baseURL, serviceKey string, logger *zap.Logger) *AdminClient {
	return &AdminClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// DeleteAccount removes the identity-provider account backing a profile.
// Any non-2xx response is a failure the caller must surface; a deleted
// profile with a live account is not success.
func (c *AdminClient) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	url := fmt.Sprintf("%s/admin/users/%s", c.baseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("identity provider rejected account deletion",
			zap.String("account_id", accountID.String()),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
