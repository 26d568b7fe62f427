package klaviyo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"pulsedash/internal/config"
)

// ErrAuthentication marks a rejected API key. It is never retried.
var ErrAuthentication = errors.New("klaviyo authentication failed")

// API is the surface the sync orchestrator and proxy handlers depend on.
type API interface {
	GetCampaigns(ctx context.Context, apiKey, channel string) ([]Campaign, error)
	GetFlows(ctx context.Context, apiKey string) ([]Flow, error)
	GetFlowActions(ctx context.Context, apiKey, flowID string) ([]FlowAction, error)
	GetFlowActionMessages(ctx context.Context, apiKey, actionID string) ([]FlowMessage, error)
	GetTemplates(ctx context.Context, apiKey string) ([]Template, error)
	CampaignValuesReport(ctx context.Context, apiKey string, req ValuesReportRequest) ([]ValuesReportRow, error)
	FlowValuesReport(ctx context.Context, apiKey string, req ValuesReportRequest) ([]ValuesReportRow, error)
}

// Client talks to the Klaviyo REST API. It follows pagination cursors until
// exhaustion and retries rate-limit responses with a delay; every other
// failure is terminal for the call.
type Client struct {
	baseURL    string
	revision   string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewClient(cfg config.KlaviyoConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		revision:   cfg.Revision,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelaySecs) * time.Second,
		logger:     logger,
	}
}

// doRequest performs one HTTP call, retrying 429 responses up to maxRetries.
// Authentication failures surface as ErrAuthentication immediately.
func (c *Client) doRequest(ctx context.Context, apiKey, method, rawURL string, payload interface{}) ([]byte, error) {
	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = data
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Klaviyo-API-Key "+apiKey)
		req.Header.Set("revision", c.revision)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
			return respBody, nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: status %d", ErrAuthentication, resp.StatusCode)

		case resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries:
			delay := c.retryDelay
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
					delay = time.Duration(secs) * time.Second
				}
			}
			c.logger.Warn("klaviyo rate limited, backing off",
				zap.String("url", rawURL),
				zap.Duration("delay", delay),
				zap.Int("attempt", attempt+1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

		default:
			return nil, fmt.Errorf("klaviyo API returned status %d: %s", resp.StatusCode, string(respBody))
		}
	}
}

// getAllPages drains every pagination cursor for a collection endpoint and
// returns the flattened sequence.
func getAllPages[T any](ctx context.Context, c *Client, apiKey, rawURL string) ([]T, error) {
	var all []T
	next := rawURL
	for next != "" {
		body, err := c.doRequest(ctx, apiKey, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}

		var p page[T]
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		all = append(all, p.Data...)
		next = p.Links.Next
	}
	return all, nil
}

func (c *Client) collectionURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) GetCampaigns(ctx context.Context, apiKey, channel string) ([]Campaign, error) {
	if channel == "" {
		channel = "email"
	}
	query := url.Values{}
	query.Set("filter", fmt.Sprintf("equals(messages.channel,'%s')", channel))
	return getAllPages[Campaign](ctx, c, apiKey, c.collectionURL("/campaigns", query))
}

func (c *Client) GetFlows(ctx context.Context, apiKey string) ([]Flow, error) {
	return getAllPages[Flow](ctx, c, apiKey, c.collectionURL("/flows", nil))
}

func (c *Client) GetFlowActions(ctx context.Context, apiKey, flowID string) ([]FlowAction, error) {
	return getAllPages[FlowAction](ctx, c, apiKey, c.collectionURL("/flows/"+flowID+"/flow-actions", nil))
}

func (c *Client) GetFlowActionMessages(ctx context.Context, apiKey, actionID string) ([]FlowMessage, error) {
	return getAllPages[FlowMessage](ctx, c, apiKey, c.collectionURL("/flow-actions/"+actionID+"/flow-messages", nil))
}

func (c *Client) GetTemplates(ctx context.Context, apiKey string) ([]Template, error) {
	return getAllPages[Template](ctx, c, apiKey, c.collectionURL("/templates", nil))
}

func (c *Client) CampaignValuesReport(ctx context.Context, apiKey string, req ValuesReportRequest) ([]ValuesReportRow, error) {
	return c.valuesReport(ctx, apiKey, "/campaign-values-reports", "campaign-values-report", req)
}

func (c *Client) FlowValuesReport(ctx context.Context, apiKey string, req ValuesReportRequest) ([]ValuesReportRow, error) {
	return c.valuesReport(ctx, apiKey, "/flow-values-reports", "flow-values-report", req)
}

func (c *Client) valuesReport(ctx context.Context, apiKey, path, reportType string, req ValuesReportRequest) ([]ValuesReportRow, error) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type": reportType,
			"attributes": map[string]interface{}{
				"statistics":           req.Statistics,
				"timeframe":            map[string]string{"key": req.Timeframe},
				"conversion_metric_id": req.ConversionMetricID,
			},
		},
	}

	body, err := c.doRequest(ctx, apiKey, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return nil, err
	}

	var report reportResponse
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return report.Data.Attributes.Results, nil
}
