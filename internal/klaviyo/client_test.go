package klaviyo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pulsedash/internal/config"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(config.KlaviyoConfig{
		BaseURL:        serverURL,
		Revision:       "2024-10-15",
		TimeoutSeconds: 5,
		MaxRetries:     2,
		RetryDelaySecs: 0,
	}, zap.NewNop())
}

func TestGetCampaigns_DrainsAllPages(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Klaviyo-API-Key key-123", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-10-15", r.Header.Get("revision"))

		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case "", "1":
			fmt.Fprintf(w, `{"data":[{"id":"c1","type":"campaign","attributes":{"name":"One"}},
				{"id":"c2","type":"campaign","attributes":{"name":"Two"}}],
				"links":{"next":"%s/campaigns?page=2"}}`, server.URL)
		case "2":
			fmt.Fprint(w, `{"data":[{"id":"c3","type":"campaign","attributes":{"name":"Three"}}],"links":{"next":""}}`)
		default:
			t.Fatalf("unexpected page %q", page)
		}
	}))
	defer server.Close()

	campaigns, err := testClient(t, server.URL).GetCampaigns(context.Background(), "key-123", "email")
	require.NoError(t, err)
	require.Len(t, campaigns, 3)
	assert.Equal(t, "c1", campaigns[0].ID)
	assert.Equal(t, "Three", campaigns[2].Attributes.Name)
}

func TestGetFlows_RetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"f1","type":"flow","attributes":{"name":"Welcome","status":"live"}}],"links":{}}`)
	}))
	defer server.Close()

	flows, err := testClient(t, server.URL).GetFlows(context.Background(), "key-123")
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "Welcome", flows[0].Attributes.Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetFlows_RateLimitExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).GetFlows(context.Background(), "key-123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	// initial attempt plus MaxRetries
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoRequest_AuthFailureNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).GetTemplates(context.Background(), "bad-key")
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCampaignValuesReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/campaign-values-reports", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		data := payload["data"].(map[string]interface{})
		assert.Equal(t, "campaign-values-report", data["type"])

		fmt.Fprint(w, `{"data":{"attributes":{"results":[
			{"groupings":{"campaign_id":"c1"},"statistics":{"open_rate":0.42,"delivered":100}}
		]}}}`)
	}))
	defer server.Close()

	rows, err := testClient(t, server.URL).CampaignValuesReport(context.Background(), "key-123", ValuesReportRequest{
		Statistics: SyncStatistics,
		Timeframe:  "last_30_days",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c1", rows[0].GroupedBy["campaign_id"])
	assert.Equal(t, 0.42, rows[0].Statistics["open_rate"])
}
