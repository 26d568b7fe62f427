package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/middleware"
	"pulsedash/internal/services"
)

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncClientBySlug(ctx context.Context, slug string) (*services.SyncResult, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SyncResult), args.Error(1)
}

func (m *MockSyncService) SyncAll(ctx context.Context) []*services.SyncResult {
	args := m.Called(ctx)
	return args.Get(0).([]*services.SyncResult)
}

type SyncHandlersTestSuite struct {
	suite.Suite
	syncService *MockSyncService
	e           *echo.Echo
}

const testSyncKey = "sync-secret"

func (suite *SyncHandlersTestSuite) SetupTest() {
	suite.syncService = &MockSyncService{}
	h := NewSyncHandlers(suite.syncService)

	suite.e = echo.New()
	suite.e.HTTPErrorHandler = apierrors.EchoErrorHandler(zap.NewNop())
	group := suite.e.Group("/api/sync", middleware.RequireSyncKey(testSyncKey))
	group.POST("", h.SyncAll)
	group.POST("/:clientSlug", h.SyncClient)
}

func (suite *SyncHandlersTestSuite) TearDownTest() {
	suite.syncService.AssertExpectations(suite.T())
}

func TestSyncHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(SyncHandlersTestSuite))
}

func (suite *SyncHandlersTestSuite) request(path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(""))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	return rec
}

func (suite *SyncHandlersTestSuite) TestSyncAll_MissingKey() {
	rec := suite.request("/api/sync", "")

	suite.Equal(http.StatusUnauthorized, rec.Code)

	var envelope common.Envelope
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	suite.False(envelope.Success)
	suite.NotEmpty(envelope.Error)
}

func (suite *SyncHandlersTestSuite) TestSyncAll_WrongKey() {
	rec := suite.request("/api/sync", "not-the-key")

	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *SyncHandlersTestSuite) TestSyncAll_Success() {
	results := []*services.SyncResult{
		{ClientID: uuid.New(), ClientSlug: "acme", Success: true, Stage: services.StageCompleted},
		{ClientID: uuid.New(), ClientSlug: "other", Success: false, Stage: services.StageFailed, FailedStage: services.StageFetchingExternal},
	}
	suite.syncService.On("SyncAll", mock.Anything).Return(results)

	rec := suite.request("/api/sync", testSyncKey)

	suite.Equal(http.StatusOK, rec.Code)

	var envelope struct {
		Success bool                   `json:"success"`
		Data    []*services.SyncResult `json:"data"`
	}
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	suite.True(envelope.Success)
	suite.Len(envelope.Data, 2)
	suite.True(envelope.Data[0].Success)
	suite.False(envelope.Data[1].Success)
}

func (suite *SyncHandlersTestSuite) TestSyncClient_Success() {
	result := &services.SyncResult{
		ClientSlug: "acme",
		Success:    true,
		Stage:      services.StageCompleted,
		Message:    "Sync completed for Acme Co",
		Timestamp:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Campaigns:  3,
	}
	suite.syncService.On("SyncClientBySlug", mock.Anything, "acme").Return(result, nil)

	rec := suite.request("/api/sync/acme", testSyncKey)

	suite.Equal(http.StatusOK, rec.Code)

	var envelope struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Client    string `json:"client"`
		Timestamp string `json:"timestamp"`
		Data      struct {
			Campaigns int `json:"campaigns"`
		} `json:"data"`
	}
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	suite.True(envelope.Success)
	suite.Equal("Sync completed for Acme Co", envelope.Message)
	suite.Equal("acme", envelope.Client)
	suite.Equal("2025-03-01T12:00:00Z", envelope.Timestamp)
	suite.Equal(3, envelope.Data.Campaigns)
}

func (suite *SyncHandlersTestSuite) TestSyncClient_FailedRunReportedInEnvelope() {
	result := &services.SyncResult{
		ClientSlug:  "acme",
		Success:     false,
		Stage:       services.StageFailed,
		FailedStage: services.StageFetchingCredential,
		Message:     "credential could not be decrypted",
		Timestamp:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	suite.syncService.On("SyncClientBySlug", mock.Anything, "acme").Return(result, apierrors.Decryption(errors.New("cipher: message authentication failed")))

	rec := suite.request("/api/sync/acme", testSyncKey)

	suite.Equal(http.StatusOK, rec.Code)

	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Client  string `json:"client"`
	}
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	suite.False(envelope.Success)
	suite.Equal("credential could not be decrypted", envelope.Message)
	suite.Equal("acme", envelope.Client)
}

func (suite *SyncHandlersTestSuite) TestSyncClient_UnknownClient() {
	suite.syncService.On("SyncClientBySlug", mock.Anything, "ghost").Return(nil, apierrors.NotFound("client"))

	rec := suite.request("/api/sync/ghost", testSyncKey)

	suite.Equal(http.StatusNotFound, rec.Code)

	var envelope common.Envelope
	suite.NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	suite.False(envelope.Success)
	suite.Equal("client not found", envelope.Error)
}
