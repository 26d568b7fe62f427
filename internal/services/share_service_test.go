package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/models"
)

type MockAgencyRepository struct {
	mock.Mock
}

func (m *MockAgencyRepository) Create(ctx context.Context, agency *models.Agency) error {
	args := m.Called(ctx, agency)
	return args.Error(0)
}

func (m *MockAgencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *MockAgencyRepository) GetBySlug(ctx context.Context, slug string) (*models.Agency, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

func (m *MockAgencyRepository) UpdateBranding(ctx context.Context, agency *models.Agency) error {
	args := m.Called(ctx, agency)
	return args.Error(0)
}

func (m *MockAgencyRepository) List(ctx context.Context, limit, offset int) ([]*models.Agency, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Agency), args.Error(1)
}

func (m *MockAgencyRepository) SetShareToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockAgencyRepository) SetShareEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func (m *MockAgencyRepository) DisableStaleShareTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAgencyRepository) RecordShareAccess(ctx context.Context, token string) (*models.Agency, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agency), args.Error(1)
}

type ShareServiceTestSuite struct {
	suite.Suite
	agencyRepo *MockAgencyRepository
	clientRepo *MockClientRepository
	service    ShareService
}

func (suite *ShareServiceTestSuite) SetupTest() {
	suite.agencyRepo = &MockAgencyRepository{}
	suite.clientRepo = &MockClientRepository{}
	suite.service = NewShareService(suite.agencyRepo, suite.clientRepo)
}

func (suite *ShareServiceTestSuite) TearDownTest() {
	suite.agencyRepo.AssertExpectations(suite.T())
	suite.clientRepo.AssertExpectations(suite.T())
}

func TestShareServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ShareServiceTestSuite))
}

func (suite *ShareServiceTestSuite) TestGenerate_MintsHexToken() {
	ctx := context.Background()
	agencyID := uuid.New()

	suite.agencyRepo.On("GetByID", ctx, agencyID).Return(&models.Agency{ID: agencyID}, nil)

	var stored string
	suite.agencyRepo.On("SetShareToken", ctx, agencyID, mock.MatchedBy(func(token string) bool {
		stored = token
		return len(token) == 64
	})).Return(nil)

	token, err := suite.service.Generate(ctx, agencyID)

	suite.NoError(err)
	suite.Len(token, 64)
	suite.Equal(stored, token)
	for _, r := range token {
		suite.Contains("0123456789abcdef", string(r))
	}
}

func (suite *ShareServiceTestSuite) TestGenerate_TokensAreUnique() {
	ctx := context.Background()
	agencyID := uuid.New()

	suite.agencyRepo.On("GetByID", ctx, agencyID).Return(&models.Agency{ID: agencyID}, nil)
	suite.agencyRepo.On("SetShareToken", ctx, agencyID, mock.Anything).Return(nil)

	first, err := suite.service.Generate(ctx, agencyID)
	suite.NoError(err)
	second, err := suite.service.Generate(ctx, agencyID)
	suite.NoError(err)

	suite.NotEqual(first, second)
}

func (suite *ShareServiceTestSuite) TestResolve_ReturnsAgencyAndClients() {
	ctx := context.Background()
	agency := &models.Agency{ID: uuid.New(), Slug: "bright", OpsShareViewCount: 5}
	clients := []*models.Client{{ID: uuid.New(), AgencyID: agency.ID, Slug: "acme"}}

	suite.agencyRepo.On("RecordShareAccess", ctx, "token123").Return(agency, nil)
	suite.clientRepo.On("ListByAgency", ctx, agency.ID).Return(clients, nil)

	payload, err := suite.service.Resolve(ctx, "token123")

	suite.NoError(err)
	suite.Equal(agency, payload.Agency)
	suite.Len(payload.Clients, 1)
}

func (suite *ShareServiceTestSuite) TestResolve_UnknownTokenIsNotFound() {
	ctx := context.Background()
	suite.agencyRepo.On("RecordShareAccess", ctx, "nope").Return(nil, pgx.ErrNoRows)

	payload, err := suite.service.Resolve(ctx, "nope")

	suite.Nil(payload)
	var apiErr *apierrors.APIError
	suite.ErrorAs(err, &apiErr)
	suite.Equal(apierrors.KindNotFound, apiErr.Kind)
}

func (suite *ShareServiceTestSuite) TestDisable() {
	ctx := context.Background()
	agencyID := uuid.New()

	suite.agencyRepo.On("GetByID", ctx, agencyID).Return(&models.Agency{ID: agencyID}, nil)
	suite.agencyRepo.On("SetShareEnabled", ctx, agencyID, false).Return(nil)

	suite.NoError(suite.service.Disable(ctx, agencyID))
}
