package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/models"
)

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]*models.UserProfile, error) {
	args := m.Called(ctx, agencyID)
	return args.Get(0).([]*models.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) ListByAgencyClients(ctx context.Context, agencyID uuid.UUID) ([]*models.UserProfile, error) {
	args := m.Called(ctx, agencyID)
	return args.Get(0).([]*models.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockIdentityAdmin struct {
	mock.Mock
}

func (m *MockIdentityAdmin) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

type UserServiceTestSuite struct {
	suite.Suite
	profileRepo *MockProfileRepository
	idp         *MockIdentityAdmin
	service     UserService
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.profileRepo = &MockProfileRepository{}
	suite.idp = &MockIdentityAdmin{}
	suite.service = NewUserService(suite.profileRepo, suite.idp, zap.NewNop())
}

func (suite *UserServiceTestSuite) TearDownTest() {
	suite.profileRepo.AssertExpectations(suite.T())
	suite.idp.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) TestDelete_ProfileThenAccount() {
	ctx := context.Background()
	id := uuid.New()

	suite.profileRepo.On("GetByID", ctx, id).Return(&models.UserProfile{ID: id}, nil)
	suite.profileRepo.On("Delete", ctx, id).Return(nil)
	suite.idp.On("DeleteAccount", ctx, id).Return(nil)

	suite.NoError(suite.service.Delete(ctx, id))
}

func (suite *UserServiceTestSuite) TestDelete_UnknownUser() {
	ctx := context.Background()
	id := uuid.New()

	suite.profileRepo.On("GetByID", ctx, id).Return(nil, pgx.ErrNoRows)

	err := suite.service.Delete(ctx, id)

	var apiErr *apierrors.APIError
	suite.ErrorAs(err, &apiErr)
	suite.Equal(apierrors.KindNotFound, apiErr.Kind)
}

func (suite *UserServiceTestSuite) TestDelete_ProviderFailureIsReported() {
	ctx := context.Background()
	id := uuid.New()

	suite.profileRepo.On("GetByID", ctx, id).Return(&models.UserProfile{ID: id}, nil)
	suite.profileRepo.On("Delete", ctx, id).Return(nil)
	suite.idp.On("DeleteAccount", ctx, id).Return(errors.New("provider down"))

	err := suite.service.Delete(ctx, id)

	suite.Error(err)
	var apiErr *apierrors.APIError
	suite.ErrorAs(err, &apiErr)
	suite.Equal(apierrors.KindUpstream, apiErr.Kind)
}

func (suite *UserServiceTestSuite) TestDelete_ProfileDeleteFailureSkipsProvider() {
	ctx := context.Background()
	id := uuid.New()

	suite.profileRepo.On("GetByID", ctx, id).Return(&models.UserProfile{ID: id}, nil)
	suite.profileRepo.On("Delete", ctx, id).Return(errors.New("db down"))

	suite.Error(suite.service.Delete(ctx, id))
}
