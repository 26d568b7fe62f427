package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"pulsedash/internal/models"
)

type FlowMessageRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     FlowMessageRepository
	clientID uuid.UUID
	ctx      context.Context
}

func (suite *FlowMessageRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewFlowMessageRepository(mock)
	suite.clientID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *FlowMessageRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestFlowMessageRepoTestSuite(t *testing.T) {
	suite.Run(t, new(FlowMessageRepoTestSuite))
}

func (suite *FlowMessageRepoTestSuite) TestUpsert_ConflictsOnClientAndKlaviyoID() {
	message := &models.FlowMessage{
		ID:        uuid.New(),
		ClientID:  suite.clientID,
		FlowID:    uuid.New(),
		KlaviyoID: "MSG456",
		Name:      "Welcome Email 1",
		Channel:   "email",
		Subject:   "Welcome aboard",
	}

	suite.mock.ExpectExec(`(?s)INSERT INTO flow_messages.+ON CONFLICT \(client_id, klaviyo_id\)\s+DO UPDATE SET flow_id = EXCLUDED\.flow_id`).
		WithArgs(message.ID, message.ClientID, message.FlowID,
			message.KlaviyoID, message.Name, message.Channel, message.Subject).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	suite.NoError(suite.repo.Upsert(suite.ctx, message))
}

func (suite *FlowMessageRepoTestSuite) TestUpsert_RerunUpdatesSameRow() {
	message := &models.FlowMessage{
		ID:        uuid.New(),
		ClientID:  suite.clientID,
		FlowID:    uuid.New(),
		KlaviyoID: "MSG456",
		Name:      "Welcome Email 1",
		Channel:   "email",
		Subject:   "Welcome aboard",
	}

	for i := 0; i < 2; i++ {
		suite.mock.ExpectExec(`ON CONFLICT \(client_id, klaviyo_id\)`).
			WithArgs(message.ID, message.ClientID, message.FlowID,
				message.KlaviyoID, message.Name, message.Channel, message.Subject).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	suite.NoError(suite.repo.Upsert(suite.ctx, message))
	suite.NoError(suite.repo.Upsert(suite.ctx, message))
}
