package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"pulsedash/internal/models"
)

type MetricRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     MetricRepository
	clientID uuid.UUID
	ctx      context.Context
}

func (suite *MetricRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewMetricRepository(mock)
	suite.clientID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *MetricRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestMetricRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MetricRepoTestSuite))
}

func (suite *MetricRepoTestSuite) snapshot() *models.MetricSnapshot {
	now := time.Now()
	return &models.MetricSnapshot{
		ID:          uuid.New(),
		ClientID:    suite.clientID,
		EntityKind:  models.MetricEntityCampaign,
		EntityID:    "01ABCDEF",
		Timeframe:   "last-30-days",
		WindowStart: now.AddDate(0, 0, -30),
		WindowEnd:   now,
		Delivered:   1200,
		OpenRate:    0.42,
		ClickRate:   0.07,
		Revenue:     3150.25,
	}
}

func (suite *MetricRepoTestSuite) TestUpsert_ConflictsOnEntityAndTimeframe() {
	snapshot := suite.snapshot()

	suite.mock.ExpectExec(`(?s)INSERT INTO metric_snapshots.+ON CONFLICT \(client_id, entity_kind, entity_id, timeframe\)\s+DO UPDATE SET`).
		WithArgs(snapshot.ID, snapshot.ClientID, snapshot.EntityKind,
			snapshot.EntityID, snapshot.Timeframe, snapshot.WindowStart, snapshot.WindowEnd,
			snapshot.Delivered, snapshot.OpenRate, snapshot.ClickRate, snapshot.Revenue).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	suite.NoError(suite.repo.Upsert(suite.ctx, snapshot))
}

func (suite *MetricRepoTestSuite) TestUpsert_RerunUpdatesSameRow() {
	snapshot := suite.snapshot()

	for i := 0; i < 2; i++ {
		suite.mock.ExpectExec(`ON CONFLICT \(client_id, entity_kind, entity_id, timeframe\)`).
			WithArgs(snapshot.ID, snapshot.ClientID, snapshot.EntityKind,
				snapshot.EntityID, snapshot.Timeframe, snapshot.WindowStart, snapshot.WindowEnd,
				snapshot.Delivered, snapshot.OpenRate, snapshot.ClickRate, snapshot.Revenue).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	suite.NoError(suite.repo.Upsert(suite.ctx, snapshot))
	suite.NoError(suite.repo.Upsert(suite.ctx, snapshot))
}
