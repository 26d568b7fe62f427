package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/models"
	"pulsedash/internal/repositories"
)

// FlowEmailReport is the per-message metric listing for one flow.
type FlowEmailReport struct {
	Client    *models.Client                     `json:"client"`
	Flow      *models.Flow                       `json:"flow"`
	Timeframe string                             `json:"timeframe"`
	Messages  []*repositories.FlowMessageMetrics `json:"messages"`
}

// CampaignReport lists a client's campaigns with their metric snapshots
// for the requested timeframe. Campaigns with no snapshot for the window
// appear with a nil Metrics entry.
type CampaignReport struct {
	Client    *models.Client     `json:"client"`
	Timeframe string             `json:"timeframe"`
	Campaigns []*CampaignMetrics `json:"campaigns"`
}

type CampaignMetrics struct {
	Campaign *models.Campaign       `json:"campaign"`
	Metrics  *models.MetricSnapshot `json:"metrics"`
}

type MetricsService interface {
	FlowEmails(ctx context.Context, clientSlug, flowKlaviyoID, timeframe string) (*FlowEmailReport, error)
	Campaigns(ctx context.Context, clientSlug, timeframe string) (*CampaignReport, error)
}

type metricsService struct {
	clientRepo   repositories.ClientRepository
	flowRepo     repositories.FlowRepository
	campaignRepo repositories.CampaignRepository
	metricRepo   repositories.MetricRepository
	logger       *zap.Logger
}

func NewMetricsService(
	clientRepo repositories.ClientRepository,
	flowRepo repositories.FlowRepository,
	campaignRepo repositories.CampaignRepository,
	metricRepo repositories.MetricRepository,
	logger *zap.Logger,
) MetricsService {
	return &metricsService{
		clientRepo:   clientRepo,
		flowRepo:     flowRepo,
		campaignRepo: campaignRepo,
		metricRepo:   metricRepo,
		logger:       logger,
	}
}

func (s *metricsService) FlowEmails(ctx context.Context, clientSlug, flowKlaviyoID, timeframe string) (*FlowEmailReport, error) {
	if _, _, err := common.ValidateTimeframe(timeframe); err != nil {
		return nil, apierrors.Validation("%v", err)
	}

	client, err := s.clientRepo.GetBySlug(ctx, clientSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("client")
		}
		return nil, err
	}

	flow, err := s.flowRepo.GetByKlaviyoID(ctx, client.ID, flowKlaviyoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("flow")
		}
		return nil, err
	}

	messages, err := s.metricRepo.ListFlowMessageMetrics(ctx, client.ID, flow.ID, timeframe)
	if err != nil {
		return nil, err
	}

	return &FlowEmailReport{
		Client:    client,
		Flow:      flow,
		Timeframe: timeframe,
		Messages:  messages,
	}, nil
}

func (s *metricsService) Campaigns(ctx context.Context, clientSlug, timeframe string) (*CampaignReport, error) {
	if _, _, err := common.ValidateTimeframe(timeframe); err != nil {
		return nil, apierrors.Validation("%v", err)
	}

	client, err := s.clientRepo.GetBySlug(ctx, clientSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("client")
		}
		return nil, err
	}

	campaigns, err := s.campaignRepo.ListByClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}

	report := &CampaignReport{Client: client, Timeframe: timeframe, Campaigns: make([]*CampaignMetrics, 0, len(campaigns))}
	for _, campaign := range campaigns {
		snapshot, err := s.metricRepo.GetForEntity(ctx, client.ID, models.MetricEntityCampaign, campaign.KlaviyoID, timeframe)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		report.Campaigns = append(report.Campaigns, &CampaignMetrics{Campaign: campaign, Metrics: snapshot})
	}
	return report, nil
}
