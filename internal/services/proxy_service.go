package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/klaviyo"
	"pulsedash/internal/repositories"
	"pulsedash/internal/secrets"
)

// Proxy actions exposed on the passthrough route.
const (
	ProxyActionCampaigns         = "campaigns"
	ProxyActionFlows             = "flows"
	ProxyActionFlowActions       = "flow-actions"
	ProxyActionFlowMessages      = "flow-messages"
	ProxyActionTemplates         = "templates"
	ProxyActionCampaignAnalytics = "campaign-analytics"
	ProxyActionFlowAnalytics     = "flow-analytics"
)

// ProxyRequest carries the per-action parameters. ID is the flow or action
// ID for the scoped listings; Timeframe applies to the analytics actions.
type ProxyRequest struct {
	ID        string `json:"id"`
	Timeframe string `json:"timeframe"`
}

// ProxyService resolves a client, decrypts its stored credential and relays
// one Klaviyo call. Nothing it returns is persisted.
type ProxyService interface {
	Relay(ctx context.Context, clientSlug, action string, req *ProxyRequest) (interface{}, error)
}

type proxyService struct {
	clientRepo         repositories.ClientRepository
	credentials        *secrets.CredentialStore
	api                klaviyo.API
	conversionMetricID string
	logger             *zap.Logger
}

func NewProxyService(
	clientRepo repositories.ClientRepository,
	credentials *secrets.CredentialStore,
	api klaviyo.API,
	conversionMetricID string,
	logger *zap.Logger,
) ProxyService {
	return &proxyService{
		clientRepo:         clientRepo,
		credentials:        credentials,
		api:                api,
		conversionMetricID: conversionMetricID,
		logger:             logger,
	}
}

func (s *proxyService) Relay(ctx context.Context, clientSlug, action string, req *ProxyRequest) (interface{}, error) {
	client, err := s.clientRepo.GetBySlug(ctx, clientSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("client")
		}
		return nil, err
	}
	if client.APICredential == "" {
		return nil, apierrors.Validation("client has no stored credential")
	}

	apiKey, err := s.credentials.Decrypt(client.APICredential)
	if err != nil {
		return nil, apierrors.Decryption(err)
	}

	if req == nil {
		req = &ProxyRequest{}
	}

	result, err := s.dispatch(ctx, apiKey, action, req)
	if err != nil {
		var apiErr *apierrors.APIError
		if errors.As(err, &apiErr) {
			return nil, err
		}
		if errors.Is(err, klaviyo.ErrAuthentication) {
			return nil, apierrors.Auth("stored credential was rejected by the platform")
		}
		return nil, apierrors.Upstream("proxy call failed", err)
	}
	return result, nil
}

func (s *proxyService) dispatch(ctx context.Context, apiKey, action string, req *ProxyRequest) (interface{}, error) {
	switch action {
	case ProxyActionCampaigns:
		return s.api.GetCampaigns(ctx, apiKey, "email")
	case ProxyActionFlows:
		return s.api.GetFlows(ctx, apiKey)
	case ProxyActionFlowActions:
		if req.ID == "" {
			return nil, apierrors.Validation("id is required for %s", action)
		}
		return s.api.GetFlowActions(ctx, apiKey, req.ID)
	case ProxyActionFlowMessages:
		if req.ID == "" {
			return nil, apierrors.Validation("id is required for %s", action)
		}
		return s.api.GetFlowActionMessages(ctx, apiKey, req.ID)
	case ProxyActionTemplates:
		return s.api.GetTemplates(ctx, apiKey)
	case ProxyActionCampaignAnalytics:
		report, err := s.reportRequest(req)
		if err != nil {
			return nil, err
		}
		return s.api.CampaignValuesReport(ctx, apiKey, report)
	case ProxyActionFlowAnalytics:
		report, err := s.reportRequest(req)
		if err != nil {
			return nil, err
		}
		return s.api.FlowValuesReport(ctx, apiKey, report)
	default:
		return nil, apierrors.Validation("unknown proxy action %q", action)
	}
}

func (s *proxyService) reportRequest(req *ProxyRequest) (klaviyo.ValuesReportRequest, error) {
	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = "last-30-days"
	}
	if _, _, err := common.ValidateTimeframe(timeframe); err != nil {
		return klaviyo.ValuesReportRequest{}, apierrors.Validation("%v", err)
	}
	return klaviyo.ValuesReportRequest{
		Statistics:         klaviyo.SyncStatistics,
		Timeframe:          klaviyoTimeframe(timeframe),
		ConversionMetricID: s.conversionMetricID,
	}, nil
}
