package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/klaviyo"
	"pulsedash/internal/models"
	"pulsedash/internal/repositories"
	"pulsedash/internal/secrets"
)

// SyncStage is the phase a sync run is in. Stages advance strictly
// forward; a failed run keeps the stage it failed in.
type SyncStage string

const (
	StageStarted            SyncStage = "started"
	StageFetchingCredential SyncStage = "fetching_credential"
	StageFetchingExternal   SyncStage = "fetching_external_data"
	StagePersisting         SyncStage = "persisting"
	StageCompleted          SyncStage = "completed"
	StageFailed             SyncStage = "failed"
)

// SyncResult reports one client's sync outcome. Sync-all collects one per
// client; a failure never aborts the other clients' runs.
type SyncResult struct {
	ClientID    uuid.UUID `json:"client_id"`
	ClientSlug  string    `json:"client"`
	ClientName  string    `json:"client_name"`
	Success     bool      `json:"success"`
	Stage       SyncStage `json:"stage"`
	FailedStage SyncStage `json:"failed_stage,omitempty"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Campaigns   int       `json:"campaigns"`
	Flows       int       `json:"flows"`
	Messages    int       `json:"messages"`
	Snapshots   int       `json:"snapshots"`
}

type SyncService interface {
	SyncClientBySlug(ctx context.Context, slug string) (*SyncResult, error)
	SyncAll(ctx context.Context) []*SyncResult
}

type syncService struct {
	clientRepo         repositories.ClientRepository
	campaignRepo       repositories.CampaignRepository
	flowRepo           repositories.FlowRepository
	flowMessageRepo    repositories.FlowMessageRepository
	metricRepo         repositories.MetricRepository
	credentials        *secrets.CredentialStore
	api                klaviyo.API
	conversionMetricID string
	timeframe          string
	workers            int
	logger             *zap.Logger
}

func NewSyncService(
	clientRepo repositories.ClientRepository,
	campaignRepo repositories.CampaignRepository,
	flowRepo repositories.FlowRepository,
	flowMessageRepo repositories.FlowMessageRepository,
	metricRepo repositories.MetricRepository,
	credentials *secrets.CredentialStore,
	api klaviyo.API,
	conversionMetricID string,
	workers int,
	logger *zap.Logger,
) SyncService {
	if workers <= 0 {
		workers = 4
	}
	return &syncService{
		clientRepo:         clientRepo,
		campaignRepo:       campaignRepo,
		flowRepo:           flowRepo,
		flowMessageRepo:    flowMessageRepo,
		metricRepo:         metricRepo,
		credentials:        credentials,
		api:                api,
		conversionMetricID: conversionMetricID,
		timeframe:          "last-30-days",
		workers:            workers,
		logger:             logger,
	}
}

func (s *syncService) SyncClientBySlug(ctx context.Context, slug string) (*SyncResult, error) {
	client, err := s.clientRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("client")
		}
		return nil, apierrors.Upstream("failed to resolve client", err)
	}

	result := s.syncClient(ctx, client)
	if !result.Success {
		return result, apierrors.Upstream(result.Message, nil)
	}
	return result, nil
}

// SyncAll syncs every active client through a bounded worker pool. Each
// client is an independent unit of work; results are collected per client
// and one failure never blocks the rest.
func (s *syncService) SyncAll(ctx context.Context) []*SyncResult {
	clients, err := s.clientRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list clients for sync", zap.Error(err))
		return nil
	}

	jobs := make(chan *models.Client)
	results := make([]*SyncResult, len(clients))
	index := make(map[uuid.UUID]int, len(clients))
	for i, client := range clients {
		index[client.ID] = i
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for client := range jobs {
				result := s.syncClient(ctx, client)
				mu.Lock()
				results[index[client.ID]] = result
				mu.Unlock()
			}
		}()
	}

	for _, client := range clients {
		jobs <- client
	}
	close(jobs)
	wg.Wait()

	succeeded := 0
	for _, result := range results {
		if result != nil && result.Success {
			succeeded++
		}
	}
	s.logger.Info("sync-all finished",
		zap.Int("clients", len(clients)),
		zap.Int("succeeded", succeeded))
	return results
}

// syncClient runs the full state machine for one client. Fetch errors and
// persistence errors land in the result; they are never fatal to the caller.
func (s *syncService) syncClient(ctx context.Context, client *models.Client) *SyncResult {
	result := &SyncResult{
		ClientID:   client.ID,
		ClientSlug: client.Slug,
		ClientName: client.Name,
		Stage:      StageStarted,
	}
	s.logger.Info("sync started", zap.String("client", client.Slug))

	result.Stage = StageFetchingCredential
	apiKey, err := s.credentials.Decrypt(client.APICredential)
	if err != nil {
		return s.fail(result, fmt.Errorf("decrypt credential: %w", err))
	}

	result.Stage = StageFetchingExternal
	fetched, err := s.fetchExternalData(ctx, apiKey)
	if err != nil {
		return s.fail(result, err)
	}

	result.Stage = StagePersisting
	if err := s.persist(ctx, client, fetched, result); err != nil {
		return s.fail(result, err)
	}

	if err := s.clientRepo.TouchSynced(ctx, client.ID); err != nil {
		return s.fail(result, fmt.Errorf("record sync time: %w", err))
	}

	result.Stage = StageCompleted
	result.Success = true
	result.Message = fmt.Sprintf("Sync completed for %s", client.Name)
	result.Timestamp = time.Now().UTC()
	s.logger.Info("sync completed",
		zap.String("client", client.Slug),
		zap.Int("campaigns", result.Campaigns),
		zap.Int("flows", result.Flows),
		zap.Int("messages", result.Messages))
	return result
}

func (s *syncService) fail(result *SyncResult, err error) *SyncResult {
	result.FailedStage = result.Stage
	result.Stage = StageFailed
	result.Success = false
	result.Message = err.Error()
	result.Timestamp = time.Now().UTC()
	s.logger.Error("sync failed",
		zap.String("client", result.ClientSlug),
		zap.String("stage", string(result.FailedStage)),
		zap.Error(err))
	return result
}

// fetchedData is everything one sync run pulls from the external platform.
type fetchedData struct {
	campaigns     []klaviyo.Campaign
	flows         []klaviyo.Flow
	flowMessages  map[string][]klaviyo.FlowMessage // flow klaviyo ID -> messages
	campaignStats []klaviyo.ValuesReportRow
	flowStats     []klaviyo.ValuesReportRow
}

// fetchExternalData pulls campaigns, flows and both analytics reports.
// The four top-level reads are unrelated and run concurrently; flow
// messages depend on the flow list and follow it.
func (s *syncService) fetchExternalData(ctx context.Context, apiKey string) (*fetchedData, error) {
	fetched := &fetchedData{flowMessages: make(map[string][]klaviyo.FlowMessage)}
	report := klaviyo.ValuesReportRequest{
		Statistics:         klaviyo.SyncStatistics,
		Timeframe:          klaviyoTimeframe(s.timeframe),
		ConversionMetricID: s.conversionMetricID,
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil && err != nil {
			firstErr = err
		}
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		campaigns, err := s.api.GetCampaigns(ctx, apiKey, "email")
		record(err)
		fetched.campaigns = campaigns
	}()
	go func() {
		defer wg.Done()
		flows, err := s.api.GetFlows(ctx, apiKey)
		record(err)
		fetched.flows = flows
	}()
	go func() {
		defer wg.Done()
		rows, err := s.api.CampaignValuesReport(ctx, apiKey, report)
		record(err)
		fetched.campaignStats = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := s.api.FlowValuesReport(ctx, apiKey, report)
		record(err)
		fetched.flowStats = rows
	}()
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	for _, flow := range fetched.flows {
		actions, err := s.api.GetFlowActions(ctx, apiKey, flow.ID)
		if err != nil {
			return nil, err
		}
		for _, action := range actions {
			messages, err := s.api.GetFlowActionMessages(ctx, apiKey, action.ID)
			if err != nil {
				return nil, err
			}
			fetched.flowMessages[flow.ID] = append(fetched.flowMessages[flow.ID], messages...)
		}
	}
	return fetched, nil
}

// persist upserts everything fetched, keyed by the platform's own IDs.
// Re-running with unchanged upstream data converges to identical rows.
func (s *syncService) persist(ctx context.Context, client *models.Client, fetched *fetchedData, result *SyncResult) error {
	windowStart, windowEnd := timeframeWindow(s.timeframe)

	for _, campaign := range fetched.campaigns {
		row := &models.Campaign{
			ID:        uuid.New(),
			ClientID:  client.ID,
			KlaviyoID: campaign.ID,
			Name:      campaign.Attributes.Name,
			Status:    campaign.Attributes.Status,
			Channel:   campaign.Attributes.Channel,
			SendTime:  campaign.Attributes.SendTime,
		}
		if row.Channel == "" {
			row.Channel = "email"
		}
		if err := s.campaignRepo.Upsert(ctx, row); err != nil {
			return fmt.Errorf("upsert campaign %s: %w", campaign.ID, err)
		}
		result.Campaigns++
	}

	for _, flow := range fetched.flows {
		row := &models.Flow{
			ID:          uuid.New(),
			ClientID:    client.ID,
			KlaviyoID:   flow.ID,
			Name:        flow.Attributes.Name,
			Status:      flow.Attributes.Status,
			TriggerType: flow.Attributes.TriggerType,
		}
		if err := s.flowRepo.Upsert(ctx, row); err != nil {
			return fmt.Errorf("upsert flow %s: %w", flow.ID, err)
		}
		result.Flows++

		persisted, err := s.flowRepo.GetByKlaviyoID(ctx, client.ID, flow.ID)
		if err != nil {
			return fmt.Errorf("resolve flow %s: %w", flow.ID, err)
		}
		for _, message := range fetched.flowMessages[flow.ID] {
			msgRow := &models.FlowMessage{
				ID:        uuid.New(),
				ClientID:  client.ID,
				FlowID:    persisted.ID,
				KlaviyoID: message.ID,
				Name:      message.Attributes.Name,
				Channel:   message.Attributes.Channel,
				Subject:   message.Attributes.Content.Subject,
			}
			if err := s.flowMessageRepo.Upsert(ctx, msgRow); err != nil {
				return fmt.Errorf("upsert flow message %s: %w", message.ID, err)
			}
			result.Messages++
		}
	}

	for _, row := range fetched.campaignStats {
		entityID := row.GroupedBy["campaign_id"]
		if entityID == "" {
			continue
		}
		if err := s.upsertSnapshot(ctx, client.ID, models.MetricEntityCampaign,
			entityID, row, windowStart, windowEnd); err != nil {
			return err
		}
		result.Snapshots++
	}
	for _, row := range fetched.flowStats {
		kind := models.MetricEntityFlow
		entityID := row.GroupedBy["flow_id"]
		if messageID := row.GroupedBy["flow_message_id"]; messageID != "" {
			kind = models.MetricEntityFlowMessage
			entityID = messageID
		}
		if entityID == "" {
			continue
		}
		if err := s.upsertSnapshot(ctx, client.ID, kind, entityID, row, windowStart, windowEnd); err != nil {
			return err
		}
		result.Snapshots++
	}
	return nil
}

func (s *syncService) upsertSnapshot(ctx context.Context, clientID uuid.UUID, kind, entityID string, row klaviyo.ValuesReportRow, windowStart, windowEnd time.Time) error {
	snapshot := &models.MetricSnapshot{
		ID:          uuid.New(),
		ClientID:    clientID,
		EntityKind:  kind,
		EntityID:    entityID,
		Timeframe:   s.timeframe,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Delivered:   int64(row.Statistics["delivered"]),
		OpenRate:    row.Statistics["open_rate"],
		ClickRate:   row.Statistics["click_rate"],
		Revenue:     row.Statistics["conversion_value"],
	}
	if err := s.metricRepo.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("upsert %s snapshot %s: %w", kind, entityID, err)
	}
	return nil
}

// klaviyoTimeframe converts our timeframe keys to the platform's
// (last-30-days -> last_30_days).
func klaviyoTimeframe(timeframe string) string {
	return strings.ReplaceAll(timeframe, "-", "_")
}

func timeframeWindow(timeframe string) (time.Time, time.Time) {
	end := time.Now().UTC()
	switch timeframe {
	case "last-7-days":
		return end.AddDate(0, 0, -7), end
	case "last-90-days":
		return end.AddDate(0, 0, -90), end
	case "last-365-days":
		return end.AddDate(0, 0, -365), end
	default:
		return end.AddDate(0, 0, -30), end
	}
}
