package repositories

import (
	"context"

	"pulsedash/internal/models"

	"github.com/google/uuid"
)

// FlowMessageMetrics is a flow message joined with its snapshot for one
// timeframe, as served by the flow-emails endpoint.
type FlowMessageMetrics struct {
	Message  *models.FlowMessage    `json:"message"`
	Snapshot *models.MetricSnapshot `json:"metrics"`
}

type MetricRepository interface {
	Upsert(ctx context.Context, snapshot *models.MetricSnapshot) error
	GetForEntity(ctx context.Context, clientID uuid.UUID, entityKind, entityID, timeframe string) (*models.MetricSnapshot, error)
	ListFlowMessageMetrics(ctx context.Context, clientID, flowID uuid.UUID, timeframe string) ([]*FlowMessageMetrics, error)
}

type metricRepo struct {
	db DBTX
}

func NewMetricRepository(db DBTX) MetricRepository {
	return &metricRepo{db: db}
}

// Upsert writes the snapshot for (client, entity, timeframe). Each sync run
// updates the current window's row in place; it never duplicates.
func (r *metricRepo) Upsert(ctx context.Context, snapshot *models.MetricSnapshot) error {
	query := `
		INSERT INTO metric_snapshots (id, client_id, entity_kind, entity_id, timeframe, window_start, window_end,
		                              delivered, open_rate, click_rate, revenue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (client_id, entity_kind, entity_id, timeframe)
		DO UPDATE SET window_start = EXCLUDED.window_start, window_end = EXCLUDED.window_end,
		              delivered = EXCLUDED.delivered, open_rate = EXCLUDED.open_rate,
		              click_rate = EXCLUDED.click_rate, revenue = EXCLUDED.revenue, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, snapshot.ID, snapshot.ClientID, snapshot.EntityKind,
		snapshot.EntityID, snapshot.Timeframe, snapshot.WindowStart, snapshot.WindowEnd,
		snapshot.Delivered, snapshot.OpenRate, snapshot.ClickRate, snapshot.Revenue)
	return err
}

func (r *metricRepo) GetForEntity(ctx context.Context, clientID uuid.UUID, entityKind, entityID, timeframe string) (*models.MetricSnapshot, error) {
	query := `
		SELECT id, client_id, entity_kind, entity_id, timeframe, window_start, window_end,
		       delivered, open_rate, click_rate, revenue, created_at, updated_at
		FROM metric_snapshots
		WHERE client_id = $1 AND entity_kind = $2 AND entity_id = $3 AND timeframe = $4
	`
	snapshot := &models.MetricSnapshot{}
	err := r.db.QueryRow(ctx, query, clientID, entityKind, entityID, timeframe).Scan(
		&snapshot.ID, &snapshot.ClientID, &snapshot.EntityKind, &snapshot.EntityID,
		&snapshot.Timeframe, &snapshot.WindowStart, &snapshot.WindowEnd,
		&snapshot.Delivered, &snapshot.OpenRate, &snapshot.ClickRate, &snapshot.Revenue,
		&snapshot.CreatedAt, &snapshot.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *metricRepo) ListFlowMessageMetrics(ctx context.Context, clientID, flowID uuid.UUID, timeframe string) ([]*FlowMessageMetrics, error) {
	query := `
		SELECT m.id, m.client_id, m.flow_id, m.klaviyo_id, m.name, m.channel, m.subject, m.created_at, m.updated_at,
		       s.id, s.client_id, s.entity_kind, s.entity_id, s.timeframe, s.window_start, s.window_end,
		       s.delivered, s.open_rate, s.click_rate, s.revenue, s.created_at, s.updated_at
		FROM flow_messages m
		JOIN metric_snapshots s
		  ON s.client_id = m.client_id AND s.entity_kind = 'flow_message'
		 AND s.entity_id = m.klaviyo_id AND s.timeframe = $3
		WHERE m.client_id = $1 AND m.flow_id = $2
		ORDER BY m.name
	`
	rows, err := r.db.Query(ctx, query, clientID, flowID, timeframe)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*FlowMessageMetrics
	for rows.Next() {
		message := &models.FlowMessage{}
		snapshot := &models.MetricSnapshot{}
		if err := rows.Scan(
			&message.ID, &message.ClientID, &message.FlowID, &message.KlaviyoID,
			&message.Name, &message.Channel, &message.Subject, &message.CreatedAt, &message.UpdatedAt,
			&snapshot.ID, &snapshot.ClientID, &snapshot.EntityKind, &snapshot.EntityID,
			&snapshot.Timeframe, &snapshot.WindowStart, &snapshot.WindowEnd,
			&snapshot.Delivered, &snapshot.OpenRate, &snapshot.ClickRate, &snapshot.Revenue,
			&snapshot.CreatedAt, &snapshot.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, &FlowMessageMetrics{Message: message, Snapshot: snapshot})
	}
	return results, rows.Err()
}
