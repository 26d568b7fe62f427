package repositories

import (
	"context"

	"pulsedash/internal/models"

	"github.com/google/uuid"
)

type FlowRepository interface {
	Upsert(ctx context.Context, flow *models.Flow) error
	GetByKlaviyoID(ctx context.Context, clientID uuid.UUID, klaviyoID string) (*models.Flow, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Flow, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
}

type flowRepo struct {
	db DBTX
}

func NewFlowRepository(db DBTX) FlowRepository {
	return &flowRepo{db: db}
}

func (r *flowRepo) Upsert(ctx context.Context, flow *models.Flow) error {
	query := `
		INSERT INTO flows (id, client_id, klaviyo_id, name, status, trigger_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (client_id, klaviyo_id)
		DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status,
		              trigger_type = EXCLUDED.trigger_type, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, flow.ID, flow.ClientID, flow.KlaviyoID,
		flow.Name, flow.Status, flow.TriggerType)
	return err
}

func (r *flowRepo) GetByKlaviyoID(ctx context.Context, clientID uuid.UUID, klaviyoID string) (*models.Flow, error) {
	query := `
		SELECT id, client_id, klaviyo_id, name, status, trigger_type, created_at, updated_at
		FROM flows
		WHERE client_id = $1 AND klaviyo_id = $2
	`
	flow := &models.Flow{}
	err := r.db.QueryRow(ctx, query, clientID, klaviyoID).Scan(&flow.ID, &flow.ClientID,
		&flow.KlaviyoID, &flow.Name, &flow.Status, &flow.TriggerType, &flow.CreatedAt, &flow.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return flow, nil
}

func (r *flowRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Flow, error) {
	query := `
		SELECT id, client_id, klaviyo_id, name, status, trigger_type, created_at, updated_at
		FROM flows
		WHERE client_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flows []*models.Flow
	for rows.Next() {
		flow := &models.Flow{}
		if err := rows.Scan(&flow.ID, &flow.ClientID, &flow.KlaviyoID, &flow.Name,
			&flow.Status, &flow.TriggerType, &flow.CreatedAt, &flow.UpdatedAt); err != nil {
			return nil, err
		}
		flows = append(flows, flow)
	}
	return flows, rows.Err()
}

func (r *flowRepo) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM flows WHERE client_id = $1`, clientID).Scan(&count)
	return count, err
}
