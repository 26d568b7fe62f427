package repositories

import (
	"context"

	"pulsedash/internal/models"

	"github.com/google/uuid"
)

type FlowMessageRepository interface {
	Upsert(ctx context.Context, message *models.FlowMessage) error
	ListByFlow(ctx context.Context, clientID, flowID uuid.UUID) ([]*models.FlowMessage, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
}

type flowMessageRepo struct {
	db DBTX
}

func NewFlowMessageRepository(db DBTX) FlowMessageRepository {
	return &flowMessageRepo{db: db}
}

func (r *flowMessageRepo) Upsert(ctx context.Context, message *models.FlowMessage) error {
	query := `
		INSERT INTO flow_messages (id, client_id, flow_id, klaviyo_id, name, channel, subject, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (client_id, klaviyo_id)
		DO UPDATE SET flow_id = EXCLUDED.flow_id, name = EXCLUDED.name, channel = EXCLUDED.channel,
		              subject = EXCLUDED.subject, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, message.ID, message.ClientID, message.FlowID,
		message.KlaviyoID, message.Name, message.Channel, message.Subject)
	return err
}

func (r *flowMessageRepo) ListByFlow(ctx context.Context, clientID, flowID uuid.UUID) ([]*models.FlowMessage, error) {
	query := `
		SELECT id, client_id, flow_id, klaviyo_id, name, channel, subject, created_at, updated_at
		FROM flow_messages
		WHERE client_id = $1 AND flow_id = $2
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, clientID, flowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.FlowMessage
	for rows.Next() {
		message := &models.FlowMessage{}
		if err := rows.Scan(&message.ID, &message.ClientID, &message.FlowID, &message.KlaviyoID,
			&message.Name, &message.Channel, &message.Subject, &message.CreatedAt, &message.UpdatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (r *flowMessageRepo) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM flow_messages WHERE client_id = $1`, clientID).Scan(&count)
	return count, err
}
