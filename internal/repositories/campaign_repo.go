package repositories

import (
	"context"

	"pulsedash/internal/models"

	"github.com/google/uuid"
)

type CampaignRepository interface {
	Upsert(ctx context.Context, campaign *models.Campaign) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Campaign, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
}

type campaignRepo struct {
	db DBTX
}

func NewCampaignRepository(db DBTX) CampaignRepository {
	return &campaignRepo{db: db}
}

// Upsert writes a campaign keyed by (client_id, klaviyo_id). Re-running a
// sync with unchanged upstream data converges to the same row.
func (r *campaignRepo) Upsert(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, client_id, klaviyo_id, name, status, channel, send_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (client_id, klaviyo_id)
		DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status, channel = EXCLUDED.channel,
		              send_time = EXCLUDED.send_time, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, campaign.ID, campaign.ClientID, campaign.KlaviyoID,
		campaign.Name, campaign.Status, campaign.Channel, campaign.SendTime)
	return err
}

func (r *campaignRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Campaign, error) {
	query := `
		SELECT id, client_id, klaviyo_id, name, status, channel, send_time, created_at, updated_at
		FROM campaigns
		WHERE client_id = $1
		ORDER BY send_time DESC NULLS LAST
	`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		campaign := &models.Campaign{}
		if err := rows.Scan(&campaign.ID, &campaign.ClientID, &campaign.KlaviyoID,
			&campaign.Name, &campaign.Status, &campaign.Channel, &campaign.SendTime,
			&campaign.CreatedAt, &campaign.UpdatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}

func (r *campaignRepo) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM campaigns WHERE client_id = $1`, clientID).Scan(&count)
	return count, err
}
