package repositories

import (
	"context"

	"pulsedash/internal/models"

	"github.com/google/uuid"
)

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	GetBySlug(ctx context.Context, slug string) (*models.Client, error)
	ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]*models.Client, error)
	ListActive(ctx context.Context) ([]*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	UpdateCredential(ctx context.Context, id uuid.UUID, encryptedCredential string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	TouchSynced(ctx context.Context, id uuid.UUID) error
}

type clientRepo struct {
	db DBTX
}

func NewClientRepository(db DBTX) ClientRepository {
	return &clientRepo{db: db}
}

const clientColumns = `id, agency_id, name, slug, api_credential, primary_color, secondary_color,
		logo_url, active, last_synced_at, created_at, updated_at`

func scanClient(row interface{ Scan(dest ...any) error }) (*models.Client, error) {
	client := &models.Client{}
	err := row.Scan(&client.ID, &client.AgencyID, &client.Name, &client.Slug,
		&client.APICredential, &client.PrimaryColor, &client.SecondaryColor,
		&client.LogoURL, &client.Active, &client.LastSyncedAt,
		&client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (id, agency_id, name, slug, api_credential, primary_color, secondary_color, logo_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, client.ID, client.AgencyID, client.Name, client.Slug,
		client.APICredential, client.PrimaryColor, client.SecondaryColor, client.LogoURL, client.Active)
	return err
}

func (r *clientRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(r.db.QueryRow(ctx, query, id))
}

func (r *clientRepo) GetBySlug(ctx context.Context, slug string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE slug = $1`
	return scanClient(r.db.QueryRow(ctx, query, slug))
}

func (r *clientRepo) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE agency_id = $1 ORDER BY name`
	return r.list(ctx, query, agencyID)
}

func (r *clientRepo) ListActive(ctx context.Context) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE active = TRUE ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *clientRepo) list(ctx context.Context, query string, args ...any) ([]*models.Client, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *clientRepo) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $1, slug = $2, primary_color = $3, secondary_color = $4, logo_url = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, client.Name, client.Slug, client.PrimaryColor,
		client.SecondaryColor, client.LogoURL, client.ID)
	return err
}

func (r *clientRepo) UpdateCredential(ctx context.Context, id uuid.UUID, encryptedCredential string) error {
	query := `UPDATE clients SET api_credential = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, encryptedCredential, id)
	return err
}

func (r *clientRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE clients SET active = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, active, id)
	return err
}

func (r *clientRepo) TouchSynced(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE clients SET last_synced_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
