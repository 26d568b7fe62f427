package repositories

import (
	"context"
	"time"

	"pulsedash/internal/models"

	"github.com/google/uuid"
)

type AgencyRepository interface {
	Create(ctx context.Context, agency *models.Agency) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agency, error)
	GetBySlug(ctx context.Context, slug string) (*models.Agency, error)
	UpdateBranding(ctx context.Context, agency *models.Agency) error
	List(ctx context.Context, limit, offset int) ([]*models.Agency, error)
	SetShareToken(ctx context.Context, id uuid.UUID, token string) error
	SetShareEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	RecordShareAccess(ctx context.Context, token string) (*models.Agency, error)
	DisableStaleShareTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

type agencyRepo struct {
	db DBTX
}

func NewAgencyRepository(db DBTX) AgencyRepository {
	return &agencyRepo{db: db}
}

const agencyColumns = `id, name, slug, primary_color, secondary_color, logo_url, custom_domain,
		ops_share_token, ops_share_enabled, ops_share_view_count, ops_share_last_access,
		created_at, updated_at`

func scanAgency(row interface{ Scan(dest ...any) error }) (*models.Agency, error) {
	agency := &models.Agency{}
	err := row.Scan(&agency.ID, &agency.Name, &agency.Slug, &agency.PrimaryColor,
		&agency.SecondaryColor, &agency.LogoURL, &agency.CustomDomain,
		&agency.OpsShareToken, &agency.OpsShareEnabled, &agency.OpsShareViewCount,
		&agency.OpsShareLastAccess, &agency.CreatedAt, &agency.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return agency, nil
}

func (r *agencyRepo) Create(ctx context.Context, agency *models.Agency) error {
	query := `
		INSERT INTO agencies (id, name, slug, primary_color, secondary_color, logo_url, custom_domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, agency.ID, agency.Name, agency.Slug,
		agency.PrimaryColor, agency.SecondaryColor, agency.LogoURL, agency.CustomDomain)
	return err
}

func (r *agencyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE id = $1`
	return scanAgency(r.db.QueryRow(ctx, query, id))
}

func (r *agencyRepo) GetBySlug(ctx context.Context, slug string) (*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE slug = $1`
	return scanAgency(r.db.QueryRow(ctx, query, slug))
}

func (r *agencyRepo) UpdateBranding(ctx context.Context, agency *models.Agency) error {
	query := `
		UPDATE agencies
		SET name = $1, primary_color = $2, secondary_color = $3, logo_url = $4, custom_domain = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, agency.Name, agency.PrimaryColor,
		agency.SecondaryColor, agency.LogoURL, agency.CustomDomain, agency.ID)
	return err
}

func (r *agencyRepo) List(ctx context.Context, limit, offset int) ([]*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agencies []*models.Agency
	for rows.Next() {
		agency, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		agencies = append(agencies, agency)
	}
	return agencies, rows.Err()
}

// SetShareToken installs a new share token and re-enables sharing. Any
// previously issued token stops resolving immediately.
func (r *agencyRepo) SetShareToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `
		UPDATE agencies
		SET ops_share_token = $1, ops_share_enabled = TRUE, ops_share_view_count = 0,
		    ops_share_last_access = NULL, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, token, id)
	return err
}

func (r *agencyRepo) SetShareEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `UPDATE agencies SET ops_share_enabled = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, enabled, id)
	return err
}

// RecordShareAccess resolves an enabled share token, incrementing its view
// count by exactly one per call. Disabled or unknown tokens return
// pgx.ErrNoRows.
func (r *agencyRepo) RecordShareAccess(ctx context.Context, token string) (*models.Agency, error) {
	query := `
		UPDATE agencies
		SET ops_share_view_count = ops_share_view_count + 1, ops_share_last_access = NOW()
		WHERE ops_share_token = $1 AND ops_share_enabled = TRUE
		RETURNING ` + agencyColumns
	return scanAgency(r.db.QueryRow(ctx, query, token))
}

// DisableStaleShareTokens turns off share links not accessed since the
// cutoff. Links never resolved fall back to their creation time.
func (r *agencyRepo) DisableStaleShareTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE agencies
		SET ops_share_enabled = FALSE, updated_at = NOW()
		WHERE ops_share_enabled = TRUE
		  AND ops_share_token IS NOT NULL
		  AND COALESCE(ops_share_last_access, updated_at) < $1
	`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
