package repositories

import (
	"context"

	"pulsedash/internal/models"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.UserProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]*models.UserProfile, error)
	ListByAgencyClients(ctx context.Context, agencyID uuid.UUID) ([]*models.UserProfile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type profileRepo struct {
	db DBTX
}

func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, agency_id, client_id, email, role, created_at, updated_at`

func scanProfile(row interface{ Scan(dest ...any) error }) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	err := row.Scan(&profile.ID, &profile.AgencyID, &profile.ClientID,
		&profile.Email, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) Create(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (id, agency_id, client_id, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.AgencyID, profile.ClientID,
		profile.Email, profile.Role)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

func (r *profileRepo) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE agency_id = $1 ORDER BY email`
	return r.list(ctx, query, agencyID)
}

// ListByAgencyClients returns the client-user profiles attached to any
// client of the agency. Profiles of other agencies are never visible.
func (r *profileRepo) ListByAgencyClients(ctx context.Context, agencyID uuid.UUID) ([]*models.UserProfile, error) {
	query := `
		SELECT p.id, p.agency_id, p.client_id, p.email, p.role, p.created_at, p.updated_at
		FROM user_profiles p
		JOIN clients c ON c.id = p.client_id
		WHERE c.agency_id = $1
		ORDER BY p.email
	`
	return r.list(ctx, query, agencyID)
}

func (r *profileRepo) list(ctx context.Context, query string, args ...any) ([]*models.UserProfile, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.UserProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM user_profiles WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
