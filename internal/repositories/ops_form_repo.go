package repositories

import (
	"context"

	"pulsedash/internal/models"

	"github.com/google/uuid"
)

type OpsFormRepository interface {
	Create(ctx context.Context, form *models.OpsForm) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OpsForm, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.OpsForm, error)
	Update(ctx context.Context, form *models.OpsForm) error
}

type opsFormRepo struct {
	db DBTX
}

func NewOpsFormRepository(db DBTX) OpsFormRepository {
	return &opsFormRepo{db: db}
}

func (r *opsFormRepo) Create(ctx context.Context, form *models.OpsForm) error {
	query := `
		INSERT INTO ops_forms (id, client_id, form_type, status, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, form.ID, form.ClientID, form.FormType, form.Status, form.Payload)
	return err
}

func (r *opsFormRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.OpsForm, error) {
	query := `
		SELECT id, client_id, form_type, status, payload, created_at, updated_at
		FROM ops_forms
		WHERE id = $1
	`
	form := &models.OpsForm{}
	err := r.db.QueryRow(ctx, query, id).Scan(&form.ID, &form.ClientID, &form.FormType,
		&form.Status, &form.Payload, &form.CreatedAt, &form.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return form, nil
}

func (r *opsFormRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.OpsForm, error) {
	query := `
		SELECT id, client_id, form_type, status, payload, created_at, updated_at
		FROM ops_forms
		WHERE client_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []*models.OpsForm
	for rows.Next() {
		form := &models.OpsForm{}
		if err := rows.Scan(&form.ID, &form.ClientID, &form.FormType, &form.Status,
			&form.Payload, &form.CreatedAt, &form.UpdatedAt); err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

func (r *opsFormRepo) Update(ctx context.Context, form *models.OpsForm) error {
	query := `
		UPDATE ops_forms
		SET form_type = $1, status = $2, payload = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, form.FormType, form.Status, form.Payload, form.ID)
	return err
}
