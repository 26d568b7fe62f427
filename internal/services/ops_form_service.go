package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/common"
	"pulsedash/internal/models"
	"pulsedash/internal/repositories"
)

type CreateOpsFormRequest struct {
	ClientSlug string                 `json:"client_slug"`
	FormType   string                 `json:"form_type"`
	Payload    map[string]interface{} `json:"payload"`
}

type UpdateOpsFormRequest struct {
	Status  *string                `json:"status"`
	Payload map[string]interface{} `json:"payload"`
}

type OpsFormService interface {
	Create(ctx context.Context, req *CreateOpsFormRequest) (*models.OpsForm, error)
	ListByClientSlug(ctx context.Context, clientSlug string) ([]*models.OpsForm, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateOpsFormRequest) (*models.OpsForm, error)
}

type opsFormService struct {
	formRepo   repositories.OpsFormRepository
	clientRepo repositories.ClientRepository
	logger     *zap.Logger
}

func NewOpsFormService(formRepo repositories.OpsFormRepository, clientRepo repositories.ClientRepository, logger *zap.Logger) OpsFormService {
	return &opsFormService{formRepo: formRepo, clientRepo: clientRepo, logger: logger}
}

func (s *opsFormService) Create(ctx context.Context, req *CreateOpsFormRequest) (*models.OpsForm, error) {
	if err := common.ValidateSlug(req.ClientSlug, "client_slug"); err != nil {
		return nil, apierrors.Validation("%v", err)
	}
	if err := common.ValidateRequiredString(req.FormType, "form_type"); err != nil {
		return nil, apierrors.Validation("%v", err)
	}

	client, err := s.clientRepo.GetBySlug(ctx, req.ClientSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("client")
		}
		return nil, err
	}

	form := &models.OpsForm{
		ID:       uuid.New(),
		ClientID: client.ID,
		FormType: req.FormType,
		Status:   "open",
		Payload:  req.Payload,
	}
	if form.Payload == nil {
		form.Payload = map[string]interface{}{}
	}
	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, err
	}
	s.logger.Info("ops form created",
		zap.String("form_id", form.ID.String()),
		zap.String("client", client.Slug),
		zap.String("form_type", form.FormType))
	return form, nil
}

func (s *opsFormService) ListByClientSlug(ctx context.Context, clientSlug string) ([]*models.OpsForm, error) {
	client, err := s.clientRepo.GetBySlug(ctx, clientSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("client")
		}
		return nil, err
	}
	return s.formRepo.ListByClient(ctx, client.ID)
}

func (s *opsFormService) Update(ctx context.Context, id uuid.UUID, req *UpdateOpsFormRequest) (*models.OpsForm, error) {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("ops form")
		}
		return nil, err
	}

	if req.Status != nil {
		form.Status = *req.Status
	}
	if req.Payload != nil {
		form.Payload = req.Payload
	}
	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}
