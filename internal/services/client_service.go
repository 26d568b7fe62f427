package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/models"
	"pulsedash/internal/repositories"
	"pulsedash/internal/secrets"
)

type CreateClientRequest struct {
	AgencyID       uuid.UUID `json:"agency_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	APIKey         string    `json:"api_key"` // plaintext, sealed before storage
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	LogoURL        string    `json:"logo_url"`
}

type UpdateClientRequest struct {
	Name           *string `json:"name"`
	Slug           *string `json:"slug"`
	PrimaryColor   *string `json:"primary_color"`
	SecondaryColor *string `json:"secondary_color"`
	LogoURL        *string `json:"logo_url"`
}

type ClientService interface {
	Create(ctx context.Context, req *CreateClientRequest) (*models.Client, error)
	GetBySlug(ctx context.Context, slug string) (*models.Client, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateClientRequest) (*models.Client, error)
	RotateCredential(ctx context.Context, id uuid.UUID, apiKey string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type clientService struct {
	clientRepo  repositories.ClientRepository
	agencyRepo  repositories.AgencyRepository
	credentials *secrets.CredentialStore
}

func NewClientService(clientRepo repositories.ClientRepository, agencyRepo repositories.AgencyRepository, credentials *secrets.CredentialStore) ClientService {
	return &clientService{clientRepo: clientRepo, agencyRepo: agencyRepo, credentials: credentials}
}

func (s *clientService) Create(ctx context.Context, req *CreateClientRequest) (*models.Client, error) {
	if req.Name == "" || req.Slug == "" || req.APIKey == "" {
		return nil, apierrors.Validation("name, slug and api_key are required")
	}
	if strings.TrimSpace(req.Slug) != req.Slug {
		return nil, apierrors.Validation("slug cannot have spaces")
	}

	agency, err := s.agencyRepo.GetByID(ctx, req.AgencyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("agency")
		}
		return nil, apierrors.Upstream("failed to resolve agency", err)
	}

	sealed, err := s.credentials.Encrypt(req.APIKey)
	if err != nil {
		return nil, apierrors.Upstream("failed to seal credential", err)
	}

	client := &models.Client{
		ID:             uuid.New(),
		AgencyID:       agency.ID,
		Name:           req.Name,
		Slug:           req.Slug,
		APICredential:  sealed,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		LogoURL:        req.LogoURL,
		Active:         true,
	}
	// mirror agency branding defaults for unset fields
	if client.PrimaryColor == "" {
		client.PrimaryColor = agency.PrimaryColor
	}
	if client.SecondaryColor == "" {
		client.SecondaryColor = agency.SecondaryColor
	}
	if client.LogoURL == "" {
		client.LogoURL = agency.LogoURL
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, apierrors.Upstream("failed to create client", err)
	}
	return client, nil
}

func (s *clientService) GetBySlug(ctx context.Context, slug string) (*models.Client, error) {
	client, err := s.clientRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("client")
		}
		return nil, apierrors.Upstream("failed to resolve client", err)
	}
	return client, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req *UpdateClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("client")
		}
		return nil, apierrors.Upstream("failed to resolve client", err)
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Slug != nil {
		client.Slug = *req.Slug
	}
	if req.PrimaryColor != nil {
		client.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		client.SecondaryColor = *req.SecondaryColor
	}
	if req.LogoURL != nil {
		client.LogoURL = *req.LogoURL
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, apierrors.Upstream("failed to update client", err)
	}
	return client, nil
}

// RotateCredential seals and installs a new API key. The previous blob is
// overwritten; in-flight syncs already holding the old plaintext finish
// with it.
func (s *clientService) RotateCredential(ctx context.Context, id uuid.UUID, apiKey string) error {
	if apiKey == "" {
		return apierrors.Validation("api_key is required")
	}
	if _, err := s.clientRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apierrors.NotFound("client")
		}
		return apierrors.Upstream("failed to resolve client", err)
	}

	sealed, err := s.credentials.Encrypt(apiKey)
	if err != nil {
		return apierrors.Upstream("failed to seal credential", err)
	}
	if err := s.clientRepo.UpdateCredential(ctx, id, sealed); err != nil {
		return apierrors.Upstream("failed to store credential", err)
	}
	return nil
}

func (s *clientService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.clientRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apierrors.NotFound("client")
		}
		return apierrors.Upstream("failed to resolve client", err)
	}
	if err := s.clientRepo.SetActive(ctx, id, active); err != nil {
		return apierrors.Upstream("failed to update client", err)
	}
	return nil
}
