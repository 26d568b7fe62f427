package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/models"
	"pulsedash/internal/repositories"
)

// SharePayload is the read-only view served to share-token holders: the
// agency and its clients, without user data or credentials.
type SharePayload struct {
	Agency  *models.Agency   `json:"agency"`
	Clients []*models.Client `json:"clients"`
}

type ShareService interface {
	Generate(ctx context.Context, agencyID uuid.UUID) (string, error)
	Resolve(ctx context.Context, token string) (*SharePayload, error)
	Disable(ctx context.Context, agencyID uuid.UUID) error
}

type shareService struct {
	agencyRepo repositories.AgencyRepository
	clientRepo repositories.ClientRepository
}

func NewShareService(agencyRepo repositories.AgencyRepository, clientRepo repositories.ClientRepository) ShareService {
	return &shareService{agencyRepo: agencyRepo, clientRepo: clientRepo}
}

// Generate mints a 256-bit random hex token and installs it, invalidating
// any previously issued token.
func (s *shareService) Generate(ctx context.Context, agencyID uuid.UUID) (string, error) {
	if _, err := s.agencyRepo.GetByID(ctx, agencyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apierrors.NotFound("agency")
		}
		return "", apierrors.Upstream("failed to resolve agency", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", apierrors.Upstream("failed to generate token", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.agencyRepo.SetShareToken(ctx, agencyID, token); err != nil {
		return "", apierrors.Upstream("failed to store token", err)
	}
	return token, nil
}

// Resolve looks up an enabled token and returns the agency's share view.
// The lookup itself increments the view count exactly once; unknown or
// disabled tokens are indistinguishable and answer not-found.
func (s *shareService) Resolve(ctx context.Context, token string) (*SharePayload, error) {
	agency, err := s.agencyRepo.RecordShareAccess(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("share link")
		}
		return nil, apierrors.Upstream("failed to resolve share link", err)
	}

	clients, err := s.clientRepo.ListByAgency(ctx, agency.ID)
	if err != nil {
		return nil, apierrors.Upstream("failed to list clients", err)
	}
	return &SharePayload{Agency: agency, Clients: clients}, nil
}

func (s *shareService) Disable(ctx context.Context, agencyID uuid.UUID) error {
	if _, err := s.agencyRepo.GetByID(ctx, agencyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apierrors.NotFound("agency")
		}
		return apierrors.Upstream("failed to resolve agency", err)
	}
	if err := s.agencyRepo.SetShareEnabled(ctx, agencyID, false); err != nil {
		return apierrors.Upstream("failed to disable share link", err)
	}
	return nil
}
