package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/caching"
	"pulsedash/internal/models"
	"pulsedash/internal/repositories"
)

const agencyOverviewTTL = 5 * time.Minute

// AgencyOverview is the composed dashboard payload: the agency, its clients
// and the client users attached to them. Only rows whose agency matches are
// ever included.
type AgencyOverview struct {
	Agency      *models.Agency        `json:"agency"`
	Clients     []*models.Client      `json:"clients"`
	ClientUsers []*models.UserProfile `json:"client_users"`
}

// UpdateBrandingRequest lists every accepted branding field explicitly.
// Nil fields keep their current values.
type UpdateBrandingRequest struct {
	Name           *string `json:"name"`
	PrimaryColor   *string `json:"primary_color"`
	SecondaryColor *string `json:"secondary_color"`
	LogoURL        *string `json:"logo_url"`
	CustomDomain   *string `json:"custom_domain"`
}

type AgencyService interface {
	GetOverviewBySlug(ctx context.Context, slug string) (*AgencyOverview, error)
	UpdateBranding(ctx context.Context, id uuid.UUID, req *UpdateBrandingRequest) (*models.Agency, error)
	UploadLogo(ctx context.Context, id uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
}

type agencyService struct {
	agencyRepo  repositories.AgencyRepository
	clientRepo  repositories.ClientRepository
	profileRepo repositories.ProfileRepository
	cache       caching.CacheService
	storage     AssetStorage
	bucket      string
	logger      *zap.Logger
}

func NewAgencyService(
	agencyRepo repositories.AgencyRepository,
	clientRepo repositories.ClientRepository,
	profileRepo repositories.ProfileRepository,
	cache caching.CacheService,
	storage AssetStorage,
	bucket string,
	logger *zap.Logger,
) AgencyService {
	return &agencyService{
		agencyRepo:  agencyRepo,
		clientRepo:  clientRepo,
		profileRepo: profileRepo,
		cache:       cache,
		storage:     storage,
		bucket:      bucket,
		logger:      logger,
	}
}

func (s *agencyService) GetOverviewBySlug(ctx context.Context, slug string) (*AgencyOverview, error) {
	cacheKey := caching.AgencyOverviewKey(slug)
	var cached AgencyOverview
	if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	} else if err != nil {
		s.logger.Warn("overview cache read failed", zap.String("agency", slug), zap.Error(err))
	}

	agency, err := s.agencyRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("agency")
		}
		return nil, apierrors.Upstream("failed to resolve agency", err)
	}

	clients, err := s.clientRepo.ListByAgency(ctx, agency.ID)
	if err != nil {
		return nil, apierrors.Upstream("failed to list clients", err)
	}
	users, err := s.profileRepo.ListByAgencyClients(ctx, agency.ID)
	if err != nil {
		return nil, apierrors.Upstream("failed to list client users", err)
	}

	overview := &AgencyOverview{Agency: agency, Clients: clients, ClientUsers: users}
	if err := s.cache.SetJSON(ctx, cacheKey, overview, agencyOverviewTTL); err != nil {
		s.logger.Warn("overview cache write failed", zap.String("agency", slug), zap.Error(err))
	}
	return overview, nil
}

func (s *agencyService) UpdateBranding(ctx context.Context, id uuid.UUID, req *UpdateBrandingRequest) (*models.Agency, error) {
	agency, err := s.agencyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apierrors.NotFound("agency")
		}
		return nil, apierrors.Upstream("failed to resolve agency", err)
	}

	if req.Name != nil {
		agency.Name = *req.Name
	}
	if req.PrimaryColor != nil {
		agency.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		agency.SecondaryColor = *req.SecondaryColor
	}
	if req.LogoURL != nil {
		agency.LogoURL = *req.LogoURL
	}
	if req.CustomDomain != nil {
		agency.CustomDomain = *req.CustomDomain
	}

	if err := s.agencyRepo.UpdateBranding(ctx, agency); err != nil {
		return nil, apierrors.Upstream("failed to update agency", err)
	}
	if err := s.cache.InvalidateAgency(ctx, agency.Slug); err != nil {
		s.logger.Warn("overview cache invalidation failed", zap.String("agency", agency.Slug), zap.Error(err))
	}
	return agency, nil
}

func (s *agencyService) UploadLogo(ctx context.Context, id uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	agency, err := s.agencyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apierrors.NotFound("agency")
		}
		return "", apierrors.Upstream("failed to resolve agency", err)
	}

	objectName := fmt.Sprintf("agencies/%s/%s", agency.ID, filename)
	if err := s.storage.UploadLogo(ctx, s.bucket, objectName, contentType, reader, size); err != nil {
		return "", apierrors.Upstream("failed to store logo", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.bucket, objectName, 7*24*time.Hour)
	if err != nil {
		return "", apierrors.Upstream("failed to build logo URL", err)
	}

	agency.LogoURL = url
	if err := s.agencyRepo.UpdateBranding(ctx, agency); err != nil {
		return "", apierrors.Upstream("failed to save logo URL", err)
	}
	if err := s.cache.InvalidateAgency(ctx, agency.Slug); err != nil {
		s.logger.Warn("overview cache invalidation failed", zap.String("agency", agency.Slug), zap.Error(err))
	}
	return url, nil
}
