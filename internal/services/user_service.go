package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
	"pulsedash/internal/identity"
	"pulsedash/internal/repositories"
)

type UserService interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	profileRepo repositories.ProfileRepository
	idp         identity.AdminAPI
	logger      *zap.Logger
}

func NewUserService(profileRepo repositories.ProfileRepository, idp identity.AdminAPI, logger *zap.Logger) UserService {
	return &userService{profileRepo: profileRepo, idp: idp, logger: logger}
}

// Delete removes the profile row and then the identity-provider account.
// If the provider deletion fails the operation reports failure even though
// the profile row is already gone; the caller must not treat a half-done
// cascade as success.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.profileRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apierrors.NotFound("user")
		}
		return apierrors.Upstream("failed to resolve user", err)
	}

	if err := s.profileRepo.Delete(ctx, id); err != nil {
		return apierrors.Upstream("failed to delete profile", err)
	}

	if err := s.idp.DeleteAccount(ctx, id); err != nil {
		s.logger.Error("profile deleted but identity account removal failed",
			zap.String("user_id", id.String()), zap.Error(err))
		return apierrors.Upstream("profile deleted but identity account removal failed", err)
	}
	return nil
}
