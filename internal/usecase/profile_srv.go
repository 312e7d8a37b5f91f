package usecase

import (
	"context"
	"fmt"
	"time"

	"click-collect/internal/apperr"
	"click-collect/internal/data/entity"
	"click-collect/internal/data/repository"
	"click-collect/internal/dto/request"
	"click-collect/internal/dto/response"
	"click-collect/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*response.ProfileResponse, error)
	// BecomeMerchant runs merchant onboarding for the calling identity. It is
	// idempotent: a merchant calling it again gets the current profile.
	BecomeMerchant(ctx context.Context, userID string, req *request.MerchantOnboardingRequest) (*response.ProfileResponse, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	log      *zap.Logger
}

func NewProfileService(profiles repository.ProfileRepository, log *zap.Logger) ProfileService {
	return &profileService{
		profiles: profiles,
		log:      log.With(zap.String("service", "profile")),
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*response.ProfileResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("invalid user ID %q", userID)
	}

	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Transport("find profile", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %s: %w", userID, apperr.ErrProfileMissing)
	}

	var store *entity.Store
	if profile.Role == entity.RoleMerchant {
		if store, err = s.profiles.FindStoreByOwner(ctx, id); err != nil {
			return nil, apperr.Transport("find store", err)
		}
	}

	return response.ProfileToResponse(profile, store), nil
}

func (s *profileService) BecomeMerchant(ctx context.Context, userID string, req *request.MerchantOnboardingRequest) (*response.ProfileResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Merchant onboarding validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation("%s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("invalid user ID %q", userID)
	}

	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Transport("find profile", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %s: %w", userID, apperr.ErrProfileMissing)
	}
	if profile.Role == entity.RoleMerchant {
		return s.GetProfile(ctx, userID)
	}

	now := time.Now()
	store := &entity.Store{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID: id,
		Name:    req.StoreName,
		Address: req.Address,
		Status:  entity.StoreStatusActive,
	}

	if err := s.profiles.PromoteToMerchant(ctx, id, store); err != nil {
		s.log.Error("Failed to promote to merchant", zap.Error(err), zap.String("user_id", userID))
		return nil, apperr.Transport("promote to merchant", err)
	}

	s.log.Info("Merchant onboarded",
		zap.String("user_id", userID),
		zap.String("store", req.StoreName))

	return s.GetProfile(ctx, userID)
}
