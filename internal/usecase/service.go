package usecase

import (
	"click-collect/internal/data/repository"
	"click-collect/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Profile ProfileService
	Product ProductService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Profile: NewProfileService(repo.Profile, log),
		Product: NewProductService(repo, log),
	}
}
