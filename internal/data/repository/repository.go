package repository

import (
	"click-collect/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User       UserRepository
	Profile    ProfileRepository
	Session    SessionRepository
	Product    ProductRepository
	CartRecord CartRecordRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:       NewUserRepository(db, log),
		Profile:    NewProfileRepository(db, log),
		Session:    NewSessionRepository(db, log),
		Product:    NewProductRepository(db, log),
		CartRecord: NewCartRecordRepository(db, log),
	}
}
