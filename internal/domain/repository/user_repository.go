package repository

import (
	"context"

	"github.com/jhoicas/multitienda-api/internal/domain/entity"
)

// UserRepository define el puerto mínimo de usuarios para autenticación y auditoría.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// GetByID devuelve el usuario o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
