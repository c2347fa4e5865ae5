package repository

import (
	"context"

	"github.com/jhoicas/stockmaster/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetByEmail devuelve (nil, nil) si no existe; el email se compara sin distinguir mayúsculas.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
}
