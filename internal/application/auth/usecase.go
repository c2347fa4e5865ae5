// Package auth registro y login de operadores del almacén.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/stockmaster/internal/application/dto"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/domain"
	"github.com/jhoicas/stockmaster/internal/domain/entity"
	"github.com/jhoicas/stockmaster/pkg/jwt"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login y alta del primer admin.
type AuthUseCase struct {
	tx     inventory.TxRunner
	jwtCfg JWTConfig
	log    *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(tx inventory.TxRunner, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	if jwtCfg.ExpMinutes <= 0 {
		jwtCfg.ExpMinutes = 60
	}
	return &AuthUseCase{tx: tx, jwtCfg: jwtCfg, log: log.Component("auth")}
}

// RegisterUser crea un usuario con la contraseña hasheada con bcrypt. Email repetido -> ErrDuplicate.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	user, err := newUser(in)
	if err != nil {
		return nil, err
	}
	err = uc.tx.Run(ctx, func(r inventory.Repos) error {
		existing, err := r.Users.GetByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("usuario registrado")
	return toUserResponse(user), nil
}

// EnsureAdmin crea un admin con las credenciales dadas solo si no existe ningún usuario.
// Devuelve true si lo creó.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	in := dto.RegisterRequest{Email: email, Password: password, Name: "Administrador", Role: entity.RoleAdmin}
	if err := in.Validate(); err != nil {
		return false, dto.AsValidationError(err)
	}
	user, err := newUser(in)
	if err != nil {
		return false, err
	}
	created := false
	err = uc.tx.Run(ctx, func(r inventory.Repos) error {
		n, err := r.Users.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		created = true
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return false, err
	}
	if created {
		uc.log.Info().Str("email", user.Email).Msg("admin inicial creado")
	}
	return created, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Email desconocido y contraseña incorrecta devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, dto.AsValidationError(err)
	}
	var user *entity.User
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		var err error
		user, err = r.Users.GetByEmail(ctx, normalizeEmail(in.Email))
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn().Str("user_id", user.ID).Msg("login con contraseña incorrecta")
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		User:      *toUserResponse(user),
	}, nil
}

// ListUsers lista usuarios con paginación.
func (uc *AuthUseCase) ListUsers(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	var list []*entity.User
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		var err error
		list, err = r.Users.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *toUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

func newUser(in dto.RegisterRequest) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	email := normalizeEmail(in.Email)
	name := in.Name
	if name == "" {
		name = email
	}
	role := in.Role
	if role == "" {
		role = entity.RoleBodeguero
	}
	return &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       entity.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
