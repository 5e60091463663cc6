package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/multitienda-api/internal/domain"
	"github.com/jhoicas/multitienda-api/internal/domain/entity"
	"github.com/jhoicas/multitienda-api/internal/domain/repository"
	"github.com/jhoicas/multitienda-api/pkg/config"
	"github.com/jhoicas/multitienda-api/pkg/jwt"
)

// Usecase autenticación: login con email/contraseña y emisión de tokens JWT con
// rol y tienda en los claims, para que el middleware decida sin consultar la base.
type Usecase struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
}

// New construye el caso de uso de autenticación.
func New(userRepo repository.UserRepository, jwtCfg config.JWTConfig) *Usecase {
	return &Usecase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// LoginResult token emitido y usuario autenticado.
type LoginResult struct {
	Token string
	User  *entity.User
}

// Login verifica las credenciales y emite un JWT. Credenciales inválidas y usuario
// inexistente devuelven el mismo ErrUnauthorized para no filtrar qué emails existen.
func (uc *Usecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.StoreID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.Expiration)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// RegisterInput datos para crear un usuario.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
	StoreID  string
}

// Register crea un usuario con la contraseña hasheada con bcrypt.
func (uc *Usecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < 8 {
		return nil, domain.ErrInvalidInput
	}
	switch in.Role {
	case "admin", "gerente", "vendedor":
	default:
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         in.Role,
		StoreID:      in.StoreID,
		IsActive:     true,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
