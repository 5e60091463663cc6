package dto

import "github.com/jhoicas/multitienda-api/internal/domain/entity"

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token emitido y usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RegisterUserRequest body para POST /api/auth/register (solo admin).
type RegisterUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // admin | gerente | vendedor
	StoreID  string `json:"store_id,omitempty"`
}

// UserResponse usuario en respuestas (nunca incluye el hash).
type UserResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	StoreID string `json:"store_id,omitempty"`
}

// FromUser mapea la entidad a la respuesta.
func FromUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		StoreID: u.StoreID,
	}
}
