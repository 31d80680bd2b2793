package auth

import (
	"github.com/delizzia/pos-backend/internal/users"
	"github.com/delizzia/pos-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the (possibly expired) access token and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse contains the tokens and user produced by login or refresh.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int            `json:"expires_in"`
	User         *users.UserDTO `json:"user"`
}

// CreateUserRequest is the owner-only payload for adding a staff or owner account.
type CreateUserRequest struct {
	Email    string           `json:"email" validate:"required,email"`
	Password string           `json:"password" validate:"required"`
	Name     string           `json:"name" validate:"required"`
	Role     enums.MemberRole `json:"role" validate:"omitempty,oneof=owner staff"`
}
