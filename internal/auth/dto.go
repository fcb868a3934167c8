package auth

import (
	"io"

	"github.com/angelmondragon/shopzone-backend/internal/users"
)

// SignupRequest carries the fields required to register an account.
type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=60"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	Role            string `json:"role" validate:"omitempty,oneof=super-admin manager user"`

	// Avatar is populated from the optional multipart image part.
	Avatar *AvatarUpload `json:"-"`
}

// AvatarUpload carries a profile image read from a multipart form.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// LoginRequest carries the credential pair for authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest identifies the account to reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the raw token and replacement password.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// UpdatePasswordRequest rotates the password for a logged-in user.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// AuthResponse is returned from every operation that issues a fresh token.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
