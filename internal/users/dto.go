package users

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
	"github.com/angelmondragon/shopzone-backend/pkg/enums"
	"github.com/angelmondragon/shopzone-backend/pkg/types"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      enums.Role     `json:"role"`
	Image     *string        `json:"image,omitempty"`
	Address   *types.Address `json:"address,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Role         enums.Role
	Image        *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Image:     u.Image,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromModels(list []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleUser
	}

	return &models.User{
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         role,
		Image:        c.Image,
	}
}

// ImageUpload carries a profile image read from a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UpdateDetailsRequest carries the mutable profile fields.
type UpdateDetailsRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=60"`
	Email *string `json:"email" validate:"omitempty,email"`

	// Image is populated from the optional multipart image part.
	Image *ImageUpload `json:"-"`
}

// UpdateAddressRequest wraps the shipping address payload.
type UpdateAddressRequest struct {
	Address types.Address `json:"address" validate:"required"`
}
