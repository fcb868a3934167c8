package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/shopzone-backend/pkg/enums"
	"github.com/angelmondragon/shopzone-backend/pkg/types"
)

// User represents the canonical identity entity.
type User struct {
	ID                     uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name                   string         `gorm:"column:name;not null" json:"name"`
	Email                  string         `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	PasswordHash           string         `gorm:"column:password_hash;not null" json:"-"`
	Role                   enums.Role     `gorm:"column:role;type:text;not null;default:'user'" json:"role"`
	Image                  *string        `gorm:"column:image" json:"image,omitempty"`
	Address                *types.Address `gorm:"column:address;type:jsonb;serializer:json" json:"address,omitempty"`
	PasswordChangedAt      *time.Time     `gorm:"column:password_changed_at" json:"-"`
	PasswordResetTokenHash *string        `gorm:"column:password_reset_token_hash" json:"-"`
	PasswordResetExpiresAt *time.Time     `gorm:"column:password_reset_expires_at" json:"-"`
	CreatedAt              time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// PasswordChangedAfter reports whether the stored password changed after the
// provided token issue time. Tokens minted before the last change are stale.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u == nil || u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}
