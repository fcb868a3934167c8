package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a single (product, quantity) line inside a cart. Position
// preserves insertion order across merge updates.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index" json:"-"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	Position  int       `gorm:"column:position;not null;default:0" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}
