package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title          string          `gorm:"column:title;not null" json:"title"`
	Description    string          `gorm:"column:description;not null" json:"description"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	InventoryCount int             `gorm:"column:inventory_count;not null;default:0" json:"inventory_count"`
	Image          string          `gorm:"column:image;not null" json:"image"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
