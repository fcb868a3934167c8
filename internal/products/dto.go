package product

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
)

// ProductDTO is the transport shape for catalog listings.
type ProductDTO struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	InventoryCount int             `json:"inventory_count"`
	Image          string          `json:"image"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ImageUpload carries a product image read from a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateProductInput holds the fields required to publish a listing.
type CreateProductInput struct {
	Title          string          `validate:"required,min=2,max=120"`
	Description    string          `validate:"required,min=5"`
	Price          decimal.Decimal `validate:"required"`
	InventoryCount int             `validate:"gte=0"`
	Image          *ImageUpload
}

// UpdateProductInput holds optional field overrides for an existing listing.
type UpdateProductInput struct {
	Title          *string          `validate:"omitempty,min=2,max=120"`
	Description    *string          `validate:"omitempty,min=5"`
	Price          *decimal.Decimal `validate:"omitempty"`
	InventoryCount *int             `validate:"omitempty,gte=0"`
	Image          *ImageUpload
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		InventoryCount: p.InventoryCount,
		Image:          p.Image,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromModels(list []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
