package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/angelmondragon/shopzone-backend/internal/products"
	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
)

// CartItemInput is one line of an update-cart request.
type CartItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateCartRequest carries the lines to merge into the user's cart.
type UpdateCartRequest struct {
	Items []CartItemInput `json:"items" validate:"required,min=1,dive"`
}

// CartItemDTO is a cart line enriched with its product listing.
type CartItemDTO struct {
	ProductID uuid.UUID           `json:"product_id"`
	Quantity  int                 `json:"quantity"`
	Product   *product.ProductDTO `json:"product,omitempty"`
	LineTotal decimal.Decimal     `json:"line_total"`
}

// CartDTO is the transport shape for a user's cart.
type CartDTO struct {
	ID     uuid.UUID       `json:"id"`
	UserID uuid.UUID       `json:"user_id"`
	Items  []CartItemDTO   `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// CheckoutResult summarizes a completed checkout.
type CheckoutResult struct {
	Email string          `json:"email"`
	Items []CartItemDTO   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func buildCartDTO(cart *models.Cart, catalog map[uuid.UUID]models.Product) *CartDTO {
	if cart == nil {
		return nil
	}
	dto := &CartDTO{
		ID:     cart.ID,
		UserID: cart.UserID,
		Items:  make([]CartItemDTO, 0, len(cart.Items)),
		Total:  decimal.Zero,
	}
	for _, item := range cart.Items {
		line := CartItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			LineTotal: decimal.Zero,
		}
		if p, ok := catalog[item.ProductID]; ok {
			listing := p
			line.Product = product.FromModel(&listing)
			line.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		dto.Total = dto.Total.Add(line.LineTotal)
		dto.Items = append(dto.Items, line)
	}
	return dto
}
