package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
	"github.com/angelmondragon/shopzone-backend/pkg/mailer"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const emptyCartMessage = "cart is empty"

// Service defines the behavior needed by the cart controller.
type Service interface {
	UpdateCart(ctx context.Context, userID uuid.UUID, req UpdateCartRequest) (*CartDTO, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResult, error)
}

type cartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type productCatalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	carts    cartRepository
	products productCatalog
	users    userLookup
	mail     mailer.Mailer
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	CartRepo    cartRepository
	ProductRepo productCatalog
	UserRepo    userLookup
	Mailer      mailer.Mailer
	Logger      *logger.Logger
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	return &service{
		carts:    params.CartRepo,
		products: params.ProductRepo,
		users:    params.UserRepo,
		mail:     params.Mailer,
		logg:     params.Logger,
	}, nil
}

// UpdateCart merges the requested lines into the user's cart. A line whose
// product is already present increments its quantity instead of duplicating it.
func (s *service) UpdateCart(ctx context.Context, userID uuid.UUID, req UpdateCartRequest) (*CartDTO, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one cart item is required")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}

	incomingIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		incomingIDs = append(incomingIDs, item.ProductID)
	}
	catalog, err := s.loadCatalog(ctx, incomingIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range incomingIDs {
		if _, ok := catalog[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product not found")
		}
	}

	cart, err := s.carts.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	merged := mergeItems(cart.Items, req.Items)
	if err := s.carts.ReplaceItems(ctx, cart.ID, merged); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart items")
	}
	cart.Items = merged

	// refresh the catalog to cover carried-over lines
	allIDs := make([]uuid.UUID, 0, len(merged))
	for _, item := range merged {
		allIDs = append(allIDs, item.ProductID)
	}
	catalog, err = s.loadCatalog(ctx, allIDs)
	if err != nil {
		return nil, err
	}

	return buildCartDTO(cart, catalog), nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.loadNonEmptyCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	catalog, err := s.loadCatalog(ctx, ids)
	if err != nil {
		return nil, err
	}

	return buildCartDTO(cart, catalog), nil
}

// Checkout emails the order summary and always clears the cart afterwards,
// even when the email dispatch fails.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResult, error) {
	// the empty-cart check comes before the address check so a client with
	// neither sees "cart is empty" first
	cart, err := s.loadNonEmptyCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.Address == nil || user.Address.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required before checkout")
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	catalog, err := s.loadCatalog(ctx, ids)
	if err != nil {
		return nil, err
	}

	dto := buildCartDTO(cart, catalog)
	body := orderSummary(user, dto)

	var dispatchErr error
	if err := s.mail.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Your ShopZone order",
		Body:    body,
	}); err != nil {
		dispatchErr = multierr.Append(dispatchErr, fmt.Errorf("send order email: %w", err))
		if s.logg != nil {
			s.logg.Warn(ctx, "checkout email dispatch failed")
		}
	}

	if err := s.carts.DeleteByUser(ctx, userID); err != nil {
		dispatchErr = multierr.Append(dispatchErr, fmt.Errorf("clear cart: %w", err))
	}

	if dispatchErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, dispatchErr, "checkout partially failed")
	}

	return &CheckoutResult{
		Email: user.Email,
		Items: dto.Items,
		Total: dto.Total,
	}, nil
}

func (s *service) loadNonEmptyCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyCartMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, emptyCartMessage)
	}
	return cart, nil
}

func (s *service) loadCatalog(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	products, err := s.products.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}
	catalog := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}
	return catalog, nil
}

func mergeItems(existing []models.CartItem, incoming []CartItemInput) []models.CartItem {
	merged := make([]models.CartItem, len(existing))
	copy(merged, existing)

	index := make(map[uuid.UUID]int, len(merged))
	for i, item := range merged {
		index[item.ProductID] = i
	}

	for _, item := range incoming {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, models.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return merged
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func orderSummary(user *models.User, dto *CartDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order. Here is your summary:\n\n", user.Name)
	for _, line := range dto.Items {
		title := line.ProductID.String()
		if line.Product != nil {
			title = line.Product.Title
		}
		fmt.Fprintf(&b, "  %d x %s = %s\n", line.Quantity, title, line.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", dto.Total.StringFixed(2))
	fmt.Fprintf(&b, "Shipping to: %s\n", user.Address.OneLine())
	return b.String()
}
