package product

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
	"github.com/angelmondragon/shopzone-backend/pkg/storage/gcs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service defines the behavior needed by the products controller.
type Service interface {
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     productRepository
	uploader gcs.Uploader
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build a products service.
type ServiceParams struct {
	ProductRepo productRepository
	Uploader    gcs.Uploader
	Logger      *logger.Logger
}

// NewService constructs a products service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if params.Uploader == nil {
		return nil, fmt.Errorf("storage uploader is required")
	}
	return &service{
		repo:     params.ProductRepo,
		uploader: params.Uploader,
		logg:     params.Logger,
	}, nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return FromModels(list), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	return FromModel(product), nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if input.Image == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product image is required")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	imageURL, err := s.uploadImage(ctx, *input.Image)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Price:          input.Price,
		InventoryCount: input.InventoryCount,
		Image:          imageURL,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(created), nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *input.Price
	}
	if input.InventoryCount != nil {
		if *input.InventoryCount < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory count cannot be negative")
		}
		updates["inventory_count"] = *input.InventoryCount
	}
	if input.Image != nil {
		imageURL, err := s.uploadImage(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = imageURL
		s.cleanupImage(ctx, existing.Image)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	updates["updated_at"] = time.Now().UTC()

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return FromModel(updated), nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	s.cleanupImage(ctx, existing.Image)
	return nil
}

func (s *service) uploadImage(ctx context.Context, image ImageUpload) (string, error) {
	if image.Body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product image is required")
	}

	objectName := fmt.Sprintf("products/%s%s", uuid.NewString(), path.Ext(image.Filename))
	url, err := s.uploader.Upload(ctx, objectName, image.ContentType, image.Body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload product image")
	}
	return url, nil
}

// cleanupImage is best effort; a stale object never blocks the catalog write.
func (s *service) cleanupImage(ctx context.Context, imageURL string) {
	objectName := objectNameFromURL(imageURL)
	if objectName == "" {
		return
	}
	if err := s.uploader.DeleteObject(ctx, objectName); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to delete replaced product image")
	}
}

func objectNameFromURL(imageURL string) string {
	const marker = "storage.googleapis.com/"
	idx := strings.Index(imageURL, marker)
	if idx < 0 {
		return ""
	}
	rest := imageURL[idx+len(marker):]
	// strip the leading bucket segment
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
