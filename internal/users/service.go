package users

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/angelmondragon/shopzone-backend/pkg/db"
	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/angelmondragon/shopzone-backend/pkg/storage/gcs"
	"github.com/angelmondragon/shopzone-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines the behavior needed by the users controller.
type Service interface {
	GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	ListUsers(ctx context.Context) ([]UserDTO, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, req UpdateDetailsRequest) (*UserDTO, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, address types.Address) (*UserDTO, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, address types.Address) (*models.User, error)
}

type service struct {
	repo     userRepository
	uploader gcs.Uploader
}

// ServiceParams bundles the dependencies required to build a users service.
// Uploader is optional; without it profile image updates are rejected.
type ServiceParams struct {
	UserRepo userRepository
	Uploader gcs.Uploader
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: params.UserRepo, uploader: params.Uploader}, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return FromModel(user), nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return FromModels(list), nil
}

func (s *service) UpdateDetails(ctx context.Context, id uuid.UUID, req UpdateDetailsRequest) (*UserDTO, error) {
	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		updates["email"] = email
	}
	if req.Image != nil {
		if s.uploader == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "image storage is not configured")
		}
		objectName := fmt.Sprintf("avatars/%s%s", uuid.NewString(), path.Ext(req.Image.Filename))
		url, err := s.uploader.Upload(ctx, objectName, req.Image.ContentType, req.Image.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload profile image")
		}
		updates["image"] = url
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	updates["updated_at"] = time.Now().UTC()

	user, err := s.repo.UpdateDetails(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user details")
	}
	return FromModel(user), nil
}

func (s *service) UpdateAddress(ctx context.Context, id uuid.UUID, address types.Address) (*UserDTO, error) {
	if address.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	user, err := s.repo.UpdateAddress(ctx, id, address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user address")
	}
	return FromModel(user), nil
}
