package product

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubProductRepo struct {
	product    *models.Product
	list       []models.Product
	findErr    error
	createErr  error
	gotCreate  *models.Product
	gotUpdates map[string]any
	deleted    []uuid.UUID
}

func (s *stubProductRepo) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.gotCreate = p
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return p, nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.product, nil
}

func (s *stubProductRepo) List(ctx context.Context) ([]models.Product, error) {
	return s.list, nil
}

func (s *stubProductRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Product, error) {
	s.gotUpdates = updates
	return s.product, nil
}

func (s *stubProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubUploader struct {
	uploadedName string
	uploadedType string
	uploadErr    error
	deletedNames []string
}

func (s *stubUploader) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploadedName = objectName
	s.uploadedType = contentType
	return "https://storage.googleapis.com/shopzone-media/" + objectName, nil
}

func (s *stubUploader) DeleteObject(ctx context.Context, objectName string) error {
	s.deletedNames = append(s.deletedNames, objectName)
	return nil
}

func newTestService(t *testing.T, repo *stubProductRepo, uploader *stubUploader) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{ProductRepo: repo, Uploader: uploader})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func pngUpload() *ImageUpload {
	return &ImageUpload{
		Filename:    "mug.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	}
}

func TestCreateProductUploadsImage(t *testing.T) {
	repo := &stubProductRepo{}
	uploader := &stubUploader{}
	svc := newTestService(t, repo, uploader)

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Title:          "  Ceramic Mug ",
		Description:    "Hand glazed mug",
		Price:          decimal.RequireFromString("19.99"),
		InventoryCount: 5,
		Image:          pngUpload(),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if !strings.HasPrefix(uploader.uploadedName, "products/") || !strings.HasSuffix(uploader.uploadedName, ".png") {
		t.Fatalf("unexpected object name %q", uploader.uploadedName)
	}
	if uploader.uploadedType != "image/png" {
		t.Fatalf("unexpected content type %q", uploader.uploadedType)
	}
	if repo.gotCreate.Title != "Ceramic Mug" {
		t.Fatalf("expected trimmed title, got %q", repo.gotCreate.Title)
	}
	if !strings.Contains(dto.Image, uploader.uploadedName) {
		t.Fatalf("dto image %q does not reference uploaded object", dto.Image)
	}
}

func TestCreateProductRequiresImage(t *testing.T) {
	svc := newTestService(t, &stubProductRepo{}, &stubUploader{})

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Title:       "Mug",
		Description: "Hand glazed mug",
		Price:       decimal.RequireFromString("19.99"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateProductRejectsNonPositivePrice(t *testing.T) {
	svc := newTestService(t, &stubProductRepo{}, &stubUploader{})

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Title:       "Mug",
		Description: "Hand glazed mug",
		Price:       decimal.Zero,
		Image:       pngUpload(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateProductUploadFailureIsDependencyError(t *testing.T) {
	uploader := &stubUploader{uploadErr: io.ErrUnexpectedEOF}
	svc := newTestService(t, &stubProductRepo{}, uploader)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Title:       "Mug",
		Description: "Hand glazed mug",
		Price:       decimal.RequireFromString("19.99"),
		Image:       pngUpload(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc := newTestService(t, &stubProductRepo{findErr: gorm.ErrRecordNotFound}, &stubUploader{})

	_, err := svc.GetProduct(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUpdateProductReplacesImageAndCleansUpOld(t *testing.T) {
	existing := &models.Product{
		ID:    uuid.New(),
		Title: "Mug",
		Image: "https://storage.googleapis.com/shopzone-media/products/old.png",
	}
	repo := &stubProductRepo{product: existing}
	uploader := &stubUploader{}
	svc := newTestService(t, repo, uploader)

	_, err := svc.UpdateProduct(context.Background(), existing.ID, UpdateProductInput{Image: pngUpload()})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if _, ok := repo.gotUpdates["image"]; !ok {
		t.Fatal("expected image column update")
	}
	if len(uploader.deletedNames) != 1 || uploader.deletedNames[0] != "products/old.png" {
		t.Fatalf("expected old object cleanup, got %v", uploader.deletedNames)
	}
}

func TestUpdateProductRequiresFields(t *testing.T) {
	repo := &stubProductRepo{product: &models.Product{ID: uuid.New()}}
	svc := newTestService(t, repo, &stubUploader{})

	_, err := svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	existing := &models.Product{
		ID:    uuid.New(),
		Image: "https://storage.googleapis.com/shopzone-media/products/old.png",
	}
	repo := &stubProductRepo{product: existing}
	uploader := &stubUploader{}
	svc := newTestService(t, repo, uploader)

	if err := svc.DeleteProduct(context.Background(), existing.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != existing.ID {
		t.Fatalf("expected repo delete, got %v", repo.deleted)
	}
	if len(uploader.deletedNames) != 1 {
		t.Fatalf("expected image cleanup, got %v", uploader.deletedNames)
	}
}

func TestObjectNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://storage.googleapis.com/shopzone-media/products/a.png": "products/a.png",
		"https://example.com/products/a.png":                           "",
		"": "",
	}
	for in, want := range cases {
		if got := objectNameFromURL(in); got != want {
			t.Fatalf("objectNameFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}
