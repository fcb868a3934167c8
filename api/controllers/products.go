package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopzone-backend/api/responses"
	"github.com/angelmondragon/shopzone-backend/api/validators"
	product "github.com/angelmondragon/shopzone-backend/internal/products"
	"github.com/angelmondragon/shopzone-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
)

// ProductsList returns the full catalog.
func ProductsList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		list, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "fetched products", len(list), list)
	}
}

// ProductGet fetches one listing by id.
func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "fetched product", dto)
	}
}

// ProductCreate publishes a listing from a multipart form with a required
// image attachment.
func ProductCreate(svc product.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		if err := validators.ParseMultipartForm(r, cfg.GCS.MaxUploadMB); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := product.CreateProductInput{
			Title:       strings.TrimSpace(r.FormValue("title")),
			Description: strings.TrimSpace(r.FormValue("description")),
		}

		price, err := parsePrice(r.FormValue("price"), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Price = *price

		if raw := strings.TrimSpace(r.FormValue("inventory_count")); raw != "" {
			count, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "inventory_count must be numeric"))
				return
			}
			input.InventoryCount = count
		}

		if err := validators.ValidateStruct(&input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.FormFile(r, "image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if file != nil {
			defer file.Close()
			input.Image = &product.ImageUpload{
				Filename:    file.Filename,
				ContentType: file.ContentType,
				Body:        file.Body,
			}
		}

		dto, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "product created", dto)
	}
}

// ProductUpdate patches a listing. Accepts JSON or a multipart form with an
// optional replacement image.
func ProductUpdate(svc product.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, cleanup, err := decodeProductUpdate(r, cfg.GCS.MaxUploadMB)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		dto, err := svc.UpdateProduct(r.Context(), id, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product updated", dto)
	}
}

// ProductDelete removes a listing and its stored image.
func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "product deleted", nil)
	}
}

func parseProductID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}

func parsePrice(raw string, required bool) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price is required")
		}
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal number")
	}
	return &price, nil
}

type updateProductPayload struct {
	Title          *string          `json:"title" validate:"omitempty,min=2,max=120"`
	Description    *string          `json:"description" validate:"omitempty,min=5"`
	Price          *decimal.Decimal `json:"price"`
	InventoryCount *int             `json:"inventory_count" validate:"omitempty,gte=0"`
}

func decodeProductUpdate(r *http.Request, maxUploadMB int) (*product.UpdateProductInput, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var payload updateProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, noop, err
		}
		return &product.UpdateProductInput{
			Title:          payload.Title,
			Description:    payload.Description,
			Price:          payload.Price,
			InventoryCount: payload.InventoryCount,
		}, noop, nil
	}

	if err := validators.ParseMultipartForm(r, maxUploadMB); err != nil {
		return nil, noop, err
	}

	input := product.UpdateProductInput{}
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		input.Title = &title
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		input.Description = &description
	}

	price, err := parsePrice(r.FormValue("price"), false)
	if err != nil {
		return nil, noop, err
	}
	input.Price = price

	if raw := strings.TrimSpace(r.FormValue("inventory_count")); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "inventory_count must be numeric")
		}
		input.InventoryCount = &count
	}

	if err := validators.ValidateStruct(&input); err != nil {
		return nil, noop, err
	}

	file, err := validators.FormFile(r, "image")
	if err != nil {
		return nil, noop, err
	}
	if file == nil {
		return &input, noop, nil
	}

	input.Image = &product.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Body:        file.Body,
	}
	return &input, func() { file.Close() }, nil
}
