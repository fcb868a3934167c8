package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/shopzone-backend/api/responses"
	"github.com/angelmondragon/shopzone-backend/api/validators"
	"github.com/angelmondragon/shopzone-backend/internal/users"
	"github.com/angelmondragon/shopzone-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
	"github.com/angelmondragon/shopzone-backend/pkg/types"
)

// UserGet fetches a single user by id.
func UserGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		user, err := svc.GetUser(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "fetched user", user)
	}
}

// UsersList returns every registered user.
func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		list, err := svc.ListUsers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "fetched users", len(list), list)
	}
}

type updateDetailsPayload struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=60"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

// UserUpdateDetails patches the authenticated user's profile fields. Accepts
// JSON or a multipart form carrying a replacement profile image.
func UserUpdateDetails(svc users.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, cleanup, err := decodeUpdateDetailsRequest(r, cfg.GCS.MaxUploadMB)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		user, err := svc.UpdateDetails(r.Context(), userID, *req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "details updated", user)
	}
}

// UserUpdateAddress replaces the authenticated user's shipping address.
func UserUpdateAddress(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload struct {
			Address types.Address `json:"address" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateAddress(r.Context(), userID, payload.Address)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "address updated", user)
	}
}

func decodeUpdateDetailsRequest(r *http.Request, maxUploadMB int) (*users.UpdateDetailsRequest, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var payload updateDetailsPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, noop, err
		}
		if payload.Password != nil || payload.PasswordConfirm != nil {
			return nil, noop, pkgerrors.New(pkgerrors.CodeValidation, "this route is not for password updates, please use /update-password")
		}
		return &users.UpdateDetailsRequest{Name: payload.Name, Email: payload.Email}, noop, nil
	}

	if err := validators.ParseMultipartForm(r, maxUploadMB); err != nil {
		return nil, noop, err
	}
	if r.FormValue("password") != "" || r.FormValue("password_confirm") != "" {
		return nil, noop, pkgerrors.New(pkgerrors.CodeValidation, "this route is not for password updates, please use /update-password")
	}

	req := users.UpdateDetailsRequest{}
	if name := strings.TrimSpace(r.FormValue("name")); name != "" {
		req.Name = &name
	}
	if email := strings.TrimSpace(r.FormValue("email")); email != "" {
		req.Email = &email
	}
	if err := validators.ValidateStruct(&req); err != nil {
		return nil, noop, err
	}

	file, err := validators.FormFile(r, "image")
	if err != nil {
		return nil, noop, err
	}
	if file == nil {
		return &req, noop, nil
	}

	req.Image = &users.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Body:        file.Body,
	}
	return &req, func() { file.Close() }, nil
}
