package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/shopzone-backend/api/middleware"
	"github.com/angelmondragon/shopzone-backend/api/responses"
	"github.com/angelmondragon/shopzone-backend/api/validators"
	authsvc "github.com/angelmondragon/shopzone-backend/internal/auth"
	"github.com/angelmondragon/shopzone-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
)

// logoutCookieTTL keeps the clearing cookie alive just long enough for the
// client to observe it.
const logoutCookieTTL = 10 * time.Second

// AuthSignup registers a new account. The request is either plain JSON or a
// multipart form carrying an optional profile image.
func AuthSignup(svc authsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		payload, cleanup, err := decodeSignupRequest(r, cfg.GCS.MaxUploadMB)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		resp, err := svc.Signup(r.Context(), *payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setAuthCookie(w, cfg.JWT, resp.Token)
		responses.WriteSuccessStatus(w, http.StatusCreated, fmt.Sprintf("welcome to ShopZone, %s", resp.User.Email), resp)
	}
}

// AuthLogin exchanges credentials for an access token.
func AuthLogin(svc authsvc.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setAuthCookie(w, jwtCfg, resp.Token)
		responses.WriteSuccess(w, fmt.Sprintf("welcome back, %s", resp.User.Email), resp)
	}
}

// AuthLogout overwrites the session cookie with a short-lived tombstone.
func AuthLogout(jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     jwtCfg.CookieName,
			Value:    "loggedout",
			Path:     "/",
			Expires:  time.Now().Add(logoutCookieTTL),
			HttpOnly: true,
			Secure:   jwtCfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		responses.WriteSuccess(w, "logged out", nil)
	}
}

// AuthForgotPassword dispatches a reset link to the account email. The link
// points back at this API using the requesting host.
func AuthForgotPassword(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload authsvc.ForgotPasswordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ForgotPassword(r.Context(), payload.Email, resetBaseURL(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "reset token sent to email", nil)
	}
}

// AuthResetPassword redeems a raw reset token for a fresh password and session.
func AuthResetPassword(svc authsvc.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		token := strings.TrimSpace(chi.URLParam(r, "token"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "reset token is required"))
			return
		}

		var payload authsvc.ResetPasswordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.ResetPassword(r.Context(), token, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setAuthCookie(w, jwtCfg, resp.Token)
		responses.WriteSuccess(w, "password has been reset", resp)
	}
}

// AuthUpdatePassword rotates the password for the authenticated user.
func AuthUpdatePassword(svc authsvc.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload authsvc.UpdatePasswordRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.UpdatePassword(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setAuthCookie(w, jwtCfg, resp.Token)
		responses.WriteSuccess(w, "password updated", resp)
	}
}

func decodeSignupRequest(r *http.Request, maxUploadMB int) (*authsvc.SignupRequest, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var payload authsvc.SignupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, noop, err
		}
		return &payload, noop, nil
	}

	if err := validators.ParseMultipartForm(r, maxUploadMB); err != nil {
		return nil, noop, err
	}

	payload := authsvc.SignupRequest{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
		Role:            strings.TrimSpace(r.FormValue("role")),
	}
	if err := validators.ValidateStruct(&payload); err != nil {
		return nil, noop, err
	}

	file, err := validators.FormFile(r, "image")
	if err != nil {
		return nil, noop, err
	}
	if file == nil {
		return &payload, noop, nil
	}

	payload.Avatar = &authsvc.AvatarUpload{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Body:        file.Body,
	}
	return &payload, func() { file.Close() }, nil
}

func setAuthCookie(w http.ResponseWriter, cfg config.JWTConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(cfg.Expiry()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func resetBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s/api/v1/users/reset-password", scheme, r.Host)
}

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, nil
}
