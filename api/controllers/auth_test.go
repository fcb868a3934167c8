package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shopzone-backend/api/middleware"
	authsvc "github.com/angelmondragon/shopzone-backend/internal/auth"
	"github.com/angelmondragon/shopzone-backend/internal/users"
	"github.com/angelmondragon/shopzone-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubAuthService struct {
	resp       *authsvc.AuthResponse
	err        error
	gotSignup  *authsvc.SignupRequest
	gotLogin   *authsvc.LoginRequest
	gotEmail   string
	gotBaseURL string
	gotToken   string
}

func (s *stubAuthService) Signup(ctx context.Context, req authsvc.SignupRequest) (*authsvc.AuthResponse, error) {
	s.gotSignup = &req
	return s.resp, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.AuthResponse, error) {
	s.gotLogin = &req
	return s.resp, s.err
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email, resetBaseURL string) error {
	s.gotEmail = email
	s.gotBaseURL = resetBaseURL
	return s.err
}

func (s *stubAuthService) ResetPassword(ctx context.Context, rawToken string, req authsvc.ResetPasswordRequest) (*authsvc.AuthResponse, error) {
	s.gotToken = rawToken
	return s.resp, s.err
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, userID uuid.UUID, req authsvc.UpdatePasswordRequest) (*authsvc.AuthResponse, error) {
	return s.resp, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "secret", Issuer: "shopzone", ExpirationMinutes: 60, CookieName: "jwt"},
		GCS: config.GCSConfig{MaxUploadMB: 5},
	}
}

func authResponse() *authsvc.AuthResponse {
	return &authsvc.AuthResponse{
		Token: "signed-token",
		User:  &users.UserDTO{ID: uuid.New(), Email: "asha@example.com"},
	}
}

func sessionCookie(t *testing.T, resp *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestAuthSignupJSON(t *testing.T) {
	svc := &stubAuthService{resp: authResponse()}
	handler := AuthSignup(svc, testConfig(), nil)

	body := `{"name":"Asha","email":"asha@example.com","password":"secret123","password_confirm":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotSignup == nil || svc.gotSignup.Email != "asha@example.com" {
		t.Fatalf("signup payload not forwarded: %+v", svc.gotSignup)
	}

	cookie := sessionCookie(t, resp, "jwt")
	if cookie.Value != "signed-token" || !cookie.HttpOnly {
		t.Fatalf("unexpected session cookie %+v", cookie)
	}

	var envelope struct {
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Token != "signed-token" {
		t.Fatal("token missing from response body")
	}
	if !strings.Contains(envelope.Message, "asha@example.com") {
		t.Fatalf("expected greeting with email, got %q", envelope.Message)
	}
}

func TestAuthSignupMultipartWithAvatar(t *testing.T) {
	svc := &stubAuthService{resp: authResponse()}
	handler := AuthSignup(svc, testConfig(), nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("name", "Asha")
	writer.WriteField("email", "asha@example.com")
	writer.WriteField("password", "secret123")
	writer.WriteField("password_confirm", "secret123")
	part, err := writer.CreateFormFile("image", "avatar.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("png-bytes"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotSignup == nil || svc.gotSignup.Avatar == nil {
		t.Fatal("expected avatar forwarded to service")
	}
	if svc.gotSignup.Avatar.Filename != "avatar.png" {
		t.Fatalf("unexpected avatar filename %q", svc.gotSignup.Avatar.Filename)
	}
	data, err := io.ReadAll(svc.gotSignup.Avatar.Body)
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("avatar body not readable: %v %q", err, data)
	}
}

func TestAuthSignupRejectsMalformedBody(t *testing.T) {
	handler := AuthSignup(&stubAuthService{}, testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(`{"email":"nope"`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginSetsCookie(t *testing.T) {
	svc := &stubAuthService{resp: authResponse()}
	handler := AuthLogin(svc, testConfig().JWT, nil)

	body := `{"email":"asha@example.com","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	cookie := sessionCookie(t, resp, "jwt")
	if cookie.Value != "signed-token" {
		t.Fatalf("unexpected cookie value %q", cookie.Value)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect email or password")}
	handler := AuthLogin(svc, testConfig().JWT, nil)

	body := `{"email":"asha@example.com","password":"wrong-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthLogoutClearsCookie(t *testing.T) {
	handler := AuthLogout(testConfig().JWT, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/logout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	cookie := sessionCookie(t, resp, "jwt")
	if cookie.Value != "loggedout" {
		t.Fatalf("expected tombstone cookie, got %q", cookie.Value)
	}
}

func TestAuthForgotPasswordDerivesResetURL(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthForgotPassword(svc, nil)

	body := `{"email":"asha@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "http://api.shopzone.dev/api/v1/users/forgot-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotEmail != "asha@example.com" {
		t.Fatalf("email not forwarded, got %q", svc.gotEmail)
	}
	if svc.gotBaseURL != "http://api.shopzone.dev/api/v1/users/reset-password" {
		t.Fatalf("unexpected reset base url %q", svc.gotBaseURL)
	}
}

func TestAuthResetPasswordUsesTokenParam(t *testing.T) {
	svc := &stubAuthService{resp: authResponse()}

	router := chi.NewRouter()
	router.Patch("/api/v1/users/reset-password/{token}", AuthResetPassword(svc, testConfig().JWT, nil))

	body := `{"password":"secret123","password_confirm":"secret123"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/reset-password/raw-token-value", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotToken != "raw-token-value" {
		t.Fatalf("token param not forwarded, got %q", svc.gotToken)
	}
}

func TestAuthUpdatePasswordRequiresAuthContext(t *testing.T) {
	handler := AuthUpdatePassword(&stubAuthService{}, testConfig().JWT, nil)

	body := `{"current_password":"secret123","new_password":"secret456"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthUpdatePasswordSuccess(t *testing.T) {
	svc := &stubAuthService{resp: authResponse()}
	handler := AuthUpdatePassword(svc, testConfig().JWT, nil)

	body := `{"current_password":"secret123","new_password":"secret456"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	sessionCookie(t, resp, "jwt")
}
