package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/shopzone-backend/internal/users"
	pkgAuth "github.com/angelmondragon/shopzone-backend/pkg/auth"
	"github.com/angelmondragon/shopzone-backend/pkg/config"
	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
	"github.com/angelmondragon/shopzone-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/angelmondragon/shopzone-backend/pkg/mailer"
	"github.com/angelmondragon/shopzone-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubRepo struct {
	byEmail      *models.User
	byID         *models.User
	byToken      *models.User
	findErr      error
	createErr    error
	created      *users.CreateUserDTO
	setToken     bool
	clearedToken bool
	newHash      string
}

func (s *stubRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &dto
	user := dto.ToModel()
	user.ID = uuid.New()
	return user, nil
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.byEmail == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byEmail, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.byID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byID, nil
}

func (s *stubRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error {
	s.newHash = hash
	return nil
}

func (s *stubRepo) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	s.setToken = true
	return nil
}

func (s *stubRepo) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	s.clearedToken = true
	return nil
}

func (s *stubRepo) FindByValidResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	if s.byToken == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byToken, nil
}

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func testConfigs() (config.JWTConfig, config.PasswordConfig, config.MailConfig) {
	return config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "shopzone-test",
			ExpirationMinutes: 15,
		}, config.PasswordConfig{
			MinLength: 8,
			MaxLength: 16,
		}, config.MailConfig{ResetTokenTTL: 10 * time.Minute}
}

func newAuthService(t *testing.T, repo *stubRepo, mail *recordingMailer) Service {
	t.Helper()
	jwtCfg, pwCfg, mailCfg := testConfigs()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Mailer:         mail,
		JWTConfig:      jwtCfg,
		PasswordConfig: pwCfg,
		MailConfig:     mailCfg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func hashedUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Name:         "Asha",
		Email:        "asha@example.com",
		Role:         enums.RoleUser,
		PasswordHash: hash,
	}
}

func TestSignupIssuesToken(t *testing.T) {
	repo := &stubRepo{}
	svc := newAuthService(t, repo, &recordingMailer{})

	resp, err := svc.Signup(context.Background(), SignupRequest{
		Name:            "Asha Pillai",
		Email:           "asha@example.com",
		Password:        "sekrit-pass",
		PasswordConfirm: "sekrit-pass",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.User == nil || resp.User.Email != "asha@example.com" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if repo.created.Role != enums.RoleUser {
		t.Fatalf("expected default role user, got %s", repo.created.Role)
	}
	if repo.created.PasswordHash == "sekrit-pass" {
		t.Fatal("password must be hashed before persistence")
	}

	jwtCfg, _, _ := testConfigs()
	claims, err := pkgAuth.ParseAccessToken(jwtCfg, resp.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Fatalf("token user %s does not match response user %s", claims.UserID, resp.User.ID)
	}
}

func TestSignupPasswordPolicy(t *testing.T) {
	svc := newAuthService(t, &stubRepo{}, &recordingMailer{})

	for _, password := range []string{"short", strings.Repeat("x", 17)} {
		_, err := svc.Signup(context.Background(), SignupRequest{
			Name:            "Asha",
			Email:           "asha@example.com",
			Password:        password,
			PasswordConfirm: password,
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %q, got %v", password, err)
		}
	}
}

func TestSignupPasswordMismatch(t *testing.T) {
	svc := newAuthService(t, &stubRepo{}, &recordingMailer{})

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name:            "Asha",
		Email:           "asha@example.com",
		Password:        "sekrit-pass",
		PasswordConfirm: "other-pass11",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := &stubRepo{createErr: errors.New(`duplicate key value violates unique constraint "users_email_key"`)}
	svc := newAuthService(t, repo, &recordingMailer{})

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name:            "Asha",
		Email:           "asha@example.com",
		Password:        "sekrit-pass",
		PasswordConfirm: "sekrit-pass",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for duplicate email, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	user := hashedUser(t, "sekrit-pass")
	svc := newAuthService(t, &stubRepo{byEmail: user}, &recordingMailer{})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "asha@example.com",
		Password: "sekrit-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" || resp.User.ID != user.ID {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLoginConflatesUnknownEmailAndWrongPassword(t *testing.T) {
	user := hashedUser(t, "sekrit-pass")

	cases := map[string]*stubRepo{
		"unknown email":  {},
		"wrong password": {byEmail: user},
	}
	for name, repo := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newAuthService(t, repo, &recordingMailer{})
			_, err := svc.Login(context.Background(), LoginRequest{
				Email:    "asha@example.com",
				Password: "wrong-password",
			})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if typed.Message() != invalidCredentialsMessage {
				t.Fatalf("expected %q, got %q", invalidCredentialsMessage, typed.Message())
			}
		})
	}
}

func TestForgotPasswordSendsResetLink(t *testing.T) {
	user := hashedUser(t, "sekrit-pass")
	repo := &stubRepo{byEmail: user}
	mail := &recordingMailer{}
	svc := newAuthService(t, repo, mail)

	err := svc.ForgotPassword(context.Background(), "asha@example.com", "https://shop.example.com/api/v1/reset-password")
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if !repo.setToken {
		t.Fatal("expected reset token to be stored")
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mail.sent))
	}
	if !strings.Contains(mail.sent[0].Body, "https://shop.example.com/api/v1/reset-password/") {
		t.Fatalf("reset link missing from body:\n%s", mail.sent[0].Body)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := newAuthService(t, &stubRepo{}, &recordingMailer{})

	err := svc.ForgotPassword(context.Background(), "ghost@example.com", "https://shop.example.com/reset")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestForgotPasswordRollsBackTokenOnMailFailure(t *testing.T) {
	user := hashedUser(t, "sekrit-pass")
	repo := &stubRepo{byEmail: user}
	mail := &recordingMailer{err: errors.New("sendgrid down")}
	svc := newAuthService(t, repo, mail)

	err := svc.ForgotPassword(context.Background(), "asha@example.com", "https://shop.example.com/reset")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !repo.clearedToken {
		t.Fatal("expected stored token to be rolled back")
	}
}

func TestResetPasswordInvalidToken(t *testing.T) {
	svc := newAuthService(t, &stubRepo{}, &recordingMailer{})

	_, err := svc.ResetPassword(context.Background(), "bogus-token", ResetPasswordRequest{
		Password:        "fresh-pass11",
		PasswordConfirm: "fresh-pass11",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResetPasswordSuccess(t *testing.T) {
	user := hashedUser(t, "sekrit-pass")
	repo := &stubRepo{byToken: user}
	svc := newAuthService(t, repo, &recordingMailer{})

	resp, err := svc.ResetPassword(context.Background(), "raw-token", ResetPasswordRequest{
		Password:        "fresh-pass11",
		PasswordConfirm: "fresh-pass11",
	})
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a fresh token")
	}
	if repo.newHash == "" || repo.newHash == user.PasswordHash {
		t.Fatal("expected a new password hash to be stored")
	}

	jwtCfg, _, _ := testConfigs()
	claims, err := pkgAuth.ParseAccessToken(jwtCfg, resp.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if user.PasswordChangedAfter(claims.IssuedAt.Time) {
		t.Fatal("fresh token must postdate the password change")
	}
}

func TestUpdatePasswordWrongCurrent(t *testing.T) {
	user := hashedUser(t, "sekrit-pass")
	svc := newAuthService(t, &stubRepo{byID: user}, &recordingMailer{})

	_, err := svc.UpdatePassword(context.Background(), user.ID, UpdatePasswordRequest{
		CurrentPassword: "not-the-pass",
		NewPassword:     "fresh-pass11",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUpdatePasswordSuccess(t *testing.T) {
	user := hashedUser(t, "sekrit-pass")
	repo := &stubRepo{byID: user}
	svc := newAuthService(t, repo, &recordingMailer{})

	resp, err := svc.UpdatePassword(context.Background(), user.ID, UpdatePasswordRequest{
		CurrentPassword: "sekrit-pass",
		NewPassword:     "fresh-pass11",
	})
	if err != nil {
		t.Fatalf("update password: %v", err)
	}
	if resp.Token == "" || repo.newHash == "" {
		t.Fatal("expected new token and stored hash")
	}
}
