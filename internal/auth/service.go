package auth

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/angelmondragon/shopzone-backend/internal/users"
	pkgAuth "github.com/angelmondragon/shopzone-backend/pkg/auth"
	"github.com/angelmondragon/shopzone-backend/pkg/config"
	"github.com/angelmondragon/shopzone-backend/pkg/db"
	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
	"github.com/angelmondragon/shopzone-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
	"github.com/angelmondragon/shopzone-backend/pkg/mailer"
	"github.com/angelmondragon/shopzone-backend/pkg/security"
	"github.com/angelmondragon/shopzone-backend/pkg/storage/gcs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "incorrect email or password"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, email, resetBaseURL string) error
	ResetPassword(ctx context.Context, rawToken string, req ResetPasswordRequest) (*AuthResponse, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, req UpdatePasswordRequest) (*AuthResponse, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	FindByValidResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
}

type service struct {
	users       userRepository
	mail        mailer.Mailer
	uploader    gcs.Uploader
	logg        *logger.Logger
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	mailCfg     config.MailConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	Mailer         mailer.Mailer
	Uploader       gcs.Uploader
	Logger         *logger.Logger
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	MailConfig     config.MailConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	return &service{
		users:       params.UserRepo,
		mail:        params.Mailer,
		uploader:    params.Uploader,
		logg:        params.Logger,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		mailCfg:     params.MailConfig,
	}, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := s.checkPasswordPolicy(req.Password); err != nil {
		return nil, err
	}
	if req.Password != req.PasswordConfirm {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	role := enums.RoleUser
	if req.Role != "" {
		parsed, err := enums.ParseRole(req.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		role = parsed
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var image *string
	if req.Avatar != nil && s.uploader != nil {
		objectName := fmt.Sprintf("avatars/%s%s", uuid.NewString(), path.Ext(req.Avatar.Filename))
		url, err := s.uploader.Upload(ctx, objectName, req.Avatar.ContentType, req.Avatar.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload avatar")
		}
		image = &url
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Image:        image,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.issueToken(user, time.Now().UTC())
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user, time.Now().UTC())
}

// ForgotPassword emails a reset link. The stored token is rolled back when the
// email cannot be dispatched so a half-finished reset never lingers.
func (s *service) ForgotPassword(ctx context.Context, email, resetBaseURL string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no user found with that email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	rawToken, err := security.NewResetToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}

	ttl := s.mailCfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	expiresAt := time.Now().UTC().Add(ttl)
	if err := s.users.SetResetToken(ctx, user.ID, security.HashResetToken(rawToken), expiresAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	resetURL := fmt.Sprintf("%s/%s", strings.TrimRight(resetBaseURL, "/"), rawToken)
	body := fmt.Sprintf(
		"Hi %s,\n\nForgot your password? Submit a request with your new password to:\n\n  %s\n\nThis link expires in %d minutes. If you did not request a reset, ignore this email.\n",
		user.Name, resetURL, int(ttl.Minutes()),
	)

	if err := s.mail.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Your password reset token (valid for 10 minutes)",
		Body:    body,
	}); err != nil {
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil && s.logg != nil {
			s.logg.Error(ctx, "failed to roll back reset token", clearErr)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send reset email")
	}

	return nil
}

func (s *service) ResetPassword(ctx context.Context, rawToken string, req ResetPasswordRequest) (*AuthResponse, error) {
	if err := s.checkPasswordPolicy(req.Password); err != nil {
		return nil, err
	}
	if req.Password != req.PasswordConfirm {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}

	now := time.Now().UTC()
	user, err := s.users.FindByValidResetToken(ctx, security.HashResetToken(rawToken), now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "token is invalid or has expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset token")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	user.PasswordChangedAt = &now

	// Mint strictly after the change timestamp so the fresh token survives
	// the staleness check.
	return s.issueToken(user, now.Add(time.Second))
}

func (s *service) UpdatePassword(ctx context.Context, userID uuid.UUID, req UpdatePasswordRequest) (*AuthResponse, error) {
	if err := s.checkPasswordPolicy(req.NewPassword); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "your current password is wrong")
	}

	now := time.Now().UTC()
	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	user.PasswordChangedAt = &now

	return s.issueToken(user, now.Add(time.Second))
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) issueToken(user *models.User, now time.Time) (*AuthResponse, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &AuthResponse{Token: token, User: users.FromModel(user)}, nil
}

func (s *service) checkPasswordPolicy(password string) error {
	min, max := s.passwordCfg.MinLength, s.passwordCfg.MaxLength
	if min <= 0 {
		min = 8
	}
	if max <= 0 {
		max = 16
	}
	if len(password) < min || len(password) > max {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be between %d and %d characters", min, max))
	}
	return nil
}
