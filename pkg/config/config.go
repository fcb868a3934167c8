package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "shopzone"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced by tests and tooling.
const (
	EnvAppEnv    = "SHOPZONE_APP_ENV"
	EnvPort      = "SHOPZONE_APP_PORT"
	EnvDBDSN     = "SHOPZONE_DB_DSN"
	EnvRedisURL  = "SHOPZONE_REDIS_URL"
	EnvJWTSecret = "SHOPZONE_JWT_SECRET"
	EnvJWTIssuer = "SHOPZONE_JWT_ISSUER"
	EnvJWTExp    = "SHOPZONE_JWT_EXPIRATION_MINUTES"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Sendgrid      SendgridConfig
	Mail          MailConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPZONE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPZONE_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"SHOPZONE_APP_BASE_URL"`
	LogLevel     string `envconfig:"SHOPZONE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPZONE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPZONE_DB_DSN" required:"true"`
	Driver string `envconfig:"SHOPZONE_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"SHOPZONE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPZONE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPZONE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPZONE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPZONE_REDIS_URL"`
	Address      string        `envconfig:"SHOPZONE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPZONE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPZONE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPZONE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPZONE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPZONE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPZONE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPZONE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPZONE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPZONE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SHOPZONE_JWT_EXPIRATION_MINUTES" required:"true"`
	CookieName        string `envconfig:"SHOPZONE_JWT_COOKIE_NAME" default:"jwt"`
	CookieSecure      bool   `envconfig:"SHOPZONE_JWT_COOKIE_SECURE" default:"false"`
}

// Expiry returns the access token lifetime.
func (j JWTConfig) Expiry() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength        int `envconfig:"SHOPZONE_PASSWORD_MIN_LENGTH" default:"8"`
	MaxLength        int `envconfig:"SHOPZONE_PASSWORD_MAX_LENGTH" default:"16"`
	ArgonMemoryKB    int `envconfig:"SHOPZONE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPZONE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPZONE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPZONE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPZONE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"SHOPZONE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"SHOPZONE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"SHOPZONE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"SHOPZONE_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"SHOPZONE_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"SHOPZONE_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPZONE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHOPZONE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SHOPZONE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHOPZONE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName  string `envconfig:"SHOPZONE_GCS_BUCKET_NAME"`
	MaxUploadMB int    `envconfig:"SHOPZONE_MAX_UPLOAD_MB" default:"10"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"SHOPZONE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"SHOPZONE_SENDGRID_FROM_EMAIL"`
}

type MailConfig struct {
	ResetTokenTTL time.Duration `envconfig:"SHOPZONE_MAIL_RESET_TOKEN_TTL" default:"10m"`
}
