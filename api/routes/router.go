package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/shopzone-backend/api/controllers"
	"github.com/angelmondragon/shopzone-backend/api/middleware"
	authsvc "github.com/angelmondragon/shopzone-backend/internal/auth"
	cartsvc "github.com/angelmondragon/shopzone-backend/internal/cart"
	product "github.com/angelmondragon/shopzone-backend/internal/products"
	"github.com/angelmondragon/shopzone-backend/internal/users"
	"github.com/angelmondragon/shopzone-backend/pkg/config"
	"github.com/angelmondragon/shopzone-backend/pkg/db/models"
	"github.com/angelmondragon/shopzone-backend/pkg/enums"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
	"github.com/angelmondragon/shopzone-backend/pkg/metrics"
	"github.com/angelmondragon/shopzone-backend/pkg/redis"
)

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Deps bundles everything the router mounts.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	Metrics      *metrics.HTTPMetrics
	Redis        *redis.Client
	HealthChecks map[string]controllers.Pinger
	UserLoader   userLoader
	AuthService  authsvc.Service
	UsersService users.Service
	Products     product.Service
	Cart         cartsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	r.Route("/healthz", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.HealthChecks))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	protect := middleware.Protect(cfg.JWT, deps.UserLoader, logg)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, deps.Redis, logg)).Post("/signup", controllers.AuthSignup(deps.AuthService, cfg, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, cfg.JWT, logg))
		r.Get("/logout", controllers.AuthLogout(cfg.JWT, logg))
		r.Post("/forgot-password", controllers.AuthForgotPassword(deps.AuthService, logg))
		r.Patch("/reset-password/{token}", controllers.AuthResetPassword(deps.AuthService, cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Patch("/update-password", controllers.AuthUpdatePassword(deps.AuthService, cfg.JWT, logg))
			r.Patch("/update-details", controllers.UserUpdateDetails(deps.UsersService, cfg, logg))
			r.Patch("/update-address", controllers.UserUpdateAddress(deps.UsersService, logg))

			r.With(middleware.RestrictTo(logg, enums.RoleSuperAdmin)).
				Get("/", controllers.UsersList(deps.UsersService, logg))
			r.With(middleware.RestrictTo(logg, enums.RoleSuperAdmin, enums.RoleUser)).
				Get("/{userId}", controllers.UserGet(deps.UsersService, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(protect)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RestrictTo(logg, enums.RoleSuperAdmin, enums.RoleManager))
			r.Get("/", controllers.ProductsList(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RestrictTo(logg, enums.RoleSuperAdmin))
			r.Post("/", controllers.ProductCreate(deps.Products, cfg, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, cfg, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(protect)
		r.Use(middleware.RestrictTo(logg, enums.RoleUser))
		r.Get("/", controllers.CartGet(deps.Cart, logg))
		r.Patch("/", controllers.CartUpdate(deps.Cart, logg))
		r.Post("/checkout", controllers.CartCheckout(deps.Cart, logg))
	})

	return r
}
