package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/shopzone-backend/api/responses"
	"github.com/angelmondragon/shopzone-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shopzone-backend/pkg/errors"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
)

// Pinger is the health-check surface shared by the backing dependencies.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopZone-Env", cfg.App.Env)
		responses.WriteSuccess(w, "live", map[string]string{"status": "live"})
	}
}

// HealthReady pings each named dependency and fails the probe when any one
// is unreachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopZone-Env", cfg.App.Env)

		statuses := make(map[string]string, len(checks))
		var failed error
		for name, check := range checks {
			if check == nil {
				statuses[name] = "skipped"
				continue
			}
			if err := check.Ping(r.Context()); err != nil {
				statuses[name] = "unreachable"
				failed = err
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(ctx, "health.ready.failed", err)
				}
				continue
			}
			statuses[name] = "ok"
		}

		if failed != nil {
			responses.WriteError(r.Context(), nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, failed, "dependency unreachable"))
			return
		}

		responses.WriteSuccess(w, "ready", statuses)
	}
}
