package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/stagelink/stagelink-backend/api/responses"
	"github.com/stagelink/stagelink-backend/pkg/config"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
	"github.com/stagelink/stagelink-backend/pkg/logger"
)

const envHeader = "X-StageLink-Env"

const readinessTimeout = 3 * time.Second

type pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each dependency with a short timeout. Any failure
// returns 503 naming the dependency that failed.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis, pubsub pinger) http.HandlerFunc {
	checks := []struct {
		name string
		ping pinger
	}{
		{"database", db},
		{"redis", redis},
		{"pubsub", pubsub},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		for _, check := range checks {
			if check.ping == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			err := check.ping.Ping(ctx)
			cancel()
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable").
						WithDetails(map[string]any{"dependency": check.name}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
