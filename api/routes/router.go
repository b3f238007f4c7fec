package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stagelink/stagelink-backend/api/controllers"
	"github.com/stagelink/stagelink-backend/api/middleware"
	"github.com/stagelink/stagelink-backend/internal/contracts"
	"github.com/stagelink/stagelink-backend/internal/negotiation"
	"github.com/stagelink/stagelink-backend/pkg/config"
	"github.com/stagelink/stagelink-backend/pkg/db"
	"github.com/stagelink/stagelink-backend/pkg/logger"
	"github.com/stagelink/stagelink-backend/pkg/pubsub"
	"github.com/stagelink/stagelink-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	pubsubClient pubsub.Pinger,
	negotiationService negotiation.Service,
	contractService contracts.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, pubsubClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.RateLimit(redisClient, cfg.RateLimit, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", controllers.ListBookings(negotiationService, logg))
			r.Get("/{bookingId}", controllers.BookingDetail(negotiationService, logg))
			r.Get("/{bookingId}/history", controllers.BookingHistory(negotiationService, logg))
			r.Post("/{bookingId}/proposals", controllers.ProposeChange(negotiationService, logg))
			r.Post("/{bookingId}/accept", controllers.AcceptOffer(negotiationService, logg))
			r.Post("/{bookingId}/decline", controllers.DeclineOffer(negotiationService, logg))
			r.Post("/{bookingId}/contract", controllers.InitiateContract(contractService, logg))
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/{contractId}", controllers.ContractDetail(contractService, logg))
			r.Get("/{contractId}/versions", controllers.ContractVersions(contractService, logg))
			r.Post("/{contractId}/review", controllers.ReviewContract(contractService, logg))
			r.Post("/{contractId}/accept", controllers.AcceptContract(contractService, logg))
			r.Post("/{contractId}/sign", controllers.SignContract(contractService, logg))
			r.Post("/{contractId}/edits", controllers.SubmitContractEdit(contractService, logg))
			r.With(middleware.RequireRole("admin", logg)).
				Post("/{contractId}/edits/{requestId}/resolve", controllers.ResolveContractEdit(contractService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.RateLimit(redisClient, cfg.RateLimit, logg))
		r.Post("/v1/contracts/sweep", controllers.AdminSweepContracts(contractService, logg))
	})

	return r
}
