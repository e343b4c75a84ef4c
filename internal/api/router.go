package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/clinicbook/clinic-scheduling/internal/appointment"
)

type RouterConfig struct {
	Service   *appointment.Service
	Directory ActorDirectory
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Everything else requires a resolved caller identity.
	r.Group(func(r chi.Router) {
		r.Use(ActorMiddleware(cfg.Directory))

		r.Get("/doctors", listDoctorsHandler(cfg.Service))
		r.Get("/doctors/{id}", getDoctorHandler(cfg.Service))
		r.Get("/doctors/{id}/slots", availableSlotsHandler(cfg.Service))

		r.Post("/appointments", createAppointmentHandler(cfg.Service))
		r.Get("/appointments", listAppointmentsHandler(cfg.Service))
		r.Patch("/appointments/{id}/status", updateStatusHandler(cfg.Service))
		r.Patch("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Service))
		r.Patch("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Service))
	})

	return r
}
