package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicbook/clinic-scheduling/internal/appointment"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	actorKey     contextKey = "actor"
)

// RequestIDMiddleware adds a unique request ID to each request context
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs each request with method, path, status, duration
// and request ID.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Dur("duration", time.Since(start)).
			Str("request_id", GetRequestID(r.Context())).
			Msg("http request")
	})
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ActorDirectory resolves trusted caller identities into profile records.
type ActorDirectory interface {
	GetPatientByAccountID(ctx context.Context, accountID uuid.UUID) (*appointment.Patient, error)
	GetDoctorByAccountID(ctx context.Context, accountID uuid.UUID) (*appointment.Doctor, error)
}

// ActorMiddleware turns the identity headers set by the auth gateway
// (X-Account-ID, X-Role) into an appointment.Actor. Doctor and patient
// actors carry their profile id, not the account id: ownership of an
// appointment is always decided against the profile.
func ActorMiddleware(dir ActorDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, err := uuid.Parse(r.Header.Get("X-Account-ID"))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "missing_identity", "X-Account-ID must be a valid UUID")
				return
			}

			role := appointment.Role(r.Header.Get("X-Role"))

			actor := appointment.Actor{Role: role, AccountID: accountID}

			switch role {
			case appointment.RolePatient:
				p, err := dir.GetPatientByAccountID(r.Context(), accountID)
				if err != nil {
					if errors.Is(err, appointment.ErrPatientNotFound) {
						writeError(w, http.StatusUnauthorized, "unknown_patient", "no patient record for this account")
						return
					}
					log.Error().Err(err).Msg("resolve patient identity")
					writeError(w, http.StatusServiceUnavailable, "identity_unavailable", "could not resolve caller identity")
					return
				}
				actor.ProfileID = p.ID
			case appointment.RoleDoctor:
				d, err := dir.GetDoctorByAccountID(r.Context(), accountID)
				if err != nil {
					if errors.Is(err, appointment.ErrDoctorNotFound) {
						writeError(w, http.StatusForbidden, "no_doctor_profile", "no doctor profile for this account")
						return
					}
					log.Error().Err(err).Msg("resolve doctor identity")
					writeError(w, http.StatusServiceUnavailable, "identity_unavailable", "could not resolve caller identity")
					return
				}
				actor.ProfileID = d.ID
			case appointment.RoleAdmin:
				actor.ProfileID = accountID
			default:
				writeError(w, http.StatusUnauthorized, "invalid_role", "X-Role must be patient, doctor or admin")
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext retrieves the resolved caller; the zero Actor means
// the middleware did not run.
func ActorFromContext(ctx context.Context) appointment.Actor {
	if a, ok := ctx.Value(actorKey).(appointment.Actor); ok {
		return a
	}
	return appointment.Actor{}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
