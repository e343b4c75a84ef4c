package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	redisclient "github.com/clinicbook/clinic-scheduling/internal/redis"
	"github.com/clinicbook/clinic-scheduling/internal/schedule"
)

const (
	EventAppointmentCreated     = "APPOINTMENT_CREATED"
	EventAppointmentApproved    = "APPOINTMENT_APPROVED"
	EventAppointmentRejected    = "APPOINTMENT_REJECTED"
	EventAppointmentCancelled   = "APPOINTMENT_CANCELLED"
	EventAppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	now    func() time.Time
}

// NewService wires the booking engine. now supplies the current instant
// for validation and slot generation; pass nil for wall-clock time.
func NewService(repo Repository, locker redisclient.Locker, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   repo,
		locker: locker,
		now:    now,
	}
}

// Book validates a requested instant against the doctor's weekly
// availability and commits the claim. The Redis slot lock only narrows
// the race window between concurrent bookers; the store's uniqueness
// constraint is what actually guarantees at most one active appointment
// per (doctor, instant).
func (s *Service) Book(ctx context.Context, actor Actor, doctorID uuid.UUID, requested time.Time) (*Appointment, error) {
	if actor.Role != RolePatient {
		return nil, ErrForbidden
	}

	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	patient, err := s.repo.GetPatientByID(ctx, actor.ProfileID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	aligned, err := schedule.Validate(doctor.Availability, doctor.SlotMinutes, requested, s.now())
	if err != nil {
		return nil, err
	}

	var created *Appointment

	err = s.locker.WithClaimLock(ctx, doctor.ID, aligned, func(lockCtx context.Context) error {
		appt, err := s.repo.CreatePendingAppointment(lockCtx, doctor.ID, patient.ID, aligned, &patient.Name, patient.Email)
		if err != nil {
			return err
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentCreated, map[string]any{
			"doctor_id":  doctor.ID.String(),
			"patient_id": patient.ID.String(),
			"start_at":   aligned,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			// Someone else is inside the claim section for this exact
			// slot; from the caller's view the slot is taken.
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	return created, nil
}

// AvailableSlots computes the bookable instants for a doctor on one day.
// Best effort: the claimed-instants snapshot may race with concurrent
// bookings, which surface as ErrSlotTaken at commit time instead.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]time.Time, error) {
	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	claimed, err := s.repo.ClaimedStartsForDay(ctx, doctor.ID, day)
	if err != nil {
		return nil, fmt.Errorf("load claimed slots: %w", err)
	}

	return schedule.GenerateSlots(doctor.Availability, doctor.SlotMinutes, day, s.now(), claimed), nil
}

// Approve moves a pending appointment to approved on behalf of the
// owning doctor.
func (s *Service) Approve(ctx context.Context, actor Actor, id uuid.UUID) (*Appointment, error) {
	return s.resolve(ctx, actor, id, ActionApprove, StatusApproved, EventAppointmentApproved)
}

// Reject moves a pending appointment to rejected, releasing its slot.
func (s *Service) Reject(ctx context.Context, actor Actor, id uuid.UUID) (*Appointment, error) {
	return s.resolve(ctx, actor, id, ActionReject, StatusRejected, EventAppointmentRejected)
}

// Cancel moves a pending or approved appointment to the terminal status
// attributed to the cancelling party, releasing its slot.
func (s *Service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*Appointment, error) {
	return s.resolve(ctx, actor, id, ActionCancel, CancelStatusFor(actor.Role), EventAppointmentCancelled)
}

func (s *Service) resolve(ctx context.Context, actor Actor, id uuid.UUID, action Action, to Status, event string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if err := appt.Authorize(action, actor); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The row moved out of the expected status between our read
			// and the compare-and-set.
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.logEvent(ctx, updated.ID, event, map[string]any{
		"from":     string(appt.Status),
		"to":       string(to),
		"actor":    string(actor.Role),
		"actor_id": actor.ProfileID.String(),
	})

	return updated, nil
}

// Reschedule moves a pending appointment to a new instant on behalf of
// the owning patient. The claim swap is a single atomic store update:
// after it, exactly one of the old and new instants is held, never both
// and never neither.
func (s *Service) Reschedule(ctx context.Context, actor Actor, id uuid.UUID, requested time.Time) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if err := appt.Authorize(ActionReschedule, actor); err != nil {
		return nil, err
	}

	doctor, err := s.repo.GetDoctorByID(ctx, appt.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	aligned, err := schedule.Validate(doctor.Availability, doctor.SlotMinutes, requested, s.now())
	if err != nil {
		return nil, err
	}

	var moved *Appointment

	err = s.locker.WithClaimLock(ctx, doctor.ID, aligned, func(lockCtx context.Context) error {
		updated, err := s.repo.RescheduleAppointment(lockCtx, appt.ID, aligned)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				// No longer pending; the original appointment is untouched.
				return ErrInvalidTransition
			}
			return err
		}

		moved = updated

		s.logEvent(lockCtx, updated.ID, EventAppointmentRescheduled, map[string]any{
			"old_start_at": appt.StartAt,
			"new_start_at": aligned,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	return moved, nil
}

// ListForActor returns the caller-scoped appointment list: patients see
// their own, doctors see their profile's, admins see everything.
func (s *Service) ListForActor(ctx context.Context, actor Actor) ([]AppointmentDetail, error) {
	switch actor.Role {
	case RolePatient:
		return s.repo.ListAppointmentsByPatient(ctx, actor.ProfileID)
	case RoleDoctor:
		return s.repo.ListAppointmentsByDoctor(ctx, actor.ProfileID)
	case RoleAdmin:
		return s.repo.ListAllAppointments(ctx)
	default:
		return nil, ErrForbidden
	}
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return s.repo.ListDoctors(ctx)
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("event", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("insert event log")
	}
}
