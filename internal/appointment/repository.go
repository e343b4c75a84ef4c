package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken means the atomic claim on (doctor, instant) lost the
	// race: some active appointment already holds that slot. It is an
	// expected outcome, resolved by the caller picking another slot, and
	// must never be conflated with infrastructure failures.
	ErrSlotTaken = errors.New("slot already has an active appointment")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPatientByAccountID(ctx context.Context, accountID uuid.UUID) (*Patient, error)

	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetDoctorByAccountID(ctx context.Context, accountID uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ClaimedStartsForDay snapshots the instants held by active
	// appointments of a doctor on one day. Advisory only: the snapshot
	// may be stale by commit time.
	ClaimedStartsForDay(ctx context.Context, doctorID uuid.UUID, day time.Time) (map[time.Time]bool, error)

	// CreatePendingAppointment is the atomic claim. At most one
	// concurrent caller succeeds per (doctor, instant) while any active
	// appointment holds that pair; losers get ErrSlotTaken. Enforced by
	// a store uniqueness constraint, not read-then-write.
	CreatePendingAppointment(ctx context.Context, doctorID, patientID uuid.UUID, startAt time.Time, snapName, snapEmail *string) (*Appointment, error)

	// UpdateAppointmentStatus is a compare-and-set: it applies the
	// transition only if the row is still in the expected source status.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	// RescheduleAppointment atomically moves a pending appointment to a
	// new instant, claiming the new slot and releasing the old one as a
	// single step. ErrSlotTaken when the new slot is held.
	RescheduleAppointment(ctx context.Context, id uuid.UUID, newStart time.Time) (*Appointment, error)

	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error)
	ListAllAppointments(ctx context.Context) ([]AppointmentDetail, error)

	InsertEvent(ctx context.Context, ev EventLog) error
}
