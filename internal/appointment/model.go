package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinic-scheduling/internal/schedule"
)

type Status string

const (
	StatusPending            Status = "pending"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
	StatusCancelledByPatient Status = "cancelled_by_patient"
	StatusCancelledByDoctor  Status = "cancelled_by_doctor"
)

// Active reports whether the status occupies the doctor+instant
// uniqueness constraint. Only active appointments block a slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Actor is the resolved caller identity. For doctors, ProfileID is the
// doctor-profile id, which is distinct from the account id issued by the
// identity collaborator; ownership checks always use the profile id.
// For patients, ProfileID is the patient record id.
type Actor struct {
	Role      Role
	AccountID uuid.UUID
	ProfileID uuid.UUID
}

type Patient struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	Name         string
	Email        string
	Department   *string
	Availability schedule.WeeklyAvailability
	SlotMinutes  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	StartAt   time.Time
	Status    Status
	// Snapshots of the patient's details at booking time; display only.
	PatientNameAtBooking  *string
	PatientEmailAtBooking *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// AppointmentDetail hydrates an appointment with its parties for listing.
type AppointmentDetail struct {
	Appointment
	Doctor  *Doctor
	Patient *Patient
}
