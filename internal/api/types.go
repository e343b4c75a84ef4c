package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinic-scheduling/internal/appointment"
	"github.com/clinicbook/clinic-scheduling/internal/schedule"
)

type CreateAppointmentRequest struct {
	DoctorID string `json:"doctor_id"`
	StartAt  string `json:"start_at"` // RFC3339
}

type UpdateStatusRequest struct {
	Status string `json:"status"` // approved | rejected
}

type RescheduleRequest struct {
	StartAt string `json:"start_at"` // RFC3339
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	StartAt   time.Time `json:"start_at"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PartySummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Department string    `json:"department,omitempty"`
}

type AppointmentDetailResponse struct {
	AppointmentResponse
	Doctor  *PartySummary `json:"doctor,omitempty"`
	Patient *PartySummary `json:"patient,omitempty"`
}

type DoctorResponse struct {
	ID           uuid.UUID                   `json:"id"`
	Name         string                      `json:"name"`
	Email        string                      `json:"email"`
	Department   string                      `json:"department,omitempty"`
	Availability schedule.WeeklyAvailability `json:"availability"`
	SlotMinutes  int                         `json:"slot_minutes"`
}

type SlotsResponse struct {
	Slots []string `json:"slots"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		StartAt:   a.StartAt,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toDetailResponse(d appointment.AppointmentDetail) AppointmentDetailResponse {
	resp := AppointmentDetailResponse{
		AppointmentResponse: toAppointmentResponse(&d.Appointment),
	}

	if d.Doctor != nil {
		resp.Doctor = &PartySummary{
			ID:    d.Doctor.ID,
			Name:  d.Doctor.Name,
			Email: d.Doctor.Email,
		}
		if d.Doctor.Department != nil {
			resp.Doctor.Department = *d.Doctor.Department
		}
	}

	if d.Patient != nil {
		resp.Patient = &PartySummary{
			ID:   d.Patient.ID,
			Name: d.Patient.Name,
		}
		if d.Patient.Email != nil {
			resp.Patient.Email = *d.Patient.Email
		}
	}

	return resp
}

func toDoctorResponse(d *appointment.Doctor) DoctorResponse {
	resp := DoctorResponse{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		Availability: d.Availability,
		SlotMinutes:  d.SlotMinutes,
	}
	if d.Availability == nil {
		resp.Availability = schedule.WeeklyAvailability{}
	}
	if d.Department != nil {
		resp.Department = *d.Department
	}
	return resp
}
