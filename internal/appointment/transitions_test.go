package appointment_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/clinicbook/clinic-scheduling/internal/appointment"
)

func TestAuthorize(t *testing.T) {
	patientID := uuid.New()
	doctorID := uuid.New()

	owningPatient := appointment.Actor{Role: appointment.RolePatient, ProfileID: patientID}
	otherPatient := appointment.Actor{Role: appointment.RolePatient, ProfileID: uuid.New()}
	owningDoctor := appointment.Actor{Role: appointment.RoleDoctor, ProfileID: doctorID}
	otherDoctor := appointment.Actor{Role: appointment.RoleDoctor, ProfileID: uuid.New()}
	admin := appointment.Actor{Role: appointment.RoleAdmin, ProfileID: uuid.New()}

	appt := func(status appointment.Status) *appointment.Appointment {
		return &appointment.Appointment{
			ID:        uuid.New(),
			DoctorID:  doctorID,
			PatientID: patientID,
			Status:    status,
		}
	}

	tests := []struct {
		name    string
		status  appointment.Status
		action  appointment.Action
		actor   appointment.Actor
		wantErr error
	}{
		{"doctor approves pending", appointment.StatusPending, appointment.ActionApprove, owningDoctor, nil},
		{"doctor rejects pending", appointment.StatusPending, appointment.ActionReject, owningDoctor, nil},
		{"patient cannot approve", appointment.StatusPending, appointment.ActionApprove, owningPatient, appointment.ErrForbidden},
		{"admin cannot approve", appointment.StatusPending, appointment.ActionApprove, admin, appointment.ErrForbidden},
		{"non-owning doctor cannot approve", appointment.StatusPending, appointment.ActionApprove, otherDoctor, appointment.ErrForbidden},
		{"approve on rejected is invalid", appointment.StatusRejected, appointment.ActionApprove, owningDoctor, appointment.ErrInvalidTransition},
		{"approve on approved is invalid", appointment.StatusApproved, appointment.ActionApprove, owningDoctor, appointment.ErrInvalidTransition},

		{"owning patient cancels pending", appointment.StatusPending, appointment.ActionCancel, owningPatient, nil},
		{"owning patient cancels approved", appointment.StatusApproved, appointment.ActionCancel, owningPatient, nil},
		{"owning doctor cancels approved", appointment.StatusApproved, appointment.ActionCancel, owningDoctor, nil},
		{"admin cancels anything active", appointment.StatusApproved, appointment.ActionCancel, admin, nil},
		{"non-owning patient cannot cancel", appointment.StatusPending, appointment.ActionCancel, otherPatient, appointment.ErrForbidden},
		{"cancel on rejected is invalid", appointment.StatusRejected, appointment.ActionCancel, owningPatient, appointment.ErrInvalidTransition},
		{"cancel on cancelled is invalid", appointment.StatusCancelledByPatient, appointment.ActionCancel, admin, appointment.ErrInvalidTransition},

		{"owning patient reschedules pending", appointment.StatusPending, appointment.ActionReschedule, owningPatient, nil},
		{"doctor cannot reschedule", appointment.StatusPending, appointment.ActionReschedule, owningDoctor, appointment.ErrForbidden},
		{"reschedule approved is invalid", appointment.StatusApproved, appointment.ActionReschedule, owningPatient, appointment.ErrInvalidTransition},
		{"non-owning patient cannot reschedule", appointment.StatusPending, appointment.ActionReschedule, otherPatient, appointment.ErrForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := appt(tc.status).Authorize(tc.action, tc.actor)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestCancelStatusFor(t *testing.T) {
	assert.Equal(t, appointment.StatusCancelledByPatient, appointment.CancelStatusFor(appointment.RolePatient))
	assert.Equal(t, appointment.StatusCancelledByDoctor, appointment.CancelStatusFor(appointment.RoleDoctor))
	// Admin cancellation is attributed to the doctor.
	assert.Equal(t, appointment.StatusCancelledByDoctor, appointment.CancelStatusFor(appointment.RoleAdmin))
}

func TestStatusActive(t *testing.T) {
	assert.True(t, appointment.StatusPending.Active())
	assert.True(t, appointment.StatusApproved.Active())
	assert.False(t, appointment.StatusRejected.Active())
	assert.False(t, appointment.StatusCancelledByPatient.Active())
	assert.False(t, appointment.StatusCancelledByDoctor.Active())
}
