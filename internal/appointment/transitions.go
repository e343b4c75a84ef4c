package appointment

import "errors"

var (
	ErrForbidden         = errors.New("actor may not perform this action on the appointment")
	ErrInvalidTransition = errors.New("action not valid for current appointment status")
)

// Action is a status-changing operation on an appointment.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
)

type capability struct {
	from  []Status
	roles []Role
}

// capabilities is the single transition table every endpoint consults.
// Ownership is checked separately in Authorize; admins are exempt from it.
var capabilities = map[Action]capability{
	ActionApprove: {
		from:  []Status{StatusPending},
		roles: []Role{RoleDoctor},
	},
	ActionReject: {
		from:  []Status{StatusPending},
		roles: []Role{RoleDoctor},
	},
	ActionCancel: {
		from:  []Status{StatusPending, StatusApproved},
		roles: []Role{RolePatient, RoleDoctor, RoleAdmin},
	},
	ActionReschedule: {
		from:  []Status{StatusPending},
		roles: []Role{RolePatient},
	},
}

// Authorize decides whether actor may apply action to appt. It mutates
// nothing; callers persist the transition only after it returns nil.
func (a *Appointment) Authorize(action Action, actor Actor) error {
	c, ok := capabilities[action]
	if !ok {
		return ErrInvalidTransition
	}

	if !containsRole(c.roles, actor.Role) {
		return ErrForbidden
	}
	if !containsStatus(c.from, a.Status) {
		return ErrInvalidTransition
	}

	switch actor.Role {
	case RolePatient:
		if a.PatientID != actor.ProfileID {
			return ErrForbidden
		}
	case RoleDoctor:
		if a.DoctorID != actor.ProfileID {
			return ErrForbidden
		}
	case RoleAdmin:
		// Admins act on any appointment.
	}

	return nil
}

// CancelStatusFor maps the cancelling actor to the terminal status.
// Admin cancels count as clinic-side, so they take the doctor status.
func CancelStatusFor(role Role) Status {
	if role == RolePatient {
		return StatusCancelledByPatient
	}
	return StatusCancelledByDoctor
}

func containsRole(roles []Role, r Role) bool {
	for _, v := range roles {
		if v == r {
			return true
		}
	}
	return false
}

func containsStatus(statuses []Status, s Status) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
