package appointment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicbook/clinic-scheduling/internal/appointment"
	redisclient "github.com/clinicbook/clinic-scheduling/internal/redis"
	"github.com/clinicbook/clinic-scheduling/internal/schedule"
)

// fakeRepo is an in-memory Repository that mirrors the store's
// guarantees: the active-status uniqueness constraint on
// (doctor, start_at) and compare-and-set status updates.
type fakeRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*appointment.Patient
	doctors  map[uuid.UUID]*appointment.Doctor
	appts    map[uuid.UUID]*appointment.Appointment
	events   []appointment.EventLog
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		patients: make(map[uuid.UUID]*appointment.Patient),
		doctors:  make(map[uuid.UUID]*appointment.Doctor),
		appts:    make(map[uuid.UUID]*appointment.Appointment),
	}
}

func (f *fakeRepo) activeHolder(doctorID uuid.UUID, startAt time.Time, exclude uuid.UUID) bool {
	for _, a := range f.appts {
		if a.ID != exclude && a.DoctorID == doctorID && a.StartAt.Equal(startAt) && a.Status.Active() {
			return true
		}
	}
	return false
}

func (f *fakeRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*appointment.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.patients[id]
	if !ok {
		return nil, appointment.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) GetPatientByAccountID(_ context.Context, accountID uuid.UUID) (*appointment.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.patients {
		if p.AccountID == accountID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, appointment.ErrPatientNotFound
}

func (f *fakeRepo) GetDoctorByID(_ context.Context, id uuid.UUID) (*appointment.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil, appointment.ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) GetDoctorByAccountID(_ context.Context, accountID uuid.UUID) (*appointment.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if d.AccountID == accountID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, appointment.ErrDoctorNotFound
}

func (f *fakeRepo) ListDoctors(_ context.Context) ([]appointment.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []appointment.Doctor
	for _, d := range f.doctors {
		result = append(result, *d)
	}
	return result, nil
}

func (f *fakeRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appts[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) ClaimedStartsForDay(_ context.Context, doctorID uuid.UUID, day time.Time) (map[time.Time]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	next := midnight.AddDate(0, 0, 1)

	claimed := make(map[time.Time]bool)
	for _, a := range f.appts {
		if a.DoctorID == doctorID && a.Status.Active() &&
			!a.StartAt.Before(midnight) && a.StartAt.Before(next) {
			claimed[a.StartAt] = true
		}
	}
	return claimed, nil
}

func (f *fakeRepo) CreatePendingAppointment(_ context.Context, doctorID, patientID uuid.UUID, startAt time.Time, snapName, snapEmail *string) (*appointment.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.activeHolder(doctorID, startAt, uuid.Nil) {
		return nil, appointment.ErrSlotTaken
	}

	a := &appointment.Appointment{
		ID:                    uuid.New(),
		DoctorID:              doctorID,
		PatientID:             patientID,
		StartAt:               startAt,
		Status:                appointment.StatusPending,
		PatientNameAtBooking:  snapName,
		PatientEmailAtBooking: snapEmail,
		CreatedAt:             time.Now(),
		UpdatedAt:             time.Now(),
	}
	f.appts[a.ID] = a

	cp := *a
	return &cp, nil
}

func (f *fakeRepo) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to appointment.Status) (*appointment.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.appts[id]
	if !ok || a.Status != from {
		return nil, appointment.ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()

	cp := *a
	return &cp, nil
}

func (f *fakeRepo) RescheduleAppointment(_ context.Context, id uuid.UUID, newStart time.Time) (*appointment.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.appts[id]
	if !ok || a.Status != appointment.StatusPending {
		return nil, appointment.ErrAppointmentNotFound
	}
	if f.activeHolder(a.DoctorID, newStart, a.ID) {
		return nil, appointment.ErrSlotTaken
	}
	a.StartAt = newStart
	a.UpdatedAt = time.Now()

	cp := *a
	return &cp, nil
}

func (f *fakeRepo) ListAppointmentsByPatient(_ context.Context, patientID uuid.UUID) ([]appointment.AppointmentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []appointment.AppointmentDetail
	for _, a := range f.appts {
		if a.PatientID == patientID {
			result = append(result, appointment.AppointmentDetail{Appointment: *a})
		}
	}
	return result, nil
}

func (f *fakeRepo) ListAppointmentsByDoctor(_ context.Context, doctorID uuid.UUID) ([]appointment.AppointmentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []appointment.AppointmentDetail
	for _, a := range f.appts {
		if a.DoctorID == doctorID {
			result = append(result, appointment.AppointmentDetail{Appointment: *a})
		}
	}
	return result, nil
}

func (f *fakeRepo) ListAllAppointments(_ context.Context) ([]appointment.AppointmentDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []appointment.AppointmentDetail
	for _, a := range f.appts {
		result = append(result, appointment.AppointmentDetail{Appointment: *a})
	}
	return result, nil
}

func (f *fakeRepo) InsertEvent(_ context.Context, ev appointment.EventLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

// Fixture

// 2026-09-07 is a Monday; the doctor takes patients 08:00-12:00 that day.
var (
	monday    = time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)
	dayBefore = monday.AddDate(0, 0, -1).Add(12 * time.Hour)
)

func mondayAt(hh, mm int) time.Time {
	return time.Date(2026, time.September, 7, hh, mm, 0, 0, time.UTC)
}

type fixture struct {
	repo    *fakeRepo
	svc     *appointment.Service
	doctor  *appointment.Doctor
	patient *appointment.Patient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepo()

	email := "pat@example.com"
	patient := &appointment.Patient{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Name:      "Pat Example",
		Email:     &email,
	}
	repo.patients[patient.ID] = patient

	doctor := &appointment.Doctor{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Name:      "Dr Example",
		Email:     "doc@example.com",
		Availability: schedule.WeeklyAvailability{
			{Day: time.Monday, Ranges: []schedule.TimeRange{{Start: 480, End: 720}}},
		},
		SlotMinutes: 30,
	}
	repo.doctors[doctor.ID] = doctor

	svc := appointment.NewService(repo, redisclient.NoopLocker{}, func() time.Time { return dayBefore })

	return &fixture{repo: repo, svc: svc, doctor: doctor, patient: patient}
}

func (f *fixture) patientActor() appointment.Actor {
	return appointment.Actor{Role: appointment.RolePatient, AccountID: f.patient.AccountID, ProfileID: f.patient.ID}
}

func (f *fixture) doctorActor() appointment.Actor {
	return appointment.Actor{Role: appointment.RoleDoctor, AccountID: f.doctor.AccountID, ProfileID: f.doctor.ID}
}

// Tests

func TestBook(t *testing.T) {
	t.Run("creates a pending appointment at the aligned instant", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 17))
		require.NoError(t, err)

		assert.Equal(t, appointment.StatusPending, appt.Status)
		assert.Equal(t, mondayAt(9, 0), appt.StartAt)
		assert.Equal(t, f.patient.ID, appt.PatientID)
		require.NotNil(t, appt.PatientNameAtBooking)
		assert.Equal(t, "Pat Example", *appt.PatientNameAtBooking)
	})

	t.Run("accepted instants are always granularity aligned", func(t *testing.T) {
		f := newFixture(t)

		for _, mm := range []int{0, 1, 17, 29, 30, 44, 59} {
			appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(8+mm%2, mm))
			if err != nil {
				continue // slot collisions between iterations are fine here
			}
			assert.Zero(t, appt.StartAt.Minute()%30, "minute %d not aligned", appt.StartAt.Minute())
		}
	})

	t.Run("rejects instants outside availability", func(t *testing.T) {
		f := newFixture(t)

		// 07:50 floors to 07:30, before opening.
		_, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(7, 50))
		assert.ErrorIs(t, err, schedule.ErrOutsideAvailability)

		// Tuesday has no availability at all.
		_, err = f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0).AddDate(0, 0, 1))
		assert.ErrorIs(t, err, schedule.ErrOutsideAvailability)
	})

	t.Run("rejects past instants", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, dayBefore.Add(-time.Hour))
		assert.ErrorIs(t, err, schedule.ErrPastSlot)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Book(context.Background(), f.patientActor(), uuid.New(), mondayAt(9, 0))
		assert.ErrorIs(t, err, appointment.ErrDoctorNotFound)
	})

	t.Run("only patients book", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Book(context.Background(), f.doctorActor(), f.doctor.ID, mondayAt(9, 0))
		assert.ErrorIs(t, err, appointment.ErrForbidden)
	})

	t.Run("second booking of the same slot loses", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		_, err = f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		assert.ErrorIs(t, err, appointment.ErrSlotTaken)
	})

	t.Run("concurrent bookings of one slot yield exactly one success", func(t *testing.T) {
		f := newFixture(t)

		const bookers = 16
		errs := make(chan error, bookers)

		var wg sync.WaitGroup
		for i := 0; i < bookers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(10, 0))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var successes, conflicts int
		for err := range errs {
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, appointment.ErrSlotTaken):
				conflicts++
			}
		}

		assert.Equal(t, 1, successes)
		assert.Equal(t, bookers-1, conflicts)
	})
}

func TestAvailableSlots(t *testing.T) {
	t.Run("full free day", func(t *testing.T) {
		f := newFixture(t)

		slots, err := f.svc.AvailableSlots(context.Background(), f.doctor.ID, monday)
		require.NoError(t, err)
		assert.Len(t, slots, 8)
	})

	t.Run("booked slots disappear, cancelled ones return", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		slots, err := f.svc.AvailableSlots(context.Background(), f.doctor.ID, monday)
		require.NoError(t, err)
		assert.Len(t, slots, 7)
		assert.NotContains(t, slots, mondayAt(9, 0))

		_, err = f.svc.Cancel(context.Background(), f.patientActor(), appt.ID)
		require.NoError(t, err)

		slots, err = f.svc.AvailableSlots(context.Background(), f.doctor.ID, monday)
		require.NoError(t, err)
		assert.Contains(t, slots, mondayAt(9, 0))
	})

	t.Run("no availability that day means empty, not error", func(t *testing.T) {
		f := newFixture(t)

		slots, err := f.svc.AvailableSlots(context.Background(), f.doctor.ID, monday.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AvailableSlots(context.Background(), uuid.New(), monday)
		assert.ErrorIs(t, err, appointment.ErrDoctorNotFound)
	})
}

func TestApproveReject(t *testing.T) {
	t.Run("owning doctor approves", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		updated, err := f.svc.Approve(context.Background(), f.doctorActor(), appt.ID)
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusApproved, updated.Status)
	})

	t.Run("owning doctor rejects, slot frees up", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		_, err = f.svc.Reject(context.Background(), f.doctorActor(), appt.ID)
		require.NoError(t, err)

		_, err = f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		assert.NoError(t, err)
	})

	t.Run("approve on a rejected appointment is an invalid transition", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)
		_, err = f.svc.Reject(context.Background(), f.doctorActor(), appt.ID)
		require.NoError(t, err)

		_, err = f.svc.Approve(context.Background(), f.doctorActor(), appt.ID)
		assert.ErrorIs(t, err, appointment.ErrInvalidTransition)
	})

	t.Run("non-owning doctor is forbidden", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		stranger := appointment.Actor{Role: appointment.RoleDoctor, ProfileID: uuid.New()}
		_, err = f.svc.Approve(context.Background(), stranger, appt.ID)
		assert.ErrorIs(t, err, appointment.ErrForbidden)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Approve(context.Background(), f.doctorActor(), uuid.New())
		assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	})
}

func TestCancel(t *testing.T) {
	t.Run("status reflects who cancelled", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		cancelled, err := f.svc.Cancel(context.Background(), f.patientActor(), appt.ID)
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusCancelledByPatient, cancelled.Status)

		appt2, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(10, 0))
		require.NoError(t, err)

		cancelled2, err := f.svc.Cancel(context.Background(), f.doctorActor(), appt2.ID)
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusCancelledByDoctor, cancelled2.Status)
	})

	t.Run("admin cancellation lands on the doctor-attributed status", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		admin := appointment.Actor{Role: appointment.RoleAdmin, ProfileID: uuid.New()}
		cancelled, err := f.svc.Cancel(context.Background(), admin, appt.ID)
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusCancelledByDoctor, cancelled.Status)
	})

	t.Run("approved appointments remain cancellable", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)
		_, err = f.svc.Approve(context.Background(), f.doctorActor(), appt.ID)
		require.NoError(t, err)

		cancelled, err := f.svc.Cancel(context.Background(), f.patientActor(), appt.ID)
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusCancelledByPatient, cancelled.Status)
	})

	t.Run("non-owning patient is forbidden and nothing changes", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		stranger := appointment.Actor{Role: appointment.RolePatient, ProfileID: uuid.New()}
		_, err = f.svc.Cancel(context.Background(), stranger, appt.ID)
		assert.ErrorIs(t, err, appointment.ErrForbidden)

		reloaded, err := f.repo.GetAppointmentByID(context.Background(), appt.ID)
		require.NoError(t, err)
		assert.Equal(t, appointment.StatusPending, reloaded.Status)
	})

	t.Run("cancelling twice is an invalid transition", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)
		_, err = f.svc.Cancel(context.Background(), f.patientActor(), appt.ID)
		require.NoError(t, err)

		_, err = f.svc.Cancel(context.Background(), f.patientActor(), appt.ID)
		assert.ErrorIs(t, err, appointment.ErrInvalidTransition)
	})
}

func TestReschedule(t *testing.T) {
	claimedFor := func(f *fixture, at time.Time) bool {
		claimed, err := f.repo.ClaimedStartsForDay(context.Background(), f.doctor.ID, monday)
		require.NoError(t, err)
		return claimed[at]
	}

	t.Run("moves a pending appointment, releasing the old slot", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		moved, err := f.svc.Reschedule(context.Background(), f.patientActor(), appt.ID, mondayAt(10, 0))
		require.NoError(t, err)

		assert.Equal(t, mondayAt(10, 0), moved.StartAt)
		assert.Equal(t, appointment.StatusPending, moved.Status)

		assert.False(t, claimedFor(f, mondayAt(9, 0)), "old slot should be released")
		assert.True(t, claimedFor(f, mondayAt(10, 0)), "new slot should be claimed")
	})

	t.Run("new instant is floored and validated", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		moved, err := f.svc.Reschedule(context.Background(), f.patientActor(), appt.ID, mondayAt(10, 25))
		require.NoError(t, err)
		assert.Equal(t, mondayAt(10, 0), moved.StartAt)

		_, err = f.svc.Reschedule(context.Background(), f.patientActor(), appt.ID, mondayAt(13, 0))
		assert.ErrorIs(t, err, schedule.ErrOutsideAvailability)
	})

	t.Run("target slot taken leaves the original untouched", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)
		_, err = f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(10, 0))
		require.NoError(t, err)

		_, err = f.svc.Reschedule(context.Background(), f.patientActor(), appt.ID, mondayAt(10, 0))
		assert.ErrorIs(t, err, appointment.ErrSlotTaken)

		// Exactly one of old/new is held by this appointment: the old one.
		reloaded, err := f.repo.GetAppointmentByID(context.Background(), appt.ID)
		require.NoError(t, err)
		assert.Equal(t, mondayAt(9, 0), reloaded.StartAt)
		assert.Equal(t, appointment.StatusPending, reloaded.Status)
		assert.True(t, claimedFor(f, mondayAt(9, 0)))
	})

	t.Run("only pending appointments reschedule", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)
		_, err = f.svc.Approve(context.Background(), f.doctorActor(), appt.ID)
		require.NoError(t, err)

		_, err = f.svc.Reschedule(context.Background(), f.patientActor(), appt.ID, mondayAt(10, 0))
		assert.ErrorIs(t, err, appointment.ErrInvalidTransition)
	})

	t.Run("only the owning patient reschedules", func(t *testing.T) {
		f := newFixture(t)

		appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
		require.NoError(t, err)

		stranger := appointment.Actor{Role: appointment.RolePatient, ProfileID: uuid.New()}
		_, err = f.svc.Reschedule(context.Background(), stranger, appt.ID, mondayAt(10, 0))
		assert.ErrorIs(t, err, appointment.ErrForbidden)

		_, err = f.svc.Reschedule(context.Background(), f.doctorActor(), appt.ID, mondayAt(10, 0))
		assert.ErrorIs(t, err, appointment.ErrForbidden)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Reschedule(context.Background(), f.patientActor(), uuid.New(), mondayAt(10, 0))
		assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	})
}

func TestListForActor(t *testing.T) {
	f := newFixture(t)

	appt, err := f.svc.Book(context.Background(), f.patientActor(), f.doctor.ID, mondayAt(9, 0))
	require.NoError(t, err)

	t.Run("patient sees own", func(t *testing.T) {
		list, err := f.svc.ListForActor(context.Background(), f.patientActor())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, appt.ID, list[0].ID)
	})

	t.Run("other patient sees none", func(t *testing.T) {
		stranger := appointment.Actor{Role: appointment.RolePatient, ProfileID: uuid.New()}
		list, err := f.svc.ListForActor(context.Background(), stranger)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("doctor sees own profile's", func(t *testing.T) {
		list, err := f.svc.ListForActor(context.Background(), f.doctorActor())
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("admin sees all", func(t *testing.T) {
		admin := appointment.Actor{Role: appointment.RoleAdmin, ProfileID: uuid.New()}
		list, err := f.svc.ListForActor(context.Background(), admin)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}
