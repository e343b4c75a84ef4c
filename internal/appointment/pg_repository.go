package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.AccountID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var department *string
	var availability []byte

	err := row.Scan(
		&d.ID,
		&d.AccountID,
		&d.Name,
		&d.Email,
		&department,
		&availability,
		&d.SlotMinutes,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.Department = department
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &d.Availability); err != nil {
			return nil, fmt.Errorf("decode doctor availability: %w", err)
		}
	}
	return &d, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var snapName, snapEmail *string

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.StartAt,
		&a.Status,
		&snapName,
		&snapEmail,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.PatientNameAtBooking = snapName
	a.PatientEmailAtBooking = snapEmail
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const appointmentColumns = `id, doctor_id, patient_id, start_at, status,
		       patient_name_at_booking, patient_email_at_booking, created_at, updated_at`

const doctorColumns = `id, account_id, name, email, department, availability, slot_minutes, created_at, updated_at`

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, account_id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByAccountID(ctx context.Context, accountID uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, account_id, name, email, created_at, updated_at
		FROM patients
		WHERE account_id = $1
	`, accountID)
	return scanPatient(row)
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetDoctorByAccountID(ctx context.Context, accountID uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE account_id = $1
	`, accountID)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ClaimedStartsForDay(ctx context.Context, doctorID uuid.UUID, day time.Time) (map[time.Time]bool, error) {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	rows, err := r.pool.Query(ctx, `
		SELECT start_at
		FROM appointments
		WHERE doctor_id = $1
		  AND start_at >= $2
		  AND start_at < $3
		  AND status IN ('pending', 'approved')
	`, doctorID, midnight, midnight.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claimed := make(map[time.Time]bool)
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		// Keys are normalized to UTC; pgx hands back timestamptz values
		// located in time.Local.
		claimed[t.UTC()] = true
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return claimed, nil
}

// CreatePendingAppointment races against the partial unique index on
// (doctor_id, start_at) over active statuses. Concurrent bookers both
// reach the INSERT; exactly one commits, the other sees a unique
// violation and gets ErrSlotTaken. No pre-read is trusted for safety.
func (r *PgRepository) CreatePendingAppointment(ctx context.Context, doctorID, patientID uuid.UUID, startAt time.Time, snapName, snapEmail *string) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, start_at, status,
		                          patient_name_at_booking, patient_email_at_booking, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, doctorID, patientID, startAt, snapName, snapEmail)

	appt, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return appt, nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

// RescheduleAppointment moves the instant in a single UPDATE guarded by
// status = 'pending'. The partial unique index check happens in the same
// statement, so either the old claim is released and the new one held,
// or nothing changes; there is no window where both or neither is held.
func (r *PgRepository) RescheduleAppointment(ctx context.Context, id uuid.UUID, newStart time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET start_at = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'pending'
		RETURNING `+appointmentColumns+`
	`, id, newStart)

	appt, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return appt, nil
}

const detailQuery = `
	SELECT a.id, a.doctor_id, a.patient_id, a.start_at, a.status,
	       a.patient_name_at_booking, a.patient_email_at_booking, a.created_at, a.updated_at,
	       d.id, d.account_id, d.name, d.email, d.department, d.availability, d.slot_minutes, d.created_at, d.updated_at,
	       p.id, p.account_id, p.name, p.email, p.created_at, p.updated_at
	FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN patients p ON p.id = a.patient_id
`

func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, detailQuery+`
		WHERE a.patient_id = $1
		ORDER BY a.start_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

func (r *PgRepository) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, detailQuery+`
		WHERE a.doctor_id = $1
		ORDER BY a.start_at DESC
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

func (r *PgRepository) ListAllAppointments(ctx context.Context) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, detailQuery+`
		ORDER BY a.start_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

func collectDetails(rows pgx.Rows) ([]AppointmentDetail, error) {
	var result []AppointmentDetail

	for rows.Next() {
		var det AppointmentDetail
		var d Doctor
		var p Patient
		var availability []byte

		err := rows.Scan(
			&det.ID, &det.DoctorID, &det.PatientID, &det.StartAt, &det.Status,
			&det.PatientNameAtBooking, &det.PatientEmailAtBooking, &det.CreatedAt, &det.UpdatedAt,
			&d.ID, &d.AccountID, &d.Name, &d.Email, &d.Department, &availability, &d.SlotMinutes, &d.CreatedAt, &d.UpdatedAt,
			&p.ID, &p.AccountID, &p.Name, &p.Email, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(availability) > 0 {
			if err := json.Unmarshal(availability, &d.Availability); err != nil {
				return nil, fmt.Errorf("decode doctor availability: %w", err)
			}
		}

		det.Doctor = &d
		det.Patient = &p
		result = append(result, det)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
