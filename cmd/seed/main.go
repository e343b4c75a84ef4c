package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/clinicbook/clinic-scheduling/internal/db"
	"github.com/clinicbook/clinic-scheduling/internal/logging"
	"github.com/clinicbook/clinic-scheduling/internal/schedule"
)

func main() {
	logging.Init("seed", "dev")
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedDoctors(context.Background(), pool, 50); err != nil {
		log.Fatal().Err(err).Msg("seed doctors")
	}
	if err := seedPatients(context.Background(), pool, 2000); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}

	log.Info().Msg("seed complete")
}

var departments = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

// randomAvailability builds a plausible weekly pattern: weekdays, a
// morning range, and for some doctors an afternoon one.
func randomAvailability() schedule.WeeklyAvailability {
	var avail schedule.WeeklyAvailability

	for day := time.Monday; day <= time.Friday; day++ {
		if gofakeit.Number(0, 4) == 0 {
			continue // day off
		}

		ranges := []schedule.TimeRange{
			{Start: 8 * 60, End: 12 * 60},
		}
		if gofakeit.Bool() {
			ranges = append(ranges, schedule.TimeRange{Start: 14 * 60, End: 17 * 60})
		}

		avail = append(avail, schedule.DayAvailability{Day: day, Ranges: ranges})
	}

	return avail
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Info().Int("count", count).Msg("seeding doctors")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		avail, err := json.Marshal(randomAvailability())
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO doctors (id, account_id, name, email, department, availability, slot_minutes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 30, now(), now())
		`, uuid.New(), uuid.New(), gofakeit.Name(), gofakeit.Email(),
			departments[gofakeit.Number(0, len(departments)-1)], avail)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Info().Msg("doctors seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, account_id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, uuid.New(), uuid.New(), gofakeit.Name(), gofakeit.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Info().Int("done", end).Int("total", count).Msg("patients seeded so far")
	}

	log.Info().Msg("patients seeded")
	return nil
}
