package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/clinicbook/clinic-scheduling/internal/db"
	"github.com/clinicbook/clinic-scheduling/internal/logging"
)

// The simulator hammers the booking API with concurrent patients who all
// want the same handful of slots. The interesting number at the end is
// conflicts: with N workers racing per slot, exactly one create per
// (doctor, instant) should succeed and the rest should see 409s. Any
// double-booked slot is a bug in the claim path.

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	Doctors     int
	SlotsPerDay int
	PostgresDSN string
}

type DataPool struct {
	Patients []patientIdentity
	Doctors  []uuid.UUID

	mu           sync.RWMutex
	appointments []uuid.UUID
}

type patientIdentity struct {
	AccountID uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RandomAppointment() (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rand.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total    int64
	Success  int64
	Conflict int64
	Error    int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.latencies))
	copy(latencies, om.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	p50 = latencies[len(latencies)*50/100]
	p95 = latencies[min(len(latencies)*95/100, len(latencies)-1)]
	return avg, p50, p95
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:  envOr("SIM_API_URL", "http://127.0.0.1:8080"),
		Duration:    30 * time.Second,
		Workers:     20,
		Doctors:     5,
		SlotsPerDay: 8,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
	}

	if v := os.Getenv("SIM_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Duration = d
		}
	}
	if v := os.Getenv("SIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("SIM_DOCTORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Doctors = n
		}
	}

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	logging.Init("simulate", "dev")
	cfg := loadConfig()

	if cfg.PostgresDSN == "" {
		log.Fatal().Msg("POSTGRES_DSN is required to load patients and doctors")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}

	data, err := loadData(context.Background(), pool, cfg.Doctors)
	pool.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("load data pool")
	}

	log.Info().
		Int("patients", len(data.Patients)).
		Int("doctors", len(data.Doctors)).
		Int("workers", cfg.Workers).
		Dur("duration", cfg.Duration).
		Msg("simulation starting")

	// All workers fight over next Monday's slots for a few doctors so
	// claim contention actually happens.
	slotDay := nextWeekday(time.Now(), time.Monday)

	var (
		bookings    OperationMetrics
		cancels     OperationMetrics
		reschedules OperationMetrics
	)

	runCtx, stop := context.WithTimeout(context.Background(), cfg.Duration)
	defer stop()

	client := &http.Client{Timeout: 5 * time.Second}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(runCtx, client, cfg, data, slotDay, &bookings, &cancels, &reschedules)
		}()
	}
	wg.Wait()

	report("bookings", &bookings)
	report("cancels", &cancels)
	report("reschedules", &reschedules)
}

func worker(ctx context.Context, client *http.Client, cfg SimConfig, data *DataPool, slotDay time.Time, bookings, cancels, reschedules *OperationMetrics) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		patient := data.Patients[rand.Intn(len(data.Patients))]

		switch rand.Intn(10) {
		case 0:
			if id, ok := data.RandomAppointment(); ok {
				doCancel(ctx, client, cfg, patient, id, cancels)
				continue
			}
			fallthrough
		case 1:
			if id, ok := data.RandomAppointment(); ok {
				doReschedule(ctx, client, cfg, patient, id, slotDay, reschedules)
				continue
			}
			fallthrough
		default:
			doctor := data.Doctors[rand.Intn(len(data.Doctors))]
			slot := slotDay.Add(time.Duration(8*60+30*rand.Intn(cfg.SlotsPerDay)) * time.Minute)
			doBook(ctx, client, cfg, data, patient, doctor, slot, bookings)
		}
	}
}

func doBook(ctx context.Context, client *http.Client, cfg SimConfig, data *DataPool, patient patientIdentity, doctor uuid.UUID, slot time.Time, m *OperationMetrics) {
	body, _ := json.Marshal(map[string]string{
		"doctor_id": doctor.String(),
		"start_at":  slot.Format(time.RFC3339),
	})

	status, respBody, latency := doRequest(ctx, client, http.MethodPost, cfg.APIBaseURL+"/appointments", patient, body)
	m.Record(latency, status)

	if status == http.StatusCreated {
		var created struct {
			ID uuid.UUID `json:"id"`
		}
		if err := json.Unmarshal(respBody, &created); err == nil && created.ID != uuid.Nil {
			data.AddAppointment(created.ID)
		}
	}
}

func doCancel(ctx context.Context, client *http.Client, cfg SimConfig, patient patientIdentity, id uuid.UUID, m *OperationMetrics) {
	url := fmt.Sprintf("%s/appointments/%s/cancel", cfg.APIBaseURL, id)
	status, _, latency := doRequest(ctx, client, http.MethodPatch, url, patient, nil)
	m.Record(latency, status)
}

func doReschedule(ctx context.Context, client *http.Client, cfg SimConfig, patient patientIdentity, id uuid.UUID, slotDay time.Time, m *OperationMetrics) {
	slot := slotDay.Add(time.Duration(8*60+30*rand.Intn(8)) * time.Minute)
	body, _ := json.Marshal(map[string]string{"start_at": slot.Format(time.RFC3339)})

	url := fmt.Sprintf("%s/appointments/%s/reschedule", cfg.APIBaseURL, id)
	status, _, latency := doRequest(ctx, client, http.MethodPatch, url, patient, body)
	m.Record(latency, status)
}

func doRequest(ctx context.Context, client *http.Client, method, url string, patient patientIdentity, body []byte) (int, []byte, time.Duration) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, 0
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Account-ID", patient.AccountID.String())
	req.Header.Set("X-Role", "patient")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, nil, latency
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, latency
}

func loadData(ctx context.Context, pool *pgxpool.Pool, doctorLimit int) (*DataPool, error) {
	data := &DataPool{}

	rows, err := pool.Query(ctx, `SELECT account_id FROM patients LIMIT 500`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p patientIdentity
		if err := rows.Scan(&p.AccountID); err != nil {
			return nil, err
		}
		data.Patients = append(data.Patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	docRows, err := pool.Query(ctx, `SELECT id FROM doctors LIMIT $1`, doctorLimit)
	if err != nil {
		return nil, err
	}
	defer docRows.Close()
	for docRows.Next() {
		var id uuid.UUID
		if err := docRows.Scan(&id); err != nil {
			return nil, err
		}
		data.Doctors = append(data.Doctors, id)
	}
	if err := docRows.Err(); err != nil {
		return nil, err
	}

	if len(data.Patients) == 0 || len(data.Doctors) == 0 {
		return nil, fmt.Errorf("data pool empty, run cmd/seed first")
	}

	return data, nil
}

func nextWeekday(from time.Time, day time.Weekday) time.Time {
	d := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for d.Weekday() != day || !d.After(from) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func report(name string, m *OperationMetrics) {
	avg, p50, p95 := m.Stats()
	log.Info().
		Str("op", name).
		Int64("total", atomic.LoadInt64(&m.Total)).
		Int64("success", atomic.LoadInt64(&m.Success)).
		Int64("conflict", atomic.LoadInt64(&m.Conflict)).
		Int64("error", atomic.LoadInt64(&m.Error)).
		Dur("avg", avg).
		Dur("p50", p50).
		Dur("p95", p95).
		Msg("simulation results")
}
