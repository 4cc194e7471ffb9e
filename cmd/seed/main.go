package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var (
	departments = []string{"内科", "小児科", "整形外科"}
	wardNames   = []string{"A棟", "B棟", "C棟"}
	slotNames   = []string{"午前", "午後", "夜間"}
)

func main() {
	_ = godotenv.Load()

	currentYear := time.Now().Year()
	startYear := flag.Int("start-year", currentYear-1, "first calendar year to seed")
	endYear := flag.Int("end-year", currentYear, "last calendar year to seed")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	if *startYear > *endYear {
		log.Fatal("start-year must not be after end-year")
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	if _, err := pool.Exec(ctx, "TRUNCATE inpatients, outpatients"); err != nil {
		log.Fatalf("truncate tables: %v", err)
	}

	inpatientTotal := 0
	outpatientTotal := 0
	for year := *startYear; year <= *endYear; year++ {
		in, out, err := seedYear(ctx, pool, rng, year, year > *startYear)
		if err != nil {
			log.Fatalf("seed year %d: %v", year, err)
		}
		inpatientTotal += in
		outpatientTotal += out
		log.Printf("seeded %d: %d inpatients, %d outpatients", year, in, out)
	}

	log.Printf("done: %d inpatients, %d outpatients", inpatientTotal, outpatientTotal)
}

// seedYear fills one calendar year of synthetic census data. Later years get a
// slightly higher daily load so the year-over-year charts show growth.
func seedYear(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, year int, grown bool) (int, int, error) {
	inMin, inMax := 5, 15
	outMin, outMax := 30, 60
	if grown {
		inMin, inMax = 7, 18
		outMin, outMax = 35, 70
	}

	batch := &pgx.Batch{}
	inpatients := 0
	outpatients := 0

	day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day.Year() == year {
		date := day.Format("2006-01-02")

		admissions := inMin + rng.Intn(inMax-inMin+1)
		for i := 0; i < admissions; i++ {
			stay := 3 + rng.Intn(30)
			discharge := day.AddDate(0, 0, stay)
			var dischargeDate *string
			if discharge.Year() == year || discharge.Year() < time.Now().Year() {
				s := discharge.Format("2006-01-02")
				dischargeDate = &s
			}
			batch.Queue(
				"INSERT INTO inpatients (patient_id, admission_date, discharge_date, department, ward_name) VALUES ($1, $2, $3, $4, $5)",
				patientID(rng), date, dischargeDate,
				departments[rng.Intn(len(departments))],
				wardNames[rng.Intn(len(wardNames))],
			)
			inpatients++
		}

		visits := outMin + rng.Intn(outMax-outMin+1)
		for i := 0; i < visits; i++ {
			appointment := appointmentTime(rng)
			var arrival *string
			if rng.Float64() < 0.9 {
				a := appointment
				arrival = &a
			}
			batch.Queue(
				"INSERT INTO outpatients (patient_id, appointment_date, appointment_time, arrival_time, department, slot_name, first_visit) VALUES ($1, $2, $3, $4, $5, $6, $7)",
				patientID(rng), date, appointment, arrival,
				departments[rng.Intn(len(departments))],
				slotNames[rng.Intn(len(slotNames))],
				rng.Float64() < 0.3,
			)
			outpatients++
		}

		if batch.Len() >= 1000 {
			if err := flushBatch(ctx, pool, batch); err != nil {
				return 0, 0, err
			}
			batch = &pgx.Batch{}
		}

		day = day.AddDate(0, 0, 1)
	}

	if batch.Len() > 0 {
		if err := flushBatch(ctx, pool, batch); err != nil {
			return 0, 0, err
		}
	}

	return inpatients, outpatients, nil
}

func flushBatch(ctx context.Context, pool *pgxpool.Pool, batch *pgx.Batch) error {
	results := pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert: %w", err)
		}
	}
	return nil
}

func patientID(rng *rand.Rand) string {
	return fmt.Sprintf("P%06d", rng.Intn(1000000))
}

// appointmentTime picks a clock time between 09:00 and 17:00.
func appointmentTime(rng *rand.Rand) string {
	hour := 9 + rng.Intn(8)
	minute := rng.Intn(60)
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
