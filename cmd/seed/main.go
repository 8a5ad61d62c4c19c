// Command seed loads the initial rooms and desk workers into the database.
// Run the server once first so the tables exist.
package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"hostel-server/models"
	"hostel-server/utils"
)

type seedRoom struct {
	Number string
	Price  string
	State  models.RoomState
}

type seedWorker struct {
	RUT       string
	FirstName string
	LastName  string
	Email     string
}

var rooms = []seedRoom{
	{"101", "18000", models.RoomAvailable}, {"102", "18000", models.RoomAvailable},
	{"103", "22000", models.RoomAvailable}, {"104", "22000", models.RoomMaintenance},
	{"201", "25000", models.RoomAvailable}, {"202", "25000", models.RoomAvailable},
	{"203", "32000", models.RoomAvailable}, {"204", "45000", models.RoomAvailable},
}

var workers = []seedWorker{
	{"15345678-5", "Luis", "Martínez", "luis.martinez@hostal.local"},
	{"17654321-K", "Camila", "Soto", "camila.soto@hostal.local"},
	{"19876543-2", "Javier", "Muñoz", ""},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	if err := validateSeed(rooms, workers); err != nil {
		log.Fatal().Err(err).Msg("Invalid seed data")
	}

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal().Msg("DB_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("✅ Successfully connected to database")

	insertedRooms, err := seedRooms(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed rooms")
	}
	insertedWorkers, err := seedWorkers(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed workers")
	}

	log.Info().
		Int("rooms", insertedRooms).
		Int("workers", insertedWorkers).
		Msg("🎉 Seed completed")
}

// validateSeed rejects rows the server itself would refuse.
func validateSeed(rooms []seedRoom, workers []seedWorker) error {
	for _, r := range rooms {
		if !r.State.IsValid() {
			return fmt.Errorf("room %s: unknown state %q", r.Number, r.State)
		}
	}
	for _, w := range workers {
		if !utils.ValidRUT(w.RUT) {
			return fmt.Errorf("worker %s %s: malformed RUT %q", w.FirstName, w.LastName, w.RUT)
		}
	}
	return nil
}

func seedRooms(db *sql.DB) (int, error) {
	now := time.Now().UTC()
	inserted := 0
	for _, r := range rooms {
		res, err := db.Exec(
			`INSERT INTO rooms (number, price, state, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $4)
			 ON CONFLICT (number) DO NOTHING`,
			r.Number, r.Price, string(r.State), now,
		)
		if err != nil {
			return inserted, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
			log.Info().Str("room", r.Number).Str("price", r.Price).Str("state", string(r.State)).Msg("✅ Room inserted")
		}
	}
	return inserted, nil
}

// seedWorkers stores each worker with the derived initial password, which
// must be changed at first login.
func seedWorkers(db *sql.DB) (int, error) {
	now := time.Now().UTC()
	inserted := 0
	for _, w := range workers {
		hash, err := bcrypt.GenerateFromPassword([]byte(utils.LegacyPassword(w.FirstName, w.LastName)), bcrypt.DefaultCost)
		if err != nil {
			return inserted, err
		}
		var email sql.NullString
		if w.Email != "" {
			email = sql.NullString{String: w.Email, Valid: true}
		}

		res, err := db.Exec(
			`INSERT INTO workers (rut, first_name, last_name, email, password_hash, must_change_password, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
			 ON CONFLICT (rut) DO NOTHING`,
			w.RUT, w.FirstName, w.LastName, email, string(hash), now,
		)
		if err != nil {
			return inserted, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
			log.Info().Str("rut", w.RUT).Str("name", w.FirstName+" "+w.LastName).Msg("✅ Worker inserted")
		}
	}
	return inserted, nil
}
