package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(cfg *Config) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database a few times
	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(context.Background(), cfg.GetDSN())
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				log.Println("Successfully connected to PostgreSQL!")
				return pool, nil
			}
		}
		log.Printf("Failed to connect to database (attempt %d/%d): %v. Retrying in %v...", i+1, maxRetries, err, retryInterval)
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// AutoMigrate creates tables if they don't exist.
// The partial unique index on appointments is the storage-level guard for the
// one-active-appointment-per-slot invariant: two concurrent bookings that both
// pass the existence check cannot both insert.
func AutoMigrate(db *pgxpool.Pool) error {
	sql := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'student',
		mobile TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		profile_image_url TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS appointments (
		id TEXT PRIMARY KEY,
		teacher_email TEXT NOT NULL,
		teacher_name TEXT NOT NULL DEFAULT '',
		student_email TEXT NOT NULL DEFAULT '',
		student_username TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL DEFAULT '',
		slot TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Indexes for the common lookups
	CREATE INDEX IF NOT EXISTS idx_appointments_teacher_email ON appointments(teacher_email);
	CREATE INDEX IF NOT EXISTS idx_appointments_student_email ON appointments(student_email);
	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

	-- At most one pending/approved appointment per teacher, date and slot
	CREATE UNIQUE INDEX IF NOT EXISTS uniq_appointments_active_slot
		ON appointments(teacher_email, date, slot)
		WHERE status IN ('pending', 'approved');
	`
	_, err := db.Exec(context.Background(), sql)
	if err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}

	log.Println("AutoMigrate applied successfully")
	return nil
}
