package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruthwik162/appointment-server/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateSlot is returned when an insert trips the active-slot unique index,
// i.e. a pending or approved appointment already holds the teacher/date/slot.
var ErrDuplicateSlot = errors.New("slot already has an active appointment")

const uniqueViolation = "23505"

// AppointmentRepository defines operations for appointment data
type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	SlotTaken(ctx context.Context, teacherEmail, date, slot string) (bool, error)
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindByStudent(ctx context.Context, studentEmail string) ([]model.Appointment, error)
	FindByTeacher(ctx context.Context, teacherEmail string) ([]model.Appointment, error)
	FindBetween(ctx context.Context, teacherEmail, studentEmail string) ([]model.Appointment, error)
	FindAll(ctx context.Context) ([]model.Appointment, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type appointmentRepository struct {
	db DB
}

// NewAppointmentRepository creates a new AppointmentRepository
func NewAppointmentRepository(db DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentColumns = `id, teacher_email, teacher_name, student_email, student_username, subject, message, date, slot, status, created_at`

// Create inserts a new appointment. A unique violation on the active-slot index
// is mapped to ErrDuplicateSlot so a booking that loses the pre-check race still
// fails as a conflict rather than an internal error.
func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	sql := `INSERT INTO appointments (id, teacher_email, teacher_name, student_email, student_username, subject, message, date, slot, status, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, sql, a.ID, a.TeacherEmail, a.TeacherName, a.StudentEmail, a.StudentUsername,
		a.Subject, a.Message, a.Date, a.Slot, a.Status, a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// SlotTaken reports whether the teacher already has a pending or approved
// appointment for the given date and slot
func (r *appointmentRepository) SlotTaken(ctx context.Context, teacherEmail, date, slot string) (bool, error) {
	sql := `SELECT EXISTS(
            SELECT 1 FROM appointments
            WHERE teacher_email = $1 AND date = $2 AND slot = $3
              AND status IN ('pending', 'approved'))`
	var exists bool
	err := r.db.QueryRow(ctx, sql, teacherEmail, date, slot).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slot availability: %w", err)
	}
	return exists, nil
}

// FindByID retrieves an appointment by ID; returns (nil, nil) when no row matches
func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	sql := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	err := r.db.QueryRow(ctx, sql, id).Scan(
		&a.ID, &a.TeacherEmail, &a.TeacherName, &a.StudentEmail, &a.StudentUsername,
		&a.Subject, &a.Message, &a.Date, &a.Slot, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find appointment by ID: %w", err)
	}
	return a, nil
}

// FindByStudent retrieves all appointments booked by the given student
func (r *appointmentRepository) FindByStudent(ctx context.Context, studentEmail string) ([]model.Appointment, error) {
	sql := `SELECT ` + appointmentColumns + ` FROM appointments WHERE student_email = $1 ORDER BY created_at DESC`
	return r.scanMany(ctx, sql, studentEmail)
}

// FindByTeacher retrieves all appointments addressed to the given teacher
func (r *appointmentRepository) FindByTeacher(ctx context.Context, teacherEmail string) ([]model.Appointment, error) {
	sql := `SELECT ` + appointmentColumns + ` FROM appointments WHERE teacher_email = $1 ORDER BY created_at DESC`
	return r.scanMany(ctx, sql, teacherEmail)
}

// FindBetween retrieves the appointment history between a teacher and a student
func (r *appointmentRepository) FindBetween(ctx context.Context, teacherEmail, studentEmail string) ([]model.Appointment, error) {
	sql := `SELECT ` + appointmentColumns + ` FROM appointments WHERE teacher_email = $1 AND student_email = $2 ORDER BY created_at DESC`
	return r.scanMany(ctx, sql, teacherEmail, studentEmail)
}

// FindAll retrieves every appointment
func (r *appointmentRepository) FindAll(ctx context.Context) ([]model.Appointment, error) {
	sql := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY created_at DESC`
	return r.scanMany(ctx, sql)
}

func (r *appointmentRepository) scanMany(ctx context.Context, sql string, args ...any) ([]model.Appointment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var appointments []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.TeacherEmail, &a.TeacherName, &a.StudentEmail, &a.StudentUsername,
			&a.Subject, &a.Message, &a.Date, &a.Slot, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan appointment row: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointment rows: %w", err)
	}
	return appointments, nil
}

// UpdateStatus sets the status of an appointment
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.Exec(ctx, `UPDATE appointments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return nil
}

// Delete removes an appointment by ID
func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}
