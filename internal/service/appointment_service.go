package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ruthwik162/appointment-server/internal/model"
	"github.com/ruthwik162/appointment-server/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSlotTaken           = errors.New("this time slot is already booked")
	ErrTeacherNotFound     = errors.New("teacher not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidStatus       = errors.New("status must be 'approved' or 'rejected'")
	ErrStatusFinal         = errors.New("appointment status is final and cannot change")
)

// AppointmentService provides booking, lookup and lifecycle operations
type AppointmentService interface {
	Book(ctx context.Context, req model.BookAppointmentRequest) (string, error)
	GetByStudent(ctx context.Context, studentEmail string) ([]model.Appointment, error)
	GetByTeacher(ctx context.Context, teacherEmail string) ([]model.Appointment, error)
	GetBetween(ctx context.Context, teacherEmail, studentEmail string) ([]model.Appointment, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Appointment, error)
	Delete(ctx context.Context, id string) error
	GetTeacherByID(ctx context.Context, id string) (*model.User, error)
	GetTeacherByEmail(ctx context.Context, email string) (*model.User, error)
	GetAllUsersWithAppointments(ctx context.Context) ([]model.UserWithAppointments, error)
}

type appointmentService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
}

// NewAppointmentService creates a new AppointmentService
func NewAppointmentService(appointments repository.AppointmentRepository, users repository.UserRepository) AppointmentService {
	return &appointmentService{appointments: appointments, users: users}
}

// Book creates a pending appointment after checking slot availability and
// resolving the teacher. The availability pre-check gives the common case a
// clean conflict answer; the unique index behind Create closes the race when
// two bookings pass the check concurrently.
func (s *appointmentService) Book(ctx context.Context, req model.BookAppointmentRequest) (string, error) {
	taken, err := s.appointments.SlotTaken(ctx, req.TeacherEmail, req.Date, req.Slot)
	if err != nil {
		return "", fmt.Errorf("failed to check slot availability: %w", err)
	}
	if taken {
		return "", ErrSlotTaken
	}

	teacher, err := s.users.FindTeacherByEmail(ctx, req.TeacherEmail)
	if err != nil {
		return "", fmt.Errorf("failed to resolve teacher: %w", err)
	}
	if teacher == nil {
		return "", ErrTeacherNotFound
	}

	teacherName := teacher.Username
	if teacherName == "" {
		teacherName = "Unknown"
	}

	appointment := &model.Appointment{
		ID:              uuid.NewString(),
		TeacherEmail:    req.TeacherEmail,
		TeacherName:     teacherName,
		StudentEmail:    req.StudentEmail,
		StudentUsername: req.StudentUsername,
		Subject:         req.Subject,
		Message:         req.Message,
		Date:            req.Date,
		Slot:            req.Slot,
		Status:          model.StatusPending,
		CreatedAt:       time.Now(),
	}

	if err := s.appointments.Create(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return "", ErrSlotTaken
		}
		return "", fmt.Errorf("failed to create appointment: %w", err)
	}
	return appointment.ID, nil
}

// GetByStudent returns all appointments booked by a student, empty list if none
func (s *appointmentService) GetByStudent(ctx context.Context, studentEmail string) ([]model.Appointment, error) {
	appointments, err := s.appointments.FindByStudent(ctx, studentEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get student appointments: %w", err)
	}
	return nonNil(appointments), nil
}

// GetByTeacher returns all appointments addressed to a teacher, empty list if none
func (s *appointmentService) GetByTeacher(ctx context.Context, teacherEmail string) ([]model.Appointment, error) {
	appointments, err := s.appointments.FindByTeacher(ctx, teacherEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher appointments: %w", err)
	}
	return nonNil(appointments), nil
}

// GetBetween returns the appointment history between a teacher and a student
func (s *appointmentService) GetBetween(ctx context.Context, teacherEmail, studentEmail string) ([]model.Appointment, error) {
	appointments, err := s.appointments.FindBetween(ctx, teacherEmail, studentEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment history: %w", err)
	}
	return nonNil(appointments), nil
}

// UpdateStatus applies a status transition. Only pending appointments may
// move, and only to approved or rejected; approved and rejected are terminal.
func (s *appointmentService) UpdateStatus(ctx context.Context, id, status string) (*model.Appointment, error) {
	if status != model.StatusApproved && status != model.StatusRejected {
		return nil, ErrInvalidStatus
	}

	appointment, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.Status != model.StatusPending {
		return nil, ErrStatusFinal
	}

	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	appointment.Status = status
	return appointment, nil
}

// Delete removes an appointment; missing IDs are reported as not found
func (s *appointmentService) Delete(ctx context.Context, id string) error {
	appointment, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find appointment: %w", err)
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// GetTeacherByID looks up a user by ID, restricted to the teacher role
func (s *appointmentService) GetTeacherByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	if user == nil || user.Role != model.RoleTeacher {
		return nil, ErrTeacherNotFound
	}
	return user, nil
}

// GetTeacherByEmail looks up a user by email, restricted to the teacher role
func (s *appointmentService) GetTeacherByEmail(ctx context.Context, email string) (*model.User, error) {
	teacher, err := s.users.FindTeacherByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	if teacher == nil {
		return nil, ErrTeacherNotFound
	}
	return teacher, nil
}

// GetAllUsersWithAppointments returns every user with their appointment list
// attached. Appointments are fetched with a single query and joined in memory
// by email, so cost stays at two round trips regardless of user count.
func (s *appointmentService) GetAllUsersWithAppointments(ctx context.Context) ([]model.UserWithAppointments, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	appointments, err := s.appointments.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	byTeacher := make(map[string][]model.Appointment)
	byStudent := make(map[string][]model.Appointment)
	for _, a := range appointments {
		byTeacher[a.TeacherEmail] = append(byTeacher[a.TeacherEmail], a)
		byStudent[a.StudentEmail] = append(byStudent[a.StudentEmail], a)
	}

	result := make([]model.UserWithAppointments, 0, len(users))
	for _, u := range users {
		var list []model.Appointment
		switch u.Role {
		case model.RoleTeacher:
			list = byTeacher[u.Email]
		case model.RoleStudent:
			list = byStudent[u.Email]
		}
		result = append(result, model.UserWithAppointments{
			User:         u,
			Appointments: nonNil(list),
		})
	}
	return result, nil
}

func nonNil(appointments []model.Appointment) []model.Appointment {
	if appointments == nil {
		return []model.Appointment{}
	}
	return appointments
}
