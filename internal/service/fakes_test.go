package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/ruthwik162/appointment-server/internal/model"
	"github.com/ruthwik162/appointment-server/internal/repository"
)

// In-memory repository fakes. They mirror the contracts of the pgx
// implementations, including (nil, nil) for not-found and ErrDuplicateSlot for
// an insert that hits an occupied active slot.

type fakeUserRepo struct {
	users map[string]*model.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.Email]; ok {
		return errors.New("duplicate email")
	}
	copied := *u
	r.users[u.Email] = &copied
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := r.users[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) FindByRole(_ context.Context, role string) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindTeacherByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := r.users[email]; ok && u.Role == model.RoleTeacher {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	for email, existing := range r.users {
		if existing.ID == u.ID {
			copied := *u
			r.users[email] = &copied
			return nil
		}
	}
	return errors.New("user not found")
}

func (r *fakeUserRepo) Delete(_ context.Context, email string) error {
	delete(r.users, email)
	return nil
}

type fakeAppointmentRepo struct {
	appointments map[string]*model.Appointment
	// skipPrecheck makes SlotTaken always report a free slot, so tests can
	// exercise the path where the insert itself detects the conflict
	skipPrecheck bool
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[string]*model.Appointment)}
}

func (r *fakeAppointmentRepo) active(a *model.Appointment) bool {
	return a.Status == model.StatusPending || a.Status == model.StatusApproved
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	for _, existing := range r.appointments {
		if existing.TeacherEmail == a.TeacherEmail && existing.Date == a.Date &&
			existing.Slot == a.Slot && r.active(existing) {
			return repository.ErrDuplicateSlot
		}
	}
	copied := *a
	r.appointments[a.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) SlotTaken(_ context.Context, teacherEmail, date, slot string) (bool, error) {
	if r.skipPrecheck {
		return false, nil
	}
	for _, a := range r.appointments {
		if a.TeacherEmail == teacherEmail && a.Date == date && a.Slot == slot && r.active(a) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	if a, ok := r.appointments[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) FindByStudent(_ context.Context, studentEmail string) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range r.appointments {
		if a.StudentEmail == studentEmail {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindByTeacher(_ context.Context, teacherEmail string) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range r.appointments {
		if a.TeacherEmail == teacherEmail {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindBetween(_ context.Context, teacherEmail, studentEmail string) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range r.appointments {
		if a.TeacherEmail == teacherEmail && a.StudentEmail == studentEmail {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindAll(_ context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	for _, a := range r.appointments {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id, status string) error {
	if a, ok := r.appointments[id]; ok {
		a.Status = status
	}
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id string) error {
	delete(r.appointments, id)
	return nil
}

type fakeImageStore struct {
	url     string
	uploads int
	fail    bool
}

func (s *fakeImageStore) Upload(_ context.Context, _ *multipart.FileHeader) (string, error) {
	if s.fail {
		return "", errors.New("upload failed")
	}
	s.uploads++
	return s.url, nil
}

type fakeMailer struct {
	sent []string
	fail bool
}

func (m *fakeMailer) SendWelcome(to, _ string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, to)
	return nil
}
