package model

import "time"

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User represents an account in the system
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"` // Do not expose password hash in JSON responses
	Username        string    `json:"username"`
	Role            string    `json:"role"` // "student", "teacher" or "admin"
	Mobile          string    `json:"mobile"`
	Gender          string    `json:"gender"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}

// RegisterUserInput is one candidate account in a registration request.
// Mobile accepts either a string or a number; it is coerced to string before storage.
type RegisterUserInput struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Username string      `json:"username"`
	Role     string      `json:"role"`
	Mobile   interface{} `json:"mobile"`
	Gender   string      `json:"gender"`
}

const (
	RegisterCreated = "created"
	RegisterSkipped = "skipped"
	RegisterFailed  = "failed"
)

// RegisterResult is the per-item outcome of a (batch) registration
type RegisterResult struct {
	Email  string `json:"email"`
	Status string `json:"status"` // "created", "skipped" or "failed"
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// UpdateUserInput carries the allow-listed updatable profile fields.
// Email and password are deliberately absent: credentials cannot change
// through the update path.
type UpdateUserInput struct {
	Username *string     `json:"username"`
	Role     *string     `json:"role"`
	Mobile   interface{} `json:"mobile"`
	Gender   *string     `json:"gender"`
}

// UserWithAppointments is a user record with their appointment history attached
type UserWithAppointments struct {
	User
	Appointments []Appointment `json:"appointments"`
}
