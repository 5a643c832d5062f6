package model

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Appointment represents a booked slot between a student and a teacher.
// TeacherName and StudentUsername are denormalized snapshots taken at booking time.
type Appointment struct {
	ID              string    `json:"id"`
	TeacherEmail    string    `json:"teacherEmail"`
	TeacherName     string    `json:"teacherName"`
	StudentEmail    string    `json:"studentEmail"`
	StudentUsername string    `json:"studentUsername"`
	Subject         string    `json:"subject"`
	Message         string    `json:"message"`
	Date            string    `json:"date"` // calendar date, e.g. "2024-05-01"
	Slot            string    `json:"slot"` // time slot identifier, e.g. "10:00"
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BookAppointmentRequest is the booking payload
type BookAppointmentRequest struct {
	TeacherEmail    string `json:"teacherEmail" binding:"required"`
	Subject         string `json:"subject"`
	Message         string `json:"message"`
	Date            string `json:"date"`
	Slot            string `json:"slot"`
	StudentEmail    string `json:"studentEmail"`
	StudentUsername string `json:"studentUsername"`
}

// UpdateStatusRequest is the status transition payload
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
