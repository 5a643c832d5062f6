package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/ruthwik162/appointment-server/internal/model"
	"github.com/ruthwik162/appointment-server/internal/service"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler handles appointment related requests
type AppointmentHandler struct {
	service service.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(s service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: s}
}

func (h *AppointmentHandler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Teacher email is required"})
		return
	}

	id, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotTaken):
			c.JSON(http.StatusConflict, gin.H{"message": "This time slot is already booked."})
		case errors.Is(err, service.ErrTeacherNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Teacher not found"})
		default:
			log.Printf("Error booking appointment: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to book appointment"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment booked successfully", "id": id})
}

func (h *AppointmentHandler) GetByStudent(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Student email is required"})
		return
	}

	appointments, err := h.service.GetByStudent(c.Request.Context(), email)
	if err != nil {
		log.Printf("Error fetching student appointments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch appointments"})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) GetByTeacher(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Teacher email is required"})
		return
	}

	appointments, err := h.service.GetByTeacher(c.Request.Context(), email)
	if err != nil {
		log.Printf("Error fetching teacher appointments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch teacher appointments"})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) GetBetween(c *gin.Context) {
	teacherEmail := decodeParam(c.Param("teacherEmail"))
	studentEmail := decodeParam(c.Param("studentEmail"))

	appointments, err := h.service.GetBetween(c.Request.Context(), teacherEmail, studentEmail)
	if err != nil {
		log.Printf("Error fetching appointment history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch appointment history"})
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status is required"})
		return
	}

	appointment, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, service.ErrAppointmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
		case errors.Is(err, service.ErrStatusFinal):
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		default:
			log.Printf("Error updating appointment status: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update appointment status"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Appointment status updated",
		"status":          appointment.Status,
		"studentUsername": appointment.StudentUsername,
		"teacherEmail":    appointment.TeacherEmail,
	})
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
			return
		}
		log.Printf("Error deleting appointment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete appointment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted"})
}

func (h *AppointmentHandler) GetTeacherByID(c *gin.Context) {
	teacher, err := h.service.GetTeacherByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Teacher not found"})
			return
		}
		log.Printf("Error fetching teacher: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch teacher"})
		return
	}
	c.JSON(http.StatusOK, teacher)
}

func (h *AppointmentHandler) GetTeacherByEmail(c *gin.Context) {
	teacher, err := h.service.GetTeacherByEmail(c.Request.Context(), decodeParam(c.Param("email")))
	if err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Teacher not found"})
			return
		}
		log.Printf("Error fetching teacher by email: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch teacher by email"})
		return
	}
	c.JSON(http.StatusOK, teacher)
}

func (h *AppointmentHandler) GetAllUsersWithAppointments(c *gin.Context) {
	users, err := h.service.GetAllUsersWithAppointments(c.Request.Context())
	if err != nil {
		log.Printf("Error fetching users with appointments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users and appointments"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// RegisterAppointmentRoutes registers appointment routes
func (h *AppointmentHandler) RegisterAppointmentRoutes(rg *gin.RouterGroup) {
	rg.POST("/appointment-book", h.Book)
	rg.GET("/student-appointments/:email", h.GetByStudent)
	rg.GET("/teacher-appointments/:email", h.GetByTeacher)
	rg.GET("/appointments/:teacherEmail/:studentEmail", h.GetBetween)
	rg.PATCH("/appointment/:id", h.UpdateStatus)
	rg.DELETE("/appointment/:id", h.Delete)
	rg.GET("/teacher/:id", h.GetTeacherByID)
	rg.GET("/teacher-email/:email", h.GetTeacherByEmail)
	rg.GET("/allappointments", h.GetAllUsersWithAppointments)
}

// decodeParam percent-decodes a path parameter, keeping the raw value when it
// is not valid percent-encoding
func decodeParam(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
