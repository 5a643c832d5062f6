package handler

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/ruthwik162/appointment-server/internal/model"
	"github.com/ruthwik162/appointment-server/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles user account requests
type UserHandler struct {
	service service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Register accepts a single user, a batch of users, or a multipart form with a
// `user`/`users` JSON field and an optional profileImage file
func (h *UserHandler) Register(c *gin.Context) {
	inputs, image, err := parseRegisterPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request format. Provide `user` or `users` with email and password.",
		})
		return
	}

	results, err := h.service.Register(c.Request.Context(), inputs, image)
	if err != nil {
		log.Printf("Error registering users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registration process completed.",
		"results": results,
	})
}

func parseRegisterPayload(c *gin.Context) ([]model.RegisterUserInput, *multipart.FileHeader, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		image, _ := c.FormFile("profileImage")

		if usersJSON := c.PostForm("users"); usersJSON != "" {
			inputs, err := decodeUsers([]byte(usersJSON))
			return inputs, image, err
		}
		if userJSON := c.PostForm("user"); userJSON != "" {
			var input model.RegisterUserInput
			if err := json.Unmarshal([]byte(userJSON), &input); err != nil {
				return nil, nil, err
			}
			return []model.RegisterUserInput{input}, image, nil
		}
		return nil, nil, errors.New("missing user payload")
	}

	body, err := c.GetRawData()
	if err != nil {
		return nil, nil, err
	}
	inputs, err := decodeUsers(body)
	return inputs, nil, err
}

// decodeUsers accepts a JSON array, an object wrapping `users` or `user`, or a
// bare user object
func decodeUsers(body []byte) ([]model.RegisterUserInput, error) {
	var batch []model.RegisterUserInput
	if err := json.Unmarshal(body, &batch); err == nil {
		return batch, nil
	}

	var envelope struct {
		Users json.RawMessage `json:"users"`
		User  json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Users) > 0 {
		if err := json.Unmarshal(envelope.Users, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}
	if len(envelope.User) > 0 {
		var input model.RegisterUserInput
		if err := json.Unmarshal(envelope.User, &input); err != nil {
			return nil, err
		}
		return []model.RegisterUserInput{input}, nil
	}

	var input model.RegisterUserInput
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, err
	}
	if input.Email == "" && input.Password == "" {
		return nil, errors.New("missing user payload")
	}
	return []model.RegisterUserInput{input}, nil
}

func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		default:
			log.Printf("Error during login: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetAll(c *gin.Context) {
	users, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		log.Printf("Error listing users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	user, err := h.service.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		log.Printf("Error fetching user by email: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetByRole(c *gin.Context) {
	users, err := h.service.GetByRole(c.Request.Context(), c.Param("role"))
	if err != nil {
		log.Printf("Error fetching users by role: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve users by role"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// Update applies a partial profile update, with an optional replacement image
// in a multipart `image` field. Email and password fields are ignored.
func (h *UserHandler) Update(c *gin.Context) {
	email := c.Param("email")

	var input model.UpdateUserInput
	var image *multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		image, _ = c.FormFile("image")
		if v, ok := c.GetPostForm("username"); ok {
			input.Username = &v
		}
		if v, ok := c.GetPostForm("role"); ok {
			input.Role = &v
		}
		if v, ok := c.GetPostForm("mobile"); ok {
			input.Mobile = v
		}
		if v, ok := c.GetPostForm("gender"); ok {
			input.Gender = &v
		}
	} else {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
			return
		}
	}

	user, err := h.service.Update(c.Request.Context(), email, input, image)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		log.Printf("Error updating user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	email := c.Param("email")

	if err := h.service.Delete(c.Request.Context(), email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}
		log.Printf("Error deleting user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User with email " + email + " deleted successfully."})
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.Register)
	rg.POST("/login", h.Login)
	rg.PUT("/users/:email", h.Update)
	rg.GET("/users", h.GetAll)
	rg.GET("/users/email/:email", h.GetByEmail)
	rg.GET("/users/role/:role", h.GetByRole)
	rg.DELETE("/users/:email", h.Delete)
}
