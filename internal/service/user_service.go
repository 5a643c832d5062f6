package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/ruthwik162/appointment-server/internal/mailer"
	"github.com/ruthwik162/appointment-server/internal/model"
	"github.com/ruthwik162/appointment-server/internal/repository"
	"github.com/ruthwik162/appointment-server/internal/storage"
	"github.com/ruthwik162/appointment-server/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService provides account registration, authentication and profile operations
type UserService interface {
	Register(ctx context.Context, inputs []model.RegisterUserInput, image *multipart.FileHeader) ([]model.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	GetAll(ctx context.Context) ([]model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByRole(ctx context.Context, role string) ([]model.User, error)
	Update(ctx context.Context, email string, input model.UpdateUserInput, image *multipart.FileHeader) (*model.User, error)
	Delete(ctx context.Context, email string) error
}

type userService struct {
	users  repository.UserRepository
	images storage.ImageStore // nil when object storage is not configured
	mail   mailer.Sender      // nil when SMTP is not configured
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository, images storage.ImageStore, mail mailer.Sender) UserService {
	return &userService{users: users, images: images, mail: mail}
}

// Register processes one or more registration candidates. Each item succeeds
// or fails independently; the returned results report the per-item outcome.
// The profile image is only honored for a batch of exactly one.
func (s *userService) Register(ctx context.Context, inputs []model.RegisterUserInput, image *multipart.FileHeader) ([]model.RegisterResult, error) {
	results := make([]model.RegisterResult, 0, len(inputs))

	for _, input := range inputs {
		if input.Email == "" || input.Password == "" {
			email := input.Email
			if email == "" {
				email = "unknown"
			}
			results = append(results, model.RegisterResult{
				Email:  email,
				Status: model.RegisterFailed,
				Reason: "Email and password are required.",
			})
			continue
		}

		existing, err := s.users.FindByEmail(ctx, input.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			results = append(results, model.RegisterResult{
				Email:  input.Email,
				Status: model.RegisterSkipped,
				Reason: "User already exists.",
			})
			continue
		}

		hashedPassword, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}

		var imageURL *string
		if image != nil && len(inputs) == 1 && s.images != nil {
			url, err := s.images.Upload(ctx, image)
			if err != nil {
				log.Printf("Error uploading profile image for %s: %v", input.Email, err)
				results = append(results, model.RegisterResult{
					Email:  input.Email,
					Status: model.RegisterFailed,
					Reason: "Profile image upload failed.",
				})
				continue
			}
			imageURL = &url
		}

		role := input.Role
		if role == "" {
			role = model.RoleStudent
		}

		user := &model.User{
			ID:              uuid.NewString(),
			Email:           input.Email,
			PasswordHash:    hashedPassword,
			Username:        input.Username,
			Role:            role,
			Mobile:          coerceMobile(input.Mobile),
			Gender:          input.Gender,
			ProfileImageURL: imageURL,
			CreatedAt:       time.Now(),
		}

		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user in repository: %w", err)
		}

		s.sendWelcome(user)

		results = append(results, model.RegisterResult{
			Email:  user.Email,
			Status: model.RegisterCreated,
			ID:     user.ID,
		})
	}

	return results, nil
}

// sendWelcome delivers the welcome mail best-effort; failures never fail registration
func (s *userService) sendWelcome(user *model.User) {
	if s.mail == nil {
		return
	}
	name := user.Username
	if name == "" {
		name = user.Email
	}
	if err := s.mail.SendWelcome(user.Email, name); err != nil {
		log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
	}
}

// Login authenticates a user. The returned record never serializes the
// password hash.
func (s *userService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetAll returns every user
func (s *userService) GetAll(ctx context.Context) ([]model.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// GetByEmail returns a single user or ErrUserNotFound
func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByRole returns all users with the given role, empty list if none
func (s *userService) GetByRole(ctx context.Context, role string) ([]model.User, error) {
	users, err := s.users.FindByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// Update merges the allow-listed fields into the stored record. Email and
// password cannot change through this path no matter what the caller sends.
func (s *userService) Update(ctx context.Context, email string, input model.UpdateUserInput, image *multipart.FileHeader) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Mobile != nil {
		user.Mobile = coerceMobile(input.Mobile)
	}
	if input.Gender != nil {
		user.Gender = *input.Gender
	}

	if image != nil && s.images != nil {
		url, err := s.images.Upload(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload profile image: %w", err)
		}
		user.ProfileImageURL = &url
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user by email; their appointments are deliberately left in
// place (no cascade)
func (s *userService) Delete(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.users.Delete(ctx, email); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// coerceMobile normalizes a mobile value that may arrive as a string or a
// JSON number
func coerceMobile(v interface{}) string {
	switch m := v.(type) {
	case nil:
		return ""
	case string:
		return m
	case json.Number:
		return m.String()
	case float64:
		return strconv.FormatFloat(m, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", m)
	}
}
