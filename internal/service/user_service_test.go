package service

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"testing"

	"github.com/ruthwik162/appointment-server/internal/model"
	"github.com/ruthwik162/appointment-server/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput(email string) model.RegisterUserInput {
	return model.RegisterUserInput{
		Email:    email,
		Password: "pw",
		Username: "alice",
		Role:     model.RoleStudent,
		Mobile:   "9876543210",
		Gender:   "female",
	}
}

func TestRegister_SingleUserCreated(t *testing.T) {
	users := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := NewUserService(users, nil, mail)

	results, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, nil)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.RegisterCreated, results[0].Status)
	assert.NotEmpty(t, results[0].ID)

	stored := users.users["a@b.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw", stored.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("pw", stored.PasswordHash))
	assert.Equal(t, []string{"a@b.com"}, mail.sent)
}

func TestRegister_DuplicateEmailSkipped(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, nil)

	_, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, nil)
	require.NoError(t, err)

	results, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.RegisterSkipped, results[0].Status)
	assert.Len(t, users.users, 1)
}

func TestRegister_BatchReportsPerItemOutcomes(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, nil)

	_, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("dup@b.com")}, nil)
	require.NoError(t, err)

	batch := []model.RegisterUserInput{
		registerInput("new@b.com"),
		registerInput("dup@b.com"),
		{Email: "nopass@b.com"}, // missing password
	}
	results, err := svc.Register(context.Background(), batch, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, model.RegisterCreated, results[0].Status)
	assert.Equal(t, model.RegisterSkipped, results[1].Status)
	assert.Equal(t, model.RegisterFailed, results[2].Status)
	assert.Equal(t, "Email and password are required.", results[2].Reason)
}

func TestRegister_ImageUploadedForSingleUser(t *testing.T) {
	users := newFakeUserRepo()
	images := &fakeImageStore{url: "https://cdn.example.com/profileImages/1_a.png"}
	svc := NewUserService(users, images, nil)

	file := &multipart.FileHeader{Filename: "a.png"}
	results, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, file)

	require.NoError(t, err)
	assert.Equal(t, model.RegisterCreated, results[0].Status)
	assert.Equal(t, 1, images.uploads)

	stored := users.users["a@b.com"]
	require.NotNil(t, stored.ProfileImageURL)
	assert.Equal(t, images.url, *stored.ProfileImageURL)
}

func TestRegister_ImageIgnoredForBatch(t *testing.T) {
	users := newFakeUserRepo()
	images := &fakeImageStore{url: "https://cdn.example.com/x.png"}
	svc := NewUserService(users, images, nil)

	file := &multipart.FileHeader{Filename: "x.png"}
	batch := []model.RegisterUserInput{registerInput("a@b.com"), registerInput("b@b.com")}
	results, err := svc.Register(context.Background(), batch, file)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, images.uploads)
	assert.Nil(t, users.users["a@b.com"].ProfileImageURL)
}

func TestRegister_MailerFailureDoesNotFailRegistration(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, &fakeMailer{fail: true})

	results, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, nil)

	require.NoError(t, err)
	assert.Equal(t, model.RegisterCreated, results[0].Status)
	assert.NotNil(t, users.users["a@b.com"])
}

func TestRegister_MobileNumberCoercedToString(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, nil)

	input := registerInput("a@b.com")
	input.Mobile = float64(9876543210) // JSON numbers decode as float64

	_, err := svc.Register(context.Background(), []model.RegisterUserInput{input}, nil)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", users.users["a@b.com"].Mobile)
}

func TestLogin_SuccessReturnsProfileWithoutPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, nil)

	_, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, nil)
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, model.RoleStudent, user.Role)
	assert.Equal(t, "alice", user.Username)

	payload, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "password")
	assert.NotContains(t, string(payload), user.PasswordHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, nil)

	_, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, nil)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), nil, nil)

	_, err := svc.Login(context.Background(), "ghost@b.com", "pw")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdate_AppliesAllowListedFields(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, nil)

	_, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, nil)
	require.NoError(t, err)
	originalHash := users.users["a@b.com"].PasswordHash

	username := "alice2"
	gender := "other"
	updated, err := svc.Update(context.Background(), "a@b.com", model.UpdateUserInput{
		Username: &username,
		Gender:   &gender,
		Mobile:   float64(1234567890),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "other", updated.Gender)
	assert.Equal(t, "1234567890", updated.Mobile)

	// credentials survive any update
	assert.Equal(t, "a@b.com", users.users["a@b.com"].Email)
	assert.Equal(t, originalHash, users.users["a@b.com"].PasswordHash)
}

func TestUpdate_ReplacesProfileImage(t *testing.T) {
	users := newFakeUserRepo()
	images := &fakeImageStore{url: "https://cdn.example.com/new.png"}
	svc := NewUserService(users, images, nil)

	_, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, nil)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "a@b.com", model.UpdateUserInput{}, &multipart.FileHeader{Filename: "new.png"})
	require.NoError(t, err)
	require.NotNil(t, updated.ProfileImageURL)
	assert.Equal(t, images.url, *updated.ProfileImageURL)
}

func TestUpdate_UnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), nil, nil)

	_, err := svc.Update(context.Background(), "ghost@b.com", model.UpdateUserInput{}, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDelete_RemovesUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users, nil, nil)

	_, err := svc.Register(context.Background(), []model.RegisterUserInput{registerInput("a@b.com")}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "a@b.com"))
	assert.Empty(t, users.users)
}

func TestDelete_UnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), nil, nil)

	err := svc.Delete(context.Background(), "ghost@b.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
