package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/ruthwik162/appointment-server/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "email", "password_hash", "username", "role", "mobile", "gender", "profile_image_url", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(mock)

	user := &model.User{
		ID:           "u1",
		Email:        "a@b.com",
		PasswordHash: "hash",
		Username:     "alice",
		Role:         model.RoleStudent,
		Mobile:       "123",
		Gender:       "female",
		CreatedAt:    time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(user.ID, user.Email, user.PasswordHash, user.Username, user.Role,
			user.Mobile, user.Gender, user.ProfileImageURL, user.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(mock)

	created := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("a@b.com").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "a@b.com", "hash", "alice", "student", "123", "female", (*string)(nil), created))

	user, err := repo.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Nil(t, user.ProfileImageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("ghost@b.com").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByEmail(context.Background(), "ghost@b.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindTeacherByEmail_FiltersRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1 AND role = $2`)).
		WithArgs("t@x.com", model.RoleTeacher).
		WillReturnError(pgx.ErrNoRows)

	teacher, err := repo.FindTeacherByEmail(context.Background(), "t@x.com")
	assert.NoError(t, err)
	assert.Nil(t, teacher)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByRole(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(mock)

	created := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE role = $1`)).
		WithArgs("teacher").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "t1@x.com", "hash", "t1", "teacher", "", "", (*string)(nil), created).
			AddRow("u2", "t2@x.com", "hash", "t2", "teacher", "", "", (*string)(nil), created))

	users, err := repo.FindByRole(context.Background(), "teacher")
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE email = $1`)).
		WithArgs("a@b.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), "a@b.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
