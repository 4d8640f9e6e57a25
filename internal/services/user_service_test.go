package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/auth"
	"github.com/isdelr/haulboard-be/internal/database"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(newTestDB(t))

	u, err := users.CreateUser(ctx, NewUser{
		Email:    "  Ops@Example.COM ",
		Password: "correct-horse",
		Name:     " Ops ",
		Role:     models.RoleCompany,
		Company:  "Acme Freight",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ops@example.com", u.Email)
	assert.Equal(t, "Ops", u.Name)
	assert.True(t, u.IsActive)
	assert.Empty(t, u.PasswordHash)

	got, err := users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, "Acme Freight", got.Company)
	assert.Empty(t, got.PasswordHash)
}

func TestCreateUser_Validation(t *testing.T) {
	users := newTestUsers(newTestDB(t))

	cases := map[string]NewUser{
		"bad email":      {Email: "not-an-email", Password: "correct-horse", Name: "A", Role: models.RoleIndividual},
		"short password": {Email: "a@example.com", Password: "short", Name: "A", Role: models.RoleIndividual},
		"long password":  {Email: "a@example.com", Password: strings.Repeat("p", 80), Name: "A", Role: models.RoleIndividual},
		"missing name":   {Email: "a@example.com", Password: "correct-horse", Name: " ", Role: models.RoleIndividual},
		"unknown role":   {Email: "a@example.com", Password: "correct-horse", Name: "A", Role: "pilot"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := users.CreateUser(context.Background(), input)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	users := newTestUsers(newTestDB(t))
	seedUser(t, users, "dup@example.com", models.RoleIndividual)

	_, err := users.CreateUser(context.Background(), NewUser{
		Email: "DUP@example.com", Password: "correct-horse", Name: "Again", Role: models.RoleCarrier,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "got %v", err)
}

func TestGetUserByID_NotFound(t *testing.T) {
	users := newTestUsers(newTestDB(t))
	_, err := users.GetUserByID(context.Background(), "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAuthenticateUser(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(newTestDB(t))
	u := seedUser(t, users, "driver@example.com", models.RoleCarrier)

	got, err := users.AuthenticateUser(ctx, "Driver@Example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	_, err = users.AuthenticateUser(ctx, "driver@example.com", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.AuthenticateUser(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	_, err = users.AuthenticateUser(ctx, "driver@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(newTestDB(t))
	u := seedUser(t, users, "p@example.com", models.RoleIndividual)

	got, err := users.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Name: "New Name", Phone: "+1 555 0100"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "+1 555 0100", got.Phone)

	_, err = users.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Name: ""})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = users.UpdateProfile(ctx, "missing", models.ProfileUpdate{Name: "X"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(newTestDB(t))
	u := seedUser(t, users, "pw@example.com", models.RoleIndividual)

	err := users.UpdatePassword(ctx, u.ID, "wrong-current", "brand-new-pass")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = users.UpdatePassword(ctx, u.ID, "correct-horse", "short")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = users.UpdatePassword(ctx, u.ID, "correct-horse", strings.Repeat("é", 40))
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "80 bytes must be rejected before hashing: %v", err)

	require.NoError(t, users.UpdatePassword(ctx, u.ID, "correct-horse", "brand-new-pass"))

	_, err = users.AuthenticateUser(ctx, "pw@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.AuthenticateUser(ctx, "pw@example.com", "brand-new-pass")
	assert.NoError(t, err)
}

func TestCreateUser_PasswordAtByteLimit(t *testing.T) {
	users := newTestUsers(newTestDB(t))

	_, err := users.CreateUser(context.Background(), NewUser{
		Email: "limit@example.com", Password: strings.Repeat("p", auth.MaxPasswordBytes),
		Name: "Limit", Role: models.RoleIndividual,
	})
	require.NoError(t, err)

	_, err = users.CreateUser(context.Background(), NewUser{
		Email: "over@example.com", Password: strings.Repeat("p", auth.MaxPasswordBytes+1),
		Name: "Over", Role: models.RoleIndividual,
	})
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "password must be at most 72 bytes", apperr.PublicMessage(err))
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	users := newTestUsers(newTestDB(t))
	users.now = steppingClock()
	seedUser(t, users, "a@example.com", models.RoleIndividual)
	seedUser(t, users, "b@example.com", models.RoleCarrier)
	seedUser(t, users, "c@example.com", models.RoleCompany)

	page, pagination, err := users.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c@example.com", page[0].Email)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, pagination)

	page, _, err = users.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a@example.com", page[0].Email)
}

func TestAuthenticateUser_StoreOutageIsNotInvalidCredentials(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
		WithArgs("a@example.com").
		WillReturnError(errors.New("connection reset"))

	users := NewUserService(database.New(sqlDB, database.SQLite), auth.NewHasher(bcrypt.MinCost))
	_, err = users.AuthenticateUser(context.Background(), "a@example.com", "correct-horse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}
