package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/auth"
	"github.com/isdelr/haulboard-be/internal/database"
	"github.com/isdelr/haulboard-be/internal/models"
)

// MinPasswordLength is the shortest password accepted at login, registration and password change.
const MinPasswordLength = 8

// ErrInvalidCredentials is returned for every failed login, whatever the reason.
var ErrInvalidCredentials = apperr.Unauthenticated("invalid email or password")

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]models.User, models.Pagination, error)
	CreateUser(ctx context.Context, input NewUser) (models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.User, error)
	UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) error
	SetActive(ctx context.Context, id string, active bool) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
}

// NewUser is the input for account creation.
type NewUser struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
	Phone    string
	Company  string
}

// UserService provides business logic for user management.
type UserService struct {
	db     *database.DB
	hasher *auth.Hasher
	now    func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB, hasher *auth.Hasher) *UserService {
	return &UserService{db: db, hasher: hasher, now: time.Now}
}

const userColumns = "id, email, password_hash, name, role, is_active, phone, company, avatar_url, created_at, updated_at"

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, err
	}
	return user.Sanitized(), nil
}

// getUserByEmail retrieves a user by email including the password hash. Only the login path uses it.
func (s *UserService) getUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", normalizeEmail(email))
	return scanUser(row)
}

// ListUsers returns a page of users ordered by creation time.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]models.User, models.Pagination, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, models.Pagination{}, apperr.Internal("count users", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
	if err != nil {
		return nil, models.Pagination{}, apperr.Internal("list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		users = append(users, user.Sanitized())
	}
	if err := rows.Err(); err != nil {
		return nil, models.Pagination{}, apperr.Internal("list users", err)
	}
	return users, models.NewPagination(page, limit, total), nil
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, input NewUser) (models.User, error) {
	email, err := ValidateEmail(input.Email)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return models.User{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.User{}, apperr.Validation("name is required")
	}
	if !input.Role.Valid() {
		return models.User{}, apperr.Validation("role is invalid")
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, apperr.Internal("hash password", err)
	}

	now := s.now().UTC()
	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Role:         input.Role,
		IsActive:     true,
		Phone:        strings.TrimSpace(input.Phone),
		Company:      strings.TrimSpace(input.Company),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.Name, string(user.Role), user.IsActive,
		user.Phone, user.Company, user.AvatarURL, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, apperr.Conflict("email already registered")
		}
		return models.User{}, apperr.Internal("insert user", err)
	}

	// Return user without password hash
	return user.Sanitized(), nil
}

// UpdateProfile updates a user's non-sensitive information.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.User, error) {
	name := strings.TrimSpace(update.Name)
	if name == "" {
		return models.User{}, apperr.Validation("name is required")
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = ?, phone = ?, company = ?, avatar_url = ?, updated_at = ? WHERE id = ?",
		name, strings.TrimSpace(update.Phone), strings.TrimSpace(update.Company), strings.TrimSpace(update.AvatarURL),
		s.now().UTC(), id)
	if err != nil {
		return models.User{}, apperr.Internal("update profile", err)
	}
	if err := requireAffected(res, "user not found"); err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(ctx, id)
}

// UpdatePassword verifies the current password, then hashes and sets a new password for a user.
func (s *UserService) UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE id = ?", id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("load password hash", err)
	}

	if !s.hasher.Verify(currentPassword, hash) {
		return apperr.Validation("current password is incorrect")
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal("hash password", err)
	}

	res, err := s.db.ExecContext(ctx, "UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		hashedPassword, s.now().UTC(), id)
	if err != nil {
		return apperr.Internal("update password", err)
	}
	return requireAffected(res, "user not found")
}

// SetActive activates or deactivates an account. Deactivated users fail authentication immediately.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (models.User, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?",
		active, s.now().UTC(), id)
	if err != nil {
		return models.User{}, apperr.Internal("update user status", err)
	}
	if err := requireAffected(res, "user not found"); err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(ctx, id)
}

// AuthenticateUser verifies a user's credentials. Unknown email, wrong password
// and inactive accounts all return ErrInvalidCredentials.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			s.hasher.DummyVerify(password)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	return user.Sanitized(), nil
}

func scanUser(scanner interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	var role string
	err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&role,
		&user.IsActive,
		&user.Phone,
		&user.Company,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.NotFound("user not found")
		}
		return models.User{}, apperr.Internal("scan user", err)
	}
	user.Role = models.Role(role)
	return user, nil
}

func requireAffected(res sql.Result, notFoundMessage string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal("rows affected", err)
	}
	if n == 0 {
		return apperr.NotFound(notFoundMessage)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
