package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/haulboard-be/internal/auth"
	"github.com/isdelr/haulboard-be/internal/database"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db))
	return db
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestUsers(db *database.DB) *UserService {
	return NewUserService(db, auth.NewHasher(bcrypt.MinCost))
}

func seedUser(t *testing.T, users *UserService, email string, role models.Role) models.User {
	t.Helper()
	u, err := users.CreateUser(context.Background(), NewUser{
		Email:    email,
		Password: "correct-horse",
		Name:     "User " + email,
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (p *recordingPublisher) PublishNotification(n models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
}

func (p *recordingPublisher) Sent() []models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Notification(nil), p.sent...)
}
