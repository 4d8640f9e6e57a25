package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/isdelr/haulboard-be/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_RecentFirst(t *testing.T) {
	ctx := context.Background()
	events := NewEventService(newTestDB(t))
	events.now = steppingClock()

	Record(ctx, events, EventLogin, LevelInfo, "User signed in", "u1")
	Record(ctx, events, EventShipmentStatus, LevelInfo, "Shipment moved", "")

	got, err := events.GetRecentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, EventShipmentStatus, got[0].Type)
	assert.Nil(t, got[0].UserID)
	require.NotNil(t, got[1].UserID)
	assert.Equal(t, "u1", *got[1].UserID)

	limited, err := events.GetRecentEvents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecord_SwallowsStoreErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).WillReturnError(errors.New("disk full"))

	events := NewEventService(database.New(sqlDB, database.SQLite))
	assert.NotPanics(t, func() {
		Record(context.Background(), events, EventLogin, LevelInfo, "User signed in", "u1")
	})
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.NotPanics(t, func() {
		Record(context.Background(), nil, EventLogin, LevelInfo, "ignored", "")
	})
}
