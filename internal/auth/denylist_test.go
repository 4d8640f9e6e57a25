package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDenylist(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDenylist()

	d.Revoke("a", now.Add(time.Minute))
	d.Revoke("b", now.Add(time.Hour))
	d.Revoke("", now.Add(time.Hour))

	assert.Equal(t, 2, d.Len())
	assert.True(t, d.IsRevoked("a", now))
	assert.False(t, d.IsRevoked("c", now))
	assert.False(t, d.IsRevoked("a", now.Add(time.Minute)))

	assert.Equal(t, 1, d.Prune(now.Add(time.Minute)))
	assert.Equal(t, 1, d.Len())
	assert.True(t, d.IsRevoked("b", now.Add(time.Minute)))
}
