package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Carrier ")
	require.NoError(t, err)
	assert.Equal(t, RoleCarrier, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRoleIn(t *testing.T) {
	assert.True(t, RoleAdmin.In(RoleCompany, RoleAdmin))
	assert.False(t, RoleIndividual.In(RoleCompany, RoleAdmin))
	assert.False(t, RoleIndividual.In())
}

func TestShipmentTransitions(t *testing.T) {
	assert.True(t, ShipmentPending.CanTransitionTo(ShipmentInTransit))
	assert.True(t, ShipmentPending.CanTransitionTo(ShipmentCancelled))
	assert.True(t, ShipmentInTransit.CanTransitionTo(ShipmentDelivered))
	assert.False(t, ShipmentPending.CanTransitionTo(ShipmentDelivered))
	assert.False(t, ShipmentDelivered.CanTransitionTo(ShipmentCancelled))
	assert.False(t, ShipmentCancelled.CanTransitionTo(ShipmentPending))
	assert.False(t, ShipmentInTransit.CanTransitionTo(ShipmentInTransit))
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 20, Total: 0, TotalPages: 0}, NewPagination(1, 20, 0))
	assert.Equal(t, 3, NewPagination(1, 10, 21).TotalPages)
	assert.Equal(t, 2, NewPagination(2, 10, 20).TotalPages)
}

func TestUserJSONNeverIncludesHash(t *testing.T) {
	u := User{ID: "u1", Email: "a@example.com", PasswordHash: "$2a$10$secret", Role: RoleCompany}

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "passwordHash")
	assert.Empty(t, u.Sanitized().PasswordHash)
}

func TestScopeFor(t *testing.T) {
	assert.Equal(t, Scope{UserID: "a", All: true}, ScopeFor(User{ID: "a", Role: RoleAdmin}))
	assert.Equal(t, Scope{UserID: "b"}, ScopeFor(User{ID: "b", Role: RoleCarrier}))
}
