package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories/memstore"
)

type recordingSessions struct {
	revoked []string
}

func (r *recordingSessions) Disconnect(uid string) int {
	r.revoked = append(r.revoked, uid)
	return 1
}

func newRoles(t *testing.T) (*RoleDirectory, *memstore.Store) {
	t.Helper()
	_, store := newCatalog(t)
	roles := NewRoleDirectory(store.Users(), store.Branches(), nil)
	roles.now = fixedClock(testNow)
	return roles, store
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		want models.Role
	}{
		{"neither", models.User{}, models.RoleNone},
		{"admin", models.User{IsAdmin: true}, models.RoleAdmin},
		{"worker", models.User{IsWorker: true}, models.RoleWorker},
		{"both flags", models.User{IsAdmin: true, IsWorker: true}, models.RoleWorker},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRole(&tt.user))
		})
	}
}

func TestSetRole_WorkerThenAdmin(t *testing.T) {
	roles, _ := newRoles(t)
	ctx := context.Background()
	_, err := roles.EnsureProfile(ctx, "u1", "Rana", "Rana@Example.com", "")
	require.NoError(t, err)

	require.NoError(t, roles.SetRole(ctx, "u1", models.RoleWorker, "downtown"))
	info, err := roles.GetRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleWorker, info.Role)
	require.NotNil(t, info.BranchID)
	assert.Equal(t, "downtown", *info.BranchID)

	user, err := roles.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, user.BranchName)
	assert.Equal(t, "Downtown", *user.BranchName)

	require.NoError(t, roles.SetRole(ctx, "u1", models.RoleAdmin, ""))
	info, err = roles.GetRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, info.Role)
	assert.Nil(t, info.BranchID)

	user, err = roles.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.False(t, user.IsWorker)
	assert.Nil(t, user.BranchID)
}

func TestSetRole_None(t *testing.T) {
	roles, _ := newRoles(t)
	ctx := context.Background()
	_, err := roles.EnsureProfile(ctx, "u1", "Rana", "rana@example.com", "")
	require.NoError(t, err)
	require.NoError(t, roles.SetRole(ctx, "u1", models.RoleAdmin, ""))

	require.NoError(t, roles.SetRole(ctx, "u1", models.RoleNone, ""))
	user, err := roles.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.IsWorker)
	assert.Equal(t, models.RoleNone, ResolveRole(user))
}

func TestSetRole_Rejections(t *testing.T) {
	roles, _ := newRoles(t)
	ctx := context.Background()
	_, err := roles.EnsureProfile(ctx, "u1", "Rana", "rana@example.com", "")
	require.NoError(t, err)

	assert.ErrorIs(t, roles.SetRole(ctx, "u1", models.RoleWorker, " "), ErrBranchRequired)
	assert.ErrorIs(t, roles.SetRole(ctx, "u1", models.RoleWorker, "uptown"), ErrNotFound)
	assert.ErrorIs(t, roles.SetRole(ctx, "ghost", models.RoleAdmin, ""), ErrNotFound)

	var verr *ValidationError
	assert.ErrorAs(t, roles.SetRole(ctx, "u1", "owner", ""), &verr)

	info, err := roles.GetRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, info.Role)
}

func TestToggleBlocked(t *testing.T) {
	roles, _ := newRoles(t)
	ctx := context.Background()
	_, err := roles.EnsureProfile(ctx, "u1", "Rana", "rana@example.com", "")
	require.NoError(t, err)

	blocked, err := roles.ToggleBlocked(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, blocked)
	info, err := roles.GetRole(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, info.IsBlocked)

	blocked, err = roles.ToggleBlocked(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, blocked)

	_, err = roles.ToggleBlocked(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureProfile(t *testing.T) {
	roles, _ := newRoles(t)
	ctx := context.Background()

	user, err := roles.EnsureProfile(ctx, "u1", " Rana ", "Rana@Example.com", "03 123 456")
	require.NoError(t, err)
	assert.Equal(t, "Rana", user.Name)
	assert.Equal(t, "rana@example.com", user.Email)
	assert.Equal(t, "+03123456", user.PhoneNumber)
	assert.Equal(t, models.RoleNone, user.Role)
	assert.Equal(t, testNow, user.CreatedAt)

	// Second sign-in returns the stored profile untouched.
	again, err := roles.EnsureProfile(ctx, "u1", "Someone Else", "other@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "Rana", again.Name)
	assert.Equal(t, "rana@example.com", again.Email)

	_, err = roles.EnsureProfile(ctx, "u2", "Bad", "not-an-email", "12")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "phoneNumber")
}

func TestGetRole_NoProfile(t *testing.T) {
	roles, _ := newRoles(t)

	_, err := roles.GetRole(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListWorkers(t *testing.T) {
	roles, _ := newRoles(t)
	ctx := context.Background()
	for _, uid := range []string{"u1", "u2"} {
		_, err := roles.EnsureProfile(ctx, uid, uid, uid+"@example.com", "")
		require.NoError(t, err)
	}
	require.NoError(t, roles.SetRole(ctx, "u2", models.RoleWorker, "downtown"))

	workers, err := roles.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, "u2", workers[0].UID)
}

func TestRoleChangesCloseLiveSessions(t *testing.T) {
	_, store := newCatalog(t)
	sessions := &recordingSessions{}
	roles := NewRoleDirectory(store.Users(), store.Branches(), sessions)
	ctx := context.Background()
	_, err := roles.EnsureProfile(ctx, "u1", "Rana", "rana@example.com", "")
	require.NoError(t, err)

	require.NoError(t, roles.SetRole(ctx, "u1", models.RoleAdmin, ""))
	_, err = roles.ToggleBlocked(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u1"}, sessions.revoked)

	// Rejected changes leave sessions alone.
	assert.Error(t, roles.SetRole(ctx, "u1", models.RoleWorker, ""))
	assert.Len(t, sessions.revoked, 2)
}
