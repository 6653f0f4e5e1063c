package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPermissions(t *testing.T) {
	assert.Contains(t, DefaultPermissions(ROLE_ADMIN), "manage_school")
	assert.Contains(t, DefaultPermissions(ROLE_ADMIN), "manage_users")
	assert.Contains(t, DefaultPermissions(ROLE_TEACHER), "manage_grades")
	assert.NotContains(t, DefaultPermissions(ROLE_TEACHER), "manage_school")
	assert.Equal(t, []string{"view_grades", "view_fees"}, DefaultPermissions(ROLE_STUDENT))
	assert.Contains(t, DefaultPermissions(ROLE_PARENT), "view_reports")
	assert.Empty(t, DefaultPermissions("unknown"))
}

func TestPermissionsRecomputedOnRoleChange(t *testing.T) {
	u := &User{Role: ROLE_ADMIN, Permissions: DefaultPermissions(ROLE_ADMIN)}

	// A role change replaces the whole set; nothing from the old role
	// may survive.
	u.Role = ROLE_STUDENT
	u.Permissions = DefaultPermissions(u.Role)

	assert.Equal(t, []string{"view_grades", "view_fees"}, u.Permissions)
	assert.False(t, u.HasPermission("manage_school"))
}

func TestHasPermission(t *testing.T) {
	u := &User{Permissions: []string{"view_grades"}}
	assert.True(t, u.HasPermission("view_grades"))
	assert.False(t, u.HasPermission("manage_grades"))

	empty := &User{}
	assert.False(t, empty.HasPermission("view_grades"))
}

func TestCheckPasswordWithoutCredentials(t *testing.T) {
	u := &User{}
	assert.False(t, u.CheckPassword("anything"), "a user without credentials never authenticates")

	blank := ""
	u.PasswordHash = &blank
	assert.False(t, u.CheckPassword("anything"))
}

func TestSetAndCheckPassword(t *testing.T) {
	u := &User{}
	assert.NoError(t, u.SetPassword("Prof#2024"))
	assert.NotNil(t, u.PasswordHash)
	assert.True(t, u.CheckPassword("Prof#2024"))
	assert.False(t, u.CheckPassword("faux"))
}

func TestUserIsActive(t *testing.T) {
	assert.True(t, (&User{Status: STATUS_ACTIVE}).IsActive())
	assert.False(t, (&User{Status: STATUS_INACTIVE}).IsActive())
	assert.False(t, (&User{Status: STATUS_DISABLED}).IsActive())
}
