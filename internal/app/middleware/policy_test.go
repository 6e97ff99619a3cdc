package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
)

func strPtr(s string) *string { return &s }

func TestAuthorizeNilUser(t *testing.T) {
	err := Authorize(nil, AnyStaff)
	require.NotNil(t, err)
	assert.Equal(t, code.Unauthorized, err.Code)
}

func TestAuthorizeRoleMatrix(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		task     *string
		req      Requirement
		wantCode string // empty means allowed
	}{
		{"citizen denied staff endpoint", models.RoleCitizen, nil, AnyStaff, code.Forbidden},
		{"staff allowed staff endpoint", models.RoleStaff, nil, AnyStaff, ""},
		{"team lead allowed staff endpoint", models.RoleTeamLead, nil, AnyStaff, ""},
		{"admin allowed staff endpoint", models.RoleAdmin, nil, AnyStaff, ""},
		{"citizen allowed citizen endpoint", models.RoleCitizen, nil,
			Requirement{Roles: []string{models.RoleCitizen}}, ""},
		{"staff denied citizen endpoint", models.RoleStaff, nil,
			Requirement{Roles: []string{models.RoleCitizen}}, code.Forbidden},
		{"empty requirement allows any authenticated user", models.RoleCitizen, nil,
			Requirement{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &models.User{Role: tc.role, Task: tc.task}
			err := Authorize(user, tc.req)
			if tc.wantCode == "" {
				assert.Nil(t, err)
			} else {
				require.NotNil(t, err)
				assert.Equal(t, tc.wantCode, err.Code)
			}
		})
	}
}

func TestAuthorizeTaskRestrictions(t *testing.T) {
	req := StaffWith(models.TaskHouseholdRegistry, models.TaskTempResidency)

	cases := []struct {
		name    string
		role    string
		task    *string
		allowed bool
	}{
		{"staff with first listed task", models.RoleStaff, strPtr(models.TaskHouseholdRegistry), true},
		{"staff with second listed task", models.RoleStaff, strPtr(models.TaskTempResidency), true},
		{"staff with unrelated task", models.RoleStaff, strPtr(models.TaskPetitions), false},
		{"staff with no task", models.RoleStaff, nil, false},
		{"team lead bypasses task check", models.RoleTeamLead, nil, true},
		{"deputy lead bypasses task check", models.RoleDeputyLead, nil, true},
		{"admin bypasses task check", models.RoleAdmin, nil, true},
		{"citizen still role-blocked", models.RoleCitizen, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &models.User{Role: tc.role, Task: tc.task}
			err := Authorize(user, req)
			if tc.allowed {
				assert.Nil(t, err)
			} else {
				require.NotNil(t, err)
				assert.Equal(t, code.Forbidden, err.Code)
			}
		})
	}
}

func TestAuthorizeCitizenOrStaffWith(t *testing.T) {
	req := CitizenOrStaffWith(models.TaskPetitions)

	cases := []struct {
		name    string
		role    string
		task    *string
		allowed bool
	}{
		{"citizen allowed without task", models.RoleCitizen, nil, true},
		{"staff with petitions task", models.RoleStaff, strPtr(models.TaskPetitions), true},
		{"staff with unrelated task", models.RoleStaff, strPtr(models.TaskHouseholdRegistry), false},
		{"staff with no task", models.RoleStaff, nil, false},
		{"team lead bypasses task check", models.RoleTeamLead, nil, true},
		{"admin bypasses task check", models.RoleAdmin, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &models.User{Role: tc.role, Task: tc.task}
			err := Authorize(user, req)
			if tc.allowed {
				assert.Nil(t, err)
			} else {
				require.NotNil(t, err)
				assert.Equal(t, code.Forbidden, err.Code)
			}
		})
	}
}
