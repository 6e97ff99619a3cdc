package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/response"
)

// Requirement describes who may call an endpoint. Roles is the allowed role
// set; Tasks restricts staff accounts to those holding one of the listed
// assignments. Leads, deputies and admins are never task-restricted.
type Requirement struct {
	Roles []string
	Tasks []string
}

// Staff endpoints shared by every ward official regardless of assignment.
var AnyStaff = Requirement{
	Roles: []string{models.RoleStaff, models.RoleTeamLead, models.RoleDeputyLead, models.RoleAdmin},
}

// StaffWith narrows AnyStaff to staff holding one of the given tasks.
func StaffWith(tasks ...string) Requirement {
	return Requirement{Roles: AnyStaff.Roles, Tasks: tasks}
}

// CitizenOrStaffWith admits citizens alongside staff holding one of the
// given tasks. The task restriction only binds the staff role.
func CitizenOrStaffWith(tasks ...string) Requirement {
	roles := append([]string{models.RoleCitizen}, AnyStaff.Roles...)
	return Requirement{Roles: roles, Tasks: tasks}
}

// Authorize decides in one place whether a user satisfies a requirement.
// Every route and every in-handler permission check goes through it.
func Authorize(user *models.User, req Requirement) *code.Error {
	if user == nil {
		return code.New(code.Unauthorized)
	}

	if len(req.Roles) > 0 {
		allowed := false
		for _, role := range req.Roles {
			if user.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return code.New(code.Forbidden)
		}
	}

	// Task restrictions only bind plain staff; lead roles see everything
	// their teams handle.
	if len(req.Tasks) > 0 && user.Role == models.RoleStaff {
		for _, task := range req.Tasks {
			if user.HasTask(task) {
				return nil
			}
		}
		return code.New(code.Forbidden)
	}
	return nil
}

// Require guards a route group with a requirement. It must run after
// Authenticate.
func Require(req Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Authorize(CurrentUser(c), req); err != nil {
			response.AbortFail(c, err)
			return
		}
		c.Next()
	}
}
