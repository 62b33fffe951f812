package model

import "strings"

// Role is the account role reported by the auth collaborator.
type Role string

// Known roles. RoleNone marks a missing or unrecognised role.
const (
	RoleNone            Role = ""
	RoleAdmin           Role = "admin"
	RoleAccountant      Role = "accountant"
	RoleCustomerService Role = "customer_service"
	RoleModerator       Role = "moderator"
	RoleTeacher         Role = "teacher"
	RoleFreelancer      Role = "freelancer"
	RoleGeneral         Role = "general"
	RoleStudent         Role = "student"
)

// AllRoles lists every known role, excluding RoleNone.
var AllRoles = []Role{
	RoleAdmin, RoleAccountant, RoleCustomerService, RoleModerator,
	RoleTeacher, RoleFreelancer, RoleGeneral, RoleStudent,
}

// ParseRole normalises a raw role string. The legacy "user" role is a
// student; anything unrecognised yields RoleNone.
func ParseRole(raw string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case RoleAdmin, RoleAccountant, RoleCustomerService, RoleModerator,
		RoleTeacher, RoleFreelancer, RoleGeneral, RoleStudent:
		return r
	case "user":
		return RoleStudent
	default:
		return RoleNone
	}
}

// IsStaff reports whether the role lands on the admin dashboard.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleCustomerService, RoleModerator:
		return true
	}
	return false
}

// DashboardFor returns the default dashboard for a role. Callers without a
// role are sent home.
func DashboardFor(r Role) PageState {
	switch {
	case r.IsStaff():
		return StateAdminDashboard
	case r == RoleTeacher:
		return StateTeacherDashboard
	case r == RoleFreelancer:
		return StateFreelancerDashboard
	case r == RoleGeneral:
		return StateCustomerDashboard
	case r == RoleStudent:
		return StateStudentDashboard
	default:
		return StateHome
	}
}

// IsDashboard reports whether s is one of the role dashboards.
func IsDashboard(s PageState) bool {
	switch s {
	case StateAdminDashboard, StateTeacherDashboard, StateFreelancerDashboard,
		StateCustomerDashboard, StateStudentDashboard:
		return true
	}
	return false
}
