package models

import (
	"strings"
	"time"
)

// Role represents staff roles in the dashboard
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleViewer Role = "viewer"
)

// Actions checked by RequirePermission.
const (
	ActionViewDashboard    = "view_dashboard"
	ActionEditAppointments = "edit_appointments"
	ActionManageWorkers    = "manage_workers"
	ActionExportReports    = "export_reports"
)

// User represents a staff account known to the identity provider
type User struct {
	ID           string     `bson:"_id" json:"id"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"password_hash" json:"-"`
	DisplayName  string     `bson:"display_name" json:"display_name"`
	Role         Role       `bson:"role" json:"role"`
	Disabled     bool       `bson:"disabled" json:"disabled"`
	LastLogin    *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a sign-in request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a successful sign-in response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	TokenID string `json:"jti"`
	Exp     int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a user has permission for a specific action
func (u *User) HasPermission(action string) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleStaff:
		return action == ActionViewDashboard || action == ActionEditAppointments ||
			action == ActionManageWorkers || action == ActionExportReports
	case RoleViewer:
		return action == ActionViewDashboard
	default:
		return false
	}
}

// IsValidEmail performs the same light format check the sign-in form does
func IsValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".") && !strings.HasSuffix(email, ".")
}
