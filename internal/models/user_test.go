package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"staff role", RoleStaff, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	staff := &User{Role: RoleStaff}
	viewer := &User{Role: RoleViewer}
	nobody := &User{}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		{"admin can do anything", admin, "anything", true},
		{"admin can manage workers", admin, ActionManageWorkers, true},

		{"staff can view dashboard", staff, ActionViewDashboard, true},
		{"staff can edit appointments", staff, ActionEditAppointments, true},
		{"staff can manage workers", staff, ActionManageWorkers, true},
		{"staff can export reports", staff, ActionExportReports, true},
		{"staff cannot do unknown action", staff, "drop_database", false},

		{"viewer can view dashboard", viewer, ActionViewDashboard, true},
		{"viewer cannot edit appointments", viewer, ActionEditAppointments, false},
		{"viewer cannot manage workers", viewer, ActionManageWorkers, false},

		{"no role cannot view", nobody, ActionViewDashboard, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected bool
	}{
		{"test@example.com", true},
		{"a.b@shop.co.uk", true},
		{"testexample.com", false},
		{"test@", false},
		{"@example.com", false},
		{"test@example", false},
		{"test@example.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.expected {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.expected)
			}
		})
	}
}
