package profile

import "github.com/timeguard/timeguard-api/internal/pkg/session"

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"
	PermissionEditOwnProfile Permission = "profile.edit_own"

	// Time Tracking
	PermissionTimeEntryCreate  Permission = "time_entry.create"
	PermissionTimeEntryViewOwn Permission = "time_entry.view_own"
	PermissionTimeEntryViewAll Permission = "time_entry.view_all"

	// Sites
	PermissionSiteView   Permission = "site.view"
	PermissionSiteManage Permission = "site.manage"

	// Assignments
	PermissionAssignmentManage Permission = "assignment.manage"

	// Oversight
	PermissionConflictView     Permission = "conflict.view"
	PermissionVarianceView     Permission = "variance.view"
	PermissionVarianceGenerate Permission = "variance.generate"
	PermissionReportsView      Permission = "reports.view"
	PermissionActivityView     Permission = "activity.view"

	// Onsite
	PermissionOnsiteSubmit  Permission = "onsite.submit"
	PermissionMessageManage Permission = "message.manage"

	// User Management
	PermissionUserManage Permission = "user.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[session.Role][]Permission{
	session.RoleAdmin: {
		// Admin has all permissions
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionTimeEntryCreate,
		PermissionTimeEntryViewOwn,
		PermissionTimeEntryViewAll,
		PermissionSiteView,
		PermissionSiteManage,
		PermissionAssignmentManage,
		PermissionConflictView,
		PermissionVarianceView,
		PermissionVarianceGenerate,
		PermissionReportsView,
		PermissionActivityView,
		PermissionOnsiteSubmit,
		PermissionMessageManage,
		PermissionUserManage,
	},
	session.RoleManager: {
		// Manager reviews team data and assigns sites
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionTimeEntryCreate,
		PermissionTimeEntryViewOwn,
		PermissionTimeEntryViewAll,
		PermissionSiteView,
		PermissionAssignmentManage,
		PermissionConflictView,
		PermissionVarianceView,
		PermissionVarianceGenerate,
		PermissionReportsView,
		PermissionActivityView,
		PermissionOnsiteSubmit,
		PermissionMessageManage,
	},
	session.RoleEmployee: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionTimeEntryCreate,
		PermissionTimeEntryViewOwn,
		PermissionSiteView,
		PermissionOnsiteSubmit,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role session.Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
