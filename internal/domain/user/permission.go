package user

type Permission string

const (
	// Reports
	PermissionAttendanceViewReport Permission = "attendance.view_report"
	PermissionAttendanceExport     Permission = "attendance.export"
	PermissionAttendanceSnapshot   Permission = "attendance.snapshot"

	// Ingestion
	PermissionScansIngest Permission = "scans.ingest"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionAttendanceViewReport,
		PermissionAttendanceExport,
		PermissionAttendanceSnapshot,
		PermissionScansIngest,
	},
	RoleManager: {
		PermissionAttendanceViewReport,
		PermissionAttendanceExport,
		PermissionAttendanceSnapshot,
	},
	RoleEmployee: {
		PermissionAttendanceViewReport,
	},
	RoleDevice: {
		PermissionScansIngest,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
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
