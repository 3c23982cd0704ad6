package shared

// Dashboard roles.
const (
	RoleAdmin  = "Admin"
	RoleStaff  = "Staff"
	RoleViewer = "Viewer"
)

// Core platform permissions.
const (
	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"

	PermStockView   = "stock.view"
	PermStockEdit   = "stock.edit"
	PermStockDelete = "stock.delete"

	PermCategoriesManage = "categories.manage"

	PermLogsView  = "logs.view"
	PermLogsClear = "logs.clear"

	PermReportsView = "reports.view"
)

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermUsersView,
		PermUsersEdit,
		PermStockView,
		PermStockEdit,
		PermStockDelete,
		PermCategoriesManage,
		PermLogsView,
		PermLogsClear,
		PermReportsView,
	}
}

var rolePermissions = map[string][]string{
	RoleAdmin:  CoreScopes(),
	RoleStaff:  {PermStockView, PermStockEdit},
	RoleViewer: {PermReportsView},
}

// PermissionsForRole returns the permissions granted to a dashboard role.
func PermissionsForRole(role string) []string {
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// ValidRole reports whether role is one of the dashboard roles.
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}
