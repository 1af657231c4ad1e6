package enums

import "fmt"

// UserRole represents an account-level permissions role.
type UserRole string

const (
	UserRoleCustomer       UserRole = "customer"
	UserRoleContentManager UserRole = "content_manager"
	UserRoleSalesManager   UserRole = "sales_manager"
	UserRoleSystemAdmin    UserRole = "system_admin"
)

var validUserRoles = []UserRole{
	UserRoleCustomer,
	UserRoleContentManager,
	UserRoleSalesManager,
	UserRoleSystemAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
