// Package identity holds the caller identity model and role groups.
package identity

// Account types
const (
	AccountAFU = "AFU" // forwarder staff
	AccountAFC = "AFC" // customer company user
)

// Roles
const (
	RoleAFUAdmin = "AFU-ADMIN"
	RoleAFUSM    = "AFU-SM"
	RoleAFUSE    = "AFU-SE"
	RoleAFCAdmin = "AFC-ADMIN"
	RoleAFCM     = "AFC-M"
)

// SuperAdminEmails always resolve to AFU-ADMIN regardless of the accounts
// table.
var SuperAdminEmails = []string{
	"calvin.wong@accelefreight.com",
	"isaac@accelefreight.com",
}

// Claims is the authenticated caller identity, token claims augmented from
// the user accounts table.
type Claims struct {
	UID         string
	Email       string
	AccountType string
	Role        string
	CompanyID   string
	Name        string
}

// IsAFU reports whether the caller is forwarder staff.
func (c Claims) IsAFU() bool {
	return c.AccountType == AccountAFU
}

// IsAFC reports whether the caller belongs to a customer company.
func (c Claims) IsAFC() bool {
	return c.AccountType == AccountAFC
}

// IsAFUAdmin reports whether the caller is a staff admin.
func (c Claims) IsAFUAdmin() bool {
	return c.IsAFU() && c.Role == RoleAFUAdmin
}

// IsAFCManager reports whether an AFC caller holds an admin or manager
// role. Regular AFC users are read-only on workflow surfaces.
func (c Claims) IsAFCManager() bool {
	return c.IsAFC() && (c.Role == RoleAFCAdmin || c.Role == RoleAFCM)
}

// IsSuperAdmin reports whether the email is on the hardcoded allow-list.
func IsSuperAdmin(email string) bool {
	for _, e := range SuperAdminEmails {
		if e == email {
			return true
		}
	}
	return false
}
