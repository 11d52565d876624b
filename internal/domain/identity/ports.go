package identity

import "context"

// TokenVerifier exchanges a bearer token for base claims with the
// identity provider. Account augmentation happens against the local
// user_accounts table afterwards.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// UserAccount is the local augmentation record for a verified user.
type UserAccount struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	AccountType string `json:"account_type"`
	Role        string `json:"role"`
	CompanyID   string `json:"company_id"`
	Name        string `json:"name"`
	ValidAccess bool   `json:"valid_access"`
}

// UserAccountRepository defines persistence for user accounts
type UserAccountRepository interface {
	FindByUID(ctx context.Context, uid string) (*UserAccount, error)
	FindByEmail(ctx context.Context, email string) (*UserAccount, error)
}
