// Package identity verifies bearer tokens with the identity provider
// and augments the result from the local user accounts table.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/accelefreight/af-server/internal/aferr"
	domain "github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/infrastructure/config"
)

// HTTPVerifier exchanges a bearer token for base claims by calling the
// identity provider's verification endpoint.
type HTTPVerifier struct {
	client *http.Client
	url    string
}

// NewHTTPVerifier creates a verifier from auth configuration
func NewHTTPVerifier(cfg *config.AuthConfig) *HTTPVerifier {
	return &HTTPVerifier{
		client: &http.Client{Timeout: cfg.Timeout},
		url:    cfg.VerifierURL,
	}
}

// Verify calls the provider. Invalid or expired tokens come back as
// FORBIDDEN; provider outages as UPSTREAM.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, aferr.Upstreamf("token verification failed: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, aferr.Forbiddenf("Invalid or expired token")
	default:
		return nil, aferr.Upstreamf("token verifier returned %d", resp.StatusCode)
	}

	var body struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, aferr.Upstreamf("failed to decode verifier response: %v", err)
	}

	return &domain.Claims{UID: body.UID, Email: body.Email, Name: body.Name}, nil
}

// Authenticator turns a bearer token into full claims: verify with the
// provider, then augment account type, role and company from the local
// accounts table.
type Authenticator struct {
	verifier domain.TokenVerifier
	users    domain.UserAccountRepository
}

// NewAuthenticator creates an authenticator
func NewAuthenticator(verifier domain.TokenVerifier, users domain.UserAccountRepository) *Authenticator {
	return &Authenticator{verifier: verifier, users: users}
}

// Authenticate resolves a token to claims. Accounts with valid_access
// revoked are rejected even when the token itself is good.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.Claims, error) {
	claims, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	account, err := a.users.FindByUID(ctx, claims.UID)
	if err != nil {
		account, err = a.users.FindByEmail(ctx, claims.Email)
	}
	if err != nil {
		return nil, aferr.Forbiddenf("Account not registered")
	}
	if !account.ValidAccess {
		return nil, aferr.Forbiddenf("Account access has been revoked")
	}

	claims.AccountType = account.AccountType
	claims.Role = account.Role
	claims.CompanyID = account.CompanyID
	if claims.Name == "" {
		claims.Name = account.Name
	}

	if domain.IsSuperAdmin(claims.Email) {
		claims.AccountType = domain.AccountAFU
		claims.Role = domain.RoleAFUAdmin
	}

	return claims, nil
}
