// Package company holds the customer company catalog and the fuzzy
// name matcher used when linking parsed bill-of-lading parties to
// known companies.
package company

import "time"

// Company is a customer account. AccountType is AFC for customers;
// staff users carry AFU on their user account instead.
type Company struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	ShortName         string         `json:"short_name,omitempty"`
	AccountType       string         `json:"account_type"`
	Email             string         `json:"email,omitempty"`
	Phone             string         `json:"phone,omitempty"`
	Address           map[string]any `json:"address,omitempty"`
	XeroContactID     string         `json:"xero_contact_id,omitempty"`
	Approved          bool           `json:"approved"`
	HasPlatformAccess bool           `json:"has_platform_access"`
	Trash             bool           `json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}
