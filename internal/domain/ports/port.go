// Package ports holds the seaport catalog and the free-text matcher
// that resolves bill-of-lading port names to UN/LOCODE codes.
package ports

import (
	"context"
	"time"
)

// Port is a seaport catalog entry keyed by UN/LOCODE.
type Port struct {
	UNCode       string    `json:"un_code"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	CountryCode  string    `json:"country_code"`
	PortType     string    `json:"port_type"`
	HasTerminals bool      `json:"has_terminals"`
	Terminals    []string  `json:"terminals"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository defines port catalog persistence
type Repository interface {
	FindByCode(ctx context.Context, unCode string) (*Port, error)
	ListAll(ctx context.Context) ([]Port, error)
}
