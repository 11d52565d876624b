// Package shipments implements the shipment lifecycle operations
// behind the HTTP API: creation, status transitions, workflow tasks,
// BL ingestion, files, route nodes and the dashboard queries.
package shipments

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/bl"
	"github.com/accelefreight/af-server/internal/domain/company"
	"github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/domain/ports"
	"github.com/accelefreight/af-server/internal/domain/shared"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/storage"
	"github.com/accelefreight/af-server/internal/infrastructure/cache"
)

// Response is the envelope every operation returns. Lifecycle
// rejections come back as Status ERROR with a nil error, which the
// HTTP layer serves with code 200.
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
	Msg    string `json:"msg,omitempty"`
}

// OK builds a success response
func OK(data any, msg string) *Response {
	return &Response{Status: "OK", Data: data, Msg: msg}
}

// Rejected builds a lifecycle rejection response
func Rejected(msg string) *Response {
	return &Response{Status: "ERROR", Msg: msg}
}

// Service coordinates the stores and external adapters for all
// shipment operations.
type Service struct {
	store       *persistence.Store
	blobs       storage.BlobStore
	extractor   bl.Extractor
	clock       shared.Clock
	logger      *zap.Logger
	environment string
	urlTTL      time.Duration

	portsCache     *cache.TTL[[]ports.Port]
	companiesCache *cache.TTL[[]company.Company]
}

// Config carries the service construction knobs.
type Config struct {
	Environment  string
	SignedURLTTL time.Duration
}

// NewService creates the shipment service. The port catalog is cached
// for ten minutes and the company list for five; both are small and
// change rarely.
func NewService(
	store *persistence.Store,
	blobs storage.BlobStore,
	extractor bl.Extractor,
	clock shared.Clock,
	logger *zap.Logger,
	cfg Config,
) *Service {
	return &Service{
		store:          store,
		blobs:          blobs,
		extractor:      extractor,
		clock:          clock,
		logger:         logger,
		environment:    cfg.Environment,
		urlTTL:         cfg.SignedURLTTL,
		portsCache:     cache.NewTTL[[]ports.Port](10*time.Minute, clock.Now),
		companiesCache: cache.NewTTL[[]company.Company](5*time.Minute, clock.Now),
	}
}

// fetchShipment resolves a raw shipment ID (current, legacy-prefixed
// or v1) and loads the row. Customer callers only ever see their own
// company's shipments; anything else is a 404, never a 403, so IDs
// cannot be probed.
func (s *Service) fetchShipment(ctx context.Context, store *persistence.Store, claims identity.Claims, rawID string) (*shipment.Shipment, error) {
	id := shipment.ResolveID(rawID)
	if id == "" {
		return nil, aferr.NotFoundf("Invalid shipment ID format")
	}

	sh, err := store.Shipments.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, aferr.NotFoundf("Shipment %s not found", rawID)
		}
		return nil, err
	}

	if claims.IsAFC() && sh.CompanyID != claims.CompanyID {
		return nil, aferr.NotFoundf("Shipment %s not found", rawID)
	}
	return sh, nil
}

// listPorts returns the cached port catalog
func (s *Service) listPorts(ctx context.Context) ([]ports.Port, error) {
	return s.portsCache.Get(func() ([]ports.Port, error) {
		return s.store.Ports.ListAll(ctx)
	})
}

// listCompanies returns the cached company list
func (s *Service) listCompanies(ctx context.Context) ([]company.Company, error) {
	return s.companiesCache.Get(func() ([]company.Company, error) {
		return s.store.Companies.ListActive(ctx)
	})
}

func strptr(s string) *string {
	return &s
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
