package persistence

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one database handle. Transaction
// rebinds every repository to the transactional handle so a mutating
// operation commits or rolls back as a unit.
type Store struct {
	db *gorm.DB

	Shipments *GormShipmentRepository
	Workflows *GormWorkflowRepository
	Files     *GormFileRepository
	FileTags  *GormFileTagRepository
	Companies *GormCompanyRepository
	Ports     *GormPortRepository
	Users     *GormUserAccountRepository
	Legacy    *GormLegacyRepository
	Audit     *GormAuditLog
}

// NewStore creates a store over a database handle
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Shipments: NewGormShipmentRepository(db),
		Workflows: NewGormWorkflowRepository(db),
		Files:     NewGormFileRepository(db),
		FileTags:  NewGormFileTagRepository(db),
		Companies: NewGormCompanyRepository(db),
		Ports:     NewGormPortRepository(db),
		Users:     NewGormUserAccountRepository(db),
		Legacy:    NewGormLegacyRepository(db),
		Audit:     NewGormAuditLog(db),
	}
}

// Transaction runs fn with a store bound to a database transaction
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// DB exposes the underlying handle for schema management commands
func (s *Store) DB() *gorm.DB {
	return s.db
}
