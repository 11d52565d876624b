package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// LegacyRecord is one row from the v1 interop table. Data stays raw;
// the migrator decodes each kind itself.
type LegacyRecord struct {
	Kind       string
	Key        string
	Data       json.RawMessage
	Superseded bool
}

// GormLegacyRepository reads and marks the legacy_entities interop
// table during v1 migration.
type GormLegacyRepository struct {
	db *gorm.DB
}

// NewGormLegacyRepository creates a new GORM legacy repository
func NewGormLegacyRepository(db *gorm.DB) *GormLegacyRepository {
	return &GormLegacyRepository{db: db}
}

// ListByKind returns all non-superseded records of one kind, ordered
// by key for deterministic migration runs.
func (r *GormLegacyRepository) ListByKind(ctx context.Context, kind string) ([]LegacyRecord, error) {
	var models []LegacyEntityModel
	result := r.db.WithContext(ctx).
		Where("kind = ? AND superseded = ?", kind, false).
		Order("key ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list legacy %s records: %w", kind, result.Error)
	}

	records := make([]LegacyRecord, 0, len(models))
	for _, m := range models {
		records = append(records, LegacyRecord{
			Kind:       m.Kind,
			Key:        m.Key,
			Data:       json.RawMessage(m.Data),
			Superseded: m.Superseded,
		})
	}
	return records, nil
}

// Find returns one legacy record, or gorm.ErrRecordNotFound.
func (r *GormLegacyRepository) Find(ctx context.Context, kind, key string) (*LegacyRecord, error) {
	var model LegacyEntityModel
	result := r.db.WithContext(ctx).Where("kind = ? AND key = ?", kind, key).Take(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find legacy record: %w", result.Error)
	}
	return &LegacyRecord{
		Kind:       model.Kind,
		Key:        model.Key,
		Data:       json.RawMessage(model.Data),
		Superseded: model.Superseded,
	}, nil
}

// UpdateData rewrites the raw payload of one legacy record. Used by the
// invoice backfill, which normalizes a field across two kinds in place.
func (r *GormLegacyRepository) UpdateData(ctx context.Context, kind, key string, data json.RawMessage) error {
	result := r.db.WithContext(ctx).Model(&LegacyEntityModel{}).
		Where("kind = ? AND key = ?", kind, key).
		Update("data", string(data))
	if result.Error != nil {
		return fmt.Errorf("failed to update legacy record %s/%s: %w", kind, key, result.Error)
	}
	return nil
}

// MarkSuperseded flags migrated records so reruns skip them.
func (r *GormLegacyRepository) MarkSuperseded(ctx context.Context, kind string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&LegacyEntityModel{}).
		Where("kind = ? AND key IN ?", kind, keys).
		Update("superseded", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark legacy records superseded: %w", result.Error)
	}
	return nil
}
