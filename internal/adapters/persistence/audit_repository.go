package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/domain/audit"
)

// GormAuditLog implements audit.Log using GORM
type GormAuditLog struct {
	db *gorm.DB
}

// NewGormAuditLog creates a new GORM audit log
func NewGormAuditLog(db *gorm.DB) *GormAuditLog {
	return &GormAuditLog{db: db}
}

// Append writes one audit record
func (r *GormAuditLog) Append(ctx context.Context, e *audit.Entry) error {
	var metadata *string
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		s := string(raw)
		metadata = &s
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	model := &SystemLogModel{
		Action:    e.Action,
		EntityID:  e.EntityID,
		UID:       e.UID,
		Email:     e.Email,
		Metadata:  metadata,
		CreatedAt: createdAt,
	}
	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return fmt.Errorf("failed to append audit entry: %w", result.Error)
	}
	e.ID = model.ID
	return nil
}
