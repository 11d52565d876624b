package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/domain/shipment"
)

// GormFileRepository implements shipment.FileRepository using GORM
type GormFileRepository struct {
	db *gorm.DB
}

// NewGormFileRepository creates a new GORM file repository
func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

// FindByID retrieves file metadata by numeric ID
func (r *GormFileRepository) FindByID(ctx context.Context, id int64) (*shipment.File, error) {
	var model ShipmentFileModel
	result := r.db.WithContext(ctx).Where("id = ?", id).Take(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find file: %w", result.Error)
	}
	return r.modelToEntity(&model)
}

// ListByShipment lists non-trashed files for a shipment, newest first.
// visibleOnly restricts to customer-visible files.
func (r *GormFileRepository) ListByShipment(ctx context.Context, shipmentID string, visibleOnly bool) ([]shipment.File, error) {
	query := r.db.WithContext(ctx).
		Where("shipment_id = ? AND trash = ?", shipmentID, false)
	if visibleOnly {
		query = query.Where("visibility = ?", true)
	}

	var models []ShipmentFileModel
	result := query.Order("created_at DESC").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list files: %w", result.Error)
	}

	files := make([]shipment.File, 0, len(models))
	for i := range models {
		entity, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert file %d: %w", models[i].ID, err)
		}
		files = append(files, *entity)
	}
	return files, nil
}

// Add persists new file metadata and backfills the generated ID
func (r *GormFileRepository) Add(ctx context.Context, f *shipment.File) error {
	model, err := r.entityToModel(f)
	if err != nil {
		return fmt.Errorf("failed to convert file to model: %w", err)
	}
	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return fmt.Errorf("failed to add file: %w", result.Error)
	}
	f.ID = model.ID
	return nil
}

// Save upserts file metadata
func (r *GormFileRepository) Save(ctx context.Context, f *shipment.File) error {
	model, err := r.entityToModel(f)
	if err != nil {
		return fmt.Errorf("failed to convert file to model: %w", err)
	}
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save file: %w", result.Error)
	}
	return nil
}

// DeleteByShipment hard-deletes all file rows for a shipment
func (r *GormFileRepository) DeleteByShipment(ctx context.Context, shipmentID string) error {
	result := r.db.WithContext(ctx).Delete(&ShipmentFileModel{}, "shipment_id = ?", shipmentID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete files: %w", result.Error)
	}
	return nil
}

// RekeyShipment repoints file rows from a legacy shipment key to the
// canonical one during migration.
func (r *GormFileRepository) RekeyShipment(ctx context.Context, fromID, toID string) error {
	result := r.db.WithContext(ctx).Model(&ShipmentFileModel{}).
		Where("shipment_id = ?", fromID).
		Update("shipment_id", toID)
	if result.Error != nil {
		return fmt.Errorf("failed to rekey files for %s: %w", fromID, result.Error)
	}
	return nil
}

func (r *GormFileRepository) modelToEntity(model *ShipmentFileModel) (*shipment.File, error) {
	tags, err := unmarshalSlice[string](model.FileTags)
	if err != nil {
		return nil, fmt.Errorf("file_tags: %w", err)
	}

	return &shipment.File{
		ID:               model.ID,
		ShipmentID:       model.ShipmentID,
		CompanyID:        model.CompanyID,
		FileName:         model.FileName,
		FileLocation:     model.FileLocation,
		FileTags:         tags,
		FileDescription:  model.FileDescription,
		FileSizeKB:       model.FileSizeKB,
		Visibility:       model.Visibility,
		NotificationSent: model.NotificationSent,
		UploadedByUID:    model.UploadedByUID,
		UploadedByEmail:  model.UploadedByEmail,
		Trash:            model.Trash,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}, nil
}

func (r *GormFileRepository) entityToModel(f *shipment.File) (*ShipmentFileModel, error) {
	tags, err := marshalSlice(f.FileTags)
	if err != nil {
		return nil, fmt.Errorf("file_tags: %w", err)
	}

	return &ShipmentFileModel{
		ID:               f.ID,
		ShipmentID:       f.ShipmentID,
		CompanyID:        f.CompanyID,
		FileName:         f.FileName,
		FileLocation:     f.FileLocation,
		FileTags:         tags,
		FileDescription:  f.FileDescription,
		FileSizeKB:       f.FileSizeKB,
		Visibility:       f.Visibility,
		NotificationSent: f.NotificationSent,
		UploadedByUID:    f.UploadedByUID,
		UploadedByEmail:  f.UploadedByEmail,
		Trash:            f.Trash,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}, nil
}
