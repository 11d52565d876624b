package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/workflow"
)

// GormWorkflowRepository implements shipment.WorkflowRepository using GORM
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewGormWorkflowRepository creates a new GORM workflow repository
func NewGormWorkflowRepository(db *gorm.DB) *GormWorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// FindByShipmentID retrieves the workflow channel for a shipment
func (r *GormWorkflowRepository) FindByShipmentID(ctx context.Context, shipmentID string) (*shipment.Workflow, error) {
	var model ShipmentWorkflowModel
	result := r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).Take(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find workflow: %w", result.Error)
	}
	return r.modelToEntity(&model)
}

// Add persists a new workflow row
func (r *GormWorkflowRepository) Add(ctx context.Context, w *shipment.Workflow) error {
	model, err := r.entityToModel(w)
	if err != nil {
		return fmt.Errorf("failed to convert workflow to model: %w", err)
	}
	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return fmt.Errorf("failed to add workflow: %w", result.Error)
	}
	return nil
}

// Save upserts a workflow row
func (r *GormWorkflowRepository) Save(ctx context.Context, w *shipment.Workflow) error {
	model, err := r.entityToModel(w)
	if err != nil {
		return fmt.Errorf("failed to convert workflow to model: %w", err)
	}
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save workflow: %w", result.Error)
	}
	return nil
}

// Delete hard-deletes the workflow row for a shipment
func (r *GormWorkflowRepository) Delete(ctx context.Context, shipmentID string) error {
	result := r.db.WithContext(ctx).Delete(&ShipmentWorkflowModel{}, "shipment_id = ?", shipmentID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete workflow: %w", result.Error)
	}
	return nil
}

// RekeyShipment moves a workflow row from a legacy shipment key to the
// canonical one during migration.
func (r *GormWorkflowRepository) RekeyShipment(ctx context.Context, fromID, toID string) error {
	result := r.db.WithContext(ctx).Model(&ShipmentWorkflowModel{}).
		Where("shipment_id = ?", fromID).
		Update("shipment_id", toID)
	if result.Error != nil {
		return fmt.Errorf("failed to rekey workflow %s: %w", fromID, result.Error)
	}
	return nil
}

func (r *GormWorkflowRepository) modelToEntity(model *ShipmentWorkflowModel) (*shipment.Workflow, error) {
	tasks, err := unmarshalSlice[workflow.Task](model.WorkflowTasks)
	if err != nil {
		return nil, fmt.Errorf("workflow_tasks: %w", err)
	}
	history, err := unmarshalSlice[shipment.WorkflowStatusEntry](model.StatusHistory)
	if err != nil {
		return nil, fmt.Errorf("status_history: %w", err)
	}

	return &shipment.Workflow{
		ShipmentID:    model.ShipmentID,
		CompanyID:     model.CompanyID,
		Tasks:         tasks,
		StatusHistory: history,
		Completed:     model.Completed,
		Trash:         model.Trash,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}, nil
}

func (r *GormWorkflowRepository) entityToModel(w *shipment.Workflow) (*ShipmentWorkflowModel, error) {
	tasks, err := marshalSlice(w.Tasks)
	if err != nil {
		return nil, fmt.Errorf("workflow_tasks: %w", err)
	}
	history, err := marshalSlice(w.StatusHistory)
	if err != nil {
		return nil, fmt.Errorf("status_history: %w", err)
	}

	return &ShipmentWorkflowModel{
		ShipmentID:    w.ShipmentID,
		CompanyID:     w.CompanyID,
		WorkflowTasks: tasks,
		StatusHistory: history,
		Completed:     w.Completed,
		Trash:         w.Trash,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}, nil
}
