package shipments

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/domain/incoterm"
	"github.com/accelefreight/af-server/internal/domain/workflow"
)

// TaskList is the tasks endpoint payload.
type TaskList struct {
	ShipmentID string          `json:"shipment_id"`
	Tasks      []workflow.Task `json:"tasks"`
}

// Tasks returns the workflow tasks for a shipment, generating them on
// first access when possible. Stored tasks from older records are
// normalized on read; customers never see hidden tasks.
func (s *Service) Tasks(ctx context.Context, claims identity.Claims, shipmentID string) (*TaskList, error) {
	sh, err := s.fetchShipment(ctx, s.store, claims, shipmentID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.lazyInitTasks(ctx, sh)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		incoterm.NormalizeTaskOnRead(&tasks[i])
	}

	if claims.IsAFC() {
		visible := make([]workflow.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Visibility != workflow.VisibilityHidden {
				visible = append(visible, t)
			}
		}
		tasks = visible
	}

	return &TaskList{ShipmentID: shipmentID, Tasks: tasks}, nil
}

// TaskPatchResult carries the updated task plus an optional warning
// when a freight booking completes without a booking reference.
type TaskPatchResult struct {
	Status  string         `json:"status"`
	Data    *workflow.Task `json:"data"`
	Msg     string         `json:"msg"`
	Warning string         `json:"warning,omitempty"`
}

// PatchTask updates one task on the workflow. Staff may change
// anything; customer admins and managers everything except visibility;
// regular customer users are read-only.
func (s *Service) PatchTask(ctx context.Context, claims identity.Claims, shipmentID, taskID string, patch workflow.Patch) (*TaskPatchResult, error) {
	if claims.IsAFC() {
		if !claims.IsAFCManager() {
			return nil, aferr.Forbiddenf("Read-only access: cannot update tasks")
		}
		if patch.Visibility != nil {
			return nil, aferr.Forbiddenf("Only AF staff can change task visibility")
		}
	}

	if err := patch.Validate(); err != nil {
		return nil, aferr.BadRequestf("%s", err.Error())
	}

	now := s.clock.Now()
	nowISO := now.UTC().Format(time.RFC3339)

	var result *TaskPatchResult
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		wf, err := tx.Workflows.FindByShipmentID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("ShipmentWorkFlow for %s not found", shipmentID)
			}
			return err
		}

		if claims.IsAFC() && wf.CompanyID != claims.CompanyID {
			return aferr.NotFoundf("ShipmentWorkFlow for %s not found", shipmentID)
		}

		targetIdx := -1
		for i := range wf.Tasks {
			if wf.Tasks[i].TaskID == taskID {
				targetIdx = i
				break
			}
		}
		if targetIdx < 0 {
			return aferr.NotFoundf("Task %s not found on shipment %s", taskID, shipmentID)
		}

		task := &wf.Tasks[targetIdx]
		if err := patch.Apply(task, nowISO, claims.UID); err != nil {
			return aferr.BadRequestf("%s", err.Error())
		}

		warning := ""
		if patch.CompletesFreightBooking(task) {
			sh, err := tx.Shipments.FindByID(ctx, shipmentID)
			if err != nil && err != gorm.ErrRecordNotFound {
				return err
			}
			if err == nil && sh.Booking.Reference() != "" {
				workflow.UnblockExportClearance(wf.Tasks, nowISO, claims.UID)
			} else {
				warning = workflow.WarningExportClearanceBlocked
			}
		}

		wf.UpdatedAt = now
		if err := tx.Workflows.Save(ctx, wf); err != nil {
			return err
		}

		s.logger.Info("task updated",
			zap.String("shipment_id", shipmentID),
			zap.String("task_id", taskID),
			zap.String("uid", claims.UID),
		)

		updated := wf.Tasks[targetIdx]
		result = &TaskPatchResult{
			Status:  "OK",
			Data:    &updated,
			Msg:     "Task updated",
			Warning: warning,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
