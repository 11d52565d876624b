package incoterm

import "github.com/accelefreight/af-server/internal/domain/workflow"

// NormalizeTaskOnRead backfills fields introduced after a task was written
// and folds retired task type names into their replacements. It enriches
// the in-memory task only; callers decide whether to persist.
//
//	VESSEL_DEPARTURE -> POL
//	VESSEL_ARRIVAL   -> POD
//	IN_TRANSIT       -> IN_TRANSIT_LEGACY (ignored, hidden)
func NormalizeTaskOnRead(task *workflow.Task) {
	switch task.TaskType {
	case "VESSEL_DEPARTURE":
		task.TaskType = workflow.TypePOL
	case "VESSEL_ARRIVAL":
		task.TaskType = workflow.TypePOD
	case "IN_TRANSIT":
		task.TaskType = workflow.TypeInTransitLegacy
		if task.Mode == "" {
			task.Mode = workflow.ModeIgnored
		}
		if task.Visibility == "" {
			task.Visibility = workflow.VisibilityHidden
		}
	}

	if task.DisplayName == "" {
		task.DisplayName = workflow.DisplayName(task.TaskType)
	}

	// Re-level against the current leg map; legacy levels shift
	if lvl := workflow.LegLevel(task.TaskType); lvl != 0 {
		task.LegLevel = lvl
	}

	if task.Mode == "" {
		task.Mode = workflow.DefaultMode(task.TaskType)
	}

	if task.ScheduledEnd == nil {
		task.ScheduledEnd = task.DueDate
	}
	if task.ActualEnd == nil {
		task.ActualEnd = task.CompletedAt
	}
}
