package incoterm

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/accelefreight/af-server/internal/domain/workflow"
)

// Dates carries the schedule anchors used by the due-date formulas. Nil
// means unknown; the corresponding due dates are left unset.
type Dates struct {
	ETD        *time.Time
	ETA        *time.Time
	CargoReady *time.Time
}

// dueDate applies the per-leg due-date formula. Returns nil when the
// required anchor date is missing.
func dueDate(taskType string, d Dates) *string {
	var result *time.Time

	switch taskType {
	case workflow.TypeOriginHaulage:
		if d.CargoReady != nil {
			result = d.CargoReady
		} else if d.ETD != nil {
			result = shiftDays(d.ETD, -3)
		}
	case workflow.TypeFreightBooking:
		result = shiftDays(d.ETD, -7)
	case workflow.TypeExportClearance:
		result = shiftDays(d.ETD, -2)
	case workflow.TypePOL:
		result = d.ETD
	case workflow.TypePOD:
		result = d.ETA
	case workflow.TypeImportClearance:
		result = shiftDays(d.ETA, 1)
	case workflow.TypeDestinationHaulage:
		result = shiftDays(d.ETA, 3)
	}

	if result == nil {
		return nil
	}
	s := result.Format("2006-01-02")
	return &s
}

func shiftDays(t *time.Time, days int) *time.Time {
	if t == nil {
		return nil
	}
	shifted := t.AddDate(0, 0, days)
	return &shifted
}

// GenerateTasks builds the workflow task list for a shipment from its
// incoterm and transaction type. Unknown pairs yield no tasks. The export
// clearance leg starts BLOCKED whenever a freight booking leg is present,
// since clearance cannot begin until the booking reference exists.
func GenerateTasks(incoterm, transactionType string, d Dates, now time.Time, updatedBy string) []workflow.Task {
	taskTypes := TaskTypes(incoterm, transactionType)
	if len(taskTypes) == 0 {
		return nil
	}

	hasFreightBooking := false
	for _, tt := range taskTypes {
		if tt == workflow.TypeFreightBooking {
			hasFreightBooking = true
			break
		}
	}

	nowISO := now.UTC().Format(time.RFC3339)
	tasks := make([]workflow.Task, 0, len(taskTypes))
	for _, tt := range taskTypes {
		status := workflow.StatusPending
		if tt == workflow.TypeExportClearance && hasFreightBooking {
			status = workflow.StatusBlocked
		}

		due := dueDate(tt, d)
		tasks = append(tasks, workflow.Task{
			TaskID:          uuid.NewString(),
			TaskType:        tt,
			DisplayName:     workflow.DisplayName(tt),
			LegLevel:        workflow.LegLevel(tt),
			Mode:            workflow.DefaultMode(tt),
			Status:          status,
			AssignedTo:      workflow.AssigneeAF,
			Visibility:      workflow.VisibilityVisible,
			ScheduledEnd:    due,
			DueDate:         due,
			DueDateOverride: false,
			UpdatedBy:       updatedBy,
			UpdatedAt:       nowISO,
		})
	}

	// Display order
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].LegLevel < tasks[j].LegLevel
	})
	return tasks
}

// RecalculateDueDates re-runs the due-date formulas on tasks whose due date
// has not been manually overridden. Returns true if any task changed.
func RecalculateDueDates(tasks []workflow.Task, d Dates, now time.Time, updatedBy string) bool {
	nowISO := now.UTC().Format(time.RFC3339)
	changed := false

	for i := range tasks {
		if tasks[i].DueDateOverride {
			continue
		}
		newDue := dueDate(tasks[i].TaskType, d)
		if !sameDate(newDue, tasks[i].DueDate) {
			tasks[i].DueDate = newDue
			tasks[i].ScheduledEnd = newDue
			tasks[i].UpdatedBy = updatedBy
			tasks[i].UpdatedAt = nowISO
			changed = true
		}
	}
	return changed
}

func sameDate(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
