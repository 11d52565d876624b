package workflow

import "fmt"

// WarningExportClearanceBlocked is surfaced when a freight booking completes
// before the booking reference has been captured on the shipment.
const WarningExportClearanceBlocked = "EXPORT_CLEARANCE remains BLOCKED: booking_reference not set on shipment"

// Patch carries the updatable task fields. Nil means "leave unchanged";
// an empty string clears the field where that is meaningful.
type Patch struct {
	Status          *string `json:"status"`
	Mode            *string `json:"mode"`
	AssignedTo      *string `json:"assigned_to"`
	ThirdPartyName  *string `json:"third_party_name"`
	DueDate         *string `json:"due_date"`
	DueDateOverride *bool   `json:"due_date_override"`
	Notes           *string `json:"notes"`
	Visibility      *string `json:"visibility"`
	ScheduledStart  *string `json:"scheduled_start"`
	ScheduledEnd    *string `json:"scheduled_end"`
	ActualStart     *string `json:"actual_start"`
	ActualEnd       *string `json:"actual_end"`
}

// Validate checks the enum fields before anything is applied.
func (p Patch) Validate() error {
	if p.Status != nil && !ValidStatus(*p.Status) {
		return fmt.Errorf("invalid status: %s", *p.Status)
	}
	if p.Mode != nil && !ValidMode(*p.Mode) {
		return fmt.Errorf("invalid mode: %s", *p.Mode)
	}
	if p.AssignedTo != nil && !ValidAssignee(*p.AssignedTo) {
		return fmt.Errorf("invalid assigned_to: %s", *p.AssignedTo)
	}
	if p.Visibility != nil && !ValidVisibility(*p.Visibility) {
		return fmt.Errorf("invalid visibility: %s", *p.Visibility)
	}
	return nil
}

// Apply mutates task according to the patch. Mode is applied before status
// because mode constrains which statuses are valid. now is the ISO timestamp
// to stamp on auto-set timing fields.
func (p Patch) Apply(task *Task, now, updatedBy string) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.Mode != nil {
		oldMode := task.Mode
		task.Mode = *p.Mode
		if *p.Mode == ModeIgnored {
			task.Visibility = VisibilityHidden
			task.Status = StatusPending
		} else if oldMode == ModeIgnored {
			// Coming out of IGNORED, restore visibility
			task.Visibility = VisibilityVisible
		}
	}

	if p.Status != nil {
		if *p.Status == StatusBlocked && task.Mode != ModeAssigned {
			return fmt.Errorf("BLOCKED status only valid for ASSIGNED mode tasks")
		}

		oldStatus := task.Status
		task.Status = *p.Status

		if *p.Status == StatusInProgress && oldStatus != StatusInProgress {
			if p.ActualStart == nil && task.ActualStart == nil {
				task.ActualStart = &now
			}
		}

		if *p.Status == StatusCompleted {
			// TRACKED POD: the arrival (actual_start) is the completion
			// event; the vessel arrives and discharges, departure is
			// irrelevant for POD
			if task.Mode == ModeTracked && task.TaskType == TypePOD {
				if p.ActualStart == nil && task.ActualStart == nil {
					task.ActualStart = &now
				}
			} else {
				if p.ActualEnd == nil && task.ActualEnd == nil {
					task.ActualEnd = &now
				}
			}
			task.CompletedAt = &now
		}
	}

	if p.AssignedTo != nil {
		task.AssignedTo = *p.AssignedTo
	}
	if p.ThirdPartyName != nil {
		task.ThirdPartyName = p.ThirdPartyName
	}

	if p.DueDate != nil {
		task.DueDate = p.DueDate
		task.ScheduledEnd = p.DueDate
		task.DueDateOverride = true
	} else if p.DueDateOverride != nil {
		task.DueDateOverride = *p.DueDateOverride
	}

	if p.Notes != nil {
		task.Notes = p.Notes
	}
	if p.Visibility != nil {
		task.Visibility = *p.Visibility
	}

	if p.ScheduledStart != nil {
		task.ScheduledStart = p.ScheduledStart
	}
	if p.ScheduledEnd != nil {
		task.ScheduledEnd = p.ScheduledEnd
	}
	if p.ActualStart != nil {
		task.ActualStart = p.ActualStart
	}
	if p.ActualEnd != nil {
		task.ActualEnd = p.ActualEnd
		task.CompletedAt = p.ActualEnd
	}

	task.UpdatedBy = updatedBy
	task.UpdatedAt = now
	return nil
}

// CompletesFreightBooking reports whether this patch marks a freight
// booking task as completed, which may unblock export clearance.
func (p Patch) CompletesFreightBooking(task *Task) bool {
	return p.Status != nil && *p.Status == StatusCompleted && task.TaskType == TypeFreightBooking
}

// FreightBookingCompleted reports whether the freight booking leg has been
// completed in the given task list.
func FreightBookingCompleted(tasks []Task) bool {
	for i := range tasks {
		if tasks[i].TaskType == TypeFreightBooking && tasks[i].Status == StatusCompleted {
			return true
		}
	}
	return false
}

// UnblockExportClearance promotes a BLOCKED export clearance task to PENDING.
// Returns true if a task was changed.
func UnblockExportClearance(tasks []Task, now, updatedBy string) bool {
	for i := range tasks {
		if tasks[i].TaskType == TypeExportClearance && tasks[i].Status == StatusBlocked {
			tasks[i].Status = StatusPending
			tasks[i].UpdatedBy = updatedBy
			tasks[i].UpdatedAt = now
			return true
		}
	}
	return false
}
