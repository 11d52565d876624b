package workflow

// Task types map to freight workflow legs:
//
//	Leg 1: Origin haulage / cargo pickup
//	Leg 2: Freight booking
//	Leg 3: Export customs clearance
//	Leg 4: Port of Loading (POL)
//	Leg 5: Port of Discharge (POD)
//	Leg 6: Import customs clearance
//	Leg 7: Destination haulage / delivery
const (
	TypeOriginHaulage      = "ORIGIN_HAULAGE"
	TypeFreightBooking     = "FREIGHT_BOOKING"
	TypeExportClearance    = "EXPORT_CLEARANCE"
	TypePOL                = "POL"
	TypePOD                = "POD"
	TypeImportClearance    = "IMPORT_CLEARANCE"
	TypeDestinationHaulage = "DESTINATION_HAULAGE"

	// TypeInTransitLegacy marks retired IN_TRANSIT tasks normalized on read.
	TypeInTransitLegacy = "IN_TRANSIT_LEGACY"
)

// Task statuses
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusBlocked    = "BLOCKED"
)

// Task modes
const (
	ModeAssigned = "ASSIGNED"
	ModeTracked  = "TRACKED"
	ModeIgnored  = "IGNORED"
)

// Assigned-to values
const (
	AssigneeAF         = "AF"
	AssigneeCustomer   = "CUSTOMER"
	AssigneeThirdParty = "THIRD_PARTY"
)

// Visibility values
const (
	VisibilityVisible = "VISIBLE"
	VisibilityHidden  = "HIDDEN"
)

// LegLevel returns the display order for a task type (1-7), or 0 for
// unknown/legacy types.
func LegLevel(taskType string) int {
	switch taskType {
	case TypeOriginHaulage:
		return 1
	case TypeFreightBooking:
		return 2
	case TypeExportClearance:
		return 3
	case TypePOL:
		return 4
	case TypePOD:
		return 5
	case TypeImportClearance:
		return 6
	case TypeDestinationHaulage:
		return 7
	}
	return 0
}

// DisplayName returns the human label for a task type. Unknown types are
// returned as-is.
func DisplayName(taskType string) string {
	switch taskType {
	case TypeOriginHaulage:
		return "Origin Haulage / Pickup"
	case TypeFreightBooking:
		return "Freight Booking"
	case TypeExportClearance:
		return "Export Customs Clearance"
	case TypePOL:
		return "Port of Loading"
	case TypePOD:
		return "Port of Discharge"
	case TypeImportClearance:
		return "Import Customs Clearance"
	case TypeDestinationHaulage:
		return "Destination Haulage / Delivery"
	}
	return taskType
}

// DefaultMode returns the default execution mode for a task type. Port call
// legs are carrier milestones and default to TRACKED; everything else is
// actively ASSIGNED.
func DefaultMode(taskType string) string {
	switch taskType {
	case TypePOL, TypePOD:
		return ModeTracked
	}
	return ModeAssigned
}

// Task is one workflow leg stored in shipment_workflows.workflow_tasks.
// Timestamps and dates are ISO strings as persisted in the JSONB column.
type Task struct {
	TaskID          string  `json:"task_id"`
	TaskType        string  `json:"task_type"`
	DisplayName     string  `json:"display_name"`
	LegLevel        int     `json:"leg_level"`
	Mode            string  `json:"mode"`
	Status          string  `json:"status"`
	AssignedTo      string  `json:"assigned_to"`
	ThirdPartyName  *string `json:"third_party_name"`
	Visibility      string  `json:"visibility"`
	ScheduledStart  *string `json:"scheduled_start"`
	ScheduledEnd    *string `json:"scheduled_end"`
	ActualStart     *string `json:"actual_start"`
	ActualEnd       *string `json:"actual_end"`
	DueDate         *string `json:"due_date"`
	DueDateOverride bool    `json:"due_date_override"`
	Notes           *string `json:"notes"`
	CompletedAt     *string `json:"completed_at"`
	UpdatedBy       string  `json:"updated_by"`
	UpdatedAt       string  `json:"updated_at"`
}

// ValidStatus reports whether s is a recognised task status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

// ValidMode reports whether m is a recognised task mode.
func ValidMode(m string) bool {
	switch m {
	case ModeAssigned, ModeTracked, ModeIgnored:
		return true
	}
	return false
}

// ValidAssignee reports whether a is a recognised assigned_to value.
func ValidAssignee(a string) bool {
	switch a {
	case AssigneeAF, AssigneeCustomer, AssigneeThirdParty:
		return true
	}
	return false
}

// ValidVisibility reports whether v is a recognised visibility value.
func ValidVisibility(v string) bool {
	return v == VisibilityVisible || v == VisibilityHidden
}
