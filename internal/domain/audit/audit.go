// Package audit defines the system audit trail written alongside every
// mutating shipment operation.
package audit

import (
	"context"
	"time"
)

// Actions recorded in the audit trail.
const (
	ActionShipmentCreatedManual = "SHIPMENT_CREATED_MANUAL"
	ActionShipmentCreatedFromBL = "SHIPMENT_CREATED_FROM_BL"
	ActionStatusUpdated         = "STATUS_UPDATED"
	ActionTaskUpdated           = "TASK_UPDATED"
	ActionBLUpdated             = "BL_UPDATED"
	ActionPartiesUpdated        = "PARTIES_UPDATED"
	ActionRouteNodesUpdated     = "ROUTE_NODES_UPDATED"
	ActionFileUploaded          = "FILE_UPLOADED"
	ActionFileUpdated           = "FILE_UPDATED"
	ActionFileDeleted           = "FILE_DELETED"
	ActionInvoicedUpdated       = "INVOICED_UPDATED"
	ActionExceptionUpdated      = "EXCEPTION_UPDATED"
	ActionCompanyReassigned     = "COMPANY_REASSIGNED"
	ActionShipmentSoftDeleted   = "SHIPMENT_SOFT_DELETED"
	ActionShipmentHardDeleted   = "SHIPMENT_HARD_DELETED"
	ActionShipmentMigrated      = "SHIPMENT_MIGRATED"
)

// Entry is one audit record.
type Entry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	EntityID  string         `json:"entity_id"`
	UID       string         `json:"uid"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Log appends audit entries. Implementations must be safe to call
// inside a store transaction.
type Log interface {
	Append(ctx context.Context, e *Entry) error
}
