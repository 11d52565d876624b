// Package shipment holds the shipment aggregate and the nested JSON
// payload records persisted alongside it.
package shipment

import (
	"time"

	"github.com/accelefreight/af-server/internal/domain/workflow"
)

// Order types
const (
	OrderSeaFCL = "SEA_FCL"
	OrderSeaLCL = "SEA_LCL"
	OrderAir    = "AIR"
)

// ValidOrderType reports whether t is a recognised order type.
func ValidOrderType(t string) bool {
	switch t {
	case OrderSeaFCL, OrderSeaLCL, OrderAir:
		return true
	}
	return false
}

// ValidTransactionType reports whether t is a recognised transaction type.
func ValidTransactionType(t string) bool {
	switch t {
	case "IMPORT", "EXPORT", "DOMESTIC":
		return true
	}
	return false
}

// Shipment is the canonical shipment record.
type Shipment struct {
	ID              string
	CountID         int64
	CompanyID       string
	OrderType       string
	TransactionType string
	IncotermCode    string
	Status          int
	IssuedInvoice   bool
	StatusHistory   []StatusEntry

	OriginPort     string
	OriginTerminal *string
	DestPort       string
	DestTerminal   *string

	Cargo         *Cargo
	TypeDetails   *TypeDetails
	Booking       *Booking
	Parties       *Parties
	BLDocument    *BLDocument
	ExceptionData *ExceptionData
	RouteNodes    []RouteNode
	Creator       *Creator

	CargoReadyDate *time.Time
	ETD            *time.Time
	ETA            *time.Time

	Trash          bool
	MigratedFromV1 bool
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// CompanyName is joined in on reads; never written back.
	CompanyName string
}

// Workflow is the task-and-history record paired 1:1 with a shipment.
type Workflow struct {
	ShipmentID    string
	CompanyID     string
	StatusHistory []WorkflowStatusEntry
	Tasks         []workflow.Task
	Completed     bool
	Trash         bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
