// Package bl holds the structured data extracted from a bill of lading
// and the derivations (order type, initial status) computed from it.
package bl

import (
	"context"
	"strings"
	"time"

	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
)

// ParsedBL is the extraction result. Field names match the JSON the
// extraction prompt demands; absent values stay nil.
type ParsedBL struct {
	WaybillNumber    *string              `json:"waybill_number"`
	BookingNumber    *string              `json:"booking_number"`
	CarrierAgent     *string              `json:"carrier_agent"`
	VesselName       *string              `json:"vessel_name"`
	VoyageNumber     *string              `json:"voyage_number"`
	PortOfLoading    *string              `json:"port_of_loading"`
	PortOfDischarge  *string              `json:"port_of_discharge"`
	OnBoardDate      *string              `json:"on_board_date"`
	FreightTerms     *string              `json:"freight_terms"`
	ShipperName      *string              `json:"shipper_name"`
	ShipperAddress   *string              `json:"shipper_address"`
	ConsigneeName    *string              `json:"consignee_name"`
	ConsigneeAddress *string              `json:"consignee_address"`
	NotifyPartyName  *string              `json:"notify_party_name"`
	CargoDescription *string              `json:"cargo_description"`
	TotalWeightKg    *float64             `json:"total_weight_kg"`
	TotalPackages    *string              `json:"total_packages"`
	DeliveryStatus   *string              `json:"delivery_status"`
	Containers       []shipment.Container `json:"containers"`
	CargoItems       []shipment.CargoItem `json:"cargo_items"`
}

// Extractor parses a BL document into structured data.
type Extractor interface {
	Extract(ctx context.Context, content []byte, contentType, filename string) (*ParsedBL, error)
}

// OrderType derives the order type: container lines mean FCL, an LCL
// delivery status means LCL, anything else defaults to FCL.
func (p *ParsedBL) OrderType() string {
	if len(p.Containers) > 0 {
		return shipment.OrderSeaFCL
	}
	if p.DeliveryStatus != nil && strings.Contains(strings.ToUpper(*p.DeliveryStatus), "LCL") {
		return shipment.OrderSeaLCL
	}
	return shipment.OrderSeaFCL
}

// InitialStatus derives the starting status from the on-board date: a
// past date means the vessel already departed (4001), anything else,
// including an unparseable date, stays at booking confirmed (3002).
func InitialStatus(onBoardDate *string, today time.Time) int {
	if onBoardDate == nil || *onBoardDate == "" {
		return status.BookingConfirmed
	}
	raw := *onBoardDate
	if len(raw) > 10 {
		raw = raw[:10]
	}
	obd, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return status.BookingConfirmed
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if obd.After(day) {
		return status.BookingConfirmed
	}
	return status.Departed
}
