package shipments

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/audit"
	"github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/domain/incoterm"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
)

// CreateManualRequest is the manual shipment entry payload.
type CreateManualRequest struct {
	OrderType             string               `json:"order_type"`
	TransactionType       string               `json:"transaction_type"`
	CompanyID             string               `json:"company_id"`
	OriginPortUNCode      string               `json:"origin_port_un_code"`
	OriginTerminalID      *string              `json:"origin_terminal_id"`
	DestinationPortUNCode string               `json:"destination_port_un_code"`
	DestinationTerminalID *string              `json:"destination_terminal_id"`
	IncotermCode          string               `json:"incoterm_code"`
	CargoDescription      string               `json:"cargo_description"`
	CargoHSCode           *string              `json:"cargo_hs_code"`
	CargoIsDG             bool                 `json:"cargo_is_dg"`
	Containers            []shipment.Container `json:"containers"`
	Packages              []shipment.Package   `json:"packages"`
	Shipper               *shipment.Party      `json:"shipper"`
	Consignee             *shipment.Party      `json:"consignee"`
	NotifyParty           *shipment.Party      `json:"notify_party"`
	CargoReadyDate        *string              `json:"cargo_ready_date"`
	ETD                   *string              `json:"etd"`
	ETA                   *string              `json:"eta"`
}

// CreateManual creates a shipment from manual entry. The record starts
// at Confirmed with tasks generated immediately.
func (s *Service) CreateManual(ctx context.Context, claims identity.Claims, req CreateManualRequest) (*Response, error) {
	if !shipment.ValidOrderType(req.OrderType) {
		return nil, aferr.BadRequestf("order_type must be SEA_FCL, SEA_LCL, or AIR")
	}
	if !shipment.ValidTransactionType(req.TransactionType) {
		return nil, aferr.BadRequestf("transaction_type must be IMPORT, EXPORT, or DOMESTIC")
	}
	if req.CompanyID == "" {
		return nil, aferr.BadRequestf("company_id is required")
	}
	if req.OriginPortUNCode == "" {
		return nil, aferr.BadRequestf("origin_port_un_code is required")
	}
	if req.DestinationPortUNCode == "" {
		return nil, aferr.BadRequestf("destination_port_un_code is required")
	}
	if req.IncotermCode == "" {
		return nil, aferr.BadRequestf("incoterm_code is required")
	}

	now := s.clock.Now()
	nowISO := now.UTC().Format(time.RFC3339)

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		exists, err := tx.Companies.Exists(ctx, req.CompanyID)
		if err != nil {
			return err
		}
		if !exists {
			return aferr.NotFoundf("Company %s not found", req.CompanyID)
		}

		countID, err := tx.Shipments.NextCountID(ctx)
		if err != nil {
			return err
		}
		shipmentID := shipment.FormatID(countID)

		desc := req.CargoDescription
		if desc == "" {
			desc = "General Cargo"
		}

		typeDetails := &shipment.TypeDetails{}
		if req.OrderType == shipment.OrderSeaFCL {
			typeDetails.Containers = req.Containers
			if typeDetails.Containers == nil {
				typeDetails.Containers = []shipment.Container{}
			}
		} else {
			typeDetails.Packages = req.Packages
			if typeDetails.Packages == nil {
				typeDetails.Packages = []shipment.Package{}
			}
		}

		parties := &shipment.Parties{
			Shipper:     req.Shipper,
			Consignee:   req.Consignee,
			NotifyParty: req.NotifyParty,
		}

		note := "Manually created"
		sh := &shipment.Shipment{
			ID:              shipmentID,
			CountID:         countID,
			CompanyID:       req.CompanyID,
			OrderType:       req.OrderType,
			TransactionType: req.TransactionType,
			IncotermCode:    req.IncotermCode,
			Status:          status.Confirmed,
			StatusHistory: []shipment.StatusEntry{{
				Status:    status.Confirmed,
				Label:     status.Label(status.Confirmed),
				Timestamp: nowISO,
				ChangedBy: claims.Email,
				Note:      &note,
			}},
			OriginPort:     req.OriginPortUNCode,
			OriginTerminal: req.OriginTerminalID,
			DestPort:       req.DestinationPortUNCode,
			DestTerminal:   req.DestinationTerminalID,
			Cargo: &shipment.Cargo{
				Description: desc,
				HSCode:      req.CargoHSCode,
				IsDG:        req.CargoIsDG,
			},
			TypeDetails:    typeDetails,
			Parties:        parties,
			Creator:        &shipment.Creator{UID: claims.UID, Email: claims.Email},
			CargoReadyDate: parseDate(req.CargoReadyDate),
			ETD:            parseDate(req.ETD),
			ETA:            parseDate(req.ETA),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Shipments.Add(ctx, sh); err != nil {
			return err
		}

		tasks := incoterm.GenerateTasks(req.IncotermCode, req.TransactionType, incoterm.Dates{
			ETD:        sh.ETD,
			ETA:        sh.ETA,
			CargoReady: sh.CargoReadyDate,
		}, now, claims.Email)

		wf := &shipment.Workflow{
			ShipmentID: shipmentID,
			CompanyID:  req.CompanyID,
			StatusHistory: []shipment.WorkflowStatusEntry{{
				Status:      status.Confirmed,
				StatusLabel: status.Label(status.Confirmed),
				Timestamp:   nowISO,
				ChangedBy:   claims.UID,
			}},
			Tasks:     tasks,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Workflows.Add(ctx, wf); err != nil {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionShipmentCreatedManual,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		s.logger.Info("shipment created manually",
			zap.String("shipment_id", shipmentID),
			zap.String("uid", claims.UID),
		)

		resp = OK(map[string]any{"shipment_id": shipmentID}, "Shipment created")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateFromBLRequest is the create-from-BL payload, typically the
// parse-bl response merged with operator corrections.
type CreateFromBLRequest struct {
	OrderType             string               `json:"order_type"`
	TransactionType       string               `json:"transaction_type"`
	IncotermCode          string               `json:"incoterm_code"`
	CompanyID             string               `json:"company_id"`
	OriginPortUNCode      string               `json:"origin_port_un_code"`
	OriginTerminalID      *string              `json:"origin_terminal_id"`
	DestinationPortUNCode string               `json:"destination_port_un_code"`
	DestinationTerminalID *string              `json:"destination_terminal_id"`
	CargoDescription      string               `json:"cargo_description"`
	ETD                   *string              `json:"etd"`
	InitialStatus         int                  `json:"initial_status"`
	Carrier               *string              `json:"carrier"`
	WaybillNumber         *string              `json:"waybill_number"`
	VesselName            *string              `json:"vessel_name"`
	VoyageNumber          *string              `json:"voyage_number"`
	ShipperName           *string              `json:"shipper_name"`
	ShipperAddress        *string              `json:"shipper_address"`
	ConsigneeName         *string              `json:"consignee_name"`
	ConsigneeAddress      *string              `json:"consignee_address"`
	NotifyPartyName       *string              `json:"notify_party_name"`
	Containers            []shipment.Container `json:"containers"`
}

func (r *CreateFromBLRequest) applyDefaults() {
	if r.OrderType == "" {
		r.OrderType = shipment.OrderSeaFCL
	}
	if r.TransactionType == "" {
		r.TransactionType = "IMPORT"
	}
	if r.IncotermCode == "" {
		r.IncotermCode = "CNF"
	}
	if r.InitialStatus == 0 {
		r.InitialStatus = status.BookingConfirmed
	}
}

// CreateFromBL creates a shipment pre-filled from parsed BL data.
func (s *Service) CreateFromBL(ctx context.Context, claims identity.Claims, req CreateFromBLRequest) (*Response, error) {
	req.applyDefaults()

	now := s.clock.Now()
	nowISO := now.UTC().Format(time.RFC3339)

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		countID, err := tx.Shipments.NextCountID(ctx)
		if err != nil {
			return err
		}
		shipmentID := shipment.FormatID(countID)

		booking := &shipment.Booking{
			Carrier:          req.Carrier,
			BookingReference: req.WaybillNumber,
			VesselName:       req.VesselName,
			VoyageNumber:     req.VoyageNumber,
		}

		parties := &shipment.Parties{}
		if deref(req.ShipperName) != "" {
			parties.Shipper = &shipment.Party{Name: req.ShipperName, Address: req.ShipperAddress}
		}
		if deref(req.ConsigneeName) != "" {
			parties.Consignee = &shipment.Party{
				Name:      req.ConsigneeName,
				Address:   req.ConsigneeAddress,
				CompanyID: strOrNil(req.CompanyID),
			}
		}
		if deref(req.NotifyPartyName) != "" {
			parties.NotifyParty = &shipment.Party{Name: req.NotifyPartyName}
		}

		var typeDetails *shipment.TypeDetails
		if len(req.Containers) > 0 {
			typeDetails = &shipment.TypeDetails{Containers: req.Containers}
		}

		note := "Created from BL upload"
		sh := &shipment.Shipment{
			ID:              shipmentID,
			CountID:         countID,
			CompanyID:       req.CompanyID,
			OrderType:       req.OrderType,
			TransactionType: req.TransactionType,
			IncotermCode:    req.IncotermCode,
			Status:          req.InitialStatus,
			StatusHistory: []shipment.StatusEntry{{
				Status:    req.InitialStatus,
				Label:     status.Label(req.InitialStatus),
				Timestamp: nowISO,
				ChangedBy: claims.Email,
				Note:      &note,
			}},
			OriginPort:     req.OriginPortUNCode,
			OriginTerminal: req.OriginTerminalID,
			DestPort:       req.DestinationPortUNCode,
			DestTerminal:   req.DestinationTerminalID,
			Cargo:          &shipment.Cargo{Description: req.CargoDescription},
			TypeDetails:    typeDetails,
			Booking:        booking,
			Parties:        parties,
			Creator:        &shipment.Creator{UID: claims.UID, Email: claims.Email},
			ETD:            parseDate(req.ETD),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Shipments.Add(ctx, sh); err != nil {
			return err
		}

		tasks := incoterm.GenerateTasks(req.IncotermCode, req.TransactionType, incoterm.Dates{
			ETD: sh.ETD,
		}, now, claims.Email)

		wf := &shipment.Workflow{
			ShipmentID: shipmentID,
			CompanyID:  req.CompanyID,
			StatusHistory: []shipment.WorkflowStatusEntry{{
				Status:      req.InitialStatus,
				StatusLabel: status.Label(req.InitialStatus),
				Timestamp:   nowISO,
				ChangedBy:   claims.UID,
			}},
			Tasks:     tasks,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Workflows.Add(ctx, wf); err != nil {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionShipmentCreatedFromBL,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		s.logger.Info("shipment created from BL",
			zap.String("shipment_id", shipmentID),
			zap.String("uid", claims.UID),
		)

		resp = OK(map[string]any{"shipment_id": shipmentID}, "Shipment created from BL")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// parseDate accepts a date or timestamp string and keeps the calendar
// day; nil or malformed input yields nil.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	raw := *s
	if len(raw) > 10 {
		raw = raw[:10]
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
