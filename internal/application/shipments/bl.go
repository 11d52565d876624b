package shipments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/audit"
	"github.com/accelefreight/af-server/internal/domain/bl"
	"github.com/accelefreight/af-server/internal/domain/company"
	"github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/domain/ports"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/workflow"
)

// ParseBLResult is the parse-bl payload: the raw extraction plus the
// derived fields the create form pre-fills from.
type ParseBLResult struct {
	Parsed                 *bl.ParsedBL    `json:"parsed"`
	OrderType              string          `json:"order_type"`
	OriginUNCode           *string         `json:"origin_un_code"`
	OriginParsedLabel      *string         `json:"origin_parsed_label"`
	DestinationUNCode      *string         `json:"destination_un_code"`
	DestinationParsedLabel *string         `json:"destination_parsed_label"`
	InitialStatus          int             `json:"initial_status"`
	CompanyMatches         []company.Match `json:"company_matches"`
}

// ParseBL runs the AI extraction over an uploaded BL document and
// derives order type, seaport codes, initial status and candidate
// companies for the consignee.
func (s *Service) ParseBL(ctx context.Context, claims identity.Claims, content []byte, contentType, filename string) (*ParseBLResult, error) {
	if len(content) == 0 {
		return nil, aferr.BadRequestf("Empty file")
	}

	parsed, err := s.extractor.Extract(ctx, content, contentType, filename)
	if err != nil {
		return nil, err
	}

	catalog, err := s.listPorts(ctx)
	if err != nil {
		return nil, err
	}

	originLabel := strings.TrimSpace(deref(parsed.PortOfLoading))
	destinationLabel := strings.TrimSpace(deref(parsed.PortOfDischarge))
	originUN := ports.MatchUNCode(originLabel, catalog)
	destinationUN := ports.MatchUNCode(destinationLabel, catalog)

	companies, err := s.listCompanies(ctx)
	if err != nil {
		return nil, err
	}
	matches := company.MatchName(deref(parsed.ConsigneeName), companies)

	s.logger.Info("BL parsed",
		zap.String("filename", filename),
		zap.String("origin", originUN),
		zap.String("destination", destinationUN),
		zap.String("uid", claims.UID),
	)

	return &ParseBLResult{
		Parsed:                 parsed,
		OrderType:              parsed.OrderType(),
		OriginUNCode:           strOrNil(originUN),
		OriginParsedLabel:      strOrNil(originLabel),
		DestinationUNCode:      strOrNil(destinationUN),
		DestinationParsedLabel: strOrNil(destinationLabel),
		InitialStatus:          bl.InitialStatus(parsed.OnBoardDate, s.clock.Now()),
		CompanyMatches:         matches,
	}, nil
}

// BLUpdate carries the multipart form fields of the BL update. Nil
// means the field was absent; booking fields merge, curated parties
// only fill empty slots unless ForceUpdate is "true", and the raw BL
// party blocks always overwrite.
type BLUpdate struct {
	WaybillNumber      *string
	Carrier            *string
	CarrierAgent       *string
	VesselName         *string
	VoyageNumber       *string
	ETD                *string
	ShipperName        *string
	ShipperAddress     *string
	ConsigneeName      *string
	ConsigneeAddress   *string
	NotifyPartyName    *string
	BLShipperName      *string
	BLShipperAddress   *string
	BLConsigneeName    *string
	BLConsigneeAddress *string
	ForceUpdate        string
	Containers         *string
	CargoItems         *string

	FileContent     []byte
	FileContentType string
	FileName        string
}

// UpdateFromBL applies parsed BL data onto an existing shipment and
// optionally stores the BL document as a tagged shipment file.
func (s *Service) UpdateFromBL(ctx context.Context, claims identity.Claims, shipmentID string, upd BLUpdate) (*Response, error) {
	now := s.clock.Now()
	force := upd.ForceUpdate == "true"

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}
		if sh.Trash {
			return aferr.Gonef("Shipment %s has been deleted", shipmentID)
		}

		if sh.Booking == nil {
			sh.Booking = &shipment.Booking{}
		}
		if upd.WaybillNumber != nil {
			sh.Booking.BookingReference = upd.WaybillNumber
		}
		if upd.CarrierAgent != nil {
			sh.Booking.CarrierAgent = upd.CarrierAgent
		} else if upd.Carrier != nil {
			sh.Booking.CarrierAgent = upd.Carrier
		}
		if upd.VesselName != nil {
			sh.Booking.VesselName = upd.VesselName
		}
		if upd.VoyageNumber != nil {
			sh.Booking.VoyageNumber = upd.VoyageNumber
		}

		if upd.ETD != nil {
			sh.ETD = parseDate(upd.ETD)
		}

		if sh.Parties == nil {
			sh.Parties = &shipment.Parties{}
		}
		sh.Parties.Shipper = mergeParty(sh.Parties.Shipper, upd.ShipperName, upd.ShipperAddress, force)
		sh.Parties.Consignee = mergeParty(sh.Parties.Consignee, upd.ConsigneeName, upd.ConsigneeAddress, force)
		if upd.NotifyPartyName != nil {
			np := sh.Parties.NotifyParty
			if np == nil {
				np = &shipment.Party{}
			}
			if force || deref(np.Name) == "" {
				np.Name = upd.NotifyPartyName
			}
			sh.Parties.NotifyParty = np
		}

		if upd.BLShipperName != nil || upd.BLShipperAddress != nil {
			if sh.BLDocument == nil {
				sh.BLDocument = &shipment.BLDocument{}
			}
			sh.BLDocument.Shipper = &shipment.BLParty{Name: upd.BLShipperName, Address: upd.BLShipperAddress}
		}
		if upd.BLConsigneeName != nil || upd.BLConsigneeAddress != nil {
			if sh.BLDocument == nil {
				sh.BLDocument = &shipment.BLDocument{}
			}
			sh.BLDocument.Consignee = &shipment.BLParty{Name: upd.BLConsigneeName, Address: upd.BLConsigneeAddress}
		}

		if upd.Containers != nil {
			var containers []shipment.Container
			if json.Unmarshal([]byte(*upd.Containers), &containers) == nil && len(containers) > 0 {
				if sh.TypeDetails == nil {
					sh.TypeDetails = &shipment.TypeDetails{}
				}
				sh.TypeDetails.Containers = containers
			}
		}
		if upd.CargoItems != nil {
			var items []shipment.CargoItem
			if json.Unmarshal([]byte(*upd.CargoItems), &items) == nil && len(items) > 0 {
				if sh.TypeDetails == nil {
					sh.TypeDetails = &shipment.TypeDetails{}
				}
				sh.TypeDetails.CargoItems = items
			}
		}

		sh.UpdatedAt = now
		if err := tx.Shipments.Save(ctx, sh); err != nil {
			return err
		}

		if deref(upd.WaybillNumber) != "" {
			if err := s.unblockExportClearance(ctx, tx, shipmentID, claims.UID, now); err != nil {
				return err
			}
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionBLUpdated,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		if len(upd.FileContent) > 0 {
			name := upd.FileName
			if name == "" {
				name = fmt.Sprintf("BL_%s.pdf", shipmentID)
			}
			contentType := upd.FileContentType
			if contentType == "" {
				contentType = "application/pdf"
			}
			location := filePath(sh.CompanyID, shipmentID, name)
			if err := s.blobs.Put(ctx, location, upd.FileContent, contentType); err != nil {
				return err
			}
			if err := tx.Files.Add(ctx, &shipment.File{
				ShipmentID:    shipmentID,
				CompanyID:     sh.CompanyID,
				FileName:      name,
				FileLocation:  location,
				FileSizeKB:    fileSizeKB(len(upd.FileContent)),
				FileTags:      []string{"bl"},
				Visibility:    true,
				UploadedByUID:   claims.UID,
				UploadedByEmail: claims.Email,
				CreatedAt:       now,
				UpdatedAt:       now,
			}); err != nil {
				return err
			}
		}

		s.logger.Info("BL update applied",
			zap.String("shipment_id", shipmentID),
			zap.String("uid", claims.UID),
		)

		var etdOut any
		if upd.ETD != nil {
			etdOut = *upd.ETD
		}
		resp = OK(map[string]any{
			"shipment_id": shipmentID,
			"booking":     sh.Booking,
			"parties":     sh.Parties,
			"bl_document": sh.BLDocument,
			"etd":         etdOut,
		}, "Shipment updated from BL")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// mergeParty fills the name and address slots of a curated party from
// BL values, only overwriting populated slots when force is set.
func mergeParty(existing *shipment.Party, name, address *string, force bool) *shipment.Party {
	if name == nil && address == nil {
		return existing
	}
	p := existing
	if p == nil {
		p = &shipment.Party{}
	}
	if name != nil && (force || deref(p.Name) == "") {
		p.Name = name
	}
	if address != nil && (force || deref(p.Address) == "") {
		p.Address = address
	}
	return p
}

// unblockExportClearance moves EXPORT_CLEARANCE from BLOCKED to PENDING
// once the freight booking leg is completed and a waybill exists.
func (s *Service) unblockExportClearance(ctx context.Context, tx *persistence.Store, shipmentID, uid string, now time.Time) error {
	wf, err := tx.Workflows.FindByShipmentID(ctx, shipmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	if !workflow.FreightBookingCompleted(wf.Tasks) {
		return nil
	}
	if !workflow.UnblockExportClearance(wf.Tasks, now.UTC().Format(time.RFC3339), uid) {
		return nil
	}

	wf.UpdatedAt = now
	if err := tx.Workflows.Save(ctx, wf); err != nil {
		return err
	}
	s.logger.Info("export clearance unblocked", zap.String("shipment_id", shipmentID))
	return nil
}
