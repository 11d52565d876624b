package shipments

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/audit"
	"github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
)

// SetInvoiced flips the issued_invoice flag. Only completed shipments
// can be invoiced; anything else comes back as a rejection envelope.
func (s *Service) SetInvoiced(ctx context.Context, claims identity.Claims, shipmentID string, issued bool) (*Response, error) {
	now := s.clock.Now()

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}

		if sh.Status != status.Completed {
			resp = Rejected("Invoiced flag can only be set on completed shipments")
			return nil
		}

		sh.IssuedInvoice = issued
		sh.UpdatedAt = now
		if err := tx.Shipments.Save(ctx, sh); err != nil {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionInvoicedUpdated,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			Metadata:  map[string]any{"issued_invoice": issued},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		s.logger.Info("invoiced flag updated",
			zap.String("shipment_id", shipmentID),
			zap.Bool("issued_invoice", issued),
			zap.String("uid", claims.UID),
		)

		resp = OK(map[string]any{"issued_invoice": issued}, "Invoiced status updated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SetException raises or clears the exception flag. Raising records
// who and when; clearing resets the whole block. The flag never gates
// status transitions.
func (s *Service) SetException(ctx context.Context, claims identity.Claims, shipmentID string, flagged bool, notes *string) (*Response, error) {
	if claims.IsAFC() && !claims.IsAFCManager() {
		return nil, aferr.Forbiddenf("Only admins and managers can flag exceptions")
	}

	now := s.clock.Now()

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}
		if claims.IsAFC() && sh.CompanyID != claims.CompanyID {
			return aferr.NotFoundf("Shipment %s not found", shipmentID)
		}

		exception := &shipment.ExceptionData{Flagged: flagged}
		if flagged {
			exception.RaisedAt = strptr(now.UTC().Format(time.RFC3339))
			exception.RaisedBy = strptr(claims.UID)
			exception.Notes = notes
		}

		sh.ExceptionData = exception
		sh.UpdatedAt = now
		if err := tx.Shipments.Save(ctx, sh); err != nil {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionExceptionUpdated,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			Metadata:  map[string]any{"flagged": flagged},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		verb := "cleared"
		if flagged {
			verb = "raised"
		}
		s.logger.Info("exception "+verb,
			zap.String("shipment_id", shipmentID),
			zap.String("uid", claims.UID),
		)

		resp = OK(map[string]any{"exception": exception}, "Exception "+verb)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ReassignCompany moves a shipment to a different company.
func (s *Service) ReassignCompany(ctx context.Context, claims identity.Claims, shipmentID, companyID string) (*Response, error) {
	now := s.clock.Now()

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		c, err := tx.Companies.FindByID(ctx, companyID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Company %s not found", companyID)
			}
			return err
		}

		companyName := c.Name
		if companyName == "" {
			companyName = c.ShortName
		}
		if companyName == "" {
			companyName = companyID
		}

		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}

		previous := sh.CompanyID
		sh.CompanyID = companyID
		sh.UpdatedAt = now
		if err := tx.Shipments.Save(ctx, sh); err != nil {
			return err
		}

		if wf, err := tx.Workflows.FindByShipmentID(ctx, shipmentID); err == nil {
			wf.CompanyID = companyID
			wf.UpdatedAt = now
			if err := tx.Workflows.Save(ctx, wf); err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionCompanyReassigned,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			Metadata:  map[string]any{"from": previous, "to": companyID},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		s.logger.Info("company reassigned",
			zap.String("shipment_id", shipmentID),
			zap.String("company_id", companyID),
			zap.String("uid", claims.UID),
		)

		resp = OK(map[string]any{"company_id": companyID, "company_name": companyName}, "Company reassigned")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// PartiesPatch updates the curated parties. An empty string clears a
// slot, a value sets it, nil leaves it alone.
type PartiesPatch struct {
	ShipperName        *string `json:"shipper_name"`
	ShipperAddress     *string `json:"shipper_address"`
	ConsigneeName      *string `json:"consignee_name"`
	ConsigneeAddress   *string `json:"consignee_address"`
	NotifyPartyName    *string `json:"notify_party_name"`
	NotifyPartyAddress *string `json:"notify_party_address"`
}

// UpdateParties merges party edits into the shipment. A party left
// with neither name nor address is dropped. The raw BL document is
// never touched.
func (s *Service) UpdateParties(ctx context.Context, claims identity.Claims, shipmentID string, patch PartiesPatch) (*Response, error) {
	now := s.clock.Now()

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}

		if sh.Parties == nil {
			sh.Parties = &shipment.Parties{}
		}
		sh.Parties.Shipper = patchParty(sh.Parties.Shipper, patch.ShipperName, patch.ShipperAddress)
		sh.Parties.Consignee = patchParty(sh.Parties.Consignee, patch.ConsigneeName, patch.ConsigneeAddress)
		sh.Parties.NotifyParty = patchParty(sh.Parties.NotifyParty, patch.NotifyPartyName, patch.NotifyPartyAddress)

		sh.UpdatedAt = now
		if err := tx.Shipments.Save(ctx, sh); err != nil {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionPartiesUpdated,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		resp = &Response{Status: "OK", Data: map[string]any{"parties": sh.Parties}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// patchParty applies name and address edits to a party; a party that
// ends up with neither is dropped.
func patchParty(existing *shipment.Party, name, address *string) *shipment.Party {
	if name == nil && address == nil {
		return existing
	}
	p := existing
	if p == nil {
		p = &shipment.Party{}
	}
	if name != nil {
		p.Name = name
	}
	if address != nil {
		p.Address = address
	}
	if p.Empty() {
		return nil
	}
	return p
}

// Delete removes a shipment. Soft delete trashes the shipment and its
// workflow; hard delete removes the rows and is restricted to the
// development environment.
func (s *Service) Delete(ctx context.Context, claims identity.Claims, shipmentID string, hard bool) (map[string]any, error) {
	if hard && s.environment != "development" {
		return nil, aferr.Forbiddenf("Hard delete only permitted in development environment")
	}

	now := s.clock.Now()

	var result map[string]any
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}

		if hard {
			if err := tx.Audit.Append(ctx, &audit.Entry{
				Action:    audit.ActionShipmentHardDeleted,
				EntityID:  shipmentID,
				UID:       claims.UID,
				Email:     claims.Email,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			if err := tx.Files.DeleteByShipment(ctx, shipmentID); err != nil {
				return err
			}
			if err := tx.Workflows.Delete(ctx, shipmentID); err != nil {
				return err
			}
			if err := tx.Shipments.Delete(ctx, shipmentID); err != nil {
				return err
			}
			s.logger.Info("shipment hard-deleted",
				zap.String("shipment_id", shipmentID),
				zap.String("uid", claims.UID),
			)
			result = map[string]any{"deleted": true, "shipment_id": shipmentID, "mode": "hard"}
			return nil
		}

		if sh.Trash {
			return aferr.BadRequestf("Shipment already deleted")
		}

		sh.Trash = true
		sh.UpdatedAt = now
		if err := tx.Shipments.Save(ctx, sh); err != nil {
			return err
		}

		if wf, err := tx.Workflows.FindByShipmentID(ctx, shipmentID); err == nil {
			wf.Trash = true
			wf.UpdatedAt = now
			if err := tx.Workflows.Save(ctx, wf); err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionShipmentSoftDeleted,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		s.logger.Info("shipment soft-deleted",
			zap.String("shipment_id", shipmentID),
			zap.String("uid", claims.UID),
		)
		result = map[string]any{"deleted": true, "shipment_id": shipmentID, "mode": "soft"}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
