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
	"github.com/accelefreight/af-server/internal/domain/incoterm"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
)

// StatusUpdate is the status change request.
type StatusUpdate struct {
	Status    int  `json:"status"`
	AllowJump bool `json:"allow_jump"`
	Reverted  bool `json:"reverted"`
}

// UpdateStatus advances a shipment along its incoterm-aware status
// path and appends to both history channels atomically. Rule
// violations are not errors: they return an ERROR envelope the client
// renders inline.
func (s *Service) UpdateStatus(ctx context.Context, claims identity.Claims, shipmentID string, req StatusUpdate) (*Response, error) {
	now := s.clock.Now()
	nowISO := now.UTC().Format(time.RFC3339)

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}

		path := "A"
		var pathList []int
		if sh.IncotermCode != "" && sh.TransactionType != "" {
			if p, err := incoterm.StatusPath(sh.IncotermCode, sh.TransactionType); err == nil {
				path = p
				pathList = status.PathCodes(p)
			}
		}

		decision := status.Decide(status.Input{
			Current:         sh.Status,
			Target:          req.Status,
			Incoterm:        sh.IncotermCode,
			TransactionType: sh.TransactionType,
			Path:            path,
			PathList:        pathList,
			AllowJump:       req.AllowJump,
			Reverted:        req.Reverted,
		})
		if !decision.Allowed {
			resp = Rejected(decision.Msg)
			return nil
		}

		previous := sh.Status

		entry := shipment.StatusEntry{
			Status:    req.Status,
			Label:     status.Label(req.Status),
			Timestamp: nowISO,
			ChangedBy: claims.Email,
		}
		if req.Reverted {
			entry.Reverted = true
			entry.RevertedFrom = &previous
		}

		sh.Status = req.Status
		sh.StatusHistory = append(sh.StatusHistory, entry)
		sh.UpdatedAt = now
		if err := tx.Shipments.Save(ctx, sh); err != nil {
			return err
		}

		wf, err := tx.Workflows.FindByShipmentID(ctx, shipmentID)
		if err == nil {
			wfEntry := shipment.WorkflowStatusEntry{
				Status:      req.Status,
				StatusLabel: status.Label(req.Status),
				Timestamp:   nowISO,
				ChangedBy:   claims.UID,
			}
			if req.Reverted {
				wfEntry.Reverted = true
				wfEntry.RevertedFrom = &previous
			}
			wf.StatusHistory = append(wf.StatusHistory, wfEntry)
			wf.UpdatedAt = now

			switch req.Status {
			case status.Completed:
				wf.Completed = true
			case status.Cancelled:
				wf.Completed = false
			}

			if err := tx.Workflows.Save(ctx, wf); err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:   audit.ActionStatusUpdated,
			EntityID: shipmentID,
			UID:      claims.UID,
			Email:    claims.Email,
			Metadata: map[string]any{
				"from": previous,
				"to":   req.Status,
				"path": decision.Path,
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		s.logger.Info("status updated",
			zap.String("shipment_id", shipmentID),
			zap.Int("from", previous),
			zap.Int("to", req.Status),
			zap.String("path", decision.Path),
			zap.String("uid", claims.UID),
		)

		resp = OK(map[string]any{
			"shipment_id": shipmentID,
			"new_status":  req.Status,
			"path":        decision.Path,
		}, "Status updated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
