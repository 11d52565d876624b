package shipments

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/audit"
	"github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/domain/shipment"
)

// RouteNodesResult is the route nodes payload. Derived marks nodes
// synthesized from the flat ports rather than a saved route.
type RouteNodesResult struct {
	ShipmentID string               `json:"shipment_id"`
	RouteNodes []shipment.RouteNode `json:"route_nodes"`
	Derived    bool                 `json:"derived"`
}

// RouteNodes returns the saved route, or a derived origin/destination
// pair when none was ever saved. Nodes are enriched from the port
// catalog for display.
func (s *Service) RouteNodes(ctx context.Context, claims identity.Claims, shipmentID string) (*RouteNodesResult, error) {
	sh, err := s.fetchShipment(ctx, s.store, claims, shipmentID)
	if err != nil {
		return nil, err
	}

	nodes := sh.RouteNodes
	derived := len(nodes) == 0
	if derived {
		nodes = shipment.DeriveRouteNodes(sh.OriginPort, sh.DestPort, fmtTimePtr(sh.ETD), fmtTimePtr(sh.ETA))
	}

	if err := s.enrichRouteNodes(ctx, nodes); err != nil {
		return nil, err
	}

	return &RouteNodesResult{
		ShipmentID: shipmentID,
		RouteNodes: nodes,
		Derived:    derived,
	}, nil
}

// SaveRouteNodes replaces the route. Exactly one ORIGIN and one
// DESTINATION are required; sequences are renumbered and the flat
// ETD/ETA mirror the schedule on those two nodes.
func (s *Service) SaveRouteNodes(ctx context.Context, claims identity.Claims, shipmentID string, nodes []shipment.RouteNode) (*RouteNodesResult, error) {
	if claims.IsAFC() && !claims.IsAFCManager() {
		return nil, aferr.Forbiddenf("Only admin/manager can update route nodes")
	}
	if err := shipment.ValidateRouteNodes(nodes); err != nil {
		return nil, aferr.BadRequestf("%s", err.Error())
	}

	now := s.clock.Now()

	var result *RouteNodesResult
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}

		shipment.AssignSequences(nodes)

		flatETD, flatETA := shipment.FlatSchedule(nodes)
		if flatETD != nil {
			sh.ETD = parseDate(flatETD)
		}
		if flatETA != nil {
			sh.ETA = parseDate(flatETA)
		}

		sh.RouteNodes = nodes
		sh.UpdatedAt = now
		if err := tx.Shipments.Save(ctx, sh); err != nil {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionRouteNodesUpdated,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		s.logger.Info("route nodes saved",
			zap.String("shipment_id", shipmentID),
			zap.Int("nodes", len(nodes)),
			zap.String("uid", claims.UID),
		)

		result = &RouteNodesResult{ShipmentID: shipmentID, RouteNodes: nodes}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.enrichRouteNodes(ctx, result.RouteNodes); err != nil {
		return nil, err
	}
	return result, nil
}

// RouteNodeTiming is the per-node timing patch. Nil leaves a field
// untouched.
type RouteNodeTiming struct {
	ScheduledETA *string `json:"scheduled_eta"`
	ActualETA    *string `json:"actual_eta"`
	ScheduledETD *string `json:"scheduled_etd"`
	ActualETD    *string `json:"actual_etd"`
}

// RouteNodeResult is the single-node patch payload.
type RouteNodeResult struct {
	ShipmentID string             `json:"shipment_id"`
	Node       shipment.RouteNode `json:"node"`
}

// UpdateRouteNodeTiming patches the schedule on one node, addressed by
// sequence. ORIGIN departure and DESTINATION arrival changes also move
// the flat ETD/ETA.
func (s *Service) UpdateRouteNodeTiming(ctx context.Context, claims identity.Claims, shipmentID string, sequence int, timing RouteNodeTiming) (*RouteNodeResult, error) {
	if claims.IsAFC() && !claims.IsAFCManager() {
		return nil, aferr.Forbiddenf("Only admin/manager can update route nodes")
	}

	now := s.clock.Now()

	var result *RouteNodeResult
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}
		if len(sh.RouteNodes) == 0 {
			return aferr.BadRequestf("No route nodes saved, use PUT to initialize first")
		}

		targetIdx := -1
		for i := range sh.RouteNodes {
			if sh.RouteNodes[i].Sequence == sequence {
				targetIdx = i
				break
			}
		}
		if targetIdx < 0 {
			return aferr.NotFoundf("Route node with sequence %d not found", sequence)
		}

		node := &sh.RouteNodes[targetIdx]
		if timing.ScheduledETA != nil {
			node.ScheduledETA = timing.ScheduledETA
		}
		if timing.ActualETA != nil {
			node.ActualETA = timing.ActualETA
		}
		if timing.ScheduledETD != nil {
			node.ScheduledETD = timing.ScheduledETD
		}
		if timing.ActualETD != nil {
			node.ActualETD = timing.ActualETD
		}

		if node.Role == shipment.RoleOrigin && timing.ScheduledETD != nil {
			sh.ETD = parseDate(timing.ScheduledETD)
		}
		if node.Role == shipment.RoleDestination && timing.ScheduledETA != nil {
			sh.ETA = parseDate(timing.ScheduledETA)
		}

		sh.UpdatedAt = now
		if err := tx.Shipments.Save(ctx, sh); err != nil {
			return err
		}

		result = &RouteNodeResult{ShipmentID: shipmentID, Node: sh.RouteNodes[targetIdx]}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// enrichRouteNodes fills in catalog name, country and port type on
// each node.
func (s *Service) enrichRouteNodes(ctx context.Context, nodes []shipment.RouteNode) error {
	if len(nodes) == 0 {
		return nil
	}
	catalog, err := s.listPorts(ctx)
	if err != nil {
		return err
	}
	for i := range nodes {
		port := portByCode(catalog, nodes[i].PortUNCode)
		if port == nil {
			continue
		}
		if port.Name != "" {
			nodes[i].PortName = port.Name
		}
		nodes[i].Country = port.CountryCode
		nodes[i].PortType = port.PortType
	}
	return nil
}
