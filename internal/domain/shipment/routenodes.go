package shipment

import (
	"fmt"
	"sort"
)

// Route node roles
const (
	RoleOrigin      = "ORIGIN"
	RoleTranship    = "TRANSHIP"
	RoleDestination = "DESTINATION"
)

// RouteNode is one port call on the shipment's route. Country and PortType
// are enriched from the ports catalog on reads and never persisted.
type RouteNode struct {
	PortUNCode   string  `json:"port_un_code"`
	PortName     string  `json:"port_name"`
	Sequence     int     `json:"sequence"`
	Role         string  `json:"role"`
	ScheduledETA *string `json:"scheduled_eta"`
	ActualETA    *string `json:"actual_eta"`
	ScheduledETD *string `json:"scheduled_etd"`
	ActualETD    *string `json:"actual_etd"`
	Country      string  `json:"country,omitempty"`
	PortType     string  `json:"port_type,omitempty"`
}

// ValidateRouteNodes enforces exactly one ORIGIN and one DESTINATION node
// and recognised roles throughout.
func ValidateRouteNodes(nodes []RouteNode) error {
	origins, destinations := 0, 0
	for _, n := range nodes {
		switch n.Role {
		case RoleOrigin:
			origins++
		case RoleDestination:
			destinations++
		case RoleTranship:
		default:
			return fmt.Errorf("invalid role: %s", n.Role)
		}
	}
	if origins != 1 {
		return fmt.Errorf("exactly one ORIGIN node required")
	}
	if destinations != 1 {
		return fmt.Errorf("exactly one DESTINATION node required")
	}
	return nil
}

// AssignSequences renumbers nodes contiguously: ORIGIN=1, TRANSHIP legs in
// their given order, DESTINATION last.
func AssignSequences(nodes []RouteNode) {
	roleOrder := func(role string) int {
		switch role {
		case RoleOrigin:
			return 0
		case RoleDestination:
			return 2
		}
		return 1
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if roleOrder(nodes[i].Role) != roleOrder(nodes[j].Role) {
			return roleOrder(nodes[i].Role) < roleOrder(nodes[j].Role)
		}
		return nodes[i].Sequence < nodes[j].Sequence
	})
	for i := range nodes {
		nodes[i].Sequence = i + 1
	}
}

// DeriveRouteNodes builds display-only nodes from the flat origin and
// destination ports, for shipments that never saved an explicit route.
func DeriveRouteNodes(originCode, destCode string, etd, eta *string) []RouteNode {
	var nodes []RouteNode
	if originCode != "" {
		nodes = append(nodes, RouteNode{
			PortUNCode:   originCode,
			PortName:     originCode,
			Sequence:     1,
			Role:         RoleOrigin,
			ScheduledETD: etd,
		})
	}
	if destCode != "" {
		seq := 1
		if originCode != "" {
			seq = 2
		}
		nodes = append(nodes, RouteNode{
			PortUNCode:   destCode,
			PortName:     destCode,
			Sequence:     seq,
			Role:         RoleDestination,
			ScheduledETA: eta,
		})
	}
	return nodes
}

// FlatSchedule extracts the flat ETD/ETA mirror values from the ORIGIN and
// DESTINATION nodes. Nil means the node carries no schedule.
func FlatSchedule(nodes []RouteNode) (etd, eta *string) {
	for i := range nodes {
		switch nodes[i].Role {
		case RoleOrigin:
			if nodes[i].ScheduledETD != nil {
				etd = nodes[i].ScheduledETD
			}
		case RoleDestination:
			if nodes[i].ScheduledETA != nil {
				eta = nodes[i].ScheduledETA
			}
		}
	}
	return etd, eta
}
