package migration

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
)

// v1StatusMap translates operational v1 status codes to canonical ones.
var v1StatusMap = map[int]int{
	1:     status.Confirmed,
	100:   status.BookingPending,
	110:   status.BookingConfirmed,
	4110:  status.Departed,
	10000: status.Completed,
}

// legacySources bundles the decoded sub-kind payloads for one AFCQ- key.
type legacySources struct {
	quotation doc
	freight   doc
	order     doc
	qFCL      doc
	qLCL      doc
	qAir      doc
}

// deriveOrderType maps v1 freight fields to an order type. V1 carried
// freight_type SEA|AIR and container_load FCL|LCL; anything else falls
// back to SEA_LCL.
func deriveOrderType(freight doc) string {
	freightType := strings.ToUpper(freight.str("freight_type"))
	containerLoad := strings.ToUpper(freight.str("container_load"))

	switch {
	case freightType == "AIR":
		return shipment.OrderAir
	case containerLoad == "FCL":
		return shipment.OrderSeaFCL
	case containerLoad == "LCL":
		return shipment.OrderSeaLCL
	}
	return shipment.OrderSeaLCL
}

// deriveStatus maps a v1 record to a canonical status code. With an
// operational order the order's status drives the mapping; unmapped codes
// in the active band land on Booking Confirmed. Without one the quotation
// flags decide, defaulting to Draft.
func deriveStatus(quotation, order doc) int {
	if order != nil {
		v1 := order.integer("status")
		if v1 == 0 {
			v1 = 1
		}
		if mapped, ok := v1StatusMap[v1]; ok {
			return mapped
		}
		if v1 >= 110 && v1 < 10000 {
			return status.BookingConfirmed
		}
		return status.Confirmed
	}

	if quotation.boolean("quotation_closed") || quotation.integer("status") == status.Completed {
		return status.Completed
	}
	if quotation.boolean("confirmed") {
		return status.Confirmed
	}
	return status.Draft
}

// buildParty flattens one nested v1 party entity. The v1 shape nests the
// address and contact entities; both collapse to comma-joined strings.
func buildParty(order doc, field string) *shipment.Party {
	party := order.child(field)
	if party == nil {
		return nil
	}

	name := party.str("company_contact_name")
	if name == "" {
		name = party.str("tag")
	}

	var address string
	if addr := party.child("address"); addr != nil {
		address = joinNonEmpty(
			addr.str("line_1"), addr.str("line_2"), addr.str("line_3"),
			addr.str("city"), addr.str("state"), addr.str("postcode"), addr.str("country"),
		)
	}

	var contact string
	if info := party.child("contact_info"); info != nil {
		contact = joinNonEmpty(
			info.str("first_name"), info.str("last_name"),
			info.str("email"), info.str("phone"),
		)
	}

	p := &shipment.Party{
		Name:          strPtr(name),
		Address:       strPtr(address),
		ContactPerson: strPtr(contact),
	}
	if p.Empty() {
		return nil
	}
	return p
}

// buildTypeDetails assembles the order-type specific cargo breakdown.
func buildTypeDetails(orderType string, src legacySources) *shipment.TypeDetails {
	switch orderType {
	case shipment.OrderSeaFCL:
		return &shipment.TypeDetails{Containers: buildContainers(src.qFCL)}
	case shipment.OrderAir:
		return &shipment.TypeDetails{Packages: buildPackages(src.qAir)}
	}
	return &shipment.TypeDetails{Packages: buildPackages(src.qLCL)}
}

// buildContainers combines v1 container_size + container_type into one
// label ("20" + "GP" -> "20GP"). Falls back to the top-level primary
// container fields when the list is empty.
func buildContainers(qFCL doc) []shipment.Container {
	containers := []shipment.Container{}
	for _, c := range qFCL.list("containers") {
		label := c.str("container_size") + c.str("container_type")
		qty := c.integer("container_quantity")
		if qty == 0 {
			qty = c.integer("quantity")
		}
		containers = append(containers, shipment.Container{
			ContainerType: strPtr(label),
			Quantity:      intPtr(qty),
		})
	}

	if len(containers) == 0 && qFCL.str("container_size") != "" {
		qty := qFCL.integer("container_total")
		if qty == 0 {
			qty = qFCL.integer("container_quantity")
		}
		containers = append(containers, shipment.Container{
			ContainerType: strPtr(qFCL.str("container_size") + qFCL.str("container_type")),
			Quantity:      intPtr(qty),
		})
	}
	return containers
}

// buildPackages converts the v1 cargo_units array into package lines.
func buildPackages(source doc) []shipment.Package {
	packages := []shipment.Package{}
	for _, u := range source.list("cargo_units") {
		weight := u.float("total_weight")
		if weight == 0 {
			weight = u.float("weight")
		}
		cbm := u.float("total_cubic_meters")
		if cbm == 0 {
			cbm = u.float("cbm")
		}
		packages = append(packages, shipment.Package{
			PackagingType: strPtr(u.str("type")),
			Quantity:      intPtr(u.integer("quantity")),
			GrossWeightKg: floatPtr(weight),
			VolumeCBM:     floatPtr(cbm),
		})
	}
	return packages
}

// buildBooking lifts booking details off the v1 order. bl_number wins
// over the nested booking_info reference; same for the carrier.
func buildBooking(order doc) *shipment.Booking {
	info := order.child("booking_info")

	reference := order.str("bl_number")
	if reference == "" {
		reference = info.str("booking_reference")
	}
	carrier := order.str("carrier")
	if carrier == "" {
		carrier = info.str("container_operator")
	}

	b := &shipment.Booking{
		Carrier:          strPtr(carrier),
		BookingReference: strPtr(reference),
		VesselName:       strPtr(order.str("vessel_name")),
		VoyageNumber:     strPtr(order.str("voyage_number")),
	}
	if b.Carrier == nil && b.BookingReference == nil && b.VesselName == nil && b.VoyageNumber == nil {
		return nil
	}
	return b
}

// buildCargo reads cargo off the v1 freight entity. V1 kept the
// description under commodity and flagged dangerous goods through a
// nested cargo_type entity with code DG.
func buildCargo(freight doc) *shipment.Cargo {
	isDG := false
	if ct := freight.child("cargo_type"); ct != nil {
		isDG = strings.ToUpper(ct.str("code")) == "DG"
	}
	return &shipment.Cargo{
		Description: freight.str("commodity"),
		HSCode:      strPtr(freight.str("hs_code")),
		IsDG:        isDG,
		DGClass:     strPtr(freight.str("dg_class")),
	}
}

// assemble builds one canonical shipment from the legacy sources. The
// numeric suffix of the AFCQ- key becomes the countid and carries over
// into the AF- identifier unchanged.
func assemble(key string, src legacySources, ts time.Time) (*shipment.Shipment, error) {
	suffix := strings.TrimPrefix(key, shipment.PrefixV1)
	countid, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("legacy key %q has no numeric suffix", key)
	}

	orderType := deriveOrderType(src.freight)
	st := deriveStatus(src.quotation, src.order)

	originPort := src.order.str("origin_port_un_code")
	if originPort == "" {
		originPort = src.quotation.str("origin_port_un_code")
	}
	destPort := src.order.str("destination_port_un_code")
	if destPort == "" {
		destPort = src.quotation.str("destination_port_un_code")
	}

	companyID := src.order.str("company_id")
	if companyID == "" {
		companyID = src.quotation.str("company_id")
	}

	var parties *shipment.Parties
	shipper := buildParty(src.order, "shipper")
	consignee := buildParty(src.order, "consignee")
	notify := buildParty(src.order, "notify_party")
	if shipper != nil || consignee != nil || notify != nil {
		parties = &shipment.Parties{Shipper: shipper, Consignee: consignee, NotifyParty: notify}
	}

	var creator *shipment.Creator
	if c := src.quotation.child("creator"); c != nil {
		creator = &shipment.Creator{UID: c.str("uid"), Email: c.str("email")}
	}

	createdAt := ts
	if t := parseLegacyTime(src.quotation.str("created")); t != nil {
		createdAt = *t
	}

	note := "Migrated from v1"
	return &shipment.Shipment{
		ID:              shipment.ResolveID(key),
		CountID:         countid,
		CompanyID:       companyID,
		OrderType:       orderType,
		TransactionType: strings.ToUpper(src.quotation.str("transaction_type")),
		IncotermCode:    strings.ToUpper(src.quotation.str("incoterm_code")),
		Status:          st,
		IssuedInvoice:   src.order.boolean("issued_invoice") || src.quotation.boolean("issued_invoice"),
		StatusHistory: []shipment.StatusEntry{{
			Status:    st,
			Label:     status.Label(st),
			Timestamp: ts.Format(time.RFC3339),
			ChangedBy: "migration",
			Note:      &note,
		}},
		OriginPort:     originPort,
		DestPort:       destPort,
		Cargo:          buildCargo(src.freight),
		TypeDetails:    buildTypeDetails(orderType, src),
		Booking:        buildBooking(src.order),
		Parties:        parties,
		Creator:        creator,
		CargoReadyDate: parseLegacyTime(src.quotation.str("cargo_ready_date")),
		ETD:            parseLegacyTime(src.order.str("etd")),
		ETA:            parseLegacyTime(src.order.str("eta")),
		Trash:          src.quotation.boolean("trash"),
		MigratedFromV1: true,
		CreatedAt:      createdAt,
		UpdatedAt:      ts,
	}, nil
}

var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseLegacyTime accepts the timestamp shapes seen in v1 exports.
func parseLegacyTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }
