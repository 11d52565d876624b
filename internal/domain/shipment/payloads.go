package shipment

// StatusEntry is one entry in shipments.status_history. changed_by holds
// the actor's email on this channel.
type StatusEntry struct {
	Status       int     `json:"status"`
	Label        string  `json:"label"`
	Timestamp    string  `json:"timestamp"`
	ChangedBy    string  `json:"changed_by"`
	Note         *string `json:"note"`
	Reverted     bool    `json:"reverted,omitempty"`
	RevertedFrom *int    `json:"reverted_from,omitempty"`
}

// WorkflowStatusEntry is one entry in shipment_workflows.status_history.
// changed_by holds the actor's uid on this channel.
type WorkflowStatusEntry struct {
	Status       int    `json:"status"`
	StatusLabel  string `json:"status_label"`
	Timestamp    string `json:"timestamp"`
	ChangedBy    string `json:"changed_by"`
	Reverted     bool   `json:"reverted,omitempty"`
	RevertedFrom *int   `json:"reverted_from,omitempty"`
}

// Cargo describes the goods being moved.
type Cargo struct {
	Description string  `json:"description"`
	HSCode      *string `json:"hs_code"`
	IsDG        bool    `json:"is_dg"`
	DGClass     *string `json:"dg_class"`
	DGUNNumber  *string `json:"dg_un_number"`
}

// Booking holds carrier booking details. booking_reference doubles as the
// waybill number once the BL is issued.
type Booking struct {
	Carrier          *string `json:"carrier"`
	CarrierAgent     *string `json:"carrier_agent,omitempty"`
	BookingReference *string `json:"booking_reference"`
	VesselName       *string `json:"vessel_name"`
	VoyageNumber     *string `json:"voyage_number"`
}

// Reference returns the booking reference or "" when unset.
func (b *Booking) Reference() string {
	if b == nil || b.BookingReference == nil {
		return ""
	}
	return *b.BookingReference
}

// Party is a named party on the shipment (shipper, consignee, notify party).
type Party struct {
	Name             *string `json:"name"`
	Address          *string `json:"address"`
	ContactPerson    *string `json:"contact_person,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Email            *string `json:"email,omitempty"`
	CompanyID        *string `json:"company_id,omitempty"`
	CompanyContactID *string `json:"company_contact_id,omitempty"`
}

// Empty reports whether the party carries neither a name nor an address.
func (p *Party) Empty() bool {
	return p == nil || (deref(p.Name) == "" && deref(p.Address) == "")
}

// Parties groups the shipment's named parties.
type Parties struct {
	Shipper     *Party `json:"shipper,omitempty"`
	Consignee   *Party `json:"consignee,omitempty"`
	NotifyParty *Party `json:"notify_party,omitempty"`
}

// BLParty is the raw party block as printed on the bill of lading. Kept
// verbatim as an audit record, separate from the curated Parties.
type BLParty struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// BLDocument holds the raw values extracted from the BL.
type BLDocument struct {
	Shipper   *BLParty `json:"shipper,omitempty"`
	Consignee *BLParty `json:"consignee,omitempty"`
}

// Container covers both the manual-entry shape (size/type/quantity) and the
// BL-extracted shape (number/seal/weight); unused fields stay nil.
type Container struct {
	ContainerNumber *string  `json:"container_number,omitempty"`
	ContainerSize   *string  `json:"container_size,omitempty"`
	ContainerType   *string  `json:"container_type,omitempty"`
	SealNumber      *string  `json:"seal_number,omitempty"`
	Packages        *string  `json:"packages,omitempty"`
	Quantity        *int     `json:"quantity,omitempty"`
	WeightKg        *float64 `json:"weight_kg,omitempty"`
}

// Package is one LCL/air cargo line on manual entry.
type Package struct {
	PackagingType *string  `json:"packaging_type"`
	Quantity      *int     `json:"quantity"`
	GrossWeightKg *float64 `json:"gross_weight_kg"`
	VolumeCBM     *float64 `json:"volume_cbm"`
}

// CargoItem is one cargo line extracted from a BL for loose cargo.
type CargoItem struct {
	Description *string `json:"description"`
	Quantity    *string `json:"quantity"`
	GrossWeight *string `json:"gross_weight"`
	Measurement *string `json:"measurement"`
}

// TypeDetails holds the order-type specific cargo breakdown.
type TypeDetails struct {
	Containers []Container `json:"containers,omitempty"`
	Packages   []Package   `json:"packages,omitempty"`
	CargoItems []CargoItem `json:"cargo_items,omitempty"`
}

// ExceptionData is the operational exception flag on a shipment. Raising
// an exception does not block status advancement.
type ExceptionData struct {
	Flagged  bool    `json:"flagged"`
	RaisedAt *string `json:"raised_at"`
	RaisedBy *string `json:"raised_by"`
	Notes    *string `json:"notes"`
}

// Creator records who created the shipment.
type Creator struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
