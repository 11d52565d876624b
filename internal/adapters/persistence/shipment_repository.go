package persistence

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/domain/shipment"
)

// GormShipmentRepository implements shipment.Repository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GORM shipment repository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// shipmentRow carries the company name joined onto the shipment row.
type shipmentRow struct {
	ShipmentModel
	CompanyName string `gorm:"column:company_name"`
}

const shipmentSelect = "shipments.*, companies.name AS company_name"

func (r *GormShipmentRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("shipments").
		Select(shipmentSelect).
		Joins("LEFT JOIN companies ON companies.id = shipments.company_id")
}

// FindByID retrieves a shipment with its company name. Trashed rows
// are returned too; callers decide how soft-deleted records surface.
func (r *GormShipmentRepository) FindByID(ctx context.Context, id string) (*shipment.Shipment, error) {
	var row shipmentRow
	result := r.joined(ctx).Where("shipments.id = ?", id).Take(&row)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find shipment: %w", result.Error)
	}
	return r.rowToEntity(&row)
}

// Add persists a new shipment
func (r *GormShipmentRepository) Add(ctx context.Context, s *shipment.Shipment) error {
	model, err := r.entityToModel(s)
	if err != nil {
		return fmt.Errorf("failed to convert shipment to model: %w", err)
	}
	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return fmt.Errorf("failed to add shipment: %w", result.Error)
	}
	return nil
}

// Save upserts an existing shipment
func (r *GormShipmentRepository) Save(ctx context.Context, s *shipment.Shipment) error {
	model, err := r.entityToModel(s)
	if err != nil {
		return fmt.Errorf("failed to convert shipment to model: %w", err)
	}
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save shipment: %w", result.Error)
	}
	return nil
}

// Delete hard-deletes a shipment row
func (r *GormShipmentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&ShipmentModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete shipment: %w", result.Error)
	}
	return nil
}

// NextCountID reserves the next shipment sequence number. PostgreSQL
// uses the dedicated sequence; SQLite test databases fall back to
// MAX+1.
func (r *GormShipmentRepository) NextCountID(ctx context.Context) (int64, error) {
	var next int64
	if r.db.Dialector.Name() == "postgres" {
		result := r.db.WithContext(ctx).Raw("SELECT nextval('shipment_countid_seq')").Scan(&next)
		if result.Error != nil {
			return 0, fmt.Errorf("failed to reserve shipment sequence: %w", result.Error)
		}
		return next, nil
	}
	result := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(countid), 0) + 1 FROM shipments").Scan(&next)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reserve shipment sequence: %w", result.Error)
	}
	return next, nil
}

// SeedCountIDSequence moves the shipment sequence past the highest
// migrated countid so new shipments never collide with migrated ones.
// SQLite databases derive the next value from MAX and need no seeding.
func (r *GormShipmentRepository) SeedCountIDSequence(ctx context.Context, next int64) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	result := r.db.WithContext(ctx).Exec("SELECT setval('shipment_countid_seq', ?, false)", next)
	if result.Error != nil {
		return fmt.Errorf("failed to seed shipment sequence: %w", result.Error)
	}
	return nil
}

// Stats computes the dashboard counters in one query. Total is the sum
// of the lifecycle buckets, so a shipment never counts twice.
func (r *GormShipmentRepository) Stats(ctx context.Context, companyID string) (*shipment.Stats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN (3001, 3002, 4001, 4002)
				OR (status = 2001 AND migrated_from_v1 = ?)) AS active,
			COUNT(*) FILTER (WHERE status = 5001
				OR (status = 2001 AND migrated_from_v1 = ?)) AS completed,
			COUNT(*) FILTER (WHERE status = 5001 AND issued_invoice = ?) AS to_invoice,
			COUNT(*) FILTER (WHERE status IN (1001, 1002)) AS draft,
			COUNT(*) FILTER (WHERE status = -1) AS cancelled
		FROM shipments
		WHERE trash = ?`
	args := []any{false, true, false, false}
	if companyID != "" {
		query += " AND company_id = ?"
		args = append(args, companyID)
	}

	var stats shipment.Stats
	result := r.db.WithContext(ctx).Raw(query, args...).Scan(&stats)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to compute shipment stats: %w", result.Error)
	}
	stats.Total = stats.Active + stats.Completed + stats.Cancelled + stats.Draft
	return &stats, nil
}

// tabPredicate returns the SQL predicate for a dashboard tab. The
// caller validates the tab name first.
func tabPredicate(tab string) (string, []any) {
	switch tab {
	case shipment.TabActive:
		return "(status IN (3001, 3002, 4001, 4002) OR (status = 2001 AND migrated_from_v1 = ?))", []any{false}
	case shipment.TabCompleted:
		return "(status = 5001 OR (status = 2001 AND migrated_from_v1 = ?))", []any{true}
	case shipment.TabToInvoice:
		return "(status = 5001 AND issued_invoice = ?)", []any{false}
	case shipment.TabDraft:
		return "status IN (1001, 1002)", nil
	case shipment.TabCancelled:
		return "status = -1", nil
	default: // all
		return "", nil
	}
}

// List returns one page of a dashboard tab, newest shipments first.
func (r *GormShipmentRepository) List(ctx context.Context, q shipment.ListQuery) (*shipment.Page, error) {
	base := r.db.WithContext(ctx).Table("shipments").Where("shipments.trash = ?", false)
	if q.CompanyID != "" {
		base = base.Where("shipments.company_id = ?", q.CompanyID)
	}
	if pred, args := tabPredicate(q.Tab); pred != "" {
		base = base.Where(pred, args...)
	}

	var total int64
	if result := base.Session(&gorm.Session{}).Count(&total); result.Error != nil {
		return nil, fmt.Errorf("failed to count shipments: %w", result.Error)
	}

	var rows []shipmentRow
	result := base.
		Select(shipmentSelect).
		Joins("LEFT JOIN companies ON companies.id = shipments.company_id").
		Order("shipments.countid DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", result.Error)
	}

	return r.rowsToPage(rows, total, q.Offset, q.Limit)
}

// Search runs a case-insensitive substring search over shipment IDs
// and, for search_fields=all, company names and port codes.
func (r *GormShipmentRepository) Search(ctx context.Context, q shipment.SearchQuery) (*shipment.Page, error) {
	pattern := "%" + strings.ToLower(q.Term) + "%"

	base := r.db.WithContext(ctx).Table("shipments").
		Joins("LEFT JOIN companies ON companies.id = shipments.company_id").
		Where("shipments.trash = ?", false)
	if q.CompanyID != "" {
		base = base.Where("shipments.company_id = ?", q.CompanyID)
	}

	if q.SearchFields == "id" {
		base = base.Where("LOWER(shipments.id) LIKE ?", pattern)
	} else {
		base = base.Where(
			"LOWER(shipments.id) LIKE ? OR LOWER(companies.name) LIKE ? OR LOWER(shipments.origin_port) LIKE ? OR LOWER(shipments.dest_port) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if result := base.Session(&gorm.Session{}).Count(&total); result.Error != nil {
		return nil, fmt.Errorf("failed to count search results: %w", result.Error)
	}

	var rows []shipmentRow
	result := base.
		Select(shipmentSelect).
		Order("shipments.countid DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to search shipments: %w", result.Error)
	}

	return r.rowsToPage(rows, total, q.Offset, q.Limit)
}

func (r *GormShipmentRepository) rowsToPage(rows []shipmentRow, total int64, offset, limit int) (*shipment.Page, error) {
	items := make([]shipment.Shipment, 0, len(rows))
	for i := range rows {
		entity, err := r.rowToEntity(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert shipment %s: %w", rows[i].ID, err)
		}
		items = append(items, *entity)
	}

	page := &shipment.Page{Items: items, Total: total}
	if next := offset + limit; limit > 0 && int64(next) < total {
		page.NextCursor = &next
	}
	return page, nil
}

// rowToEntity converts a joined database row to the domain aggregate
func (r *GormShipmentRepository) rowToEntity(row *shipmentRow) (*shipment.Shipment, error) {
	model := &row.ShipmentModel

	history, err := unmarshalSlice[shipment.StatusEntry](model.StatusHistory)
	if err != nil {
		return nil, fmt.Errorf("status_history: %w", err)
	}
	cargo, err := unmarshalOptional[shipment.Cargo](model.Cargo)
	if err != nil {
		return nil, fmt.Errorf("cargo: %w", err)
	}
	booking, err := unmarshalOptional[shipment.Booking](model.Booking)
	if err != nil {
		return nil, fmt.Errorf("booking: %w", err)
	}
	parties, err := unmarshalOptional[shipment.Parties](model.Parties)
	if err != nil {
		return nil, fmt.Errorf("parties: %w", err)
	}
	blDoc, err := unmarshalOptional[shipment.BLDocument](model.BLDocument)
	if err != nil {
		return nil, fmt.Errorf("bl_document: %w", err)
	}
	typeDetails, err := unmarshalOptional[shipment.TypeDetails](model.TypeDetails)
	if err != nil {
		return nil, fmt.Errorf("type_details: %w", err)
	}
	exception, err := unmarshalOptional[shipment.ExceptionData](model.ExceptionData)
	if err != nil {
		return nil, fmt.Errorf("exception_data: %w", err)
	}
	creator, err := unmarshalOptional[shipment.Creator](model.Creator)
	if err != nil {
		return nil, fmt.Errorf("creator: %w", err)
	}

	var routeNodes []shipment.RouteNode
	if model.RouteNodes != nil {
		nodes, err := unmarshalSlice[shipment.RouteNode](*model.RouteNodes)
		if err != nil {
			return nil, fmt.Errorf("route_nodes: %w", err)
		}
		routeNodes = nodes
	}

	return &shipment.Shipment{
		ID:              model.ID,
		CountID:         model.CountID,
		CompanyID:       model.CompanyID,
		CompanyName:     row.CompanyName,
		OrderType:       model.OrderType,
		TransactionType: model.TransactionType,
		IncotermCode:    model.IncotermCode,
		Status:          model.Status,
		IssuedInvoice:   model.IssuedInvoice,
		MigratedFromV1:  model.MigratedFromV1,
		Trash:           model.Trash,
		StatusHistory:   history,
		OriginPort:      model.OriginPort,
		OriginTerminal:  model.OriginTerminal,
		DestPort:        model.DestPort,
		DestTerminal:    model.DestTerminal,
		CargoReadyDate:  model.CargoReadyDate,
		ETD:             model.ETD,
		ETA:             model.ETA,
		Cargo:           cargo,
		Booking:         booking,
		Parties:         parties,
		BLDocument:      blDoc,
		TypeDetails:     typeDetails,
		ExceptionData:   exception,
		RouteNodes:      routeNodes,
		Creator:         creator,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}, nil
}

// entityToModel converts the domain aggregate to the database model
func (r *GormShipmentRepository) entityToModel(s *shipment.Shipment) (*ShipmentModel, error) {
	history, err := marshalSlice(s.StatusHistory)
	if err != nil {
		return nil, fmt.Errorf("status_history: %w", err)
	}
	cargo, err := marshalOptional(s.Cargo)
	if err != nil {
		return nil, fmt.Errorf("cargo: %w", err)
	}
	booking, err := marshalOptional(s.Booking)
	if err != nil {
		return nil, fmt.Errorf("booking: %w", err)
	}
	parties, err := marshalOptional(s.Parties)
	if err != nil {
		return nil, fmt.Errorf("parties: %w", err)
	}
	blDoc, err := marshalOptional(s.BLDocument)
	if err != nil {
		return nil, fmt.Errorf("bl_document: %w", err)
	}
	typeDetails, err := marshalOptional(s.TypeDetails)
	if err != nil {
		return nil, fmt.Errorf("type_details: %w", err)
	}
	exception, err := marshalOptional(s.ExceptionData)
	if err != nil {
		return nil, fmt.Errorf("exception_data: %w", err)
	}
	creator, err := marshalOptional(s.Creator)
	if err != nil {
		return nil, fmt.Errorf("creator: %w", err)
	}

	var routeNodes *string
	if s.RouteNodes != nil {
		raw, err := marshalSlice(s.RouteNodes)
		if err != nil {
			return nil, fmt.Errorf("route_nodes: %w", err)
		}
		routeNodes = &raw
	}

	return &ShipmentModel{
		ID:              s.ID,
		CountID:         s.CountID,
		CompanyID:       s.CompanyID,
		OrderType:       s.OrderType,
		TransactionType: s.TransactionType,
		IncotermCode:    s.IncotermCode,
		Status:          s.Status,
		IssuedInvoice:   s.IssuedInvoice,
		MigratedFromV1:  s.MigratedFromV1,
		Trash:           s.Trash,
		OriginPort:      s.OriginPort,
		OriginTerminal:  s.OriginTerminal,
		DestPort:        s.DestPort,
		DestTerminal:    s.DestTerminal,
		CargoReadyDate:  s.CargoReadyDate,
		ETD:             s.ETD,
		ETA:             s.ETA,
		Cargo:           cargo,
		Booking:         booking,
		Parties:         parties,
		BLDocument:      blDoc,
		TypeDetails:     typeDetails,
		ExceptionData:   exception,
		RouteNodes:      routeNodes,
		StatusHistory:   history,
		Creator:         creator,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}, nil
}
