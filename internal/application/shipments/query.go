package shipments

import (
	"context"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/domain/incoterm"
	"github.com/accelefreight/af-server/internal/domain/ports"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
	"github.com/accelefreight/af-server/internal/domain/workflow"
)

// Stats returns the dashboard counters. Customer callers are always
// scoped to their own company regardless of the query parameter.
func (s *Service) Stats(ctx context.Context, claims identity.Claims, companyID string) (*Response, error) {
	effective := ""
	if claims.IsAFC() {
		effective = claims.CompanyID
	} else if companyID != "" {
		effective = companyID
	}

	stats, err := s.store.Shipments.Stats(ctx, effective)
	if err != nil {
		return nil, err
	}
	return OK(stats, "Shipment stats fetched"), nil
}

// ListItem is one row in the dashboard list.
type ListItem struct {
	ShipmentID      string `json:"shipment_id"`
	DataVersion     int    `json:"data_version"`
	MigratedFromV1  bool   `json:"migrated_from_v1"`
	Status          int    `json:"status"`
	StatusLabel     string `json:"status_label,omitempty"`
	OrderType       string `json:"order_type"`
	TransactionType string `json:"transaction_type"`
	Incoterm        string `json:"incoterm"`
	OriginPort      string `json:"origin_port"`
	DestinationPort string `json:"destination_port"`
	CompanyID       string `json:"company_id"`
	CompanyName     string `json:"company_name"`
	CargoReadyDate  string `json:"cargo_ready_date"`
	Updated         string `json:"updated"`
}

// ListResult is the list endpoint payload.
type ListResult struct {
	Shipments  []ListItem `json:"shipments"`
	NextCursor *string    `json:"next_cursor"`
	Total      int64      `json:"total"`
	TotalShown int        `json:"total_shown"`
}

func toListItem(sh *shipment.Shipment) ListItem {
	return ListItem{
		ShipmentID:      sh.ID,
		DataVersion:     2,
		MigratedFromV1:  sh.MigratedFromV1,
		Status:          sh.Status,
		OrderType:       sh.OrderType,
		TransactionType: sh.TransactionType,
		Incoterm:        sh.IncotermCode,
		OriginPort:      sh.OriginPort,
		DestinationPort: sh.DestPort,
		CompanyID:       sh.CompanyID,
		CompanyName:     sh.CompanyName,
		CargoReadyDate:  fmtDate(sh.CargoReadyDate),
		Updated:         fmtDateOf(sh.UpdatedAt),
	}
}

// List returns one dashboard page. AFC callers are scoped to their
// company; AFU callers may filter by any company.
func (s *Service) List(ctx context.Context, claims identity.Claims, tab, companyID string, limit, offset int) (*ListResult, error) {
	if !shipment.ValidTab(tab) {
		return nil, aferr.BadRequestf("Unrecognised tab value: %s", tab)
	}

	effective := ""
	if claims.IsAFC() {
		effective = claims.CompanyID
	} else if companyID != "" {
		effective = companyID
	}

	page, err := s.store.Shipments.List(ctx, shipment.ListQuery{
		Tab:       tab,
		CompanyID: effective,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toListItem(&page.Items[i]))
	}

	result := &ListResult{
		Shipments:  items,
		Total:      page.Total,
		TotalShown: len(items),
	}
	if page.NextCursor != nil {
		cursor := strconv.Itoa(*page.NextCursor)
		result.NextCursor = &cursor
	}
	return result, nil
}

// SearchItem is one row in search results.
type SearchItem struct {
	ShipmentID      string `json:"shipment_id"`
	DataVersion     int    `json:"data_version"`
	Status          int    `json:"status"`
	StatusLabel     string `json:"status_label"`
	OrderType       string `json:"order_type"`
	CompanyID       string `json:"company_id"`
	CompanyName     string `json:"company_name"`
	OriginPort      string `json:"origin_port"`
	DestinationPort string `json:"destination_port"`
	Updated         string `json:"updated"`
}

// SearchResult is the search endpoint payload.
type SearchResult struct {
	Results []SearchItem `json:"results"`
}

// Search looks shipments up by partial ID or, for search_fields=all,
// company name and port codes too.
func (s *Service) Search(ctx context.Context, claims identity.Claims, term, searchFields string, limit int) (*SearchResult, error) {
	if len(term) < 3 {
		return nil, aferr.Validationf("search term must be at least 3 characters")
	}

	effective := ""
	if claims.IsAFC() {
		effective = claims.CompanyID
	}

	page, err := s.store.Shipments.Search(ctx, shipment.SearchQuery{
		Term:         term,
		SearchFields: searchFields,
		CompanyID:    effective,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]SearchItem, 0, len(page.Items))
	for i := range page.Items {
		sh := &page.Items[i]
		items = append(items, SearchItem{
			ShipmentID:      sh.ID,
			DataVersion:     2,
			Status:          sh.Status,
			StatusLabel:     status.Label(sh.Status),
			OrderType:       sh.OrderType,
			CompanyID:       sh.CompanyID,
			CompanyName:     sh.CompanyName,
			OriginPort:      sh.OriginPort,
			DestinationPort: sh.DestPort,
			Updated:         fmtDateOf(sh.UpdatedAt),
		})
	}
	return &SearchResult{Results: items}, nil
}

// StatusHistory returns the workflow-channel status history, oldest
// first. Customer access is checked against the workflow's company.
func (s *Service) StatusHistory(ctx context.Context, claims identity.Claims, shipmentID string) ([]shipment.WorkflowStatusEntry, error) {
	wf, err := s.store.Workflows.FindByShipmentID(ctx, shipmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, aferr.NotFoundf("Shipment workflow %s not found", shipmentID)
		}
		return nil, err
	}

	if claims.IsAFC() && wf.CompanyID != claims.CompanyID {
		return nil, aferr.NotFoundf("Shipment workflow %s not found", shipmentID)
	}

	history := make([]shipment.WorkflowStatusEntry, len(wf.StatusHistory))
	copy(history, wf.StatusHistory)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp < history[j].Timestamp
	})
	return history, nil
}

// FileTagItem is one file tag catalog entry.
type FileTagItem struct {
	TagID string `json:"tag_id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// FileTags returns the file tag catalog
func (s *Service) FileTags(ctx context.Context) (*Response, error) {
	tags, err := s.store.FileTags.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]FileTagItem, 0, len(tags))
	for _, t := range tags {
		items = append(items, FileTagItem{TagID: t.ID, Name: t.Label, Color: t.Color})
	}
	return &Response{Status: "OK", Data: items}, nil
}

// Get fetches one shipment with its workflow tasks, lazily generating
// the tasks when the workflow is still empty and the incoterm pair is
// known. Legacy v1 IDs resolve to their migrated record.
func (s *Service) Get(ctx context.Context, claims identity.Claims, rawID string) (*Response, error) {
	sh, err := s.fetchShipment(ctx, s.store, claims, rawID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.lazyInitTasks(ctx, sh)
	if err != nil {
		return nil, err
	}

	msg := "Shipment fetched"
	if shipment.ResolveID(rawID) != rawID {
		msg = "Shipment fetched (migrated)"
	}
	return OK(detailPayload(sh, tasks), msg), nil
}

// lazyInitTasks returns the workflow tasks, generating and persisting
// them when the stored list is empty and incoterm plus transaction
// type are set.
func (s *Service) lazyInitTasks(ctx context.Context, sh *shipment.Shipment) ([]workflow.Task, error) {
	wf, err := s.store.Workflows.FindByShipmentID(ctx, sh.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	if len(wf.Tasks) > 0 {
		return wf.Tasks, nil
	}
	if sh.IncotermCode == "" || sh.TransactionType == "" {
		return nil, nil
	}

	now := s.clock.Now()
	tasks := incoterm.GenerateTasks(sh.IncotermCode, sh.TransactionType, incoterm.Dates{
		ETD:        sh.ETD,
		ETA:        sh.ETA,
		CargoReady: sh.CargoReadyDate,
	}, now, "system")

	if len(tasks) > 0 {
		wf.Tasks = tasks
		wf.UpdatedAt = now
		if err := s.store.Workflows.Save(ctx, wf); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// detailPayload renders the full shipment shape the platform expects,
// including the legacy compatibility aliases.
func detailPayload(sh *shipment.Shipment, tasks []workflow.Task) map[string]any {
	data := map[string]any{
		"id":                       sh.ID,
		"countid":                  sh.CountID,
		"company_id":               sh.CompanyID,
		"company_name":             sh.CompanyName,
		"order_type":               sh.OrderType,
		"transaction_type":         sh.TransactionType,
		"incoterm_code":            sh.IncotermCode,
		"status":                   sh.Status,
		"status_label":             status.Label(sh.Status),
		"issued_invoice":           sh.IssuedInvoice,
		"migrated_from_v1":         sh.MigratedFromV1,
		"trash":                    sh.Trash,
		"origin_port":              sh.OriginPort,
		"origin_terminal":          sh.OriginTerminal,
		"dest_port":                sh.DestPort,
		"dest_terminal":            sh.DestTerminal,
		"cargo_ready_date":         fmtDate(sh.CargoReadyDate),
		"etd":                      fmtTime(sh.ETD),
		"eta":                      fmtTime(sh.ETA),
		"cargo":                    sh.Cargo,
		"booking":                  sh.Booking,
		"parties":                  sh.Parties,
		"bl_document":              sh.BLDocument,
		"type_details":             sh.TypeDetails,
		"exception":                sh.ExceptionData,
		"route_nodes":              sh.RouteNodes,
		"status_history":           sh.StatusHistory,
		"creator":                  sh.Creator,
		"created_at":               sh.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":               sh.UpdatedAt.UTC().Format(time.RFC3339),
		"workflow_tasks":           tasks,
		"data_version":             2,
		"quotation_id":             sh.ID,
		"created":                  sh.CreatedAt.UTC().Format(time.RFC3339),
		"updated":                  sh.UpdatedAt.UTC().Format(time.RFC3339),
		"origin_port_un_code":      sh.OriginPort,
		"destination_port_un_code": sh.DestPort,
		"origin_terminal_id":       sh.OriginTerminal,
		"destination_terminal_id":  sh.DestTerminal,
	}
	return data
}

// Ports returns the cached port catalog for dropdowns.
func (s *Service) Ports(ctx context.Context) (*Response, error) {
	catalog, err := s.listPorts(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{Status: "OK", Data: catalog}, nil
}

// Companies returns the cached company list. Staff only; customers
// never see other companies.
func (s *Service) Companies(ctx context.Context, claims identity.Claims) (*Response, error) {
	if !claims.IsAFU() {
		return nil, aferr.Forbiddenf("Staff access required")
	}
	companies, err := s.listCompanies(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{Status: "OK", Data: companies}, nil
}

// enrichedPort carries catalog enrichment for route node rendering.
func portByCode(catalog []ports.Port, code string) *ports.Port {
	for i := range catalog {
		if catalog[i].UNCode == code {
			return &catalog[i]
		}
	}
	return nil
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtDateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func fmtTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
