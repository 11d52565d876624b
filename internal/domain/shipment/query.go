package shipment

// Dashboard tab names. Each maps to a status predicate in the store.
const (
	TabActive    = "active"
	TabCompleted = "completed"
	TabToInvoice = "to_invoice"
	TabDraft     = "draft"
	TabCancelled = "cancelled"
	TabAll       = "all"
)

// ValidTab reports whether t is a recognised dashboard tab.
func ValidTab(t string) bool {
	switch t {
	case TabActive, TabCompleted, TabToInvoice, TabDraft, TabCancelled, TabAll:
		return true
	}
	return false
}

// Stats carries the dashboard counters. Total is the sum of the four
// lifecycle buckets, not a row count.
type Stats struct {
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	ToInvoice int64 `json:"to_invoice"`
	Draft     int64 `json:"draft"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// ListQuery selects a page of shipments for the dashboard.
type ListQuery struct {
	Tab       string
	CompanyID string // empty for staff-wide queries
	Limit     int
	Offset    int
}

// SearchQuery is a free-text lookup over shipment IDs, company names
// and port codes.
type SearchQuery struct {
	Term         string
	SearchFields string // "id" or "all"
	CompanyID    string
	Limit        int
	Offset       int
}

// Page is one page of list or search results. NextCursor is nil on the
// last page, otherwise the offset of the next page.
type Page struct {
	Items      []Shipment `json:"items"`
	Total      int64      `json:"total"`
	NextCursor *int       `json:"next_cursor"`
}
