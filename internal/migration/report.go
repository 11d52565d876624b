package migration

import (
	"fmt"
	"io"
	"sort"

	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
)

// RecordError is one legacy record that could not be assembled.
type RecordError struct {
	Key    string
	Reason string
}

// ActiveOrder flags a migrated record that lands in an active status and
// deserves operator review after cutover.
type ActiveOrder struct {
	Key    string
	Status int
}

// Report summarizes one migration run.
type Report struct {
	DryRun bool

	Total         int
	SkippedV2     int
	SkippedDrafts int
	WithOrder     int
	WithoutOrder  int

	TypeCounts   map[string]int
	StatusCounts map[int]int
	ActiveOrders []ActiveOrder
	Errors       []RecordError

	Written      int
	SequenceSeed int64
}

// NewReport creates an empty report.
func NewReport(dryRun bool) *Report {
	return &Report{
		DryRun:       dryRun,
		TypeCounts:   map[string]int{},
		StatusCounts: map[int]int{},
	}
}

// Count records one assembled shipment in the breakdown tallies.
func (r *Report) Count(sh *shipment.Shipment) {
	r.TypeCounts[sh.OrderType]++
	r.StatusCounts[sh.Status]++
	if sh.Status != status.Cancelled && sh.Status < status.Completed {
		r.ActiveOrders = append(r.ActiveOrders, ActiveOrder{Key: sh.ID, Status: sh.Status})
	}
}

// AddError collects one assembly failure without aborting the run.
func (r *Report) AddError(key, reason string) {
	r.Errors = append(r.Errors, RecordError{Key: key, Reason: reason})
}

// Write prints the structured report.
func (r *Report) Write(w io.Writer) {
	mode := "LIVE"
	if r.DryRun {
		mode = "DRY RUN"
	}
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, "=== Legacy Migration Report ===")
	fmt.Fprintf(w, "Mode: %s\n\n", mode)

	fmt.Fprintf(w, "Total legacy quotation records: %d\n", r.Total)
	fmt.Fprintf(w, "  Skipped (already migrated):   %d\n", r.SkippedV2)
	fmt.Fprintf(w, "  Skipped (legacy drafts):      %d\n", r.SkippedDrafts)
	fmt.Fprintf(w, "  With operational order:       %d\n", r.WithOrder)
	fmt.Fprintf(w, "  Without operational order:    %d\n\n", r.WithoutOrder)

	fmt.Fprintln(w, "Order type breakdown:")
	for _, ot := range []string{shipment.OrderSeaFCL, shipment.OrderSeaLCL, shipment.OrderAir} {
		fmt.Fprintf(w, "  %-8s %d\n", ot+":", r.TypeCounts[ot])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Status breakdown:")
	codes := make([]int, 0, len(r.StatusCounts))
	for code := range r.StatusCounts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d %s: %d\n", code, status.Label(code), r.StatusCounts[code])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Active orders to review:")
	if len(r.ActiveOrders) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, a := range r.ActiveOrders {
		fmt.Fprintf(w, "  %s -> %d (%s)\n", a.Key, a.Status, status.Label(a.Status))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Assembly errors:")
	if len(r.Errors) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s: %s\n", e.Key, e.Reason)
	}
	fmt.Fprintln(w)

	if !r.DryRun {
		fmt.Fprintf(w, "Records written: %d\n", r.Written)
		if r.SequenceSeed > 0 {
			fmt.Fprintf(w, "Sequence seeded at: %d\n", r.SequenceSeed)
		}
	}
	fmt.Fprintln(w, "==================================================")
}
