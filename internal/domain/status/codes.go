// Package status holds the shipment lifecycle codes and the transition
// decision logic.
package status

import "strconv"

// Lifecycle status codes. The numeric gaps group codes by phase; -1 is the
// single terminal failure state.
const (
	Draft            = 1001
	DraftReview      = 1002
	Confirmed        = 2001
	BookingPending   = 3001
	BookingConfirmed = 3002
	Departed         = 4001
	Arrived          = 4002
	Completed        = 5001
	Cancelled        = -1
)

// unionOrder is the full forward ordering across both paths, used for
// off-path (migrated) and no-incoterm fallback checks.
var unionOrder = []int{Draft, DraftReview, Confirmed, BookingPending, BookingConfirmed, Departed, Arrived, Completed}

var labels = map[int]string{
	Draft:            "Draft",
	DraftReview:      "Pending Review",
	Confirmed:        "Confirmed",
	BookingPending:   "Booking Pending",
	BookingConfirmed: "Booking Confirmed",
	Departed:         "Departed",
	Arrived:          "Arrived",
	Completed:        "Completed",
	Cancelled:        "Cancelled",
}

// Label returns the display label for a status code, or the numeric code
// as a string for unknown codes.
func Label(code int) string {
	if l, ok := labels[code]; ok {
		return l
	}
	return strconv.Itoa(code)
}

// Known reports whether code is a recognised lifecycle status.
func Known(code int) bool {
	_, ok := labels[code]
	return ok
}

// PathCodes returns the ordered status progression for a lifecycle path.
// Path A includes the booking pair; Path B skips it (booking handled by
// the counterparty under the incoterm).
func PathCodes(path string) []int {
	if path == "B" {
		return []int{Draft, DraftReview, Confirmed, Departed, Arrived, Completed}
	}
	return []int{Draft, DraftReview, Confirmed, BookingPending, BookingConfirmed, Departed, Arrived, Completed}
}
