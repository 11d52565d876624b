package status

import "fmt"

// Input describes a requested status change.
type Input struct {
	Current int
	Target  int

	// Incoterm and TransactionType are only used in rejection messages.
	Incoterm        string
	TransactionType string

	// Path is "A" or "B". PathList is the ordered progression for that
	// path; nil when the shipment has no incoterm (fallback ordering
	// applies).
	Path     string
	PathList []int

	AllowJump bool
	Reverted  bool
}

// Decision is the outcome of evaluating a status change.
type Decision struct {
	Allowed bool
	Path    string
	Msg     string
}

func reject(path, msg string) Decision {
	return Decision{Allowed: false, Path: path, Msg: msg}
}

// Decide evaluates a requested transition against the decision table:
// terminal protection, the Path B booking guard, cancellation, strict
// next-step advancement on-path, and forward-only fallback ordering for
// off-path and no-incoterm shipments. Reversion bypasses ordering checks
// but never the booking guard.
func Decide(in Input) Decision {
	if !in.Reverted {
		if in.Current == Completed || in.Current == Cancelled {
			return reject(in.Path, "Cannot change status of a completed or cancelled shipment")
		}
	}

	if in.Path == "B" && (in.Target == BookingPending || in.Target == BookingConfirmed) {
		return reject(in.Path, fmt.Sprintf("Booking statuses not applicable for %s %s (Path B)",
			in.Incoterm, in.TransactionType))
	}

	if in.AllowJump || in.Reverted {
		return Decision{Allowed: true, Path: in.Path}
	}

	if in.Target == Cancelled {
		// Cancellation always allowed from non-terminal states
		return Decision{Allowed: true, Path: in.Path}
	}

	currentIdx := indexOf(in.PathList, in.Current)
	switch {
	case len(in.PathList) > 0 && currentIdx >= 0:
		// On-path: only the next step is allowed
		if currentIdx+1 >= len(in.PathList) {
			return reject(in.Path, "Already at final status on this path")
		}
		expected := in.PathList[currentIdx+1]
		if in.Target != expected {
			return reject(in.Path, fmt.Sprintf("Invalid transition: next step is %s (%d), not %d",
				Label(expected), expected, in.Target))
		}

	case len(in.PathList) > 0:
		// Off-path: a migrated shipment carries a status not on its
		// incoterm path (e.g. Booking Pending on a Path B incoterm).
		// Allow any forward move in the union ordering, block backwards.
		currentOrd := indexOf(unionOrder, in.Current)
		newOrd := indexOf(unionOrder, in.Target)
		if currentOrd >= 0 && newOrd >= 0 && newOrd <= currentOrd {
			return reject(in.Path, "Cannot go backwards without revert flag")
		}

	default:
		// No incoterm: simple forward check over the union ordering
		if indexOf(unionOrder, in.Current) >= 0 && indexOf(unionOrder, in.Target) >= 0 {
			if indexOf(unionOrder, in.Target) <= indexOf(unionOrder, in.Current) {
				return reject(in.Path, "Cannot go backwards without revert flag")
			}
		}
	}

	return Decision{Allowed: true, Path: in.Path}
}

func indexOf(codes []int, code int) int {
	for i, c := range codes {
		if c == code {
			return i
		}
	}
	return -1
}
