package shipment

import (
	"fmt"
	"strings"
)

// ID prefixes. AFCQ- identifies pre-migration records and resolves to the
// migrated AF- record on read; AF2- is a retired alias for AF-.
const (
	PrefixV2       = "AF-"
	PrefixV2Legacy = "AF2-"
	PrefixV1       = "AFCQ-"
)

// FormatID renders a countid as a canonical shipment ID (AF-000042).
func FormatID(countid int64) string {
	return fmt.Sprintf("AF-%06d", countid)
}

// ResolveID maps any accepted ID form to the canonical AF- record ID.
// Returns "" for unrecognised formats.
func ResolveID(id string) string {
	switch {
	case strings.HasPrefix(id, PrefixV2):
		return id
	case strings.HasPrefix(id, PrefixV2Legacy):
		return PrefixV2 + id[len(PrefixV2Legacy):]
	case strings.HasPrefix(id, PrefixV1):
		return PrefixV2 + id[len(PrefixV1):]
	}
	return ""
}
