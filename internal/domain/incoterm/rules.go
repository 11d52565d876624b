// Package incoterm is the pure rules engine for incoterm-driven shipment
// workflows. No database calls, no HTTP calls, only logic.
package incoterm

import (
	"fmt"
	"strings"

	"github.com/accelefreight/af-server/internal/domain/workflow"
)

// Transaction types
const (
	TxnImport   = "IMPORT"
	TxnExport   = "EXPORT"
	TxnDomestic = "DOMESTIC"
)

var (
	allLegs = []string{
		workflow.TypeOriginHaulage, workflow.TypeFreightBooking,
		workflow.TypeExportClearance, workflow.TypePOL, workflow.TypePOD,
		workflow.TypeImportClearance, workflow.TypeDestinationHaulage,
	}
	// Seller delivers on board; buyer side handled by consignee.
	mainCarriageLegs = []string{
		workflow.TypeOriginHaulage, workflow.TypeFreightBooking,
		workflow.TypeExportClearance, workflow.TypePOL, workflow.TypePOD,
	}
	arrivalLegs = []string{
		workflow.TypePOL, workflow.TypePOD,
		workflow.TypeImportClearance, workflow.TypeDestinationHaulage,
	}
	domesticLegs = []string{
		workflow.TypeOriginHaulage, workflow.TypeFreightBooking,
		workflow.TypePOL, workflow.TypePOD, workflow.TypeDestinationHaulage,
	}
)

// rules maps incoterm -> transaction type -> ordered task types.
var rules = map[string]map[string][]string{
	"EXW": {
		TxnExport:   {},
		TxnImport:   allLegs,
		TxnDomestic: domesticLegs,
	},
	"FCA": {
		TxnExport: {workflow.TypeFreightBooking, workflow.TypeExportClearance,
			workflow.TypePOL, workflow.TypePOD},
		TxnImport: allLegs,
		TxnDomestic: {workflow.TypeFreightBooking, workflow.TypePOL,
			workflow.TypePOD, workflow.TypeDestinationHaulage},
	},
	"FOB": {
		TxnExport: mainCarriageLegs,
		TxnImport: {workflow.TypeFreightBooking, workflow.TypePOL, workflow.TypePOD,
			workflow.TypeImportClearance, workflow.TypeDestinationHaulage},
		TxnDomestic: domesticLegs,
	},
	"CFR": {TxnExport: mainCarriageLegs, TxnImport: arrivalLegs, TxnDomestic: domesticLegs},
	"CIF": {TxnExport: mainCarriageLegs, TxnImport: arrivalLegs, TxnDomestic: domesticLegs},
	"CNF": {TxnExport: mainCarriageLegs, TxnImport: arrivalLegs, TxnDomestic: domesticLegs},
	"CPT": {TxnExport: mainCarriageLegs, TxnImport: arrivalLegs, TxnDomestic: domesticLegs},
	"CIP": {TxnExport: mainCarriageLegs, TxnImport: arrivalLegs, TxnDomestic: domesticLegs},
	"DAP": {TxnExport: allLegs, TxnImport: arrivalLegs, TxnDomestic: domesticLegs},
	"DPU": {TxnExport: allLegs, TxnImport: arrivalLegs, TxnDomestic: domesticLegs},
	"DDP": {TxnExport: allLegs, TxnImport: arrivalLegs, TxnDomestic: domesticLegs},
	// DAT was renamed DPU in Incoterms 2020; legacy records still carry it.
	"DAT": {TxnExport: allLegs, TxnImport: arrivalLegs, TxnDomestic: domesticLegs},
}

// TaskTypes returns the ordered task types for an (incoterm, transaction
// type) pair, or nil when the pair is not in the rules matrix.
func TaskTypes(incoterm, transactionType string) []string {
	byTxn, ok := rules[normalize(incoterm)]
	if !ok {
		return nil
	}
	return byTxn[normalize(transactionType)]
}

// StatusPath resolves the lifecycle path for an (incoterm, transaction type)
// pair: "A" when the pair's task set contains a freight booking leg, "B"
// otherwise. Unknown pairs are a configuration error.
func StatusPath(incoterm, transactionType string) (string, error) {
	byTxn, ok := rules[normalize(incoterm)]
	if !ok {
		return "", fmt.Errorf("unknown incoterm: %s", incoterm)
	}
	taskTypes, ok := byTxn[normalize(transactionType)]
	if !ok {
		return "", fmt.Errorf("unknown transaction type %s for incoterm %s", transactionType, incoterm)
	}
	for _, tt := range taskTypes {
		if tt == workflow.TypeFreightBooking {
			return "A", nil
		}
	}
	return "B", nil
}

// Known reports whether the incoterm code appears in the rules matrix.
func Known(incoterm string) bool {
	_, ok := rules[normalize(incoterm)]
	return ok
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
