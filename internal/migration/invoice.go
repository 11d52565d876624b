package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/domain/status"
)

// v1StatusCompleted is the native completion code in v1 exports. Some v1
// records already carry the canonical code, so both are accepted.
const v1StatusCompleted = 10000

// InvoiceReport summarizes an invoice backfill run.
type InvoiceReport struct {
	DryRun bool

	Scanned                 int
	InvoicedOnOrder         int
	InvoicedOnQuotationOnly int
	NotInvoiced             int
	MissingQuotation        int

	ToWrite int
	Written int
}

// Write prints the backfill summary.
func (r *InvoiceReport) Write(w io.Writer) {
	mode := "LIVE"
	if r.DryRun {
		mode = "DRY RUN"
	}
	fmt.Fprintln(w, "=== Invoice Backfill Report ===")
	fmt.Fprintf(w, "Mode: %s\n", mode)
	fmt.Fprintf(w, "Completed records scanned:   %d\n", r.Scanned)
	fmt.Fprintf(w, "Invoiced (on order):         %d\n", r.InvoicedOnOrder)
	fmt.Fprintf(w, "Invoiced (quotation only):   %d\n", r.InvoicedOnQuotationOnly)
	fmt.Fprintf(w, "Not invoiced:                %d\n", r.NotInvoiced)
	fmt.Fprintf(w, "Skipped (no quotation):      %d\n", r.MissingQuotation)
	if r.DryRun {
		fmt.Fprintf(w, "Records that would change:   %d\n", r.ToWrite)
	} else {
		fmt.Fprintf(w, "Records written:             %d\n", r.Written)
	}
}

// pendingWrite is one legacy record with its normalized payload.
type pendingWrite struct {
	kind string
	key  string
	data json.RawMessage
}

// BackfillInvoices normalizes the v1 issued_invoice field. The flag was
// stored inconsistently across the order and quotation kinds (bool, int,
// or absent); this OR-merges the two and writes the resolved bool back
// to both so downstream reads never branch on shape again. Runs before
// the main migration, which folds the merged flag into the canonical
// record.
func (m *Migrator) BackfillInvoices(ctx context.Context, opts Options) (*InvoiceReport, error) {
	report := &InvoiceReport{DryRun: opts.DryRun}

	orders, err := m.store.Legacy.ListByKind(ctx, kindShipmentOrder)
	if err != nil {
		return report, err
	}
	quotations, err := m.indexKind(ctx, kindQuotation)
	if err != nil {
		return report, err
	}

	var writes []pendingWrite
	for _, rec := range orders {
		order, err := decodeDoc(rec.Data)
		if err != nil {
			m.logger.Warn("skipping undecodable legacy order",
				zap.String("key", rec.Key), zap.Error(err))
			continue
		}
		if order.integer("data_version") == 2 {
			continue
		}
		st := order.integer("status")
		if st != v1StatusCompleted && st != status.Completed {
			continue
		}
		report.Scanned++

		quotation := quotations[rec.Key]
		issuedOrder := order.boolean("issued_invoice")
		issuedQuotation := quotation.boolean("issued_invoice")
		final := issuedOrder || issuedQuotation

		switch {
		case issuedOrder:
			report.InvoicedOnOrder++
		case issuedQuotation:
			report.InvoicedOnQuotationOnly++
		case quotation == nil:
			report.MissingQuotation++
		default:
			report.NotInvoiced++
		}

		changed := false
		if !order.has("issued_invoice") || issuedOrder != final {
			order["issued_invoice"] = final
			data, err := json.Marshal(order)
			if err != nil {
				return report, fmt.Errorf("marshal order %s: %w", rec.Key, err)
			}
			writes = append(writes, pendingWrite{kind: kindShipmentOrder, key: rec.Key, data: data})
			changed = true
		}
		if quotation != nil && (!quotation.has("issued_invoice") || issuedQuotation != final) {
			quotation["issued_invoice"] = final
			data, err := json.Marshal(quotation)
			if err != nil {
				return report, fmt.Errorf("marshal quotation %s: %w", rec.Key, err)
			}
			writes = append(writes, pendingWrite{kind: kindQuotation, key: rec.Key, data: data})
			changed = true
		}
		if changed {
			report.ToWrite++
		}
	}

	if opts.DryRun {
		return report, nil
	}

	for start := 0; start < len(writes); start += writeChunkSize {
		end := start + writeChunkSize
		if end > len(writes) {
			end = len(writes)
		}
		chunk := writes[start:end]
		err := m.store.Transaction(ctx, func(tx *persistence.Store) error {
			for _, pw := range chunk {
				if err := tx.Legacy.UpdateData(ctx, pw.kind, pw.key, pw.data); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return report, err
		}
		report.Written += len(chunk)
	}

	m.logger.Info("invoice backfill complete",
		zap.Int("scanned", report.Scanned), zap.Int("written", report.Written))
	return report, nil
}
