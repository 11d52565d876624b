package migration

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/shared"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
)

// writeChunkSize bounds one migration transaction.
const writeChunkSize = 500

// Options controls a migration run. Dry run is the safe default at the
// CLI; callers must opt in to writes.
type Options struct {
	DryRun bool
}

// Migrator rebuilds legacy v1 records into canonical shipments.
type Migrator struct {
	store  *persistence.Store
	logger *zap.Logger
	clock  shared.Clock
}

// NewMigrator creates a migrator over the canonical store.
func NewMigrator(store *persistence.Store, logger *zap.Logger, clock shared.Clock) *Migrator {
	return &Migrator{store: store, logger: logger, clock: clock}
}

// assembled pairs a built shipment with the legacy key it came from.
type assembled struct {
	legacyKey string
	shipment  *shipment.Shipment
}

// Run executes the migration. Assembly errors are collected on the
// report without aborting; an identifier collision aborts before any
// write. Consumed quotation and order records are marked superseded, so
// a second run sees nothing to do.
func (m *Migrator) Run(ctx context.Context, opts Options) (*Report, error) {
	report := NewReport(opts.DryRun)
	ts := m.clock.Now()

	quotations, err := m.store.Legacy.ListByKind(ctx, kindQuotation)
	if err != nil {
		return report, err
	}
	report.Total = len(quotations)
	m.logger.Info("legacy quotations loaded", zap.Int("count", len(quotations)))

	orders, err := m.indexKind(ctx, kindShipmentOrder)
	if err != nil {
		return report, err
	}
	freights, err := m.indexKind(ctx, kindQuotationFreight)
	if err != nil {
		return report, err
	}
	fcls, err := m.indexKind(ctx, kindQuotationFCL)
	if err != nil {
		return report, err
	}
	lcls, err := m.indexKind(ctx, kindQuotationLCL)
	if err != nil {
		return report, err
	}
	airs, err := m.indexKind(ctx, kindQuotationAir)
	if err != nil {
		return report, err
	}

	var batch []assembled
	var maxCountID int64
	for _, rec := range quotations {
		quotation, err := decodeDoc(rec.Data)
		if err != nil {
			report.AddError(rec.Key, err.Error())
			continue
		}
		if quotation.integer("data_version") == 2 {
			report.SkippedV2++
			continue
		}

		order := orders[rec.Key]
		if order == nil {
			report.WithoutOrder++
			report.SkippedDrafts++
			continue
		}
		if deriveStatus(quotation, order) == status.Draft {
			report.SkippedDrafts++
			continue
		}
		report.WithOrder++

		src := legacySources{
			quotation: quotation,
			freight:   freights[rec.Key],
			order:     order,
			qFCL:      fcls[rec.Key],
			qLCL:      lcls[rec.Key],
			qAir:      airs[rec.Key],
		}
		sh, err := assemble(rec.Key, src, ts)
		if err != nil {
			report.AddError(rec.Key, err.Error())
			m.logger.Error("failed to assemble legacy record",
				zap.String("key", rec.Key), zap.Error(err))
			continue
		}

		report.Count(sh)
		if sh.CountID > maxCountID {
			maxCountID = sh.CountID
		}
		batch = append(batch, assembled{legacyKey: rec.Key, shipment: sh})
	}

	if err := m.checkCollisions(ctx, batch); err != nil {
		return report, err
	}

	if opts.DryRun {
		m.logger.Info("dry run complete", zap.Int("assembled", len(batch)))
		return report, nil
	}

	for start := 0; start < len(batch); start += writeChunkSize {
		end := start + writeChunkSize
		if end > len(batch) {
			end = len(batch)
		}
		if err := m.writeChunk(ctx, batch[start:end]); err != nil {
			return report, err
		}
		report.Written += end - start
		m.logger.Info("migration chunk written",
			zap.Int("written", report.Written), zap.Int("total", len(batch)))
	}

	if maxCountID > 0 {
		if err := m.store.Shipments.SeedCountIDSequence(ctx, maxCountID+1); err != nil {
			return report, err
		}
		report.SequenceSeed = maxCountID + 1
	}

	return report, nil
}

// checkCollisions aborts the run when a target AF- identifier already
// exists. A collision means the countid space is already occupied and
// writing would corrupt it.
func (m *Migrator) checkCollisions(ctx context.Context, batch []assembled) error {
	for _, a := range batch {
		_, err := m.store.Shipments.FindByID(ctx, a.shipment.ID)
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return err
		}
		return aferr.Conflictf("Shipment %s already exists; migration aborted", a.shipment.ID)
	}
	return nil
}

// writeChunk persists one batch atomically: shipment rows, workflow and
// file re-keys, and the superseded flags commit or roll back together.
func (m *Migrator) writeChunk(ctx context.Context, chunk []assembled) error {
	return m.store.Transaction(ctx, func(tx *persistence.Store) error {
		keys := make([]string, 0, len(chunk))
		for _, a := range chunk {
			if err := tx.Shipments.Add(ctx, a.shipment); err != nil {
				return fmt.Errorf("write %s: %w", a.shipment.ID, err)
			}
			if err := tx.Workflows.RekeyShipment(ctx, a.legacyKey, a.shipment.ID); err != nil {
				return err
			}
			if err := tx.Files.RekeyShipment(ctx, a.legacyKey, a.shipment.ID); err != nil {
				return err
			}
			keys = append(keys, a.legacyKey)
		}
		if err := tx.Legacy.MarkSuperseded(ctx, kindQuotation, keys); err != nil {
			return err
		}
		return tx.Legacy.MarkSuperseded(ctx, kindShipmentOrder, keys)
	})
}

// indexKind loads one legacy kind into a key-indexed map of decoded
// payloads. Undecodable rows are dropped with a log line; the quotation
// loop reports the record-level error.
func (m *Migrator) indexKind(ctx context.Context, kind string) (map[string]doc, error) {
	records, err := m.store.Legacy.ListByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	index := make(map[string]doc, len(records))
	for _, rec := range records {
		d, err := decodeDoc(rec.Data)
		if err != nil {
			m.logger.Warn("skipping undecodable legacy record",
				zap.String("kind", kind), zap.String("key", rec.Key), zap.Error(err))
			continue
		}
		index[rec.Key] = d
	}
	return index, nil
}
