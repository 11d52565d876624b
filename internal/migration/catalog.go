package migration

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/accelefreight/af-server/internal/domain/company"
	"github.com/accelefreight/af-server/internal/domain/ports"
	"github.com/accelefreight/af-server/internal/domain/shipment"
)

// Catalog kinds in the interop table. These migrate as straight upserts
// ahead of the shipment migration, which references them.
const (
	kindCompany  = "Company"
	kindPort     = "Port"
	kindFileTags = "FileTags"
)

// CatalogReport summarizes a catalog migration run.
type CatalogReport struct {
	DryRun bool

	Companies int
	Ports     int
	FileTags  int
}

// Write prints the catalog summary.
func (r *CatalogReport) Write(w io.Writer) {
	mode := "LIVE"
	if r.DryRun {
		mode = "DRY RUN"
	}
	fmt.Fprintln(w, "=== Catalog Migration Report ===")
	fmt.Fprintf(w, "Mode: %s\n", mode)
	fmt.Fprintf(w, "Companies: %d\n", r.Companies)
	fmt.Fprintf(w, "Ports:     %d\n", r.Ports)
	fmt.Fprintf(w, "File tags: %d\n", r.FileTags)
}

// MigrateCatalog copies the reference kinds into their canonical tables.
// Upserts keyed on the natural identifier make reruns safe, so nothing
// is marked superseded; shipments reference companies by foreign key and
// must run after this step.
func (m *Migrator) MigrateCatalog(ctx context.Context, opts Options) (*CatalogReport, error) {
	report := &CatalogReport{DryRun: opts.DryRun}
	ts := m.clock.Now()

	companies, err := m.store.Legacy.ListByKind(ctx, kindCompany)
	if err != nil {
		return report, err
	}
	for _, rec := range companies {
		d, err := decodeDoc(rec.Data)
		if err != nil {
			m.logger.Warn("skipping undecodable legacy company",
				zap.String("key", rec.Key), zap.Error(err))
			continue
		}
		c := buildCompany(rec.Key, d, ts)
		if !opts.DryRun {
			if err := m.store.Companies.Upsert(ctx, c); err != nil {
				return report, err
			}
		}
		report.Companies++
	}

	portRecords, err := m.store.Legacy.ListByKind(ctx, kindPort)
	if err != nil {
		return report, err
	}
	for _, rec := range portRecords {
		d, err := decodeDoc(rec.Data)
		if err != nil {
			m.logger.Warn("skipping undecodable legacy port",
				zap.String("key", rec.Key), zap.Error(err))
			continue
		}
		p := buildPort(rec.Key, d, ts)
		if !opts.DryRun {
			if err := m.store.Ports.Upsert(ctx, p); err != nil {
				return report, err
			}
		}
		report.Ports++
	}

	tags, err := m.store.Legacy.ListByKind(ctx, kindFileTags)
	if err != nil {
		return report, err
	}
	for _, rec := range tags {
		d, err := decodeDoc(rec.Data)
		if err != nil {
			m.logger.Warn("skipping undecodable legacy file tag",
				zap.String("key", rec.Key), zap.Error(err))
			continue
		}
		label := d.str("label")
		if label == "" {
			label = d.str("name")
		}
		if label == "" {
			label = rec.Key
		}
		if !opts.DryRun {
			tag := shipment.FileTag{ID: rec.Key, Label: label, Color: d.str("color")}
			if err := m.store.FileTags.Upsert(ctx, tag); err != nil {
				return report, err
			}
		}
		report.FileTags++
	}

	m.logger.Info("catalog migration complete",
		zap.Int("companies", report.Companies),
		zap.Int("ports", report.Ports),
		zap.Int("file_tags", report.FileTags),
		zap.Bool("dry_run", opts.DryRun))
	return report, nil
}

func buildCompany(key string, d doc, ts time.Time) *company.Company {
	name := d.str("name")
	if name == "" {
		name = key
	}
	accountType := d.str("account_type")
	if accountType == "" {
		accountType = "AFC"
	}

	c := &company.Company{
		ID:                key,
		Name:              name,
		ShortName:         d.str("short_name"),
		AccountType:       accountType,
		Email:             d.str("email"),
		Phone:             d.str("phone"),
		XeroContactID:     d.str("xero_contact_id"),
		Approved:          d.boolean("approved"),
		HasPlatformAccess: d.boolean("has_platform_access"),
		Trash:             d.boolean("trash"),
		CreatedAt:         legacyCreated(d, ts),
		UpdatedAt:         ts,
	}
	if addr := d.child("address"); addr != nil {
		c.Address = map[string]any(addr)
	}
	return c
}

func buildPort(key string, d doc, ts time.Time) *ports.Port {
	unCode := d.str("un_code")
	if unCode == "" {
		unCode = key
	}
	name := d.str("name")
	if name == "" {
		name = d.str("port_name")
	}
	if name == "" {
		name = unCode
	}
	portType := d.str("port_type")
	if portType == "" {
		portType = "SEA"
	}

	// V1 terminals were nested entities; only the display name carries
	// over into the catalog.
	var terminals []string
	for _, t := range d.list("terminals") {
		if n := t.str("name"); n != "" {
			terminals = append(terminals, n)
		}
	}

	return &ports.Port{
		UNCode:       unCode,
		Name:         name,
		Country:      d.str("country"),
		CountryCode:  d.str("country_code"),
		PortType:     portType,
		HasTerminals: d.boolean("has_terminals") || len(terminals) > 0,
		Terminals:    terminals,
		CreatedAt:    legacyCreated(d, ts),
	}
}

// legacyCreated reads the v1 created timestamp, falling back to the
// migration time.
func legacyCreated(d doc, ts time.Time) time.Time {
	if t := parseLegacyTime(d.str("created")); t != nil {
		return *t
	}
	if t := parseLegacyTime(d.str("created_at")); t != nil {
		return *t
	}
	return ts
}
