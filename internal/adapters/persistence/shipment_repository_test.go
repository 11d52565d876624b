package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/domain/company"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
	"github.com/accelefreight/af-server/test/helpers"
)

func newTestStore(t *testing.T) *persistence.Store {
	return persistence.NewStore(helpers.NewTestDB(t))
}

func seedCompany(t *testing.T, store *persistence.Store, id, name string) {
	t.Helper()
	err := store.Companies.Upsert(context.Background(), &company.Company{
		ID:          id,
		Name:        name,
		AccountType: "AFC",
		Approved:    true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
}

func testShipment(countid int64, companyID string, statusCode int) *shipment.Shipment {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	ref := "BK-" + shipment.FormatID(countid)
	return &shipment.Shipment{
		ID:              shipment.FormatID(countid),
		CountID:         countid,
		CompanyID:       companyID,
		OrderType:       shipment.OrderSeaFCL,
		TransactionType: "EXPORT",
		IncotermCode:    "FOB",
		Status:          statusCode,
		OriginPort:      "MYPKG",
		DestPort:        "SGSIN",
		Booking:         &shipment.Booking{BookingReference: &ref},
		StatusHistory: []shipment.StatusEntry{{
			Status:    statusCode,
			Label:     status.Label(statusCode),
			Timestamp: now.Format(time.RFC3339),
			ChangedBy: "system",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestShipmentAddAndFindByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCompany(t, store, "c-1", "ACME Trading")

	in := testShipment(42, "c-1", status.Confirmed)
	require.NoError(t, store.Shipments.Add(ctx, in))

	got, err := store.Shipments.FindByID(ctx, "AF-000042")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.CountID)
	assert.Equal(t, "ACME Trading", got.CompanyName, "company name joined on read")
	assert.Equal(t, "FOB", got.IncotermCode)
	require.NotNil(t, got.Booking)
	assert.Equal(t, "BK-AF-000042", got.Booking.Reference())
	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, status.Confirmed, got.StatusHistory[0].Status)
	assert.Nil(t, got.Cargo)
	assert.Nil(t, got.RouteNodes)
}

func TestShipmentFindByIDNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Shipments.FindByID(context.Background(), "AF-999999")
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestShipmentSaveUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCompany(t, store, "c-1", "ACME Trading")

	in := testShipment(7, "c-1", status.Confirmed)
	require.NoError(t, store.Shipments.Add(ctx, in))

	in.Status = status.BookingPending
	in.RouteNodes = []shipment.RouteNode{
		{PortUNCode: "MYPKG", Role: shipment.RoleOrigin, Sequence: 1},
		{PortUNCode: "SGSIN", Role: shipment.RoleDestination, Sequence: 2},
	}
	require.NoError(t, store.Shipments.Save(ctx, in))

	got, err := store.Shipments.FindByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, status.BookingPending, got.Status)
	require.Len(t, got.RouteNodes, 2)
	assert.Equal(t, "MYPKG", got.RouteNodes[0].PortUNCode)
}

func TestShipmentNextCountID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCompany(t, store, "c-1", "ACME Trading")

	next, err := store.Shipments.NextCountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	require.NoError(t, store.Shipments.Add(ctx, testShipment(41, "c-1", status.Confirmed)))
	next, err = store.Shipments.NextCountID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), next)
}

func TestShipmentStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCompany(t, store, "c-1", "ACME Trading")
	seedCompany(t, store, "c-2", "Other Co")

	require.NoError(t, store.Shipments.Add(ctx, testShipment(1, "c-1", status.Draft)))
	require.NoError(t, store.Shipments.Add(ctx, testShipment(2, "c-1", status.BookingConfirmed)))
	require.NoError(t, store.Shipments.Add(ctx, testShipment(3, "c-1", status.Departed)))

	completed := testShipment(4, "c-1", status.Completed)
	require.NoError(t, store.Shipments.Add(ctx, completed))

	invoiced := testShipment(5, "c-1", status.Completed)
	invoiced.IssuedInvoice = true
	require.NoError(t, store.Shipments.Add(ctx, invoiced))

	require.NoError(t, store.Shipments.Add(ctx, testShipment(6, "c-1", status.Cancelled)))

	// Migrated Confirmed rows count as completed, not active.
	migrated := testShipment(7, "c-1", status.Confirmed)
	migrated.MigratedFromV1 = true
	require.NoError(t, store.Shipments.Add(ctx, migrated))

	trashed := testShipment(8, "c-1", status.Departed)
	trashed.Trash = true
	require.NoError(t, store.Shipments.Add(ctx, trashed))

	require.NoError(t, store.Shipments.Add(ctx, testShipment(9, "c-2", status.Departed)))

	stats, err := store.Shipments.Stats(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, int64(3), stats.Completed)
	assert.Equal(t, int64(1), stats.ToInvoice)
	assert.Equal(t, int64(1), stats.Draft)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(7), stats.Total)

	all, err := store.Shipments.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Active, "staff-wide stats span companies")
}

func TestShipmentListTabsAndPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCompany(t, store, "c-1", "ACME Trading")

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, store.Shipments.Add(ctx, testShipment(i, "c-1", status.Departed)))
	}
	require.NoError(t, store.Shipments.Add(ctx, testShipment(6, "c-1", status.Draft)))

	page, err := store.Shipments.List(ctx, shipment.ListQuery{
		Tab: shipment.TabActive, CompanyID: "c-1", Limit: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "AF-000005", page.Items[0].ID, "newest first")
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, 3, *page.NextCursor)

	last, err := store.Shipments.List(ctx, shipment.ListQuery{
		Tab: shipment.TabActive, CompanyID: "c-1", Limit: 3, Offset: 3,
	})
	require.NoError(t, err)
	require.Len(t, last.Items, 2)
	assert.Nil(t, last.NextCursor)

	drafts, err := store.Shipments.List(ctx, shipment.ListQuery{
		Tab: shipment.TabDraft, CompanyID: "c-1", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, drafts.Items, 1)
	assert.Equal(t, "AF-000006", drafts.Items[0].ID)
}

func TestShipmentSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCompany(t, store, "c-1", "ACME Trading")
	seedCompany(t, store, "c-2", "Borneo Exports")

	require.NoError(t, store.Shipments.Add(ctx, testShipment(42, "c-1", status.Departed)))
	require.NoError(t, store.Shipments.Add(ctx, testShipment(43, "c-2", status.Departed)))

	byID, err := store.Shipments.Search(ctx, shipment.SearchQuery{
		Term: "000042", SearchFields: "id", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, byID.Items, 1)
	assert.Equal(t, "AF-000042", byID.Items[0].ID)

	byCompany, err := store.Shipments.Search(ctx, shipment.SearchQuery{
		Term: "borneo", SearchFields: "all", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, byCompany.Items, 1)
	assert.Equal(t, "AF-000043", byCompany.Items[0].ID)

	byPort, err := store.Shipments.Search(ctx, shipment.SearchQuery{
		Term: "mypkg", SearchFields: "all", Limit: 10,
	})
	require.NoError(t, err)
	assert.Len(t, byPort.Items, 2)

	scoped, err := store.Shipments.Search(ctx, shipment.SearchQuery{
		Term: "mypkg", SearchFields: "all", CompanyID: "c-1", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, scoped.Items, 1)
	assert.Equal(t, "AF-000042", scoped.Items[0].ID)

	companyNameScoped, err := store.Shipments.Search(ctx, shipment.SearchQuery{
		Term: "borneo", SearchFields: "id", Limit: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, companyNameScoped.Items, "id mode ignores company names")
}

func TestShipmentDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCompany(t, store, "c-1", "ACME Trading")

	require.NoError(t, store.Shipments.Add(ctx, testShipment(1, "c-1", status.Draft)))
	require.NoError(t, store.Shipments.Delete(ctx, "AF-000001"))

	_, err := store.Shipments.FindByID(ctx, "AF-000001")
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestStoreTransactionRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedCompany(t, store, "c-1", "ACME Trading")

	wantErr := assert.AnError
	err := store.Transaction(ctx, func(tx *persistence.Store) error {
		if err := tx.Shipments.Add(ctx, testShipment(1, "c-1", status.Draft)); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	_, err = store.Shipments.FindByID(ctx, "AF-000001")
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}
