package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accelefreight/af-server/internal/domain/shipment"
)

func testFile(shipmentID, name string, visible bool) *shipment.File {
	now := time.Now().UTC()
	return &shipment.File{
		ShipmentID:      shipmentID,
		CompanyID:       "c-1",
		FileName:        name,
		FileLocation:    "shipments/" + shipmentID + "/" + name,
		FileTags:        []string{"BL"},
		FileSizeKB:      120.5,
		Visibility:      visible,
		UploadedByUID:   "uid-1",
		UploadedByEmail: "ops@af.example",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestFileAddBackfillsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := testFile("AF-000001", "bl.pdf", true)
	require.NoError(t, store.Files.Add(ctx, f))
	assert.NotZero(t, f.ID)

	got, err := store.Files.FindByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "bl.pdf", got.FileName)
	assert.Equal(t, []string{"BL"}, got.FileTags)
	assert.Equal(t, "ops@af.example", got.UploadedByEmail)
}

func TestFileListByShipmentVisibility(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Files.Add(ctx, testFile("AF-000001", "bl.pdf", true)))
	require.NoError(t, store.Files.Add(ctx, testFile("AF-000001", "internal-costing.xlsx", false)))

	trashed := testFile("AF-000001", "old.pdf", true)
	trashed.Trash = true
	require.NoError(t, store.Files.Add(ctx, trashed))

	require.NoError(t, store.Files.Add(ctx, testFile("AF-000002", "other.pdf", true)))

	all, err := store.Files.ListByShipment(ctx, "AF-000001", false)
	require.NoError(t, err)
	assert.Len(t, all, 2, "trashed files excluded")

	visible, err := store.Files.ListByShipment(ctx, "AF-000001", true)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "bl.pdf", visible[0].FileName)
}

func TestFileRekeyShipment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Files.Add(ctx, testFile("AFCQ-000042", "bl.pdf", true)))
	require.NoError(t, store.Files.RekeyShipment(ctx, "AFCQ-000042", "AF-000042"))

	moved, err := store.Files.ListByShipment(ctx, "AF-000042", false)
	require.NoError(t, err)
	assert.Len(t, moved, 1)

	orphans, err := store.Files.ListByShipment(ctx, "AFCQ-000042", false)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestFileDeleteByShipment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Files.Add(ctx, testFile("AF-000001", "a.pdf", true)))
	require.NoError(t, store.Files.Add(ctx, testFile("AF-000001", "b.pdf", true)))
	require.NoError(t, store.Files.DeleteByShipment(ctx, "AF-000001"))

	files, err := store.Files.ListByShipment(ctx, "AF-000001", false)
	require.NoError(t, err)
	assert.Empty(t, files)
}
