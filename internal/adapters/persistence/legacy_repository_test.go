package persistence_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/test/helpers"
)

func seedLegacyRow(t *testing.T, db *gorm.DB, kind, key, data string) {
	t.Helper()
	require.NoError(t, db.Create(&persistence.LegacyEntityModel{
		Kind:      kind,
		Key:       key,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}).Error)
}

func TestLegacyListByKindOrderedAndFiltered(t *testing.T) {
	db := helpers.NewTestDB(t)
	store := persistence.NewStore(db)
	ctx := context.Background()

	seedLegacyRow(t, db, "Quotation", "AFCQ-000002", `{"status":"confirmed"}`)
	seedLegacyRow(t, db, "Quotation", "AFCQ-000001", `{"status":"draft"}`)
	seedLegacyRow(t, db, "ShipmentOrder", "AFCQ-000001", `{"status":110}`)

	records, err := store.Legacy.ListByKind(ctx, "Quotation")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "AFCQ-000001", records[0].Key)
	assert.Equal(t, "AFCQ-000002", records[1].Key)

	require.NoError(t, store.Legacy.MarkSuperseded(ctx, "Quotation", []string{"AFCQ-000001"}))
	records, err = store.Legacy.ListByKind(ctx, "Quotation")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "AFCQ-000002", records[0].Key)

	orders, err := store.Legacy.ListByKind(ctx, "ShipmentOrder")
	require.NoError(t, err)
	assert.Len(t, orders, 1, "superseding one kind leaves the other alone")
}

func TestLegacyFind(t *testing.T) {
	db := helpers.NewTestDB(t)
	store := persistence.NewStore(db)
	ctx := context.Background()

	seedLegacyRow(t, db, "Quotation", "AFCQ-000001", `{"status":"confirmed"}`)

	rec, err := store.Legacy.Find(ctx, "Quotation", "AFCQ-000001")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"confirmed"}`, string(rec.Data))

	_, err = store.Legacy.Find(ctx, "Quotation", "AFCQ-999999")
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestLegacyUpdateData(t *testing.T) {
	db := helpers.NewTestDB(t)
	store := persistence.NewStore(db)
	ctx := context.Background()

	seedLegacyRow(t, db, "ShipmentOrder", "AFCQ-000001", `{"issued_invoice":false}`)

	err := store.Legacy.UpdateData(ctx, "ShipmentOrder", "AFCQ-000001",
		json.RawMessage(`{"issued_invoice":true}`))
	require.NoError(t, err)

	rec, err := store.Legacy.Find(ctx, "ShipmentOrder", "AFCQ-000001")
	require.NoError(t, err)
	assert.JSONEq(t, `{"issued_invoice":true}`, string(rec.Data))
}

func TestLegacyMarkSupersededEmptyKeys(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Legacy.MarkSuperseded(context.Background(), "Quotation", nil))
}
