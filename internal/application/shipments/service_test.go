package shipments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/bl"
	"github.com/accelefreight/af-server/internal/domain/company"
	"github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/domain/ports"
	"github.com/accelefreight/af-server/internal/domain/shared"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/status"
	"github.com/accelefreight/af-server/internal/domain/workflow"
	"github.com/accelefreight/af-server/test/helpers"
)

type fakeBlobs struct {
	puts map[string][]byte
}

func (f *fakeBlobs) Put(_ context.Context, key string, body []byte, _ string) error {
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[key] = body
	return nil
}

func (f *fakeBlobs) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.example/signed/" + key, nil
}

type fakeExtractor struct {
	parsed *bl.ParsedBL
	err    error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, _, _ string) (*bl.ParsedBL, error) {
	return f.parsed, f.err
}

type testEnv struct {
	svc   *Service
	store *persistence.Store
	clock *shared.MockClock
	blobs *fakeBlobs
	ex    *fakeExtractor
}

func newTestEnv(t *testing.T, environment string) *testEnv {
	t.Helper()
	store := persistence.NewStore(helpers.NewTestDB(t))
	clock := shared.NewMockClock(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	blobs := &fakeBlobs{}
	ex := &fakeExtractor{}
	svc := NewService(store, blobs, ex, clock, zap.NewNop(), Config{
		Environment:  environment,
		SignedURLTTL: 15 * time.Minute,
	})
	return &testEnv{svc: svc, store: store, clock: clock, blobs: blobs, ex: ex}
}

func (e *testEnv) seedCompany(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, e.store.Companies.Upsert(context.Background(), &company.Company{
		ID: id, Name: name, AccountType: "AFC", Approved: true,
		CreatedAt: e.clock.Now(), UpdatedAt: e.clock.Now(),
	}))
}

func (e *testEnv) seedPort(t *testing.T, code, name string) {
	t.Helper()
	require.NoError(t, e.store.Ports.Upsert(context.Background(), &ports.Port{
		UNCode: code, Name: name, PortType: "SEA", CreatedAt: e.clock.Now(),
	}))
}

func staffClaims() identity.Claims {
	return identity.Claims{
		UID: "afu-1", Email: "ops@af.example",
		AccountType: identity.AccountAFU, Role: identity.RoleAFUAdmin,
	}
}

func afcAdminClaims(companyID string) identity.Claims {
	return identity.Claims{
		UID: "afc-1", Email: "admin@acme.example",
		AccountType: identity.AccountAFC, Role: identity.RoleAFCAdmin,
		CompanyID: companyID,
	}
}

func afcUserClaims(companyID string) identity.Claims {
	return identity.Claims{
		UID: "afc-2", Email: "user@acme.example",
		AccountType: identity.AccountAFC, CompanyID: companyID,
	}
}

func (e *testEnv) createFOBExport(t *testing.T) string {
	t.Helper()
	etd := "2026-03-10"
	eta := "2026-03-24"
	resp, err := e.svc.CreateManual(context.Background(), staffClaims(), CreateManualRequest{
		OrderType:             shipment.OrderSeaFCL,
		TransactionType:       "EXPORT",
		CompanyID:             "c-1",
		OriginPortUNCode:      "MYPKG",
		DestinationPortUNCode: "SGSIN",
		IncotermCode:          "FOB",
		CargoDescription:      "Electronics",
		ETD:                   &etd,
		ETA:                   &eta,
	})
	require.NoError(t, err)
	require.Equal(t, "OK", resp.Status)
	return resp.Data.(map[string]any)["shipment_id"].(string)
}

func findByType(tasks []workflow.Task, taskType string) *workflow.Task {
	for i := range tasks {
		if tasks[i].TaskType == taskType {
			return &tasks[i]
		}
	}
	return nil
}

func TestCreateManualGeneratesWorkflow(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()

	id := env.createFOBExport(t)
	assert.Equal(t, "AF-000001", id)

	sh, err := env.store.Shipments.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, status.Confirmed, sh.Status)
	require.Len(t, sh.StatusHistory, 1)
	assert.Equal(t, "ops@af.example", sh.StatusHistory[0].ChangedBy)

	list, err := env.svc.Tasks(ctx, staffClaims(), id)
	require.NoError(t, err)
	require.Len(t, list.Tasks, 5)

	booking := findByType(list.Tasks, workflow.TypeFreightBooking)
	require.NotNil(t, booking)
	require.NotNil(t, booking.DueDate)
	assert.Equal(t, "2026-03-03", *booking.DueDate)

	clearance := findByType(list.Tasks, workflow.TypeExportClearance)
	require.NotNil(t, clearance)
	assert.Equal(t, workflow.StatusBlocked, clearance.Status)
}

func TestCreateManualValidation(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()

	_, err := env.svc.CreateManual(ctx, staffClaims(), CreateManualRequest{
		OrderType: "RAIL", TransactionType: "EXPORT", CompanyID: "c-1",
		OriginPortUNCode: "MYPKG", DestinationPortUNCode: "SGSIN", IncotermCode: "FOB",
	})
	e, ok := aferr.As(err)
	require.True(t, ok)
	assert.Equal(t, aferr.KindBadRequest, e.Kind)

	_, err = env.svc.CreateManual(ctx, staffClaims(), CreateManualRequest{
		OrderType: shipment.OrderSeaFCL, TransactionType: "EXPORT", CompanyID: "c-missing",
		OriginPortUNCode: "MYPKG", DestinationPortUNCode: "SGSIN", IncotermCode: "FOB",
	})
	assert.True(t, aferr.IsNotFound(err), "unknown company is a 404")
}

func TestUpdateStatusStrictNextStep(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()
	id := env.createFOBExport(t)

	// Jumping two steps ahead is a rule rejection, not an error.
	resp, err := env.svc.UpdateStatus(ctx, staffClaims(), id, StatusUpdate{Status: status.Departed})
	require.NoError(t, err)
	assert.Equal(t, "ERROR", resp.Status)
	assert.Equal(t, "Invalid transition: next step is Booking Pending (3001), not 4001", resp.Msg)

	resp, err = env.svc.UpdateStatus(ctx, staffClaims(), id, StatusUpdate{Status: status.BookingPending})
	require.NoError(t, err)
	require.Equal(t, "OK", resp.Status)
	assert.Equal(t, "A", resp.Data.(map[string]any)["path"])

	sh, err := env.store.Shipments.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, status.BookingPending, sh.Status)
	require.Len(t, sh.StatusHistory, 2)

	wf, err := env.store.Workflows.FindByShipmentID(ctx, id)
	require.NoError(t, err)
	require.Len(t, wf.StatusHistory, 2, "both history channels advance together")
	assert.Equal(t, "afu-1", wf.StatusHistory[1].ChangedBy)
}

func TestUpdateStatusPathBSkipsBooking(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()

	resp, err := env.svc.CreateManual(ctx, staffClaims(), CreateManualRequest{
		OrderType: shipment.OrderSeaFCL, TransactionType: "IMPORT", CompanyID: "c-1",
		OriginPortUNCode: "CNSHA", DestinationPortUNCode: "MYPKG", IncotermCode: "CNF",
	})
	require.NoError(t, err)
	id := resp.Data.(map[string]any)["shipment_id"].(string)

	resp, err = env.svc.UpdateStatus(ctx, staffClaims(), id, StatusUpdate{Status: status.BookingPending})
	require.NoError(t, err)
	assert.Equal(t, "ERROR", resp.Status)
	assert.Equal(t, "Booking statuses not applicable for CNF IMPORT (Path B)", resp.Msg)

	resp, err = env.svc.UpdateStatus(ctx, staffClaims(), id, StatusUpdate{Status: status.Departed})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
}

func TestUpdateStatusTerminalAndRevert(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()
	id := env.createFOBExport(t)

	resp, err := env.svc.UpdateStatus(ctx, staffClaims(), id, StatusUpdate{
		Status: status.Completed, AllowJump: true,
	})
	require.NoError(t, err)
	require.Equal(t, "OK", resp.Status)

	wf, err := env.store.Workflows.FindByShipmentID(ctx, id)
	require.NoError(t, err)
	assert.True(t, wf.Completed)

	resp, err = env.svc.UpdateStatus(ctx, staffClaims(), id, StatusUpdate{Status: status.Arrived})
	require.NoError(t, err)
	assert.Equal(t, "ERROR", resp.Status)
	assert.Equal(t, "Cannot change status of a completed or cancelled shipment", resp.Msg)

	resp, err = env.svc.UpdateStatus(ctx, staffClaims(), id, StatusUpdate{
		Status: status.Arrived, Reverted: true,
	})
	require.NoError(t, err)
	require.Equal(t, "OK", resp.Status)

	sh, err := env.store.Shipments.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, status.Arrived, sh.Status)
	last := sh.StatusHistory[len(sh.StatusHistory)-1]
	assert.True(t, last.Reverted)
	require.NotNil(t, last.RevertedFrom)
	assert.Equal(t, status.Completed, *last.RevertedFrom)
}

func TestPatchTaskFreightBookingWarnsThenUnblocks(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()
	id := env.createFOBExport(t)

	list, err := env.svc.Tasks(ctx, staffClaims(), id)
	require.NoError(t, err)
	booking := findByType(list.Tasks, workflow.TypeFreightBooking)
	require.NotNil(t, booking)

	// No booking reference yet: completing the booking leg warns and
	// leaves export clearance blocked.
	completed := workflow.StatusCompleted
	result, err := env.svc.PatchTask(ctx, staffClaims(), id, booking.TaskID, workflow.Patch{
		Status: &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.WarningExportClearanceBlocked, result.Warning)

	list, err = env.svc.Tasks(ctx, staffClaims(), id)
	require.NoError(t, err)
	clearance := findByType(list.Tasks, workflow.TypeExportClearance)
	assert.Equal(t, workflow.StatusBlocked, clearance.Status)

	// The BL update lands the waybill number, which releases clearance.
	waybill := "BK123"
	resp, err := env.svc.UpdateFromBL(ctx, staffClaims(), id, BLUpdate{WaybillNumber: &waybill})
	require.NoError(t, err)
	require.Equal(t, "OK", resp.Status)

	list, err = env.svc.Tasks(ctx, staffClaims(), id)
	require.NoError(t, err)
	clearance = findByType(list.Tasks, workflow.TypeExportClearance)
	assert.Equal(t, workflow.StatusPending, clearance.Status)

	sh, err := env.store.Shipments.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "BK123", sh.Booking.Reference())
}

func TestPatchTaskPermissions(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()
	id := env.createFOBExport(t)

	list, err := env.svc.Tasks(ctx, staffClaims(), id)
	require.NoError(t, err)
	taskID := list.Tasks[0].TaskID

	inProgress := workflow.StatusInProgress
	_, err = env.svc.PatchTask(ctx, afcUserClaims("c-1"), id, taskID, workflow.Patch{Status: &inProgress})
	e, ok := aferr.As(err)
	require.True(t, ok)
	assert.Equal(t, aferr.KindForbidden, e.Kind)

	hidden := workflow.VisibilityHidden
	_, err = env.svc.PatchTask(ctx, afcAdminClaims("c-1"), id, taskID, workflow.Patch{Visibility: &hidden})
	e, ok = aferr.As(err)
	require.True(t, ok)
	assert.Equal(t, aferr.KindForbidden, e.Kind)

	_, err = env.svc.PatchTask(ctx, afcAdminClaims("c-1"), id, taskID, workflow.Patch{Status: &inProgress})
	assert.NoError(t, err, "customer admins may update task status")
}

func TestGetScopesCustomersToTheirCompany(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	env.seedCompany(t, "c-2", "Borneo Exports")
	ctx := context.Background()
	id := env.createFOBExport(t)

	resp, err := env.svc.Get(ctx, afcAdminClaims("c-1"), id)
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)

	_, err = env.svc.Get(ctx, afcAdminClaims("c-2"), id)
	assert.True(t, aferr.IsNotFound(err), "cross-company access looks like a missing shipment")

	_, err = env.svc.Get(ctx, staffClaims(), "not-an-id")
	assert.True(t, aferr.IsNotFound(err))
}

func TestGetResolvesLegacyIDs(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()
	id := env.createFOBExport(t)
	require.Equal(t, "AF-000001", id)

	resp, err := env.svc.Get(ctx, staffClaims(), "AFCQ-000001")
	require.NoError(t, err)
	assert.Equal(t, "Shipment fetched (migrated)", resp.Msg)
	assert.Equal(t, "AF-000001", resp.Data.(map[string]any)["id"])
}

func TestSetInvoicedOnlyOnCompleted(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()
	id := env.createFOBExport(t)

	resp, err := env.svc.SetInvoiced(ctx, staffClaims(), id, true)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", resp.Status)

	_, err = env.svc.UpdateStatus(ctx, staffClaims(), id, StatusUpdate{Status: status.Completed, AllowJump: true})
	require.NoError(t, err)

	resp, err = env.svc.SetInvoiced(ctx, staffClaims(), id, true)
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)

	sh, err := env.store.Shipments.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, sh.IssuedInvoice)
}

func TestDeleteSoftAndHard(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()
	id := env.createFOBExport(t)

	result, err := env.svc.Delete(ctx, staffClaims(), id, false)
	require.NoError(t, err)
	assert.Equal(t, "soft", result["mode"])

	_, err = env.svc.Delete(ctx, staffClaims(), id, false)
	e, ok := aferr.As(err)
	require.True(t, ok)
	assert.Equal(t, aferr.KindBadRequest, e.Kind, "double soft delete rejected")

	result, err = env.svc.Delete(ctx, staffClaims(), id, true)
	require.NoError(t, err)
	assert.Equal(t, "hard", result["mode"])

	_, err = env.svc.Get(ctx, staffClaims(), id)
	assert.True(t, aferr.IsNotFound(err))
}

func TestHardDeleteRestrictedToDevelopment(t *testing.T) {
	env := newTestEnv(t, "production")
	env.seedCompany(t, "c-1", "ACME Trading")

	_, err := env.svc.Delete(context.Background(), staffClaims(), "AF-000001", true)
	e, ok := aferr.As(err)
	require.True(t, ok)
	assert.Equal(t, aferr.KindForbidden, e.Kind)
}

func TestParseBLDerivations(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	env.seedPort(t, "MYPKG", "Port Klang")
	env.seedPort(t, "SGSIN", "Singapore")
	ctx := context.Background()

	num := "MSKU1234567"
	onBoard := "2099-01-01"
	env.ex.parsed = &bl.ParsedBL{
		PortOfLoading:   strptr("PORT KELANG"),
		PortOfDischarge: strptr("SINGAPORE"),
		OnBoardDate:     &onBoard,
		ConsigneeName:   strptr("ACME Trading Pte Ltd"),
		Containers:      []shipment.Container{{ContainerNumber: &num}},
	}

	result, err := env.svc.ParseBL(ctx, staffClaims(), []byte("%PDF-"), "application/pdf", "bl.pdf")
	require.NoError(t, err)
	assert.Equal(t, shipment.OrderSeaFCL, result.OrderType)
	require.NotNil(t, result.OriginUNCode)
	assert.Equal(t, "MYPKG", *result.OriginUNCode)
	require.NotNil(t, result.DestinationUNCode)
	assert.Equal(t, "SGSIN", *result.DestinationUNCode)
	assert.Equal(t, status.BookingConfirmed, result.InitialStatus,
		"future on-board date stays at booking confirmed")
	require.NotEmpty(t, result.CompanyMatches)
	assert.Equal(t, "c-1", result.CompanyMatches[0].CompanyID)

	_, err = env.svc.ParseBL(ctx, staffClaims(), nil, "application/pdf", "bl.pdf")
	e, ok := aferr.As(err)
	require.True(t, ok)
	assert.Equal(t, aferr.KindBadRequest, e.Kind)
}

func TestCreateFromBLDefaults(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()

	waybill := "MAEU12345678"
	resp, err := env.svc.CreateFromBL(ctx, staffClaims(), CreateFromBLRequest{
		CompanyID:             "c-1",
		OriginPortUNCode:      "CNSHA",
		DestinationPortUNCode: "MYPKG",
		WaybillNumber:         &waybill,
	})
	require.NoError(t, err)
	id := resp.Data.(map[string]any)["shipment_id"].(string)

	sh, err := env.store.Shipments.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, shipment.OrderSeaFCL, sh.OrderType)
	assert.Equal(t, "IMPORT", sh.TransactionType)
	assert.Equal(t, "CNF", sh.IncotermCode)
	assert.Equal(t, status.BookingConfirmed, sh.Status)
	assert.Equal(t, "MAEU12345678", sh.Booking.Reference())

	wf, err := env.store.Workflows.FindByShipmentID(ctx, id)
	require.NoError(t, err)
	require.Len(t, wf.Tasks, 4, "CNF IMPORT is a Path B workflow without booking legs")
	assert.Nil(t, findByType(wf.Tasks, workflow.TypeFreightBooking))
}

func TestTasksHiddenFromCustomers(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()
	id := env.createFOBExport(t)

	list, err := env.svc.Tasks(ctx, staffClaims(), id)
	require.NoError(t, err)
	hidden := workflow.VisibilityHidden
	_, err = env.svc.PatchTask(ctx, staffClaims(), id, list.Tasks[0].TaskID, workflow.Patch{
		Visibility: &hidden,
	})
	require.NoError(t, err)

	staffList, err := env.svc.Tasks(ctx, staffClaims(), id)
	require.NoError(t, err)
	assert.Len(t, staffList.Tasks, 5, "staff see hidden tasks")

	customerList, err := env.svc.Tasks(ctx, afcAdminClaims("c-1"), id)
	require.NoError(t, err)
	assert.Len(t, customerList.Tasks, 4)
}

func TestSaveRouteNodesMirrorsFlatSchedule(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	env.seedPort(t, "MYPKG", "Port Klang")
	env.seedPort(t, "SGSIN", "Singapore")
	ctx := context.Background()
	id := env.createFOBExport(t)

	etd := "2026-04-01"
	eta := "2026-04-20"
	result, err := env.svc.SaveRouteNodes(ctx, staffClaims(), id, []shipment.RouteNode{
		{PortUNCode: "SGSIN", Role: shipment.RoleDestination, ScheduledETA: &eta},
		{PortUNCode: "MYPKG", Role: shipment.RoleOrigin, ScheduledETD: &etd},
	})
	require.NoError(t, err)
	require.Len(t, result.RouteNodes, 2)
	assert.Equal(t, "MYPKG", result.RouteNodes[0].PortUNCode, "origin renumbered first")
	assert.Equal(t, 1, result.RouteNodes[0].Sequence)
	assert.Equal(t, "Port Klang", result.RouteNodes[0].PortName, "enriched from catalog")

	sh, err := env.store.Shipments.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sh.ETD)
	assert.Equal(t, "2026-04-01", sh.ETD.Format("2006-01-02"))
	require.NotNil(t, sh.ETA)
	assert.Equal(t, "2026-04-20", sh.ETA.Format("2006-01-02"))

	_, err = env.svc.SaveRouteNodes(ctx, staffClaims(), id, []shipment.RouteNode{
		{PortUNCode: "MYPKG", Role: shipment.RoleOrigin},
	})
	e, ok := aferr.As(err)
	require.True(t, ok)
	assert.Equal(t, aferr.KindBadRequest, e.Kind)
}

func TestUploadAndDownloadFile(t *testing.T) {
	env := newTestEnv(t, "development")
	env.seedCompany(t, "c-1", "ACME Trading")
	ctx := context.Background()
	id := env.createFOBExport(t)

	resp, err := env.svc.UploadFile(ctx, staffClaims(), id, FileUpload{
		Content:    []byte("pdf bytes"),
		FileName:   "invoice.pdf",
		FileTags:   []string{"invoice"},
		Visibility: false,
	})
	require.NoError(t, err)
	require.Equal(t, "OK", resp.Status)
	fileID := resp.Data.(map[string]any)["file_id"].(int64)

	location := "company/c-1/shipments/" + id + "/invoice.pdf"
	assert.Contains(t, env.blobs.puts, location)

	// Staff can sign hidden files; regular customer users cannot see them.
	dl, err := env.svc.DownloadFile(ctx, staffClaims(), id, fileID)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/signed/"+location, dl["download_url"])

	_, err = env.svc.DownloadFile(ctx, afcUserClaims("c-1"), id, fileID)
	assert.True(t, aferr.IsNotFound(err))

	_, err = env.svc.UploadFile(ctx, afcUserClaims("c-1"), id, FileUpload{Content: []byte("x")})
	e, ok := aferr.As(err)
	require.True(t, ok)
	assert.Equal(t, aferr.KindForbidden, e.Kind)
}

func TestSearchTermTooShort(t *testing.T) {
	env := newTestEnv(t, "development")
	_, err := env.svc.Search(context.Background(), staffClaims(), "af", "id", 10)
	e, ok := aferr.As(err)
	require.True(t, ok)
	assert.Equal(t, aferr.KindValidation, e.Kind)
}
