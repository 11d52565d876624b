package incoterm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accelefreight/af-server/internal/domain/workflow"
)

func datePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &ts
}

func findTask(tasks []workflow.Task, taskType string) *workflow.Task {
	for i := range tasks {
		if tasks[i].TaskType == taskType {
			return &tasks[i]
		}
	}
	return nil
}

func TestGenerateTasksFOBExport(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	d := Dates{ETD: datePtr(t, "2026-03-10"), ETA: datePtr(t, "2026-03-24")}

	tasks := GenerateTasks("FOB", "EXPORT", d, now, "ops@af.example")
	require.Len(t, tasks, 5)

	// Sorted by leg level
	wantOrder := []string{
		workflow.TypeOriginHaulage, workflow.TypeFreightBooking,
		workflow.TypeExportClearance, workflow.TypePOL, workflow.TypePOD,
	}
	for i, tt := range wantOrder {
		assert.Equal(t, tt, tasks[i].TaskType)
		assert.Equal(t, i+1, tasks[i].LegLevel)
		assert.NotEmpty(t, tasks[i].TaskID)
	}

	booking := findTask(tasks, workflow.TypeFreightBooking)
	require.NotNil(t, booking)
	require.NotNil(t, booking.DueDate)
	assert.Equal(t, "2026-03-03", *booking.DueDate)
	assert.Equal(t, workflow.StatusPending, booking.Status)

	clearance := findTask(tasks, workflow.TypeExportClearance)
	require.NotNil(t, clearance)
	assert.Equal(t, workflow.StatusBlocked, clearance.Status,
		"clearance waits for the booking reference")
	require.NotNil(t, clearance.DueDate)
	assert.Equal(t, "2026-03-08", *clearance.DueDate)

	pol := findTask(tasks, workflow.TypePOL)
	require.NotNil(t, pol)
	assert.Equal(t, workflow.ModeTracked, pol.Mode)
	require.NotNil(t, pol.DueDate)
	assert.Equal(t, "2026-03-10", *pol.DueDate)

	pod := findTask(tasks, workflow.TypePOD)
	require.NotNil(t, pod)
	require.NotNil(t, pod.DueDate)
	assert.Equal(t, "2026-03-24", *pod.DueDate)

	haulage := findTask(tasks, workflow.TypeOriginHaulage)
	require.NotNil(t, haulage)
	require.NotNil(t, haulage.DueDate)
	assert.Equal(t, "2026-03-07", *haulage.DueDate, "falls back to ETD-3 without cargo ready")
	assert.Equal(t, workflow.ModeAssigned, haulage.Mode)

	for _, task := range tasks {
		assert.Equal(t, workflow.AssigneeAF, task.AssignedTo)
		assert.Equal(t, workflow.VisibilityVisible, task.Visibility)
		assert.Equal(t, "ops@af.example", task.UpdatedBy)
		assert.Equal(t, task.DueDate, task.ScheduledEnd)
		assert.False(t, task.DueDateOverride)
	}
}

func TestGenerateTasksCNFImportNoClearanceBlock(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	d := Dates{ETA: datePtr(t, "2026-04-01")}

	tasks := GenerateTasks("CNF", "IMPORT", d, now, "system")
	require.Len(t, tasks, 4)

	for _, task := range tasks {
		assert.NotEqual(t, workflow.StatusBlocked, task.Status,
			"no booking leg, nothing to block on")
	}

	imp := findTask(tasks, workflow.TypeImportClearance)
	require.NotNil(t, imp)
	require.NotNil(t, imp.DueDate)
	assert.Equal(t, "2026-04-02", *imp.DueDate)

	dest := findTask(tasks, workflow.TypeDestinationHaulage)
	require.NotNil(t, dest)
	require.NotNil(t, dest.DueDate)
	assert.Equal(t, "2026-04-04", *dest.DueDate)
}

func TestGenerateTasksCargoReadyWinsOverETD(t *testing.T) {
	now := time.Now().UTC()
	d := Dates{ETD: datePtr(t, "2026-03-10"), CargoReady: datePtr(t, "2026-03-01")}

	tasks := GenerateTasks("FOB", "EXPORT", d, now, "system")
	haulage := findTask(tasks, workflow.TypeOriginHaulage)
	require.NotNil(t, haulage)
	require.NotNil(t, haulage.DueDate)
	assert.Equal(t, "2026-03-01", *haulage.DueDate)
}

func TestGenerateTasksMissingDates(t *testing.T) {
	tasks := GenerateTasks("FOB", "EXPORT", Dates{}, time.Now(), "system")
	require.Len(t, tasks, 5)
	for _, task := range tasks {
		assert.Nil(t, task.DueDate, "%s should have no due date", task.TaskType)
	}
}

func TestGenerateTasksUnknownPair(t *testing.T) {
	assert.Nil(t, GenerateTasks("ZZZ", "IMPORT", Dates{}, time.Now(), "system"))
	assert.Nil(t, GenerateTasks("EXW", "EXPORT", Dates{}, time.Now(), "system"))
}

func TestRecalculateDueDates(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	d := Dates{ETD: datePtr(t, "2026-03-10"), ETA: datePtr(t, "2026-03-24")}
	tasks := GenerateTasks("FOB", "EXPORT", d, now, "system")

	// ETD slips a week; one task has a manual override that must survive.
	clearance := findTask(tasks, workflow.TypeExportClearance)
	manual := "2026-03-05"
	clearance.DueDate = &manual
	clearance.DueDateOverride = true

	later := now.Add(time.Hour)
	shifted := Dates{ETD: datePtr(t, "2026-03-17"), ETA: datePtr(t, "2026-03-31")}
	changed := RecalculateDueDates(tasks, shifted, later, "ops@af.example")
	require.True(t, changed)

	booking := findTask(tasks, workflow.TypeFreightBooking)
	require.NotNil(t, booking.DueDate)
	assert.Equal(t, "2026-03-10", *booking.DueDate)
	assert.Equal(t, "ops@af.example", booking.UpdatedBy)

	assert.Equal(t, "2026-03-05", *clearance.DueDate, "override must hold")
	assert.Equal(t, "system", clearance.UpdatedBy, "overridden task untouched")

	// Second pass with the same dates is a no-op.
	assert.False(t, RecalculateDueDates(tasks, shifted, later, "ops@af.example"))
}

func TestNormalizeTaskOnReadLegacyTypes(t *testing.T) {
	due := "2026-03-10"
	done := "2026-03-11T08:00:00Z"

	dep := workflow.Task{TaskType: "VESSEL_DEPARTURE", DueDate: &due}
	NormalizeTaskOnRead(&dep)
	assert.Equal(t, workflow.TypePOL, dep.TaskType)
	assert.Equal(t, "Port of Loading", dep.DisplayName)
	assert.Equal(t, 4, dep.LegLevel)
	assert.Equal(t, workflow.ModeTracked, dep.Mode)
	require.NotNil(t, dep.ScheduledEnd)
	assert.Equal(t, due, *dep.ScheduledEnd)

	arr := workflow.Task{TaskType: "VESSEL_ARRIVAL", CompletedAt: &done}
	NormalizeTaskOnRead(&arr)
	assert.Equal(t, workflow.TypePOD, arr.TaskType)
	assert.Equal(t, 5, arr.LegLevel)
	require.NotNil(t, arr.ActualEnd)
	assert.Equal(t, done, *arr.ActualEnd)

	transit := workflow.Task{TaskType: "IN_TRANSIT"}
	NormalizeTaskOnRead(&transit)
	assert.Equal(t, workflow.TypeInTransitLegacy, transit.TaskType)
	assert.Equal(t, workflow.ModeIgnored, transit.Mode)
	assert.Equal(t, workflow.VisibilityHidden, transit.Visibility)
	assert.Equal(t, 0, transit.LegLevel)
}

func TestNormalizeTaskOnReadKeepsCurrentFields(t *testing.T) {
	task := workflow.Task{
		TaskType:    workflow.TypeFreightBooking,
		DisplayName: "Booking (air)",
		Mode:        workflow.ModeIgnored,
	}
	NormalizeTaskOnRead(&task)
	assert.Equal(t, "Booking (air)", task.DisplayName)
	assert.Equal(t, workflow.ModeIgnored, task.Mode)
	assert.Equal(t, 2, task.LegLevel)
}
