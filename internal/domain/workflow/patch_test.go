package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func pendingTask(taskType string) Task {
	return Task{
		TaskID:     "t-1",
		TaskType:   taskType,
		Mode:       DefaultMode(taskType),
		Status:     StatusPending,
		AssignedTo: AssigneeAF,
		Visibility: VisibilityVisible,
		UpdatedBy:  "system",
		UpdatedAt:  "2026-01-01T00:00:00Z",
	}
}

func TestPatchValidate(t *testing.T) {
	assert.NoError(t, Patch{Status: strp(StatusCompleted)}.Validate())
	assert.Error(t, Patch{Status: strp("DONE")}.Validate())
	assert.Error(t, Patch{Mode: strp("AUTOMATIC")}.Validate())
	assert.Error(t, Patch{AssignedTo: strp("NOBODY")}.Validate())
	assert.Error(t, Patch{Visibility: strp("SECRET")}.Validate())
}

func TestPatchIgnoredHidesAndResets(t *testing.T) {
	task := pendingTask(TypeOriginHaulage)
	task.Status = StatusInProgress

	err := Patch{Mode: strp(ModeIgnored)}.Apply(&task, "2026-02-01T00:00:00Z", "ops")
	require.NoError(t, err)
	assert.Equal(t, ModeIgnored, task.Mode)
	assert.Equal(t, VisibilityHidden, task.Visibility)
	assert.Equal(t, StatusPending, task.Status)

	err = Patch{Mode: strp(ModeAssigned)}.Apply(&task, "2026-02-02T00:00:00Z", "ops")
	require.NoError(t, err)
	assert.Equal(t, VisibilityVisible, task.Visibility, "restored on leaving IGNORED")
}

func TestPatchBlockedRequiresAssignedMode(t *testing.T) {
	task := pendingTask(TypePOL) // TRACKED by default
	err := Patch{Status: strp(StatusBlocked)}.Apply(&task, "2026-02-01T00:00:00Z", "ops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLOCKED status only valid for ASSIGNED mode")

	task = pendingTask(TypeExportClearance)
	err = Patch{Status: strp(StatusBlocked)}.Apply(&task, "2026-02-01T00:00:00Z", "ops")
	assert.NoError(t, err)
}

func TestPatchModeAppliedBeforeStatus(t *testing.T) {
	// Flipping a tracked leg to ASSIGNED and BLOCKED in one patch works
	// because the mode change lands first.
	task := pendingTask(TypePOL)
	err := Patch{Mode: strp(ModeAssigned), Status: strp(StatusBlocked)}.
		Apply(&task, "2026-02-01T00:00:00Z", "ops")
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, task.Status)
}

func TestPatchInProgressStampsActualStart(t *testing.T) {
	now := "2026-02-01T09:00:00Z"
	task := pendingTask(TypeFreightBooking)

	err := Patch{Status: strp(StatusInProgress)}.Apply(&task, now, "ops")
	require.NoError(t, err)
	require.NotNil(t, task.ActualStart)
	assert.Equal(t, now, *task.ActualStart)

	// Re-patching to IN_PROGRESS does not move the start.
	err = Patch{Status: strp(StatusInProgress)}.Apply(&task, "2026-02-05T00:00:00Z", "ops")
	require.NoError(t, err)
	assert.Equal(t, now, *task.ActualStart)
}

func TestPatchCompletedStampsActualEnd(t *testing.T) {
	now := "2026-02-10T09:00:00Z"
	task := pendingTask(TypeExportClearance)

	err := Patch{Status: strp(StatusCompleted)}.Apply(&task, now, "ops")
	require.NoError(t, err)
	require.NotNil(t, task.ActualEnd)
	assert.Equal(t, now, *task.ActualEnd)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
}

func TestPatchCompletedTrackedPODStampsArrival(t *testing.T) {
	now := "2026-03-24T12:00:00Z"
	task := pendingTask(TypePOD)

	err := Patch{Status: strp(StatusCompleted)}.Apply(&task, now, "ops")
	require.NoError(t, err)
	require.NotNil(t, task.ActualStart, "arrival is the completion event for tracked POD")
	assert.Equal(t, now, *task.ActualStart)
	assert.Nil(t, task.ActualEnd)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
}

func TestPatchDueDateSetsOverride(t *testing.T) {
	task := pendingTask(TypeFreightBooking)
	due := "2026-03-05"

	err := Patch{DueDate: &due}.Apply(&task, "2026-02-01T00:00:00Z", "ops")
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, due, *task.DueDate)
	assert.Equal(t, &due, task.ScheduledEnd)
	assert.True(t, task.DueDateOverride)

	// Explicitly releasing the override without touching the date.
	err = Patch{DueDateOverride: boolp(false)}.Apply(&task, "2026-02-02T00:00:00Z", "ops")
	require.NoError(t, err)
	assert.False(t, task.DueDateOverride)
	assert.Equal(t, due, *task.DueDate)
}

func TestPatchActualEndSetsCompletedAt(t *testing.T) {
	task := pendingTask(TypeOriginHaulage)
	end := "2026-02-20T18:00:00Z"

	err := Patch{ActualEnd: &end}.Apply(&task, "2026-02-21T00:00:00Z", "ops")
	require.NoError(t, err)
	assert.Equal(t, &end, task.CompletedAt)
}

func TestPatchStampsAudit(t *testing.T) {
	task := pendingTask(TypeOriginHaulage)
	err := Patch{Notes: strp("driver confirmed")}.Apply(&task, "2026-02-01T00:00:00Z", "aina@af.example")
	require.NoError(t, err)
	assert.Equal(t, "aina@af.example", task.UpdatedBy)
	assert.Equal(t, "2026-02-01T00:00:00Z", task.UpdatedAt)
	require.NotNil(t, task.Notes)
	assert.Equal(t, "driver confirmed", *task.Notes)
}

func TestCompletesFreightBooking(t *testing.T) {
	task := pendingTask(TypeFreightBooking)
	assert.True(t, Patch{Status: strp(StatusCompleted)}.CompletesFreightBooking(&task))
	assert.False(t, Patch{Status: strp(StatusInProgress)}.CompletesFreightBooking(&task))

	other := pendingTask(TypePOL)
	assert.False(t, Patch{Status: strp(StatusCompleted)}.CompletesFreightBooking(&other))
}

func TestFreightBookingCompleted(t *testing.T) {
	tasks := []Task{pendingTask(TypeFreightBooking), pendingTask(TypePOL)}
	assert.False(t, FreightBookingCompleted(tasks))

	tasks[0].Status = StatusCompleted
	assert.True(t, FreightBookingCompleted(tasks))
}

func TestUnblockExportClearance(t *testing.T) {
	blocked := pendingTask(TypeExportClearance)
	blocked.Status = StatusBlocked
	tasks := []Task{pendingTask(TypeFreightBooking), blocked}

	changed := UnblockExportClearance(tasks, "2026-02-01T00:00:00Z", "system")
	require.True(t, changed)
	assert.Equal(t, StatusPending, tasks[1].Status)
	assert.Equal(t, "system", tasks[1].UpdatedBy)

	assert.False(t, UnblockExportClearance(tasks, "2026-02-01T00:00:00Z", "system"))
}
