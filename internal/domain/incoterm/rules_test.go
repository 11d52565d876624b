package incoterm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accelefreight/af-server/internal/domain/workflow"
)

func TestTaskTypesMatrix(t *testing.T) {
	tests := []struct {
		incoterm string
		txnType  string
		want     []string
	}{
		{"FOB", "EXPORT", []string{
			workflow.TypeOriginHaulage, workflow.TypeFreightBooking,
			workflow.TypeExportClearance, workflow.TypePOL, workflow.TypePOD,
		}},
		{"FOB", "IMPORT", []string{
			workflow.TypeFreightBooking, workflow.TypePOL, workflow.TypePOD,
			workflow.TypeImportClearance, workflow.TypeDestinationHaulage,
		}},
		{"CNF", "IMPORT", []string{
			workflow.TypePOL, workflow.TypePOD,
			workflow.TypeImportClearance, workflow.TypeDestinationHaulage,
		}},
		{"EXW", "EXPORT", []string{}},
		{"EXW", "IMPORT", []string{
			workflow.TypeOriginHaulage, workflow.TypeFreightBooking,
			workflow.TypeExportClearance, workflow.TypePOL, workflow.TypePOD,
			workflow.TypeImportClearance, workflow.TypeDestinationHaulage,
		}},
		{"DDP", "EXPORT", []string{
			workflow.TypeOriginHaulage, workflow.TypeFreightBooking,
			workflow.TypeExportClearance, workflow.TypePOL, workflow.TypePOD,
			workflow.TypeImportClearance, workflow.TypeDestinationHaulage,
		}},
		{"CIF", "DOMESTIC", []string{
			workflow.TypeOriginHaulage, workflow.TypeFreightBooking,
			workflow.TypePOL, workflow.TypePOD, workflow.TypeDestinationHaulage,
		}},
		{"XYZ", "IMPORT", nil},
	}

	for _, tt := range tests {
		got := TaskTypes(tt.incoterm, tt.txnType)
		assert.Equal(t, tt.want, got, "%s %s", tt.incoterm, tt.txnType)
	}
}

func TestTaskTypesNormalizesInput(t *testing.T) {
	assert.Equal(t, TaskTypes("FOB", "EXPORT"), TaskTypes(" fob ", "export"))
}

func TestStatusPath(t *testing.T) {
	tests := []struct {
		incoterm string
		txnType  string
		want     string
	}{
		{"FOB", "EXPORT", "A"},
		{"FOB", "IMPORT", "A"},
		{"CNF", "IMPORT", "B"},
		{"CIF", "IMPORT", "B"},
		{"DDP", "IMPORT", "B"},
		{"DDP", "EXPORT", "A"},
		{"EXW", "IMPORT", "A"},
		{"DAT", "DOMESTIC", "A"},
	}

	for _, tt := range tests {
		got, err := StatusPath(tt.incoterm, tt.txnType)
		require.NoError(t, err, "%s %s", tt.incoterm, tt.txnType)
		assert.Equal(t, tt.want, got, "%s %s", tt.incoterm, tt.txnType)
	}
}

func TestStatusPathEXWExportIsB(t *testing.T) {
	// An EXW seller has no legs at all, so there is no booking to wait on.
	path, err := StatusPath("EXW", "EXPORT")
	require.NoError(t, err)
	assert.Equal(t, "B", path)
}

func TestStatusPathUnknownPair(t *testing.T) {
	_, err := StatusPath("ZZZ", "IMPORT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown incoterm")
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("fob"))
	assert.True(t, Known("DAT"))
	assert.False(t, Known("FAS"))
}
