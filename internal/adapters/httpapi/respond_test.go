package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/application/shipments"
)

func TestWriteErrorClassified(t *testing.T) {
	s := &Server{logger: zap.NewNop()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v2/shipments/AF-000001", nil)

	s.writeError(rec, req, aferr.NotFoundf("Shipment AF-000001 not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body["status"])
	assert.Equal(t, "Shipment AF-000001 not found", body["msg"])

	data, present := body["data"]
	assert.True(t, present, "envelope always carries the data key")
	assert.Nil(t, data)
}

func TestWriteErrorUnclassified(t *testing.T) {
	s := &Server{logger: zap.NewNop()}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v2/shipments", nil)

	s.writeError(rec, req, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ERROR", body["status"])
	assert.Equal(t, "Internal server error", body["msg"])

	data, present := body["data"]
	assert.True(t, present)
	assert.Nil(t, data)
}

func TestRejectionEnvelopeCarriesNullData(t *testing.T) {
	out, err := json.Marshal(shipments.Rejected("Invalid transition"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ERROR","data":null,"msg":"Invalid transition"}`, string(out))
}
