package ingest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ladvien/self-sensored-sub003/internal/adapter"
)

func TestIsEmptyInternalShapeWithNoRows(t *testing.T) {
	assert.True(t, isEmpty(adapter.Envelope{}))
}

func TestIsEmptyVendorShapeWithNoRows(t *testing.T) {
	env := adapter.Envelope{Data: &adapter.VendorData{}}
	assert.True(t, isEmpty(env))
}

func TestIsEmptyFalseWhenMetricsPresent(t *testing.T) {
	env := adapter.Envelope{Metrics: []adapter.InternalMetric{{}}}
	assert.False(t, isEmpty(env))
}

func TestServeHTTPRejectsUnauthenticatedRequest(t *testing.T) {
	h := &Handler{}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp apiResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
}
