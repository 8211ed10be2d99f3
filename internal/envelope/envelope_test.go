package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAcceptsInternalShape(t *testing.T) {
	body := []byte(`{"metrics":[{"family":"heart_rate","value":72}],"workouts":[]}`)
	assert.NoError(t, Validate(body))
}

func TestValidateAcceptsVendorShape(t *testing.T) {
	body := []byte(`{"data":{"metrics":[{"name":"heart_rate","units":"count/min","data":[{"date":"2026-01-01","qty":72}]}]}}`)
	assert.NoError(t, Validate(body))
}

func TestValidateAcceptsEmptyObject(t *testing.T) {
	assert.NoError(t, Validate([]byte(`{}`)))
}

func TestValidateRejectsNonObjectTopLevel(t *testing.T) {
	err := Validate([]byte(`[1,2,3]`))
	assert.Error(t, err)
	var malformed *ErrMalformed
	assert.ErrorAs(t, err, &malformed)
}

func TestValidateRejectsMetricMissingFamily(t *testing.T) {
	err := Validate([]byte(`{"metrics":[{"value":72}]}`))
	assert.Error(t, err)
}

func TestValidateRejectsInvalidJSON(t *testing.T) {
	err := Validate([]byte(`{not json`))
	assert.Error(t, err)
	var malformed *ErrMalformed
	assert.ErrorAs(t, err, &malformed)
}

func TestValidateRejectsVendorMetricMissingData(t *testing.T) {
	err := Validate([]byte(`{"data":{"metrics":[{"name":"heart_rate"}]}}`))
	assert.Error(t, err)
}
