package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileMedian(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, float64(3), percentile(xs, 50))
}

func TestPercentileEmptyIsZero(t *testing.T) {
	assert.Equal(t, float64(0), percentile(nil, 95))
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	xs := []float64{5, 1, 3}
	_ = percentile(xs, 50)
	assert.Equal(t, []float64{5, 1, 3}, xs)
}

func TestMeanOfEmptyIsZero(t *testing.T) {
	assert.Equal(t, float64(0), mean(nil))
}

func TestMeanAverages(t *testing.T) {
	assert.InDelta(t, 2.0, mean([]float64{1, 2, 3}), 0.0001)
}

func TestClassifyErrorParameterLimit(t *testing.T) {
	assert.Equal(t, "parameter-limit", classifyError("bind message supplies 70000 parameters"))
}

func TestClassifyErrorOther(t *testing.T) {
	assert.Equal(t, "other", classifyError("nope, not any known shape"))
}

func TestThresholdAlertSeverities(t *testing.T) {
	ok := thresholdAlert("x", 1, 10, 20, "%.1f")
	assert.Equal(t, SeverityOK, ok.Severity)

	warn := thresholdAlert("x", 15, 10, 20, "%.1f")
	assert.Equal(t, SeverityWarning, warn.Severity)

	crit := thresholdAlert("x", 25, 10, 20, "%.1f")
	assert.Equal(t, SeverityCritical, crit.Severity)
}

func TestReportHasCritical(t *testing.T) {
	r := Report{Alerts: []Alert{{Severity: SeverityWarning}, {Severity: SeverityCritical}}}
	assert.True(t, r.HasCritical())

	r2 := Report{Alerts: []Alert{{Severity: SeverityOK}}}
	assert.False(t, r2.HasCritical())
}
