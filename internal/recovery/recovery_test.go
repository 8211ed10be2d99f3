package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ladvien/self-sensored-sub003/internal/rawstore"
)

func TestClassifyParameterLimit(t *testing.T) {
	assert.Equal(t, "parameter-limit", classify("bind message supplies 70000 parameters"))
}

func TestClassifyValidation(t *testing.T) {
	assert.Equal(t, "validation", classify("heart_rate 500 out of valid bound"))
}

func TestClassifyDuplicateKey(t *testing.T) {
	assert.Equal(t, "duplicate-key", classify("duplicate key value violates unique constraint"))
}

func TestClassifyConnection(t *testing.T) {
	assert.Equal(t, "connection", classify("dial tcp: connection refused"))
}

func TestClassifyTimeout(t *testing.T) {
	assert.Equal(t, "timeout", classify("context deadline exceeded"))
}

func TestClassifyOtherFallback(t *testing.T) {
	assert.Equal(t, "other", classify("something unexpected happened"))
}

func TestVerifyContentHashesCountsMismatches(t *testing.T) {
	good := rawstore.Record{RawPayload: []byte(`{"metrics":[]}`)}
	good.ContentHash = rawstore.ContentHash(good.RawPayload)

	corrupt := rawstore.Record{RawPayload: []byte(`{"metrics":[]}`), ContentHash: "deadbeef"}

	assert.Equal(t, 1, verifyContentHashes([]rawstore.Record{good, corrupt}))
}
