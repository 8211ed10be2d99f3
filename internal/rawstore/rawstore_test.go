package rawstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHashIsDeterministic(t *testing.T) {
	a := ContentHash([]byte(`{"metrics":[]}`))
	b := ContentHash([]byte(`{"metrics":[]}`))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestContentHashDiffersOnByteChange(t *testing.T) {
	a := ContentHash([]byte(`{"metrics":[]}`))
	b := ContentHash([]byte(`{"metrics": []}`))
	assert.NotEqual(t, a, b)
}
