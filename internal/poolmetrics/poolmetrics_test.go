package poolmetrics

import (
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerServesPoolGauges(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	e := New(db, "selfsensored")

	r := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	e.Handler().ServeHTTP(w, r)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "selfsensored_db_pool_open_connections")
}
