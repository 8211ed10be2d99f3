package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateAcceptsBareUUIDKey(t *testing.T) {
	a := &JWTAuth{Secret: []byte("test-secret")}
	id := uuid.New()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	r.Header.Set("Authorization", "Bearer "+id.String())

	got, err := a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestAuthenticateAcceptsValidJWT(t *testing.T) {
	secret := []byte("test-secret")
	a := &JWTAuth{Secret: secret}
	id := uuid.New()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": id.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString(secret)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	r.Header.Set("Authorization", "Bearer "+signed)

	got, err := a.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	a := &JWTAuth{Secret: []byte("test-secret")}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)

	_, err := a.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	a := &JWTAuth{Secret: []byte("test-secret")}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	r.Header.Set("Authorization", "Bearer not-a-token-or-uuid")

	_, err := a.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateRejectsWrongSigningKey(t *testing.T) {
	a := &JWTAuth{Secret: []byte("test-secret")}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": uuid.New().String()})
	signed, err := tok.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	r.Header.Set("Authorization", "Bearer "+signed)

	_, err = a.Authenticate(r)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMiddlewareSetsUserIDOnSuccess(t *testing.T) {
	id := uuid.New()
	a := &JWTAuth{Secret: []byte("test-secret")}

	var sawID uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawID, _ = UserIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	r.Header.Set("Authorization", "Bearer "+id.String())
	w := httptest.NewRecorder()

	Middleware(a)(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, sawID)
}

func TestMiddlewareRejectsUnauthenticated(t *testing.T) {
	a := &JWTAuth{Secret: []byte("test-secret")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run when auth fails")
	})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", nil)
	w := httptest.NewRecorder()

	Middleware(a)(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
