// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package auth implements A4: the ingest entry point's authentication
// collaborator. It accepts either an HS256 JWT bearer token or a bare
// UUID API key in the Authorization header, and puts the resolved
// user_id in the request context the way the teacher's own auth
// package puts a *User in context — context.WithValue plus a
// package-level accessor, never a global.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const contextUserIDKey contextKey = "user_id"

// ErrUnauthorized is returned by Authenticate when no collaborator
// could resolve a user_id from the request.
var ErrUnauthorized = errors.New("auth: missing or invalid credentials")

// Authenticator validates the Authorization header and resolves it to
// a user_id. Only one concrete implementation exists in this repo
// today (JWT + bare-UUID-key), but this stays an interface because
// spec.md §6 explicitly allows either shape and a deployment may want
// to swap in an external identity provider later without touching the
// entry point.
type Authenticator interface {
	Authenticate(r *http.Request) (uuid.UUID, error)
}

// JWTAuth accepts a bearer token that parses as a bare UUID API key
// as-is, and otherwise validates it as an HS256 JWT signed with Secret
// — spec.md §6: "an opaque bearer token or a UUID key".
type JWTAuth struct {
	Secret []byte
}

// Authenticate implements Authenticator.
func (a *JWTAuth) Authenticate(r *http.Request) (uuid.UUID, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return uuid.Nil, ErrUnauthorized
	}

	raw := strings.TrimPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, ErrUnauthorized
	}

	if id, err := uuid.Parse(raw); err == nil {
		return id, nil
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return a.Secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}

// WithUserID returns a child context carrying userID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, contextUserIDKey, userID)
}

// UserIDFrom extracts the user_id a prior Middleware call placed in
// ctx. ok is false if none is present.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(contextUserIDKey)
	if v == nil {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Middleware authenticates every request via a, setting auth.user_id
// in the request context on success and responding 401 on failure —
// the exact split the teacher's own Auth(onsuccess, onfailure)
// performs, collapsed to the net/http middleware shape gorilla/mux
// expects.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Authenticate(r)
			if err != nil {
				http.Error(w, `{"success":false,"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
