// Package auth produces and checks the Authorization header that content
// hosts expect on upload requests.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingToken       = errors.New("missing authorization token")
	ErrInvalidHeader      = errors.New("invalid auth header format")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrWrongVerb          = errors.New("token is not valid for this action")
	ErrBlobDigestMismatch = errors.New("token was issued for a different blob")
)

// Authorizer returns the Authorization header value for one upload request.
// An empty value means the request is sent without one. blobDigest is the
// sha256 of the ciphertext, never of the plaintext.
type Authorizer interface {
	Authorize(ctx context.Context, method, url, blobDigest string) (string, error)
}

type none struct{}

// None sends no credentials.
func None() Authorizer { return none{} }

func (none) Authorize(context.Context, string, string, string) (string, error) {
	return "", nil
}

// Bearer sends a fixed token.
type Bearer string

func (b Bearer) Authorize(context.Context, string, string, string) (string, error) {
	if b == "" {
		return "", nil
	}
	return "Bearer " + string(b), nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidHeader
	}
	return strings.TrimSpace(token), nil
}
