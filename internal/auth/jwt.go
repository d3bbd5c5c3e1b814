package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	VerbUpload        = "upload"
	DefaultTokenTTL   = 5 * time.Minute
	uploadTokenIssuer = "vector"
)

// Claims is an upload grant for a single blob.
type Claims struct {
	jwt.RegisteredClaims
	Verb string `json:"t"`
	// Blob is the lowercase hex sha256 of the uploaded bytes.
	Blob string `json:"x"`
}

// JWTAuthorizer signs short-lived HS256 upload grants bound to the blob
// digest.
type JWTAuthorizer struct {
	Secret []byte
	TTL    time.Duration
	// Subject identifies the uploader, usually a public key.
	Subject string

	now func() time.Time
}

func NewJWTAuthorizer(secret []byte, subject string) *JWTAuthorizer {
	return &JWTAuthorizer{Secret: secret, Subject: subject, TTL: DefaultTokenTTL}
}

func (a *JWTAuthorizer) Authorize(_ context.Context, _, _, blobDigest string) (string, error) {
	ttl := a.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	tok, err := GenerateUploadToken(a.Secret, a.Subject, blobDigest, now(), ttl)
	if err != nil {
		return "", err
	}
	return "Bearer " + tok, nil
}

// GenerateUploadToken signs a grant to upload the blob with the given digest.
func GenerateUploadToken(secret []byte, subject, blobDigest string, issuedAt time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("upload token: empty secret")
	}
	return signClaims(secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uploadTokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Verb: VerbUpload,
		Blob: strings.ToLower(blobDigest),
	})
}

func signClaims(secret []byte, c Claims) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("upload token: %w", err)
	}
	return s, nil
}

// ParseUploadToken validates the signature and expiry and returns the claims.
func ParseUploadToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyUpload checks an Authorization header against the digest of the body
// a host actually received.
func VerifyUpload(header string, secret []byte, blobDigest string) (*Claims, error) {
	tok, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	claims, err := ParseUploadToken(tok, secret)
	if err != nil {
		return nil, err
	}
	if claims.Verb != VerbUpload {
		return nil, ErrWrongVerb
	}
	if !strings.EqualFold(claims.Blob, blobDigest) {
		return nil, ErrBlobDigestMismatch
	}
	return claims, nil
}
