// Package webpush implements the outbound Web Push channel: a VAPID
// signature engine producing short-lived signed assertions, and a sender
// that delivers one notification payload to one subscription endpoint.
package webpush

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// assertionTTL bounds the validity of one signed assertion. Push services
// reject tokens valid for more than 24h; 12h is the conventional middle.
const assertionTTL = 12 * time.Hour

const (
	privateKeyLen           = 32
	uncompressedPointLen    = 65
	uncompressedPointMarker = 0x04
)

// ErrBadKeyMaterial is returned when the configured VAPID keys cannot be
// imported into a P-256 scalar/point pair.
var ErrBadKeyMaterial = errors.New("webpush: invalid VAPID key material")

// Signer builds VAPID authentication assertions for push delivery targets.
//
// It is constructed once from the service's long-lived key pair (raw
// base64url byte encodings, injected via configuration) and is safe for
// concurrent use: signing is stateless per call.
type Signer struct {
	key     *ecdsa.PrivateKey
	pubB64  string // canonical base64url of the uncompressed public point
	subject string
}

// NewSigner imports the raw key pair and returns a ready Signer.
//
// privateKey is the base64url encoding of the 32-byte P-256 scalar.
// publicKey is the base64url encoding of the 65-byte uncompressed point
// (leading 0x04 marker, x in bytes [1:33], y in [33:65]); when empty, the
// point is derived from the scalar. subject is the contact URI asserted as
// the token subject.
func NewSigner(publicKey, privateKey, subject string) (*Signer, error) {
	raw, err := decodeB64(privateKey)
	if err != nil || len(raw) != privateKeyLen {
		return nil, fmt.Errorf("%w: private key must be %d raw bytes", ErrBadKeyMaterial, privateKeyLen)
	}
	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero scalar", ErrBadKeyMaterial)
	}

	curve := elliptic.P256()
	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve},
		D:         d,
	}

	if strings.TrimSpace(publicKey) != "" {
		pt, err := decodeB64(publicKey)
		if err != nil || len(pt) != uncompressedPointLen || pt[0] != uncompressedPointMarker {
			return nil, fmt.Errorf("%w: public key must be a %d-byte uncompressed point", ErrBadKeyMaterial, uncompressedPointLen)
		}
		key.PublicKey.X = new(big.Int).SetBytes(pt[1:33])
		key.PublicKey.Y = new(big.Int).SetBytes(pt[33:65])
		if !curve.IsOnCurve(key.PublicKey.X, key.PublicKey.Y) {
			return nil, fmt.Errorf("%w: point not on curve", ErrBadKeyMaterial)
		}
	} else {
		key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(raw)
	}

	pub := elliptic.Marshal(curve, key.PublicKey.X, key.PublicKey.Y)
	return &Signer{
		key:     key,
		pubB64:  base64.RawURLEncoding.EncodeToString(pub),
		subject: subject,
	}, nil
}

// PublicKey returns the base64url (unpadded) encoding of the uncompressed
// public point, as placed in the k= parameter of the Authorization header.
func (s *Signer) PublicKey() string { return s.pubB64 }

// assertionClaims is the VAPID claim set. Push services expect aud as a
// plain JSON string; jwt.RegisteredClaims.Audience would serialize it as a
// one-element array, so aud is declared here and shadows the embedded field.
type assertionClaims struct {
	Aud string `json:"aud"`
	jwt.RegisteredClaims
}

// Assertion signs a fresh assertion for the push service hosting endpoint.
//
// The token is an ES256 compact JWT asserting aud = scheme://host of the
// endpoint, exp = now + 12h, sub = the configured contact URI. A new token
// is generated per delivery attempt and never persisted.
func (s *Signer) Assertion(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("webpush: bad endpoint %q", endpoint)
	}

	claims := assertionClaims{
		Aud: u.Scheme + "://" + u.Host,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(assertionTTL)),
			Subject:   s.subject,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("webpush: sign assertion: %w", err)
	}
	return token, nil
}

// decodeB64 accepts both padded and unpadded base64url input; stored key
// material in the wild is inconsistent about trailing '='.
func decodeB64(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(s), "="))
}
