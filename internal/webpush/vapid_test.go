package webpush

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// fixtureKeys generates a P-256 pair and returns it in the raw base64url
// encodings the configuration surface uses.
func fixtureKeys(t *testing.T) (pub, priv string, key *ecdsa.PrivateKey) {
	t.Helper()
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	d := make([]byte, 32)
	k.D.FillBytes(d)
	point := elliptic.Marshal(elliptic.P256(), k.PublicKey.X, k.PublicKey.Y)
	return base64.RawURLEncoding.EncodeToString(point),
		base64.RawURLEncoding.EncodeToString(d),
		k
}

func TestNewSigner_KeyImport(t *testing.T) {
	pub, priv, _ := fixtureKeys(t)

	if _, err := NewSigner(pub, priv, "mailto:ops@example.com"); err != nil {
		t.Fatalf("valid pair rejected: %v", err)
	}
	// public key optional: derived from the scalar
	s, err := NewSigner("", priv, "mailto:ops@example.com")
	if err != nil {
		t.Fatalf("derive public from scalar: %v", err)
	}
	if s.PublicKey() != pub {
		t.Fatalf("derived public key mismatch")
	}
	// padded input tolerated
	if _, err := NewSigner(pub+"=", priv+"==", "mailto:ops@example.com"); err != nil {
		t.Fatalf("padded keys rejected: %v", err)
	}

	for name, in := range map[string][2]string{
		"garbage_private": {pub, "not base64!"},
		"short_private":   {pub, base64.RawURLEncoding.EncodeToString([]byte("short"))},
		"garbage_public":  {"%%%", priv},
		"short_public":    {base64.RawURLEncoding.EncodeToString([]byte{0x04, 1, 2}), priv},
	} {
		if _, err := NewSigner(in[0], in[1], "mailto:x@y"); err == nil {
			t.Errorf("%s: expected key import error", name)
		}
	}
}

func TestAssertion_CompactTokenStructure(t *testing.T) {
	pub, priv, key := fixtureKeys(t)
	s, err := NewSigner(pub, priv, "mailto:suporte@example.com")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}

	issued := time.Now()
	token, err := s.Assertion("https://fcm.googleapis.com/fcm/send/abc123?x=1")
	if err != nil {
		t.Fatalf("assertion: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments; want 3", len(parts))
	}
	if strings.Contains(token, "=") {
		t.Fatalf("token segments must not be padded: %q", token)
	}
	for i, p := range parts {
		if _, err := base64.RawURLEncoding.DecodeString(p); err != nil {
			t.Fatalf("segment %d not base64url: %v", i, err)
		}
	}

	// decoded payload carries aud (scheme+host only), sub, and a 12h expiry.
	// aud must be a bare JSON string, not a one-element array.
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	var generic map[string]any
	if err := json.Unmarshal(payload, &generic); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if _, ok := generic["aud"].(string); !ok {
		t.Fatalf("aud serialized as %T; want string", generic["aud"])
	}
	var claims struct {
		Aud string `json:"aud"`
		Sub string `json:"sub"`
		Exp int64  `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if claims.Aud != "https://fcm.googleapis.com" {
		t.Errorf("aud = %q; want endpoint origin", claims.Aud)
	}
	if claims.Sub != "mailto:suporte@example.com" {
		t.Errorf("sub = %q", claims.Sub)
	}
	exp := time.Unix(claims.Exp, 0)
	if d := exp.Sub(issued); d < 11*time.Hour+59*time.Minute || d > 12*time.Hour+time.Minute {
		t.Errorf("exp %v after issuance; want ~12h", d)
	}

	// the signature must verify against the configured public key
	parsed, err := jwt.Parse(token, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodECDSA); !ok {
			t.Fatalf("unexpected signing method %v", tk.Method.Alg())
		}
		return &key.PublicKey, nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
}

func TestAssertion_BadEndpoint(t *testing.T) {
	_, priv, _ := fixtureKeys(t)
	s, err := NewSigner("", priv, "mailto:x@y")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	if _, err := s.Assertion("not-a-url"); err == nil {
		t.Fatalf("expected error for endpoint without scheme/host")
	}
}

func TestAssertion_FreshPerCall(t *testing.T) {
	_, priv, _ := fixtureKeys(t)
	s, err := NewSigner("", priv, "mailto:x@y")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	a, err1 := s.Assertion("https://push.example.com/send/1")
	b, err2 := s.Assertion("https://push.example.com/send/1")
	if err1 != nil || err2 != nil {
		t.Fatalf("assertions failed: %v %v", err1, err2)
	}
	// ECDSA signatures are randomized, so even identical claims differ.
	if a == b {
		t.Fatalf("expected distinct tokens per attempt")
	}
}
