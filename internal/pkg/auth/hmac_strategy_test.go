package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHMACStrategyDefaultTTL(t *testing.T) {
	strategy := NewHMACStrategy("signing-secret", Options{})
	if strategy.ttl != defaultSessionTTL {
		t.Fatalf("unexpected ttl %s", strategy.ttl)
	}

	custom := NewHMACStrategy("signing-secret", Options{TTL: 2 * time.Hour})
	if custom.ttl != 2*time.Hour {
		t.Fatalf("unexpected ttl %s", custom.ttl)
	}
}

func TestHMACStrategyRoundTrip(t *testing.T) {
	strategy := NewHMACStrategy("signing-secret", Options{TTL: time.Minute})

	token, err := strategy.IssueToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	customerID, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if customerID != 7 {
		t.Fatalf("expected customer 7, got %d", customerID)
	}
}

func TestHMACStrategyRejectsExpiredToken(t *testing.T) {
	strategy := &HMACStrategy{secret: []byte("signing-secret"), ttl: -time.Minute}
	token, err := strategy.IssueToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHMACStrategyRejectsForeignSecret(t *testing.T) {
	token, err := NewHMACStrategy("signing-secret", Options{TTL: time.Minute}).IssueToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	other := NewHMACStrategy("different-secret", Options{TTL: time.Minute})
	if _, err := other.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHMACStrategyRejectsTamperedCustomerID(t *testing.T) {
	strategy := NewHMACStrategy("signing-secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	tampered := base64.RawURLEncoding.EncodeToString([]byte(strings.Replace(string(raw), "7:", "8:", 1)))
	if _, err := strategy.ParseToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHMACStrategyRejectsMalformedTokens(t *testing.T) {
	strategy := NewHMACStrategy("signing-secret", Options{TTL: time.Minute})

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "%%%"},
		{"no separator", base64.RawURLEncoding.EncodeToString([]byte("garbage"))},
		{"non-numeric id", signedToken(strategy, "seven:9999999999")},
		{"zero id", signedToken(strategy, "0:9999999999")},
		{"non-numeric expiry", signedToken(strategy, "7:later")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := strategy.ParseToken(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

// signedToken encodes a validly signed token around an arbitrary payload.
func signedToken(s *HMACStrategy, payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(payload + ":" + s.sign(payload)))
}
