package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid session token")

const defaultSessionTTL = 24 * time.Hour

// HMACStrategy signs customer session tokens with HMAC-SHA256. A token
// carries the customer id and an expiry instant; nothing in it needs to be
// stored server-side.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
}

// NewHMACStrategy builds a strategy for the given signing secret.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl}
}

// IssueToken returns a signed session token for the customer. The encoding
// is URL-safe so the token survives both the auth cookie and the bearer
// header unescaped.
func (s *HMACStrategy) IssueToken(customerID int64) (string, error) {
	expiresAt := time.Now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%d:%d", customerID, expiresAt)
	token := payload + ":" + s.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken checks the signature and expiry and returns the customer id.
func (s *HMACStrategy) ParseToken(token string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	cut := strings.LastIndexByte(string(raw), ':')
	if cut < 0 {
		return 0, ErrInvalidToken
	}
	payload, signature := string(raw[:cut]), string(raw[cut+1:])
	if !hmac.Equal([]byte(s.sign(payload)), []byte(signature)) {
		return 0, ErrInvalidToken
	}

	idPart, expiresPart, ok := strings.Cut(payload, ":")
	if !ok {
		return 0, ErrInvalidToken
	}
	customerID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || customerID <= 0 {
		return 0, ErrInvalidToken
	}
	expiresAt, err := strconv.ParseInt(expiresPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if time.Now().Unix() > expiresAt {
		return 0, ErrInvalidToken
	}
	return customerID, nil
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
