package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

// HMACStrategy implements session cookie creation/verification using HMAC signatures.
type HMACStrategy struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided signing key and options.
func NewHMACStrategy(key []byte, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HMACStrategy{key: key, ttl: ttl, now: time.Now}
}

// IssueToken generates signed cookie value for the session.
func (s *HMACStrategy) IssueToken(sessionID uuid.UUID) (string, error) {
	expires := s.now().Add(s.ttl).Unix()
	payload := fmt.Sprintf("%s:%d", sessionID, expires)
	token := fmt.Sprintf("%s:%s", payload, s.sign(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates cookie value and returns encoded session ID.
func (s *HMACStrategy) ParseToken(token string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 3 {
		return uuid.Nil, ErrInvalidToken
	}

	payload := strings.Join(parts[:2], ":")
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[2])) {
		return uuid.Nil, ErrInvalidToken
	}

	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	if time.Unix(expires, 0).Before(s.now()) {
		return uuid.Nil, ErrInvalidToken
	}

	return sessionID, nil
}

// TTL reports how long an issued cookie stays valid.
func (s *HMACStrategy) TTL() time.Duration {
	return s.ttl
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
