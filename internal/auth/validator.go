// Package auth resolves opaque bearer tokens to caller identities using the
// external token store. Token records are issued elsewhere; this package only
// reads them.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/filegate/service/internal/apperr"
)

// TokenPrefix is prepended to the opaque token to form the store key.
const TokenPrefix = "access:"

// Identity is the trusted caller identity derived from a valid token.
// It lives for one request and is never persisted.
type Identity struct {
	UserID string
	Role   string
	AppID  int64
}

// tokenRecord mirrors the JSON stored by the token issuer. AppID is a pointer
// to distinguish "absent" from zero; ExpiresAt is raw because issuers have
// been seen writing both numbers and numeric strings.
type tokenRecord struct {
	UserID    string          `json:"userId"`
	Role      string          `json:"role"`
	AppID     *int64          `json:"appId"`
	ExpiresAt json.RawMessage `json:"expiresAt"`
}

// Validator checks bearer tokens against the token store.
type Validator struct {
	rdb *redis.Client
	now func() time.Time
}

// NewValidator creates a Validator backed by the given redis client.
func NewValidator(rdb *redis.Client) *Validator {
	return &Validator{rdb: rdb, now: time.Now}
}

// Validate resolves the raw Authorization header value to an Identity.
// It returns 401 for anything wrong with the token itself and 503 only when
// the store lookup fails. The single read is the only side effect.
func (v *Validator) Validate(ctx context.Context, authHeader string) (*Identity, error) {
	token, ok := bearerToken(authHeader)
	if !ok {
		return nil, apperr.Unauthorized("missing or invalid Authorization header")
	}

	raw, err := v.rdb.Get(ctx, TokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	if err != nil {
		return nil, apperr.Unavailable("service temporarily unavailable")
	}

	var rec tokenRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, apperr.Unauthorized("invalid token payload")
	}
	if rec.UserID == "" || rec.AppID == nil {
		return nil, apperr.Unauthorized("invalid token payload")
	}

	expiresAt, err := parseEpochMillis(rec.ExpiresAt)
	if err != nil {
		return nil, apperr.Unauthorized("token expired")
	}
	// Expiry is exclusive: a token is valid up to, not including, expiresAt.
	if v.now().UnixMilli() >= expiresAt {
		return nil, apperr.Unauthorized("token expired")
	}

	return &Identity{UserID: rec.UserID, Role: rec.Role, AppID: *rec.AppID}, nil
}

// bearerToken extracts the token from a "Bearer <token>" header value.
// The scheme is case-insensitive; the token is trimmed and must be non-empty.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) < 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimSpace(header)[len(parts[0]):])
	if token == "" {
		return "", false
	}
	return token, true
}

// parseEpochMillis accepts a JSON number or a numeric string.
func parseEpochMillis(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing expiry")
	}
	s := strings.Trim(string(raw), `"`)
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}
