// Package verification manages time-limited codes that confirm an action,
// e.g. email ownership during registration. At most one live code exists per
// subject: writing a new code invalidates the previous one, and codes expire
// on their own after the configured TTL.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Result is the outcome of a code check. An absent or expired record is a
// normal negative result, not an error.
type Result string

const (
	ResultMatch            Result = "match"
	ResultMismatch         Result = "mismatch"
	ResultExpiredOrMissing Result = "expired_or_missing"
)

// Store persists verification records keyed by subject (an email address).
type Store interface {
	Put(ctx context.Context, subject, code string, ttl time.Duration) error
	Check(ctx context.Context, subject, code string) (Result, error)
}

// GenerateCode returns a 6-digit numeric code from a CSPRNG.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
