// Package nonce issues and verifies the anti-forgery tokens the checkout
// collector sends with every capture request. Tokens are an HMAC over a
// coarse time tick, so a token stays valid for one to two half-lifetimes
// without any server-side state.
package nonce

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"time"
)

const tokenLen = 20

// Issuer creates and verifies capture tokens for a single action name.
type Issuer struct {
	secret   []byte
	action   string
	lifetime time.Duration
	nowFunc  func() time.Time
}

// New returns an Issuer. lifetime is the total validity window; a token is
// accepted for the current tick and the previous one, each tick being half
// the lifetime.
func New(secret, action string, lifetime time.Duration) *Issuer {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &Issuer{
		secret:   []byte(secret),
		action:   action,
		lifetime: lifetime,
		nowFunc:  time.Now,
	}
}

// Create returns a token valid for the current tick.
func (i *Issuer) Create() string {
	return i.tokenFor(i.tick(0))
}

// Verify reports whether tok was issued within the validity window.
func (i *Issuer) Verify(tok string) bool {
	if len(tok) != tokenLen {
		return false
	}
	for _, t := range []int64{i.tick(0), i.tick(-1)} {
		if subtle.ConstantTimeCompare([]byte(tok), []byte(i.tokenFor(t))) == 1 {
			return true
		}
	}
	return false
}

func (i *Issuer) tick(offset int64) int64 {
	half := int64(i.lifetime / 2 / time.Second)
	// sub-2s lifetimes would truncate to a zero divisor
	if half < 1 {
		half = 1
	}
	return i.nowFunc().Unix()/half + offset
}

func (i *Issuer) tokenFor(tick int64) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(i.action + ":" + strconv.FormatInt(tick, 10)))
	return hex.EncodeToString(mac.Sum(nil))[:tokenLen]
}
