package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/common"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	OTPDigits   = otp.Digits(4)
	OTPValidity = 10 * time.Minute
)

var otpOpts = hotp.ValidateOpts{Digits: OTPDigits, Algorithm: otp.AlgorithmSHA1}

type otpEntry struct {
	secret   string
	counter  uint64
	issuedAt time.Time
}

// OTPIssuer hands out 4-digit HOTP codes per email. Every Issue moves the
// counter, so only the latest code verifies; a verified code is consumed.
type OTPIssuer struct {
	mu      sync.Mutex
	seed    []byte
	entries map[string]*otpEntry
	now     func() time.Time
}

// NewOTPIssuer returns an issuer. With a non-empty seed the per-email
// secrets are derived from it, so codes are reproducible across restarts.
func NewOTPIssuer(seed string) *OTPIssuer {
	return &OTPIssuer{
		seed:    []byte(seed),
		entries: make(map[string]*otpEntry),
		now:     time.Now,
	}
}

func otpKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (o *OTPIssuer) secretFor(key string) string {
	var raw []byte
	if len(o.seed) > 0 {
		m := hmac.New(sha256.New, o.seed)
		m.Write([]byte(key))
		raw = m.Sum(nil)[:20]
	} else {
		raw = common.GenerateRandByteArray(20)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
}

// Issue returns a fresh code for email, invalidating any earlier one.
func (o *OTPIssuer) Issue(email string) (string, error) {
	key := otpKey(email)

	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[key]
	if !ok {
		e = &otpEntry{secret: o.secretFor(key)}
		o.entries[key] = e
	} else {
		e.counter++
	}
	e.issuedAt = o.now()

	return hotp.GenerateCodeCustom(e.secret, e.counter, otpOpts)
}

// Verify reports whether code is the current, unexpired code for email.
// A match consumes it.
func (o *OTPIssuer) Verify(email, code string) bool {
	key := otpKey(email)

	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[key]
	if !ok || o.now().Sub(e.issuedAt) > OTPValidity {
		return false
	}

	valid, err := hotp.ValidateCustom(strings.TrimSpace(code), e.counter, e.secret, otpOpts)
	if err != nil || !valid {
		return false
	}

	delete(o.entries, key)
	return true
}
