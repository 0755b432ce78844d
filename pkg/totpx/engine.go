// Package totpx implements RFC 6238 time-based one-time passwords on top of
// pquerna/otp. It has no storage or network side effects.
package totpx

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultPeriod = 30
	DefaultSkew   = 1

	// secretBytes yields a 32 character base32 secret (160 bits).
	secretBytes = 20
)

var (
	ErrInvalidSecret = errors.New("totp_invalid_secret")
	ErrMissingLabel  = errors.New("totp_missing_label")
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Engine generates and validates codes. The zero value is not usable, use
// NewEngine.
type Engine struct {
	Period    uint
	Skew      uint
	Digits    otp.Digits
	Algorithm otp.Algorithm

	// Now is the clock used by Check.
	Now func() time.Time
}

// NewEngine returns an engine with the authenticator app defaults: 30 second
// steps, six digits, SHA1, and one step of drift tolerance either way.
func NewEngine() *Engine {
	return &Engine{
		Period:    DefaultPeriod,
		Skew:      DefaultSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
		Now:       time.Now,
	}
}

func (e *Engine) opts(skew uint) totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    e.Period,
		Skew:      skew,
		Digits:    e.Digits,
		Algorithm: e.Algorithm,
	}
}

// GenerateSecret returns a new random base32 secret without padding.
func (e *Engine) GenerateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}
	return b32.EncodeToString(buf), nil
}

// Check validates code against secret at the current time.
func (e *Engine) Check(code, secret string) bool {
	return e.CheckAt(code, secret, e.Now())
}

// CheckAt validates code against secret at t, accepting the configured skew.
func (e *Engine) CheckAt(code, secret string, t time.Time) bool {
	code = strings.TrimSpace(code)
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, t.UTC(), e.opts(e.Skew))
	return err == nil && ok
}

// MatchStep is CheckAt that also reports the time step the code belongs to,
// so callers can refuse a step that was already used.
func (e *Engine) MatchStep(code, secret string, t time.Time) (int64, bool) {
	code = strings.TrimSpace(code)
	if code == "" || secret == "" {
		return 0, false
	}

	period := int64(e.Period)
	current := t.UTC().Unix() / period
	skew := int64(e.Skew)

	for offset := -skew; offset <= skew; offset++ {
		step := current + offset
		want, err := totp.GenerateCodeCustom(secret, time.Unix(step*period, 0).UTC(), e.opts(0))
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return step, true
		}
	}
	return 0, false
}

// CodeAt returns the code for secret at t.
func (e *Engine) CodeAt(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t.UTC(), e.opts(0))
}

// ProvisioningURI builds the otpauth:// URI authenticator apps scan.
func (e *Engine) ProvisioningURI(accountLabel, issuer, secret string) (string, error) {
	if accountLabel == "" || issuer == "" {
		return "", ErrMissingLabel
	}

	raw, err := b32.DecodeString(strings.ToUpper(strings.TrimRight(strings.TrimSpace(secret), "=")))
	if err != nil || len(raw) == 0 {
		return "", ErrInvalidSecret
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountLabel,
		Period:      e.Period,
		Secret:      raw,
		Digits:      e.Digits,
		Algorithm:   e.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build provisioning uri: %w", err)
	}

	return key.URL(), nil
}

// QRCodeDataURL renders a provisioning URI as a PNG data URL.
func QRCodeDataURL(uri string, size int) (string, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse provisioning uri: %w", err)
	}

	img, err := key.Image(size, size)
	if err != nil {
		return "", fmt.Errorf("failed to render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
