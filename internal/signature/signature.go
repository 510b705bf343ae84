// Package signature authenticates provider callbacks.
//
// The provider signs the callback parameters, in the order it sent them,
// with a shared secret and passes the digest in the "key" parameter.
package signature

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // the provider protocol mandates md5
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// KeyParam carries the digest and never takes part in the canonical form.
const KeyParam = "key"

type Scheme string

const (
	SchemeMD5        Scheme = "md5"
	SchemeHMACSHA256 Scheme = "hmac-sha256"
)

var ErrUnknownScheme = errors.New("unknown signature scheme")

type Param struct {
	Key   string
	Value string
}

// Params keeps the parameters in the order they were received.
type Params []Param

// Get returns the first value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}

	return "", false
}

// Canonical joins every parameter except the digest as k=v&k=v in received
// order. Values are used as decoded, never re-escaped.
func Canonical(params Params) string {
	var b strings.Builder

	first := true

	for _, kv := range params {
		if kv.Key == KeyParam {
			continue
		}

		if !first {
			b.WriteByte('&')
		}

		first = false

		b.WriteString(kv.Key)
		b.WriteByte('=')
		b.WriteString(kv.Value)
	}

	return b.String()
}

type Validator struct {
	secret []byte
	scheme Scheme
}

func New(secret string, scheme Scheme) (*Validator, error) {
	if secret == "" {
		return nil, errors.New("empty signature secret")
	}

	switch scheme {
	case SchemeMD5, SchemeHMACSHA256:
	case "":
		scheme = SchemeMD5
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}

	return &Validator{secret: []byte(secret), scheme: scheme}, nil
}

// Sign returns the lower-case hex digest the provider is expected to send.
func (v *Validator) Sign(params Params) string {
	canonical := Canonical(params)

	switch v.scheme {
	case SchemeHMACSHA256:
		mac := hmac.New(sha256.New, v.secret)
		mac.Write([]byte(canonical))

		return hex.EncodeToString(mac.Sum(nil))
	default:
		sum := md5.Sum(append(append([]byte{}, v.secret...), canonical...)) //nolint:gosec

		return hex.EncodeToString(sum[:])
	}
}

// Verify reports whether params carry a valid digest. A missing digest is a
// reject. Hex case is ignored.
func (v *Validator) Verify(params Params) bool {
	got, ok := params.Get(KeyParam)
	if !ok || got == "" {
		return false
	}

	want := v.Sign(params)

	return subtle.ConstantTimeCompare([]byte(strings.ToLower(got)), []byte(want)) == 1
}
