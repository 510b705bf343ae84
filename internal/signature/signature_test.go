package signature

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{name: "empty", params: nil, want: ""},
		{
			name:   "drops_key_keeps_order",
			params: Params{{"remote_id", "p1"}, {"key", "abc"}, {"amount", "1.50"}, {"action", "debit"}},
			want:   "remote_id=p1&amount=1.50&action=debit",
		},
		{
			name:   "values_not_escaped",
			params: Params{{"game", "slots & more"}, {"x", "a=b"}},
			want:   "game=slots & more&x=a=b",
		},
		{
			name:   "only_key",
			params: Params{{"key", "abc"}},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Canonical(tt.params); got != tt.want {
				t.Fatalf("want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSign_MD5MatchesProviderFormula(t *testing.T) {
	t.Parallel()

	v, err := New("s3cret", SchemeMD5)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	params := Params{{"remote_id", "p1"}, {"amount", "2.00"}}

	sum := md5.Sum([]byte("s3cret" + "remote_id=p1&amount=2.00")) //nolint:gosec
	want := hex.EncodeToString(sum[:])

	if got := v.Sign(params); got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	base := Params{{"callerId", "acme"}, {"remote_id", "p1"}, {"amount", "5.00"}, {"transaction_id", "tx-1"}}

	for _, scheme := range []Scheme{SchemeMD5, SchemeHMACSHA256} {
		v, err := New("s3cret", scheme)
		if err != nil {
			t.Fatalf("new(%s): %v", scheme, err)
		}

		signed := append(append(Params{}, base...), Param{KeyParam, v.Sign(base)})

		tests := []struct {
			name   string
			params Params
			want   bool
		}{
			{name: "valid", params: signed, want: true},
			{
				name:   "upper_case_hex",
				params: append(append(Params{}, base...), Param{KeyParam, strings.ToUpper(v.Sign(base))}),
				want:   true,
			},
			{name: "missing_key", params: base, want: false},
			{
				name:   "empty_key",
				params: append(append(Params{}, base...), Param{KeyParam, ""}),
				want:   false,
			},
			{
				name:   "tampered_amount",
				params: Params{{"callerId", "acme"}, {"remote_id", "p1"}, {"amount", "500.00"}, {"transaction_id", "tx-1"}, {KeyParam, v.Sign(base)}},
				want:   false,
			},
			{
				name:   "reordered_params",
				params: Params{{"remote_id", "p1"}, {"callerId", "acme"}, {"amount", "5.00"}, {"transaction_id", "tx-1"}, {KeyParam, v.Sign(base)}},
				want:   false,
			},
			{
				name:   "key_position_irrelevant",
				params: append(Params{{KeyParam, v.Sign(base)}}, base...),
				want:   true,
			},
		}

		for _, tt := range tests {
			t.Run(string(scheme)+"/"+tt.name, func(t *testing.T) {
				t.Parallel()

				if got := v.Verify(tt.params); got != tt.want {
					t.Fatalf("want %v, got %v", tt.want, got)
				}
			})
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	signer, _ := New("one", SchemeMD5)
	verifier, _ := New("two", SchemeMD5)

	params := Params{{"remote_id", "p1"}}
	params = append(params, Param{KeyParam, signer.Sign(params)})

	if verifier.Verify(params) {
		t.Fatalf("digest from another secret must not verify")
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New("", SchemeMD5)
	if err == nil {
		t.Fatalf("expected error for empty secret")
	}

	_, err = New("x", "sha1")
	if !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("want ErrUnknownScheme, got %v", err)
	}

	v, err := New("x", "")
	if err != nil {
		t.Fatalf("default scheme: %v", err)
	}

	if v.scheme != SchemeMD5 {
		t.Fatalf("default scheme: want md5, got %s", v.scheme)
	}
}
