package password

import (
	"errors"
	"strings"
	"testing"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()

	// Minimum-cost parameters keep the test suite fast.
	h, err := NewHasher(Params{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := newTestHasher(t)

	encoded, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	ok, err := h.Verify("correct-horse", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = h.Verify("wrong-horse", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	h := newTestHasher(t)

	if _, err := h.Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestHashSaltsAreUnique(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	b, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t)

	cases := []string{
		"",
		"not-a-phc-string",
		"$argon2id$v=19$m=8192,t=1,p=1$salt",
		"$argon2id$v=19$m=bad$AAAA$BBBB",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!!$BBBB",
	}
	for _, encoded := range cases {
		if _, err := h.Verify("anything", encoded); !errors.Is(err, ErrHashMalformed) {
			t.Fatalf("hash %q: expected ErrHashMalformed, got %v", encoded, err)
		}
	}
}

func TestVerifyUnsupportedAlgorithm(t *testing.T) {
	h := newTestHasher(t)

	if _, err := h.Verify("x", "$argon2i$v=19$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"); !errors.Is(err, ErrHashUnsupported) {
		t.Fatalf("expected ErrHashUnsupported, got %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := newTestHasher(t)

	encoded, err := weak.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	same, err := weak.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if same {
		t.Fatal("hash produced with current params must not need rehash")
	}

	strong, err := NewHasher(DefaultParams())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	upgrade, err := strong.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if !upgrade {
		t.Fatal("weaker hash must need rehash under stronger params")
	}
}

func TestNewHasherValidation(t *testing.T) {
	cases := []struct {
		name string
		p    Params
	}{
		{"low memory", Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"zero time", Params{Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"zero parallelism", Params{Memory: 8192, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 16}},
		{"short salt", Params{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}},
		{"short key", Params{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		if _, err := NewHasher(tc.p); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
