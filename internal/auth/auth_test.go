package auth

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	secret := []byte("s3cret")
	want := Identity{
		ID:        "u1",
		Email:     "ada@example.com",
		Name:      "Ada",
		CreatedBy: "admin",
		IsAdmin:   true,
		Position:  "Lead",
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
	token, err := Encode(want, secret)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(token, secret, now)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("identity mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsBadTokens(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	secret := []byte("s3cret")
	valid, err := Encode(Identity{ID: "u1"}, secret)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	expired, err := Encode(Identity{ID: "u1", ExpiresAt: now.Add(-time.Minute).Unix()}, secret)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	body, _, _ := strings.Cut(valid, ".")

	cases := map[string]struct {
		token  string
		secret []byte
	}{
		"empty":        {token: "", secret: secret},
		"no signature": {token: body, secret: secret},
		"wrong secret": {token: valid, secret: []byte("other")},
		"tampered":     {token: "e30." + strings.SplitN(valid, ".", 2)[1], secret: secret},
		"garbage":      {token: "!!.??", secret: secret},
		"expired":      {token: expired, secret: secret},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(tc.token, tc.secret, now); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$v=19$") {
		t.Fatalf("unexpected hash format %q", hash)
	}
	if err := VerifyPassword(hash, "hunter2"); err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if err := VerifyPassword(hash, "hunter3"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := VerifyPassword("plain", "hunter2"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
	other, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if other == hash {
		t.Fatal("expected distinct salts")
	}
}

func TestCredentialFile(t *testing.T) {
	f := CredentialFile{Path: filepath.Join(t.TempDir(), "nested", "credentials")}
	if _, err := f.Load(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	if err := f.Save("tok.sig"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := f.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != "tok.sig" {
		t.Fatalf("expected stored token, got %q", got)
	}
	if err := f.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := f.Remove(); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}
	if _, err := f.Load(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn after remove, got %v", err)
	}
}
