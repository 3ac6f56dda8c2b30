package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueThenValidate(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", 30*time.Minute).WithClock(func() time.Time { return now })

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now = now.Add(29 * time.Minute)
	sub, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate within ttl: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject = %q, want alice", sub)
	}

	now = now.Add(2 * time.Minute)
	if _, err := issuer.Validate(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestValidateRejectsForeignAndTamperedTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	foreign, err := other.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Validate(foreign); err == nil {
		t.Fatal("token signed with another secret accepted")
	}

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := issuer.Validate(tampered); err == nil {
		t.Fatal("tampered token accepted")
	}

	if _, err := issuer.Validate("garbage"); err == nil {
		t.Fatal("malformed token accepted")
	}
}

func TestValidateRequiresSubjectAndExpiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := noSubject.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := issuer.Validate(signed); err != ErrMissingSubject {
		t.Fatalf("err = %v, want ErrMissingSubject", err)
	}

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"})
	signed, err = noExpiry.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := issuer.Validate(signed); err == nil {
		t.Fatal("token without expiry accepted")
	}
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := issuer.Validate(signed); err == nil {
		t.Fatal("HS512 token accepted")
	}
}
