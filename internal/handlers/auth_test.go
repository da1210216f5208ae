package handlers

import (
	"testing"
	"time"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"USER@Example.COM", "user@example.com"},
		{"  plain@mail.com  ", "plain@mail.com"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeEmail(tc.in); got != tc.want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	setupMu.Lock()
	jwtSecret = []byte("test-secret-0123456789abcdef0123456789")
	setupMu.Unlock()

	token, expires, err := IssueToken(42, "citizen@example.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("token already expired: %v", expires)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "42" {
		t.Errorf("subject = %q, want 42", claims.Subject)
	}
	if claims.Email != "citizen@example.com" {
		t.Errorf("email = %q, want citizen@example.com", claims.Email)
	}
}

func TestParseTokenRejectsTampered(t *testing.T) {
	setupMu.Lock()
	jwtSecret = []byte("test-secret-0123456789abcdef0123456789")
	setupMu.Unlock()

	token, _, err := IssueToken(7, "someone@example.com")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := ParseToken(tampered); err == nil {
		t.Fatal("expected error for tampered signature")
	}

	if _, err := ParseToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestZoneRegNumber(t *testing.T) {
	cases := []struct {
		zone string
		want string
		ok   bool
	}{
		{"Zone 7", "07", true},
		{"Zone 10", "10", true},
		{"  Zone 1  ", "01", true},
		{"Zone", "", false},
		{"Zone North", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ZoneRegNumber(tc.zone)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ZoneRegNumber(%q) = (%q, %v), want (%q, %v)", tc.zone, got, ok, tc.want, tc.ok)
		}
	}
}

func TestValidRegNumbers(t *testing.T) {
	for _, n := range []string{"01", "05", "10"} {
		if !validRegNumbers[n] {
			t.Errorf("expected %q to be a valid registration number", n)
		}
	}
	for _, n := range []string{"00", "11", "1", ""} {
		if validRegNumbers[n] {
			t.Errorf("expected %q to be rejected", n)
		}
	}
}
