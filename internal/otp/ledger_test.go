package otp

import (
	"errors"
	"testing"
	"time"
)

func newTestLedger() *Ledger {
	return NewLedger(5*time.Minute, 10*time.Minute)
}

func TestIssueAndVerify(t *testing.T) {
	ledger := newTestLedger()
	defer ledger.Stop()

	code, err := ledger.Issue("a@b.com", ChannelEmail)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if len(code) != 6 {
		t.Errorf("Expected 6-digit code, got %q", code)
	}

	if ledger.IsVerified("a@b.com", ChannelEmail) {
		t.Error("Expected not verified before Verify")
	}

	if err := ledger.Verify("a@b.com", ChannelEmail, code); err != nil {
		t.Errorf("Expected verify to succeed, got %v", err)
	}
	if !ledger.IsVerified("a@b.com", ChannelEmail) {
		t.Error("Expected verified after successful Verify")
	}

	// Repetir Verify con el mismo código sigue siendo éxito
	if err := ledger.Verify("a@b.com", ChannelEmail, code); err != nil {
		t.Errorf("Expected repeat verify to succeed, got %v", err)
	}
}

func TestVerifyWithoutRequest(t *testing.T) {
	ledger := newTestLedger()
	defer ledger.Stop()

	err := ledger.Verify("nobody@b.com", ChannelEmail, "123456")
	if !errors.Is(err, ErrNotRequested) {
		t.Errorf("Expected ErrNotRequested, got %v", err)
	}

	// Canal sin desafío aunque el otro canal tenga uno
	if _, err := ledger.Issue("a@b.com", ChannelEmail); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	err = ledger.Verify("a@b.com", ChannelPhone, "123456")
	if !errors.Is(err, ErrNotRequested) {
		t.Errorf("Expected ErrNotRequested for phone channel, got %v", err)
	}
}

func TestVerifyMismatch(t *testing.T) {
	ledger := newTestLedger()
	defer ledger.Stop()

	code, err := ledger.Issue("a@b.com", ChannelEmail)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if err := ledger.Verify("a@b.com", ChannelEmail, wrong); !errors.Is(err, ErrMismatch) {
		t.Errorf("Expected ErrMismatch, got %v", err)
	}
	if ledger.IsVerified("a@b.com", ChannelEmail) {
		t.Error("Expected not verified after mismatch")
	}

	// El desafío sigue vivo tras un mismatch
	if err := ledger.Verify("a@b.com", ChannelEmail, code); err != nil {
		t.Errorf("Expected verify with correct code to succeed, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	ledger := newTestLedger()
	defer ledger.Stop()

	code, err := ledger.Issue("a@b.com", ChannelEmail)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Adelantar el reloj más allá del TTL
	ledger.now = func() time.Time { return time.Now().Add(6 * time.Minute) }

	if err := ledger.Verify("a@b.com", ChannelEmail, code); !errors.Is(err, ErrExpired) {
		t.Errorf("Expected ErrExpired, got %v", err)
	}

	// El slot expirado fue evictado: el siguiente intento es NotRequested
	if err := ledger.Verify("a@b.com", ChannelEmail, code); !errors.Is(err, ErrNotRequested) {
		t.Errorf("Expected ErrNotRequested after eviction, got %v", err)
	}

	// Un Issue fresco funciona de manera independiente
	ledger.now = time.Now
	fresh, err := ledger.Issue("a@b.com", ChannelEmail)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := ledger.Verify("a@b.com", ChannelEmail, fresh); err != nil {
		t.Errorf("Expected fresh verify to succeed, got %v", err)
	}
}

func TestReissueInvalidatesOldCode(t *testing.T) {
	ledger := newTestLedger()
	defer ledger.Stop()

	old, err := ledger.Issue("a@b.com", ChannelEmail)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var fresh string
	// Reintentar hasta obtener un código distinto (colisión 1/900000 por intento)
	for i := 0; i < 10; i++ {
		fresh, err = ledger.Issue("a@b.com", ChannelEmail)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if fresh != old {
			break
		}
	}
	if fresh == old {
		t.Skip("could not obtain a distinct code")
	}

	if err := ledger.Verify("a@b.com", ChannelEmail, old); !errors.Is(err, ErrMismatch) {
		t.Errorf("Expected ErrMismatch for superseded code, got %v", err)
	}
	if err := ledger.Verify("a@b.com", ChannelEmail, fresh); err != nil {
		t.Errorf("Expected verify with fresh code to succeed, got %v", err)
	}
}

func TestChannelsAreIndependent(t *testing.T) {
	ledger := newTestLedger()
	defer ledger.Stop()

	emailCode, _ := ledger.Issue("a@b.com", ChannelEmail)
	phoneCode, _ := ledger.Issue("a@b.com", ChannelPhone)

	if err := ledger.Verify("a@b.com", ChannelEmail, emailCode); err != nil {
		t.Fatalf("email verify failed: %v", err)
	}
	if ledger.IsVerified("a@b.com", ChannelPhone) {
		t.Error("Expected phone channel not verified yet")
	}

	if err := ledger.Verify("a@b.com", ChannelPhone, phoneCode); err != nil {
		t.Fatalf("phone verify failed: %v", err)
	}
	if !ledger.IsVerified("a@b.com", ChannelEmail) || !ledger.IsVerified("a@b.com", ChannelPhone) {
		t.Error("Expected both channels verified")
	}
}

func TestEvict(t *testing.T) {
	ledger := newTestLedger()
	defer ledger.Stop()

	code, _ := ledger.Issue("a@b.com", ChannelEmail)
	if err := ledger.Verify("a@b.com", ChannelEmail, code); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	ledger.Evict("a@b.com")
	if ledger.IsVerified("a@b.com", ChannelEmail) {
		t.Error("Expected not verified after Evict")
	}
	if ledger.Count() != 0 {
		t.Errorf("Expected empty ledger, got %d entries", ledger.Count())
	}
}

func TestSweepKeepsVerifiedChallenges(t *testing.T) {
	ledger := newTestLedger()
	defer ledger.Stop()

	code, _ := ledger.Issue("a@b.com", ChannelEmail)
	if err := ledger.Verify("a@b.com", ChannelEmail, code); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	ledger.Issue("stale@b.com", ChannelPhone)

	ledger.now = func() time.Time { return time.Now().Add(time.Hour) }
	ledger.deleteExpired()

	if !ledger.IsVerified("a@b.com", ChannelEmail) {
		t.Error("Expected verified challenge to survive the sweep")
	}
	if ledger.Count() != 1 {
		t.Errorf("Expected stale unverified entry to be swept, got %d entries", ledger.Count())
	}
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generateCode failed: %v", err)
		}
		if len(code) != 6 || code[0] == '0' {
			t.Fatalf("Expected code in 100000-999999, got %q", code)
		}
	}
}
