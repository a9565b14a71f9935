package battery

import (
	"crypto/ed25519"
	"crypto/rand"
	"path/filepath"
	"testing"
)

func TestChargeRejectedBelowThreshold(t *testing.T) {
	a := NewActor(Credits{}, DefaultMaxBattery, 50, 30, 1.0)
	go a.Run(testCtx(t))

	res := a.Charge(ChargeRequest{CNS: 20, HWEvents: 100, NowNs: 1, TickSeconds: 5})
	if res.Accepted {
		t.Fatalf("expected charge rejected below threshold")
	}
	if res.Reason != "below_threshold" {
		t.Fatalf("expected below_threshold reason, got %q", res.Reason)
	}
}

func TestChargeRejectedOnCausalityBreak(t *testing.T) {
	a := NewActor(Credits{LastHWCounter: 1000}, DefaultMaxBattery, 50, 30, 1.0)
	go a.Run(testCtx(t))

	res := a.Charge(ChargeRequest{CNS: 80, HWEvents: 1010, NowNs: 1, TickSeconds: 5})
	if res.Accepted {
		t.Fatalf("expected charge rejected on causality break (delta 10 < 30)")
	}
	if res.State != Degraded {
		t.Fatalf("expected Degraded state, got %s", res.State)
	}
}

func TestChargeAcceptedAndSaturates(t *testing.T) {
	a := NewActor(Credits{}, 100, 50, 30, 1.0)
	go a.Run(testCtx(t))

	var hw uint64 = 30
	var now int64 = 1
	for i := 0; i < 50; i++ {
		res := a.Charge(ChargeRequest{CNS: 90, HWEvents: hw, NowNs: now, TickSeconds: 5})
		if !res.Accepted {
			t.Fatalf("tick %d: expected accepted, reason=%s", i, res.Reason)
		}
		hw += 30
		now++
	}
	status := a.Status()
	if status.State != Saturated {
		t.Fatalf("expected Saturated after many high-CNS ticks, got %s", status.State)
	}
	if status.Balance > 100 {
		t.Fatalf("balance must clamp to max battery, got %f", status.Balance)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	a := NewActor(Credits{Balance: 5}, DefaultMaxBattery, 50, 30, 1.0)
	go a.Run(testCtx(t))

	res := a.Debit(10)
	if res.OK {
		t.Fatalf("expected debit to fail when balance insufficient")
	}
	if res.Balance != 5 {
		t.Fatalf("expected balance unchanged on failed debit, got %f", res.Balance)
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "battery.bin")
	c := Credits{Balance: 120, LastHWCounter: 900}
	if err := Persist(path, c, 42, func(b []byte) []byte { return ed25519.Sign(priv, b) }); err != nil {
		t.Fatal(err)
	}
	loaded, ts, err := Load(path, pub)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Balance != 120 || loaded.LastHWCounter != 900 || ts != 42 {
		t.Fatalf("round-trip mismatch: %+v ts=%d", loaded, ts)
	}
}

func TestLoadRejectsTamperedSignature(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "battery.bin")
	if err := Persist(path, Credits{Balance: 10}, 1, func(b []byte) []byte { return ed25519.Sign(priv, b) }); err != nil {
		t.Fatal(err)
	}
	other, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path, other); err != ErrCorruptState {
		t.Fatalf("expected ErrCorruptState with wrong pubkey, got %v", err)
	}
}

func TestPanicForcesDegradedFromAnyState(t *testing.T) {
	for _, initial := range []State{Empty, Charging, Charged, Saturated} {
		a := NewActor(Credits{}, DefaultMaxBattery, 50, 30, 1.0)
		a.state = initial
		go a.Run(testCtx(t))

		a.Panic()

		if got := a.Status().State; got != Degraded {
			t.Fatalf("from %s: expected Degraded after Panic, got %s", initial, got)
		}
	}
}

func TestForceDegradedUnsynchronizedIsIdempotent(t *testing.T) {
	a := NewActor(Credits{Balance: 50}, DefaultMaxBattery, 50, 30, 1.0)
	a.ForceDegradedUnsynchronized()
	if a.state != Degraded {
		t.Fatalf("expected Degraded, got %s", a.state)
	}
	a.ForceDegradedUnsynchronized()
	if a.state != Degraded {
		t.Fatalf("expected Degraded to stay Degraded, got %s", a.state)
	}
}
