package integration

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pohwd/internal/battery"
)

func TestDaemonRestartPreservesBalance(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "battery.bin")

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sign := func(msg []byte) []byte { return ed25519.Sign(priv, msg) }

	credits := battery.Credits{Balance: 120, LastHWCounter: 4096, LastChargeNs: time.Now().UnixNano()}
	require.NoError(t, battery.Persist(path, credits, time.Now().UnixNano(), sign))

	loaded, _, err := battery.Load(path, pub)
	require.NoError(t, err)
	require.InDelta(t, 120, loaded.Balance, 5)

	actor := battery.NewActor(loaded, battery.DefaultMaxBattery, battery.DefaultCNSThreshold, 30, battery.DefaultMinCommitCost)
	status := actor.Status()
	require.Equal(t, battery.Charged, status.State)
}

func TestCorruptBatterySignatureResetsToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "battery.bin")

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sign := func(msg []byte) []byte { return ed25519.Sign(priv, msg) }

	credits := battery.Credits{Balance: 120, LastHWCounter: 4096}
	require.NoError(t, battery.Persist(path, credits, time.Now().UnixNano(), sign))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	corrupt := make([]byte, len(raw))
	copy(corrupt, raw)
	corrupt[len(corrupt)-1] ^= 0xFF // corrupt the last signature byte
	require.NoError(t, os.WriteFile(path, corrupt, 0o600))

	_, _, err = battery.Load(path, pub)
	require.ErrorIs(t, err, battery.ErrCorruptState)

	// The daemon's own fallback: on a load error it starts from Empty.
	actor := battery.NewActor(battery.Credits{}, battery.DefaultMaxBattery, battery.DefaultCNSThreshold, 30, battery.DefaultMinCommitCost)
	status := actor.Status()
	require.Equal(t, battery.Empty, status.State)
	require.Equal(t, 0.0, status.Balance)
}
