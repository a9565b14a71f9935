package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pohwd/internal/battery"
	"pohwd/internal/gate"
	"pohwd/internal/manifest"
)

// TestPuzzleTimeoutRollsBackDebit reproduces the daemon's VerifyWork
// sequence directly: debit, attempt the puzzle under an unreasonably
// tight budget, and refund on timeout, checking the battery balance
// is exactly as if the debit had never happened.
func TestPuzzleTimeoutRollsBackDebit(t *testing.T) {
	actor := battery.NewActor(battery.Credits{Balance: 50}, battery.DefaultMaxBattery, battery.DefaultCNSThreshold, 30, battery.DefaultMinCommitCost)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go actor.Run(ctx)

	before := actor.Status().Balance

	cost := gate.ComputeCost(40, 10, 0.2)
	debit := actor.Debit(cost.TotalCost)
	require.True(t, debit.OK)
	require.Less(t, actor.Status().Balance, before)

	m := manifest.Manifest{
		Version:        manifest.Version,
		CommitTreeHash: "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		TimestampNs:    uint64(time.Now().UnixNano()),
		CNSScore:       51,
		DifficultyBits: manifest.DifficultyForCNS(51, 10, 30),
	}
	require.Equal(t, uint8(30), m.DifficultyBits, "difficulty_max_bits=30 must apply at cns=51")

	_, err := gate.SolvePuzzle(m, 200*time.Millisecond)
	require.ErrorIs(t, err, gate.ErrPuzzleTimeout)

	actor.Refund(cost.TotalCost)
	require.InDelta(t, before, actor.Status().Balance, 1e-9)
}
