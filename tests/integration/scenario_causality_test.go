package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pohwd/internal/battery"
)

// TestCausalitySpoofDegradesBattery simulates samples landing in the
// ring buffer (and a high CNS score attached to them) without any
// matching growth in the hardware-event counter — exactly what a
// synthetic event injector bypassing the kernel would produce.
func TestCausalitySpoofDegradesBattery(t *testing.T) {
	actor := battery.NewActor(battery.Credits{}, battery.DefaultMaxBattery, battery.DefaultCNSThreshold, 30, battery.DefaultMinCommitCost)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go actor.Run(ctx)

	const spoofedHWEvents = 1 // far below MinHWDelta=30 on every tick

	var lastResult battery.ChargeResult
	for i := 0; i < 5; i++ {
		lastResult = actor.Charge(battery.ChargeRequest{
			CNS:         90,
			HWEvents:    spoofedHWEvents,
			NowNs:       time.Now().UnixNano() + int64(i)*int64(time.Second),
			TickSeconds: 5,
		})
		require.False(t, lastResult.Accepted)
	}

	require.Equal(t, "causality_broken", lastResult.Reason)
	status := actor.Status()
	require.Equal(t, battery.Degraded, status.State)
	require.Equal(t, 0.0, status.Balance)
}
