package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pohwd/internal/battery"
	"pohwd/internal/entropy"
	"pohwd/internal/gate"
	"pohwd/internal/ring"
)

// linearJigglerSamples produces the exact path a mouse-jiggler
// device or script leaves: constant velocity along a straight line,
// perfectly regular timing.
func linearJigglerSamples(count int, totalSeconds float64) []ring.Sample {
	out := make([]ring.Sample, count)
	gapNs := int64(totalSeconds * 1e9 / float64(count))
	const k = 2
	for i := 0; i < count; i++ {
		t := int64(i) * gapNs
		out[i] = ring.Sample{T: t, X: int32(k * i), Y: int32(k * i), ButtonMask: 0}
	}
	return out
}

func TestJigglerAttackNeverCharges(t *testing.T) {
	buf := ring.New(8192)
	samples := linearJigglerSamples(2400, 120)
	for _, s := range samples {
		buf.Push(s)
	}

	engine, err := entropy.NewEngine(entropy.DefaultMinSamples, entropy.DefaultResampleHz)
	require.NoError(t, err)
	defer engine.Close()

	actor := battery.NewActor(battery.Credits{}, battery.DefaultMaxBattery, battery.DefaultCNSThreshold, 0, battery.DefaultMinCommitCost)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go actor.Run(ctx)

	var hwEvents uint64
	for i := 0; i < 24; i++ {
		window := entropy.Snapshot(buf, len(samples)/24*(i+1))
		m, cns, err := engine.Tick(window)
		if err != nil {
			continue
		}
		require.LessOrEqual(t, cns, uint8(25), "jiggler motion must not score a human-level CNS")
		require.Less(t, m.Burstiness, -0.5)
		require.Less(t, m.CurvatureEntropy, 0.5)

		hwEvents += uint64(m.SampleCount)
		actor.Charge(battery.ChargeRequest{
			CNS:         cns,
			HWEvents:    hwEvents,
			NowNs:       time.Now().UnixNano() + int64(i)*int64(time.Second),
			TickSeconds: 5,
		})
	}

	status := actor.Status()
	require.Equal(t, battery.Empty, status.State)
	require.Equal(t, 0.0, status.Balance)

	cost := gate.ComputeCost(10, 2, 0.1)
	debit := actor.Debit(cost.TotalCost)
	require.False(t, debit.OK, "verify-work must report InsufficientEnergy for a jiggler session")
}
