// Package integration exercises pohwd's core components wired
// together the way the daemon wires them, without a running process
// or sockets: it drives the ring buffer, entropy engine, and battery
// actor directly and checks the same properties a live daemon would
// need to satisfy.
package integration

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pohwd/internal/battery"
	"pohwd/internal/entropy"
	"pohwd/internal/gate"
	"pohwd/internal/ring"
)

// jitteredCurvilinearSamples produces a synthetic human-like path:
// a slow curving drift with per-sample jitter and irregular timing,
// the shape a real trackpad/mouse session leaves behind.
func jitteredCurvilinearSamples(seed int64, count int, totalSeconds float64) []ring.Sample {
	r := rand.New(rand.NewSource(seed))
	out := make([]ring.Sample, count)
	avgGapNs := int64(totalSeconds * 1e9 / float64(count))
	var t int64
	var x, y float64
	for i := 0; i < count; i++ {
		gap := avgGapNs + int64(r.NormFloat64()*float64(avgGapNs)/3)
		if gap < 0 {
			gap = avgGapNs / 4
		}
		t += gap
		angle := float64(i) * 0.05
		x += math.Cos(angle)*3 + r.NormFloat64()*1.5
		y += math.Sin(angle)*3 + r.NormFloat64()*1.5
		out[i] = ring.Sample{T: t, X: int32(x), Y: int32(y), ButtonMask: 0}
	}
	return out
}

func TestHumanSessionSmallCommit(t *testing.T) {
	buf := ring.New(4096)
	samples := jitteredCurvilinearSamples(1, 1000, 60)
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

	var lastCNS uint8
	var hwEvents uint64
	for i := 0; i < 12; i++ {
		window := entropy.Snapshot(buf, len(samples)/12*(i+1))
		m, cns, err := engine.Tick(window)
		if err != nil {
			continue
		}
		lastCNS = cns
		hwEvents += uint64(m.SampleCount)
		actor.Charge(battery.ChargeRequest{
			CNS:         cns,
			HWEvents:    hwEvents,
			NowNs:       time.Now().UnixNano() + int64(i)*int64(time.Second),
			TickSeconds: 5,
		})
	}

	status := actor.Status()
	require.GreaterOrEqualf(t, status.Balance, 60.0, "balance should reach at least 60 credit-seconds after a human session, got %.2f", status.Balance)
	require.GreaterOrEqual(t, lastCNS, uint8(55))

	cost := gate.ComputeCost(10, 2, 0.1)
	require.Less(t, cost.TotalCost, status.Balance)

	debit := actor.Debit(cost.TotalCost)
	require.True(t, debit.OK)
}
