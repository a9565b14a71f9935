package daemon

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"pohwd/internal/battery"
	"pohwd/internal/gate"
	"pohwd/internal/ipc"
	"pohwd/internal/ledger"
	"pohwd/internal/manifest"
)

// VerifyWork implements the daemon side of C7 step 3-4: the one IPC
// call the gate makes once its pre-check against Status() passes. It
// debits, solves the puzzle, and signs — or refunds the debit and
// reports PuzzleTimeout — so the caller only ever sees success or a
// fully rolled-back failure, never a partial state.
func (rt *Runtime) VerifyWork(req ipc.Request) ipc.VerifyWorkResponse {
	ctx, span := rt.tracer.Start(context.Background(), "gate.verify_work")
	defer span.End()
	start := time.Now()

	cost := gate.ComputeCost(req.Added, req.Removed, req.NCDCost)

	snap := rt.actor.Status()
	if t := rt.lastTick.Load(); t == nil {
		rt.metrics.CommitsRejected.WithLabelValues("SensorUnavailable").Inc()
		rt.audit.LogCommit(req.Tree, false, "SensorUnavailable")
		return ipc.VerifyWorkResponse{OK: false, Kind: "SensorUnavailable", Detail: "no analysis tick has completed yet"}
	} else if snap.State == battery.Degraded {
		rt.metrics.CommitsRejected.WithLabelValues("CausalityBroken").Inc()
		rt.audit.LogCommit(req.Tree, false, "CausalityBroken")
		return ipc.VerifyWorkResponse{OK: false, Kind: "CausalityBroken", Detail: "battery is in the Degraded state"}
	}

	debit := rt.actor.Debit(cost.TotalCost)
	if !debit.OK {
		rt.metrics.CommitsRejected.WithLabelValues("InsufficientEnergy").Inc()
		rt.audit.LogCommit(req.Tree, false, "InsufficientEnergy")
		return ipc.VerifyWorkResponse{OK: false, Kind: "InsufficientEnergy", Detail: "insufficient attention battery balance"}
	}

	t := rt.lastTick.Load()
	difficulty := manifest.DifficultyForCNS(t.cns, uint8(rt.difficultyMinBits.Load()), uint8(rt.difficultyMaxBits.Load()))

	m := manifest.Manifest{
		Version:        manifest.Version,
		CommitTreeHash: req.Tree,
		TimestampNs:    uint64(time.Now().UnixNano()),
		Metrics:        t.metrics,
		CNSScore:       t.cns,
		CreditsCharged: snap.Balance - debit.Balance, // informational; charge accrues independently of debit
		CreditsDebited: cost.TotalCost,
		DifficultyBits: difficulty,
	}

	maxPuzzle := time.Duration(rt.maxPuzzle.Load()) * time.Millisecond
	span.SetAttributes(attribute.Int("difficulty_bits", int(difficulty)), attribute.Float64("cost", cost.TotalCost))

	solved, err := gate.SolvePuzzle(m, maxPuzzle)
	rt.metrics.PuzzleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		rt.actor.Refund(cost.TotalCost)
		rt.metrics.CommitsRejected.WithLabelValues("PuzzleTimeout").Inc()
		rt.audit.LogCommit(req.Tree, false, "PuzzleTimeout")
		return ipc.VerifyWorkResponse{OK: false, Kind: "PuzzleTimeout", Detail: err.Error()}
	}

	signed := manifest.Sign(solved, rt.id)
	rt.audit.LogKeyAccess("sign_manifest", true)
	trailer := manifest.EncodeTrailer(signed)

	if err := rt.ledger.Append(ledger.Entry{
		CommitTreeHash: signed.CommitTreeHash,
		TimestampNs:    int64(signed.TimestampNs),
		CNSScore:       signed.CNSScore,
		CreditsCharged: signed.CreditsCharged,
		CreditsDebited: signed.CreditsDebited,
		ManifestSig:    signed.Signature,
	}); err != nil {
		rt.warner.Warn("ledger_append", "ledger append failed", "error", err)
	}

	rt.metrics.CommitsAccepted.Inc()
	rt.audit.LogCommit(req.Tree, true, "")
	_ = ctx
	return ipc.VerifyWorkResponse{OK: true, Trailer: trailer}
}
