package battery

import (
	"context"

	"pohwd/internal/causality"
)

// ChargeRequest asks the actor to apply one tick's charge rule.
type ChargeRequest struct {
	CNS          uint8
	HWEvents     uint64
	NowNs        int64
	TickSeconds  float64
	Resp         chan ChargeResult
}

type ChargeResult struct {
	Accepted bool
	Reason   string // "" | "below_threshold" | "causality_broken" | "stale_tick"
	State    State
	Balance  float64
}

// DebitRequest asks the actor to spend balance on a commit.
type DebitRequest struct {
	Cost float64
	Resp chan DebitResult
}

type DebitResult struct {
	OK      bool
	Balance float64
}

// Snapshot is the read-only view returned to status/MCP callers; it is
// produced by the actor itself, never read from shared memory, so the
// single-writer invariant holds for reads too.
type Snapshot struct {
	State   State
	Balance float64
	Credits Credits
}

type snapshotRequest struct {
	resp chan Snapshot
}

type shutdownRequest struct {
	resp chan Credits
}

type panicRequest struct {
	resp chan struct{}
}

// Actor owns all battery state. Every read or write is serialized
// through its inbox; nothing outside this goroutine ever touches
// credits or state directly.
type Actor struct {
	inbox chan interface{}

	state       State
	credits     Credits
	maxBattery  float64
	cnsThresh   uint8
	minHWDelta  uint64
	minCost     float64

	lowCNSStreak int
}

const degradedAfterLowCNSTicks = 3

func NewActor(initial Credits, maxBattery float64, cnsThreshold uint8, minHWDelta uint64, minCommitCost float64) *Actor {
	state := Empty
	if initial.Balance > 0 {
		state = Charging
		if initial.Balance >= minCommitCost {
			state = Charged
		}
		if initial.Balance >= maxBattery {
			state = Saturated
		}
	}
	return &Actor{
		inbox:      make(chan interface{}, 16),
		state:      state,
		credits:    initial,
		maxBattery: maxBattery,
		cnsThresh:  cnsThreshold,
		minHWDelta: minHWDelta,
		minCost:    minCommitCost,
	}
}

// Run drives the actor's message loop until ctx is cancelled. On
// cancellation it drains no further messages; callers must send a
// Shutdown request before cancelling ctx if they want the final state.
func (a *Actor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.inbox:
			a.handle(msg)
		}
	}
}

func (a *Actor) handle(msg interface{}) {
	switch m := msg.(type) {
	case ChargeRequest:
		m.Resp <- a.charge(m)
	case DebitRequest:
		m.Resp <- a.debit(m)
	case snapshotRequest:
		m.resp <- Snapshot{State: a.state, Balance: a.credits.Balance, Credits: a.credits}
	case shutdownRequest:
		m.resp <- a.credits
	case panicRequest:
		a.forceDegraded()
		close(m.resp)
	}
}

// forceDegraded drives the state machine to Degraded regardless of
// the current state, via evPanic. It is the only transition that
// applies from every state, including ones with no other outgoing
// edge to Degraded.
func (a *Actor) forceDegraded() {
	if ns, ok := next(a.state, evPanic); ok {
		a.state = ns
		return
	}
	a.state = Degraded
}

func (a *Actor) charge(req ChargeRequest) ChargeResult {
	if req.CNS < a.cnsThresh {
		a.lowCNSStreak++
		if a.lowCNSStreak >= degradedAfterLowCNSTicks {
			a.state = Degraded
		}
		return ChargeResult{Accepted: false, Reason: "below_threshold", State: a.state, Balance: a.credits.Balance}
	}
	a.lowCNSStreak = 0

	if !causality.Check(req.HWEvents, a.credits.LastHWCounter, a.minHWDelta) {
		a.state = Degraded
		return ChargeResult{Accepted: false, Reason: "causality_broken", State: a.state, Balance: a.credits.Balance}
	}

	// Charges are monotonic by last_charge_ns.
	if req.NowNs <= a.credits.LastChargeNs {
		return ChargeResult{Accepted: false, Reason: "stale_tick", State: a.state, Balance: a.credits.Balance}
	}

	tick := req.TickSeconds
	if tick <= 0 {
		tick = DefaultTickSeconds
	}
	delta := tick * (float64(req.CNS) / 100.0) * (1 - a.credits.Balance/a.maxBattery)
	a.credits.Balance += delta
	if a.credits.Balance < 0 {
		a.credits.Balance = 0
	}
	if a.credits.Balance > a.maxBattery {
		a.credits.Balance = a.maxBattery
	}
	a.credits.LastChargeNs = req.NowNs
	a.credits.LastHWCounter = req.HWEvents

	a.advanceOnCharge()

	return ChargeResult{Accepted: true, State: a.state, Balance: a.credits.Balance}
}

func (a *Actor) advanceOnCharge() {
	if a.state == Empty {
		if ns, ok := next(Empty, evChargeAboveThreshold); ok {
			a.state = ns
		}
	}
	if a.credits.Balance >= a.maxBattery {
		if ns, ok := next(a.state, evSaturated); ok {
			a.state = ns
		}
		return
	}
	if a.state == Charging && a.credits.Balance >= a.minCost {
		if ns, ok := next(Charging, evBalanceAboveMinCost); ok {
			a.state = ns
		}
	}
}

func (a *Actor) debit(req DebitRequest) DebitResult {
	if req.Cost > 0 && a.credits.Balance < req.Cost {
		return DebitResult{OK: false, Balance: a.credits.Balance}
	}
	a.credits.Balance -= req.Cost
	if a.credits.Balance < 0 {
		a.credits.Balance = 0
	}
	if a.credits.Balance > a.maxBattery {
		a.credits.Balance = a.maxBattery
	}
	if a.credits.Balance < a.minCost && a.state != Degraded {
		a.state = Charging
	}
	return DebitResult{OK: true, Balance: a.credits.Balance}
}

// Charge sends a synchronous charge request and waits for the result.
func (a *Actor) Charge(req ChargeRequest) ChargeResult {
	req.Resp = make(chan ChargeResult, 1)
	a.inbox <- req
	return <-req.Resp
}

// Debit sends a synchronous debit request and waits for the result.
func (a *Actor) Debit(cost float64) DebitResult {
	resp := make(chan DebitResult, 1)
	a.inbox <- DebitRequest{Cost: cost, Resp: resp}
	return <-resp
}

// Refund restores balance previously removed by Debit, for callers
// that must undo a debit when downstream work (the commit-gate
// puzzle) times out after the debit already landed. It is implemented
// as a debit request carrying a negative cost so it goes
// through the same serialized inbox as every other balance mutation.
func (a *Actor) Refund(amount float64) {
	resp := make(chan DebitResult, 1)
	a.inbox <- DebitRequest{Cost: -amount, Resp: resp}
	<-resp
}

// Status returns the current snapshot.
func (a *Actor) Status() Snapshot {
	resp := make(chan Snapshot, 1)
	a.inbox <- snapshotRequest{resp: resp}
	return <-resp
}

// Shutdown requests the final credits for persistence.
func (a *Actor) Shutdown() Credits {
	resp := make(chan Credits, 1)
	a.inbox <- shutdownRequest{resp: resp}
	return <-resp
}

// Panic drives the battery to Degraded in response to a panic
// recovered in some other task goroutine. Safe to call as long as
// Run is still draining the inbox, which holds for every caller
// except the actor's own goroutine recovering from its own panic.
func (a *Actor) Panic() {
	resp := make(chan struct{}, 1)
	a.inbox <- panicRequest{resp: resp}
	<-resp
}

// ForceDegradedUnsynchronized sets the state to Degraded without
// going through the inbox. It exists solely for the actor's own
// goroutine to call on itself immediately after recovering from a
// panic inside Run, at which point nothing else is draining the
// inbox to service a normal Panic() call. Callers must restart Run
// afterward to resume serving requests.
func (a *Actor) ForceDegradedUnsynchronized() {
	a.forceDegraded()
}
