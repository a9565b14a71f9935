// Package battery implements the Attention Battery (C5): a
// single-actor thermodynamic accounting loop that converts validated
// human activity into a signed energy balance, debited by commit
// complexity.
package battery

import "fmt"

type State int

const (
	Empty State = iota
	Charging
	Charged
	Saturated
	Degraded
)

func (s State) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Charging:
		return "Charging"
	case Charged:
		return "Charged"
	case Saturated:
		return "Saturated"
	case Degraded:
		return "Degraded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	DefaultMaxBattery     = 600.0
	DefaultCNSThreshold   = 50
	DefaultMinCommitCost  = 1.0
	DefaultTickSeconds    = 5.0
)

// Credits is the serializable attention-credit ledger. Signature is
// filled in by Load from the state file; Persist signs the other
// fields afresh and does not read it.
type Credits struct {
	Balance       float64
	LastChargeNs  int64
	LastHWCounter uint64
	Signature     [64]byte
}

// transitions is the explicit state-transition table: given the
// current state and an event, the next state. Charging/debit rules
// that don't change state are applied by the caller; this table only
// covers state changes.
var transitions = map[State]map[event]State{
	Empty: {
		evChargeAboveThreshold: Charging,
		evPanic:                Degraded,
	},
	Charging: {
		evBalanceAboveMinCost: Charged,
		evSaturated:           Saturated,
		evCausalityBroken:     Degraded,
		evSustainedLowCNS:     Degraded,
		evPanic:               Degraded,
	},
	Charged: {
		evSaturated:       Saturated,
		evCausalityBroken: Degraded,
		evSustainedLowCNS: Degraded,
		evPanic:           Degraded,
	},
	Saturated: {
		evCausalityBroken: Degraded,
		evSustainedLowCNS: Degraded,
		evPanic:           Degraded,
	},
	Degraded: {},
}

type event int

const (
	evChargeAboveThreshold event = iota
	evBalanceAboveMinCost
	evSaturated
	evCausalityBroken
	evSustainedLowCNS
	// evPanic forces Degraded from any state: a task goroutine's
	// recovered panic means its invariants can no longer be trusted.
	evPanic
)

func next(s State, e event) (State, bool) {
	m, ok := transitions[s]
	if !ok {
		return s, false
	}
	ns, ok := m[e]
	return ns, ok
}
