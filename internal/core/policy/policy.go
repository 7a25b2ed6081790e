// Package policy is the confidence gate applied before a recommendation is sent
package policy

// Decision is the gate outcome
type Decision uint8

const (
	// Send notifies normally
	Send Decision = iota
	// Warn notifies with a low-confidence title
	Warn
	// Drop discards the event without notifying
	Drop
)

func (d Decision) String() string {
	switch d {
	case Send:
		return "send"
	case Warn:
		return "warn"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

// Gate holds the two thresholds; Min drops, Low only annotates
type Gate struct {
	Min float64
	Low float64
}

// Decide applies the gate. A nil score never drops and never warns
func (g Gate) Decide(score *float64) Decision {
	if score == nil {
		return Send
	}
	switch s := *score; {
	case s < g.Min:
		return Drop
	case s < g.Low:
		return Warn
	default:
		return Send
	}
}

// Inverted reports thresholds under which Warn can never be returned
func (g Gate) Inverted() bool { return g.Low <= g.Min }
