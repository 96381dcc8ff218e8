package schedule

// Reason is a machine-readable denial cause, surfaced to callers verbatim.
type Reason string

const (
	ReasonNotCreator        Reason = "not_creator"
	ReasonNotAudience       Reason = "not_audience"
	ReasonInvalidTransition Reason = "invalid_transition"
	ReasonItemTerminal      Reason = "item_terminal"
)

// Decision is the outcome of an authorization evaluation. A denial is a
// normal result, not an error.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow grants the action.
func Allow() Decision { return Decision{Allowed: true} }

// Deny refuses the action with a machine-readable reason.
func Deny(r Reason) Decision { return Decision{Reason: r} }

// Denied reports whether the action was refused.
func (d Decision) Denied() bool { return !d.Allowed }

// Outcome returns a metrics-friendly label for the decision.
func (d Decision) Outcome() string {
	if d.Allowed {
		return "allow"
	}
	return "deny_" + string(d.Reason)
}
