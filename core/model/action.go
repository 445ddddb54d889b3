package model

import "fmt"

// ActionKind enumerates what a broker may do in one timeslot.
type ActionKind int

const (
	NoOp ActionKind = iota
	Publish
	Revoke
)

// String returns a human-readable representation of the action kind.
func (k ActionKind) String() string {
	switch k {
	case NoOp:
		return "noop"
	case Publish:
		return "publish"
	case Revoke:
		return "revoke"
	default:
		return "unknown"
	}
}

// Action is a candidate decision. Tariff is nil for NoOp.
type Action struct {
	Kind   ActionKind  `json:"kind"`
	Tariff *TariffSpec `json:"tariff,omitempty"`
}

// NoOpAction returns the "do nothing" action.
func NoOpAction() Action { return Action{Kind: NoOp} }

// PublishAction wraps a spec to publish.
func PublishAction(t *TariffSpec) Action { return Action{Kind: Publish, Tariff: t} }

// RevokeAction wraps a spec to revoke.
func RevokeAction(t *TariffSpec) Action { return Action{Kind: Revoke, Tariff: t} }

// IsNoOp reports whether the action does nothing.
func (a Action) IsNoOp() bool { return a.Kind == NoOp }

// String implements fmt.Stringer.
func (a Action) String() string {
	if a.Tariff == nil {
		return a.Kind.String()
	}
	return fmt.Sprintf("%s %s", a.Kind, a.Tariff)
}
