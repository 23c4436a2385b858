package checkout

// Step is the position of a flow in the checkout sequence.
type Step int

const (
	StepShipping Step = iota
	StepPayment
	StepReview
	StepConfirmed
)

var stepNames = [...]string{"shipping", "payment", "review", "confirmed"}

func (s Step) String() string {
	if s < StepShipping || s > StepConfirmed {
		return "unknown"
	}
	return stepNames[s]
}

func (s Step) IsTerminal() bool {
	return s == StepConfirmed
}

// CanTransitionTo reports whether the state machine has an edge from -> to. Guards
// (shipping validity, loading) are checked separately by Flow.
func CanTransitionTo(from, to Step) bool {
	switch from {
	case StepShipping:
		return to == StepPayment
	case StepPayment:
		return to == StepReview || to == StepShipping
	case StepReview:
		return to == StepConfirmed || to == StepPayment
	}
	return false
}
