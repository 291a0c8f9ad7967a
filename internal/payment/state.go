package payment

type State string

const (
	StateIdle               State = "IDLE"
	StateIntentRequested    State = "INTENT_REQUESTED"
	StateProviderConfirming State = "PROVIDER_CONFIRMING"
	StateBackendConfirming  State = "BACKEND_CONFIRMING"
	StateSucceeded          State = "SUCCEEDED"
	StateFailed             State = "FAILED"
	StateAlreadyPaid        State = "ALREADY_PAID"
)

func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateAlreadyPaid
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// CanTransitionTo encodes the orchestration graph. Failed is reachable
// from any non-terminal state; BackendConfirming is entered from Idle
// directly when the provider needs no intent (cash), or from
// ProviderConfirming otherwise, including on resume after a wallet
// redirect.
func CanTransitionTo(from, to State) bool {
	switch to {
	case StateIntentRequested:
		return from == StateIdle
	case StateProviderConfirming:
		return from == StateIntentRequested
	case StateBackendConfirming:
		return from == StateIdle || from == StateProviderConfirming
	case StateSucceeded:
		return from == StateBackendConfirming
	case StateAlreadyPaid:
		return from == StateIdle
	case StateFailed:
		return !from.IsTerminal()
	default:
		return false
	}
}
