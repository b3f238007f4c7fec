package enums

import "fmt"

// NegotiationState names the node a negotiation workflow currently sits on.
type NegotiationState string

const (
	NegotiationStateWaitingFirstMove  NegotiationState = "waiting_first_move"
	NegotiationStateAwaitingArtist    NegotiationState = "awaiting_artist"
	NegotiationStateAwaitingOrganizer NegotiationState = "awaiting_organizer"
	NegotiationStateAccepted          NegotiationState = "accepted"
	NegotiationStateDeclined          NegotiationState = "declined"
)

var validNegotiationStates = []NegotiationState{
	NegotiationStateWaitingFirstMove,
	NegotiationStateAwaitingArtist,
	NegotiationStateAwaitingOrganizer,
	NegotiationStateAccepted,
	NegotiationStateDeclined,
}

func (n NegotiationState) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NegotiationState.
func (n NegotiationState) IsValid() bool {
	for _, candidate := range validNegotiationStates {
		if candidate == n {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the negotiation reached accept or decline.
func (n NegotiationState) IsTerminal() bool {
	return n == NegotiationStateAccepted || n == NegotiationStateDeclined
}

// ParseNegotiationState converts raw input into a NegotiationState.
func ParseNegotiationState(value string) (NegotiationState, error) {
	for _, candidate := range validNegotiationStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid negotiation state %q", value)
}

// NegotiationAction tags entries in the append-only negotiation history log.
type NegotiationAction string

const (
	NegotiationActionOffered        NegotiationAction = "offered"
	NegotiationActionCounterOffered NegotiationAction = "counter_offered"
	NegotiationActionAccepted       NegotiationAction = "accepted"
	NegotiationActionDeclined       NegotiationAction = "declined"
)

var validNegotiationActions = []NegotiationAction{
	NegotiationActionOffered,
	NegotiationActionCounterOffered,
	NegotiationActionAccepted,
	NegotiationActionDeclined,
}

func (n NegotiationAction) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NegotiationAction.
func (n NegotiationAction) IsValid() bool {
	for _, candidate := range validNegotiationActions {
		if candidate == n {
			return true
		}
	}
	return false
}
