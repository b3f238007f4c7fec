package negotiation

import (
	"time"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
)

const (
	// DefaultMaxRounds caps counter-offer exchanges per negotiation.
	DefaultMaxRounds = 3
	// TurnDeadline is how long the awaiting party has to respond.
	TurnDeadline = 24 * time.Hour
)

// Propose computes the next workflow state for a counter-offer. It operates
// on a copy and never touches persistence; the caller re-validates inside a
// row lock and writes the result. The round cap rejects regardless of whose
// turn it is.
func Propose(n models.Negotiation, booking *models.Booking, actorID uuid.UUID, now time.Time) (models.Negotiation, error) {
	if n.Locked || n.State.IsTerminal() {
		return n, pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation is locked").
			WithReason(pkgerrors.ReasonNegotiationLocked)
	}
	if n.Round >= n.MaxRounds {
		return n, pkgerrors.New(pkgerrors.CodeStateConflict, "maximum negotiation rounds reached").
			WithReason(pkgerrors.ReasonMaxRoundsReached)
	}
	if n.AwaitingUserID == nil || *n.AwaitingUserID != actorID {
		return n, pkgerrors.New(pkgerrors.CodeStateConflict, "it is not this party's turn to act").
			WithReason(pkgerrors.ReasonNotYourTurn)
	}

	next := n
	counterparty := booking.Counterparty(actorID)
	deadline := now.Add(TurnDeadline)

	next.Round = n.Round + 1
	next.AwaitingUserID = &counterparty
	next.State = awaitingStateFor(booking.PartyRole(counterparty))
	next.TurnDeadlineAt = &deadline
	return next, nil
}

// Accept terminates the negotiation in the accepted state. Only the
// awaiting party may accept; the round cap does not apply.
func Accept(n models.Negotiation, actorID uuid.UUID) (models.Negotiation, error) {
	return terminate(n, actorID, enums.NegotiationStateAccepted)
}

// Decline terminates the negotiation in the declined state.
func Decline(n models.Negotiation, actorID uuid.UUID) (models.Negotiation, error) {
	return terminate(n, actorID, enums.NegotiationStateDeclined)
}

func terminate(n models.Negotiation, actorID uuid.UUID, state enums.NegotiationState) (models.Negotiation, error) {
	if n.Locked || n.State.IsTerminal() {
		return n, pkgerrors.New(pkgerrors.CodeStateConflict, "negotiation is locked").
			WithReason(pkgerrors.ReasonNegotiationLocked)
	}
	if n.AwaitingUserID == nil || *n.AwaitingUserID != actorID {
		return n, pkgerrors.New(pkgerrors.CodeStateConflict, "it is not this party's turn to act").
			WithReason(pkgerrors.ReasonNotYourTurn)
	}

	next := n
	next.State = state
	next.AwaitingUserID = nil
	next.Locked = true
	next.TurnDeadlineAt = nil
	return next, nil
}

func awaitingStateFor(role enums.PartyRole) enums.NegotiationState {
	if role == enums.PartyRoleArtist {
		return enums.NegotiationStateAwaitingArtist
	}
	return enums.NegotiationStateAwaitingOrganizer
}
