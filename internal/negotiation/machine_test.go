package negotiation

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
)

func testWorkflow() (models.Booking, models.Negotiation) {
	artistID := uuid.New()
	organizerID := uuid.New()
	booking := models.Booking{
		ID:          uuid.New(),
		ArtistID:    artistID,
		OrganizerID: organizerID,
		Status:      enums.BookingStatusOffered,
	}
	negotiation := models.Negotiation{
		ID:             uuid.New(),
		BookingID:      booking.ID,
		State:          enums.NegotiationStateAwaitingArtist,
		Round:          0,
		MaxRounds:      DefaultMaxRounds,
		AwaitingUserID: &artistID,
	}
	return booking, negotiation
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	return typed.Reason()
}

func TestProposeFlipsAwaitingParty(t *testing.T) {
	booking, negotiation := testWorkflow()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := Propose(negotiation, &booking, booking.ArtistID, now)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if next.Round != 1 {
		t.Fatalf("expected round 1, got %d", next.Round)
	}
	if next.AwaitingUserID == nil || *next.AwaitingUserID != booking.OrganizerID {
		t.Fatalf("expected awaiting to flip to organizer")
	}
	if next.State != enums.NegotiationStateAwaitingOrganizer {
		t.Fatalf("unexpected state %s", next.State)
	}
	if next.TurnDeadlineAt == nil || !next.TurnDeadlineAt.Equal(now.Add(TurnDeadline)) {
		t.Fatalf("expected 24h turn deadline, got %v", next.TurnDeadlineAt)
	}
	// the input negotiation must stay untouched
	if negotiation.Round != 0 || negotiation.State != enums.NegotiationStateAwaitingArtist {
		t.Fatalf("input negotiation mutated")
	}
}

func TestProposeAlternatesUntilRoundCap(t *testing.T) {
	booking, negotiation := testWorkflow()
	now := time.Now().UTC()

	actors := []uuid.UUID{booking.ArtistID, booking.OrganizerID, booking.ArtistID}
	for i, actor := range actors {
		next, err := Propose(negotiation, &booking, actor, now)
		if err != nil {
			t.Fatalf("round %d propose: %v", i+1, err)
		}
		negotiation = next
	}
	if negotiation.Round != DefaultMaxRounds {
		t.Fatalf("expected round %d, got %d", DefaultMaxRounds, negotiation.Round)
	}

	// at the cap, propose rejects regardless of actor
	for _, actor := range []uuid.UUID{booking.ArtistID, booking.OrganizerID} {
		_, err := Propose(negotiation, &booking, actor, now)
		if reasonOf(t, err) != pkgerrors.ReasonMaxRoundsReached {
			t.Fatalf("expected max_rounds_reached, got %v", err)
		}
	}

	// accept and decline stay legal for the awaiting party
	if _, err := Accept(negotiation, *negotiation.AwaitingUserID); err != nil {
		t.Fatalf("accept at round cap: %v", err)
	}
	if _, err := Decline(negotiation, *negotiation.AwaitingUserID); err != nil {
		t.Fatalf("decline at round cap: %v", err)
	}
}

func TestProposeRejectsWrongActor(t *testing.T) {
	booking, negotiation := testWorkflow()

	_, err := Propose(negotiation, &booking, booking.OrganizerID, time.Now())
	if reasonOf(t, err) != pkgerrors.ReasonNotYourTurn {
		t.Fatalf("expected not_your_turn, got %v", err)
	}
}

func TestProposeRejectsLockedNegotiation(t *testing.T) {
	booking, negotiation := testWorkflow()
	negotiation.Locked = true

	_, err := Propose(negotiation, &booking, booking.ArtistID, time.Now())
	if reasonOf(t, err) != pkgerrors.ReasonNegotiationLocked {
		t.Fatalf("expected negotiation_locked, got %v", err)
	}
}

func TestAcceptLocksWorkflow(t *testing.T) {
	booking, negotiation := testWorkflow()

	next, err := Accept(negotiation, booking.ArtistID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if next.State != enums.NegotiationStateAccepted {
		t.Fatalf("unexpected state %s", next.State)
	}
	if !next.Locked || next.AwaitingUserID != nil {
		t.Fatalf("expected locked workflow with no awaiting party")
	}
	if next.TurnDeadlineAt != nil {
		t.Fatalf("expected turn deadline cleared")
	}

	if _, err := Propose(next, &booking, booking.OrganizerID, time.Now()); err == nil {
		t.Fatalf("expected propose to fail after accept")
	}
}

func TestDeclineLocksWorkflow(t *testing.T) {
	booking, negotiation := testWorkflow()

	next, err := Decline(negotiation, booking.ArtistID)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if next.State != enums.NegotiationStateDeclined {
		t.Fatalf("unexpected state %s", next.State)
	}
	if !next.Locked {
		t.Fatalf("expected locked workflow")
	}
}

func TestAcceptRejectsWrongActor(t *testing.T) {
	booking, negotiation := testWorkflow()

	_, err := Accept(negotiation, booking.OrganizerID)
	if reasonOf(t, err) != pkgerrors.ReasonNotYourTurn {
		t.Fatalf("expected not_your_turn, got %v", err)
	}
}
