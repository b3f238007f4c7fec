package negotiation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/stagelink/stagelink-backend/pkg/db"
	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
	"github.com/stagelink/stagelink-backend/pkg/outbox"
	"github.com/stagelink/stagelink-backend/pkg/outbox/payloads"
	"github.com/stagelink/stagelink-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the negotiation operations exposed to controllers.
type Service interface {
	ListBookings(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BookingList, error)
	GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingDetail, error)
	History(ctx context.Context, bookingID, userID uuid.UUID) ([]models.NegotiationEvent, error)
	Propose(ctx context.Context, input ProposeInput) (*models.Proposal, error)
	Accept(ctx context.Context, input DecisionInput) (*models.Booking, error)
	Decline(ctx context.Context, input DecisionInput) (*models.Booking, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// ServiceParams collects the service dependencies.
type ServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Outbox outboxPublisher
	Now    func() time.Time
}

// NewService builds a negotiation service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("negotiation repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		outbox: params.Outbox,
		now:    params.Now,
	}, nil
}

func (s *service) ListBookings(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BookingList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListBookingsForParty(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return list, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*BookingDetail, error) {
	booking, err := s.loadBookingForParty(ctx, s.repo, bookingID, userID)
	if err != nil {
		return nil, err
	}
	negotiation, err := s.repo.FindNegotiationByBooking(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load negotiation")
	}
	proposals, err := s.repo.ListProposals(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proposals")
	}
	return &BookingDetail{
		Booking:     *booking,
		Negotiation: *negotiation,
		Proposals:   proposals,
	}, nil
}

func (s *service) History(ctx context.Context, bookingID, userID uuid.UUID) ([]models.NegotiationEvent, error) {
	if _, err := s.loadBookingForParty(ctx, s.repo, bookingID, userID); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list negotiation events")
	}
	return events, nil
}

func (s *service) Propose(ctx context.Context, input ProposeInput) (*models.Proposal, error) {
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer amount must be positive")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}

	var created *models.Proposal
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		booking, negotiation, err := s.lockWorkflow(ctx, repo, input.BookingID, input.ActorID)
		if err != nil {
			return err
		}
		if booking.Status.IsTerminal() || booking.Status == enums.BookingStatusContracting {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is no longer negotiable").
				WithReason(pkgerrors.ReasonNegotiationLocked)
		}

		next, err := Propose(*negotiation, booking, input.ActorID, now)
		if err != nil {
			return err
		}

		actorRole := booking.PartyRole(input.ActorID)
		proposal := &models.Proposal{
			BookingID:  booking.ID,
			AuthorID:   input.ActorID,
			AuthorRole: actorRole,
			Round:      next.Round,
			Amount:     input.Amount,
			Currency:   input.Currency,
			EventDate:  input.EventDate,
			SlotType:   input.SlotType,
			Message:    input.Message,
			Status:     models.ProposalStatusActive,
		}
		if _, err := repo.CreateProposal(ctx, proposal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create proposal")
		}

		if err := repo.UpdateNegotiation(ctx, negotiation.ID, map[string]any{
			"state":            next.State,
			"round":            next.Round,
			"awaiting_user_id": next.AwaitingUserID,
			"turn_deadline_at": next.TurnDeadlineAt,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update negotiation")
		}

		if err := repo.UpdateBooking(ctx, booking.ID, map[string]any{
			"offer_amount": input.Amount,
			"status":       enums.BookingStatusNegotiating,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking offer")
		}

		action := enums.NegotiationActionCounterOffered
		eventType := enums.EventBookingCounterOffered
		if next.Round == 1 {
			action = enums.NegotiationActionOffered
			eventType = enums.EventBookingOffered
		}
		if err := s.appendEvent(ctx, repo, booking.ID, action, input.ActorID, actorRole, next.Round, input.IdempotencyKey, eventPayload{
			Amount:    &input.Amount,
			Currency:  input.Currency,
			EventDate: input.EventDate,
			SlotType:  input.SlotType,
			Message:   input.Message,
		}); err != nil {
			return err
		}

		var data any
		if eventType == enums.EventBookingOffered {
			data = payloads.BookingOfferedEvent{
				BookingID:   booking.ID,
				ArtistID:    booking.ArtistID,
				OrganizerID: booking.OrganizerID,
				Amount:      input.Amount,
				Currency:    input.Currency,
				Round:       next.Round,
			}
		} else {
			data = payloads.BookingCounterOfferedEvent{
				BookingID:  booking.ID,
				ProposalID: proposal.ID,
				AuthorID:   input.ActorID,
				AuthorRole: actorRole,
				Round:      next.Round,
				Amount:     input.Amount,
				Currency:   input.Currency,
			}
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: actorRole},
			Data:          data,
		}); err != nil {
			return err
		}

		created = proposal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Accept(ctx context.Context, input DecisionInput) (*models.Booking, error) {
	return s.decide(ctx, input, enums.NegotiationStateAccepted)
}

func (s *service) Decline(ctx context.Context, input DecisionInput) (*models.Booking, error) {
	return s.decide(ctx, input, enums.NegotiationStateDeclined)
}

func (s *service) decide(ctx context.Context, input DecisionInput, target enums.NegotiationState) (*models.Booking, error) {
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var updated *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, negotiation, err := s.lockWorkflow(ctx, repo, input.BookingID, input.ActorID)
		if err != nil {
			return err
		}

		var next models.Negotiation
		if target == enums.NegotiationStateAccepted {
			next, err = Accept(*negotiation, input.ActorID)
		} else {
			next, err = Decline(*negotiation, input.ActorID)
		}
		if err != nil {
			return err
		}

		if err := repo.UpdateNegotiation(ctx, negotiation.ID, map[string]any{
			"state":            next.State,
			"awaiting_user_id": nil,
			"locked":           true,
			"turn_deadline_at": nil,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update negotiation")
		}

		actorRole := booking.PartyRole(input.ActorID)
		bookingUpdates := map[string]any{}
		action := enums.NegotiationActionAccepted
		if target == enums.NegotiationStateAccepted {
			bookingUpdates["status"] = enums.BookingStatusContracting
			bookingUpdates["final_amount"] = booking.OfferAmount
		} else {
			action = enums.NegotiationActionDeclined
			bookingUpdates["status"] = enums.BookingStatusCancelled
			bookingUpdates["cancel_reason"] = enums.CancelReasonNegotiationDeclined
		}
		if err := repo.UpdateBooking(ctx, booking.ID, bookingUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking status")
		}

		if err := s.appendEvent(ctx, repo, booking.ID, action, input.ActorID, actorRole, negotiation.Round, input.IdempotencyKey, eventPayload{}); err != nil {
			return err
		}

		actor := &outbox.ActorRef{UserID: input.ActorID, Role: actorRole}
		if target == enums.NegotiationStateAccepted {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventNegotiationAccepted,
				AggregateType: enums.AggregateNegotiation,
				AggregateID:   negotiation.ID,
				Version:       1,
				Actor:         actor,
				Data: payloads.NegotiationAcceptedEvent{
					NegotiationID: negotiation.ID,
					BookingID:     booking.ID,
					AcceptedBy:    input.ActorID,
					FinalAmount:   booking.OfferAmount,
					Currency:      booking.Currency,
				},
			}); err != nil {
				return err
			}
		} else {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventNegotiationDeclined,
				AggregateType: enums.AggregateNegotiation,
				AggregateID:   negotiation.ID,
				Version:       1,
				Actor:         actor,
				Data: payloads.NegotiationDeclinedEvent{
					NegotiationID: negotiation.ID,
					BookingID:     booking.ID,
					DeclinedBy:    input.ActorID,
				},
			}); err != nil {
				return err
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventBookingCancelled,
				AggregateType: enums.AggregateBooking,
				AggregateID:   booking.ID,
				Version:       1,
				Actor:         actor,
				Data: payloads.BookingCancelledEvent{
					BookingID:   booking.ID,
					Reason:      string(enums.CancelReasonNegotiationDeclined),
					CancelledAt: s.now().UTC(),
				},
			}); err != nil {
				return err
			}
		}

		refreshed := *booking
		if status, ok := bookingUpdates["status"].(enums.BookingStatus); ok {
			refreshed.Status = status
		}
		if target == enums.NegotiationStateAccepted {
			final := booking.OfferAmount
			refreshed.FinalAmount = &final
		}
		updated = &refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// lockWorkflow loads and row-locks the booking and negotiation, verifying
// the actor is one of the two booking parties.
func (s *service) lockWorkflow(ctx context.Context, repo Repository, bookingID, actorID uuid.UUID) (*models.Booking, *models.Negotiation, error) {
	booking, err := repo.FindBookingForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.PartyRole(actorID) == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "user is not a booking party")
	}
	negotiation, err := repo.FindNegotiationForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "negotiation not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load negotiation")
	}
	return booking, negotiation, nil
}

func (s *service) loadBookingForParty(ctx context.Context, repo Repository, bookingID, userID uuid.UUID) (*models.Booking, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	booking, err := repo.FindBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.PartyRole(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "user is not a booking party")
	}
	return booking, nil
}

func (s *service) appendEvent(ctx context.Context, repo Repository, bookingID uuid.UUID, action enums.NegotiationAction, actorID uuid.UUID, actorRole enums.PartyRole, round int, idempotencyKey *string, payload eventPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode event payload")
	}
	event := &models.NegotiationEvent{
		BookingID:      bookingID,
		Action:         action,
		ActorID:        actorID,
		ActorRole:      actorRole,
		Round:          round,
		Payload:        raw,
		IdempotencyKey: idempotencyKey,
	}
	if err := repo.AppendEvent(ctx, event); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_negotiation_events_idempotency_key") {
			return pkgerrors.New(pkgerrors.CodeIdempotency, "action already applied for this idempotency key")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append negotiation event")
	}
	return nil
}
