package negotiation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
	"github.com/stagelink/stagelink-backend/pkg/outbox"
	"github.com/stagelink/stagelink-backend/pkg/pagination"
)

type stubRepo struct {
	booking     *models.Booking
	negotiation *models.Negotiation
	proposals   []models.Proposal
	events      []models.NegotiationEvent

	negotiationUpdates map[string]any
	bookingUpdates     map[string]any
	appendErr          error
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) FindBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.booking
	return &copied, nil
}

func (r *stubRepo) FindBookingForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.FindBookingByID(ctx, id)
}

func (r *stubRepo) FindNegotiationByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Negotiation, error) {
	if r.negotiation == nil || r.negotiation.BookingID != bookingID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.negotiation
	return &copied, nil
}

func (r *stubRepo) FindNegotiationForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Negotiation, error) {
	return r.FindNegotiationByBooking(ctx, bookingID)
}

func (r *stubRepo) ListBookingsForParty(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BookingList, error) {
	if r.booking == nil {
		return &BookingList{}, nil
	}
	return &BookingList{Items: []models.Booking{*r.booking}}, nil
}

func (r *stubRepo) ListEvents(ctx context.Context, bookingID uuid.UUID) ([]models.NegotiationEvent, error) {
	return r.events, nil
}

func (r *stubRepo) ListProposals(ctx context.Context, bookingID uuid.UUID) ([]models.Proposal, error) {
	return r.proposals, nil
}

func (r *stubRepo) CreateProposal(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	proposal.ID = uuid.New()
	r.proposals = append(r.proposals, *proposal)
	return proposal, nil
}

func (r *stubRepo) AppendEvent(ctx context.Context, event *models.NegotiationEvent) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	event.ID = uuid.New()
	r.events = append(r.events, *event)
	return nil
}

func (r *stubRepo) UpdateNegotiation(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	r.negotiationUpdates = updates
	return nil
}

func (r *stubRepo) UpdateBooking(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	r.bookingUpdates = updates
	return nil
}

func (r *stubRepo) FindExpiredTurns(ctx context.Context, cutoff time.Time, limit int) ([]models.Negotiation, error) {
	return nil, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type outboxRecorder struct {
	emitted []outbox.DomainEvent
}

func (o *outboxRecorder) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	o.emitted = append(o.emitted, event)
	return nil
}

func (o *outboxRecorder) types() []enums.OutboxEventType {
	out := make([]enums.OutboxEventType, 0, len(o.emitted))
	for _, e := range o.emitted {
		out = append(out, e.EventType)
	}
	return out
}

func newTestService(t *testing.T, repo *stubRepo, sink *outboxRecorder) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Tx:     stubTx{},
		Outbox: sink,
		Now:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedRepo() *stubRepo {
	booking, negotiation := testWorkflow()
	booking.Status = enums.BookingStatusNegotiating
	booking.OfferAmount = decimal.NewFromInt(1500)
	booking.Currency = enums.CurrencyUSD
	return &stubRepo{booking: &booking, negotiation: &negotiation}
}

func TestServiceProposeRecordsProposalAndEvent(t *testing.T) {
	repo := seedRepo()
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	proposal, err := svc.Propose(context.Background(), ProposeInput{
		BookingID: repo.booking.ID,
		ActorID:   repo.booking.ArtistID,
		ActorRole: enums.PartyRoleArtist,
		Amount:    decimal.NewFromInt(2000),
		Currency:  enums.CurrencyUSD,
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if proposal.Round != 1 {
		t.Fatalf("expected round 1, got %d", proposal.Round)
	}
	if proposal.AuthorRole != enums.PartyRoleArtist {
		t.Fatalf("unexpected author role %s", proposal.AuthorRole)
	}

	if got := repo.negotiationUpdates["round"]; got != 1 {
		t.Fatalf("expected negotiation round update 1, got %v", got)
	}
	if got := repo.bookingUpdates["status"]; got != enums.BookingStatusNegotiating {
		t.Fatalf("expected booking status negotiating, got %v", got)
	}
	if len(repo.events) != 1 || repo.events[0].Action != enums.NegotiationActionOffered {
		t.Fatalf("expected one offered event, got %+v", repo.events)
	}
	if len(sink.emitted) != 1 || sink.emitted[0].EventType != enums.EventBookingOffered {
		t.Fatalf("expected booking_offered outbox event, got %v", sink.types())
	}
}

func TestServiceProposeSecondRoundEmitsCounterOffer(t *testing.T) {
	repo := seedRepo()
	repo.negotiation.Round = 1
	repo.negotiation.State = enums.NegotiationStateAwaitingOrganizer
	repo.negotiation.AwaitingUserID = &repo.booking.OrganizerID
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	_, err := svc.Propose(context.Background(), ProposeInput{
		BookingID: repo.booking.ID,
		ActorID:   repo.booking.OrganizerID,
		ActorRole: enums.PartyRolePromoter,
		Amount:    decimal.NewFromInt(1800),
		Currency:  enums.CurrencyUSD,
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if len(sink.emitted) != 1 || sink.emitted[0].EventType != enums.EventBookingCounterOffered {
		t.Fatalf("expected booking_counter_offered outbox event, got %v", sink.types())
	}
	if repo.events[0].Action != enums.NegotiationActionCounterOffered {
		t.Fatalf("expected counter_offered action, got %s", repo.events[0].Action)
	}
}

func TestServiceProposeRejectsOutsiders(t *testing.T) {
	repo := seedRepo()
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.Propose(context.Background(), ProposeInput{
		BookingID: repo.booking.ID,
		ActorID:   uuid.New(),
		Amount:    decimal.NewFromInt(2000),
		Currency:  enums.CurrencyUSD,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestServiceProposeRejectsContractingBooking(t *testing.T) {
	repo := seedRepo()
	repo.booking.Status = enums.BookingStatusContracting
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.Propose(context.Background(), ProposeInput{
		BookingID: repo.booking.ID,
		ActorID:   repo.booking.ArtistID,
		Amount:    decimal.NewFromInt(2000),
		Currency:  enums.CurrencyUSD,
	})
	if reasonOf(t, err) != pkgerrors.ReasonNegotiationLocked {
		t.Fatalf("expected negotiation_locked, got %v", err)
	}
}

func TestServiceProposeRejectsNonPositiveAmount(t *testing.T) {
	repo := seedRepo()
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.Propose(context.Background(), ProposeInput{
		BookingID: repo.booking.ID,
		ActorID:   repo.booking.ArtistID,
		Amount:    decimal.Zero,
		Currency:  enums.CurrencyUSD,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceAcceptMovesBookingToContracting(t *testing.T) {
	repo := seedRepo()
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	booking, err := svc.Accept(context.Background(), DecisionInput{
		BookingID: repo.booking.ID,
		ActorID:   repo.booking.ArtistID,
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if booking.Status != enums.BookingStatusContracting {
		t.Fatalf("expected contracting status, got %s", booking.Status)
	}
	if booking.FinalAmount == nil || !booking.FinalAmount.Equal(repo.booking.OfferAmount) {
		t.Fatalf("expected final amount locked to last offer")
	}
	if got := repo.negotiationUpdates["locked"]; got != true {
		t.Fatalf("expected negotiation locked, got %v", got)
	}
	if len(sink.emitted) != 1 || sink.emitted[0].EventType != enums.EventNegotiationAccepted {
		t.Fatalf("expected negotiation_accepted outbox event, got %v", sink.types())
	}
}

func TestServiceDeclineCancelsBooking(t *testing.T) {
	repo := seedRepo()
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	booking, err := svc.Decline(context.Background(), DecisionInput{
		BookingID: repo.booking.ID,
		ActorID:   repo.booking.ArtistID,
	})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if booking.Status != enums.BookingStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", booking.Status)
	}
	if got := repo.bookingUpdates["cancel_reason"]; got != enums.CancelReasonNegotiationDeclined {
		t.Fatalf("expected negotiation_declined cancel reason, got %v", got)
	}
	types := sink.types()
	if len(types) != 2 || types[0] != enums.EventNegotiationDeclined || types[1] != enums.EventBookingCancelled {
		t.Fatalf("expected declined and cancelled outbox events, got %v", types)
	}
}

func TestServiceDecisionRejectsWrongTurn(t *testing.T) {
	repo := seedRepo()
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.Accept(context.Background(), DecisionInput{
		BookingID: repo.booking.ID,
		ActorID:   repo.booking.OrganizerID,
	})
	if reasonOf(t, err) != pkgerrors.ReasonNotYourTurn {
		t.Fatalf("expected not_your_turn, got %v", err)
	}
}

func TestServiceGetBookingBundlesWorkflow(t *testing.T) {
	repo := seedRepo()
	repo.proposals = []models.Proposal{{ID: uuid.New(), BookingID: repo.booking.ID, Round: 1}}
	svc := newTestService(t, repo, &outboxRecorder{})

	detail, err := svc.GetBooking(context.Background(), repo.booking.ID, repo.booking.ArtistID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if detail.Booking.ID != repo.booking.ID {
		t.Fatalf("unexpected booking returned")
	}
	if len(detail.Proposals) != 1 {
		t.Fatalf("expected one proposal, got %d", len(detail.Proposals))
	}

	_, err = svc.GetBooking(context.Background(), repo.booking.ID, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for outsiders, got %v", err)
	}
}
