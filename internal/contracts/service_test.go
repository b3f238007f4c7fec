package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
	"github.com/stagelink/stagelink-backend/pkg/outbox"
	"github.com/stagelink/stagelink-backend/pkg/types"
)

type stubRepo struct {
	booking      *models.Booking
	contract     *models.Contract
	versions     []models.ContractVersion
	signatures   []models.ContractSignature
	editRequests []models.ContractEditRequest

	contractUpdates map[string]any
	bookingUpdates  map[string]any
	requestUpdates  map[string]any
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

func (r *stubRepo) FindContractByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	if r.contract == nil || r.contract.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.contract
	return &copied, nil
}

func (r *stubRepo) FindContractForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	return r.FindContractByID(ctx, id)
}

func (r *stubRepo) FindLiveByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error) {
	if r.contract == nil || r.contract.BookingID != bookingID || r.contract.Status == enums.ContractStatusVoided {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.contract
	return &copied, nil
}

func (r *stubRepo) CreateContract(ctx context.Context, contract *models.Contract) error {
	contract.ID = uuid.New()
	r.contract = contract
	return nil
}

func (r *stubRepo) CreateVersion(ctx context.Context, version *models.ContractVersion) error {
	version.ID = uuid.New()
	r.versions = append(r.versions, *version)
	return nil
}

func (r *stubRepo) CreateSignature(ctx context.Context, signature *models.ContractSignature) error {
	signature.ID = uuid.New()
	r.signatures = append(r.signatures, *signature)
	return nil
}

func (r *stubRepo) CreateEditRequest(ctx context.Context, request *models.ContractEditRequest) error {
	request.ID = uuid.New()
	r.editRequests = append(r.editRequests, *request)
	return nil
}

func (r *stubRepo) FindEditRequestForUpdate(ctx context.Context, id uuid.UUID) (*models.ContractEditRequest, error) {
	for i := range r.editRequests {
		if r.editRequests[i].ID == id {
			copied := r.editRequests[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) FindPendingEdit(ctx context.Context, contractID uuid.UUID) (*models.ContractEditRequest, error) {
	for i := range r.editRequests {
		if r.editRequests[i].ContractID == contractID && r.editRequests[i].Status == enums.EditRequestStatusPending {
			copied := r.editRequests[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRepo) ListVersions(ctx context.Context, contractID uuid.UUID) ([]models.ContractVersion, error) {
	return r.versions, nil
}

func (r *stubRepo) UpdateContract(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if r.contractUpdates == nil {
		r.contractUpdates = map[string]any{}
	}
	for k, v := range updates {
		r.contractUpdates[k] = v
	}
	return nil
}

func (r *stubRepo) UpdateEditRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	r.requestUpdates = updates
	for i := range r.editRequests {
		if r.editRequests[i].ID == id {
			if status, ok := updates["status"].(enums.EditRequestStatus); ok {
				r.editRequests[i].Status = status
			}
		}
	}
	return nil
}

func (r *stubRepo) UpdateBooking(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	r.bookingUpdates = updates
	return nil
}

func (r *stubRepo) FindExpiredSent(ctx context.Context, now time.Time, limit int) ([]models.Contract, error) {
	if r.contract != nil && r.contract.Status == enums.ContractStatusSent && r.contract.DeadlineAt.Before(now) {
		return []models.Contract{*r.contract}, nil
	}
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

func (o *outboxRecorder) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	for _, existing := range o.emitted {
		if existing.EventType == event.EventType && existing.AggregateID == event.AggregateID {
			return nil
		}
	}
	return o.Emit(ctx, tx, event)
}

func (o *outboxRecorder) has(eventType enums.OutboxEventType) bool {
	for _, e := range o.emitted {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

var testClock = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *stubRepo, sink *outboxRecorder) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Tx:     stubTx{},
		Outbox: sink,
		Now:    func() time.Time { return testClock },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedContractRepo(t *testing.T) *stubRepo {
	t.Helper()
	booking := testBooking()
	contract, version := PrepareInitiation(booking, testClock.Add(-time.Hour))
	contract.ID = uuid.New()
	version.ContractID = contract.ID
	return &stubRepo{
		booking:  booking,
		contract: &contract,
		versions: []models.ContractVersion{version},
	}
}

func validSignature() SignatureInput {
	return SignatureInput{
		SignatureData: "data:image/png;base64,abc",
		SignatureType: enums.SignatureTypeDrawn,
		IPAddress:     "203.0.113.9",
		UserAgent:     "Mozilla/5.0",
	}
}

func TestServiceInitiateCreatesContract(t *testing.T) {
	booking := testBooking()
	repo := &stubRepo{booking: booking}
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	contract, err := svc.Initiate(context.Background(), InitiateInput{
		BookingID: booking.ID,
		ActorID:   booking.OrganizerID,
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if contract.Status != enums.ContractStatusSent {
		t.Fatalf("expected sent, got %s", contract.Status)
	}
	if !contract.DeadlineAt.Equal(testClock.Add(48 * time.Hour)) {
		t.Fatalf("unexpected deadline %v", contract.DeadlineAt)
	}
	if len(repo.versions) != 1 || repo.versions[0].Version != 1 {
		t.Fatalf("expected version 1 row, got %+v", repo.versions)
	}
	if !sink.has(enums.EventContractInitiated) {
		t.Fatalf("expected contract_initiated outbox event")
	}
}

func TestServiceInitiateIsIdempotent(t *testing.T) {
	booking := testBooking()
	repo := &stubRepo{booking: booking}
	svc := newTestService(t, repo, &outboxRecorder{})

	first, err := svc.Initiate(context.Background(), InitiateInput{BookingID: booking.ID, ActorID: booking.ArtistID})
	if err != nil {
		t.Fatalf("first initiate: %v", err)
	}
	second, err := svc.Initiate(context.Background(), InitiateInput{BookingID: booking.ID, ActorID: booking.ArtistID})
	if err != nil {
		t.Fatalf("second initiate: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same contract on repeat initiation")
	}
	if len(repo.versions) != 1 {
		t.Fatalf("duplicate initiation created extra versions")
	}
}

func TestServiceInitiateRejectsWrongBookingStatus(t *testing.T) {
	booking := testBooking()
	booking.Status = enums.BookingStatusNegotiating
	repo := &stubRepo{booking: booking}
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.Initiate(context.Background(), InitiateInput{BookingID: booking.ID, ActorID: booking.ArtistID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestServiceInitiateRestoresDeadlineCancelledBooking(t *testing.T) {
	booking := testBooking()
	booking.Status = enums.BookingStatusCancelled
	reason := enums.CancelReasonContractDeadlineExpired
	booking.CancelReason = &reason
	repo := &stubRepo{booking: booking}
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	contract, err := svc.Initiate(context.Background(), InitiateInput{
		BookingID: booking.ID,
		ActorID:   booking.OrganizerID,
	})
	if err != nil {
		t.Fatalf("initiate after deadline void: %v", err)
	}
	if contract.Status != enums.ContractStatusSent {
		t.Fatalf("expected fresh sent contract, got %s", contract.Status)
	}
	if got := repo.bookingUpdates["status"]; got != enums.BookingStatusContracting {
		t.Fatalf("expected booking restored to contracting, got %v", got)
	}
	if got := repo.bookingUpdates["cancel_reason"]; got != nil {
		t.Fatalf("expected cancel reason cleared, got %v", got)
	}
	if !sink.has(enums.EventContractInitiated) {
		t.Fatalf("expected contract_initiated outbox event")
	}
}

func TestServiceInitiateRejectsPartyCancelledBooking(t *testing.T) {
	booking := testBooking()
	booking.Status = enums.BookingStatusCancelled
	reason := enums.CancelReasonPartyRequested
	booking.CancelReason = &reason
	repo := &stubRepo{booking: booking}
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.Initiate(context.Background(), InitiateInput{BookingID: booking.ID, ActorID: booking.ArtistID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestServiceSignRequiresReviewAndAccept(t *testing.T) {
	repo := seedContractRepo(t)
	svc := newTestService(t, repo, &outboxRecorder{})

	input := SignInput{
		ContractID: repo.contract.ID,
		ActorID:    repo.booking.ArtistID,
		Signature:  validSignature(),
	}
	if _, err := svc.Sign(context.Background(), input); reasonOf(t, err) != pkgerrors.ReasonReviewRequired {
		t.Fatalf("expected review_required, got %v", err)
	}

	repo.contract.ArtistReviewedAt = &testClock
	if _, err := svc.Sign(context.Background(), input); reasonOf(t, err) != pkgerrors.ReasonAcceptRequired {
		t.Fatalf("expected accept_required, got %v", err)
	}
}

func TestServiceSignFirstAndSecondParty(t *testing.T) {
	repo := seedContractRepo(t)
	repo.contract.ArtistReviewedAt = &testClock
	repo.contract.ArtistAcceptedAt = &testClock
	repo.contract.PromoterReviewedAt = &testClock
	repo.contract.PromoterAcceptedAt = &testClock
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	first, err := svc.Sign(context.Background(), SignInput{
		ContractID: repo.contract.ID,
		ActorID:    repo.booking.ArtistID,
		Signature:  validSignature(),
	})
	if err != nil {
		t.Fatalf("first sign: %v", err)
	}
	if first.FullyExecuted {
		t.Fatalf("first signature must not fully execute")
	}
	if first.Contract.Status != enums.ContractStatusSignedByArtist {
		t.Fatalf("expected signed_by_artist, got %s", first.Contract.Status)
	}

	repo.contract.Status = enums.ContractStatusSignedByArtist
	repo.contract.ArtistSignedAt = &testClock

	second, err := svc.Sign(context.Background(), SignInput{
		ContractID: repo.contract.ID,
		ActorID:    repo.booking.OrganizerID,
		Signature:  validSignature(),
	})
	if err != nil {
		t.Fatalf("second sign: %v", err)
	}
	if !second.FullyExecuted {
		t.Fatalf("second signature must fully execute")
	}
	if second.Contract.Status != enums.ContractStatusAdminReview {
		t.Fatalf("expected admin_review, got %s", second.Contract.Status)
	}
	if got := repo.bookingUpdates["status"]; got != enums.BookingStatusConfirmed {
		t.Fatalf("expected booking confirmed, got %v", got)
	}
	if !sink.has(enums.EventContractFullyExecuted) {
		t.Fatalf("expected contract_fully_executed outbox event")
	}
	if len(repo.signatures) != 2 {
		t.Fatalf("expected 2 signature rows, got %d", len(repo.signatures))
	}
}

func TestServiceSignRejectsIncompleteSignature(t *testing.T) {
	repo := seedContractRepo(t)
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.Sign(context.Background(), SignInput{
		ContractID: repo.contract.ID,
		ActorID:    repo.booking.ArtistID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map")
	}
	violations, ok := details["violations"].([]Violation)
	if !ok || len(violations) != 4 {
		t.Fatalf("expected 4 signature violations, got %v", details["violations"])
	}
}

func TestServiceSubmitEditSpendsAllowance(t *testing.T) {
	repo := seedContractRepo(t)
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	changes := types.ChangeSet{"travel": {"coveredBy": "organizer"}}
	request, err := svc.SubmitEdit(context.Background(), EditRequestInput{
		ContractID: repo.contract.ID,
		ActorID:    repo.booking.ArtistID,
		Changes:    changes,
	})
	if err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	if request.Status != enums.EditRequestStatusPending {
		t.Fatalf("expected pending request, got %s", request.Status)
	}
	if got := repo.contractUpdates["artist_edit_used"]; got != true {
		t.Fatalf("expected artist edit allowance spent, got %v", got)
	}
	if !sink.has(enums.EventContractEditRequested) {
		t.Fatalf("expected contract_edit_requested outbox event")
	}
}

func TestServiceSubmitEditRejectsSecondAttempt(t *testing.T) {
	repo := seedContractRepo(t)
	repo.contract.ArtistEditUsed = true
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.SubmitEdit(context.Background(), EditRequestInput{
		ContractID: repo.contract.ID,
		ActorID:    repo.booking.ArtistID,
		Changes:    types.ChangeSet{"travel": {"mode": "train"}},
	})
	if reasonOf(t, err) != pkgerrors.ReasonEditAlreadyUsed {
		t.Fatalf("expected edit_already_used, got %v", err)
	}
}

func TestServiceSubmitEditRejectsLockedFieldChanges(t *testing.T) {
	repo := seedContractRepo(t)
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.SubmitEdit(context.Background(), EditRequestInput{
		ContractID: repo.contract.ID,
		ActorID:    repo.booking.ArtistID,
		Changes:    types.ChangeSet{"financial": {"fee": 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServicePendingEditBlocksAcceptAndSign(t *testing.T) {
	repo := seedContractRepo(t)
	repo.contract.ArtistReviewedAt = &testClock
	repo.contract.ArtistAcceptedAt = &testClock
	repo.editRequests = []models.ContractEditRequest{{
		ID:         uuid.New(),
		ContractID: repo.contract.ID,
		Status:     enums.EditRequestStatusPending,
	}}
	svc := newTestService(t, repo, &outboxRecorder{})

	_, err := svc.Accept(context.Background(), ActionInput{ContractID: repo.contract.ID, ActorID: repo.booking.ArtistID})
	if reasonOf(t, err) != pkgerrors.ReasonPendingEditBlocks {
		t.Fatalf("expected pending_edit_blocks on accept, got %v", err)
	}

	_, err = svc.Sign(context.Background(), SignInput{
		ContractID: repo.contract.ID,
		ActorID:    repo.booking.ArtistID,
		Signature:  validSignature(),
	})
	if reasonOf(t, err) != pkgerrors.ReasonPendingEditBlocks {
		t.Fatalf("expected pending_edit_blocks on sign, got %v", err)
	}
}

func TestServiceResolveEditApprovalBumpsVersion(t *testing.T) {
	repo := seedContractRepo(t)
	admin := uuid.New()
	repo.editRequests = []models.ContractEditRequest{{
		ID:            uuid.New(),
		ContractID:    repo.contract.ID,
		RequestedBy:   repo.booking.ArtistID,
		RequestedRole: enums.PartyRoleArtist,
		Changes:       types.ChangeSet{"hospitality": {"guestListSize": 8}},
		Status:        enums.EditRequestStatusPending,
	}}
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	result, err := svc.ResolveEdit(context.Background(), ResolveEditInput{
		RequestID:  repo.editRequests[0].ID,
		ResolvedBy: admin,
		Approve:    true,
	})
	if err != nil {
		t.Fatalf("resolve edit: %v", err)
	}
	if result.Version == nil || result.Version.Version != 2 {
		t.Fatalf("expected version 2 on approval, got %+v", result.Version)
	}
	if result.Version.Terms.Editable.Hospitality.GuestListSize != 8 {
		t.Fatalf("approved change not applied to new version")
	}
	if got := repo.contractUpdates["current_version"]; got != 2 {
		t.Fatalf("expected contract current_version 2, got %v", got)
	}
	if result.Request.Status != enums.EditRequestStatusApproved {
		t.Fatalf("expected approved request, got %s", result.Request.Status)
	}
	if !sink.has(enums.EventContractEditResolved) {
		t.Fatalf("expected contract_edit_resolved outbox event")
	}
}

func TestServiceResolveEditRejectionKeepsVersion(t *testing.T) {
	repo := seedContractRepo(t)
	repo.editRequests = []models.ContractEditRequest{{
		ID:         uuid.New(),
		ContractID: repo.contract.ID,
		Changes:    types.ChangeSet{"travel": {"mode": "train"}},
		Status:     enums.EditRequestStatusPending,
	}}
	svc := newTestService(t, repo, &outboxRecorder{})

	result, err := svc.ResolveEdit(context.Background(), ResolveEditInput{
		RequestID:  repo.editRequests[0].ID,
		ResolvedBy: uuid.New(),
		Approve:    false,
	})
	if err != nil {
		t.Fatalf("resolve edit: %v", err)
	}
	if result.Version != nil {
		t.Fatalf("rejection must not create a version")
	}
	if result.Request.Status != enums.EditRequestStatusRejected {
		t.Fatalf("expected rejected request, got %s", result.Request.Status)
	}
	if len(repo.versions) != 1 {
		t.Fatalf("rejection created a version row")
	}
}

func TestServiceVoidedContractRejectsEverything(t *testing.T) {
	repo := seedContractRepo(t)
	repo.contract.Status = enums.ContractStatusVoided
	svc := newTestService(t, repo, &outboxRecorder{})
	ctx := context.Background()

	actions := []func() error{
		func() error {
			_, err := svc.Review(ctx, ActionInput{ContractID: repo.contract.ID, ActorID: repo.booking.ArtistID})
			return err
		},
		func() error {
			_, err := svc.Accept(ctx, ActionInput{ContractID: repo.contract.ID, ActorID: repo.booking.ArtistID})
			return err
		},
		func() error {
			_, err := svc.Sign(ctx, SignInput{ContractID: repo.contract.ID, ActorID: repo.booking.ArtistID, Signature: validSignature()})
			return err
		},
		func() error {
			_, err := svc.SubmitEdit(ctx, EditRequestInput{
				ContractID: repo.contract.ID,
				ActorID:    repo.booking.ArtistID,
				Changes:    types.ChangeSet{"travel": {"mode": "train"}},
			})
			return err
		},
	}

	var messages []string
	for _, action := range actions {
		err := action()
		if reasonOf(t, err) != pkgerrors.ReasonContractVoided {
			t.Fatalf("expected contract_voided, got %v", err)
		}
		messages = append(messages, err.Error())
	}
	for _, msg := range messages[1:] {
		if msg != messages[0] {
			t.Fatalf("voided rejection differs between actions: %q vs %q", messages[0], msg)
		}
	}
}

func TestServiceSweepVoidsExpiredSentContracts(t *testing.T) {
	repo := seedContractRepo(t)
	repo.contract.DeadlineAt = testClock.Add(-time.Minute)
	sink := &outboxRecorder{}
	svc := newTestService(t, repo, sink)

	results, err := svc.SweepExpired(context.Background(), testClock, 100)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one voided contract, got %d", len(results))
	}
	if results[0].Reason != enums.CancelReasonContractDeadlineExpired {
		t.Fatalf("unexpected reason %s", results[0].Reason)
	}
	if got := repo.contractUpdates["status"]; got != enums.ContractStatusVoided {
		t.Fatalf("expected contract voided, got %v", got)
	}
	if got := repo.bookingUpdates["cancel_reason"]; got != enums.CancelReasonContractDeadlineExpired {
		t.Fatalf("expected booking cancel reason, got %v", got)
	}
	if !sink.has(enums.EventContractVoided) || !sink.has(enums.EventBookingCancelled) {
		t.Fatalf("expected voided and cancelled outbox events")
	}
	if !sink.has(enums.EventNotificationRequested) {
		t.Fatalf("expected notification_requested outbox events")
	}
}

func TestServiceSweepLeavesSignedContractsAlone(t *testing.T) {
	repo := seedContractRepo(t)
	repo.contract.Status = enums.ContractStatusSigned
	repo.contract.DeadlineAt = testClock.Add(-time.Hour)
	svc := newTestService(t, repo, &outboxRecorder{})

	results, err := svc.SweepExpired(context.Background(), testClock, 100)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("signed contract must be immune to the sweep, got %+v", results)
	}
	if repo.contractUpdates != nil {
		t.Fatalf("sweep touched a signed contract: %+v", repo.contractUpdates)
	}
}
