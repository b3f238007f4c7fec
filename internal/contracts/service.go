package contracts

import (
	"context"
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
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the contract lifecycle operations exposed to controllers
// and the cron worker.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*models.Contract, error)
	GetContract(ctx context.Context, contractID, userID uuid.UUID) (*models.Contract, error)
	ListVersions(ctx context.Context, contractID, userID uuid.UUID) ([]models.ContractVersion, error)
	Review(ctx context.Context, input ActionInput) (*models.Contract, error)
	Accept(ctx context.Context, input ActionInput) (*models.Contract, error)
	Sign(ctx context.Context, input SignInput) (*SignResult, error)
	SubmitEdit(ctx context.Context, input EditRequestInput) (*models.ContractEditRequest, error)
	ResolveEdit(ctx context.Context, input ResolveEditInput) (*ResolveEditResult, error)
	SweepExpired(ctx context.Context, now time.Time, limit int) ([]SweepResult, error)
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

// NewService builds a contract service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("contract repository required")
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

func (s *service) Initiate(ctx context.Context, input InitiateInput) (*models.Contract, error) {
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result *models.Contract
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		booking, err := repo.FindBookingForUpdate(ctx, input.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking.PartyRole(input.ActorID) == "" {
			return pkgerrors.New(pkgerrors.CodeForbidden, "user is not a booking party")
		}

		// idempotent: an existing live contract is returned unchanged
		existing, err := repo.FindLiveByBooking(ctx, input.BookingID)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
		}

		switch {
		case booking.Status == enums.BookingStatusContracting:
		case booking.Status == enums.BookingStatusCancelled && booking.CancelReason != nil &&
			*booking.CancelReason == enums.CancelReasonContractDeadlineExpired:
			// the deadline sweep cancelled this booking; re-initiation
			// restores it so a fresh contract can go out
			if err := repo.UpdateBooking(ctx, booking.ID, map[string]any{
				"status":        enums.BookingStatusContracting,
				"cancel_reason": nil,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore booking")
			}
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not ready for contracting").
				WithReason(pkgerrors.ReasonNegotiationLocked)
		}

		contract, version := PrepareInitiation(booking, now)
		if err := repo.CreateContract(ctx, &contract); err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_contracts_booking_live") {
				return pkgerrors.New(pkgerrors.CodeConflict, "contract already exists for booking")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract")
		}
		version.ContractID = contract.ID
		if err := repo.CreateVersion(ctx, &version); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract version")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContractInitiated,
			AggregateType: enums.AggregateContract,
			AggregateID:   contract.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: booking.PartyRole(input.ActorID)},
			Data: payloads.ContractInitiatedEvent{
				ContractID: contract.ID,
				BookingID:  booking.ID,
				DeadlineAt: contract.DeadlineAt,
			},
		}); err != nil {
			return err
		}

		result = &contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) GetContract(ctx context.Context, contractID, userID uuid.UUID) (*models.Contract, error) {
	contract, _, err := s.loadContractForParty(ctx, s.repo, contractID, userID, false)
	if err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *service) ListVersions(ctx context.Context, contractID, userID uuid.UUID) ([]models.ContractVersion, error) {
	if _, _, err := s.loadContractForParty(ctx, s.repo, contractID, userID, false); err != nil {
		return nil, err
	}
	versions, err := s.repo.ListVersions(ctx, contractID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contract versions")
	}
	return versions, nil
}

func (s *service) Review(ctx context.Context, input ActionInput) (*models.Contract, error) {
	var result *models.Contract
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		contract, booking, err := s.loadContractForParty(ctx, repo, input.ContractID, input.ActorID, true)
		if err != nil {
			return err
		}
		role := booking.PartyRole(input.ActorID)
		if err := CheckVoided(contract); err != nil {
			return err
		}
		if err := CheckDeadline(contract, now); err != nil {
			return err
		}

		// reviewing twice keeps the original timestamp
		if contract.ReviewedAt(role) == nil {
			column := "artist_reviewed_at"
			if role == enums.PartyRolePromoter {
				column = "promoter_reviewed_at"
			}
			if err := repo.UpdateContract(ctx, contract.ID, map[string]any{column: now}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record review")
			}
			setReviewedAt(contract, role, now)
		}

		result = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Accept(ctx context.Context, input ActionInput) (*models.Contract, error) {
	var result *models.Contract
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		contract, booking, err := s.loadContractForParty(ctx, repo, input.ContractID, input.ActorID, true)
		if err != nil {
			return err
		}
		role := booking.PartyRole(input.ActorID)
		if err := CheckVoided(contract); err != nil {
			return err
		}
		if err := CheckDeadline(contract, now); err != nil {
			return err
		}
		if err := s.checkNoPendingEdit(ctx, repo, contract.ID); err != nil {
			return err
		}
		if err := CheckReviewBeforeAccept(contract, role); err != nil {
			return err
		}

		if contract.AcceptedAt(role) == nil {
			column := "artist_accepted_at"
			if role == enums.PartyRolePromoter {
				column = "promoter_accepted_at"
			}
			if err := repo.UpdateContract(ctx, contract.ID, map[string]any{column: now}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record acceptance")
			}
			setAcceptedAt(contract, role, now)
		}

		result = contract
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Sign(ctx context.Context, input SignInput) (*SignResult, error) {
	if violations := ValidateSignature(input.Signature); len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "signature is incomplete").
			WithDetails(map[string]any{
				"reason":     pkgerrors.ReasonIncompleteSignature,
				"violations": violations,
			})
	}

	var result *SignResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		contract, booking, err := s.loadContractForParty(ctx, repo, input.ContractID, input.ActorID, true)
		if err != nil {
			return err
		}
		role := booking.PartyRole(input.ActorID)
		if err := CheckVoided(contract); err != nil {
			return err
		}
		if err := CheckDeadline(contract, now); err != nil {
			return err
		}
		if err := s.checkNoPendingEdit(ctx, repo, contract.ID); err != nil {
			return err
		}
		if err := CheckReviewBeforeAccept(contract, role); err != nil {
			return err
		}
		if err := CheckAcceptBeforeSign(contract, role); err != nil {
			return err
		}
		if contract.PartySignedAt(role) != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "party has already signed this contract")
		}

		signature := &models.ContractSignature{
			ContractID:    contract.ID,
			SignerID:      input.ActorID,
			Role:          role,
			SignatureData: input.Signature.SignatureData,
			SignatureType: input.Signature.SignatureType,
			IPAddress:     input.Signature.IPAddress,
			UserAgent:     input.Signature.UserAgent,
			SignedAt:      now,
		}
		if err := repo.CreateSignature(ctx, signature); err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_contract_signatures_contract_role") {
				return pkgerrors.New(pkgerrors.CodeConflict, "party has already signed this contract")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record signature")
		}

		outcome := CheckDualSignature(contract, role)
		signedColumn := "artist_signed_at"
		if role == enums.PartyRolePromoter {
			signedColumn = "promoter_signed_at"
		}
		updates := map[string]any{
			signedColumn: now,
			"status":     outcome.NewStatus,
		}
		if outcome.FullyExecuted {
			updates["signed_at"] = now
		}
		if err := repo.UpdateContract(ctx, contract.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contract status")
		}

		actor := &outbox.ActorRef{UserID: input.ActorID, Role: role}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContractSigned,
			AggregateType: enums.AggregateContract,
			AggregateID:   contract.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.ContractSignedEvent{
				ContractID: contract.ID,
				BookingID:  booking.ID,
				SignerID:   input.ActorID,
				Role:       role,
			},
		}); err != nil {
			return err
		}

		if outcome.FullyExecuted {
			if err := repo.UpdateBooking(ctx, booking.ID, map[string]any{
				"status": enums.BookingStatusConfirmed,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm booking")
			}
			if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventContractFullyExecuted,
				AggregateType: enums.AggregateContract,
				AggregateID:   contract.ID,
				Version:       1,
				Actor:         actor,
				Data: payloads.ContractFullyExecutedEvent{
					ContractID: contract.ID,
					BookingID:  booking.ID,
					SignedAt:   now,
				},
			}); err != nil {
				return err
			}
		}

		updated := *contract
		updated.Status = outcome.NewStatus
		setPartySignedAt(&updated, role, now)
		if outcome.FullyExecuted {
			updated.SignedAt = &now
		}
		result = &SignResult{Contract: &updated, FullyExecuted: outcome.FullyExecuted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) SubmitEdit(ctx context.Context, input EditRequestInput) (*models.ContractEditRequest, error) {
	if len(input.Changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "change set must not be empty")
	}

	var result *models.ContractEditRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		contract, booking, err := s.loadContractForParty(ctx, repo, input.ContractID, input.ActorID, true)
		if err != nil {
			return err
		}
		role := booking.PartyRole(input.ActorID)
		if err := CheckVoided(contract); err != nil {
			return err
		}
		if contract.EditUsed(role) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "party has already used its one-time edit").
				WithReason(pkgerrors.ReasonEditAlreadyUsed)
		}
		if err := s.checkNoPendingEdit(ctx, repo, contract.ID); err != nil {
			return err
		}

		if violations := ValidateChanges(contract.Terms, input.Changes); len(violations) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "proposed changes violate contract rules").
				WithDetails(map[string]any{"violations": violations})
		}

		request := &models.ContractEditRequest{
			ContractID:    contract.ID,
			RequestedBy:   input.ActorID,
			RequestedRole: role,
			Changes:       input.Changes,
			Status:        enums.EditRequestStatusPending,
		}
		if err := repo.CreateEditRequest(ctx, request); err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_contract_edit_requests_pending") {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "a pending edit request already exists").
					WithReason(pkgerrors.ReasonPendingEditBlocks)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create edit request")
		}

		// the one-time allowance is spent on submission, approved or not
		editColumn := "artist_edit_used"
		if role == enums.PartyRolePromoter {
			editColumn = "promoter_edit_used"
		}
		if err := repo.UpdateContract(ctx, contract.ID, map[string]any{editColumn: true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume edit allowance")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContractEditRequested,
			AggregateType: enums.AggregateContract,
			AggregateID:   contract.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: role},
			Data: payloads.ContractEditRequestedEvent{
				ContractID:    contract.ID,
				RequestID:     request.ID,
				RequestedRole: role,
			},
		}); err != nil {
			return err
		}

		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ResolveEdit(ctx context.Context, input ResolveEditInput) (*ResolveEditResult, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "edit request id required")
	}
	if input.ResolvedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result *ResolveEditResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		request, err := repo.FindEditRequestForUpdate(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "edit request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load edit request")
		}
		if request.Status != enums.EditRequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "edit request is already resolved")
		}

		contract, err := repo.FindContractForUpdate(ctx, request.ContractID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
		}
		if err := CheckVoided(contract); err != nil {
			return err
		}

		status := enums.EditRequestStatusRejected
		var version *models.ContractVersion
		newVersionNumber := contract.CurrentVersion

		if input.Approve {
			booking, err := repo.FindBookingByID(ctx, contract.BookingID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
			}

			merged, err := ApplyChanges(contract.Terms, request.Changes)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply approved changes")
			}
			newVersionNumber = contract.CurrentVersion + 1
			text := RenderContractText(booking, merged)

			version = &models.ContractVersion{
				ContractID:    contract.ID,
				Version:       newVersionNumber,
				Terms:         merged,
				Text:          text,
				ChangeSummary: SummarizeChanges(request.Changes),
			}
			if err := repo.CreateVersion(ctx, version); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract version")
			}
			if err := repo.UpdateContract(ctx, contract.ID, map[string]any{
				"terms":           merged,
				"text":            text,
				"current_version": newVersionNumber,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contract terms")
			}
			status = enums.EditRequestStatusApproved
		}

		if err := repo.UpdateEditRequest(ctx, request.ID, map[string]any{
			"status":      status,
			"resolved_by": input.ResolvedBy,
			"resolved_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve edit request")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContractEditResolved,
			AggregateType: enums.AggregateContract,
			AggregateID:   contract.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ResolvedBy, Role: enums.PartyRoleAdmin},
			Data: payloads.ContractEditResolvedEvent{
				ContractID: contract.ID,
				RequestID:  request.ID,
				Approved:   input.Approve,
				Version:    newVersionNumber,
			},
		}); err != nil {
			return err
		}

		resolved := *request
		resolved.Status = status
		resolved.ResolvedBy = &input.ResolvedBy
		resolved.ResolvedAt = &now
		result = &ResolveEditResult{Request: &resolved, Version: version}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) SweepExpired(ctx context.Context, now time.Time, limit int) ([]SweepResult, error) {
	expired, err := s.repo.FindExpiredSent(ctx, now, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find expired contracts")
	}

	results := make([]SweepResult, 0, len(expired))
	for _, candidate := range expired {
		contractID := candidate.ID
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			contract, err := repo.FindContractForUpdate(ctx, contractID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock contract")
			}
			// a signature may have landed between the scan and the lock
			if contract.Status != enums.ContractStatusSent || !now.After(contract.DeadlineAt) {
				return nil
			}

			booking, err := repo.FindBookingForUpdate(ctx, contract.BookingID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock booking")
			}

			reason := enums.CancelReasonContractDeadlineExpired
			if err := repo.UpdateContract(ctx, contract.ID, map[string]any{
				"status":      enums.ContractStatusVoided,
				"voided_at":   now,
				"void_reason": string(reason),
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "void contract")
			}
			if err := repo.UpdateBooking(ctx, booking.ID, map[string]any{
				"status":        enums.BookingStatusCancelled,
				"cancel_reason": reason,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel booking")
			}

			if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventContractVoided,
				AggregateType: enums.AggregateContract,
				AggregateID:   contract.ID,
				Version:       1,
				Data: payloads.ContractVoidedEvent{
					ContractID: contract.ID,
					BookingID:  booking.ID,
					Reason:     string(reason),
					VoidedAt:   now,
				},
			}); err != nil {
				return err
			}
			if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventBookingCancelled,
				AggregateType: enums.AggregateBooking,
				AggregateID:   booking.ID,
				Version:       1,
				Data: payloads.BookingCancelledEvent{
					BookingID:   booking.ID,
					Reason:      string(reason),
					CancelledAt: now,
				},
			}); err != nil {
				return err
			}
			for _, recipient := range []uuid.UUID{booking.ArtistID, booking.OrganizerID} {
				contractRef := contract.ID
				if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
					EventType:     enums.EventNotificationRequested,
					AggregateType: enums.AggregateBooking,
					AggregateID:   booking.ID,
					Version:       1,
					Data: payloads.NotificationRequestedEvent{
						BookingID:   booking.ID,
						ContractID:  &contractRef,
						RecipientID: recipient,
						Type:        "contract_deadline_expired",
					},
				}); err != nil {
					return err
				}
			}

			results = append(results, SweepResult{
				ContractID: contract.ID,
				BookingID:  booking.ID,
				Reason:     reason,
			})
			return nil
		})
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (s *service) checkNoPendingEdit(ctx context.Context, repo Repository, contractID uuid.UUID) error {
	_, err := repo.FindPendingEdit(ctx, contractID)
	if err == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "a pending edit request blocks this action").
			WithReason(pkgerrors.ReasonPendingEditBlocks)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending edits")
}

// loadContractForParty resolves the contract and its booking, verifying the
// actor is one of the two booking parties. forUpdate row-locks the contract.
func (s *service) loadContractForParty(ctx context.Context, repo Repository, contractID, userID uuid.UUID, forUpdate bool) (*models.Contract, *models.Booking, error) {
	if contractID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	if userID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	find := repo.FindContractByID
	if forUpdate {
		find = repo.FindContractForUpdate
	}
	contract, err := find(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
	}
	booking, err := repo.FindBookingByID(ctx, contract.BookingID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.PartyRole(userID) == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "user is not a booking party")
	}
	return contract, booking, nil
}

func setReviewedAt(contract *models.Contract, role enums.PartyRole, at time.Time) {
	if role == enums.PartyRoleArtist {
		contract.ArtistReviewedAt = &at
		return
	}
	contract.PromoterReviewedAt = &at
}

func setAcceptedAt(contract *models.Contract, role enums.PartyRole, at time.Time) {
	if role == enums.PartyRoleArtist {
		contract.ArtistAcceptedAt = &at
		return
	}
	contract.PromoterAcceptedAt = &at
}

func setPartySignedAt(contract *models.Contract, role enums.PartyRole, at time.Time) {
	if role == enums.PartyRoleArtist {
		contract.ArtistSignedAt = &at
		return
	}
	contract.PromoterSignedAt = &at
}
