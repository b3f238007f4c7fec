package contracts

import (
	"testing"
	"time"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
)

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	return typed.Reason()
}

func TestValidateSignatureComplete(t *testing.T) {
	input := SignatureInput{
		SignatureData: "abc",
		SignatureType: enums.SignatureTypeDrawn,
		IPAddress:     "1.2.3.4",
		UserAgent:     "UA",
	}
	if violations := ValidateSignature(input); len(violations) != 0 {
		t.Fatalf("expected valid signature, got %+v", violations)
	}
}

func TestValidateSignatureReportsEveryMissingField(t *testing.T) {
	violations := ValidateSignature(SignatureInput{})
	if len(violations) != 4 {
		t.Fatalf("expected exactly 4 violations, got %d (%+v)", len(violations), violations)
	}
	for _, v := range violations {
		if v.Reason != pkgerrors.ReasonIncompleteSignature {
			t.Fatalf("unexpected reason %s", v.Reason)
		}
	}
}

func TestCheckReviewAndAcceptOrdering(t *testing.T) {
	now := time.Now()
	contract := &models.Contract{Status: enums.ContractStatusSent}

	if err := CheckReviewBeforeAccept(contract, enums.PartyRoleArtist); reasonOf(t, err) != pkgerrors.ReasonReviewRequired {
		t.Fatalf("expected review_required, got %v", err)
	}
	contract.ArtistReviewedAt = &now
	if err := CheckReviewBeforeAccept(contract, enums.PartyRoleArtist); err != nil {
		t.Fatalf("review check after review: %v", err)
	}

	if err := CheckAcceptBeforeSign(contract, enums.PartyRoleArtist); reasonOf(t, err) != pkgerrors.ReasonAcceptRequired {
		t.Fatalf("expected accept_required, got %v", err)
	}
	contract.ArtistAcceptedAt = &now
	if err := CheckAcceptBeforeSign(contract, enums.PartyRoleArtist); err != nil {
		t.Fatalf("accept check after acceptance: %v", err)
	}

	// ordering is tracked per party
	if err := CheckReviewBeforeAccept(contract, enums.PartyRolePromoter); reasonOf(t, err) != pkgerrors.ReasonReviewRequired {
		t.Fatalf("expected promoter review_required, got %v", err)
	}
}

func TestCheckDualSignature(t *testing.T) {
	now := time.Now()

	first := &models.Contract{Status: enums.ContractStatusSent}
	outcome := CheckDualSignature(first, enums.PartyRoleArtist)
	if outcome.FullyExecuted {
		t.Fatalf("first signature must not complete execution")
	}
	if outcome.NewStatus != enums.ContractStatusSignedByArtist {
		t.Fatalf("unexpected status %s", outcome.NewStatus)
	}

	second := &models.Contract{Status: enums.ContractStatusSignedByArtist, ArtistSignedAt: &now}
	outcome = CheckDualSignature(second, enums.PartyRolePromoter)
	if !outcome.FullyExecuted {
		t.Fatalf("second signature must complete execution")
	}
	if outcome.NewStatus != enums.ContractStatusAdminReview {
		t.Fatalf("expected admin_review, got %s", outcome.NewStatus)
	}
}

func TestCheckVoidedIsUniformAcrossActions(t *testing.T) {
	contract := &models.Contract{Status: enums.ContractStatusVoided}

	first := CheckVoided(contract)
	second := CheckVoided(contract)
	if first == nil || second == nil {
		t.Fatalf("expected voided contract to reject")
	}
	if first.Error() != second.Error() {
		t.Fatalf("voided rejection must be identical for every action")
	}
	if reasonOf(t, first) != pkgerrors.ReasonContractVoided {
		t.Fatalf("expected contract_voided reason, got %v", first)
	}

	live := &models.Contract{Status: enums.ContractStatusSent}
	if err := CheckVoided(live); err != nil {
		t.Fatalf("live contract rejected: %v", err)
	}
}

func TestCheckDeadline(t *testing.T) {
	deadline := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	contract := &models.Contract{Status: enums.ContractStatusSent, DeadlineAt: deadline}

	if err := CheckDeadline(contract, deadline.Add(-time.Hour)); err != nil {
		t.Fatalf("deadline not yet passed: %v", err)
	}
	if err := CheckDeadline(contract, deadline.Add(time.Hour)); reasonOf(t, err) != pkgerrors.ReasonDeadlineExpired {
		t.Fatalf("expected deadline_expired, got %v", err)
	}

	// only sent contracts expire
	signed := &models.Contract{Status: enums.ContractStatusSigned, DeadlineAt: deadline}
	if err := CheckDeadline(signed, deadline.Add(time.Hour)); err != nil {
		t.Fatalf("signed contract must not expire: %v", err)
	}
}
