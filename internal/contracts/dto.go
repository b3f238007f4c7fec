package contracts

import (
	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	"github.com/stagelink/stagelink-backend/pkg/types"
)

// InitiateInput requests contract generation for an accepted booking.
type InitiateInput struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
}

// ActionInput identifies the contract and acting party for review/accept.
type ActionInput struct {
	ContractID uuid.UUID
	ActorID    uuid.UUID
}

// SignInput carries one party's signature submission.
type SignInput struct {
	ContractID uuid.UUID
	ActorID    uuid.UUID
	Signature  SignatureInput
}

// SignResult reports the outcome of a signature.
type SignResult struct {
	Contract      *models.Contract `json:"contract"`
	FullyExecuted bool             `json:"fullyExecuted"`
}

// EditRequestInput carries one party's proposed terms changes.
type EditRequestInput struct {
	ContractID uuid.UUID
	ActorID    uuid.UUID
	Changes    types.ChangeSet
}

// ResolveEditInput is an admin decision on a pending edit request.
type ResolveEditInput struct {
	RequestID  uuid.UUID
	ResolvedBy uuid.UUID
	Approve    bool
}

// ResolveEditResult reports the resolution outcome. Version is nil when the
// request was rejected.
type ResolveEditResult struct {
	Request *models.ContractEditRequest `json:"request"`
	Version *models.ContractVersion    `json:"version,omitempty"`
}

// SweepResult is one contract voided by the deadline sweep.
type SweepResult struct {
	ContractID uuid.UUID          `json:"contractId"`
	BookingID  uuid.UUID          `json:"bookingId"`
	Reason     enums.CancelReason `json:"reason"`
}
