package controllers

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/stagelink/stagelink-backend/api/responses"
	"github.com/stagelink/stagelink-backend/api/validators"
	"github.com/stagelink/stagelink-backend/internal/contracts"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
	"github.com/stagelink/stagelink-backend/pkg/logger"
	"github.com/stagelink/stagelink-backend/pkg/types"
)

// ContractDetail returns the contract for one of its booking parties.
func ContractDetail(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := parseIDParam(r, "contractId", "contract id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.GetContract(r.Context(), contractID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contract)
	}
}

// ContractVersions returns the append-only version history.
func ContractVersions(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := parseIDParam(r, "contractId", "contract id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		versions, err := svc.ListVersions(r.Context(), contractID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, versions)
	}
}

// ReviewContract marks the contract reviewed by the calling party.
func ReviewContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return contractActionHandler(svc, logg, svcReview)
}

// AcceptContract marks the contract accepted by the calling party.
func AcceptContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return contractActionHandler(svc, logg, svcContractAccept)
}

type contractActionKind int

const (
	svcReview contractActionKind = iota
	svcContractAccept
)

func contractActionHandler(svc contracts.Service, logg *logger.Logger, kind contractActionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := parseIDParam(r, "contractId", "contract id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := contracts.ActionInput{ContractID: contractID, ActorID: actorID}
		var contract any
		if kind == svcReview {
			contract, err = svc.Review(r.Context(), input)
		} else {
			contract, err = svc.Accept(r.Context(), input)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contract)
	}
}

type signContractRequest struct {
	SignatureData string `json:"signatureData" validate:"required"`
	SignatureType string `json:"signatureType" validate:"required"`
}

// SignContract records the calling party's signature. IP and user agent are
// captured from the request itself, not the body.
func SignContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := parseIDParam(r, "contractId", "contract id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload signContractRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		signatureType, err := enums.ParseSignatureType(strings.TrimSpace(payload.SignatureType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid signature type"))
			return
		}

		result, err := svc.Sign(r.Context(), contracts.SignInput{
			ContractID: contractID,
			ActorID:    actorID,
			Signature: contracts.SignatureInput{
				SignatureData: payload.SignatureData,
				SignatureType: signatureType,
				IPAddress:     clientIP(r),
				UserAgent:     r.UserAgent(),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type submitEditRequest struct {
	Changes types.ChangeSet `json:"changes" validate:"required"`
}

// SubmitContractEdit files the calling party's one edit request.
func SubmitContractEdit(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contractID, err := parseIDParam(r, "contractId", "contract id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitEditRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.SubmitEdit(r.Context(), contracts.EditRequestInput{
			ContractID: contractID,
			ActorID:    actorID,
			Changes:    payload.Changes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

type resolveEditRequest struct {
	Decision string `json:"decision" validate:"required"`
}

// ResolveContractEdit applies or rejects a pending edit request (admin only).
func ResolveContractEdit(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		requestID, err := parseIDParam(r, "requestId", "edit request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload resolveEditRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		approve, err := parseEditDecision(payload.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResolveEdit(r.Context(), contracts.ResolveEditInput{
			RequestID:  requestID,
			ResolvedBy: actorID,
			Approve:    approve,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

const defaultSweepLimit = 100

// AdminSweepContracts runs the deadline sweep on demand.
func AdminSweepContracts(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contract service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultSweepLimit, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.SweepExpired(r.Context(), time.Now().UTC(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"voided":  len(results),
			"results": results,
		})
	}
}

func parseEditDecision(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approve":
		return true, nil
	case "reject":
		return false, nil
	default:
		return false, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
