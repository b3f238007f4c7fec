package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stagelink/stagelink-backend/api/middleware"
	"github.com/stagelink/stagelink-backend/api/responses"
	"github.com/stagelink/stagelink-backend/api/validators"
	"github.com/stagelink/stagelink-backend/internal/contracts"
	"github.com/stagelink/stagelink-backend/internal/negotiation"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
	"github.com/stagelink/stagelink-backend/pkg/logger"
	"github.com/stagelink/stagelink-backend/pkg/pagination"
)

// ListBookings returns the caller's bookings as a cursor page.
func ListBookings(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		list, err := svc.ListBookings(r.Context(), actorID, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"items":      list.Items,
			"nextCursor": list.NextCursor,
		})
	}
}

// BookingDetail returns the booking with its negotiation and proposal history.
func BookingDetail(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := parseIDParam(r, "bookingId", "booking id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetBooking(r.Context(), bookingID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// BookingHistory returns the append-only negotiation event log.
func BookingHistory(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := parseIDParam(r, "bookingId", "booking id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.History(r.Context(), bookingID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}

type proposeChangeRequest struct {
	Amount    string  `json:"amount" validate:"required"`
	Currency  string  `json:"currency" validate:"required"`
	EventDate *string `json:"eventDate,omitempty"`
	SlotType  *string `json:"slotType,omitempty"`
	Message   *string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

// ProposeChange submits a counter-offer for the caller's turn.
func ProposeChange(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := parseIDParam(r, "bookingId", "booking id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload proposeChangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(payload.Amount))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}
		currency, err := enums.ParseCurrency(strings.ToUpper(strings.TrimSpace(payload.Currency)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}
		eventDate, err := parseOptionalDate(payload.EventDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := negotiation.ProposeInput{
			BookingID:      bookingID,
			ActorID:        actorID,
			ActorRole:      actorRoleFromContext(r),
			Amount:         amount,
			Currency:       currency,
			EventDate:      eventDate,
			SlotType:       payload.SlotType,
			Message:        payload.Message,
			IdempotencyKey: idempotencyKeyFrom(r),
		}

		proposal, err := svc.Propose(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, proposal)
	}
}

// AcceptOffer locks the negotiation on the current offer.
func AcceptOffer(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return decisionHandler(svc, logg, svcAccept)
}

// DeclineOffer terminates the negotiation and cancels the booking.
func DeclineOffer(svc negotiation.Service, logg *logger.Logger) http.HandlerFunc {
	return decisionHandler(svc, logg, svcDecline)
}

type decisionKind int

const (
	svcAccept decisionKind = iota
	svcDecline
)

func decisionHandler(svc negotiation.Service, logg *logger.Logger, kind decisionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "negotiation service unavailable"))
			return
		}

		actorID, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := parseIDParam(r, "bookingId", "booking id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := negotiation.DecisionInput{
			BookingID:      bookingID,
			ActorID:        actorID,
			ActorRole:      actorRoleFromContext(r),
			IdempotencyKey: idempotencyKeyFrom(r),
		}

		var booking any
		if kind == svcAccept {
			booking, err = svc.Accept(r.Context(), input)
		} else {
			booking, err = svc.Decline(r.Context(), input)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

// InitiateContract generates the contract for an accepted booking. Repeat
// calls return the existing live contract unchanged.
func InitiateContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
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
		bookingID, err := parseIDParam(r, "bookingId", "booking id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.Initiate(r.Context(), contracts.InitiateInput{
			BookingID: bookingID,
			ActorID:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, contract)
	}
}

func actorFromContext(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return parsed, nil
}

func parseIDParam(r *http.Request, name, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return parsed, nil
}

func actorRoleFromContext(r *http.Request) enums.PartyRole {
	return enums.PartyRole(middleware.RoleFromContext(r.Context()))
}

func idempotencyKeyFrom(r *http.Request) *string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		return nil
	}
	return &key
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	raw := strings.TrimSpace(*value)
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid eventDate")
		}
	}
	return &t, nil
}
