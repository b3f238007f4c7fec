package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stagelink/stagelink-backend/api/middleware"
	"github.com/stagelink/stagelink-backend/internal/contracts"
	"github.com/stagelink/stagelink-backend/internal/negotiation"
	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	"github.com/stagelink/stagelink-backend/pkg/logger"
	"github.com/stagelink/stagelink-backend/pkg/pagination"
)

type testNegotiationService struct {
	listFn    func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*negotiation.BookingList, error)
	getFn     func(ctx context.Context, bookingID, userID uuid.UUID) (*negotiation.BookingDetail, error)
	historyFn func(ctx context.Context, bookingID, userID uuid.UUID) ([]models.NegotiationEvent, error)
	proposeFn func(ctx context.Context, input negotiation.ProposeInput) (*models.Proposal, error)
	acceptFn  func(ctx context.Context, input negotiation.DecisionInput) (*models.Booking, error)
	declineFn func(ctx context.Context, input negotiation.DecisionInput) (*models.Booking, error)
}

func (t *testNegotiationService) ListBookings(ctx context.Context, userID uuid.UUID, params pagination.Params) (*negotiation.BookingList, error) {
	return t.listFn(ctx, userID, params)
}

func (t *testNegotiationService) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*negotiation.BookingDetail, error) {
	return t.getFn(ctx, bookingID, userID)
}

func (t *testNegotiationService) History(ctx context.Context, bookingID, userID uuid.UUID) ([]models.NegotiationEvent, error) {
	return t.historyFn(ctx, bookingID, userID)
}

func (t *testNegotiationService) Propose(ctx context.Context, input negotiation.ProposeInput) (*models.Proposal, error) {
	return t.proposeFn(ctx, input)
}

func (t *testNegotiationService) Accept(ctx context.Context, input negotiation.DecisionInput) (*models.Booking, error) {
	return t.acceptFn(ctx, input)
}

func (t *testNegotiationService) Decline(ctx context.Context, input negotiation.DecisionInput) (*models.Booking, error) {
	return t.declineFn(ctx, input)
}

func controllerTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func asParty(r *http.Request, userID uuid.UUID, role enums.PartyRole) *http.Request {
	ctx := middleware.WithUserID(r.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return r.WithContext(ctx)
}

func decodeData(t *testing.T, body []byte, target any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("parse envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		t.Fatalf("parse data: %v", err)
	}
}

func TestListBookingsReturnsPage(t *testing.T) {
	userID := uuid.New()
	next := "b64cursor"
	var gotParams pagination.Params
	svc := &testNegotiationService{
		listFn: func(_ context.Context, gotUser uuid.UUID, params pagination.Params) (*negotiation.BookingList, error) {
			if gotUser != userID {
				t.Fatalf("expected user %s got %s", userID, gotUser)
			}
			gotParams = params
			return &negotiation.BookingList{
				Items:      []models.Booking{{ID: uuid.New()}, {ID: uuid.New()}},
				NextCursor: &next,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=2&cursor=abc", nil)
	req = asParty(req, userID, enums.PartyRoleArtist)
	resp := httptest.NewRecorder()
	ListBookings(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotParams.Limit != 2 || gotParams.Cursor != "abc" {
		t.Fatalf("unexpected pagination params: %+v", gotParams)
	}
	var page struct {
		Items      []json.RawMessage `json:"items"`
		NextCursor *string           `json:"nextCursor"`
	}
	decodeData(t, resp.Body.Bytes(), &page)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items got %d", len(page.Items))
	}
	if page.NextCursor == nil || *page.NextCursor != next {
		t.Fatalf("expected next cursor %q got %v", next, page.NextCursor)
	}
}

func TestListBookingsRejectsBadLimit(t *testing.T) {
	svc := &testNegotiationService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=0", nil)
	req = asParty(req, uuid.New(), enums.PartyRolePromoter)
	resp := httptest.NewRecorder()
	ListBookings(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBookingDetailRequiresUserContext(t *testing.T) {
	svc := &testNegotiationService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), nil)
	req = addRouteParam(req, "bookingId", uuid.NewString())
	resp := httptest.NewRecorder()
	BookingDetail(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestBookingDetailRejectsMalformedID(t *testing.T) {
	svc := &testNegotiationService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/not-a-uuid", nil)
	req = asParty(req, uuid.New(), enums.PartyRoleArtist)
	req = addRouteParam(req, "bookingId", "not-a-uuid")
	resp := httptest.NewRecorder()
	BookingDetail(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProposeChangeSubmitsCounterOffer(t *testing.T) {
	userID := uuid.New()
	bookingID := uuid.New()
	var gotInput negotiation.ProposeInput
	svc := &testNegotiationService{
		proposeFn: func(_ context.Context, input negotiation.ProposeInput) (*models.Proposal, error) {
			gotInput = input
			return &models.Proposal{ID: uuid.New(), BookingID: input.BookingID, Round: 1}, nil
		},
	}

	body := `{"amount":"1250.00","currency":"usd","eventDate":"2026-10-01","message":"can do an earlier slot"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/proposals", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "prop-1")
	req = asParty(req, userID, enums.PartyRolePromoter)
	req = addRouteParam(req, "bookingId", bookingID.String())
	resp := httptest.NewRecorder()
	ProposeChange(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.BookingID != bookingID || gotInput.ActorID != userID {
		t.Fatalf("unexpected identifiers: %+v", gotInput)
	}
	if gotInput.ActorRole != enums.PartyRolePromoter {
		t.Fatalf("expected promoter role got %s", gotInput.ActorRole)
	}
	if !gotInput.Amount.Equal(decimal.RequireFromString("1250.00")) {
		t.Fatalf("expected amount 1250.00 got %s", gotInput.Amount)
	}
	if gotInput.Currency != enums.CurrencyUSD {
		t.Fatalf("expected USD got %s", gotInput.Currency)
	}
	if gotInput.EventDate == nil || gotInput.EventDate.Format("2006-01-02") != "2026-10-01" {
		t.Fatalf("unexpected event date: %v", gotInput.EventDate)
	}
	if gotInput.IdempotencyKey == nil || *gotInput.IdempotencyKey != "prop-1" {
		t.Fatalf("expected idempotency key passthrough, got %v", gotInput.IdempotencyKey)
	}
}

func TestProposeChangeRejectsBadAmount(t *testing.T) {
	svc := &testNegotiationService{}
	bookingID := uuid.NewString()
	body := `{"amount":"twelve hundred","currency":"USD"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID+"/proposals", strings.NewReader(body))
	req = asParty(req, uuid.New(), enums.PartyRoleArtist)
	req = addRouteParam(req, "bookingId", bookingID)
	resp := httptest.NewRecorder()
	ProposeChange(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProposeChangeRejectsUnknownCurrency(t *testing.T) {
	svc := &testNegotiationService{}
	bookingID := uuid.NewString()
	body := `{"amount":"900","currency":"BTC"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID+"/proposals", strings.NewReader(body))
	req = asParty(req, uuid.New(), enums.PartyRoleArtist)
	req = addRouteParam(req, "bookingId", bookingID)
	resp := httptest.NewRecorder()
	ProposeChange(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAcceptOfferCallsService(t *testing.T) {
	userID := uuid.New()
	bookingID := uuid.New()
	var gotInput negotiation.DecisionInput
	svc := &testNegotiationService{
		acceptFn: func(_ context.Context, input negotiation.DecisionInput) (*models.Booking, error) {
			gotInput = input
			return &models.Booking{ID: input.BookingID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/accept", nil)
	req.Header.Set("Idempotency-Key", "dec-1")
	req = asParty(req, userID, enums.PartyRoleArtist)
	req = addRouteParam(req, "bookingId", bookingID.String())
	resp := httptest.NewRecorder()
	AcceptOffer(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.BookingID != bookingID || gotInput.ActorID != userID {
		t.Fatalf("unexpected decision input: %+v", gotInput)
	}
	if gotInput.IdempotencyKey == nil || *gotInput.IdempotencyKey != "dec-1" {
		t.Fatalf("expected idempotency key passthrough, got %v", gotInput.IdempotencyKey)
	}
}

func TestDeclineOfferCallsService(t *testing.T) {
	bookingID := uuid.New()
	declined := false
	svc := &testNegotiationService{
		declineFn: func(_ context.Context, input negotiation.DecisionInput) (*models.Booking, error) {
			declined = true
			return &models.Booking{ID: input.BookingID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/decline", nil)
	req = asParty(req, uuid.New(), enums.PartyRolePromoter)
	req = addRouteParam(req, "bookingId", bookingID.String())
	resp := httptest.NewRecorder()
	DeclineOffer(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !declined {
		t.Fatal("expected decline to reach the service")
	}
}

func TestInitiateContractReturnsCreated(t *testing.T) {
	bookingID := uuid.New()
	contractID := uuid.New()
	svc := &testContractService{
		initiateFn: func(_ context.Context, input contracts.InitiateInput) (*models.Contract, error) {
			if input.BookingID != bookingID {
				t.Fatalf("expected booking %s got %s", bookingID, input.BookingID)
			}
			return &models.Contract{ID: contractID, BookingID: bookingID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/contract", nil)
	req = asParty(req, uuid.New(), enums.PartyRolePromoter)
	req = addRouteParam(req, "bookingId", bookingID.String())
	resp := httptest.NewRecorder()
	InitiateContract(svc, controllerTestLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var contract models.Contract
	decodeData(t, resp.Body.Bytes(), &contract)
	if contract.ID != contractID {
		t.Fatalf("expected contract %s got %s", contractID, contract.ID)
	}
}
