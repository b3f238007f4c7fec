package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	"github.com/stagelink/stagelink-backend/pkg/logger"
	"github.com/stagelink/stagelink-backend/pkg/outbox"
)

type fakeTurnReader struct {
	rows []models.Negotiation
}

func (f *fakeTurnReader) FindExpiredTurns(ctx context.Context, cutoff time.Time, limit int) ([]models.Negotiation, error) {
	return f.rows, nil
}

type fakeEmitter struct {
	emitted []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.emitted = append(f.emitted, event)
	return nil
}

type fakeExistenceChecker struct {
	existing map[uuid.UUID]bool
}

func (f *fakeExistenceChecker) Exists(ctx context.Context, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) (bool, error) {
	return f.existing[aggregateID], nil
}

type nopTxRunner struct{}

func (nopTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func expiredNegotiation() models.Negotiation {
	awaiting := uuid.New()
	deadline := time.Now().UTC().Add(-2 * time.Hour)
	return models.Negotiation{
		ID:             uuid.New(),
		BookingID:      uuid.New(),
		State:          enums.NegotiationStateAwaitingArtist,
		Round:          1,
		MaxRounds:      3,
		AwaitingUserID: &awaiting,
		TurnDeadlineAt: &deadline,
	}
}

func newNegotiationTurnJob(t *testing.T, reader *fakeTurnReader, emitter *fakeEmitter, checker *fakeExistenceChecker) Job {
	t.Helper()
	job, err := NewNegotiationTurnJob(NegotiationTurnJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         nopTxRunner{},
		Reader:     reader,
		Outbox:     emitter,
		OutboxRepo: checker,
	})
	if err != nil {
		t.Fatalf("NewNegotiationTurnJob: %v", err)
	}
	return job
}

func TestNegotiationTurnJobEmitsNudge(t *testing.T) {
	negotiation := expiredNegotiation()
	reader := &fakeTurnReader{rows: []models.Negotiation{negotiation}}
	emitter := &fakeEmitter{}
	checker := &fakeExistenceChecker{existing: map[uuid.UUID]bool{}}
	job := newNegotiationTurnJob(t, reader, emitter, checker)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(emitter.emitted) != 1 {
		t.Fatalf("expected one nudge event, got %d", len(emitter.emitted))
	}
	event := emitter.emitted[0]
	if event.EventType != enums.EventNegotiationTurnExpiring {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	if event.AggregateID != negotiation.ID {
		t.Fatalf("nudge aggregate does not match negotiation")
	}
}

func TestNegotiationTurnJobSkipsAlreadyNudged(t *testing.T) {
	negotiation := expiredNegotiation()
	reader := &fakeTurnReader{rows: []models.Negotiation{negotiation}}
	emitter := &fakeEmitter{}
	checker := &fakeExistenceChecker{existing: map[uuid.UUID]bool{negotiation.ID: true}}
	job := newNegotiationTurnJob(t, reader, emitter, checker)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(emitter.emitted) != 0 {
		t.Fatalf("expected no duplicate nudge, got %d", len(emitter.emitted))
	}
}

func TestNegotiationTurnJobSkipsTerminalRows(t *testing.T) {
	terminal := expiredNegotiation()
	terminal.AwaitingUserID = nil
	terminal.TurnDeadlineAt = nil
	reader := &fakeTurnReader{rows: []models.Negotiation{terminal}}
	emitter := &fakeEmitter{}
	checker := &fakeExistenceChecker{existing: map[uuid.UUID]bool{}}
	job := newNegotiationTurnJob(t, reader, emitter, checker)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(emitter.emitted) != 0 {
		t.Fatalf("expected terminal rows to be skipped")
	}
}
