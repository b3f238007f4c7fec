package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	"github.com/stagelink/stagelink-backend/pkg/logger"
	"github.com/stagelink/stagelink-backend/pkg/outbox"
	"github.com/stagelink/stagelink-backend/pkg/outbox/payloads"
)

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type outboxExistenceChecker interface {
	Exists(ctx context.Context, eventType enums.OutboxEventType, aggregateType enums.OutboxAggregateType, aggregateID uuid.UUID) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredTurnReader interface {
	FindExpiredTurns(ctx context.Context, cutoff time.Time, limit int) ([]models.Negotiation, error)
}

// NegotiationTurnJobParams configure the turn deadline nudge job.
type NegotiationTurnJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Reader     expiredTurnReader
	Outbox     outboxEmitter
	OutboxRepo outboxExistenceChecker
	BatchSize  int
}

// NewNegotiationTurnJob builds the job that nudges parties whose 24h
// response window elapsed. The negotiation itself is left untouched; only
// a notification event is queued.
func NewNegotiationTurnJob(params NegotiationTurnJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("expired turn reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.OutboxRepo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &negotiationTurnJob{
		logg:       params.Logger,
		db:         params.DB,
		reader:     params.Reader,
		outbox:     params.Outbox,
		outboxRepo: params.OutboxRepo,
		batchSize:  batchSize,
		now:        time.Now,
	}, nil
}

type negotiationTurnJob struct {
	logg       *logger.Logger
	db         txRunner
	reader     expiredTurnReader
	outbox     outboxEmitter
	outboxRepo outboxExistenceChecker
	batchSize  int
	now        func() time.Time
}

func (j *negotiationTurnJob) Name() string { return "negotiation-turn-deadline" }

func (j *negotiationTurnJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	expired, err := j.reader.FindExpiredTurns(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("query expired negotiation turns: %w", err)
	}
	count := 0
	var errs error
	for _, negotiation := range expired {
		if negotiation.AwaitingUserID == nil || negotiation.TurnDeadlineAt == nil {
			continue
		}
		if err := j.emitTurnNudge(ctx, negotiation); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("nudge negotiation %s: %w", negotiation.ID, err))
			continue
		}
		count++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "negotiation turn nudge loop complete")
	return errs
}

func (j *negotiationTurnJob) emitTurnNudge(ctx context.Context, negotiation models.Negotiation) error {
	exists, err := j.outboxRepo.Exists(ctx, enums.EventNegotiationTurnExpiring, enums.AggregateNegotiation, negotiation.ID)
	if err != nil {
		return fmt.Errorf("check turn nudge existence: %w", err)
	}
	if exists {
		return nil
	}
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		event := outbox.DomainEvent{
			EventType:     enums.EventNegotiationTurnExpiring,
			AggregateType: enums.AggregateNegotiation,
			AggregateID:   negotiation.ID,
			Version:       1,
			OccurredAt:    j.now().UTC(),
			Data: payloads.NegotiationTurnExpiringEvent{
				NegotiationID:  negotiation.ID,
				BookingID:      negotiation.BookingID,
				AwaitingUserID: *negotiation.AwaitingUserID,
				TurnDeadlineAt: *negotiation.TurnDeadlineAt,
			},
		}
		return j.outbox.Emit(ctx, tx, event)
	})
}
