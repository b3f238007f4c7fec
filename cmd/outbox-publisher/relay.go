package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stagelink/stagelink-backend/pkg/config"
	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	"github.com/stagelink/stagelink-backend/pkg/logger"
	"github.com/stagelink/stagelink-backend/pkg/outbox"
	"github.com/stagelink/stagelink-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	publishTimeout     = 15 * time.Second
	backoffCeiling     = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type brokerClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type eventStore interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type deadLetterStore interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type eventResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// topicPublisher abstracts a single pubsub topic so tests can stub the
// broker without a live client.
type topicPublisher interface {
	Publish(context.Context, *gcppubsub.Message) pendingPublish
}

type pendingPublish interface {
	Get(context.Context) (string, error)
}

type publisherFor func(topic string) topicPublisher

// RelayParams carry the collaborators for the outbox relay loop.
type RelayParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         dbClient
	Broker     brokerClient
	Events     eventStore
	Registry   eventResolver
	DeadLetter deadLetterStore
	Publishers publisherFor
}

// Relay drains unpublished booking and contract events from the outbox
// table and hands them to pubsub, exactly once per row on the happy path.
type Relay struct {
	logg         *logger.Logger
	db           dbClient
	events       eventStore
	broker       brokerClient
	registry     eventResolver
	deadLetter   deadLetterStore
	publishers   publisherFor
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewRelay(params RelayParams) (*Relay, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Broker == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Events == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Registry == nil {
		return nil, errors.New("event registry is required")
	}
	if params.DeadLetter == nil {
		return nil, errors.New("dlq repository is required")
	}

	publishers := params.Publishers
	if publishers == nil {
		publishers = func(topic string) topicPublisher {
			return wrapGCPPublisher(params.Broker.Publisher(topic))
		}
	}

	outboxCfg := params.Config.Outbox
	batchSize := outboxCfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	maxAttempts := outboxCfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	pollMs := outboxCfg.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}

	return &Relay{
		logg:         params.Logger,
		db:           params.DB,
		events:       params.Events,
		broker:       params.Broker,
		registry:     params.Registry,
		deadLetter:   params.DeadLetter,
		publishers:   publishers,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

// Run polls until the context is canceled. Transient batch errors back the
// loop off exponentially; an empty drain sleeps one poll interval.
func (r *Relay) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for name, ping := range map[string]func(context.Context) error{
		"database": r.db.Ping,
		"pubsub":   r.broker.Ping,
	} {
		if err := ping(ctx); err != nil {
			r.logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}

	backoff := r.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			r.logg.Info(ctx, "outbox relay context canceled")
			return err
		}

		drained, err := r.drain(ctx)
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox relay batch error", err)
			backoff = min(backoff*2, backoffCeiling)
			if err := r.sleep(ctx, jittered(backoff)); err != nil {
				return err
			}
		case drained > 0:
			backoff = r.pollInterval
		default:
			backoff = r.pollInterval
			if err := r.sleep(ctx, jittered(r.pollInterval)); err != nil {
				return err
			}
		}
	}
}

// drain claims one batch of unpublished rows and resolves each to a
// published, retried or dead-lettered state. Returns how many rows were
// claimed.
func (r *Relay) drain(ctx context.Context) (int, error) {
	drained := 0
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		batch, err := r.events.FetchUnpublishedForPublish(tx, r.batchSize, r.maxAttempts)
		if err != nil {
			return err
		}
		drained = len(batch)

		for _, event := range batch {
			resolved, err := r.registry.Resolve(event)
			if err != nil {
				if dlqErr := r.bury(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err, ""); dlqErr != nil {
					return dlqErr
				}
				continue
			}

			topic := resolved.Descriptor.Topic
			if err := r.publish(ctx, event, resolved); err != nil {
				var nonRetry registry.NonRetryableError
				if errors.As(err, &nonRetry) {
					if dlqErr := r.bury(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err, topic); dlqErr != nil {
						return dlqErr
					}
					continue
				}

				if event.AttemptCount+1 >= r.maxAttempts {
					exhausted := fmt.Errorf("max publish attempts reached: %w", err)
					if dlqErr := r.bury(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts, exhausted, topic); dlqErr != nil {
						return dlqErr
					}
					continue
				}

				logCtx := r.logg.WithFields(ctx, r.logFields(event, topic))
				logCtx = r.logg.WithField(logCtx, "error", err.Error())
				r.logg.Warn(logCtx, "outbox publish failed")
				if markErr := r.events.MarkFailedTx(tx, event.ID, err); markErr != nil {
					return fmt.Errorf("mark failure %s: %w", event.ID, markErr)
				}
				continue
			}

			if markErr := r.events.MarkPublishedTx(tx, event.ID); markErr != nil {
				return fmt.Errorf("mark published %s: %w", event.ID, markErr)
			}
			r.logg.Info(r.logg.WithFields(ctx, r.logFields(event, topic)), "outbox event published")
		}
		return nil
	})
	return drained, err
}

func (r *Relay) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := r.publishers(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	msg := &gcppubsub.Message{
		Data:        event.Payload,
		OrderingKey: event.AggregateID.String(),
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	pending := pub.Publish(publishCtx, msg)
	if pending == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := pending.Get(publishCtx)
	return err
}

// bury records the event in the DLQ and pins its attempt count so the
// fetch query never returns it again.
func (r *Relay) bury(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, topic string) error {
	fields := r.logFields(event, topic)
	fields["error_reason"] = reason
	logCtx := r.logg.WithFields(ctx, fields)
	logCtx = r.logg.WithField(logCtx, "error", cause.Error())
	r.logg.Warn(logCtx, "outbox event will not be retried")

	message := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &message,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := r.deadLetter.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := r.events.MarkTerminalTx(tx, event.ID, cause, r.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

func (r *Relay) logFields(event models.OutboxEvent, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if topic != "" {
		fields["topic"] = topic
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (r *Relay) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func jittered(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
