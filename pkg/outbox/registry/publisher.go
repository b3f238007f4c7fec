package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/config"
	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	"github.com/stagelink/stagelink-backend/pkg/outbox"
	"github.com/stagelink/stagelink-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.BookingsTopic == "" {
		return nil, fmt.Errorf("bookings topic is required")
	}
	if cfg.ContractsTopic == "" {
		return nil, fmt.Errorf("contracts topic is required")
	}
	if cfg.NotificationTopic == "" {
		return nil, fmt.Errorf("notification topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	bookingsTopic := cfg.BookingsTopic
	contractsTopic := cfg.ContractsTopic
	notificationTopic := cfg.NotificationTopic

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventBookingOffered,
			AggregateType:  enums.AggregateBooking,
			Topic:          bookingsTopic,
			PayloadFactory: func() interface{} { return &payloads.BookingOfferedEvent{} },
		},
		{
			EventType:      enums.EventBookingCounterOffered,
			AggregateType:  enums.AggregateBooking,
			Topic:          bookingsTopic,
			PayloadFactory: func() interface{} { return &payloads.BookingCounterOfferedEvent{} },
		},
		{
			EventType:      enums.EventBookingCancelled,
			AggregateType:  enums.AggregateBooking,
			Topic:          bookingsTopic,
			PayloadFactory: func() interface{} { return &payloads.BookingCancelledEvent{} },
		},
		{
			EventType:      enums.EventNegotiationAccepted,
			AggregateType:  enums.AggregateNegotiation,
			Topic:          bookingsTopic,
			PayloadFactory: func() interface{} { return &payloads.NegotiationAcceptedEvent{} },
		},
		{
			EventType:      enums.EventNegotiationDeclined,
			AggregateType:  enums.AggregateNegotiation,
			Topic:          bookingsTopic,
			PayloadFactory: func() interface{} { return &payloads.NegotiationDeclinedEvent{} },
		},
	} {
		reg.register(desc)
	}
	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventContractInitiated,
			AggregateType:  enums.AggregateContract,
			Topic:          contractsTopic,
			PayloadFactory: func() interface{} { return &payloads.ContractInitiatedEvent{} },
		},
		{
			EventType:      enums.EventContractEditRequested,
			AggregateType:  enums.AggregateContract,
			Topic:          contractsTopic,
			PayloadFactory: func() interface{} { return &payloads.ContractEditRequestedEvent{} },
		},
		{
			EventType:      enums.EventContractEditResolved,
			AggregateType:  enums.AggregateContract,
			Topic:          contractsTopic,
			PayloadFactory: func() interface{} { return &payloads.ContractEditResolvedEvent{} },
		},
		{
			EventType:      enums.EventContractSigned,
			AggregateType:  enums.AggregateContract,
			Topic:          contractsTopic,
			PayloadFactory: func() interface{} { return &payloads.ContractSignedEvent{} },
		},
		{
			EventType:      enums.EventContractFullyExecuted,
			AggregateType:  enums.AggregateContract,
			Topic:          contractsTopic,
			PayloadFactory: func() interface{} { return &payloads.ContractFullyExecutedEvent{} },
		},
		{
			EventType:      enums.EventContractVoided,
			AggregateType:  enums.AggregateContract,
			Topic:          contractsTopic,
			PayloadFactory: func() interface{} { return &payloads.ContractVoidedEvent{} },
		},
	} {
		reg.register(desc)
	}
	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventNegotiationTurnExpiring,
			AggregateType:  enums.AggregateNegotiation,
			Topic:          notificationTopic,
			PayloadFactory: func() interface{} { return &payloads.NegotiationTurnExpiringEvent{} },
		},
		{
			EventType:      enums.EventNotificationRequested,
			AggregateType:  enums.AggregateBooking,
			Topic:          notificationTopic,
			PayloadFactory: func() interface{} { return &payloads.NotificationRequestedEvent{} },
		},
	} {
		reg.register(desc)
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", event.EventType))
	}
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
