package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateBooking     OutboxAggregateType = "booking"
	AggregateNegotiation OutboxAggregateType = "negotiation"
	AggregateContract    OutboxAggregateType = "contract"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBooking,
	AggregateNegotiation,
	AggregateContract,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventBookingOffered          OutboxEventType = "booking_offered"
	EventBookingCounterOffered   OutboxEventType = "booking_counter_offered"
	EventNegotiationAccepted     OutboxEventType = "negotiation_accepted"
	EventNegotiationDeclined     OutboxEventType = "negotiation_declined"
	EventNegotiationTurnExpiring OutboxEventType = "negotiation_turn_expiring"
	EventContractInitiated       OutboxEventType = "contract_initiated"
	EventContractEditRequested   OutboxEventType = "contract_edit_requested"
	EventContractEditResolved    OutboxEventType = "contract_edit_resolved"
	EventContractSigned          OutboxEventType = "contract_signed"
	EventContractFullyExecuted   OutboxEventType = "contract_fully_executed"
	EventContractVoided          OutboxEventType = "contract_voided"
	EventBookingCancelled        OutboxEventType = "booking_cancelled"
	EventNotificationRequested   OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBookingOffered,
	EventBookingCounterOffered,
	EventNegotiationAccepted,
	EventNegotiationDeclined,
	EventNegotiationTurnExpiring,
	EventContractInitiated,
	EventContractEditRequested,
	EventContractEditResolved,
	EventContractSigned,
	EventContractFullyExecuted,
	EventContractVoided,
	EventBookingCancelled,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
