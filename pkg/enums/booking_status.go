package enums

import "fmt"

// BookingStatus tracks the lifecycle of a booking from first inquiry to settlement.
type BookingStatus string

const (
	BookingStatusInquiry     BookingStatus = "inquiry"
	BookingStatusOffered     BookingStatus = "offered"
	BookingStatusNegotiating BookingStatus = "negotiating"
	BookingStatusContracting BookingStatus = "contracting"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusPaidDeposit BookingStatus = "paid_deposit"
	BookingStatusScheduled   BookingStatus = "scheduled"
	BookingStatusCompleted   BookingStatus = "completed"
	BookingStatusCancelled   BookingStatus = "cancelled"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusInquiry,
	BookingStatusOffered,
	BookingStatusNegotiating,
	BookingStatusContracting,
	BookingStatusConfirmed,
	BookingStatusPaidDeposit,
	BookingStatusScheduled,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the booking can no longer change state.
func (b BookingStatus) IsTerminal() bool {
	return b == BookingStatusCompleted || b == BookingStatusCancelled
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
