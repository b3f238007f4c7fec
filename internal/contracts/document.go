package contracts

import (
	"fmt"
	"strings"
	"time"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	"github.com/stagelink/stagelink-backend/pkg/types"
)

// SigningDeadline is how long both parties have to sign after initiation.
const SigningDeadline = 48 * time.Hour

const initialChangeSummary = "Initial contract generated from accepted negotiation"

// RenderContractText projects the booking facts and terms document into a
// human-readable contract snapshot. The output is a pure function of its
// inputs so any version can be regenerated byte for byte.
func RenderContractText(booking *models.Booking, terms types.ContractTerms) string {
	var b strings.Builder

	b.WriteString("PERFORMANCE AGREEMENT\n")
	b.WriteString("=====================\n\n")

	fmt.Fprintf(&b, "Artist: %s\n", terms.Locked.ArtistName)
	fmt.Fprintf(&b, "Organizer: %s\n", terms.Locked.OrganizerName)
	fmt.Fprintf(&b, "Venue: %s\n\n", terms.Locked.VenueName)

	b.WriteString("EVENT\n")
	fmt.Fprintf(&b, "Title: %s\n", terms.Locked.EventTitle)
	fmt.Fprintf(&b, "Date: %s\n", terms.Locked.EventDate)
	fmt.Fprintf(&b, "Time: %s\n", terms.Locked.EventTime)
	fmt.Fprintf(&b, "Slot: %s\n", terms.Locked.SlotType)
	fmt.Fprintf(&b, "Performance duration: %d minutes\n\n", terms.Locked.PerformanceDuration)

	b.WriteString("FINANCIAL SUMMARY\n")
	fmt.Fprintf(&b, "Performance fee: %s %s\n", terms.Locked.Fee.StringFixed(2), terms.Locked.Currency)
	fmt.Fprintf(&b, "Platform commission: %s%%\n", terms.Locked.PlatformCommission.StringFixed(2))
	fmt.Fprintf(&b, "Total fee: %s %s\n", terms.Locked.TotalFee.StringFixed(2), terms.Locked.Currency)
	fmt.Fprintf(&b, "Deposit: %s%%\n", terms.Locked.DepositPercent.StringFixed(2))
	fmt.Fprintf(&b, "Payment method: %s\n", terms.Editable.Financial.PaymentMethod)
	for _, m := range terms.Editable.Financial.Milestones {
		fmt.Fprintf(&b, "  - %s: %s%% due %s\n", m.Name, m.Percent.StringFixed(2), m.DueBy)
	}
	b.WriteString("\n")

	b.WriteString("CANCELLATION\n")
	for _, p := range terms.Editable.Cancellation.Penalties {
		fmt.Fprintf(&b, "  - within %d days of event: %s%% of fee\n", p.DaysBefore, p.Percent.StringFixed(2))
	}
	if terms.Editable.Cancellation.ForceMajeure != "" {
		fmt.Fprintf(&b, "Force majeure: %s\n", terms.Editable.Cancellation.ForceMajeure)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Booking reference: %s\n", booking.ID)

	return b.String()
}

// PrepareInitiation builds the contract row and its first version for an
// accepted booking. The caller persists both inside one transaction.
func PrepareInitiation(booking *models.Booking, now time.Time) (models.Contract, models.ContractVersion) {
	terms := BuildTerms(booking)
	text := RenderContractText(booking, terms)

	contract := models.Contract{
		BookingID:      booking.ID,
		Status:         enums.ContractStatusSent,
		Text:           text,
		Terms:          terms,
		CurrentVersion: 1,
		InitiatedAt:    now,
		DeadlineAt:     now.Add(SigningDeadline),
	}
	version := models.ContractVersion{
		Version:       1,
		Terms:         terms,
		Text:          text,
		ChangeSummary: initialChangeSummary,
	}
	return contract, version
}
