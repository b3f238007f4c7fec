package contracts

import (
	"github.com/shopspring/decimal"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// BuildTerms derives the full terms document from an accepted booking.
// Locked facts come straight from the booking; editable categories get
// defaults the parties can renegotiate through the edit workflow.
func BuildTerms(booking *models.Booking) types.ContractTerms {
	fee := booking.OfferAmount
	if booking.FinalAmount != nil {
		fee = *booking.FinalAmount
	}
	commission := fee.Mul(booking.PlatformCommissionPercent).Div(hundred).Round(2)

	return types.ContractTerms{
		Locked: types.LockedTerms{
			Fee:                 fee,
			TotalFee:            fee.Add(commission),
			Currency:            booking.Currency,
			DepositPercent:      booking.DepositPercent,
			PlatformCommission:  booking.PlatformCommissionPercent,
			EventTitle:          booking.EventTitle,
			EventDate:           booking.EventDate.Format("2006-01-02"),
			EventTime:           booking.EventTime,
			SlotType:            booking.SlotType,
			PerformanceDuration: booking.PerformanceDurationMins,
			VenueName:           booking.VenueName,
			ArtistName:          booking.ArtistName,
			OrganizerName:       booking.OrganizerName,
		},
		Editable: defaultEditableTerms(booking),
	}
}

func defaultEditableTerms(booking *models.Booking) types.EditableTerms {
	deposit := booking.DepositPercent
	balance := hundred.Sub(deposit)

	return types.EditableTerms{
		Financial: types.FinancialTerms{
			PaymentMethod: "bank_transfer",
			Milestones: []types.PaymentMilestone{
				{Name: "deposit", Percent: deposit, DueBy: "on_signing"},
				{Name: "balance", Percent: balance, DueBy: "after_performance"},
			},
		},
		Travel: types.TravelTerms{
			CoveredBy: "artist",
			Mode:      "self_arranged",
		},
		Accommodation: types.AccommodationTerms{
			Provided: false,
		},
		TechnicalRider: types.TechnicalRiderTerms{
			SoundProvidedBy:    "venue",
			LightingProvidedBy: "venue",
			SoundcheckMinutes:  60,
		},
		Hospitality: types.HospitalityTerms{
			GreenRoom:     true,
			Catering:      "standard",
			GuestListSize: 2,
		},
		Branding: types.BrandingTerms{
			LogoUsageApproved: false,
			PromoMaterialsBy:  "organizer",
			SocialTagRequired: true,
		},
		ContentRights: types.ContentRightsTerms{
			RecordingAllowed:   false,
			PhotographyAllowed: true,
			UsageScope:         "promotional",
		},
		Cancellation: types.CancellationTerms{
			Penalties: []types.CancellationPenalty{
				{DaysBefore: 30, Percent: decimal.NewFromInt(25)},
				{DaysBefore: 14, Percent: decimal.NewFromInt(50)},
				{DaysBefore: 7, Percent: hundred},
			},
			ForceMajeure: "standard",
		},
	}
}
