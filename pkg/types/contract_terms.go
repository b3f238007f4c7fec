package types

import (
	"github.com/shopspring/decimal"

	"github.com/stagelink/stagelink-backend/pkg/enums"
)

// ContractTerms is the structured terms document attached to a contract.
// Locked facts are fixed at negotiation acceptance; editable categories may
// be renegotiated through the one-time edit workflow.
type ContractTerms struct {
	Locked   LockedTerms   `json:"locked"`
	Editable EditableTerms `json:"editable"`
}

// LockedTerms are the non-negotiable facts of the agreement. They never
// change after contract generation.
type LockedTerms struct {
	Fee                 decimal.Decimal `json:"fee"`
	TotalFee            decimal.Decimal `json:"totalFee"`
	Currency            enums.Currency  `json:"currency"`
	DepositPercent      decimal.Decimal `json:"depositPercent"`
	PlatformCommission  decimal.Decimal `json:"platformCommission"`
	EventTitle          string          `json:"eventTitle"`
	EventDate           string          `json:"eventDate"`
	EventTime           string          `json:"eventTime"`
	SlotType            string          `json:"slotType"`
	PerformanceDuration int             `json:"performanceDuration"`
	VenueName           string          `json:"venueName"`
	ArtistName          string          `json:"artistName"`
	OrganizerName       string          `json:"organizerName"`
}

// EditableTerms groups the renegotiable categories. Each category has its
// own merge rules; see internal/contracts.
type EditableTerms struct {
	Financial      FinancialTerms      `json:"financial"`
	Travel         TravelTerms         `json:"travel"`
	Accommodation  AccommodationTerms  `json:"accommodation"`
	TechnicalRider TechnicalRiderTerms `json:"technicalRider"`
	Hospitality    HospitalityTerms    `json:"hospitality"`
	Branding       BrandingTerms       `json:"branding"`
	ContentRights  ContentRightsTerms  `json:"contentRights"`
	Cancellation   CancellationTerms   `json:"cancellation"`
}

// FinancialTerms covers the payment mechanics that sit outside the locked fee.
type FinancialTerms struct {
	PaymentMethod string             `json:"paymentMethod"`
	Milestones    []PaymentMilestone `json:"milestones"`
}

// PaymentMilestone is one slice of the payment schedule. Percentages across
// a schedule must sum to exactly 100.
type PaymentMilestone struct {
	Name    string          `json:"name"`
	Percent decimal.Decimal `json:"percent"`
	DueBy   string          `json:"dueBy,omitempty"`
}

type TravelTerms struct {
	CoveredBy string `json:"coveredBy"`
	Mode      string `json:"mode"`
	Notes     string `json:"notes,omitempty"`
}

type AccommodationTerms struct {
	Provided bool   `json:"provided"`
	Nights   int    `json:"nights"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Notes    string `json:"notes,omitempty"`
}

type TechnicalRiderTerms struct {
	SoundProvidedBy    string `json:"soundProvidedBy"`
	LightingProvidedBy string `json:"lightingProvidedBy"`
	BacklineNotes      string `json:"backlineNotes,omitempty"`
	SoundcheckMinutes  int    `json:"soundcheckMinutes"`
}

type HospitalityTerms struct {
	GreenRoom     bool   `json:"greenRoom"`
	Catering      string `json:"catering"`
	GuestListSize int    `json:"guestListSize"`
}

type BrandingTerms struct {
	LogoUsageApproved bool   `json:"logoUsageApproved"`
	PromoMaterialsBy  string `json:"promoMaterialsBy"`
	SocialTagRequired bool   `json:"socialTagRequired"`
}

type ContentRightsTerms struct {
	RecordingAllowed   bool   `json:"recordingAllowed"`
	PhotographyAllowed bool   `json:"photographyAllowed"`
	UsageScope         string `json:"usageScope"`
}

// CancellationTerms holds the penalty schedule. Every penalty percent must
// lie within [0, 100].
type CancellationTerms struct {
	Penalties    []CancellationPenalty `json:"penalties"`
	ForceMajeure string                `json:"forceMajeure,omitempty"`
}

type CancellationPenalty struct {
	DaysBefore int             `json:"daysBefore"`
	Percent    decimal.Decimal `json:"percent"`
}

// ChangeSet is the raw shape of a proposed contract edit: editable category
// name to field name to new value. Validation happens in internal/contracts.
type ChangeSet map[string]map[string]any
