package contracts

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
	"github.com/stagelink/stagelink-backend/pkg/types"
)

// Violation is one broken rule in a proposed change set. Validation always
// reports the complete list, never just the first hit.
type Violation struct {
	Reason  string `json:"reason"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// lockedFieldNames is the denylist of term names fixed at generation time.
// Any change set touching one of these is rejected per field.
var lockedFieldNames = map[string]struct{}{
	"fee":                 {},
	"totalFee":            {},
	"currency":            {},
	"eventDate":           {},
	"eventTime":           {},
	"slotType":            {},
	"venueName":           {},
	"artistName":          {},
	"organizerName":       {},
	"performanceDuration": {},
	"platformCommission":  {},
}

const (
	categoryFinancial      = "financial"
	categoryTravel         = "travel"
	categoryAccommodation  = "accommodation"
	categoryTechnicalRider = "technicalRider"
	categoryHospitality    = "hospitality"
	categoryBranding       = "branding"
	categoryContentRights  = "contentRights"
	categoryCancellation   = "cancellation"
)

func isLockedField(name string) bool {
	_, locked := lockedFieldNames[name]
	return locked
}

// ValidateChanges checks a proposed change set against the current terms and
// returns every violation found. An empty slice means the change set is
// safe to apply.
func ValidateChanges(current types.ContractTerms, changes types.ChangeSet) []Violation {
	violations := []Violation{}

	categories := make([]string, 0, len(changes))
	for category := range changes {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	merged := current.Editable
	for _, category := range categories {
		fields := changes[category]

		if isLockedField(category) {
			violations = append(violations, lockedViolation(category))
			continue
		}

		editable := stripLockedFields(fields, &violations)

		var err error
		switch category {
		case categoryFinancial:
			merged.Financial, err = mergeFinancial(merged.Financial, editable)
		case categoryTravel:
			merged.Travel, err = mergeTravel(merged.Travel, editable)
		case categoryAccommodation:
			merged.Accommodation, err = mergeAccommodation(merged.Accommodation, editable)
		case categoryTechnicalRider:
			merged.TechnicalRider, err = mergeTechnicalRider(merged.TechnicalRider, editable)
		case categoryHospitality:
			merged.Hospitality, err = mergeHospitality(merged.Hospitality, editable)
		case categoryBranding:
			merged.Branding, err = mergeBranding(merged.Branding, editable)
		case categoryContentRights:
			merged.ContentRights, err = mergeContentRights(merged.ContentRights, editable)
		case categoryCancellation:
			merged.Cancellation, err = mergeCancellation(merged.Cancellation, editable)
		default:
			violations = append(violations, Violation{
				Reason:  pkgerrors.ReasonUnknownCategory,
				Field:   category,
				Message: fmt.Sprintf("%q is not an editable category", category),
			})
			continue
		}
		if err != nil {
			violations = append(violations, Violation{
				Reason:  pkgerrors.ReasonUnknownField,
				Field:   category,
				Message: err.Error(),
			})
		}
	}

	if _, touched := changes[categoryFinancial]; touched {
		violations = append(violations, validateMilestones(merged.Financial.Milestones)...)
	}
	if _, touched := changes[categoryCancellation]; touched {
		violations = append(violations, validatePenalties(merged.Cancellation.Penalties)...)
	}
	if _, touched := changes[categoryAccommodation]; touched {
		violations = append(violations, validateAccommodation(merged.Accommodation)...)
	}

	return violations
}

// ApplyChanges merges an already-validated change set into the terms,
// category by category. Locked facts pass through unchanged and the input
// document is never mutated.
func ApplyChanges(current types.ContractTerms, changes types.ChangeSet) (types.ContractTerms, error) {
	next := current
	for category, fields := range changes {
		var err error
		switch category {
		case categoryFinancial:
			next.Editable.Financial, err = mergeFinancial(next.Editable.Financial, fields)
		case categoryTravel:
			next.Editable.Travel, err = mergeTravel(next.Editable.Travel, fields)
		case categoryAccommodation:
			next.Editable.Accommodation, err = mergeAccommodation(next.Editable.Accommodation, fields)
		case categoryTechnicalRider:
			next.Editable.TechnicalRider, err = mergeTechnicalRider(next.Editable.TechnicalRider, fields)
		case categoryHospitality:
			next.Editable.Hospitality, err = mergeHospitality(next.Editable.Hospitality, fields)
		case categoryBranding:
			next.Editable.Branding, err = mergeBranding(next.Editable.Branding, fields)
		case categoryContentRights:
			next.Editable.ContentRights, err = mergeContentRights(next.Editable.ContentRights, fields)
		case categoryCancellation:
			next.Editable.Cancellation, err = mergeCancellation(next.Editable.Cancellation, fields)
		default:
			return current, fmt.Errorf("unknown editable category %q", category)
		}
		if err != nil {
			return current, err
		}
	}
	return next, nil
}

func lockedViolation(field string) Violation {
	return Violation{
		Reason:  pkgerrors.ReasonLockedFieldViolation,
		Field:   field,
		Message: fmt.Sprintf("%q is a locked contract term", field),
	}
}

func stripLockedFields(fields map[string]any, violations *[]Violation) map[string]any {
	editable := make(map[string]any, len(fields))
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if isLockedField(name) {
			*violations = append(*violations, lockedViolation(name))
			continue
		}
		editable[name] = fields[name]
	}
	return editable
}

func validateMilestones(milestones []types.PaymentMilestone) []Violation {
	// an empty schedule sums to 0 and is just as invalid as any other
	// non-100 total, otherwise an edit could strip the payment plan
	sum := decimal.Zero
	for _, m := range milestones {
		sum = sum.Add(m.Percent)
	}
	if !sum.Equal(hundred) {
		return []Violation{{
			Reason:  pkgerrors.ReasonMilestoneSumInvalid,
			Field:   "financial.milestones",
			Message: fmt.Sprintf("milestone percentages sum to %s, expected exactly 100", sum.String()),
		}}
	}
	return nil
}

func validatePenalties(penalties []types.CancellationPenalty) []Violation {
	var violations []Violation
	for i, p := range penalties {
		if p.Percent.Sign() < 0 || p.Percent.GreaterThan(hundred) {
			violations = append(violations, Violation{
				Reason:  pkgerrors.ReasonPenaltyOutOfRange,
				Field:   fmt.Sprintf("cancellation.penalties[%d]", i),
				Message: fmt.Sprintf("penalty percent %s must be within [0, 100]", p.Percent.String()),
			})
		}
	}
	return violations
}

func validateAccommodation(terms types.AccommodationTerms) []Violation {
	if terms.CheckIn == "" || terms.CheckOut == "" {
		return nil
	}
	var violations []Violation
	checkIn, err := time.Parse("15:04", terms.CheckIn)
	if err != nil {
		violations = append(violations, Violation{
			Reason:  pkgerrors.ReasonInvalidTimeOrdering,
			Field:   "accommodation.checkIn",
			Message: fmt.Sprintf("check-in %q is not a valid HH:MM time", terms.CheckIn),
		})
	}
	checkOut, err := time.Parse("15:04", terms.CheckOut)
	if err != nil {
		violations = append(violations, Violation{
			Reason:  pkgerrors.ReasonInvalidTimeOrdering,
			Field:   "accommodation.checkOut",
			Message: fmt.Sprintf("check-out %q is not a valid HH:MM time", terms.CheckOut),
		})
	}
	if len(violations) > 0 {
		return violations
	}
	if !checkIn.Before(checkOut) {
		return []Violation{{
			Reason:  pkgerrors.ReasonInvalidTimeOrdering,
			Field:   "accommodation.checkIn",
			Message: "check-in must be strictly earlier than check-out",
		}}
	}
	return nil
}

// reassign decodes a raw change value into the typed field it targets. The
// round trip through JSON keeps the coercion rules identical to request
// body decoding.
func reassign(field string, value any, target any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", field, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("invalid value for %q: %w", field, err)
	}
	return nil
}

func mergeFinancial(current types.FinancialTerms, fields map[string]any) (types.FinancialTerms, error) {
	next := current
	for name, value := range fields {
		var err error
		switch name {
		case "paymentMethod":
			err = reassign(name, value, &next.PaymentMethod)
		case "milestones":
			next.Milestones = nil
			err = reassign(name, value, &next.Milestones)
		default:
			return current, fmt.Errorf("unknown financial field %q", name)
		}
		if err != nil {
			return current, err
		}
	}
	return next, nil
}

func mergeTravel(current types.TravelTerms, fields map[string]any) (types.TravelTerms, error) {
	next := current
	for name, value := range fields {
		var err error
		switch name {
		case "coveredBy":
			err = reassign(name, value, &next.CoveredBy)
		case "mode":
			err = reassign(name, value, &next.Mode)
		case "notes":
			err = reassign(name, value, &next.Notes)
		default:
			return current, fmt.Errorf("unknown travel field %q", name)
		}
		if err != nil {
			return current, err
		}
	}
	return next, nil
}

func mergeAccommodation(current types.AccommodationTerms, fields map[string]any) (types.AccommodationTerms, error) {
	next := current
	for name, value := range fields {
		var err error
		switch name {
		case "provided":
			err = reassign(name, value, &next.Provided)
		case "nights":
			err = reassign(name, value, &next.Nights)
		case "checkIn":
			err = reassign(name, value, &next.CheckIn)
		case "checkOut":
			err = reassign(name, value, &next.CheckOut)
		case "notes":
			err = reassign(name, value, &next.Notes)
		default:
			return current, fmt.Errorf("unknown accommodation field %q", name)
		}
		if err != nil {
			return current, err
		}
	}
	return next, nil
}

func mergeTechnicalRider(current types.TechnicalRiderTerms, fields map[string]any) (types.TechnicalRiderTerms, error) {
	next := current
	for name, value := range fields {
		var err error
		switch name {
		case "soundProvidedBy":
			err = reassign(name, value, &next.SoundProvidedBy)
		case "lightingProvidedBy":
			err = reassign(name, value, &next.LightingProvidedBy)
		case "backlineNotes":
			err = reassign(name, value, &next.BacklineNotes)
		case "soundcheckMinutes":
			err = reassign(name, value, &next.SoundcheckMinutes)
		default:
			return current, fmt.Errorf("unknown technical rider field %q", name)
		}
		if err != nil {
			return current, err
		}
	}
	return next, nil
}

func mergeHospitality(current types.HospitalityTerms, fields map[string]any) (types.HospitalityTerms, error) {
	next := current
	for name, value := range fields {
		var err error
		switch name {
		case "greenRoom":
			err = reassign(name, value, &next.GreenRoom)
		case "catering":
			err = reassign(name, value, &next.Catering)
		case "guestListSize":
			err = reassign(name, value, &next.GuestListSize)
		default:
			return current, fmt.Errorf("unknown hospitality field %q", name)
		}
		if err != nil {
			return current, err
		}
	}
	return next, nil
}

func mergeBranding(current types.BrandingTerms, fields map[string]any) (types.BrandingTerms, error) {
	next := current
	for name, value := range fields {
		var err error
		switch name {
		case "logoUsageApproved":
			err = reassign(name, value, &next.LogoUsageApproved)
		case "promoMaterialsBy":
			err = reassign(name, value, &next.PromoMaterialsBy)
		case "socialTagRequired":
			err = reassign(name, value, &next.SocialTagRequired)
		default:
			return current, fmt.Errorf("unknown branding field %q", name)
		}
		if err != nil {
			return current, err
		}
	}
	return next, nil
}

func mergeContentRights(current types.ContentRightsTerms, fields map[string]any) (types.ContentRightsTerms, error) {
	next := current
	for name, value := range fields {
		var err error
		switch name {
		case "recordingAllowed":
			err = reassign(name, value, &next.RecordingAllowed)
		case "photographyAllowed":
			err = reassign(name, value, &next.PhotographyAllowed)
		case "usageScope":
			err = reassign(name, value, &next.UsageScope)
		default:
			return current, fmt.Errorf("unknown content rights field %q", name)
		}
		if err != nil {
			return current, err
		}
	}
	return next, nil
}

func mergeCancellation(current types.CancellationTerms, fields map[string]any) (types.CancellationTerms, error) {
	next := current
	for name, value := range fields {
		var err error
		switch name {
		case "penalties":
			next.Penalties = nil
			err = reassign(name, value, &next.Penalties)
		case "forceMajeure":
			err = reassign(name, value, &next.ForceMajeure)
		default:
			return current, fmt.Errorf("unknown cancellation field %q", name)
		}
		if err != nil {
			return current, err
		}
	}
	return next, nil
}

// SummarizeChanges renders a short human-readable description of which
// categories a change set touches, for the ContractVersion log.
func SummarizeChanges(changes types.ChangeSet) string {
	categories := make([]string, 0, len(changes))
	for category := range changes {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	if len(categories) == 0 {
		return "No changes"
	}
	out := "Updated "
	for i, category := range categories {
		if i > 0 {
			out += ", "
		}
		out += category
	}
	return out
}
