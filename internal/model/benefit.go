package model

import "time"

// Benefit is a social-security benefit row as read by the prediction tasks.
type Benefit struct {
	MemberID    string
	BenefitType string
	Status      string
	Amount      float64 // zero when the row carries no amount
	ExpiryDate  time.Time
	Phone       string // joined from the member profile, empty when unknown
}

// Thai display names for benefit types, used in notification copy.
var BenefitNameTH = map[string]string{
	"healthcare":    "รักษาพยาบาล",
	"unemployment":  "ว่างงาน",
	"childbirth":    "คลอดบุตร",
	"child_support": "สงเคราะห์บุตร",
	"disability":    "ทุพพลภาพ",
	"old_age":       "ชราภาพ",
	"death":         "เสียชีวิต",
}

// BenefitName returns the Thai label for a benefit type, falling back to
// the raw type for unknown values.
func BenefitName(benefitType string) string {
	if name, ok := BenefitNameTH[benefitType]; ok {
		return name
	}
	return benefitType
}

// Profile is the slice of a member profile that outreach needs.
type Profile struct {
	MemberID string
	Phone    string
}
