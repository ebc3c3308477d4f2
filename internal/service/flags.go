package service

import (
	"github.com/ra-risk-server/internal/domain"
)

// ReferenceRange is a borderline band. Values below Low are normal, values
// above High are elevated, and both edges belong to the borderline band.
type ReferenceRange struct {
	Low  float64
	High float64
}

// Flag classifies v against the range.
func (r ReferenceRange) Flag(v float64) domain.FlagLevel {
	switch {
	case v < r.Low:
		return domain.FlagNormal
	case v <= r.High:
		return domain.FlagBorderline
	default:
		return domain.FlagElevated
	}
}

// bracketRanges holds the per-bracket bands for ESR, CRP and RF.
type bracketRanges struct {
	ESRMale   ReferenceRange
	ESRFemale ReferenceRange
	CRP       ReferenceRange
	RF        ReferenceRange
}

// Only the adult bracket distinguishes ESR by sex; the other brackets repeat
// the same band in both slots.
var referenceRanges = map[domain.AgeBracket]bracketRanges{
	domain.BracketPediatric: {
		ESRMale:   ReferenceRange{10, 20},
		ESRFemale: ReferenceRange{10, 20},
		CRP:       ReferenceRange{5, 10},
		RF:        ReferenceRange{10, 20},
	},
	domain.BracketAdult: {
		ESRMale:   ReferenceRange{15, 30},
		ESRFemale: ReferenceRange{20, 40},
		CRP:       ReferenceRange{6, 20},
		RF:        ReferenceRange{14, 30},
	},
	domain.BracketSenior: {
		ESRMale:   ReferenceRange{30, 50},
		ESRFemale: ReferenceRange{30, 50},
		CRP:       ReferenceRange{10, 30},
		RF:        ReferenceRange{20, 40},
	},
}

// Anti-CCP is age independent and its upper edge is exclusive.
const (
	antiCCPBorderline = 20
	antiCCPElevated   = 40
)

// ComputeFlags derives the four biomarker flags from a panel. Negative lab
// values are accepted and land in the normal band.
func ComputeFlags(p domain.BiomarkerPanel) domain.BiomarkerFlags {
	ranges := referenceRanges[p.Bracket()]

	esr := ranges.ESRFemale
	if p.Gender == domain.GenderMale {
		esr = ranges.ESRMale
	}

	return domain.BiomarkerFlags{
		ESR:     esr.Flag(p.ESR),
		CRP:     ranges.CRP.Flag(p.CRP),
		RF:      ranges.RF.Flag(p.RF),
		AntiCCP: antiCCPFlag(p.AntiCCP),
	}
}

func antiCCPFlag(v float64) domain.FlagLevel {
	switch {
	case v < antiCCPBorderline:
		return domain.FlagNormal
	case v < antiCCPElevated:
		return domain.FlagBorderline
	default:
		return domain.FlagElevated
	}
}

// FeatureVector assembles the predictor input for a panel and its flags.
func FeatureVector(p domain.BiomarkerPanel, f domain.BiomarkerFlags) domain.FeatureVector {
	return domain.FeatureVector{
		p.Age,
		p.Gender.Code(),
		p.ESR,
		p.CRP,
		p.RF,
		p.AntiCCP,
		float64(f.ESR),
		float64(f.CRP),
		float64(f.RF),
		float64(f.AntiCCP),
	}
}

// ReferenceBand is one row of the published reference table.
type ReferenceBand struct {
	Marker        string  `json:"marker"`
	Bracket       string  `json:"bracket"`
	Sex           string  `json:"sex,omitempty"`
	BorderlineLow float64 `json:"borderline_low"`
	// BorderlineHigh is inclusive except for Anti-CCP.
	BorderlineHigh float64 `json:"borderline_high"`
	HighInclusive  bool    `json:"high_inclusive"`
}

// ReferenceBands lists every band ComputeFlags applies, bracket by bracket.
func ReferenceBands() []ReferenceBand {
	var out []ReferenceBand
	for _, bracket := range []domain.AgeBracket{domain.BracketPediatric, domain.BracketAdult, domain.BracketSenior} {
		r := referenceRanges[bracket]
		b := string(bracket)
		out = append(out,
			ReferenceBand{"ESR", b, "Male", r.ESRMale.Low, r.ESRMale.High, true},
			ReferenceBand{"ESR", b, "Female", r.ESRFemale.Low, r.ESRFemale.High, true},
			ReferenceBand{"CRP", b, "", r.CRP.Low, r.CRP.High, true},
			ReferenceBand{"RF", b, "", r.RF.Low, r.RF.High, true},
		)
	}
	return append(out, ReferenceBand{"Anti-CCP", "all", "", antiCCPBorderline, antiCCPElevated, false})
}
