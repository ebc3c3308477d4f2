// Package domain contains the value types shared by the rheumatoid arthritis
// risk engine, its transports and its stores.
//
// All types here are request-scoped values. Nothing in this package holds
// mutable state.
package domain

import (
	"errors"
	"strings"
	"time"
)

// Gender is the binary sex used by the reference-range tables.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// AgeBracket selects which reference-range row applies to a panel.
type AgeBracket string

const (
	BracketPediatric AgeBracket = "pediatric"
	BracketAdult     AgeBracket = "adult"
	BracketSenior    AgeBracket = "senior"
)

// FlagLevel is the ordinal severity of a single biomarker.
type FlagLevel int

const (
	FlagNormal     FlagLevel = 0
	FlagBorderline FlagLevel = 1
	FlagElevated   FlagLevel = 2
)

func (f FlagLevel) String() string {
	switch f {
	case FlagBorderline:
		return "borderline"
	case FlagElevated:
		return "elevated"
	default:
		return "normal"
	}
}

// SmokingStatus doubles as the smoking points in the rule score.
type SmokingStatus int

const (
	SmokingNever   SmokingStatus = 0
	SmokingFormer  SmokingStatus = 1
	SmokingCurrent SmokingStatus = 2
)

// DrinkingStatus doubles as the drinking points in the rule score.
type DrinkingStatus int

const (
	DrinkingNone       DrinkingStatus = 0
	DrinkingOccasional DrinkingStatus = 1
	DrinkingFrequent   DrinkingStatus = 2
)

// SeverityTier is the recommendation-context scale over the combined score.
type SeverityTier string

const (
	TierLowNormal    SeverityTier = "Low/Normal"
	TierBorderline   SeverityTier = "Borderline"
	TierModerate     SeverityTier = "Moderate"
	TierSevere       SeverityTier = "Severe"
	TierSevereUrgent SeverityTier = "Severe - Urgent"
)

// RiskLevel is the coarse single-prediction scale over the probability.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Very Low"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// PredictionStage is the finer single-prediction banding used to pick the
// headline message.
type PredictionStage string

const (
	StageNormal   PredictionStage = "normal"
	StageMild     PredictionStage = "mild"
	StageEarly    PredictionStage = "early"
	StageModerate PredictionStage = "moderate"
	StageSevere   PredictionStage = "severe"
	StageAdvanced PredictionStage = "advanced"
)

// TrendDirection is the strict comparison of two probabilities.
type TrendDirection string

const (
	TrendImproved TrendDirection = "Improved"
	TrendWorsened TrendDirection = "Worsened"
	TrendStable   TrendDirection = "Stable"
)

// Sentinel errors
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidGender         = errors.New("invalid gender")
	ErrInvalidTier           = errors.New("invalid severity tier")
	ErrPredictorUnavailable  = errors.New("predictor unavailable")
	ErrProbabilityOutOfRange = errors.New("probability outside [0,1]")
	ErrFeedbackDisabled      = errors.New("feedback store disabled")
)

// ParseGender accepts "male", "m" and "1" in any case as Male. Everything
// else, including an empty string, is Female.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "1":
		return GenderMale
	default:
		return GenderFemale
	}
}

// IsValid reports whether g is one of the two known values.
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// Code returns the numeric encoding fed to the predictor (1 male, 0 female).
func (g Gender) Code() float64 {
	if g == GenderMale {
		return 1
	}
	return 0
}

func (g Gender) String() string {
	return string(g)
}

// BracketForAge places an age into exactly one bracket. 18 and 60 are adult.
func BracketForAge(age float64) AgeBracket {
	switch {
	case age < 18:
		return BracketPediatric
	case age <= 60:
		return BracketAdult
	default:
		return BracketSenior
	}
}

// ParseSmokingStatus maps the free-text smoking answer onto a status.
// Unknown answers count as never smoked.
func ParseSmokingStatus(s string) SmokingStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "former", "quit":
		return SmokingFormer
	case "current", "yes":
		return SmokingCurrent
	default:
		return SmokingNever
	}
}

// Points returns the unweighted contribution to the rule score.
func (s SmokingStatus) Points() int {
	if s < SmokingNever || s > SmokingCurrent {
		return 0
	}
	return int(s)
}

func (s SmokingStatus) String() string {
	switch s {
	case SmokingFormer:
		return "former"
	case SmokingCurrent:
		return "current"
	default:
		return "never"
	}
}

// ParseDrinkingStatus maps Never/Moderate/Regular onto a drinking category.
// Unknown answers count as non-drinker.
func ParseDrinkingStatus(s string) DrinkingStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "moderate":
		return DrinkingOccasional
	case "regular":
		return DrinkingFrequent
	default:
		return DrinkingNone
	}
}

// Points returns the unweighted contribution to the rule score.
func (d DrinkingStatus) Points() int {
	if d < DrinkingNone || d > DrinkingFrequent {
		return 0
	}
	return int(d)
}

func (d DrinkingStatus) String() string {
	switch d {
	case DrinkingOccasional:
		return "occasional drinker"
	case DrinkingFrequent:
		return "frequent drinker"
	default:
		return "non-drinker"
	}
}

// IsValid reports whether the tier is one of the five known labels.
func (t SeverityTier) IsValid() bool {
	return t.Rank() >= 0
}

// Rank orders tiers from 0 (Low/Normal) to 4 (Severe - Urgent); -1 if unknown.
func (t SeverityTier) Rank() int {
	switch t {
	case TierLowNormal:
		return 0
	case TierBorderline:
		return 1
	case TierModerate:
		return 2
	case TierSevere:
		return 3
	case TierSevereUrgent:
		return 4
	default:
		return -1
	}
}

// IsSevere is true for Severe and Severe - Urgent.
func (t SeverityTier) IsSevere() bool {
	return t == TierSevere || t == TierSevereUrgent
}

func (t SeverityTier) String() string {
	return string(t)
}

// ParseSeverityTier validates a tier label coming from outside.
func ParseSeverityTier(s string) (SeverityTier, error) {
	t := SeverityTier(strings.TrimSpace(s))
	if !t.IsValid() {
		return "", ErrInvalidTier
	}
	return t, nil
}

// Color is the display colour attached to each risk level.
func (r RiskLevel) Color() string {
	switch r {
	case RiskHigh:
		return "red"
	case RiskModerate:
		return "orange"
	case RiskLow:
		return "yellow"
	default:
		return "green"
	}
}

// Rank orders levels from 0 (Very Low) to 3 (High).
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskModerate:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

func (r RiskLevel) String() string {
	return string(r)
}

// BiomarkerPanel is one set of lab results taken at a single test event.
type BiomarkerPanel struct {
	Age     float64 `json:"age" yaml:"age"`
	Gender  Gender  `json:"gender" yaml:"gender"`
	ESR     float64 `json:"esr" yaml:"esr"`
	CRP     float64 `json:"crp" yaml:"crp"`
	RF      float64 `json:"rf" yaml:"rf"`
	AntiCCP float64 `json:"anti_ccp" yaml:"anti_ccp"`
}

// Bracket returns the age bracket of the panel.
func (p BiomarkerPanel) Bracket() AgeBracket {
	return BracketForAge(p.Age)
}

// LogFields deliberately omits lab values.
func (p BiomarkerPanel) LogFields() map[string]any {
	return map[string]any{
		"age_bracket": string(p.Bracket()),
		"gender":      string(p.Gender),
	}
}

// BiomarkerFlags holds the four ordinal flags derived from a panel.
type BiomarkerFlags struct {
	ESR     FlagLevel `json:"ESR_flag" yaml:"esr_flag"`
	CRP     FlagLevel `json:"CRP_flag" yaml:"crp_flag"`
	RF      FlagLevel `json:"RF_flag" yaml:"rf_flag"`
	AntiCCP FlagLevel `json:"AntiCCP_flag" yaml:"anti_ccp_flag"`
}

// Sum is the inflammation points used by the rule score (0..8).
func (f BiomarkerFlags) Sum() int {
	return int(f.ESR) + int(f.CRP) + int(f.RF) + int(f.AntiCCP)
}

// Inflamed is true when ESR or CRP is at least borderline.
func (f BiomarkerFlags) Inflamed() bool {
	return f.ESR >= FlagBorderline || f.CRP >= FlagBorderline
}

// Autoimmune is true when RF or Anti-CCP is at least borderline.
func (f BiomarkerFlags) Autoimmune() bool {
	return f.RF >= FlagBorderline || f.AntiCCP >= FlagBorderline
}

// Lifestyle carries the non-lab inputs to the rule score and recommendations.
type Lifestyle struct {
	Smoking     SmokingStatus  `json:"smoking" yaml:"smoking"`
	Drinking    DrinkingStatus `json:"drinking" yaml:"drinking"`
	RADiagnosed bool           `json:"ra_diagnosed" yaml:"ra_diagnosed"`
	Vegetarian  bool           `json:"vegetarian" yaml:"vegetarian"`
	WeightKg    *float64       `json:"weight_kg,omitempty" yaml:"weight_kg,omitempty"`
}

// ModelResult is the adapter output. Available is false when no predictor
// is configured or the predictor failed; Probability is then zero.
type ModelResult struct {
	Probability float64 `json:"probability"`
	Available   bool    `json:"available"`
	Source      string  `json:"source,omitempty"`
}

// ProbabilityPtr returns nil when the model was unavailable.
func (m ModelResult) ProbabilityPtr() *float64 {
	if !m.Available {
		return nil
	}
	p := m.Probability
	return &p
}

// ScoreComponent is one factor's share of the rule score.
type ScoreComponent struct {
	Factor       string  `json:"factor"`
	Points       int     `json:"points"`
	Weight       int     `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// RiskAssessment is the evaluation of one panel plus lifestyle.
type RiskAssessment struct {
	ID            string           `json:"id"`
	Panel         BiomarkerPanel   `json:"panel"`
	Flags         BiomarkerFlags   `json:"flags"`
	RuleScore     float64          `json:"rule_score"`
	Model         ModelResult      `json:"model"`
	CombinedScore float64          `json:"combined_score"`
	Severity      SeverityTier     `json:"severity"`
	Breakdown     []ScoreComponent `json:"breakdown"`
	AssessedAt    time.Time        `json:"assessed_at"`
}

// LogFields returns structured fields for audit logging.
func (a *RiskAssessment) LogFields() map[string]any {
	return map[string]any{
		"assessment_id":   a.ID,
		"rule_score":      a.RuleScore,
		"combined_score":  a.CombinedScore,
		"severity":        string(a.Severity),
		"model_available": a.Model.Available,
		"flag_sum":        a.Flags.Sum(),
	}
}

// TrendProbability is the value compared between two assessments: the model
// probability when present, otherwise the combined score as a fraction.
func (a *RiskAssessment) TrendProbability() float64 {
	if a.Model.Available {
		return a.Model.Probability
	}
	return a.CombinedScore / 100
}

// BiomarkerChange describes the movement of one lab value between panels.
type BiomarkerChange struct {
	Name          string  `json:"name"`
	Previous      float64 `json:"previous"`
	Current       float64 `json:"current"`
	PercentChange float64 `json:"percentChange"`
	Change        string  `json:"change"`
}

// TrendResult is the comparison of two panels taken MonthsBetween apart.
type TrendResult struct {
	Previous            *RiskAssessment   `json:"previous"`
	Current             *RiskAssessment   `json:"current"`
	MonthsBetween       float64           `json:"months_between"`
	PreviousProbability float64           `json:"previous_probability"`
	CurrentProbability  float64           `json:"current_probability"`
	ProbabilityChange   float64           `json:"probability_change"`
	BiomarkerChanges    []BiomarkerChange `json:"biomarker_changes"`
	Interpretation      []string          `json:"interpretation"`
	OverallTrend        TrendDirection    `json:"overall_trend"`
}

// PercentChanges returns the per-biomarker changes keyed by name.
func (t *TrendResult) PercentChanges() map[string]float64 {
	out := make(map[string]float64, len(t.BiomarkerChanges))
	for _, c := range t.BiomarkerChanges {
		out[c.Name] = c.PercentChange
	}
	return out
}

// Prediction is the single-panel result with its messages.
type Prediction struct {
	Assessment       *RiskAssessment `json:"assessment"`
	Probability      float64         `json:"probability"`
	RuleOnly         bool            `json:"rule_only"`
	Stage            PredictionStage `json:"stage"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	BinaryPrediction bool            `json:"binary_prediction"`
	Messages         []string        `json:"messages"`
}

// GuidanceSection is a titled list of bullet items.
type GuidanceSection struct {
	Title string   `json:"title" yaml:"title"`
	Items []string `json:"items" yaml:"items"`
}

// GuidanceBlock groups sections under one heading.
type GuidanceBlock struct {
	Title    string            `json:"title" yaml:"title"`
	Sections []GuidanceSection `json:"sections" yaml:"sections"`
}

// RecommendationSet is the full output of the recommendation selector.
type RecommendationSet struct {
	Diet           GuidanceBlock `json:"diet" yaml:"diet"`
	Exercise       GuidanceBlock `json:"exercise" yaml:"exercise"`
	Lifestyle      GuidanceBlock `json:"lifestyle" yaml:"lifestyle"`
	MentalWellness GuidanceBlock `json:"mentalWellness" yaml:"mental_wellness"`
	KeyMessages    []string      `json:"keyMessages" yaml:"key_messages"`
}

// RecommendationContext is everything the selector looks at.
type RecommendationContext struct {
	Tier      SeverityTier
	Flags     BiomarkerFlags
	Age       float64
	Lifestyle Lifestyle
}
