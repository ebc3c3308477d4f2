package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ra-risk-server/internal/domain"
	"github.com/ra-risk-server/internal/feedback"
	"github.com/ra-risk-server/internal/service"
)

// Number accepts a JSON number, a numeric string or a boolean (1/0).
// Form-backed clients send every field as a string.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch string(raw) {
	case "true":
		*n = 1
		return nil
	case "false":
		*n = 0
		return nil
	}

	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(s))
	}

	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	// ParseFloat accepts "NaN" and "Inf", which cannot be rendered back as JSON.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not a finite number: %s", data)
	}
	*n = Number(v)
	return nil
}

// Text accepts a JSON string, number or boolean and keeps its literal form.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		return fmt.Errorf("expected a scalar, got %s", data)
	}
	*t = Text(raw)
	return nil
}

// Flag accepts a JSON boolean, a number (non-zero is true) or a string.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var n Number
	if err := n.UnmarshalJSON(data); err == nil {
		*f = n != 0
		return nil
	}
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "yes", "y", "on":
		*f = true
	default:
		*f = false
	}
	return nil
}

type fieldCheck struct {
	name    string
	present bool
}

func missingFields(checks ...fieldCheck) error {
	var missing []string
	for _, c := range checks {
		if !c.present {
			missing = append(missing, c.name)
		}
	}
	return domain.NewMissingFieldsError(missing)
}

func num(n *Number) float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

func text(t *Text) string {
	if t == nil {
		return ""
	}
	return string(*t)
}

// PredictRequest is the single-prediction payload.
type PredictRequest struct {
	Age                          *Number `json:"age"`
	Gender                       *Text   `json:"gender"`
	RheumatoidFactor             *Number `json:"rheumatoidFactor"`
	AntiCCP                      *Number `json:"antiCCP"`
	CReactiveProtein             *Number `json:"cReactiveProtein"`
	ErythrocyteSedimentationRate *Number `json:"erythrocyteSedimentationRate"`
}

// Panel returns the biomarker panel or a MissingFieldsError.
func (r *PredictRequest) Panel() (domain.BiomarkerPanel, error) {
	if err := missingFields(
		fieldCheck{"age", r.Age != nil},
		fieldCheck{"gender", r.Gender != nil},
		fieldCheck{"rheumatoidFactor", r.RheumatoidFactor != nil},
		fieldCheck{"antiCCP", r.AntiCCP != nil},
		fieldCheck{"cReactiveProtein", r.CReactiveProtein != nil},
		fieldCheck{"erythrocyteSedimentationRate", r.ErythrocyteSedimentationRate != nil},
	); err != nil {
		return domain.BiomarkerPanel{}, err
	}

	return domain.BiomarkerPanel{
		Age:     num(r.Age),
		Gender:  domain.ParseGender(text(r.Gender)),
		ESR:     num(r.ErythrocyteSedimentationRate),
		CRP:     num(r.CReactiveProtein),
		RF:      num(r.RheumatoidFactor),
		AntiCCP: num(r.AntiCCP),
	}, nil
}

// CompareRequest carries two flat panels and the gap between them.
type CompareRequest struct {
	MonthsSinceLastTest *Number `json:"monthsSinceLastTest"`

	PreviousAge     *Number `json:"previousAge"`
	PreviousGender  *Text   `json:"previousGender"`
	PreviousESR     *Number `json:"previousESR"`
	PreviousCRP     *Number `json:"previousCRP"`
	PreviousRF      *Number `json:"previousRF"`
	PreviousAntiCCP *Number `json:"previousAntiCCP"`

	CurrentAge     *Number `json:"currentAge"`
	CurrentGender  *Text   `json:"currentGender"`
	CurrentESR     *Number `json:"currentESR"`
	CurrentCRP     *Number `json:"currentCRP"`
	CurrentRF      *Number `json:"currentRF"`
	CurrentAntiCCP *Number `json:"currentAntiCCP"`
}

// Panels returns previous, current and months, or a MissingFieldsError.
func (r *CompareRequest) Panels() (domain.BiomarkerPanel, domain.BiomarkerPanel, float64, error) {
	if err := missingFields(
		fieldCheck{"monthsSinceLastTest", r.MonthsSinceLastTest != nil},
		fieldCheck{"previousAge", r.PreviousAge != nil},
		fieldCheck{"previousGender", r.PreviousGender != nil},
		fieldCheck{"previousESR", r.PreviousESR != nil},
		fieldCheck{"previousCRP", r.PreviousCRP != nil},
		fieldCheck{"previousRF", r.PreviousRF != nil},
		fieldCheck{"previousAntiCCP", r.PreviousAntiCCP != nil},
		fieldCheck{"currentAge", r.CurrentAge != nil},
		fieldCheck{"currentGender", r.CurrentGender != nil},
		fieldCheck{"currentESR", r.CurrentESR != nil},
		fieldCheck{"currentCRP", r.CurrentCRP != nil},
		fieldCheck{"currentRF", r.CurrentRF != nil},
		fieldCheck{"currentAntiCCP", r.CurrentAntiCCP != nil},
	); err != nil {
		return domain.BiomarkerPanel{}, domain.BiomarkerPanel{}, 0, err
	}

	previous := domain.BiomarkerPanel{
		Age:     num(r.PreviousAge),
		Gender:  domain.ParseGender(text(r.PreviousGender)),
		ESR:     num(r.PreviousESR),
		CRP:     num(r.PreviousCRP),
		RF:      num(r.PreviousRF),
		AntiCCP: num(r.PreviousAntiCCP),
	}
	current := domain.BiomarkerPanel{
		Age:     num(r.CurrentAge),
		Gender:  domain.ParseGender(text(r.CurrentGender)),
		ESR:     num(r.CurrentESR),
		CRP:     num(r.CurrentCRP),
		RF:      num(r.CurrentRF),
		AntiCCP: num(r.CurrentAntiCCP),
	}
	return previous, current, num(r.MonthsSinceLastTest), nil
}

// RecommendRequest is the recommendation payload. Lab values are optional
// and default to zero.
type RecommendRequest struct {
	Age                 *Number `json:"age"`
	Gender              *Text   `json:"gender"`
	SmokingStatus       *Text   `json:"smokingStatus"`
	DrinkingStatus      *Text   `json:"drinkingStatus"`
	RheumatoidArthritis *Number `json:"rheumatoidArthritis"`
	ESR                 *Number `json:"ESR,omitempty"`
	CRP                 *Number `json:"CRP,omitempty"`
	RF                  *Number `json:"RF,omitempty"`
	AntiCCP             *Number `json:"AntiCCP,omitempty"`
	Weight              *Number `json:"weight,omitempty"`
	Vegetarian          *Flag   `json:"vegetarian,omitempty"`
}

// Inputs returns the panel and lifestyle, or a MissingFieldsError.
func (r *RecommendRequest) Inputs() (domain.BiomarkerPanel, domain.Lifestyle, error) {
	if err := missingFields(
		fieldCheck{"age", r.Age != nil},
		fieldCheck{"gender", r.Gender != nil},
		fieldCheck{"smokingStatus", r.SmokingStatus != nil},
		fieldCheck{"drinkingStatus", r.DrinkingStatus != nil},
		fieldCheck{"rheumatoidArthritis", r.RheumatoidArthritis != nil},
	); err != nil {
		return domain.BiomarkerPanel{}, domain.Lifestyle{}, err
	}

	panel := domain.BiomarkerPanel{
		Age:     num(r.Age),
		Gender:  domain.ParseGender(text(r.Gender)),
		ESR:     num(r.ESR),
		CRP:     num(r.CRP),
		RF:      num(r.RF),
		AntiCCP: num(r.AntiCCP),
	}

	lifestyle := domain.Lifestyle{
		Smoking:     domain.ParseSmokingStatus(text(r.SmokingStatus)),
		Drinking:    domain.ParseDrinkingStatus(text(r.DrinkingStatus)),
		RADiagnosed: num(r.RheumatoidArthritis) != 0,
		Vegetarian:  r.Vegetarian != nil && bool(*r.Vegetarian),
	}
	if r.Weight != nil {
		w := float64(*r.Weight)
		lifestyle.WeightKg = &w
	}

	return panel, lifestyle, nil
}

// FactorsAnalyzed echoes the inputs of a single prediction.
type FactorsAnalyzed struct {
	Age              float64 `json:"age"`
	Gender           string  `json:"gender"`
	RheumatoidFactor float64 `json:"rheumatoid_factor"`
	AntiCCP          float64 `json:"anti_ccp"`
	CReactiveProtein float64 `json:"c_reactive_protein"`
	ESR              float64 `json:"esr"`
}

// PredictResponse is the single-prediction result.
type PredictResponse struct {
	AssessmentID     string                  `json:"assessment_id" yaml:"assessment_id"`
	RiskLevel        string                  `json:"risk_level" yaml:"risk_level"`
	RiskScore        float64                 `json:"risk_score" yaml:"risk_score"`
	RiskProbability  float64                 `json:"risk_probability" yaml:"risk_probability"`
	RiskColor        string                  `json:"risk_color" yaml:"risk_color"`
	BinaryPrediction int                     `json:"binary_prediction" yaml:"binary_prediction"`
	Stage            string                  `json:"stage" yaml:"stage"`
	Recommendations  []string                `json:"recommendations" yaml:"recommendations"`
	FactorsAnalyzed  FactorsAnalyzed         `json:"factors_analyzed" yaml:"factors_analyzed"`
	Flags            domain.BiomarkerFlags   `json:"flags" yaml:"flags"`
	ScoreBreakdown   []domain.ScoreComponent `json:"score_breakdown" yaml:"score_breakdown"`
	ModelUsed        string                  `json:"model_used" yaml:"model_used"`
	RuleOnly         bool                    `json:"rule_only" yaml:"rule_only"`
}

// RuleOnlyModelName is reported when no predictor produced the probability.
const RuleOnlyModelName = "rule-score fallback"

// NewPredictResponse shapes a prediction for transport.
func NewPredictResponse(p *domain.Prediction) *PredictResponse {
	panel := p.Assessment.Panel
	binary := 0
	if p.BinaryPrediction {
		binary = 1
	}
	modelUsed := p.Assessment.Model.Source
	if p.RuleOnly || modelUsed == "" {
		modelUsed = RuleOnlyModelName
	}

	return &PredictResponse{
		AssessmentID:     p.Assessment.ID,
		RiskLevel:        p.RiskLevel.String(),
		RiskScore:        service.Round2(p.Probability * 100),
		RiskProbability:  service.Round4(p.Probability),
		RiskColor:        p.RiskLevel.Color(),
		BinaryPrediction: binary,
		Stage:            string(p.Stage),
		Recommendations:  p.Messages,
		FactorsAnalyzed: FactorsAnalyzed{
			Age:              panel.Age,
			Gender:           panel.Gender.String(),
			RheumatoidFactor: panel.RF,
			AntiCCP:          panel.AntiCCP,
			CReactiveProtein: panel.CRP,
			ESR:              panel.ESR,
		},
		Flags:          p.Assessment.Flags,
		ScoreBreakdown: p.Assessment.Breakdown,
		ModelUsed:      modelUsed,
		RuleOnly:       p.RuleOnly,
	}
}

// TestSnapshot is one side of detailedAnalysis.
type TestSnapshot struct {
	AssessmentID string  `json:"assessmentId" yaml:"assessment_id"`
	Age          float64 `json:"age" yaml:"age"`
	Gender       string  `json:"gender" yaml:"gender"`
	ESR          float64 `json:"ESR" yaml:"esr"`
	CRP          float64 `json:"CRP" yaml:"crp"`
	RF           float64 `json:"RF" yaml:"rf"`
	AntiCCP      float64 `json:"Anti-CCP" yaml:"anti_ccp"`
	Probability  float64 `json:"probability" yaml:"probability"`
	Severity     string  `json:"severity" yaml:"severity"`
}

// BiomarkerChangeView is one entry of biomarkerChanges.
type BiomarkerChangeView struct {
	Name          string  `json:"name" yaml:"name"`
	Change        string  `json:"change" yaml:"change"`
	PercentChange float64 `json:"percentChange" yaml:"percent_change"`
}

// CompareResponse is the trend comparison result.
type CompareResponse struct {
	PreviousProbability float64               `json:"previousProbability" yaml:"previous_probability"`
	CurrentProbability  float64               `json:"currentProbability" yaml:"current_probability"`
	ProbabilityChange   float64               `json:"probabilityChange" yaml:"probability_change"`
	MonthsBetweenTests  float64               `json:"monthsBetweenTests" yaml:"months_between_tests"`
	BiomarkerChanges    []BiomarkerChangeView `json:"biomarkerChanges" yaml:"biomarker_changes"`
	Interpretation      string                `json:"interpretation" yaml:"interpretation"`
	Summary             string                `json:"summary" yaml:"summary"`
	RiskTrend           string                `json:"riskTrend" yaml:"risk_trend"`
	DetailedAnalysis    struct {
		PreviousTest TestSnapshot `json:"previousTest" yaml:"previous_test"`
		CurrentTest  TestSnapshot `json:"currentTest" yaml:"current_test"`
	} `json:"detailedAnalysis" yaml:"detailed_analysis"`
}

func snapshot(a *domain.RiskAssessment) TestSnapshot {
	return TestSnapshot{
		AssessmentID: a.ID,
		Age:          a.Panel.Age,
		Gender:       a.Panel.Gender.String(),
		ESR:          a.Panel.ESR,
		CRP:          a.Panel.CRP,
		RF:           a.Panel.RF,
		AntiCCP:      a.Panel.AntiCCP,
		Probability:  service.Round2(a.TrendProbability() * 100),
		Severity:     a.Severity.String(),
	}
}

// NewCompareResponse shapes a trend result for transport.
func NewCompareResponse(t *domain.TrendResult) *CompareResponse {
	resp := &CompareResponse{
		PreviousProbability: t.PreviousProbability,
		CurrentProbability:  t.CurrentProbability,
		ProbabilityChange:   t.ProbabilityChange,
		MonthsBetweenTests:  t.MonthsBetween,
		Interpretation:      strings.Join(t.Interpretation, " "),
		Summary:             service.TrendSummary(t),
		RiskTrend:           string(t.OverallTrend),
	}
	for _, c := range t.BiomarkerChanges {
		resp.BiomarkerChanges = append(resp.BiomarkerChanges, BiomarkerChangeView{
			Name:          c.Name,
			Change:        c.Change,
			PercentChange: c.PercentChange,
		})
	}
	resp.DetailedAnalysis.PreviousTest = snapshot(t.Previous)
	resp.DetailedAnalysis.CurrentTest = snapshot(t.Current)
	return resp
}

// PatientSummary heads the recommendation response.
type PatientSummary struct {
	AssessmentID        string                  `json:"assessmentId" yaml:"assessment_id"`
	Age                 float64                 `json:"age" yaml:"age"`
	Gender              string                  `json:"gender" yaml:"gender"`
	Severity            string                  `json:"severity" yaml:"severity"`
	RiskScore           float64                 `json:"riskScore" yaml:"risk_score"`
	ModelProbability    *float64                `json:"modelProbability" yaml:"model_probability"`
	InflammatoryMarkers domain.BiomarkerFlags   `json:"inflammatoryMarkers" yaml:"inflammatory_markers"`
	ScoreBreakdown      []domain.ScoreComponent `json:"scoreBreakdown" yaml:"score_breakdown"`
}

// RecommendationBlocks groups the four guidance blocks.
type RecommendationBlocks struct {
	Diet           domain.GuidanceBlock `json:"diet" yaml:"diet"`
	Exercise       domain.GuidanceBlock `json:"exercise" yaml:"exercise"`
	Lifestyle      domain.GuidanceBlock `json:"lifestyle" yaml:"lifestyle"`
	MentalWellness domain.GuidanceBlock `json:"mentalWellness" yaml:"mental_wellness"`
}

// RecommendResponse is the recommendation result.
type RecommendResponse struct {
	PatientSummary  PatientSummary       `json:"patientSummary" yaml:"patient_summary"`
	Recommendations RecommendationBlocks `json:"recommendations" yaml:"recommendations"`
	KeyMessages     []string             `json:"keyMessages" yaml:"key_messages"`
}

// NewRecommendResponse shapes an assessment and its guidance for transport.
func NewRecommendResponse(a *domain.RiskAssessment, set domain.RecommendationSet) *RecommendResponse {
	var modelProbability *float64
	if p := a.Model.ProbabilityPtr(); p != nil {
		rounded := service.Round4(*p)
		modelProbability = &rounded
	}

	return &RecommendResponse{
		PatientSummary: PatientSummary{
			AssessmentID:        a.ID,
			Age:                 a.Panel.Age,
			Gender:              a.Panel.Gender.String(),
			Severity:            a.Severity.String(),
			RiskScore:           a.CombinedScore,
			ModelProbability:    modelProbability,
			InflammatoryMarkers: a.Flags,
			ScoreBreakdown:      a.Breakdown,
		},
		Recommendations: RecommendationBlocks{
			Diet:           set.Diet,
			Exercise:       set.Exercise,
			Lifestyle:      set.Lifestyle,
			MentalWellness: set.MentalWellness,
		},
		KeyMessages: set.KeyMessages,
	}
}

// FeedbackRequest records a clinician's verdict on an assessment.
type FeedbackRequest struct {
	AssessmentID  string  `json:"assessment_id" binding:"required"`
	SuggestedTier string  `json:"suggested_tier" binding:"required"`
	ClinicianTier string  `json:"clinician_tier" binding:"required"`
	CombinedScore float64 `json:"combined_score"`
	Notes         string  `json:"notes"`
}

// Feedback converts the request into a validated record.
func (r *FeedbackRequest) Feedback() (*feedback.Feedback, error) {
	suggested, err := domain.ParseSeverityTier(r.SuggestedTier)
	if err != nil {
		return nil, domain.NewValidationError("suggested_tier", err.Error(), r.SuggestedTier)
	}
	clinician, err := domain.ParseSeverityTier(r.ClinicianTier)
	if err != nil {
		return nil, domain.NewValidationError("clinician_tier", err.Error(), r.ClinicianTier)
	}

	fb := &feedback.Feedback{
		AssessmentID:  r.AssessmentID,
		SuggestedTier: suggested,
		ClinicianTier: clinician,
		CombinedScore: r.CombinedScore,
		Notes:         r.Notes,
	}
	fb.Normalize()
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	return fb, nil
}
