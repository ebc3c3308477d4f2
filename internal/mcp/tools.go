package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ra-risk-server/internal/api"
)

func (s *Server) registerRiskTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "predict_ra_risk",
		Description: "Estimate rheumatoid arthritis risk from one lab panel. Requires age, gender, " +
			"rheumatoidFactor (IU/mL), antiCCP (U/mL), cReactiveProtein (mg/L) and " +
			"erythrocyteSedimentationRate (mm/hr).",
	}, s.handlePredict)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "compare_ra_risk",
		Description: "Compare two lab panels taken monthsSinceLastTest apart. Takes previousAge, previousGender, " +
			"previousESR, previousCRP, previousRF, previousAntiCCP and the same six current* fields.",
	}, s.handleCompare)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "generate_recommendations",
		Description: "Generate diet, exercise, lifestyle and mental wellness guidance. Requires age, gender, " +
			"smokingStatus (Never/Former/Current), drinkingStatus (Never/Moderate/Regular) and " +
			"rheumatoidArthritis (0/1). ESR, CRP, RF, AntiCCP, weight and vegetarian are optional.",
	}, s.handleRecommend)
}

func (s *Server) handlePredict(ctx context.Context, _ *mcp.CallToolRequest, in api.PredictRequest) (*mcp.CallToolResult, api.PredictResponse, error) {
	s.logger.WithField("tool", "predict_ra_risk").Info("Tool invoked")

	panel, err := in.Panel()
	if err != nil {
		return nil, api.PredictResponse{}, err
	}

	resp := api.NewPredictResponse(s.engine.Predict(ctx, panel))
	text := fmt.Sprintf("Risk level: %s (%.2f%%, %s)\n%s",
		resp.RiskLevel, resp.RiskScore, resp.ModelUsed, strings.Join(resp.Recommendations, "\n"))
	return textResult(text), *resp, nil
}

func (s *Server) handleCompare(ctx context.Context, _ *mcp.CallToolRequest, in api.CompareRequest) (*mcp.CallToolResult, api.CompareResponse, error) {
	s.logger.WithField("tool", "compare_ra_risk").Info("Tool invoked")

	previous, current, months, err := in.Panels()
	if err != nil {
		return nil, api.CompareResponse{}, err
	}

	resp := api.NewCompareResponse(s.engine.Compare(ctx, previous, current, months))
	return textResult(resp.Summary + "\n" + resp.Interpretation), *resp, nil
}

func (s *Server) handleRecommend(ctx context.Context, _ *mcp.CallToolRequest, in api.RecommendRequest) (*mcp.CallToolResult, api.RecommendResponse, error) {
	s.logger.WithField("tool", "generate_recommendations").Info("Tool invoked")

	panel, lifestyle, err := in.Inputs()
	if err != nil {
		return nil, api.RecommendResponse{}, err
	}

	resp := api.NewRecommendResponse(s.engine.Recommend(ctx, panel, lifestyle))
	text := fmt.Sprintf("Severity: %s (score %.2f)\n%s",
		resp.PatientSummary.Severity, resp.PatientSummary.RiskScore, strings.Join(resp.KeyMessages, "\n"))
	return textResult(text), *resp, nil
}

type submitFeedbackInput struct {
	AssessmentID  string  `json:"assessment_id" jsonschema:"id returned by a previous assessment"`
	SuggestedTier string  `json:"suggested_tier" jsonschema:"tier the engine suggested"`
	ClinicianTier string  `json:"clinician_tier" jsonschema:"tier the clinician assigned"`
	CombinedScore float64 `json:"combined_score,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

type getFeedbackInput struct {
	AssessmentID string `json:"assessment_id"`
}

type listFeedbackInput struct {
	Limit  int `json:"limit,omitempty" jsonschema:"maximum entries to return, default 50"`
	Offset int `json:"offset,omitempty"`
}

func (s *Server) registerFeedbackTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "submit_clinician_feedback",
		Description: "Record whether a clinician agrees with the suggested severity tier of an assessment. " +
			"Tiers: Low/Normal, Borderline, Moderate, Severe, Severe - Urgent.",
	}, s.handleSubmitFeedback)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_clinician_feedback",
		Description: "Fetch the clinician feedback recorded for an assessment id.",
	}, s.handleGetFeedback)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_clinician_feedback",
		Description: "List recorded clinician feedback, newest first.",
	}, s.handleListFeedback)
}

func (s *Server) handleSubmitFeedback(ctx context.Context, _ *mcp.CallToolRequest, in submitFeedbackInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "submit_clinician_feedback").Info("Tool invoked")

	req := api.FeedbackRequest{
		AssessmentID:  in.AssessmentID,
		SuggestedTier: in.SuggestedTier,
		ClinicianTier: in.ClinicianTier,
		CombinedScore: in.CombinedScore,
		Notes:         in.Notes,
	}
	fb, err := req.Feedback()
	if err != nil {
		return nil, nil, err
	}
	if err := s.feedback.Save(ctx, fb); err != nil {
		return nil, nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	return jsonResult(fb)
}

func (s *Server) handleGetFeedback(ctx context.Context, _ *mcp.CallToolRequest, in getFeedbackInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "get_clinician_feedback").Info("Tool invoked")

	fb, err := s.feedback.Get(ctx, strings.TrimSpace(in.AssessmentID))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get feedback for %q: %w", in.AssessmentID, err)
	}
	return jsonResult(fb)
}

func (s *Server) handleListFeedback(ctx context.Context, _ *mcp.CallToolRequest, in listFeedbackInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "list_clinician_feedback").Info("Tool invoked")

	limit := in.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := max(in.Offset, 0)

	items, err := s.feedback.List(ctx, limit, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return jsonResult(items)
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return textResult(string(data)), nil, nil
}
