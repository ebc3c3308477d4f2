package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ra-risk-server/internal/service"
)

const referenceRangesURI = "ra-risk://reference-ranges"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         referenceRangesURI,
		Name:        "reference-ranges",
		Description: "Borderline bands used to flag ESR, CRP, RF and Anti-CCP by age bracket and sex.",
		MIMEType:    "application/json",
	}, s.readReferenceRanges)
}

func (s *Server) readReferenceRanges(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(service.ReferenceBands(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode reference ranges: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        "explain_ra_assessment",
		Description: "Walk a clinician through a predict_ra_risk or generate_recommendations result.",
		Arguments: []*mcp.PromptArgument{
			{Name: "audience", Description: "clinician or patient", Required: false},
		},
	}, s.explainAssessmentPrompt)
}

func (s *Server) explainAssessmentPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	audience := strings.ToLower(strings.TrimSpace(req.Params.Arguments["audience"]))
	if audience != "patient" {
		audience = "clinician"
	}

	var b strings.Builder
	b.WriteString("Explain the attached rheumatoid arthritis risk assessment")
	if audience == "patient" {
		b.WriteString(" in plain language for the patient. Avoid jargon and do not give a diagnosis.")
	} else {
		b.WriteString(" for a clinician.")
	}
	b.WriteString("\n\nCover, in order:\n")
	b.WriteString("1. Which biomarkers were flagged borderline or elevated for the patient's age bracket and sex (see " + referenceRangesURI + ").\n")
	b.WriteString("2. How the rule score and the model probability combined into the severity tier.\n")
	b.WriteString("3. The score breakdown factor that contributed most.\n")
	b.WriteString("4. Whether a rheumatology referral or follow-up panel is indicated.\n")

	return &mcp.GetPromptResult{
		Description: "RA assessment explanation for a " + audience,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: b.String()},
		}},
	}, nil
}
