package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ra-risk-server/internal/domain"
	"github.com/ra-risk-server/internal/feedback"
	"github.com/ra-risk-server/internal/logging"
	"github.com/ra-risk-server/internal/service"
)

func connect(t *testing.T, store feedback.Store) *mcp.ClientSession {
	t.Helper()
	logger := logging.Discard()
	engine := service.NewEngine(service.NewModelAdapter(nil, nil, logger), logger)
	s := NewServer(domain.MCPConfig{}, engine, store, logger)

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListTools(t *testing.T) {
	session := connect(t, nil)

	res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"predict_ra_risk", "compare_ra_risk", "generate_recommendations",
		"submit_clinician_feedback", "get_clinician_feedback", "list_clinician_feedback",
	}, names)
}

func TestPredictTool(t *testing.T) {
	session := connect(t, nil)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "predict_ra_risk",
		Arguments: map[string]any{
			"age": 45, "gender": "Female", "rheumatoidFactor": 16, "antiCCP": 10,
			"cReactiveProtein": 8, "erythrocyteSedimentationRate": 25,
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	assert.Contains(t, text(t, res), "Risk level: Very Low (32.35%, rule-score fallback)")

	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 32.35, structured["risk_score"])
	assert.Equal(t, "green", structured["risk_color"])
}

func TestCompareTool(t *testing.T) {
	session := connect(t, nil)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "compare_ra_risk",
		Arguments: map[string]any{
			"monthsSinceLastTest": 3,
			"previousAge":         45, "previousGender": "Female", "previousESR": 25, "previousCRP": 8, "previousRF": 16, "previousAntiCCP": 10,
			"currentAge": 45, "currentGender": "Female", "currentESR": 25, "currentCRP": 8, "currentRF": 16, "currentAntiCCP": 10,
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), "Overall Trend: Stable")
}

func TestRecommendTool(t *testing.T) {
	session := connect(t, nil)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "generate_recommendations",
		Arguments: map[string]any{
			"age": 65, "gender": "Female", "smokingStatus": "Current", "drinkingStatus": "Regular",
			"rheumatoidArthritis": 1, "ESR": 60, "CRP": 40, "RF": 50, "AntiCCP": 60,
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), "Severity: Severe - Urgent")
}

func TestPredictTool_MissingArguments(t *testing.T) {
	session := connect(t, nil)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "predict_ra_risk",
		Arguments: map[string]any{"age": 45},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestFeedbackTools(t *testing.T) {
	store, err := feedback.NewSQLiteStore(filepath.Join(t.TempDir(), "fb.db"))
	require.NoError(t, err)
	defer store.Close()
	session := connect(t, store)
	ctx := context.Background()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "submit_clinician_feedback",
		Arguments: map[string]any{
			"assessment_id": "a-42", "suggested_tier": "Borderline", "clinician_tier": "Moderate",
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), `"agreed": false`)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_clinician_feedback",
		Arguments: map[string]any{"assessment_id": "a-42"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	assert.Contains(t, text(t, res), `"clinician_tier": "Moderate"`)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_clinician_feedback",
		Arguments: map[string]any{"assessment_id": "missing"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_clinician_feedback",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "a-42")
}

func TestFeedbackTools_Disabled(t *testing.T) {
	session := connect(t, nil)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "submit_clinician_feedback",
		Arguments: map[string]any{
			"assessment_id": "a-1", "suggested_tier": "Moderate", "clinician_tier": "Moderate",
		},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "disabled")
}

func TestReferenceRangesResource(t *testing.T) {
	session := connect(t, nil)

	res, err := session.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: referenceRangesURI})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, `"marker": "Anti-CCP"`)
}

func TestExplainPrompt(t *testing.T) {
	session := connect(t, nil)

	res, err := session.GetPrompt(context.Background(), &mcp.GetPromptParams{
		Name:      "explain_ra_assessment",
		Arguments: map[string]string{"audience": "patient"},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0].Content.(*mcp.TextContent).Text, "plain language")
}
