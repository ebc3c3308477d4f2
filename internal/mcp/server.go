// Package mcp exposes the risk engine as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/ra-risk-server/internal/domain"
	"github.com/ra-risk-server/internal/feedback"
	"github.com/ra-risk-server/internal/service"
)

// Server represents the RA risk MCP server
type Server struct {
	engine    *service.Engine
	feedback  feedback.Store
	mcpServer *mcp.Server
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance and registers its tools,
// resources and prompts. store may be nil.
func NewServer(cfg domain.MCPConfig, engine *service.Engine, store feedback.Store, logger *logrus.Logger) *Server {
	if store == nil {
		store = feedback.Disabled{}
	}
	name, version := cfg.ServerName, cfg.ServerVersion
	if name == "" {
		name = "ra-risk"
	}
	if version == "" {
		version = "1.0.0"
	}

	s := &Server{
		engine:    engine,
		feedback:  store,
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		logger:    logger,
	}

	s.registerRiskTools()
	s.registerFeedbackTools()
	s.registerResources()
	s.registerPrompts()

	logger.WithFields(logrus.Fields{
		"server_name":  name,
		"model_loaded": engine.ModelAvailable(),
	}).Info("Registered MCP capabilities")

	return s
}

// Start serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting RA risk MCP server on stdio")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
