package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/liver-risk-server/internal/domain"
	"github.com/liver-risk-server/internal/service"
)

// Tool names
const (
	ToolValidatePatient = "validate_patient_record"
	ToolPredict         = "predict_liver_disease"
)

// Server exposes the prediction pipeline as MCP tools
type Server struct {
	config    domain.MCPConfig
	service   *service.PredictionService
	mcpServer *mcp.Server
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance with both tools registered
func NewServer(cfg domain.MCPConfig, svc *service.PredictionService, logger *logrus.Logger) *Server {
	serverInfo := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	server := &Server{
		config:    cfg,
		service:   svc,
		mcpServer: mcp.NewServer(serverInfo, nil),
		logger:    logger,
	}
	server.registerTools()

	return server
}

// registerTools registers the validation and prediction tools
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolValidatePatient,
		Description: "Check the six measured values of a patient record against their accepted ranges. Returns per-field validity and warnings.",
	}, s.handleValidatePatient)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolPredict,
		Description: "Predict liver disease risk (LIVER DISEASE POSITIVE or NEGATIVE) with class probabilities for a patient record. Fails when no measured value is entered or any value is out of range.",
	}, s.handlePredict)

	s.logger.WithField("tool_count", 2).Info("Registered MCP tools")
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunTransport(ctx, &mcp.StdioTransport{})
}

// RunTransport serves MCP over t
func (s *Server) RunTransport(ctx context.Context, t mcp.Transport) error {
	s.logger.WithFields(logrus.Fields{
		"name":    s.config.ServerName,
		"version": s.config.ServerVersion,
	}).Info("Starting MCP server")

	if err := s.mcpServer.Run(ctx, t); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
