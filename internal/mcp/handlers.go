package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/liver-risk-server/internal/domain"
)

// PatientRecordParams is the tool input. Omitted measurements are zero and
// omitted findings take the form defaults (Male, No).
type PatientRecordParams struct {
	Age          int     `json:"age,omitempty" jsonschema:"age in years, whole number 0-90"`
	Bilirubin    float64 `json:"bilirubin,omitempty" jsonschema:"total bilirubin, 0.0-75.0"`
	AlkPhosphate int     `json:"alk_phosphate,omitempty" jsonschema:"alkaline phosphatase, whole number 0-2110"`
	SGOT         int     `json:"sgot,omitempty" jsonschema:"SGOT (AST), whole number 0-4929"`
	Albumin      float64 `json:"albumin,omitempty" jsonschema:"albumin, 0.0-5.5"`
	Protime      float64 `json:"protime,omitempty" jsonschema:"prothrombin time, 0.0-150.0"`

	Sex        string `json:"sex,omitempty" jsonschema:"one of Male, Female, Other"`
	Steroid    string `json:"steroid,omitempty" jsonschema:"Yes or No"`
	Antivirals string `json:"antivirals,omitempty" jsonschema:"Yes or No"`
	Fatigue    string `json:"fatigue,omitempty" jsonschema:"Yes or No"`
	Spiders    string `json:"spiders,omitempty" jsonschema:"Yes or No"`
	Ascites    string `json:"ascites,omitempty" jsonschema:"Yes or No"`
	Varices    string `json:"varices,omitempty" jsonschema:"Yes or No"`
	Histology  string `json:"histology,omitempty" jsonschema:"Yes or No"`
}

// toRecord converts params into a PatientRecord, rejecting unknown options.
func (p PatientRecordParams) toRecord() (*domain.PatientRecord, error) {
	record := domain.NewPatientRecord()
	record.Age = p.Age
	record.Bilirubin = p.Bilirubin
	record.AlkPhosphate = p.AlkPhosphate
	record.SGOT = p.SGOT
	record.Albumin = p.Albumin
	record.Protime = p.Protime

	options := map[domain.CategoricalField]string{
		domain.FieldSex:        p.Sex,
		domain.FieldSteroid:    p.Steroid,
		domain.FieldAntivirals: p.Antivirals,
		domain.FieldFatigue:    p.Fatigue,
		domain.FieldSpiders:    p.Spiders,
		domain.FieldAscites:    p.Ascites,
		domain.FieldVarices:    p.Varices,
		domain.FieldHistology:  p.Histology,
	}
	for _, f := range domain.CategoricalFields {
		if options[f] == "" {
			continue
		}
		if err := record.SetCategorical(f, options[f]); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// handleValidatePatient handles the validate_patient_record tool invocation
func (s *Server) handleValidatePatient(ctx context.Context, req *mcp.CallToolRequest, params PatientRecordParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolValidatePatient).Info("Tool invoked")

	record, err := params.toRecord()
	if err != nil {
		return s.createErrorResult("Invalid patient record", err), nil, nil
	}

	result := s.service.Validate(record)

	text := "All values are within range."
	if !result.Valid {
		text = "Out of range: " + strings.Join(result.Warnings(), " ")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, result, nil
}

// handlePredict handles the predict_liver_disease tool invocation
func (s *Server) handlePredict(ctx context.Context, req *mcp.CallToolRequest, params PatientRecordParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolPredict).Info("Tool invoked")

	record, err := params.toRecord()
	if err != nil {
		return s.createErrorResult("Invalid patient record", err), nil, nil
	}

	outcome, err := s.service.Predict(ctx, record)
	if err != nil {
		return s.createAppErrorResult(err), nil, nil
	}

	lines := []string{fmt.Sprintf("Prediction: %s", outcome.Label)}
	for _, p := range outcome.Probabilities {
		lines = append(lines, fmt.Sprintf("%s: %.2f%%", p.Label, p.Percent))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: strings.Join(lines, "\n")},
		},
	}, outcome, nil
}

// createAppErrorResult reports a pipeline error with its code and any field warnings
func (s *Server) createAppErrorResult(err error) *mcp.CallToolResult {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return s.createErrorResult("Prediction failed", err)
	}
	text := fmt.Sprintf("Error [%s]: %s", appErr.Code, appErr.Message)
	for _, w := range appErr.Warnings {
		text += "\n- " + w
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
