package api

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/liver-risk-server/internal/domain"
	"github.com/liver-risk-server/internal/service"
)

var templateFuncs = template.FuncMap{
	"percent": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
}

// formInput is the raw text submitted for the measured fields
type formInput map[domain.NumericField]string

// parseFailures lists measured fields whose text could not be parsed
type parseFailures map[domain.NumericField]bool

// applyForm writes the submitted values into record. Measured fields that fail
// to parse are reset to their default and reported in the returned set;
// an unknown categorical option is an INVALID_INPUT error.
func applyForm(record *domain.PatientRecord, numeric formInput, categorical map[domain.CategoricalField]string) (parseFailures, error) {
	failures := parseFailures{}

	for _, f := range domain.NumericFields {
		raw, ok := numeric[f]
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			raw = "0"
		}
		if f.IsInteger() {
			v, err := strconv.Atoi(raw)
			if err != nil {
				failures[f] = true
				_ = record.SetInt(f, 0)
				continue
			}
			_ = record.SetInt(f, v)
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			failures[f] = true
			_ = record.SetFloat(f, 0)
			continue
		}
		_ = record.SetFloat(f, v)
	}

	for _, f := range domain.CategoricalFields {
		raw, ok := categorical[f]
		if !ok {
			continue
		}
		if err := record.SetCategorical(f, raw); err != nil {
			return failures, domain.WrapAppError(domain.ErrInvalidInput,
				fmt.Sprintf("Invalid option for %s.", f.Label()), err)
		}
	}

	return failures, nil
}

// validateWithFailures runs the range checks and marks unparseable fields invalid.
func validateWithFailures(svc *service.PredictionService, record *domain.PatientRecord, failures parseFailures) domain.ValidationResult {
	result := svc.Validate(record)
	for _, f := range domain.NumericFields {
		if !failures[f] {
			continue
		}
		r, _ := service.RangeFor(f)
		result = result.WithFieldError(f, r.ParseWarning())
	}
	return result
}

// numericInput is one measured field as rendered by the form
type numericInput struct {
	Field     string
	Label     string
	Value     string
	Hint      string
	InputMode string
	Warning   string
}

// selectInput is one option field as rendered by the form
type selectInput struct {
	Field    string
	Label    string
	Options  []string
	Selected string
}

// pageData is the view model of the form page
type pageData struct {
	Title         string
	Vitals        []numericInput
	Attributes    []selectInput
	Error         string
	Outcome       *domain.PredictionOutcome
	CorrelationID string
}

func formatNumeric(record *domain.PatientRecord, f domain.NumericField) string {
	if f.IsInteger() {
		return strconv.Itoa(int(record.Numeric(f)))
	}
	return strconv.FormatFloat(record.Numeric(f), 'f', 2, 64)
}

// newPageData builds the view of record. Raw text overrides the stored value of
// fields the user typed but that could not be parsed.
func newPageData(record *domain.PatientRecord, validation domain.ValidationResult, raw formInput) pageData {
	data := pageData{Title: "HUMAN LIVER ANALYSIS"}

	for _, r := range service.NumericRanges() {
		in := numericInput{
			Field:     string(r.Field),
			Label:     r.Label,
			Value:     formatNumeric(record, r.Field),
			Hint:      r.Hint(),
			InputMode: "decimal",
		}
		if r.Integer {
			in.InputMode = "numeric"
		}
		if fv, ok := validation.Field(r.Field); ok && !fv.Valid {
			in.Warning = fv.Warning
			if text, ok := raw[r.Field]; ok {
				in.Value = text
			}
		}
		data.Vitals = append(data.Vitals, in)
	}

	for _, f := range domain.CategoricalFields {
		data.Attributes = append(data.Attributes, selectInput{
			Field:    string(f),
			Label:    f.Label(),
			Options:  f.Options(),
			Selected: record.Categorical(f),
		})
	}

	return data
}
