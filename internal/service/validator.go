package service

import (
	"fmt"

	"github.com/liver-risk-server/internal/domain"
)

// FieldRange is the inclusive range accepted for one measured field
type FieldRange struct {
	Field   domain.NumericField `json:"field"`
	Label   string              `json:"label"`
	Name    string              `json:"-"`
	Min     float64             `json:"min"`
	Max     float64             `json:"max"`
	Integer bool                `json:"integer"`
}

// Contains reports whether v lies within the range, bounds included.
func (r FieldRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Hint renders the bounds, e.g. "0-90" or "0.0-75.0".
func (r FieldRange) Hint() string {
	if r.Integer {
		return fmt.Sprintf("%d-%d", int(r.Min), int(r.Max))
	}
	return fmt.Sprintf("%.1f-%.1f", r.Min, r.Max)
}

// Warning is the message shown next to the field when its value is out of range.
func (r FieldRange) Warning() string {
	return fmt.Sprintf("%s should be in this range (%s).", r.Name, r.Hint())
}

// ParseWarning is the message shown when the submitted text is not a number of the right kind.
func (r FieldRange) ParseWarning() string {
	if r.Integer {
		return fmt.Sprintf("%s must be a whole number.", r.Name)
	}
	return fmt.Sprintf("%s must be a number.", r.Name)
}

var numericRanges = []FieldRange{
	{Field: domain.FieldAge, Label: "Age", Name: "Age", Min: 0, Max: 90, Integer: true},
	{Field: domain.FieldBilirubin, Label: "Total Bilirubin", Name: "Total Bilirubin", Min: 0, Max: 75},
	{Field: domain.FieldAlkPhosphate, Label: "Alk Phosphate", Name: "Alk Phosphate", Min: 0, Max: 2110, Integer: true},
	{Field: domain.FieldSGOT, Label: "Sgot (AST)", Name: "Sgot", Min: 0, Max: 4929, Integer: true},
	{Field: domain.FieldAlbumin, Label: "Albumin", Name: "Albumin", Min: 0, Max: 5.5},
	{Field: domain.FieldProtime, Label: "Protime", Name: "Protime", Min: 0, Max: 150},
}

// NumericRanges returns the ranges of all measured fields in form order.
func NumericRanges() []FieldRange {
	out := make([]FieldRange, len(numericRanges))
	copy(out, numericRanges)
	return out
}

// RangeFor returns the range of a single measured field.
func RangeFor(f domain.NumericField) (FieldRange, bool) {
	for _, r := range numericRanges {
		if r.Field == f {
			return r, true
		}
	}
	return FieldRange{}, false
}

// Validate checks every measured field of record against its range.
// There are no cross-field rules; Valid is true only when every field passes.
func Validate(record *domain.PatientRecord) domain.ValidationResult {
	result := domain.ValidationResult{
		Fields: make([]domain.FieldValidation, 0, len(numericRanges)),
		Valid:  true,
	}
	for _, r := range numericRanges {
		fv := domain.FieldValidation{Field: r.Field, Valid: r.Contains(record.Numeric(r.Field))}
		if !fv.Valid {
			fv.Warning = r.Warning()
			result.Valid = false
		}
		result.Fields = append(result.Fields, fv)
	}
	return result
}
