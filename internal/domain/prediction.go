package domain

// FeatureCount is the number of columns the classifier expects
const FeatureCount = 14

// FeatureColumns names the FeatureVector columns in model order
var FeatureColumns = [FeatureCount]string{
	"age", "sex", "steroid", "antivirals", "fatigue", "spiders", "ascites",
	"varices", "bilirubin", "alk_phosphate", "sgot", "albumin", "protime", "histology",
}

// FeatureVector is the fixed-order numeric encoding of a PatientRecord
type FeatureVector [FeatureCount]float64

// Slice returns a copy of the vector as a slice
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// ClassCode is the outcome code emitted by the classifier
type ClassCode int

const (
	ClassPositive ClassCode = 1
	ClassNegative ClassCode = 2
)

// Outcome labels shown to the user
const (
	LabelPositive = "LIVER DISEASE POSITIVE"
	LabelNegative = "LIVER DISEASE NEGATIVE"
)

// Label maps a class code to its display label
func (c ClassCode) Label() (string, bool) {
	switch c {
	case ClassPositive:
		return LabelPositive, true
	case ClassNegative:
		return LabelNegative, true
	}
	return "", false
}

// ClassProbability is one entry of the outcome distribution, in percent
type ClassProbability struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// PredictionOutcome is the result of a single predict invocation
type PredictionOutcome struct {
	ClassCode     ClassCode          `json:"class_code"`
	Label         string             `json:"label"`
	Probabilities []ClassProbability `json:"probabilities"`
}

// Percent returns the probability reported for label
func (o *PredictionOutcome) Percent(label string) (float64, bool) {
	for _, p := range o.Probabilities {
		if p.Label == label {
			return p.Percent, true
		}
	}
	return 0, false
}

// FieldValidation is the range check outcome for one measured field
type FieldValidation struct {
	Field   NumericField `json:"field"`
	Valid   bool         `json:"valid"`
	Warning string       `json:"warning,omitempty"`
}

// ValidationResult is recomputed from a PatientRecord on every read; it is never stored.
type ValidationResult struct {
	Fields []FieldValidation `json:"fields"`
	Valid  bool              `json:"valid"`
}

// Field returns the check for f
func (v ValidationResult) Field(f NumericField) (FieldValidation, bool) {
	for _, fv := range v.Fields {
		if fv.Field == f {
			return fv, true
		}
	}
	return FieldValidation{}, false
}

// Warnings returns the warnings of all failing fields in form order
func (v ValidationResult) Warnings() []string {
	var out []string
	for _, fv := range v.Fields {
		if !fv.Valid && fv.Warning != "" {
			out = append(out, fv.Warning)
		}
	}
	return out
}

// WithFieldError returns a copy of v with f marked invalid. The form layer uses it
// for values that could not be parsed as numbers.
func (v ValidationResult) WithFieldError(f NumericField, warning string) ValidationResult {
	out := ValidationResult{Fields: make([]FieldValidation, len(v.Fields)), Valid: false}
	copy(out.Fields, v.Fields)
	for i := range out.Fields {
		if out.Fields[i].Field == f {
			out.Fields[i].Valid = false
			out.Fields[i].Warning = warning
			return out
		}
	}
	out.Fields = append(out.Fields, FieldValidation{Field: f, Valid: false, Warning: warning})
	return out
}
