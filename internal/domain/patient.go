package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sex represents the sex options offered by the intake form
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
	SexOther  Sex = "Other"
)

// SexOptions lists the sex options in display order
var SexOptions = []Sex{SexMale, SexFemale, SexOther}

// Answer represents a Yes/No clinical finding
type Answer string

const (
	AnswerNo  Answer = "No"
	AnswerYes Answer = "Yes"
)

// AnswerOptions lists the answer options in display order
var AnswerOptions = []Answer{AnswerNo, AnswerYes}

// ParseSex converts a form or JSON value into a Sex.
func ParseSex(value string) (Sex, error) {
	for _, s := range SexOptions {
		if strings.EqualFold(value, string(s)) {
			return s, nil
		}
	}
	return "", NewValidationError("sex", "must be one of Male, Female, Other", value)
}

// ParseAnswer converts a form or JSON value into an Answer.
func ParseAnswer(field, value string) (Answer, error) {
	for _, a := range AnswerOptions {
		if strings.EqualFold(value, string(a)) {
			return a, nil
		}
	}
	return "", NewValidationError(field, "must be one of No, Yes", value)
}

// NumericField identifies one of the six measured values of a PatientRecord
type NumericField string

const (
	FieldAge          NumericField = "age"
	FieldBilirubin    NumericField = "bilirubin"
	FieldAlkPhosphate NumericField = "alk_phosphate"
	FieldSGOT         NumericField = "sgot"
	FieldAlbumin      NumericField = "albumin"
	FieldProtime      NumericField = "protime"
)

// NumericFields lists the measured fields in form order
var NumericFields = []NumericField{
	FieldAge, FieldBilirubin, FieldAlkPhosphate,
	FieldSGOT, FieldAlbumin, FieldProtime,
}

// CategoricalField identifies one of the eight option fields of a PatientRecord
type CategoricalField string

const (
	FieldSex        CategoricalField = "sex"
	FieldSteroid    CategoricalField = "steroid"
	FieldAntivirals CategoricalField = "antivirals"
	FieldFatigue    CategoricalField = "fatigue"
	FieldSpiders    CategoricalField = "spiders"
	FieldAscites    CategoricalField = "ascites"
	FieldVarices    CategoricalField = "varices"
	FieldHistology  CategoricalField = "histology"
)

// CategoricalFields lists the option fields in form order
var CategoricalFields = []CategoricalField{
	FieldSex, FieldSteroid, FieldAntivirals, FieldFatigue,
	FieldSpiders, FieldAscites, FieldVarices, FieldHistology,
}

var categoricalLabels = map[CategoricalField]string{
	FieldSex:        "Gender",
	FieldSteroid:    "Steroid",
	FieldAntivirals: "Antivirals",
	FieldFatigue:    "Fatigue",
	FieldSpiders:    "Spiders",
	FieldAscites:    "Ascites",
	FieldVarices:    "Varices",
	FieldHistology:  "Histology",
}

// Label returns the form label of the field
func (f CategoricalField) Label() string {
	return categoricalLabels[f]
}

// Options returns the selectable values of the field in display order
func (f CategoricalField) Options() []string {
	if f == FieldSex {
		out := make([]string, len(SexOptions))
		for i, s := range SexOptions {
			out[i] = string(s)
		}
		return out
	}
	out := make([]string, len(AnswerOptions))
	for i, a := range AnswerOptions {
		out[i] = string(a)
	}
	return out
}

// PatientRecord holds the clinical attributes entered for one prediction request.
// Integer-valued measurements are kept as int so that form input like "45.5" for
// age is rejected rather than silently truncated.
type PatientRecord struct {
	Age          int     `json:"age"`
	Bilirubin    float64 `json:"bilirubin"`
	AlkPhosphate int     `json:"alk_phosphate"`
	SGOT         int     `json:"sgot"`
	Albumin      float64 `json:"albumin"`
	Protime      float64 `json:"protime"`

	Sex        Sex    `json:"sex"`
	Steroid    Answer `json:"steroid"`
	Antivirals Answer `json:"antivirals"`
	Fatigue    Answer `json:"fatigue"`
	Spiders    Answer `json:"spiders"`
	Ascites    Answer `json:"ascites"`
	Varices    Answer `json:"varices"`
	Histology  Answer `json:"histology"`
}

type patientRecordFields PatientRecord

// UnmarshalJSON decodes a record and parses its option fields through
// SetCategorical, so an unknown option is reported under its own field name.
// Keys absent from the document leave the current value untouched.
func (r *PatientRecord) UnmarshalJSON(data []byte) error {
	doc := struct {
		*patientRecordFields
		Sex        *string `json:"sex"`
		Steroid    *string `json:"steroid"`
		Antivirals *string `json:"antivirals"`
		Fatigue    *string `json:"fatigue"`
		Spiders    *string `json:"spiders"`
		Ascites    *string `json:"ascites"`
		Varices    *string `json:"varices"`
		Histology  *string `json:"histology"`
	}{patientRecordFields: (*patientRecordFields)(r)}

	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	options := map[CategoricalField]*string{
		FieldSex:        doc.Sex,
		FieldSteroid:    doc.Steroid,
		FieldAntivirals: doc.Antivirals,
		FieldFatigue:    doc.Fatigue,
		FieldSpiders:    doc.Spiders,
		FieldAscites:    doc.Ascites,
		FieldVarices:    doc.Varices,
		FieldHistology:  doc.Histology,
	}
	for _, f := range CategoricalFields {
		if v := options[f]; v != nil {
			if err := r.SetCategorical(f, *v); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewPatientRecord returns a record initialized to the form defaults
func NewPatientRecord() *PatientRecord {
	r := &PatientRecord{}
	r.Reset()
	return r
}

// Reset restores every field to its default: numeric zero, Male, and No for all findings.
func (r *PatientRecord) Reset() {
	*r = PatientRecord{
		Sex:        SexMale,
		Steroid:    AnswerNo,
		Antivirals: AnswerNo,
		Fatigue:    AnswerNo,
		Spiders:    AnswerNo,
		Ascites:    AnswerNo,
		Varices:    AnswerNo,
		Histology:  AnswerNo,
	}
}

// ApplyDefaults fills categorical fields left empty by a partial decode.
func (r *PatientRecord) ApplyDefaults() {
	if r.Sex == "" {
		r.Sex = SexMale
	}
	for _, a := range []*Answer{&r.Steroid, &r.Antivirals, &r.Fatigue, &r.Spiders, &r.Ascites, &r.Varices, &r.Histology} {
		if *a == "" {
			*a = AnswerNo
		}
	}
}

// HasNumericData reports whether any measured value differs from its zero default.
func (r *PatientRecord) HasNumericData() bool {
	for _, f := range NumericFields {
		if r.Numeric(f) != 0 {
			return true
		}
	}
	return false
}

// Numeric returns the value of a measured field as float64
func (r *PatientRecord) Numeric(f NumericField) float64 {
	switch f {
	case FieldAge:
		return float64(r.Age)
	case FieldBilirubin:
		return r.Bilirubin
	case FieldAlkPhosphate:
		return float64(r.AlkPhosphate)
	case FieldSGOT:
		return float64(r.SGOT)
	case FieldAlbumin:
		return r.Albumin
	case FieldProtime:
		return r.Protime
	}
	return 0
}

// IsInteger reports whether the field only accepts whole numbers
func (f NumericField) IsInteger() bool {
	switch f {
	case FieldAge, FieldAlkPhosphate, FieldSGOT:
		return true
	}
	return false
}

// SetInt assigns a whole-number measurement
func (r *PatientRecord) SetInt(f NumericField, v int) error {
	switch f {
	case FieldAge:
		r.Age = v
	case FieldAlkPhosphate:
		r.AlkPhosphate = v
	case FieldSGOT:
		r.SGOT = v
	default:
		return fmt.Errorf("field %s is not an integer field", f)
	}
	return nil
}

// SetFloat assigns a decimal measurement
func (r *PatientRecord) SetFloat(f NumericField, v float64) error {
	switch f {
	case FieldBilirubin:
		r.Bilirubin = v
	case FieldAlbumin:
		r.Albumin = v
	case FieldProtime:
		r.Protime = v
	default:
		return fmt.Errorf("field %s is not a decimal field", f)
	}
	return nil
}

// Categorical returns the selected option of an option field
func (r *PatientRecord) Categorical(f CategoricalField) string {
	if f == FieldSex {
		return string(r.Sex)
	}
	if a := r.answer(f); a != nil {
		return string(*a)
	}
	return ""
}

// SetCategorical parses and assigns an option field
func (r *PatientRecord) SetCategorical(f CategoricalField, value string) error {
	if f == FieldSex {
		s, err := ParseSex(value)
		if err != nil {
			return err
		}
		r.Sex = s
		return nil
	}
	a := r.answer(f)
	if a == nil {
		return fmt.Errorf("unknown field %s", f)
	}
	parsed, err := ParseAnswer(string(f), value)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (r *PatientRecord) answer(f CategoricalField) *Answer {
	switch f {
	case FieldSteroid:
		return &r.Steroid
	case FieldAntivirals:
		return &r.Antivirals
	case FieldFatigue:
		return &r.Fatigue
	case FieldSpiders:
		return &r.Spiders
	case FieldAscites:
		return &r.Ascites
	case FieldVarices:
		return &r.Varices
	case FieldHistology:
		return &r.Histology
	}
	return nil
}
