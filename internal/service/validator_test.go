package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liver-risk-server/internal/domain"
)

func scenarioARecord() *domain.PatientRecord {
	r := domain.NewPatientRecord()
	r.Age = 45
	r.Bilirubin = 1.2
	r.AlkPhosphate = 120
	r.SGOT = 40
	r.Albumin = 3.8
	r.Protime = 12.0
	return r
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name  string
		field domain.NumericField
		set   func(r *domain.PatientRecord)
		valid bool
	}{
		{"age inside", domain.FieldAge, func(r *domain.PatientRecord) { r.Age = 45 }, true},
		{"age lower bound", domain.FieldAge, func(r *domain.PatientRecord) { r.Age = 0 }, true},
		{"age upper bound", domain.FieldAge, func(r *domain.PatientRecord) { r.Age = 90 }, true},
		{"age above", domain.FieldAge, func(r *domain.PatientRecord) { r.Age = 91 }, false},
		{"age negative", domain.FieldAge, func(r *domain.PatientRecord) { r.Age = -1 }, false},
		{"bilirubin upper bound", domain.FieldBilirubin, func(r *domain.PatientRecord) { r.Bilirubin = 75.0 }, true},
		{"bilirubin above", domain.FieldBilirubin, func(r *domain.PatientRecord) { r.Bilirubin = 75.01 }, false},
		{"alk phosphate upper bound", domain.FieldAlkPhosphate, func(r *domain.PatientRecord) { r.AlkPhosphate = 2110 }, true},
		{"alk phosphate above", domain.FieldAlkPhosphate, func(r *domain.PatientRecord) { r.AlkPhosphate = 2111 }, false},
		{"sgot upper bound", domain.FieldSGOT, func(r *domain.PatientRecord) { r.SGOT = 4929 }, true},
		{"sgot above", domain.FieldSGOT, func(r *domain.PatientRecord) { r.SGOT = 4930 }, false},
		{"albumin upper bound", domain.FieldAlbumin, func(r *domain.PatientRecord) { r.Albumin = 5.5 }, true},
		{"albumin above", domain.FieldAlbumin, func(r *domain.PatientRecord) { r.Albumin = 5.6 }, false},
		{"albumin negative", domain.FieldAlbumin, func(r *domain.PatientRecord) { r.Albumin = -0.1 }, false},
		{"protime upper bound", domain.FieldProtime, func(r *domain.PatientRecord) { r.Protime = 150.0 }, true},
		{"protime above", domain.FieldProtime, func(r *domain.PatientRecord) { r.Protime = 150.5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.NewPatientRecord()
			tt.set(r)

			result := Validate(r)

			fv, ok := result.Field(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.valid, fv.Valid)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.valid {
				assert.Empty(t, fv.Warning)
			} else {
				assert.NotEmpty(t, fv.Warning)
			}
		})
	}
}

func TestValidate_DefaultRecordIsValid(t *testing.T) {
	result := Validate(domain.NewPatientRecord())

	assert.True(t, result.Valid)
	assert.Len(t, result.Fields, len(domain.NumericFields))
	assert.Empty(t, result.Warnings())
}

func TestValidate_ScenarioB(t *testing.T) {
	r := scenarioARecord()
	r.Bilirubin = 100.0

	result := Validate(r)

	assert.False(t, result.Valid)
	fv, _ := result.Field(domain.FieldBilirubin)
	assert.False(t, fv.Valid)
	assert.Equal(t, []string{"Total Bilirubin should be in this range (0.0-75.0)."}, result.Warnings())
	for _, f := range domain.NumericFields {
		if f == domain.FieldBilirubin {
			continue
		}
		other, _ := result.Field(f)
		assert.True(t, other.Valid, f)
	}
}

func TestFieldRange_Messages(t *testing.T) {
	age, ok := RangeFor(domain.FieldAge)
	require.True(t, ok)
	assert.Equal(t, "0-90", age.Hint())
	assert.Equal(t, "Age should be in this range (0-90).", age.Warning())
	assert.Equal(t, "Age must be a whole number.", age.ParseWarning())

	sgot, _ := RangeFor(domain.FieldSGOT)
	assert.Equal(t, "Sgot (AST)", sgot.Label)
	assert.Equal(t, "Sgot should be in this range (0-4929).", sgot.Warning())

	albumin, _ := RangeFor(domain.FieldAlbumin)
	assert.Equal(t, "0.0-5.5", albumin.Hint())
	assert.Equal(t, "Albumin should be in this range (0.0-5.5).", albumin.Warning())
	assert.Equal(t, "Albumin must be a number.", albumin.ParseWarning())

	_, ok = RangeFor(domain.NumericField("weight"))
	assert.False(t, ok)
}

func TestNumericRanges_FormOrder(t *testing.T) {
	ranges := NumericRanges()
	require.Len(t, ranges, len(domain.NumericFields))
	for i, f := range domain.NumericFields {
		assert.Equal(t, f, ranges[i].Field)
		assert.Equal(t, f.IsInteger(), ranges[i].Integer)
	}

	ranges[0].Max = 1000
	again, _ := RangeFor(domain.FieldAge)
	assert.Equal(t, 90.0, again.Max)
}
