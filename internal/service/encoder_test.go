package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liver-risk-server/internal/domain"
)

func TestEncode_ScenarioA(t *testing.T) {
	vector := Encode(scenarioARecord())

	expected := domain.FeatureVector{45, 1, 2, 2, 2, 2, 2, 2, 1.2, 120, 40, 3.8, 12.0, 2}
	assert.Equal(t, expected, vector)
}

func TestEncode_ColumnPositions(t *testing.T) {
	r := domain.NewPatientRecord()
	r.Sex = domain.SexFemale
	r.Steroid = domain.AnswerYes
	r.Varices = domain.AnswerYes
	r.Histology = domain.AnswerYes
	r.Protime = 61.5

	v := Encode(r)

	assert.Equal(t, 2.0, v[1], "sex")
	assert.Equal(t, 1.0, v[2], "steroid")
	assert.Equal(t, 2.0, v[3], "antivirals")
	assert.Equal(t, 1.0, v[7], "varices")
	assert.Equal(t, 61.5, v[12], "protime")
	assert.Equal(t, 1.0, v[13], "histology")
}

func TestEncodeSex(t *testing.T) {
	assert.Equal(t, 1.0, EncodeSex(domain.SexMale))
	assert.Equal(t, 2.0, EncodeSex(domain.SexFemale))
	assert.Equal(t, 2.0, EncodeSex(domain.SexOther))
}

func TestEncodeAnswer(t *testing.T) {
	assert.Equal(t, 1.0, EncodeAnswer(domain.AnswerYes))
	assert.Equal(t, 2.0, EncodeAnswer(domain.AnswerNo))
}

func TestEncode_Deterministic(t *testing.T) {
	r := scenarioARecord()
	r.Fatigue = domain.AnswerYes

	assert.Equal(t, Encode(r), Encode(r))
}

func TestEncode_MatchesFeatureColumns(t *testing.T) {
	r := &domain.PatientRecord{
		Age: 33, Bilirubin: 1.5, AlkPhosphate: 85, SGOT: 18, Albumin: 4.1, Protime: 50,
		Sex: domain.SexFemale, Steroid: domain.AnswerYes, Antivirals: domain.AnswerNo,
		Fatigue: domain.AnswerYes, Spiders: domain.AnswerNo, Ascites: domain.AnswerYes,
		Varices: domain.AnswerNo, Histology: domain.AnswerYes,
	}
	want := map[string]float64{
		"age": 33, "sex": 2, "steroid": 1, "antivirals": 2, "fatigue": 1, "spiders": 2,
		"ascites": 1, "varices": 2, "bilirubin": 1.5, "alk_phosphate": 85, "sgot": 18,
		"albumin": 4.1, "protime": 50, "histology": 1,
	}

	v := Encode(r)

	for i, column := range domain.FeatureColumns {
		assert.Equal(t, want[column], v[i], column)
	}
}
