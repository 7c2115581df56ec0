package service

import (
	"github.com/liver-risk-server/internal/domain"
)

// Category codes used by the training data
const (
	codeMale   = 1
	codeFemale = 2
	codeYes    = 1
	codeNo     = 2
)

// EncodeSex maps Male to 1 and every other option to 2.
func EncodeSex(s domain.Sex) float64 {
	if s == domain.SexMale {
		return codeMale
	}
	return codeFemale
}

// EncodeAnswer maps Yes to 1 and every other option to 2.
func EncodeAnswer(a domain.Answer) float64 {
	if a == domain.AnswerYes {
		return codeYes
	}
	return codeNo
}

// Encode builds the model input for record in domain.FeatureColumns order.
func Encode(record *domain.PatientRecord) domain.FeatureVector {
	return domain.FeatureVector{
		float64(record.Age),
		EncodeSex(record.Sex),
		EncodeAnswer(record.Steroid),
		EncodeAnswer(record.Antivirals),
		EncodeAnswer(record.Fatigue),
		EncodeAnswer(record.Spiders),
		EncodeAnswer(record.Ascites),
		EncodeAnswer(record.Varices),
		record.Bilirubin,
		float64(record.AlkPhosphate),
		float64(record.SGOT),
		record.Albumin,
		record.Protime,
		EncodeAnswer(record.Histology),
	}
}
