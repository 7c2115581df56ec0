package service

import (
	"github.com/liver-risk-server/internal/domain"
)

// CheckGate decides whether a predict request may reach the model.
// An all-default record with no failing field is NO_DATA_ENTERED; a field that
// failed to parse leaves its default in the record but still counts as entered.
func CheckGate(record *domain.PatientRecord, validation domain.ValidationResult) error {
	if !record.HasNumericData() && validation.Valid {
		return domain.NewNoDataEnteredError()
	}
	if !validation.Valid {
		return domain.NewValidationFailureError(validation.Warnings())
	}
	return nil
}
