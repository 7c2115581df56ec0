package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/liver-risk-server/internal/domain"
	"github.com/liver-risk-server/internal/model"
)

// ModelLoader resolves an artifact path to a cached classifier
type ModelLoader interface {
	Load(path string) (model.Classifier, error)
	Loaded(path string) bool
}

// PredictionService runs the validate, gate, load, encode and predict pipeline
type PredictionService struct {
	logger    *logrus.Logger
	loader    ModelLoader
	modelPath string
	encode    func(*domain.PatientRecord) domain.FeatureVector
}

// NewPredictionService creates a new prediction service for the artifact at modelPath
func NewPredictionService(logger *logrus.Logger, loader ModelLoader, modelPath string) *PredictionService {
	return &PredictionService{
		logger:    logger,
		loader:    loader,
		modelPath: modelPath,
		encode:    Encode,
	}
}

// ModelPath returns the configured artifact path
func (s *PredictionService) ModelPath() string {
	return s.modelPath
}

// ModelLoaded reports whether the artifact is already in memory
func (s *PredictionService) ModelLoaded() bool {
	return s.loader.Loaded(s.modelPath)
}

// WarmUp loads the artifact ahead of the first request.
func (s *PredictionService) WarmUp(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.loader.Load(s.modelPath)
	return err
}

// Validate checks the measured fields of record
func (s *PredictionService) Validate(record *domain.PatientRecord) domain.ValidationResult {
	return Validate(record)
}

// Predict validates record and, if the gate allows it, scores it.
func (s *PredictionService) Predict(ctx context.Context, record *domain.PatientRecord) (*domain.PredictionOutcome, error) {
	return s.PredictWithValidation(ctx, record, Validate(record))
}

// PredictWithValidation runs the pipeline with a validation result supplied by the caller,
// which may carry extra failures such as unparseable form input.
func (s *PredictionService) PredictWithValidation(ctx context.Context, record *domain.PatientRecord, validation domain.ValidationResult) (*domain.PredictionOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := CheckGate(record, validation); err != nil {
		s.logger.WithFields(logrus.Fields{
			"code":     domain.ErrorCode(err),
			"warnings": validation.Warnings(),
		}).Info("Prediction blocked by gate")
		return nil, err
	}

	classifier, err := s.loader.Load(s.modelPath)
	if err != nil {
		s.logger.WithError(err).WithField("model_path", s.modelPath).Error("Model unavailable for prediction")
		return nil, err
	}

	start := time.Now()
	vector := s.encode(record)
	outcome, err := Predict(classifier, vector)
	if err != nil {
		s.logger.WithError(err).Error("Prediction failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"class_code": outcome.ClassCode,
		"label":      outcome.Label,
		"duration":   time.Since(start),
	}).Info("Prediction completed")

	return outcome, nil
}
