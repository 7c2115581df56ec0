package service

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/liver-risk-server/internal/domain"
	"github.com/liver-risk-server/internal/model"
)

// Predict scores a single feature vector and maps the result to display labels.
// Every failure, including a panic inside the classifier, is returned as a PREDICTION_ERROR.
func Predict(classifier model.Classifier, vector domain.FeatureVector) (outcome *domain.PredictionOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = nil
			err = domain.NewPredictionError(fmt.Errorf("classifier panicked: %v", r))
		}
	}()

	if classifier == nil {
		return nil, domain.NewPredictionError(errors.New("no classifier"))
	}

	x := mat.NewDense(1, domain.FeatureCount, vector.Slice())

	codes, err := classifier.Predict(x)
	if err != nil {
		return nil, domain.NewPredictionError(err)
	}
	if len(codes) != 1 {
		return nil, domain.NewPredictionError(fmt.Errorf("expected 1 class code, got %d", len(codes)))
	}
	code := domain.ClassCode(codes[0])
	label, ok := code.Label()
	if !ok {
		return nil, domain.NewPredictionError(fmt.Errorf("unknown class code %d", codes[0]))
	}

	proba, err := classifier.PredictProba(x)
	if err != nil {
		return nil, domain.NewPredictionError(err)
	}
	classes := classifier.Classes()
	rows, cols := proba.Dims()
	if rows != 1 || cols != len(classes) {
		return nil, domain.NewPredictionError(fmt.Errorf("probability matrix is %dx%d, expected 1x%d", rows, cols, len(classes)))
	}

	positive, negative := -1, -1
	for i, c := range classes {
		switch domain.ClassCode(c) {
		case domain.ClassPositive:
			positive = i
		case domain.ClassNegative:
			negative = i
		}
	}
	if positive < 0 || negative < 0 {
		return nil, domain.NewPredictionError(fmt.Errorf("classifier classes %v do not include both outcome codes", classes))
	}

	pPos, pNeg := proba.At(0, positive), proba.At(0, negative)
	if !isProbability(pPos) || !isProbability(pNeg) {
		return nil, domain.NewPredictionError(fmt.Errorf("invalid probabilities %v, %v", pPos, pNeg))
	}

	return &domain.PredictionOutcome{
		ClassCode: code,
		Label:     label,
		Probabilities: []domain.ClassProbability{
			{Label: domain.LabelPositive, Percent: toPercent(pPos)},
			{Label: domain.LabelNegative, Percent: toPercent(pNeg)},
		},
	}, nil
}

func isProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

// toPercent converts a probability to a percentage rounded to two decimals.
func toPercent(p float64) float64 {
	return math.Round(p*10000) / 100
}
