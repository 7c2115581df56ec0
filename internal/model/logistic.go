package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KindLogisticRegression identifies a binary logistic regression artifact
const KindLogisticRegression = "logistic_regression"

// LogisticRegression is a binary logistic regression with fixed coefficients.
// The probability of Classes()[1] is sigmoid(w·x + b).
type LogisticRegression struct {
	classes      []int
	coefficients []float64
	intercept    float64
}

// NewLogisticRegression validates and builds a model from exported parameters.
func NewLogisticRegression(classes []int, coefficients []float64, intercept float64) (*LogisticRegression, error) {
	if len(classes) != 2 {
		return nil, fmt.Errorf("binary logistic regression needs 2 classes, got %d", len(classes))
	}
	if classes[0] == classes[1] {
		return nil, fmt.Errorf("duplicate class code %d", classes[0])
	}
	if len(coefficients) == 0 {
		return nil, errors.New("no coefficients")
	}
	for i, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return nil, errors.New("intercept is not finite")
	}

	return &LogisticRegression{
		classes:      append([]int(nil), classes...),
		coefficients: append([]float64(nil), coefficients...),
		intercept:    intercept,
	}, nil
}

// Classes implements Classifier
func (m *LogisticRegression) Classes() []int {
	return append([]int(nil), m.classes...)
}

// NumFeatures implements Classifier
func (m *LogisticRegression) NumFeatures() int {
	return len(m.coefficients)
}

// PredictProba implements Classifier
func (m *LogisticRegression) PredictProba(x mat.Matrix) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if rows == 0 {
		return nil, errors.New("empty feature matrix")
	}
	if cols != len(m.coefficients) {
		return nil, fmt.Errorf("feature matrix has %d columns, model expects %d", cols, len(m.coefficients))
	}

	out := mat.NewDense(rows, 2, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, x)
		z := floats.Dot(row, m.coefficients) + m.intercept
		if math.IsNaN(z) {
			return nil, fmt.Errorf("row %d produced a non-numeric score", i)
		}
		p := sigmoid(z)
		out.Set(i, 0, 1-p)
		out.Set(i, 1, p)
	}
	return out, nil
}

// Predict implements Classifier. A row scoring exactly 0.5 goes to Classes()[0].
func (m *LogisticRegression) Predict(x mat.Matrix) ([]int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	rows, _ := proba.Dims()
	codes := make([]int, rows)
	for i := 0; i < rows; i++ {
		if proba.At(i, 1) > proba.At(i, 0) {
			codes[i] = m.classes[1]
		} else {
			codes[i] = m.classes[0]
		}
	}
	return codes, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
