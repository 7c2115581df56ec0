package service

import (
	"github.com/stretchr/testify/mock"
	"gonum.org/v1/gonum/mat"

	"github.com/liver-risk-server/internal/model"
)

// MockClassifier is a mock implementation of model.Classifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classes() []int {
	args := m.Called()
	return args.Get(0).([]int)
}

func (m *MockClassifier) NumFeatures() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockClassifier) Predict(x mat.Matrix) ([]int, error) {
	args := m.Called(x)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockClassifier) PredictProba(x mat.Matrix) (*mat.Dense, error) {
	args := m.Called(x)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mat.Dense), args.Error(1)
}

// MockModelLoader is a mock implementation of ModelLoader
type MockModelLoader struct {
	mock.Mock
}

func (m *MockModelLoader) Load(path string) (model.Classifier, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Classifier), args.Error(1)
}

func (m *MockModelLoader) Loaded(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}
