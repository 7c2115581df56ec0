// Package model loads pre-trained classifier artifacts and exposes them behind
// a small scoring interface. Artifacts are produced by an external training
// environment; this package only reads them.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Classifier is a trained classifier scoring rows of encoded features.
// Implementations must be safe for concurrent use once loaded.
type Classifier interface {
	// Classes returns the class codes in the column order of PredictProba.
	Classes() []int
	// NumFeatures returns the number of columns each row must have.
	NumFeatures() int
	// Predict returns one class code per row of x.
	Predict(x mat.Matrix) ([]int, error)
	// PredictProba returns a rows×len(Classes()) probability matrix.
	PredictProba(x mat.Matrix) (*mat.Dense, error)
}
