package mot

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClassificationDistance returns sqrt(0.5 * ||a - b||^2), the classification
// term used by MultiClassEuclidean/MCEMahalanobis.
func ClassificationDistance(a, b *mat.VecDense) (float64, error) {
	if a.Len() != b.Len() {
		return 0, errors.New("classification vectors have different lengths")
	}
	residual := mat.NewVecDense(a.Len(), nil)
	residual.SubVec(a, b)
	sq := mat.Dot(residual, residual)
	return math.Sqrt(0.5 * sq), nil
}

// ClassificationSimilarity returns 1 - ClassificationDistance(a, b).
func ClassificationSimilarity(a, b *mat.VecDense) (float64, error) {
	d, err := ClassificationDistance(a, b)
	if err != nil {
		return 0, err
	}
	return 1.0 - d, nil
}

// CombineClassification fuses two classification vectors, treating
// unknown mass (1 - sum) on each side as its own probability mass.
func CombineClassification(a, b *mat.VecDense) (*mat.VecDense, error) {
	if a.Len() != b.Len() {
		return nil, errors.New("classification vectors have different lengths")
	}
	unknownA := Clamp(1.0-sumVec(a), 0, 1)
	unknownB := Clamp(1.0-sumVec(b), 0, 1)

	combined := mat.NewVecDense(a.Len(), nil)
	combined.MulElemVec(a, b)
	total := sumVec(combined) + unknownA*unknownB + 1e-6
	combined.ScaleVec(1.0/total, combined)
	return combined, nil
}

func sumVec(v *mat.VecDense) float64 {
	sum := 0.0
	for i := 0; i < v.Len(); i++ {
		sum += v.AtVec(i)
	}
	return sum
}
