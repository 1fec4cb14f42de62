package mot

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DistanceType selects the cost function the assignment solver gates on.
type DistanceType int

const (
	// Euclidean is the plain L2 distance between track and detection
	// positions.
	Euclidean DistanceType = iota
	// Mahalanobis projects the innovation residual to measurement space and
	// weights it by the track's predictedMeasurementCovInv.
	Mahalanobis
	// MultiClassEuclidean scales Euclidean by (1 + classification distance).
	MultiClassEuclidean
	// MCEMahalanobis scales Mahalanobis by (1 + classification distance).
	MCEMahalanobis
)

func (d DistanceType) String() string {
	switch d {
	case Euclidean:
		return "Euclidean"
	case Mahalanobis:
		return "Mahalanobis"
	case MultiClassEuclidean:
		return "MultiClassEuclidean"
	case MCEMahalanobis:
		return "MCEMahalanobis"
	default:
		return "Unknown"
	}
}

// Distance computes the configured cost between a track and a detection.
// track is expected to carry PredictedMeasurementMean/Cov/CovInv populated
// by the track's estimator; detection is a raw per-frame measurement.
func Distance(distanceType DistanceType, track, detection TrackedObject) (float64, error) {
	switch distanceType {
	case Euclidean:
		return euclideanDistance3(track.Position, detection.Position), nil
	case Mahalanobis:
		return mahalanobisDistance(track, detection)
	case MultiClassEuclidean:
		base := euclideanDistance3(track.Position, detection.Position)
		scale, err := classificationScale(track, detection)
		if err != nil {
			return 0, err
		}
		return base * scale, nil
	case MCEMahalanobis:
		base, err := mahalanobisDistance(track, detection)
		if err != nil {
			return 0, err
		}
		scale, err := classificationScale(track, detection)
		if err != nil {
			return 0, err
		}
		return base * scale, nil
	default:
		return 0, newError(InvalidArgument, "unknown distance type")
	}
}

// mahalanobisDistance projects (detection - track.PredictedMeasurementMean)
// through track.PredictedMeasurementCovInv and takes the square root of the
// resulting quadratic form.
func mahalanobisDistance(track, detection TrackedObject) (float64, error) {
	if track.PredictedMeasurementMean == nil || track.PredictedMeasurementCovInv == nil {
		return 0, newError(FilterDegenerate, "mahalanobis distance requires predicted measurement mean and covariance inverse")
	}
	z := objectToMeasurement(detection)
	residual := mat.NewVecDense(z.Len(), nil)
	residual.SubVec(z, track.PredictedMeasurementMean)

	tmp := mat.NewVecDense(residual.Len(), nil)
	tmp.MulVec(track.PredictedMeasurementCovInv, residual)
	quad := mat.Dot(residual, tmp)
	if quad < 0 {
		quad = 0
	}
	return math.Sqrt(quad), nil
}

// classificationScale returns (1 + classification-distance(track, detection)),
// defaulting to 1 when either side carries no classification belief.
func classificationScale(track, detection TrackedObject) (float64, error) {
	if track.Classification == nil || detection.Classification == nil {
		return 1, nil
	}
	d, err := ClassificationDistance(track.Classification, detection.Classification)
	if err != nil {
		return 0, err
	}
	return 1 + d, nil
}

