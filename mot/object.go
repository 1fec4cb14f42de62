package mot

import "gonum.org/v1/gonum/mat"

// Id identifies a track. The zero value, INVALID, means "no identity yet" —
// TrackManager assigns a real id at birth.
type Id uint64

// INVALID is the sentinel Id meaning "not yet assigned".
const INVALID Id = 0

// TrackedObject is a snapshot of an object in the scene. It doubles as a
// per-frame detection (measurement) and as the exposed state of a track.
type TrackedObject struct {
	Id Id

	Position Vec3    // metres, world frame
	Size     Vec3    // length, width, height metres; non-negative
	Velocity Point   // vx, vy m/s
	VelocityZ float64 // optional vz m/s

	Yaw         float64 // radians, (-pi, pi]
	PreviousYaw float64
	YawRate     float64 // rad/s

	Classification *mat.VecDense // probability vector over K classes, sums <= 1

	PredictedMeasurementMean   *mat.VecDense
	PredictedMeasurementCov    *mat.Dense
	PredictedMeasurementCovInv *mat.Dense
	ErrorCovariance            *mat.Dense
}

// IsDynamic reports whether the object's planar speed exceeds threshold.
func (o TrackedObject) IsDynamic(staticSpeedThreshold float64) bool {
	speed := euclideanDistance(Point{}, o.Velocity)
	return speed > staticSpeedThreshold
}
