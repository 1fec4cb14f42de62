package mot

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/LdDl/mot-go/mot/motion"
	"github.com/LdDl/mot-go/mot/ukf"
)

// filterBank is one UKF per configured motion model, sharing the canonical
// 12-D state layout. It selects a "current" model each frame by the
// smallest recent innovation Mahalanobis norm, breaking ties by
// motion.DefaultPriority.
type filterBank struct {
	kinds   []motion.Kind
	filters []*ukf.Filter

	currentIdx int

	staticSpeedThreshold float64
	classification       *mat.VecDense
}

func newFilterBank(kinds []motion.Kind, initState *mat.VecDense, initCov, processNoiseCov, measurementNoiseCov *mat.Dense, staticSpeedThreshold float64, classification *mat.VecDense) *filterBank {
	orderedKinds, models := motion.BankWithKinds(kinds)
	filters := make([]*ukf.Filter, len(models))
	for i, m := range models {
		filters[i] = ukf.New(motion.StateDim, motion.MeasurementDim, m.Transition, m.Measurement, initState, initCov, processNoiseCov, measurementNoiseCov, ukf.DefaultParams())
	}
	return &filterBank{
		kinds:                orderedKinds,
		filters:              filters,
		staticSpeedThreshold: staticSpeedThreshold,
		classification:       classification,
	}
}

// predict advances every filter by dt seconds.
func (b *filterBank) predict(dt float64) error {
	var firstErr error
	for _, f := range b.filters {
		if err := f.Predict(dt); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// correct fuses measurement into every filter, then re-selects the current
// model by innovation Mahalanobis norm.
func (b *filterBank) correct(measurement *mat.VecDense) error {
	var firstErr error
	for _, f := range b.filters {
		if err := f.Correct(measurement); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.selectCurrent(measurement)
	return firstErr
}

// selectCurrent picks the filter minimizing the Mahalanobis norm of
// (measurement - measurementEstimate) under Syy, breaking ties by index
// (filters are already ordered by motion.DefaultPriority).
func (b *filterBank) selectCurrent(measurement *mat.VecDense) {
	best := -1
	bestNorm := math.Inf(1)
	for i, f := range b.filters {
		est := f.MeasurementEstimate()
		syy := f.InnovationCov()
		if est == nil || syy == nil {
			continue
		}
		residual := mat.NewVecDense(est.Len(), nil)
		residual.SubVec(measurement, est)
		norm, err := mahalanobisNorm(residual, syy)
		if err != nil {
			continue
		}
		if norm < bestNorm {
			bestNorm = norm
			best = i
		}
	}
	if best >= 0 {
		b.currentIdx = best
	}
}

func mahalanobisNorm(residual *mat.VecDense, cov *mat.Dense) (float64, error) {
	var inv mat.Dense
	if err := inv.Inverse(cov); err != nil {
		return 0, err
	}
	tmp := mat.NewVecDense(residual.Len(), nil)
	tmp.MulVec(&inv, residual)
	quad := mat.Dot(residual, tmp)
	if quad < 0 {
		quad = 0
	}
	return math.Sqrt(quad), nil
}

func (b *filterBank) current() *ukf.Filter {
	if len(b.filters) == 0 {
		return nil
	}
	return b.filters[b.currentIdx]
}

// currentState reconstructs a TrackedObject from the current filter's state.
func (b *filterBank) currentState(id Id) TrackedObject {
	f := b.current()
	state := f.State()
	cov := f.ErrorCov()

	obj := TrackedObject{
		Id: id,
		Position: Vec3{
			X: state.AtVec(motion.IX),
			Y: state.AtVec(motion.IY),
			Z: state.AtVec(motion.IZ),
		},
		Size: Vec3{
			X: state.AtVec(motion.ILength),
			Y: state.AtVec(motion.IWidth),
			Z: state.AtVec(motion.IHeight),
		},
		Velocity: Point{
			X: state.AtVec(motion.IVX),
			Y: state.AtVec(motion.IVY),
		},
		Yaw:             motion.NormalizeYaw(state.AtVec(motion.IYaw)),
		YawRate:         state.AtVec(motion.IYawRate),
		Classification:  b.classification,
		ErrorCovariance: cov,
	}

	if est := f.MeasurementEstimate(); est != nil {
		obj.PredictedMeasurementMean = est
	}
	if syy := f.InnovationCov(); syy != nil {
		obj.PredictedMeasurementCov = syy
		if inv, err := invert(syy); err == nil {
			obj.PredictedMeasurementCovInv = inv
		}
	}
	return obj
}

func invert(m *mat.Dense) (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, err
	}
	return &inv, nil
}

// isDynamic reports whether the current filter's planar speed exceeds
// staticSpeedThreshold.
func (b *filterBank) isDynamic() bool {
	f := b.current()
	state := f.State()
	speed := math.Hypot(state.AtVec(motion.IVX), state.AtVec(motion.IVY))
	return speed > b.staticSpeedThreshold
}

// setClassification updates the tracked classification belief, fusing with
// the previous belief via CombineClassification.
func (b *filterBank) setClassification(measured *mat.VecDense) {
	if b.classification == nil {
		b.classification = measured
		return
	}
	if combined, err := CombineClassification(b.classification, measured); err == nil {
		b.classification = combined
	}
}

// MultiModelKalmanEstimator owns one UKF per configured motion model for a
// single track. It carries the canonical 12-D state forward through
// predict/correct cycles and reports the current best-model estimate back
// as a TrackedObject.
type MultiModelKalmanEstimator struct {
	bank *filterBank

	lastTimestamp time.Time
	haveTimestamp bool
}

// newMultiModelKalmanEstimator builds an estimator seeded from object via
// objectToState, sharing processNoiseCov/measurementNoiseCov/initCov across
// every model in kinds.
func newMultiModelKalmanEstimator(object TrackedObject, timestamp time.Time, kinds []motion.Kind, initCov, processNoiseCov, measurementNoiseCov *mat.Dense, staticSpeedThreshold float64) *MultiModelKalmanEstimator {
	initState := objectToState(object)
	bank := newFilterBank(kinds, initState, initCov, processNoiseCov, measurementNoiseCov, staticSpeedThreshold, object.Classification)
	return &MultiModelKalmanEstimator{
		bank:          bank,
		lastTimestamp: timestamp,
		haveTimestamp: true,
	}
}

// objectToState builds the canonical 12-D state vector from a detection or
// tracked object: position, size, yaw, planar velocity and yaw rate are
// copied from the object; acceleration starts at zero.
func objectToState(object TrackedObject) *mat.VecDense {
	state := mat.NewVecDense(motion.StateDim, nil)
	state.SetVec(motion.IX, object.Position.X)
	state.SetVec(motion.IY, object.Position.Y)
	state.SetVec(motion.IVX, object.Velocity.X)
	state.SetVec(motion.IVY, object.Velocity.Y)
	state.SetVec(motion.IZ, object.Position.Z)
	state.SetVec(motion.ILength, object.Size.X)
	state.SetVec(motion.IWidth, object.Size.Y)
	state.SetVec(motion.IHeight, object.Size.Z)
	state.SetVec(motion.IYaw, object.Yaw)
	state.SetVec(motion.IYawRate, object.YawRate)
	return state
}

// objectToMeasurement projects a detection onto the shared 7-D measurement
// layout used by every motion model.
func objectToMeasurement(object TrackedObject) *mat.VecDense {
	z := mat.NewVecDense(motion.MeasurementDim, nil)
	z.SetVec(motion.MX, object.Position.X)
	z.SetVec(motion.MY, object.Position.Y)
	z.SetVec(motion.MZ, object.Position.Z)
	z.SetVec(motion.MLength, object.Size.X)
	z.SetVec(motion.MWidth, object.Size.Y)
	z.SetVec(motion.MHeight, object.Size.Z)
	z.SetVec(motion.MYaw, object.Yaw)
	return z
}

// predict advances every model to timestamp, computing dt from the
// estimator's creation timestamp or its last predict; correct does not
// update the timestamp.
func (e *MultiModelKalmanEstimator) predict(timestamp time.Time) error {
	dt := 0.0
	if e.haveTimestamp {
		dt = timestamp.Sub(e.lastTimestamp).Seconds()
	}
	if dt < 0 {
		dt = 0
	}
	e.lastTimestamp = timestamp
	e.haveTimestamp = true
	return e.bank.predict(dt)
}

// correct fuses a matched detection into every model and re-selects the
// current best model, then fuses the detection's classification belief.
func (e *MultiModelKalmanEstimator) correct(measurement TrackedObject) error {
	z := objectToMeasurement(measurement)
	err := e.bank.correct(z)
	e.bank.setClassification(measurement.Classification)
	return err
}

// currentState reports the current best model's estimate as a TrackedObject
// carrying id.
func (e *MultiModelKalmanEstimator) currentState(id Id) TrackedObject {
	return e.bank.currentState(id)
}

// isDynamic reports whether the current best model's planar speed exceeds
// the configured static-speed threshold.
func (e *MultiModelKalmanEstimator) isDynamic() bool {
	return e.bank.isDynamic()
}
