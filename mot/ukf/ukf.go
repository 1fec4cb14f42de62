// Package ukf implements a single, monomorphic Unscented Kalman Filter
// over float64 state vectors, ported from Intel's OpenCV-based
// UnscentedKalmanFilterMod (rv::tracking) to gonum/mat. One Filter
// instance is created per motion model inside a MultiModelKalmanEstimator.
package ukf

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Params are the UKF tuning parameters (alpha, beta, kappa) from spec §4.2.
type Params struct {
	Alpha float64
	Beta  float64
	Kappa float64
}

// DefaultParams returns the conventional (alpha=1e-3, beta=2, kappa=0) tuning.
func DefaultParams() Params {
	return Params{Alpha: 1e-3, Beta: 2.0, Kappa: 0.0}
}

// TransitionFunc propagates a sigma point through the state transition.
type TransitionFunc func(state *mat.VecDense, dt float64, noise mat.Vector) *mat.VecDense

// MeasurementFunc projects a sigma point into measurement space.
type MeasurementFunc func(state *mat.VecDense, noise mat.Vector) *mat.VecDense

// ErrFilterDegenerate is returned (wrapped) when the Cholesky factorization
// of the covariance fails even after regularization, or Syy is singular
// beyond the SVD tolerance.
var ErrFilterDegenerate = errors.New("ukf: filter degenerate")

const svdPinvTolerance = 1e-10

// Filter is the Unscented Kalman Filter. DP is the state dimension, MP the
// measurement dimension; both are fixed at construction.
type Filter struct {
	dp, mp int
	params Params

	transition  TransitionFunc
	measurement MeasurementFunc

	state    *mat.VecDense
	errorCov *mat.Dense

	processNoiseCov     *mat.Dense
	measurementNoiseCov *mat.Dense

	lambda    float64
	tmpLambda float64 // lambda + dp
	wm        *mat.VecDense
	wc        *mat.Dense // diag(Wc), (2dp+1)x(2dp+1)

	// retained between predict and correct
	measurementEstimate *mat.VecDense
	transitionCentered   *mat.Dense // Fc, DP x (2DP+1)
	measurementCentered  *mat.Dense // Hc, MP x (2DP+1)
	innovationCov        *mat.Dense // Syy, MP x MP
}

// New builds a Filter for the given transition/measurement pair and initial
// state/covariance.
func New(dp, mp int, transition TransitionFunc, measurement MeasurementFunc,
	initState *mat.VecDense, initCov, processNoiseCov, measurementNoiseCov *mat.Dense, params Params) *Filter {

	f := &Filter{
		dp:                  dp,
		mp:                  mp,
		params:              params,
		transition:          transition,
		measurement:         measurement,
		state:               mat.VecDenseCopyOf(initState),
		errorCov:            mat.DenseCopyOf(initCov),
		processNoiseCov:     mat.DenseCopyOf(processNoiseCov),
		measurementNoiseCov: mat.DenseCopyOf(measurementNoiseCov),
	}
	f.computeWeights()
	return f
}

func (f *Filter) computeWeights() {
	dp := float64(f.dp)
	f.lambda = f.params.Alpha*f.params.Alpha*(dp+f.params.Kappa) - dp
	f.tmpLambda = f.lambda + dp

	n := 2*f.dp + 1
	f.wm = mat.NewVecDense(n, nil)
	f.wc = mat.NewDense(n, n, nil)

	generic := 0.5 / f.tmpLambda
	for i := 0; i < n; i++ {
		f.wm.SetVec(i, generic)
		f.wc.Set(i, i, generic)
	}
	f.wm.SetVec(0, f.lambda/f.tmpLambda)
	f.wc.Set(0, 0, f.lambda/f.tmpLambda+1.0-f.params.Alpha*f.params.Alpha+f.params.Beta)
}

// State returns the current state estimate.
func (f *Filter) State() *mat.VecDense { return mat.VecDenseCopyOf(f.state) }

// ErrorCov returns the current state covariance.
func (f *Filter) ErrorCov() *mat.Dense { return mat.DenseCopyOf(f.errorCov) }

// MeasurementEstimate returns the predicted measurement from the last Predict.
func (f *Filter) MeasurementEstimate() *mat.VecDense {
	if f.measurementEstimate == nil {
		return nil
	}
	return mat.VecDenseCopyOf(f.measurementEstimate)
}

// InnovationCov returns Syy from the last Predict.
func (f *Filter) InnovationCov() *mat.Dense {
	if f.innovationCov == nil {
		return nil
	}
	return mat.DenseCopyOf(f.innovationCov)
}

// sigmaPoints builds the 2*dp+1 sigma points of (mean, cov) scaled by coef,
// via the Cholesky factor of cov. On Cholesky failure it regularizes cov by
// adding epsilon*I and retries once.
func (f *Filter) sigmaPoints(mean *mat.VecDense, cov *mat.Dense, coef float64) (*mat.Dense, error) {
	n := mean.Len()
	l, err := choleskyLower(cov, n)
	if err != nil {
		regularized := mat.NewDense(n, n, nil)
		regularized.Add(cov, identityScaled(n, 1e-6))
		l, err = choleskyLower(regularized, n)
		if err != nil {
			return nil, errors.Wrap(ErrFilterDegenerate, "cholesky failed after regularization")
		}
	}

	points := mat.NewDense(n, 2*n+1, nil)
	for row := 0; row < n; row++ {
		for col := 0; col < 2*n+1; col++ {
			points.Set(row, col, mean.AtVec(row))
		}
	}
	for i := 0; i < n; i++ {
		for row := 0; row < n; row++ {
			delta := coef * l.At(row, i)
			points.Set(row, 1+i, points.At(row, 1+i)+delta)
			points.Set(row, 1+n+i, points.At(row, 1+n+i)-delta)
		}
	}
	return points, nil
}

func choleskyLower(cov *mat.Dense, n int) (*mat.Dense, error) {
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, cov.At(i, j))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, errors.New("matrix is not positive definite")
	}
	var l mat.TriDense
	chol.LTo(&l)
	dense := mat.NewDense(n, n, nil)
	dense.Copy(&l)
	return dense, nil
}

func identityScaled(n int, eps float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, eps)
	}
	return m
}

func columnVec(m *mat.Dense, col int) *mat.VecDense {
	rows, _ := m.Dims()
	v := mat.NewVecDense(rows, nil)
	for r := 0; r < rows; r++ {
		v.SetVec(r, m.At(r, col))
	}
	return v
}

func setColumn(m *mat.Dense, col int, v mat.Vector) {
	rows, _ := m.Dims()
	for r := 0; r < rows; r++ {
		m.Set(r, col, v.AtVec(r))
	}
}

// Predict advances the filter by dt seconds: it generates sigma points from
// the current (state, errorCov), propagates them through the transition
// function, forms the predicted state and covariance, then re-samples sigma
// points and propagates them through the measurement function to form the
// innovation covariance used by Correct.
func (f *Filter) Predict(dt float64) error {
	coef := math.Sqrt(f.tmpLambda)

	sigma, err := f.sigmaPoints(f.state, f.errorCov, coef)
	if err != nil {
		return err
	}

	n := 2*f.dp + 1
	transitioned := mat.NewDense(f.dp, n, nil)
	for i := 0; i < n; i++ {
		x := columnVec(sigma, i)
		fx := f.transition(x, dt, nil)
		setColumn(transitioned, i, fx)
	}

	newState := mat.NewVecDense(f.dp, nil)
	newState.MulVec(transitioned, f.wm)
	f.state = newState

	centered := mat.NewDense(f.dp, n, nil)
	for i := 0; i < n; i++ {
		for r := 0; r < f.dp; r++ {
			centered.Set(r, i, transitioned.At(r, i)-f.state.AtVec(r))
		}
	}
	f.transitionCentered = centered

	weighted := mat.NewDense(f.dp, n, nil)
	weighted.Mul(centered, f.wc)
	newCov := mat.NewDense(f.dp, f.dp, nil)
	newCov.Mul(weighted, centered.T())
	newCov.Add(newCov, f.processNoiseCov)
	f.errorCov = newCov

	sigma2, err := f.sigmaPoints(f.state, f.errorCov, coef)
	if err != nil {
		return err
	}

	measured := mat.NewDense(f.mp, n, nil)
	for i := 0; i < n; i++ {
		x := columnVec(sigma2, i)
		hx := f.measurement(x, nil)
		setColumn(measured, i, hx)
	}

	measurementEstimate := mat.NewVecDense(f.mp, nil)
	measurementEstimate.MulVec(measured, f.wm)
	f.measurementEstimate = measurementEstimate

	measuredCentered := mat.NewDense(f.mp, n, nil)
	for i := 0; i < n; i++ {
		for r := 0; r < f.mp; r++ {
			measuredCentered.Set(r, i, measured.At(r, i)-f.measurementEstimate.AtVec(r))
		}
	}
	f.measurementCentered = measuredCentered

	weightedH := mat.NewDense(f.mp, n, nil)
	weightedH.Mul(measuredCentered, f.wc)
	syy := mat.NewDense(f.mp, f.mp, nil)
	syy.Mul(weightedH, measuredCentered.T())
	syy.Add(syy, f.measurementNoiseCov)
	f.innovationCov = syy

	return nil
}

// Correct fuses measurement into the predicted state via the Kalman gain,
// computed with an SVD-based pseudo-inverse of Syy (tolerant of near-
// singular innovations). If the resulting state has any non-finite
// component the filter re-initializes from the last good state and reports
// ErrFilterDegenerate.
func (f *Filter) Correct(measurement *mat.VecDense) error {
	lastGoodState := mat.VecDenseCopyOf(f.state)
	lastGoodCov := mat.DenseCopyOf(f.errorCov)

	weighted := mat.NewDense(f.dp, 2*f.dp+1, nil)
	weighted.Mul(f.transitionCentered, f.wc)
	sxy := mat.NewDense(f.dp, f.mp, nil)
	sxy.Mul(weighted, f.measurementCentered.T())

	syyInv, err := pseudoInverse(f.innovationCov)
	if err != nil {
		return errors.Wrap(ErrFilterDegenerate, err.Error())
	}

	gain := mat.NewDense(f.dp, f.mp, nil)
	gain.Mul(sxy, syyInv)

	residual := mat.NewVecDense(f.mp, nil)
	residual.SubVec(measurement, f.measurementEstimate)

	correction := mat.NewVecDense(f.dp, nil)
	correction.MulVec(gain, residual)

	newState := mat.NewVecDense(f.dp, nil)
	newState.AddVec(f.state, correction)

	if !finiteVec(newState) {
		f.state = lastGoodState
		f.errorCov = lastGoodCov
		return errors.Wrap(ErrFilterDegenerate, "non-finite state after correction")
	}
	f.state = newState

	gainSxyT := mat.NewDense(f.dp, f.dp, nil)
	gainSxyT.Mul(gain, sxy.T())
	newCov := mat.NewDense(f.dp, f.dp, nil)
	newCov.Sub(f.errorCov, gainSxyT)
	f.errorCov = newCov

	return nil
}

func finiteVec(v *mat.VecDense) bool {
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// pseudoInverse computes the Moore-Penrose pseudo-inverse of m via SVD,
// clamping singular values below svdPinvTolerance to zero.
func pseudoInverse(m *mat.Dense) (*mat.Dense, error) {
	rows, cols := m.Dims()
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDFull); !ok {
		return nil, errors.New("SVD factorization failed")
	}

	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	sInv := mat.NewDense(cols, rows, nil)
	for i := 0; i < len(s); i++ {
		if s[i] > svdPinvTolerance {
			sInv.Set(i, i, 1.0/s[i])
		}
	}

	tmp := mat.NewDense(cols, rows, nil)
	tmp.Mul(&v, sInv)
	result := mat.NewDense(cols, rows, nil)
	result.Mul(tmp, u.T())
	return result, nil
}
