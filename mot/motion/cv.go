package motion

import "gonum.org/v1/gonum/mat"

// CV is the constant-velocity model, ported from the teacher's
// CVModel.stateConversionFunction (originally over cv::Mat) to gonum/mat.
type CV struct{}

// Name returns "CV".
func (CV) Name() string { return "CV" }

// Transition advances position by velocity * dt, forcing acceleration and
// yaw rate to zero.
func (CV) Transition(state *mat.VecDense, dt float64, noise mat.Vector) *mat.VecDense {
	x := state.AtVec(IX)
	y := state.AtVec(IY)
	vx := state.AtVec(IVX)
	vy := state.AtVec(IVY)

	next := mat.NewVecDense(StateDim, nil)
	next.SetVec(IX, x+vx*dt)
	next.SetVec(IY, y+vy*dt)
	next.SetVec(IVX, vx)
	next.SetVec(IVY, vy)
	next.SetVec(IAX, 0)
	next.SetVec(IAY, 0)
	carryOverSizeAndZ(next, state)
	next.SetVec(IYaw, state.AtVec(IYaw))
	next.SetVec(IYawRate, 0)
	return addNoise(next, noise)
}

// Measurement projects state to the shared 7-vector measurement.
func (CV) Measurement(state *mat.VecDense, noise mat.Vector) *mat.VecDense {
	return measurementFunction(state, noise)
}
