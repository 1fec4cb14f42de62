package motion

import "gonum.org/v1/gonum/mat"

// CP is the constant-position model: position, velocity and yaw are
// unchanged by the transition; acceleration is forced to zero. Commonly
// used to track a static object.
type CP struct{}

// Name returns "CP".
func (CP) Name() string { return "CP" }

// Transition leaves position, velocity and yaw unchanged, forcing
// acceleration to zero.
func (CP) Transition(state *mat.VecDense, dt float64, noise mat.Vector) *mat.VecDense {
	next := mat.NewVecDense(StateDim, nil)
	next.SetVec(IX, state.AtVec(IX))
	next.SetVec(IY, state.AtVec(IY))
	next.SetVec(IVX, state.AtVec(IVX))
	next.SetVec(IVY, state.AtVec(IVY))
	next.SetVec(IAX, 0)
	next.SetVec(IAY, 0)
	carryOverSizeAndZ(next, state)
	next.SetVec(IYaw, state.AtVec(IYaw))
	next.SetVec(IYawRate, state.AtVec(IYawRate))
	return addNoise(next, noise)
}

// Measurement projects state to the shared 7-vector measurement.
func (CP) Measurement(state *mat.VecDense, noise mat.Vector) *mat.VecDense {
	return measurementFunction(state, noise)
}
