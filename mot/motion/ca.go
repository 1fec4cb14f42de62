package motion

import "gonum.org/v1/gonum/mat"

// CA is the constant-acceleration model: position advances by the usual
// second-order term, velocity advances by acceleration * dt, and
// acceleration itself is carried over unchanged.
type CA struct{}

// Name returns "CA".
func (CA) Name() string { return "CA" }

// Transition applies the constant-acceleration kinematic equations to x/y.
func (CA) Transition(state *mat.VecDense, dt float64, noise mat.Vector) *mat.VecDense {
	x := state.AtVec(IX)
	y := state.AtVec(IY)
	vx := state.AtVec(IVX)
	vy := state.AtVec(IVY)
	ax := state.AtVec(IAX)
	ay := state.AtVec(IAY)

	next := mat.NewVecDense(StateDim, nil)
	next.SetVec(IX, x+vx*dt+0.5*ax*dt*dt)
	next.SetVec(IY, y+vy*dt+0.5*ay*dt*dt)
	next.SetVec(IVX, vx+ax*dt)
	next.SetVec(IVY, vy+ay*dt)
	next.SetVec(IAX, ax)
	next.SetVec(IAY, ay)
	carryOverSizeAndZ(next, state)
	next.SetVec(IYaw, state.AtVec(IYaw))
	next.SetVec(IYawRate, state.AtVec(IYawRate))
	return addNoise(next, noise)
}

// Measurement projects state to the shared 7-vector measurement.
func (CA) Measurement(state *mat.VecDense, noise mat.Vector) *mat.VecDense {
	return measurementFunction(state, noise)
}
