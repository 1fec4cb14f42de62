package motion

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// yawRateEpsilon below this magnitude, CTRV falls back to the straight-line
// limit to avoid dividing by (near) zero.
const yawRateEpsilon = 1e-4

// CTRV is the constant turn-rate-and-velocity model: position and yaw
// evolve along the nonlinear coupled curve implied by speed and yaw rate,
// with the usual straight-line limit as yawRate -> 0.
type CTRV struct{}

// Name returns "CTRV".
func (CTRV) Name() string { return "CTRV" }

// Transition applies the coupled (x, y, yaw) update for speed v and yaw
// rate omega, falling back to straight-line motion when omega is ~0.
func (CTRV) Transition(state *mat.VecDense, dt float64, noise mat.Vector) *mat.VecDense {
	x := state.AtVec(IX)
	y := state.AtVec(IY)
	vx := state.AtVec(IVX)
	vy := state.AtVec(IVY)
	yaw := state.AtVec(IYaw)
	omega := state.AtVec(IYawRate)

	v := math.Hypot(vx, vy)

	var nx, ny, nyaw float64
	if math.Abs(omega) < yawRateEpsilon {
		nx = x + v*math.Cos(yaw)*dt
		ny = y + v*math.Sin(yaw)*dt
		nyaw = yaw
	} else {
		nx = x + (v/omega)*(math.Sin(yaw+omega*dt)-math.Sin(yaw))
		ny = y + (v/omega)*(-math.Cos(yaw+omega*dt)+math.Cos(yaw))
		nyaw = yaw + omega*dt
	}
	nyaw = NormalizeYaw(nyaw)

	next := mat.NewVecDense(StateDim, nil)
	next.SetVec(IX, nx)
	next.SetVec(IY, ny)
	next.SetVec(IVX, v*math.Cos(nyaw))
	next.SetVec(IVY, v*math.Sin(nyaw))
	next.SetVec(IAX, 0)
	next.SetVec(IAY, 0)
	carryOverSizeAndZ(next, state)
	next.SetVec(IYaw, nyaw)
	next.SetVec(IYawRate, omega)
	return addNoise(next, noise)
}

// Measurement projects state to the shared 7-vector measurement.
func (CTRV) Measurement(state *mat.VecDense, noise mat.Vector) *mat.VecDense {
	return measurementFunction(state, noise)
}
