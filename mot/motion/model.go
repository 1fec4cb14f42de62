// Package motion implements the state-transition and measurement functions
// shared by the UKF bank: constant position (CP), constant velocity (CV),
// constant acceleration (CA), and constant turn-rate-and-velocity (CTRV).
//
// All four models share one 12-component state layout:
//
//	[x, y, vx, vy, ax, ay, z, length, width, height, yaw, yawRate]
//
// and one 7-component measurement layout:
//
//	[x, y, z, length, width, height, yaw]
//
// They differ only in the state transition; the measurement function is
// identical across models, so it lives once in this file.
package motion

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// StateDim is the dimensionality of the canonical state vector.
const StateDim = 12

// MeasurementDim is the dimensionality of the canonical measurement vector.
const MeasurementDim = 7

// State vector indices.
const (
	IX = iota
	IY
	IVX
	IVY
	IAX
	IAY
	IZ
	ILength
	IWidth
	IHeight
	IYaw
	IYawRate
)

// Measurement vector indices.
const (
	MX = iota
	MY
	MZ
	MLength
	MWidth
	MHeight
	MYaw
)

// Model is the tagged-variant interface every motion model implements.
// Transition and Measurement both take additive noise as their last
// argument, summed into the result, per spec.
type Model interface {
	Name() string
	Transition(state *mat.VecDense, dt float64, noise mat.Vector) *mat.VecDense
	Measurement(state *mat.VecDense, noise mat.Vector) *mat.VecDense
}

// measurementFunction projects state -> the 7-vector measurement, shared by
// every model.
func measurementFunction(state *mat.VecDense, noise mat.Vector) *mat.VecDense {
	z := mat.NewVecDense(MeasurementDim, nil)
	z.SetVec(MX, state.AtVec(IX))
	z.SetVec(MY, state.AtVec(IY))
	z.SetVec(MZ, state.AtVec(IZ))
	z.SetVec(MLength, state.AtVec(ILength))
	z.SetVec(MWidth, state.AtVec(IWidth))
	z.SetVec(MHeight, state.AtVec(IHeight))
	z.SetVec(MYaw, state.AtVec(IYaw))
	if noise != nil {
		z.AddVec(z, noise)
	}
	return z
}

// NormalizeYaw wraps yaw into (-pi, pi].
func NormalizeYaw(yaw float64) float64 {
	for yaw > math.Pi {
		yaw -= 2 * math.Pi
	}
	for yaw <= -math.Pi {
		yaw += 2 * math.Pi
	}
	return yaw
}

func addNoise(state *mat.VecDense, noise mat.Vector) *mat.VecDense {
	if noise != nil {
		state.AddVec(state, noise)
	}
	return state
}

func carryOverSizeAndZ(dst, src *mat.VecDense) {
	dst.SetVec(IZ, src.AtVec(IZ))
	dst.SetVec(ILength, src.AtVec(ILength))
	dst.SetVec(IWidth, src.AtVec(IWidth))
	dst.SetVec(IHeight, src.AtVec(IHeight))
}
