package mot

import (
	"gonum.org/v1/gonum/mat"

	"github.com/LdDl/mot-go/mot/motion"
)

// TrackManagerConfig holds every knob TrackManager recognizes. Time-based
// fields are converted to frame counts via UpdateTrackerConfig(frameRate);
// the frame-count fields are what the lifecycle machine actually consults.
type TrackManagerConfig struct {
	// MaxUnreliableTime is the grace period, in seconds, before a track
	// becomes reliable.
	MaxUnreliableTime float64
	// NonMeasurementTimeDynamic is the missed-frame time budget, in
	// seconds, for dynamic tracks before deletion.
	NonMeasurementTimeDynamic float64
	// NonMeasurementTimeStatic is the missed-frame time budget, in
	// seconds, for static tracks before suspension.
	NonMeasurementTimeStatic float64
	// ReactivationFrames is the head-start, in frames, granted to a track
	// reactivated from suspension.
	ReactivationFrames int

	// DefaultProcessNoise is the DP x DP process noise matrix Q shared by
	// every motion model's filter.
	DefaultProcessNoise *mat.Dense
	// DefaultMeasurementNoise is the MP x MP measurement noise matrix R.
	DefaultMeasurementNoise *mat.Dense
	// InitStateCovariance is the DP x DP initial error covariance P0.
	InitStateCovariance *mat.Dense

	// MotionModels is the configured subset of {CP, CV, CA, CTRV}.
	MotionModels []motion.Kind

	// StaticSpeedThreshold is the planar speed, in m/s, below which a
	// track is considered static for suspension purposes.
	StaticSpeedThreshold float64

	// AutoIdGeneration, if true, ignores detection-supplied ids; the
	// manager assigns ids monotonically at birth.
	AutoIdGeneration bool

	// maxUnreliableFrames, nonMeasurementFramesDynamic and
	// nonMeasurementFramesStatic are the frame-count form of the
	// time-based fields above, recomputed by UpdateTrackerConfig.
	maxUnreliableFrames         int
	nonMeasurementFramesDynamic int
	nonMeasurementFramesStatic  int
}

// DefaultTrackManagerConfig returns the configuration spec.md's scenarios
// assume: R=3 reliable frames at 30 FPS, a 1s dynamic/static miss budget,
// MultiClassEuclidean-friendly noise matrices, and all four motion models.
func DefaultTrackManagerConfig() TrackManagerConfig {
	cfg := TrackManagerConfig{
		MaxUnreliableTime:         0.1,
		NonMeasurementTimeDynamic: 1.0,
		NonMeasurementTimeStatic:  1.0,
		ReactivationFrames:        1,
		DefaultProcessNoise:       scaledIdentity(motion.StateDim, 0.05),
		DefaultMeasurementNoise:   scaledIdentity(motion.MeasurementDim, 0.1),
		InitStateCovariance:       scaledIdentity(motion.StateDim, 1.0),
		MotionModels:              []motion.Kind{motion.KindCP, motion.KindCV, motion.KindCA, motion.KindCTRV},
		StaticSpeedThreshold:      0.2,
		AutoIdGeneration:          true,
	}
	cfg.UpdateTrackerConfig(30)
	return cfg
}

func scaledIdentity(n int, scale float64) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, scale)
	}
	return d
}

// UpdateTrackerConfig recomputes the frame-count budgets from the
// time-based fields given frameRate frames per second, matching the
// original TrackManager.cpp's updateTrackerConfig.
func (c *TrackManagerConfig) UpdateTrackerConfig(frameRate int) error {
	if frameRate <= 0 {
		return newError(ConfigurationError, "frame rate must be positive")
	}
	c.maxUnreliableFrames = secondsToFrames(c.MaxUnreliableTime, frameRate)
	c.nonMeasurementFramesDynamic = secondsToFrames(c.NonMeasurementTimeDynamic, frameRate)
	c.nonMeasurementFramesStatic = secondsToFrames(c.NonMeasurementTimeStatic, frameRate)
	return nil
}

func secondsToFrames(seconds float64, frameRate int) int {
	frames := int(seconds*float64(frameRate) + 0.5)
	if frames < 0 {
		frames = 0
	}
	return frames
}

// validate reports a ConfigurationError for incompatible configuration,
// e.g. an empty motion-model set.
func (c *TrackManagerConfig) validate() error {
	if len(c.MotionModels) == 0 {
		return newError(ConfigurationError, "motionModels must be non-empty")
	}
	if c.DefaultProcessNoise == nil || c.DefaultMeasurementNoise == nil || c.InitStateCovariance == nil {
		return newError(ConfigurationError, "process noise, measurement noise and init covariance matrices are required")
	}
	return nil
}
