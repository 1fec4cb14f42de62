package mot

import "testing"

func TestDefaultTrackManagerConfigIsValid(t *testing.T) {
	cfg := DefaultTrackManagerConfig()
	if err := cfg.validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
}

func TestUpdateTrackerConfigRejectsNonPositiveFrameRate(t *testing.T) {
	cfg := DefaultTrackManagerConfig()
	if err := cfg.UpdateTrackerConfig(0); err == nil {
		t.Errorf("expected error for zero frame rate")
	}
	if kind, ok := KindOf(cfg.UpdateTrackerConfig(-1)); !ok || kind != ConfigurationError {
		t.Errorf("expected ConfigurationError, got %v (ok=%v)", kind, ok)
	}
}

func TestUpdateTrackerConfigConvertsSecondsToFrames(t *testing.T) {
	cfg := DefaultTrackManagerConfig()
	cfg.MaxUnreliableTime = 0.1
	cfg.NonMeasurementTimeDynamic = 1.0
	cfg.NonMeasurementTimeStatic = 2.0
	if err := cfg.UpdateTrackerConfig(30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.maxUnreliableFrames != 3 {
		t.Errorf("expected 3 frames for 0.1s at 30 FPS, got %d", cfg.maxUnreliableFrames)
	}
	if cfg.nonMeasurementFramesDynamic != 30 {
		t.Errorf("expected 30 frames for 1.0s at 30 FPS, got %d", cfg.nonMeasurementFramesDynamic)
	}
	if cfg.nonMeasurementFramesStatic != 60 {
		t.Errorf("expected 60 frames for 2.0s at 30 FPS, got %d", cfg.nonMeasurementFramesStatic)
	}
}

func TestValidateRejectsEmptyMotionModels(t *testing.T) {
	cfg := DefaultTrackManagerConfig()
	cfg.MotionModels = nil
	if err := cfg.validate(); err == nil {
		t.Errorf("expected ConfigurationError for empty motion model set")
	}
}

func TestValidateRejectsMissingMatrices(t *testing.T) {
	cfg := DefaultTrackManagerConfig()
	cfg.DefaultProcessNoise = nil
	if err := cfg.validate(); err == nil {
		t.Errorf("expected ConfigurationError for missing process noise matrix")
	}
}
