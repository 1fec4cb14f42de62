package mot

import (
	"math"
	"testing"
)

func newTestManager(t *testing.T) *TrackManager {
	cfg := DefaultTrackManagerConfig()
	if err := cfg.UpdateTrackerConfig(30); err != nil {
		t.Fatalf("config update failed: %v", err)
	}
	manager, err := NewTrackManager(cfg)
	if err != nil {
		t.Fatalf("failed to build manager: %v", err)
	}
	return manager
}

func TestNewTrackManagerRejectsEmptyMotionModels(t *testing.T) {
	cfg := DefaultTrackManagerConfig()
	cfg.MotionModels = nil
	if _, err := NewTrackManager(cfg); err == nil {
		t.Fatalf("expected ConfigurationError for empty motion model set")
	} else if kind, ok := KindOf(err); !ok || kind != ConfigurationError {
		t.Errorf("expected ConfigurationError, got %v (ok=%v)", kind, ok)
	}
}

func TestCreateTrackAssignsMonotonicIds(t *testing.T) {
	manager := newTestManager(t)

	det := staticDetection()
	id1 := manager.createTrack(det, frameAt(0))
	id2 := manager.createTrack(det, frameAt(0))
	if id1 == INVALID || id2 == INVALID {
		t.Fatalf("expected non-zero ids, got %v and %v", id1, id2)
	}
	if id1 == id2 {
		t.Errorf("expected distinct ids, got %v twice", id1)
	}
	if !manager.hasId(id1) || !manager.hasId(id2) {
		t.Errorf("expected both ids to be known to the manager")
	}
}

func TestDeleteTrackRemovesFromActiveAndSuspended(t *testing.T) {
	manager := newTestManager(t)
	id := manager.createTrack(staticDetection(), frameAt(0))
	manager.suspendTrack(id)
	if !manager.hasId(id) {
		t.Fatalf("expected suspended id to remain known")
	}
	manager.deleteTrack(id)
	if manager.hasId(id) {
		t.Errorf("expected deleted id to be unknown")
	}
}

func TestSuspendAndReactivateRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	id := manager.createTrack(staticDetection(), frameAt(0))
	manager.trackedFrames[id] = manager.config.maxUnreliableFrames

	manager.suspendTrack(id)
	if !manager.isSuspended(id) {
		t.Fatalf("expected track to be suspended")
	}
	if _, ok := manager.active[id]; ok {
		t.Errorf("expected suspended track to leave the active set")
	}

	manager.reactivateTrack(id)
	if manager.isSuspended(id) {
		t.Errorf("expected track to leave the suspended set after reactivation")
	}
	// reactivation intentionally demotes to "almost reliable", not
	// necessarily reliable; just check the counter does not exceed the
	// reliable threshold it had before suspension.
	if manager.trackedFrames[id] > manager.config.maxUnreliableFrames {
		t.Errorf("expected reactivation to not exceed the prior tracked-frame count")
	}
}

func TestGetDriftingTracks(t *testing.T) {
	manager := newTestManager(t)
	det := staticDetection()
	id := manager.createTrack(det, frameAt(0))
	manager.trackedFrames[id] = manager.config.maxUnreliableFrames
	manager.nonMeasurementFrames[id] = manager.config.nonMeasurementFramesDynamic/2 + 1

	drifting := manager.getDriftingTracks()
	if len(drifting) != 1 {
		t.Fatalf("expected 1 drifting track, got %d", len(drifting))
	}
	if drifting[0].Id != id {
		t.Errorf("expected drifting track id %v, got %v", id, drifting[0].Id)
	}
}

func TestPredictAndCorrectWithoutMeasurementIncrementsMissCounter(t *testing.T) {
	manager := newTestManager(t)
	id := manager.createTrack(staticDetection(), frameAt(0))

	if err := manager.predict(frameAt(0.033)); err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if err := manager.correct(); err != nil {
		t.Fatalf("correct failed: %v", err)
	}
	if manager.nonMeasurementFrames[id] != 1 {
		t.Errorf("expected 1 missed frame, got %d", manager.nonMeasurementFrames[id])
	}
	if manager.trackedFrames[id] != 0 {
		t.Errorf("expected trackedFrames to stay 0 without a measurement, got %d", manager.trackedFrames[id])
	}
}

func TestSetMeasurementUnknownIdReturnsError(t *testing.T) {
	manager := newTestManager(t)
	err := manager.setMeasurement(Id(9999), staticDetection())
	if err == nil {
		t.Fatalf("expected UnknownTrackId error")
	}
	if kind, ok := KindOf(err); !ok || kind != UnknownTrackId {
		t.Errorf("expected UnknownTrackId, got %v (ok=%v)", kind, ok)
	}
}

func TestCorrectAbsorbsDegenerateFilterWithoutDeletingTrack(t *testing.T) {
	manager := newTestManager(t)
	id := manager.createTrack(staticDetection(), frameAt(0))

	if err := manager.predict(frameAt(0.033)); err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	// A detection whose position collapses the correction to a non-finite
	// state stands in for a rank-deficient innovation covariance: the
	// filter cannot absorb it and must fall back to its last good state.
	degenerate := staticDetection()
	degenerate.Position.X = math.Inf(1)
	if err := manager.setMeasurement(id, degenerate); err != nil {
		t.Fatalf("setMeasurement failed: %v", err)
	}
	if err := manager.correct(); err != nil {
		t.Fatalf("correct returned a hard error instead of absorbing the degenerate filter: %v", err)
	}

	if !manager.hasId(id) {
		t.Fatalf("expected the track to survive a single degenerate correction")
	}
	if manager.nonMeasurementFrames[id] != 1 {
		t.Errorf("expected the degenerate correction to count as a missed frame, got %d", manager.nonMeasurementFrames[id])
	}
	if manager.trackedFrames[id] != 0 {
		t.Errorf("expected trackedFrames to stay 0 since the correction was skipped, got %d", manager.trackedFrames[id])
	}

	// Keep missing until the miss budget is exceeded: the track must
	// eventually be deleted, not survive forever.
	budget := manager.config.nonMeasurementFramesDynamic
	for i := 0; i < budget; i++ {
		if err := manager.predict(frameAt(0.066 + float64(i)*0.033)); err != nil {
			t.Fatalf("predict failed: %v", err)
		}
		if err := manager.correct(); err != nil {
			t.Fatalf("correct failed: %v", err)
		}
	}
	if manager.hasId(id) {
		t.Errorf("expected the track to be deleted once it exceeds its miss budget")
	}
}

func TestUpdateTrackerParamsRejectsNonPositiveFrameRate(t *testing.T) {
	manager := newTestManager(t)
	if err := manager.UpdateTrackerParams(0); err == nil {
		t.Errorf("expected error for zero frame rate")
	}
	if err := manager.UpdateTrackerParams(-5); err == nil {
		t.Errorf("expected error for negative frame rate")
	}
}

