package mot

import (
	"time"

	"golang.org/x/sync/errgroup"
)

// TrackManager owns every track's estimator exclusively and implements the
// birth/reliable/suspend/reactivate/delete lifecycle of spec.md §4.7.
// External callers interact by value: detections in, TrackedObject
// snapshots out.
type TrackManager struct {
	config TrackManagerConfig

	active    map[Id]*MultiModelKalmanEstimator
	suspended map[Id]*MultiModelKalmanEstimator

	measurements map[Id]TrackedObject

	trackedFrames        map[Id]int
	nonMeasurementFrames map[Id]int

	nextId Id
}

// NewTrackManager builds a TrackManager with cfg, returning a
// ConfigurationError if cfg is incompatible.
func NewTrackManager(cfg TrackManagerConfig) (*TrackManager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &TrackManager{
		config:               cfg,
		active:               make(map[Id]*MultiModelKalmanEstimator),
		suspended:            make(map[Id]*MultiModelKalmanEstimator),
		measurements:         make(map[Id]TrackedObject),
		trackedFrames:        make(map[Id]int),
		nonMeasurementFrames: make(map[Id]int),
		nextId:               1,
	}, nil
}

// UpdateTrackerParams recomputes frame-count budgets for frameRate frames
// per second.
func (m *TrackManager) UpdateTrackerParams(frameRate int) error {
	return m.config.UpdateTrackerConfig(frameRate)
}

// createTrack births a new unreliable track from a detection, assigning an
// id per config.AutoIdGeneration, and returns it.
func (m *TrackManager) createTrack(detection TrackedObject, timestamp time.Time) Id {
	id := detection.Id
	if m.config.AutoIdGeneration || id == INVALID {
		id = m.nextId
		m.nextId++
	}
	est := newMultiModelKalmanEstimator(
		detection, timestamp, m.config.MotionModels,
		m.config.InitStateCovariance, m.config.DefaultProcessNoise, m.config.DefaultMeasurementNoise,
		m.config.StaticSpeedThreshold,
	)
	m.active[id] = est
	m.trackedFrames[id] = 0
	m.nonMeasurementFrames[id] = 0
	return id
}

// deleteTrack removes id from both the active and suspended sets.
func (m *TrackManager) deleteTrack(id Id) {
	delete(m.active, id)
	delete(m.suspended, id)
	delete(m.trackedFrames, id)
	delete(m.nonMeasurementFrames, id)
	delete(m.measurements, id)
}

// suspendTrack moves a reliable, currently-static id from active to
// suspended, keeping its estimator and counters intact for reactivation.
func (m *TrackManager) suspendTrack(id Id) {
	est, ok := m.active[id]
	if !ok {
		return
	}
	delete(m.active, id)
	m.suspended[id] = est
}

// reactivateTrack moves id from suspended back to active, resetting
// trackedFrames to maxUnreliableFrames-reactivationFrames ("almost
// reliable") so a single bad match cannot re-demote it immediately.
func (m *TrackManager) reactivateTrack(id Id) {
	est, ok := m.suspended[id]
	if !ok {
		return
	}
	delete(m.suspended, id)
	m.active[id] = est
	m.nonMeasurementFrames[id] = 0
	almostReliable := m.config.maxUnreliableFrames - m.config.ReactivationFrames
	if almostReliable < 0 {
		almostReliable = 0
	}
	m.trackedFrames[id] = almostReliable
}

// predict advances every active estimator's filters to timestamp. The
// sweep is data-parallel: estimators are snapshotted into a stable-order
// slice before dispatch, and no bookkeeping map is touched from within the
// parallel region.
func (m *TrackManager) predict(timestamp time.Time) error {
	ids, estimators := m.snapshotActive()

	g := new(errgroup.Group)
	errs := make([]error, len(ids))
	for i, est := range estimators {
		i, est := i, est
		g.Go(func() error {
			errs[i] = est.predict(timestamp)
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range ids {
		if errs[i] != nil {
			m.nonMeasurementFrames[id]++
		}
	}
	return nil
}

// setMeasurement records measurement as the pending detection for id, to
// be applied by correct. It returns UnknownTrackId if id is not active.
func (m *TrackManager) setMeasurement(id Id, measurement TrackedObject) error {
	if _, ok := m.active[id]; !ok {
		return newError(UnknownTrackId, "setMeasurement: unknown active track id")
	}
	m.measurements[id] = measurement
	return nil
}

// correct applies each active track's pending measurement (set via
// setMeasurement), data-parallel across estimators, then serially updates
// counters and performs the lifecycle sweep: promotion to reliable,
// suspension of static tracks past their miss budget, and deletion of
// dynamic tracks past theirs.
func (m *TrackManager) correct() error {
	ids, estimators := m.snapshotActive()
	measurements := make([]*TrackedObject, len(ids))
	for i, id := range ids {
		if meas, ok := m.measurements[id]; ok {
			measurements[i] = &meas
		}
	}

	g := new(errgroup.Group)
	errs := make([]error, len(ids))
	for i, est := range estimators {
		i, est := i, est
		meas := measurements[i]
		if meas == nil {
			continue
		}
		g.Go(func() error {
			errs[i] = est.correct(*meas)
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range ids {
		if measurements[i] != nil && errs[i] == nil {
			m.trackedFrames[id]++
			m.nonMeasurementFrames[id] = 0
		} else {
			m.nonMeasurementFrames[id]++
		}
	}

	m.measurements = make(map[Id]TrackedObject)
	m.sweepLifecycle(ids, estimators)
	return nil
}

// sweepLifecycle applies the promotion/suspension/deletion transitions of
// spec.md §4.7 over the snapshot taken before correct's parallel region.
// Only a reliable track can be suspended: an unreliable track, dynamic or
// static, always runs against the dynamic miss budget and is deleted, never
// suspended, once it exceeds it. A "suspended track" is by definition a
// previously-reliable static track.
func (m *TrackManager) sweepLifecycle(ids []Id, estimators []*MultiModelKalmanEstimator) {
	for i, id := range ids {
		est := estimators[i]
		missed := m.nonMeasurementFrames[id]

		if !m.isReliable(id) {
			if missed > m.config.nonMeasurementFramesDynamic {
				m.deleteTrack(id)
			}
			continue
		}

		if est.isDynamic() {
			if missed > m.config.nonMeasurementFramesDynamic {
				m.deleteTrack(id)
			}
		} else {
			if missed > m.config.nonMeasurementFramesStatic {
				m.suspendTrack(id)
			}
		}
	}
}

// snapshotActive materializes a stable-order slice of (id, estimator)
// pairs for the active set, satisfying spec.md §5's "stable iteration
// order materialized before dispatch" requirement.
func (m *TrackManager) snapshotActive() ([]Id, []*MultiModelKalmanEstimator) {
	ids := make([]Id, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	sortIds(ids)
	estimators := make([]*MultiModelKalmanEstimator, len(ids))
	for i, id := range ids {
		estimators[i] = m.active[id]
	}
	return ids, estimators
}

func sortIds(ids []Id) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// isReliable reports whether id has accumulated at least maxUnreliableFrames
// corrected frames.
func (m *TrackManager) isReliable(id Id) bool {
	return m.trackedFrames[id] >= m.config.maxUnreliableFrames
}

// isSuspended reports whether id is currently in the suspended set.
func (m *TrackManager) isSuspended(id Id) bool {
	_, ok := m.suspended[id]
	return ok
}

// hasId reports whether id is present in either the active or suspended
// set.
func (m *TrackManager) hasId(id Id) bool {
	if _, ok := m.active[id]; ok {
		return true
	}
	_, ok := m.suspended[id]
	return ok
}

// getTracks returns every active track's current state.
func (m *TrackManager) getTracks() []TrackedObject {
	out := make([]TrackedObject, 0, len(m.active))
	ids, estimators := m.snapshotActive()
	for i, id := range ids {
		out = append(out, estimators[i].currentState(id))
	}
	return out
}

// getReliableTracks returns the current state of every active track with
// isReliable(id) true.
func (m *TrackManager) getReliableTracks() []TrackedObject {
	out := make([]TrackedObject, 0, len(m.active))
	ids, estimators := m.snapshotActive()
	for i, id := range ids {
		if m.isReliable(id) {
			out = append(out, estimators[i].currentState(id))
		}
	}
	return out
}

// getUnreliableTracks returns the current state of every active track with
// isReliable(id) false.
func (m *TrackManager) getUnreliableTracks() []TrackedObject {
	out := make([]TrackedObject, 0, len(m.active))
	ids, estimators := m.snapshotActive()
	for i, id := range ids {
		if !m.isReliable(id) {
			out = append(out, estimators[i].currentState(id))
		}
	}
	return out
}

// getSuspendedTracks returns the current state of every suspended track.
func (m *TrackManager) getSuspendedTracks() []TrackedObject {
	out := make([]TrackedObject, 0, len(m.suspended))
	ids := make([]Id, 0, len(m.suspended))
	for id := range m.suspended {
		ids = append(ids, id)
	}
	sortIds(ids)
	for _, id := range ids {
		out = append(out, m.suspended[id].currentState(id))
	}
	return out
}

// getDriftingTracks returns reliable tracks currently missed for more than
// nonMeasurementFramesDynamic/2 frames — present in the original but not
// named in spec.md's distillation; spec.md §4.7 lists it in the exposed
// operations, so it is implemented here per the distillation's own
// manifest.
func (m *TrackManager) getDriftingTracks() []TrackedObject {
	out := make([]TrackedObject, 0)
	ids, estimators := m.snapshotActive()
	halfBudget := m.config.nonMeasurementFramesDynamic / 2
	for i, id := range ids {
		if m.isReliable(id) && m.nonMeasurementFrames[id] > halfBudget {
			out = append(out, estimators[i].currentState(id))
		}
	}
	return out
}
