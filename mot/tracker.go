package mot

import (
	"math"
	"time"

	"github.com/LdDl/mot-go/mot/assignment"
)

// distanceBound substitutes for +infinity in the gated Hungarian solver's
// padded sub-matrices; cost-minimization's polarity means a large finite
// value, not zero, plays the teacher's bytetrack.go zero-IoU padding role.
const distanceBound = 100.0

// MultipleObjectTracker is the primary entry point per camera stream. It
// pairs a TrackManager's lifecycle state machine with the four-phase
// association protocol of spec.md §4.6.
type MultipleObjectTracker struct {
	manager *TrackManager

	lastTimestamp time.Time
	haveTimestamp bool
}

// NewMultipleObjectTracker builds a tracker over cfg, returning a
// ConfigurationError if cfg is incompatible.
func NewMultipleObjectTracker(cfg TrackManagerConfig) (*MultipleObjectTracker, error) {
	manager, err := NewTrackManager(cfg)
	if err != nil {
		return nil, err
	}
	return &MultipleObjectTracker{manager: manager}, nil
}

// GetReliableTracks returns every track with at least maxUnreliableFrames
// corrected frames.
func (t *MultipleObjectTracker) GetReliableTracks() []TrackedObject {
	return t.manager.getReliableTracks()
}

// GetTracks returns every active track, reliable or not.
func (t *MultipleObjectTracker) GetTracks() []TrackedObject {
	return t.manager.getTracks()
}

// GetTimestamp returns the timestamp of the last processed frame.
func (t *MultipleObjectTracker) GetTimestamp() time.Time {
	return t.lastTimestamp
}

// UpdateTrackerParams recomputes frame-count budgets for frameRate frames
// per second.
func (t *MultipleObjectTracker) UpdateTrackerParams(frameRate int) error {
	return t.manager.UpdateTrackerParams(frameRate)
}

// Track runs one frame of the four-phase association protocol: predict
// every active estimator to timestamp, then match detections to tracks in
// decreasing priority (reliable/high, reliable/low, unreliable/high,
// suspended/high), correct matched tracks, and birth a new track for every
// detection still unassigned after all four phases.
func (t *MultipleObjectTracker) Track(detections []TrackedObject, timestamp time.Time, distanceType DistanceType, distanceThreshold, scoreThreshold float64) error {
	if distanceThreshold <= 0 {
		return newError(InvalidArgument, "distanceThreshold must be positive")
	}
	if scoreThreshold < 0 || scoreThreshold > 1 {
		return newError(InvalidArgument, "scoreThreshold must be in [0,1]")
	}
	if err := validateDetections(detections); err != nil {
		return err
	}

	if err := t.manager.predict(timestamp); err != nil {
		return err
	}

	if len(detections) == 0 {
		err := t.manager.correct()
		t.lastTimestamp = timestamp
		t.haveTimestamp = true
		return err
	}

	highIdx, lowIdx := splitByScore(detections, scoreThreshold)

	assignedDetections := make(map[int]bool, len(detections))
	assignedTracks := make(map[Id]bool)

	// Phase A: reliable tracks x high detections.
	if err := t.matchPhase(t.manager.getReliableTracks(), highIdx, detections, assignedDetections, assignedTracks, distanceType, distanceThreshold); err != nil {
		return err
	}
	// Phase B: remaining reliable tracks x low detections.
	if err := t.matchPhase(t.manager.getReliableTracks(), lowIdx, detections, assignedDetections, assignedTracks, distanceType, distanceThreshold); err != nil {
		return err
	}
	// Phase C: unreliable tracks x remaining high detections.
	if err := t.matchPhase(t.manager.getUnreliableTracks(), highIdx, detections, assignedDetections, assignedTracks, distanceType, distanceThreshold); err != nil {
		return err
	}
	// Phase D: suspended tracks x remaining high detections; a match
	// reactivates the track before its measurement is recorded.
	if err := t.matchSuspendedPhase(highIdx, detections, assignedDetections, distanceType, distanceThreshold); err != nil {
		return err
	}

	if err := t.manager.correct(); err != nil {
		return err
	}

	// Birth: every detection still unassigned after Phase D becomes a new
	// track.
	for i, d := range detections {
		if !assignedDetections[i] {
			t.manager.createTrack(d, timestamp)
		}
	}

	t.lastTimestamp = timestamp
	t.haveTimestamp = true
	return nil
}

// matchPhase gates tracks x the detections named by detectionIdx through
// the configured distance function and the gated Hungarian solver,
// recording accepted matches as pending measurements. Tracks and
// detections already claimed by an earlier phase this frame are skipped.
func (t *MultipleObjectTracker) matchPhase(tracks []TrackedObject, detectionIdx []int, detections []TrackedObject, assignedDetections map[int]bool, assignedTracks map[Id]bool, distanceType DistanceType, distanceThreshold float64) error {
	tracks = filterUnassignedTracks(tracks, assignedTracks)
	detectionIdx = filterUnassignedDetections(detectionIdx, assignedDetections)
	if len(tracks) == 0 || len(detectionIdx) == 0 {
		return nil
	}

	cost, err := buildCostMatrix(distanceType, tracks, detectionIdx, detections)
	if err != nil {
		return err
	}
	assignments, _, _ := assignment.Solve(cost, distanceThreshold, distanceBound)
	for _, a := range assignments {
		trackId := tracks[a[0]].Id
		detIdx := detectionIdx[a[1]]
		if err := t.manager.setMeasurement(trackId, detections[detIdx]); err != nil {
			return err
		}
		assignedDetections[detIdx] = true
		assignedTracks[trackId] = true
	}
	return nil
}

// matchSuspendedPhase is Phase D: it matches remaining high-score
// detections against the suspended pool, reactivating and setting a
// pending measurement for every accepted match.
func (t *MultipleObjectTracker) matchSuspendedPhase(highIdx []int, detections []TrackedObject, assignedDetections map[int]bool, distanceType DistanceType, distanceThreshold float64) error {
	tracks := t.manager.getSuspendedTracks()
	detectionIdx := filterUnassignedDetections(highIdx, assignedDetections)
	if len(tracks) == 0 || len(detectionIdx) == 0 {
		return nil
	}

	cost, err := buildCostMatrix(distanceType, tracks, detectionIdx, detections)
	if err != nil {
		return err
	}
	assignments, _, _ := assignment.Solve(cost, distanceThreshold, distanceBound)
	for _, a := range assignments {
		trackId := tracks[a[0]].Id
		detIdx := detectionIdx[a[1]]
		// Reactivation corrects the suspended filter directly against its
		// pre-suspension transitionCentered/measurementCentered/innovationCov;
		// no interim predict is run, matching the original's reactivate-then-
		// correct block.
		t.manager.reactivateTrack(trackId)
		if err := t.manager.setMeasurement(trackId, detections[detIdx]); err != nil {
			return err
		}
		assignedDetections[detIdx] = true
	}
	return nil
}

// validateDetections rejects a frame's detections as InvalidArgument before
// predict or any matching phase runs: non-finite positions or sizes,
// negative sizes, or classification vectors whose lengths disagree with one
// another are all malformed input.
func validateDetections(detections []TrackedObject) error {
	classLen := -1
	for _, d := range detections {
		if !finiteVec3(d.Position) {
			return newError(InvalidArgument, "detection position must be finite")
		}
		if !finiteVec3(d.Size) {
			return newError(InvalidArgument, "detection size must be finite")
		}
		if d.Size.X < 0 || d.Size.Y < 0 || d.Size.Z < 0 {
			return newError(InvalidArgument, "detection size must be non-negative")
		}
		if d.Classification == nil {
			continue
		}
		if classLen == -1 {
			classLen = d.Classification.Len()
			continue
		}
		if d.Classification.Len() != classLen {
			return newError(InvalidArgument, "classification vectors must share one length")
		}
	}
	return nil
}

func finiteVec3(v Vec3) bool {
	return finiteFloat(v.X) && finiteFloat(v.Y) && finiteFloat(v.Z)
}

func finiteFloat(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func buildCostMatrix(distanceType DistanceType, tracks []TrackedObject, detectionIdx []int, detections []TrackedObject) ([][]float64, error) {
	cost := make([][]float64, len(tracks))
	for i, trk := range tracks {
		row := make([]float64, len(detectionIdx))
		for j, di := range detectionIdx {
			d, err := Distance(distanceType, trk, detections[di])
			if err != nil {
				return nil, err
			}
			row[j] = d
		}
		cost[i] = row
	}
	return cost, nil
}

// splitByScore partitions detections' indices by top-1 classification
// score at scoreThreshold: high (>= threshold) and low (< threshold). A
// detection with no classification vector is treated as maximally
// confident (score 1.0).
func splitByScore(detections []TrackedObject, scoreThreshold float64) (high, low []int) {
	for i, d := range detections {
		if topScore(d) >= scoreThreshold {
			high = append(high, i)
		} else {
			low = append(low, i)
		}
	}
	return high, low
}

func topScore(object TrackedObject) float64 {
	if object.Classification == nil {
		return 1.0
	}
	best := 0.0
	for i := 0; i < object.Classification.Len(); i++ {
		if v := object.Classification.AtVec(i); v > best {
			best = v
		}
	}
	return best
}

func filterUnassignedTracks(tracks []TrackedObject, assigned map[Id]bool) []TrackedObject {
	out := make([]TrackedObject, 0, len(tracks))
	for _, trk := range tracks {
		if !assigned[trk.Id] {
			out = append(out, trk)
		}
	}
	return out
}

func filterUnassignedDetections(idx []int, assigned map[int]bool) []int {
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if !assigned[i] {
			out = append(out, i)
		}
	}
	return out
}
