package sim

import (
	"errors"
	"time"
)

// PlaybackStatus is the lifecycle state of one replay.
type PlaybackStatus string

const (
	StatusIdle     PlaybackStatus = "idle"
	StatusFlying   PlaybackStatus = "flying"
	StatusPaused   PlaybackStatus = "paused"
	StatusFinished PlaybackStatus = "finished"
)

// ErrPlaybackActive reports a launch attempted while a previous run is still
// flying or paused. The caller decides whether to surface or ignore it.
var ErrPlaybackActive = errors.New("playback already in progress")

// Playback replays a precomputed Flight against a wall clock. Each Tick turns
// the wall-time delta since the previous tick, scaled by the time factor, into
// simulated time, then resolves the ball position by interpolating between the
// bracketing samples. The flight itself is never recomputed during replay.
//
// Playback does no locking; the owner serialises Tick against the command
// methods.
type Playback struct {
	status PlaybackStatus
	flight Flight

	rest       Vec2 // ball position while idle
	elapsed    float64
	timeFactor float64
	lastWall   time.Time

	// visible counts the samples with T <= elapsed. It only moves forward
	// during a run, so each tick resumes the scan where the last one stopped.
	visible int
}

// Frame is one rendered view of a playback: the status, the path prefix the
// renderer may draw, and the interpolated ball sample. Visible aliases the
// flight's sample slice and must not be mutated.
type Frame struct {
	Status     PlaybackStatus
	Elapsed    float64
	TimeFactor float64
	Ball       Sample
	Visible    []Sample
}

// NewPlayback returns an idle playback with the ball resting at the origin.
func NewPlayback() *Playback {
	return &Playback{status: StatusIdle, timeFactor: TimeFactorNormal}
}

// SetRest moves the idle resting position, typically (0, startHeight) after a
// parameter change. It does not interrupt a run in progress.
func (pb *Playback) SetRest(p Vec2) {
	pb.rest = p
}

// Status returns the current lifecycle state.
func (pb *Playback) Status() PlaybackStatus { return pb.status }

// Elapsed returns the simulated seconds consumed so far.
func (pb *Playback) Elapsed() float64 { return pb.elapsed }

// TimeFactor returns the active wall-to-simulated time scale.
func (pb *Playback) TimeFactor() float64 { return pb.timeFactor }

// Flight returns the trajectory being replayed. Meaningful only after a
// launch; reset clears it.
func (pb *Playback) Flight() Flight { return pb.flight }

// Launch starts replaying f from T=0 at wall time now. It fails with
// ErrPlaybackActive while a run is flying or paused; relaunching from idle or
// finished discards the previous run.
func (pb *Playback) Launch(f Flight, now time.Time) error {
	if pb.status == StatusFlying || pb.status == StatusPaused {
		return ErrPlaybackActive
	}
	pb.flight = f
	pb.elapsed = 0
	pb.visible = prefixLen(f.Samples, 0)
	pb.lastWall = now
	pb.status = StatusFlying
	return nil
}

// Pause freezes simulated time. It reports whether the playback was flying.
func (pb *Playback) Pause() bool {
	if pb.status != StatusFlying {
		return false
	}
	pb.status = StatusPaused
	return true
}

// Resume continues a paused run. The wall reference is rebased to now, so the
// paused span contributes no simulated time.
func (pb *Playback) Resume(now time.Time) bool {
	if pb.status != StatusPaused {
		return false
	}
	pb.lastWall = now
	pb.status = StatusFlying
	return true
}

// Reset abandons the current run and returns to idle with the ball at the
// resting position. The time factor survives, it is a venue setting rather
// than per-run state.
func (pb *Playback) Reset() {
	pb.status = StatusIdle
	pb.flight = Flight{}
	pb.elapsed = 0
	pb.visible = 0
}

// SetTimeFactor changes the wall-to-simulated scale, clamped to the allowed
// band. The new factor applies from the next tick; simulated time already
// accumulated is never rescaled.
func (pb *Playback) SetTimeFactor(f float64) {
	if !(f > 0) {
		return
	}
	pb.timeFactor = Clamp(f, MinTimeFactor, MaxTimeFactor)
}

// Tick advances the replay to wall time now. Outside the flying state it is a
// no-op, so callers may drive it unconditionally from a frame loop.
func (pb *Playback) Tick(now time.Time) {
	if pb.status != StatusFlying {
		return
	}

	delta := now.Sub(pb.lastWall).Seconds()
	pb.lastWall = now
	if delta < 0 {
		delta = 0
	}
	pb.elapsed += delta * pb.timeFactor

	total := pb.flight.Stats.FlightTime
	if pb.elapsed >= total {
		pb.elapsed = total
		pb.visible = len(pb.flight.Samples)
		pb.status = StatusFinished
		return
	}

	for pb.visible < len(pb.flight.Samples) && pb.flight.Samples[pb.visible].T <= pb.elapsed {
		pb.visible++
	}
}

// Frame snapshots the playback for rendering.
func (pb *Playback) Frame() Frame {
	fr := Frame{
		Status:     pb.status,
		Elapsed:    pb.elapsed,
		TimeFactor: pb.timeFactor,
	}
	if pb.status == StatusIdle || len(pb.flight.Samples) == 0 {
		fr.Ball = Sample{Pos: pb.rest}
		return fr
	}
	fr.Visible = pb.flight.Samples[:pb.visible]
	fr.Ball = pb.ballAt(pb.elapsed)
	return fr
}

// ballAt resolves the ball sample at simulated time t by interpolating
// between the bracketing precomputed samples.
func (pb *Playback) ballAt(t float64) Sample {
	s := pb.flight.Samples
	i := pb.visible
	if i <= 0 {
		i = 1
	}
	if i >= len(s) {
		return s[len(s)-1]
	}
	p1, p2 := s[i-1], s[i]
	f := (t - p1.T) / (p2.T - p1.T)
	return Sample{
		T:   t,
		Pos: LerpVec(p1.Pos, p2.Pos, f),
		Vel: LerpVec(p1.Vel, p2.Vel, f),
	}
}

// prefixLen counts the leading samples with T <= t.
func prefixLen(s []Sample, t float64) int {
	n := 0
	for n < len(s) && s[n].T <= t {
		n++
	}
	return n
}
