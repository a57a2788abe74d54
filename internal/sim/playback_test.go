package sim

import (
	"math"
	"testing"
	"time"
)

// testFlight builds a hand-made flight with samples every quarter second so
// interpolation results are easy to predict: x = 100t, y = 10t.
func testFlight() Flight {
	samples := make([]Sample, 0, 5)
	for i := 0; i <= 4; i++ {
		t := float64(i) * 0.25
		samples = append(samples, Sample{
			T:   t,
			Pos: Vec2{X: 100 * t, Y: 10 * t},
			Vel: Vec2{X: 100, Y: 10},
		})
	}
	return Flight{
		Samples: samples,
		Stats:   FlightStats{FlightTime: 1.0, Distance: 100, MaxHeight: 10},
	}
}

func launchAt(t *testing.T, pb *Playback, f Flight, now time.Time) {
	t.Helper()
	if err := pb.Launch(f, now); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
}

// TestPlaybackLifecycle verifies the idle → flying → finished walk and the
// frames it produces.
func TestPlaybackLifecycle(t *testing.T) {
	pb := NewPlayback()
	pb.SetRest(Vec2{X: 0, Y: 3})

	if pb.Status() != StatusIdle {
		t.Fatalf("fresh playback status = %q, want idle", pb.Status())
	}
	fr := pb.Frame()
	if fr.Ball.Pos != (Vec2{X: 0, Y: 3}) || len(fr.Visible) != 0 {
		t.Errorf("idle frame = %+v, want resting ball and empty path", fr)
	}

	base := time.Unix(100, 0)
	launchAt(t, pb, testFlight(), base)
	if pb.Status() != StatusFlying {
		t.Fatalf("status after launch = %q, want flying", pb.Status())
	}
	fr = pb.Frame()
	if fr.Ball.Pos != (Vec2{}) || fr.Elapsed != 0 {
		t.Errorf("launch frame ball = %+v at %vs, want origin at 0s", fr.Ball.Pos, fr.Elapsed)
	}

	pb.Tick(base.Add(2 * time.Second))
	if pb.Status() != StatusFinished {
		t.Fatalf("status after overlong tick = %q, want finished", pb.Status())
	}
	fr = pb.Frame()
	if fr.Elapsed != 1.0 {
		t.Errorf("finished elapsed = %v, want clamped to 1.0", fr.Elapsed)
	}
	if fr.Ball.Pos != (Vec2{X: 100, Y: 10}) {
		t.Errorf("finished ball = %+v, want the landing sample", fr.Ball.Pos)
	}
	if len(fr.Visible) != 5 {
		t.Errorf("finished path has %d samples, want all 5", len(fr.Visible))
	}

	// Finished is terminal until the next launch or reset.
	pb.Tick(base.Add(3 * time.Second))
	if pb.Status() != StatusFinished || pb.Elapsed() != 1.0 {
		t.Errorf("tick after finish changed state: %q at %vs", pb.Status(), pb.Elapsed())
	}
}

// TestTickInterpolatesBetweenSamples verifies the bracketing interpolation and
// the visible-prefix boundary.
func TestTickInterpolatesBetweenSamples(t *testing.T) {
	pb := NewPlayback()
	base := time.Unix(100, 0)
	launchAt(t, pb, testFlight(), base)

	pb.Tick(base.Add(300 * time.Millisecond))
	fr := pb.Frame()

	if math.Abs(fr.Elapsed-0.3) > 1e-12 {
		t.Fatalf("elapsed = %v, want 0.3", fr.Elapsed)
	}
	if len(fr.Visible) != 2 {
		t.Errorf("visible prefix has %d samples at t=0.3, want 2 (t=0 and t=0.25)", len(fr.Visible))
	}
	if math.Abs(fr.Ball.Pos.X-30) > 1e-9 || math.Abs(fr.Ball.Pos.Y-3) > 1e-9 {
		t.Errorf("ball = %+v, want interpolated (30, 3)", fr.Ball.Pos)
	}
	if fr.Ball.Vel != (Vec2{X: 100, Y: 10}) {
		t.Errorf("ball velocity = %+v, want the constant sample velocity", fr.Ball.Vel)
	}
}

// TestReplayDeterminism verifies that the same synthetic clock script always
// yields the same positions, with no dependence on real time.
func TestReplayDeterminism(t *testing.T) {
	p := ShotParams{AngleDeg: 40, Speed: 35, Gravity: 9.8, Mass: 0.0459, AirResistance: true, DragCoeff: 0.3}
	f, err := Solve(p, nil, 0)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	replay := func() []Vec2 {
		pb := NewPlayback()
		now := time.Unix(500, 0)
		launchAt(t, pb, f, now)

		var track []Vec2
		for i := 0; i < 120; i++ {
			now = now.Add(16 * time.Millisecond)
			switch i {
			case 30:
				pb.Pause()
			case 40:
				pb.Resume(now)
			case 60:
				pb.SetTimeFactor(TimeFactorSlow)
			case 90:
				pb.SetTimeFactor(TimeFactorNormal)
			}
			pb.Tick(now)
			track = append(track, pb.Frame().Ball.Pos)
		}
		return track
	}

	first := replay()
	second := replay()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("replays diverge at tick %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// TestPauseFreezesResumeRebases verifies that wall time spent paused
// contributes no simulated time.
func TestPauseFreezesResumeRebases(t *testing.T) {
	pb := NewPlayback()
	base := time.Unix(100, 0)
	launchAt(t, pb, testFlight(), base)

	pb.Tick(base.Add(100 * time.Millisecond))
	if math.Abs(pb.Elapsed()-0.1) > 1e-12 {
		t.Fatalf("elapsed = %v, want 0.1", pb.Elapsed())
	}

	if !pb.Pause() {
		t.Fatalf("Pause failed while flying")
	}
	pb.Tick(base.Add(5 * time.Second))
	if pb.Elapsed() != 0.1 || pb.Status() != StatusPaused {
		t.Fatalf("paused state advanced: %vs, %q", pb.Elapsed(), pb.Status())
	}

	resumeAt := base.Add(5100 * time.Millisecond)
	if !pb.Resume(resumeAt) {
		t.Fatalf("Resume failed while paused")
	}
	pb.Tick(resumeAt.Add(100 * time.Millisecond))
	if math.Abs(pb.Elapsed()-0.2) > 1e-12 {
		t.Errorf("elapsed after resume = %v, want 0.2 (pause gap discarded)", pb.Elapsed())
	}

	// Pause only acts on a flying run, resume only on a paused one.
	if pb.Resume(resumeAt) {
		t.Errorf("Resume succeeded while flying")
	}
	pb.Reset()
	if pb.Pause() {
		t.Errorf("Pause succeeded while idle")
	}
}

// TestSlowMotionAppliesNextTick verifies the factor scales only deltas that
// arrive after the change.
func TestSlowMotionAppliesNextTick(t *testing.T) {
	pb := NewPlayback()
	base := time.Unix(100, 0)
	launchAt(t, pb, testFlight(), base)

	pb.Tick(base.Add(100 * time.Millisecond))
	pb.SetTimeFactor(TimeFactorSlow)
	pb.Tick(base.Add(200 * time.Millisecond))

	want := 0.1 + 0.1*TimeFactorSlow
	if math.Abs(pb.Elapsed()-want) > 1e-12 {
		t.Errorf("elapsed = %v, want %v (second delta scaled by %.2f)", pb.Elapsed(), want, TimeFactorSlow)
	}
}

// TestTimeFactorClamped verifies the factor band and that junk input is
// ignored.
func TestTimeFactorClamped(t *testing.T) {
	pb := NewPlayback()

	pb.SetTimeFactor(100)
	if pb.TimeFactor() != MaxTimeFactor {
		t.Errorf("factor = %v, want clamped to %v", pb.TimeFactor(), MaxTimeFactor)
	}
	pb.SetTimeFactor(1e-9)
	if pb.TimeFactor() != MinTimeFactor {
		t.Errorf("factor = %v, want clamped to %v", pb.TimeFactor(), MinTimeFactor)
	}
	pb.SetTimeFactor(1)
	for _, junk := range []float64{0, -1, math.NaN()} {
		pb.SetTimeFactor(junk)
		if pb.TimeFactor() != 1 {
			t.Errorf("factor after SetTimeFactor(%v) = %v, want unchanged 1", junk, pb.TimeFactor())
		}
	}
}

// TestLaunchRejectedWhileActive verifies relaunch rules in every state.
func TestLaunchRejectedWhileActive(t *testing.T) {
	pb := NewPlayback()
	base := time.Unix(100, 0)
	f := testFlight()
	launchAt(t, pb, f, base)

	if err := pb.Launch(f, base); err != ErrPlaybackActive {
		t.Errorf("launch while flying: err = %v, want ErrPlaybackActive", err)
	}
	pb.Pause()
	if err := pb.Launch(f, base); err != ErrPlaybackActive {
		t.Errorf("launch while paused: err = %v, want ErrPlaybackActive", err)
	}

	pb.Resume(base)
	pb.Tick(base.Add(5 * time.Second))
	if pb.Status() != StatusFinished {
		t.Fatalf("status = %q, want finished", pb.Status())
	}
	if err := pb.Launch(f, base.Add(5*time.Second)); err != nil {
		t.Errorf("relaunch after finish failed: %v", err)
	}

	pb.Reset()
	if err := pb.Launch(f, base.Add(6*time.Second)); err != nil {
		t.Errorf("launch after reset failed: %v", err)
	}
}

// TestResetRestoresRest verifies reset from mid-flight returns to the resting
// frame and keeps the slow-motion setting.
func TestResetRestoresRest(t *testing.T) {
	pb := NewPlayback()
	pb.SetRest(Vec2{X: 0, Y: 7})
	pb.SetTimeFactor(TimeFactorSlow)

	base := time.Unix(100, 0)
	launchAt(t, pb, testFlight(), base)
	pb.Tick(base.Add(400 * time.Millisecond))

	pb.Reset()
	if pb.Status() != StatusIdle || pb.Elapsed() != 0 {
		t.Fatalf("after reset: %q at %vs, want idle at 0", pb.Status(), pb.Elapsed())
	}
	fr := pb.Frame()
	if fr.Ball.Pos != (Vec2{X: 0, Y: 7}) || len(fr.Visible) != 0 {
		t.Errorf("reset frame = %+v, want resting ball and empty path", fr)
	}
	if pb.TimeFactor() != TimeFactorSlow {
		t.Errorf("reset cleared the time factor: %v", pb.TimeFactor())
	}
}

// TestBackwardsClockHolds verifies a non-monotonic wall clock cannot rewind a
// run.
func TestBackwardsClockHolds(t *testing.T) {
	pb := NewPlayback()
	base := time.Unix(100, 0)
	launchAt(t, pb, testFlight(), base)

	pb.Tick(base.Add(300 * time.Millisecond))
	before := pb.Elapsed()
	pb.Tick(base.Add(200 * time.Millisecond))
	if pb.Elapsed() != before {
		t.Errorf("elapsed moved on a backwards tick: %v -> %v", before, pb.Elapsed())
	}

	// The reference rebased to the earlier instant, so the next forward tick
	// counts from there.
	pb.Tick(base.Add(250 * time.Millisecond))
	if math.Abs(pb.Elapsed()-(before+0.05)) > 1e-12 {
		t.Errorf("elapsed = %v, want %v", pb.Elapsed(), before+0.05)
	}
}

// TestDegenerateFlightFinishesImmediately verifies a single-sample flight
// finishes on its first tick without dividing by a zero time span.
func TestDegenerateFlightFinishesImmediately(t *testing.T) {
	p := ShotParams{AngleDeg: 0, Speed: 0, Gravity: 9.8, Mass: 0.05}
	f, err := Solve(p, nil, 0)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	pb := NewPlayback()
	base := time.Unix(100, 0)
	launchAt(t, pb, f, base)
	pb.Tick(base.Add(16 * time.Millisecond))

	if pb.Status() != StatusFinished {
		t.Fatalf("status = %q, want finished", pb.Status())
	}
	fr := pb.Frame()
	if fr.Ball.Pos != (Vec2{}) || len(fr.Visible) != 1 {
		t.Errorf("frame = %+v, want the resting sample alone", fr)
	}
}
