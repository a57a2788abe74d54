package sim

import (
	"errors"
	"fmt"
	"math"
)

// Sample is one time-stamped point of a flight. Velocity rides along so the
// renderer can draw a vector overlay and the playback can interpolate it.
type Sample struct {
	T   float64
	Pos Vec2
	Vel Vec2
}

// FlightStats summarises a completed flight for the overlay and the run table.
type FlightStats struct {
	FlightTime  float64       // s, equals the last sample's T
	Distance    float64       // m downrange at landing or stop
	MaxHeight   float64       // m, highest point of the whole path
	Apex        Vec2          // where the maximum height occurred
	TimeToApex  float64       // s
	LaunchSpeed float64       // m/s, zero for a shot that never flew
	ImpactSpeed float64       // m/s at landing; zero in a bunker
	Collision   CollisionKind // what ended the flight early, if anything
}

// Flight is the complete precomputed trajectory of one shot: samples with
// strictly increasing timestamps, first at T=0 over the tee, last at the
// landing or stop event.
type Flight struct {
	Samples []Sample
	Stats   FlightStats
}

// ErrFlightTooLong reports a solve that exceeded MaxFlightTime of simulated
// time. Hitting it means the inputs were pathological (near-zero gravity, or
// drag tuned to hover); it is never expected for slider-range parameters.
var ErrFlightTooLong = errors.New("flight exceeds simulation time cap")

// Solve computes the full flight for one shot. It is pure and deterministic:
// the same inputs always produce the same samples, so a flight can be solved
// once and replayed any number of times.
//
// The closed-form kinematic solution only holds under constant acceleration
// and cannot express mid-flight collision tests, so the analytical path is
// taken exactly when air resistance is off and the course is empty; drag or
// any obstacle forces fixed-step integration. step ≤ 0 selects
// DefaultSampleStep; in the numerical path it is also the integration step.
func Solve(p ShotParams, course []Obstacle, step float64) (Flight, error) {
	if err := p.Validate(); err != nil {
		return Flight{}, fmt.Errorf("shot rejected: %w", err)
	}
	if !(step > 0) {
		step = DefaultSampleStep
	}

	v0 := p.launchVelocity()

	// A shot with no speed, or no upward component from ground level, never
	// leaves the tee. Defined behaviour, not an error.
	if p.Speed == 0 || (v0.Y <= 0 && p.StartHeight == 0) {
		return restingFlight(p), nil
	}

	if !p.AirResistance && len(course) == 0 {
		return solveAnalytic(p, v0, step)
	}
	return solveNumeric(p, v0, course, step)
}

// restingFlight is the degenerate single-sample result: the ball sits at the
// tee, all flight figures zero except the height it already has.
func restingFlight(p ShotParams) Flight {
	at := Vec2{X: 0, Y: p.StartHeight}
	return Flight{
		Samples: []Sample{{T: 0, Pos: at}},
		Stats:   FlightStats{MaxHeight: p.StartHeight, Apex: at},
	}
}

// solveAnalytic evaluates the closed-form constant-gravity solution.
//
//	y(t) = y0 + v0y·t − ½g·t²      x(t) = v0x·t
//	flightTime = (v0y + √(v0y² + 2·g·y0)) / g   (positive root, handles y0 > 0)
//	apex at t = v0y/g, height y0 + v0y²/(2g)    (when v0y > 0)
//
// Samples are emitted on a fixed grid, then one exact landing sample is
// appended so the final point is at y = 0 even when flightTime is not a
// multiple of the step.
func solveAnalytic(p ShotParams, v0 Vec2, step float64) (Flight, error) {
	g := p.Gravity
	y0 := p.StartHeight

	flightTime := (v0.Y + math.Sqrt(v0.Y*v0.Y+2*g*y0)) / g
	if flightTime > MaxFlightTime {
		return Flight{}, fmt.Errorf("%w: ideal flight of %.3gs", ErrFlightTooLong, flightTime)
	}

	timeToApex := 0.0
	maxHeight := y0
	apex := Vec2{X: 0, Y: y0}
	if v0.Y > 0 {
		timeToApex = v0.Y / g
		maxHeight = y0 + v0.Y*v0.Y/(2*g)
		apex = Vec2{X: v0.X * timeToApex, Y: maxHeight}
	}

	samples := make([]Sample, 0, int(flightTime/step)+2)
	for i := 0; ; i++ {
		t := float64(i) * step
		if t >= flightTime {
			break
		}
		samples = append(samples, Sample{
			T:   t,
			Pos: Vec2{X: v0.X * t, Y: y0 + v0.Y*t - 0.5*g*t*t},
			Vel: Vec2{X: v0.X, Y: v0.Y - g*t},
		})
	}

	impactVel := Vec2{X: v0.X, Y: v0.Y - g*flightTime}
	landing := Sample{
		T:   flightTime,
		Pos: Vec2{X: v0.X * flightTime, Y: 0},
		Vel: impactVel,
	}
	samples = append(samples, landing)

	return Flight{
		Samples: samples,
		Stats: FlightStats{
			FlightTime:  flightTime,
			Distance:    landing.Pos.X,
			MaxHeight:   maxHeight,
			Apex:        apex,
			TimeToApex:  timeToApex,
			LaunchSpeed: p.Speed,
			ImpactSpeed: impactVel.Len(),
		},
	}, nil
}

// solveNumeric integrates the flight with fixed-step Euler, testing barriers
// every step and interpolating the exact landing when the path crosses the
// ground. With drag enabled the force is quadratic in speed:
//
//	F = -k·v⃗·|v⃗|,  k = ½·ρ·A·c_d,  a = F/m − (0, g)
//
// With drag off (obstacles only) the acceleration is pure gravity, so the
// stepped path tracks the closed form to within the step error.
func solveNumeric(p ShotParams, v0 Vec2, course []Obstacle, dt float64) (Flight, error) {
	pos := Vec2{X: 0, Y: p.StartHeight}
	vel := v0
	t := 0.0

	k := 0.0
	if p.AirResistance {
		k = p.dragFactor()
	}

	maxHeight := pos.Y
	apex := pos
	timeToApex := 0.0

	samples := make([]Sample, 0, 256)
	samples = append(samples, Sample{T: 0, Pos: pos, Vel: vel})

	maxSteps := int(MaxFlightTime/dt) + 1
	for i := 0; i < maxSteps; i++ {
		prev := Sample{T: t, Pos: pos, Vel: vel}

		acc := Vec2{Y: -p.Gravity}
		if k > 0 {
			acc = acc.Sub(vel.Scale(k * vel.Len() / p.Mass))
		}

		vel = vel.Add(acc.Scale(dt))
		pos = pos.Add(vel.Scale(dt))
		t += dt

		if !finite(vel) || !finite(pos) {
			return Flight{}, fmt.Errorf("integration diverged at t=%.3gs", t)
		}

		if pos.Y > maxHeight {
			maxHeight = pos.Y
			apex = pos
			timeToApex = t
		}

		// Barrier test before the ground test: a wall stops the ball where it
		// is, without interpolating back to the wall face. The coarse stop is
		// part of the fixed-step model.
		if _, ok := barrierHit(course, pos); ok {
			samples = append(samples, Sample{T: t, Pos: pos, Vel: vel})
			return Flight{
				Samples: samples,
				Stats: FlightStats{
					FlightTime:  t,
					Distance:    pos.X,
					MaxHeight:   maxHeight,
					Apex:        apex,
					TimeToApex:  timeToApex,
					LaunchSpeed: p.Speed,
					ImpactSpeed: vel.Len(),
					Collision:   CollisionBarrier,
				},
			}, nil
		}

		if pos.Y <= 0 {
			// A flight that ends inside the very first step never shows up on
			// the sample grid at all; it collapses to the resting result.
			if prev.Pos.Y == 0 {
				return restingFlight(p), nil
			}
			// The ball crossed the ground inside this step. Interpolate the
			// crossing fraction from the heights, then rewind the step's
			// acceleration contribution to the same fraction for the impact
			// velocity.
			f := prev.Pos.Y / (prev.Pos.Y - pos.Y)
			landT := prev.T + dt*f
			landX := Lerp(prev.Pos.X, pos.X, f)
			impactVel := prev.Vel.Add(acc.Scale(dt * f))

			impactSpeed := impactVel.Len()
			collision := CollisionNone
			if bunkerAt(course, landX) {
				impactSpeed = 0
				collision = CollisionBunker
			}

			samples = append(samples, Sample{
				T:   landT,
				Pos: Vec2{X: landX, Y: 0},
				Vel: impactVel,
			})
			return Flight{
				Samples: samples,
				Stats: FlightStats{
					FlightTime:  landT,
					Distance:    landX,
					MaxHeight:   maxHeight,
					Apex:        apex,
					TimeToApex:  timeToApex,
					LaunchSpeed: p.Speed,
					ImpactSpeed: impactSpeed,
					Collision:   collision,
				},
			}, nil
		}

		samples = append(samples, Sample{T: t, Pos: pos, Vel: vel})
	}

	return Flight{}, fmt.Errorf("%w: no landing within %.0fs", ErrFlightTooLong, MaxFlightTime)
}

func finite(v Vec2) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// IdealArc returns the drag-free flight path as a bare polyline for the aiming
// preview drawn before launch. Obstacles and drag are ignored by definition
// and no timestamps are kept; the preview is decoration, not a solve.
func IdealArc(p ShotParams, step float64) []Vec2 {
	if p.Validate() != nil {
		return nil
	}
	if !(step > 0) {
		step = DefaultSampleStep
	}

	v0 := p.launchVelocity()
	if p.Speed == 0 || (v0.Y <= 0 && p.StartHeight == 0) {
		return []Vec2{{X: 0, Y: p.StartHeight}}
	}

	g := p.Gravity
	y0 := p.StartHeight
	flightTime := (v0.Y + math.Sqrt(v0.Y*v0.Y+2*g*y0)) / g
	if flightTime > MaxFlightTime {
		flightTime = MaxFlightTime
	}

	pts := make([]Vec2, 0, int(flightTime/step)+2)
	for i := 0; ; i++ {
		t := float64(i) * step
		if t >= flightTime {
			break
		}
		pts = append(pts, Vec2{X: v0.X * t, Y: y0 + v0.Y*t - 0.5*g*t*t})
	}
	pts = append(pts, Vec2{X: v0.X * flightTime, Y: y0 + v0.Y*flightTime - 0.5*g*flightTime*flightTime})
	return pts
}
