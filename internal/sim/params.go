package sim

import (
	"fmt"
	"math"
)

// ShotParams describes one launch. A value is immutable for the duration of a
// solve; the solver never writes back into it.
type ShotParams struct {
	AngleDeg      float64 // launch angle above the horizon, degrees, 0..90
	Speed         float64 // launch speed, m/s, ≥ 0
	Gravity       float64 // gravitational acceleration, m/s², > 0
	Mass          float64 // ball mass, kg, > 0
	AirResistance bool    // selects the numerical drag model
	DragCoeff     float64 // dimensionless drag coefficient, used only with AirResistance
	StartHeight   float64 // tee height above the ground, m, ≥ 0
}

// DefaultShotParams returns the slider positions a fresh session starts with.
func DefaultShotParams() ShotParams {
	return ShotParams{
		AngleDeg:      45,
		Speed:         40,
		Gravity:       9.8,
		Mass:          0.0459,
		AirResistance: false,
		DragCoeff:     0.3,
		StartHeight:   0,
	}
}

// Validate rejects parameters outside their documented domain. The solver
// calls this first and fails fast rather than clamping, so an out-of-range
// value coming from upstream code surfaces as an error instead of a quietly
// wrong trajectory. Comparisons are written so NaN fails them too.
func (p ShotParams) Validate() error {
	if !(p.AngleDeg >= 0 && p.AngleDeg <= MaxAngleDeg) {
		return fmt.Errorf("angle %v° outside [0, %v]", p.AngleDeg, MaxAngleDeg)
	}
	if !(p.Speed >= 0) || math.IsInf(p.Speed, 0) {
		return fmt.Errorf("launch speed %v m/s must be finite and ≥ 0", p.Speed)
	}
	if !(p.Gravity > 0) || math.IsInf(p.Gravity, 0) {
		return fmt.Errorf("gravity %v m/s² must be finite and > 0", p.Gravity)
	}
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return fmt.Errorf("mass %v kg must be finite and > 0", p.Mass)
	}
	if !(p.DragCoeff >= 0) || math.IsInf(p.DragCoeff, 0) {
		return fmt.Errorf("drag coefficient %v must be finite and ≥ 0", p.DragCoeff)
	}
	if !(p.StartHeight >= 0) || math.IsInf(p.StartHeight, 0) {
		return fmt.Errorf("start height %v m must be finite and ≥ 0", p.StartHeight)
	}
	return nil
}

// SanitizeShotParams clamps raw slider/JSON input into the supported domain.
// This is the boundary counterpart of Validate: the shell sanitizes what users
// send, the solver still rejects anything that slips through. Non-finite
// values fall back to the defaults.
func SanitizeShotParams(p ShotParams) ShotParams {
	defaults := DefaultShotParams()

	if !(p.AngleDeg >= 0 && p.AngleDeg <= MaxAngleDeg) {
		if math.IsNaN(p.AngleDeg) {
			p.AngleDeg = defaults.AngleDeg
		} else {
			p.AngleDeg = Clamp(p.AngleDeg, 0, MaxAngleDeg)
		}
	}
	if !(p.Speed >= 0 && p.Speed <= MaxLaunchSpeed) {
		if math.IsNaN(p.Speed) || math.IsInf(p.Speed, 0) {
			p.Speed = defaults.Speed
		} else {
			p.Speed = Clamp(p.Speed, 0, MaxLaunchSpeed)
		}
	}
	if !(p.Gravity >= MinGravity && p.Gravity <= MaxGravity) {
		if math.IsNaN(p.Gravity) || math.IsInf(p.Gravity, 0) {
			p.Gravity = defaults.Gravity
		} else {
			p.Gravity = Clamp(p.Gravity, MinGravity, MaxGravity)
		}
	}
	if !(p.Mass >= MinMass && p.Mass <= MaxMass) {
		if math.IsNaN(p.Mass) || math.IsInf(p.Mass, 0) {
			p.Mass = defaults.Mass
		} else {
			p.Mass = Clamp(p.Mass, MinMass, MaxMass)
		}
	}
	if !(p.DragCoeff >= 0 && p.DragCoeff <= MaxDragCoeff) {
		if math.IsNaN(p.DragCoeff) || math.IsInf(p.DragCoeff, 0) {
			p.DragCoeff = defaults.DragCoeff
		} else {
			p.DragCoeff = Clamp(p.DragCoeff, 0, MaxDragCoeff)
		}
	}
	if !(p.StartHeight >= 0 && p.StartHeight <= MaxStartHeight) {
		if math.IsNaN(p.StartHeight) || math.IsInf(p.StartHeight, 0) {
			p.StartHeight = defaults.StartHeight
		} else {
			p.StartHeight = Clamp(p.StartHeight, 0, MaxStartHeight)
		}
	}
	return p
}

// launchVelocity decomposes the launch speed along the launch angle.
func (p ShotParams) launchVelocity() Vec2 {
	rad := p.AngleDeg * math.Pi / 180
	return Vec2{X: p.Speed * math.Cos(rad), Y: p.Speed * math.Sin(rad)}
}

// dragFactor returns k in F_drag = -k·v·|v|, with k = ½·ρ·A·c_d.
func (p ShotParams) dragFactor() float64 {
	return 0.5 * AirDensity * BallCrossSection * p.DragCoeff
}
