package sim

import "math"

const (
	AirDensity   = 1.225  // kg/m³ at sea level
	BallDiameter = 0.0427 // m, regulation golf ball

	// BallCrossSection is the frontal area the drag force acts on.
	BallCrossSection = math.Pi * (BallDiameter / 2) * (BallDiameter / 2)

	// DefaultSampleStep is the spacing between trajectory samples and the
	// integration step of the numerical path (one 60 Hz frame).
	DefaultSampleStep = 0.016

	// MaxFlightTime bounds every solve. A shot that stays up longer than this
	// is not a shot the range can display; both solver paths report it as an
	// error instead of looping or allocating without bound.
	MaxFlightTime = 600.0

	MaxAngleDeg    = 90.0
	MaxLaunchSpeed = 120.0 // m/s, well past any real club head
	MinGravity     = 0.5   // m/s², low enough for moon shots
	MaxGravity     = 30.0
	MinMass        = 0.005 // kg
	MaxMass        = 2.0
	MaxDragCoeff   = 1.5
	MaxStartHeight = 60.0 // m

	TimeFactorNormal = 1.0
	TimeFactorSlow   = 0.25
	MinTimeFactor    = 0.05
	MaxTimeFactor    = 4.0
)
