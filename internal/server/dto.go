package server

import (
	. "DrivingRange/internal/sim"
)

type shotParamsDTO struct {
	Angle  float64 `json:"angle"`
	Speed  float64 `json:"speed"`
	Grav   float64 `json:"gravity"`
	Mass   float64 `json:"mass"`
	Air    bool    `json:"air"`
	Drag   float64 `json:"drag"`
	Height float64 `json:"height"`
}

// paramsPatchDTO is the inbound parameter edit: only the fields the client
// sends are applied, everything else keeps its value.
type paramsPatchDTO struct {
	Angle  *float64 `json:"angle"`
	Speed  *float64 `json:"speed"`
	Grav   *float64 `json:"gravity"`
	Mass   *float64 `json:"mass"`
	Air    *bool    `json:"air"`
	Drag   *float64 `json:"drag"`
	Height *float64 `json:"height"`
}

type obstacleDTO struct {
	Kind   string  `json:"kind"` // "barrier" or "bunker"
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
	Height float64 `json:"height,omitempty"` // barrier only
}

type sampleDTO struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
	T  float64 `json:"t"`
}

type statsDTO struct {
	FlightTime  float64 `json:"flight_time"`
	Distance    float64 `json:"distance"`
	MaxHeight   float64 `json:"max_height"`
	ApexX       float64 `json:"apex_x"`
	TimeToApex  float64 `json:"time_to_apex"`
	LaunchSpeed float64 `json:"launch_speed"`
	ImpactSpeed float64 `json:"impact_speed"`
	Collision   string  `json:"collision,omitempty"`
}

// stateMsg is the periodic per-client push while connected. The path itself
// travels once in a flightMsg; state only carries the cursor into it.
type stateMsg struct {
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Elapsed    float64   `json:"elapsed"`
	TimeFactor float64   `json:"time_factor"`
	Ball       sampleDTO `json:"ball"`
	PathLen    int       `json:"path_len"`
	Viewers    int       `json:"viewers"`
}

// flightMsg carries a freshly solved trajectory, pushed once per launch and to
// late joiners while a run is still on screen.
type flightMsg struct {
	RunID   string        `json:"run_id"`
	Params  shotParamsDTO `json:"params"`
	Samples []sampleDTO   `json:"samples"`
	Stats   statsDTO      `json:"stats"`
}

// helloMsg seeds a new connection with the shared session state.
type helloMsg struct {
	SessionID string        `json:"session_id"`
	Params    shotParamsDTO `json:"params"`
	Course    []obstacleDTO `json:"course"`
	Runs      []RunRecord   `json:"runs"`
	Limits    limitsDTO     `json:"limits"`
}

// limitsDTO tells the client where to pin its sliders.
type limitsDTO struct {
	MaxAngle    float64 `json:"max_angle"`
	MaxSpeed    float64 `json:"max_speed"`
	MinGravity  float64 `json:"min_gravity"`
	MaxGravity  float64 `json:"max_gravity"`
	MinMass     float64 `json:"min_mass"`
	MaxMass     float64 `json:"max_mass"`
	MaxDrag     float64 `json:"max_drag"`
	MaxHeight   float64 `json:"max_height"`
	SlowFactor  float64 `json:"slow_factor"`
	MaxViewers  int     `json:"max_viewers"`
	RunLogDepth int     `json:"run_log_depth"`
}

type timeFactorDTO struct {
	Factor float64 `json:"factor"`
}

type errorDTO struct {
	Message string `json:"message"`
}

/* ---------------------------- Conversions ---------------------------- */

func toParamsDTO(p ShotParams) shotParamsDTO {
	return shotParamsDTO{
		Angle:  p.AngleDeg,
		Speed:  p.Speed,
		Grav:   p.Gravity,
		Mass:   p.Mass,
		Air:    p.AirResistance,
		Drag:   p.DragCoeff,
		Height: p.StartHeight,
	}
}

func (d paramsPatchDTO) apply(base ShotParams) ShotParams {
	if d.Angle != nil {
		base.AngleDeg = *d.Angle
	}
	if d.Speed != nil {
		base.Speed = *d.Speed
	}
	if d.Grav != nil {
		base.Gravity = *d.Grav
	}
	if d.Mass != nil {
		base.Mass = *d.Mass
	}
	if d.Air != nil {
		base.AirResistance = *d.Air
	}
	if d.Drag != nil {
		base.DragCoeff = *d.Drag
	}
	if d.Height != nil {
		base.StartHeight = *d.Height
	}
	return SanitizeShotParams(base)
}

// toCourse converts wire obstacles, dropping entries with an unknown kind or
// a non-positive width rather than failing the whole list.
func toCourse(dtos []obstacleDTO) []Obstacle {
	var course []Obstacle
	for _, d := range dtos {
		if !(d.Width > 0) {
			continue
		}
		switch d.Kind {
		case string(CollisionBarrier):
			if d.Height > 0 {
				course = append(course, Barrier{X: d.X, Width: d.Width, Height: d.Height})
			}
		case string(CollisionBunker):
			course = append(course, Bunker{X: d.X, Width: d.Width})
		}
	}
	return course
}

func fromCourse(course []Obstacle) []obstacleDTO {
	dtos := make([]obstacleDTO, 0, len(course))
	for _, ob := range course {
		switch o := ob.(type) {
		case Barrier:
			dtos = append(dtos, obstacleDTO{Kind: string(CollisionBarrier), X: o.X, Width: o.Width, Height: o.Height})
		case Bunker:
			dtos = append(dtos, obstacleDTO{Kind: string(CollisionBunker), X: o.X, Width: o.Width})
		}
	}
	return dtos
}

func toSampleDTO(s Sample) sampleDTO {
	return sampleDTO{X: s.Pos.X, Y: s.Pos.Y, VX: s.Vel.X, VY: s.Vel.Y, T: s.T}
}

func toSampleDTOs(samples []Sample) []sampleDTO {
	out := make([]sampleDTO, len(samples))
	for i, s := range samples {
		out[i] = toSampleDTO(s)
	}
	return out
}

func toStatsDTO(st FlightStats) statsDTO {
	return statsDTO{
		FlightTime:  st.FlightTime,
		Distance:    st.Distance,
		MaxHeight:   st.MaxHeight,
		ApexX:       st.Apex.X,
		TimeToApex:  st.TimeToApex,
		LaunchSpeed: st.LaunchSpeed,
		ImpactSpeed: st.ImpactSpeed,
		Collision:   string(st.Collision),
	}
}

func limits() limitsDTO {
	return limitsDTO{
		MaxAngle:    MaxAngleDeg,
		MaxSpeed:    MaxLaunchSpeed,
		MinGravity:  MinGravity,
		MaxGravity:  MaxGravity,
		MinMass:     MinMass,
		MaxMass:     MaxMass,
		MaxDrag:     MaxDragCoeff,
		MaxHeight:   MaxStartHeight,
		SlowFactor:  TimeFactorSlow,
		MaxViewers:  MaxViewers,
		RunLogDepth: RunLogDepth,
	}
}
