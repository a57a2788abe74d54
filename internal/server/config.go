package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	. "DrivingRange/internal/sim"
)

type shotConfig struct {
	Angle   *float64 `json:"angle"`
	Speed   *float64 `json:"speed"`
	Gravity *float64 `json:"gravity"`
	Mass    *float64 `json:"mass"`
	Air     *bool    `json:"air"`
	Drag    *float64 `json:"drag"`
	Height  *float64 `json:"height"`
}

type rangeConfig struct {
	Shot   *shotConfig   `json:"shot"`
	Course []obstacleDTO `json:"course"`
}

// ShotOverrides represents optional command-line overrides for the default
// launch parameters new sessions start with.
type ShotOverrides struct {
	Angle   *float64
	Speed   *float64
	Gravity *float64
	Mass    *float64
	Air     *bool
	Drag    *float64
	Height  *float64
}

func (o ShotOverrides) apply(base ShotParams) ShotParams {
	if o.Angle != nil {
		base.AngleDeg = *o.Angle
	}
	if o.Speed != nil {
		base.Speed = *o.Speed
	}
	if o.Gravity != nil {
		base.Gravity = *o.Gravity
	}
	if o.Mass != nil {
		base.Mass = *o.Mass
	}
	if o.Air != nil {
		base.AirResistance = *o.Air
	}
	if o.Drag != nil {
		base.DragCoeff = *o.Drag
	}
	if o.Height != nil {
		base.StartHeight = *o.Height
	}
	return SanitizeShotParams(base)
}

func mergeShotConfig(base ShotParams, cfg *shotConfig) ShotParams {
	if cfg == nil {
		return base
	}
	if cfg.Angle != nil {
		base.AngleDeg = *cfg.Angle
	}
	if cfg.Speed != nil {
		base.Speed = *cfg.Speed
	}
	if cfg.Gravity != nil {
		base.Gravity = *cfg.Gravity
	}
	if cfg.Mass != nil {
		base.Mass = *cfg.Mass
	}
	if cfg.Air != nil {
		base.AirResistance = *cfg.Air
	}
	if cfg.Drag != nil {
		base.DragCoeff = *cfg.Drag
	}
	if cfg.Height != nil {
		base.StartHeight = *cfg.Height
	}
	return SanitizeShotParams(base)
}

func loadRangeConfig(path string, base ShotParams) (ShotParams, []Obstacle, error) {
	if path == "" {
		return SanitizeShotParams(base), nil, nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return SanitizeShotParams(base), nil, nil
		}
		return SanitizeShotParams(base), nil, fmt.Errorf("read range config %q: %w", cleanPath, err)
	}
	var cfg rangeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SanitizeShotParams(base), nil, fmt.Errorf("parse range config %q: %w", cleanPath, err)
	}
	return mergeShotConfig(base, cfg.Shot), toCourse(cfg.Course), nil
}

func applyShotOverrides(base ShotParams, overrides ShotOverrides) ShotParams {
	return overrides.apply(base)
}
