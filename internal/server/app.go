package server

import (
	"log"
	"time"

	. "DrivingRange/internal/sim"
)

type AppConfig struct {
	RangeConfigPath string
	Overrides       ShotOverrides
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		RangeConfigPath: "configs/range.json",
	}
}

func resolveRange(cfg AppConfig) (ShotParams, []Obstacle) {
	params := DefaultShotParams()
	loaded, course, err := loadRangeConfig(cfg.RangeConfigPath, params)
	if err != nil {
		log.Printf("range config: %v (using defaults)", err)
	} else {
		params = loaded
	}
	params = applyShotOverrides(params, cfg.Overrides)
	return SanitizeShotParams(params), course
}

func StartApp(addr string, cfg AppConfig) {
	params, course := resolveRange(cfg)
	hub := NewHub(params, course)

	// Periodic cleanup of sessions nobody is watching (every 60 seconds)
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			hub.CleanupIdleSessions()
		}
	}()

	log.Printf("starting driving range on %s (angle %.1f°, speed %.1f m/s, gravity %.2f, %d obstacles)\n",
		addr, params.AngleDeg, params.Speed, params.Gravity, len(course))
	startServer(hub, addr)
}
