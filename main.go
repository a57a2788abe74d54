package main

import (
	"flag"
	"math"

	"DrivingRange/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	rangeConfigPath := flag.String("range-config", "configs/range.json", "path to range setup JSON")
	angle := flag.Float64("angle", math.NaN(), "override default launch angle in degrees")
	speed := flag.Float64("speed", math.NaN(), "override default launch speed in m/s")
	gravity := flag.Float64("gravity", math.NaN(), "override gravitational acceleration in m/s^2")
	mass := flag.Float64("mass", math.NaN(), "override projectile mass in kg")
	air := flag.String("air", "", "override air resistance (on/off)")
	drag := flag.Float64("drag", math.NaN(), "override drag coefficient")
	height := flag.Float64("height", math.NaN(), "override launch height in meters")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.RangeConfigPath = *rangeConfigPath

	var overrides server.ShotOverrides

	if !math.IsNaN(*angle) {
		val := *angle
		overrides.Angle = &val
	}
	if !math.IsNaN(*speed) {
		val := *speed
		overrides.Speed = &val
	}
	if !math.IsNaN(*gravity) {
		val := *gravity
		overrides.Gravity = &val
	}
	if !math.IsNaN(*mass) {
		val := *mass
		overrides.Mass = &val
	}
	if *air == "on" || *air == "off" {
		val := *air == "on"
		overrides.Air = &val
	}
	if !math.IsNaN(*drag) {
		val := *drag
		overrides.Drag = &val
	}
	if !math.IsNaN(*height) {
		val := *height
		overrides.Height = &val
	}

	cfg.Overrides = overrides

	server.StartApp(*addr, cfg)
}
