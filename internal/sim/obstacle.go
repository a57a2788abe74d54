package sim

// CollisionKind records what, if anything, ended a flight early.
type CollisionKind string

const (
	CollisionNone    CollisionKind = ""
	CollisionBarrier CollisionKind = "barrier"
	CollisionBunker  CollisionKind = "bunker"
)

// Obstacle is a static course feature the solver tests during flight. The two
// kinds carry different fields, so they are separate types behind a shared
// interface rather than one struct with unused fields.
type Obstacle interface {
	// Span returns the horizontal extent [lo, hi] the obstacle covers.
	Span() (lo, hi float64)
}

// Barrier is a vertical wall standing on the ground. A ball inside its span at
// or below its height stops there.
type Barrier struct {
	X      float64 // centre, m downrange
	Width  float64 // m
	Height float64 // m above ground
}

func (b Barrier) Span() (float64, float64) {
	return b.X - b.Width/2, b.X + b.Width/2
}

// Blocks reports whether a ball at p has struck the barrier. Below-ground
// positions are left to the ground test, which interpolates the true landing.
func (b Barrier) Blocks(p Vec2) bool {
	lo, hi := b.Span()
	return p.X >= lo && p.X <= hi && p.Y >= 0 && p.Y <= b.Height
}

// Bunker is a sand-filled depression. It never interrupts flight; a ball whose
// landing point falls inside its span is swallowed with zero impact speed.
type Bunker struct {
	X     float64 // centre, m downrange
	Width float64 // m
}

func (b Bunker) Span() (float64, float64) {
	return b.X - b.Width/2, b.X + b.Width/2
}

// Contains reports whether downrange position x lands inside the bunker.
func (b Bunker) Contains(x float64) bool {
	lo, hi := b.Span()
	return x >= lo && x <= hi
}

func barrierHit(course []Obstacle, p Vec2) (Barrier, bool) {
	for _, ob := range course {
		if b, ok := ob.(Barrier); ok && b.Blocks(p) {
			return b, true
		}
	}
	return Barrier{}, false
}

func bunkerAt(course []Obstacle, x float64) bool {
	for _, ob := range course {
		if b, ok := ob.(Bunker); ok && b.Contains(x) {
			return true
		}
	}
	return false
}
