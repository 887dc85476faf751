// Package raycast walks a ray through the voxel grid one cell boundary
// at a time (Amanatides–Woo stepping). It never mutates the world; the
// caller's callback decides what counts as a hit.
package raycast

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/CrispyFlowe/python-minecraft-clone/internal/sim/world"
)

// DefaultHitRange is the break/place reach used by the interaction
// path, in blocks along the ray.
const DefaultHitRange = 3.0

// Ray is a single traversal. Cells follow the floor convention: the
// voxel at integer coordinate p spans [p, p+1) on every axis.
type Ray struct {
	cur    world.Vec3i
	step   [3]int
	tMax   [3]float64
	tDelta [3]float64
	dist   float64
}

// New starts a traversal at origin heading along dir. The direction
// need not be normalized; a zero component means that axis is never
// crossed. A fully zero direction yields a ray that never steps.
func New(origin, dir mgl64.Vec3) *Ray {
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	r := &Ray{
		cur: world.Vec3i{
			X: int(math.Floor(origin.X())),
			Y: int(math.Floor(origin.Y())),
			Z: int(math.Floor(origin.Z())),
		},
	}
	for a := 0; a < 3; a++ {
		o, d := origin[a], dir[a]
		switch {
		case d > 0:
			r.step[a] = 1
			r.tDelta[a] = 1 / d
			r.tMax[a] = (math.Floor(o) + 1 - o) / d
		case d < 0:
			r.step[a] = -1
			r.tDelta[a] = -1 / d
			r.tMax[a] = (o - math.Floor(o)) / -d
		default:
			r.tDelta[a] = math.Inf(1)
			r.tMax[a] = math.Inf(1)
		}
	}
	return r
}

// Current returns the cell the ray is inside right now.
func (r *Ray) Current() world.Vec3i { return r.cur }

// Distance is the traveled distance along the (normalized) direction,
// updated at each boundary crossing.
func (r *Ray) Distance() float64 { return r.dist }

// Step advances exactly one voxel boundary crossing and invokes fn with
// the cell being left and the cell being entered. It returns fn's
// verdict: true means stop, the caller found its hit.
//
// When the ray crosses a corner or edge and several axes tie for the
// nearest boundary, the x axis wins over y, and y over z, so traversal
// is reproducible.
func (r *Ray) Step(fn func(current, next world.Vec3i) bool) bool {
	axis := 0
	if r.tMax[1] < r.tMax[0] {
		axis = 1
	}
	if r.tMax[2] < r.tMax[axis] {
		axis = 2
	}
	if math.IsInf(r.tMax[axis], 1) {
		// Zero direction: no boundary will ever be crossed.
		r.dist = math.Inf(1)
		return false
	}

	r.dist = r.tMax[axis]
	r.tMax[axis] += r.tDelta[axis]

	current := r.cur
	next := current
	switch axis {
	case 0:
		next.X += r.step[0]
	case 1:
		next.Y += r.step[1]
	default:
		next.Z += r.step[2]
	}
	r.cur = next
	return fn(current, next)
}

// Cast loops Step until fn signals a hit or the accumulated distance
// reaches maxRange. It reports whether a hit occurred.
func (r *Ray) Cast(maxRange float64, fn func(current, next world.Vec3i) bool) bool {
	for r.dist < maxRange {
		if r.Step(fn) {
			return true
		}
	}
	return false
}
