// Package model contains domain models passed between layers.
package model

import "math"

// Vec2 is a planar position in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance to o.
func (v Vec2) Dist(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Finite reports whether both components are finite numbers.
func (v Vec2) Finite() bool {
	return finite(v.X) && finite(v.Y)
}

// Vec3 is a spatial vector in world units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Dist returns the Euclidean distance to o.
func (v Vec3) Dist(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Finite reports whether all components are finite numbers.
func (v Vec3) Finite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Trajectory describes a bullet path reported by a client.
type Trajectory struct {
	StartX float64 `json:"start_x"`
	StartY float64 `json:"start_y"`
	EndX   float64 `json:"end_x"`
	EndY   float64 `json:"end_y"`
}

// Length returns the Euclidean distance between the trajectory endpoints.
func (t Trajectory) Length() float64 {
	dx := t.EndX - t.StartX
	dy := t.EndY - t.StartY
	return math.Sqrt(dx*dx + dy*dy)
}

// Angle returns the trajectory direction via atan2, in radians.
func (t Trajectory) Angle() float64 {
	return math.Atan2(t.EndY-t.StartY, t.EndX-t.StartX)
}

// Finite reports whether all endpoints are finite numbers.
func (t Trajectory) Finite() bool {
	return finite(t.StartX) && finite(t.StartY) && finite(t.EndX) && finite(t.EndY)
}
