package model

import "math"

// Point is a 2D pixel coordinate on the screenshot.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned bounding box in screenshot pixel space.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the geometric center of the box.
func (b Box) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Observation is one raw OCR reading for a field region: the recognized
// text, where the engine saw it, and how confident the engine was.
// A field may carry multiple observations, one per OCR pass. Observations
// are immutable once handed to the resolver.
type Observation struct {
	Text       string  `json:"text"`
	Box        *Box    `json:"box,omitempty"` // nil when the engine reports no location
	Confidence float64 `json:"confidence"`    // 0.0-1.0
}
