// Package geometry provides basic geometric types used throughout the application.
package geometry

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Quad represents an axis-aligned or rotated text bounding quadrilateral.
// Points are stored in consistent winding order:
// top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point2D

// QuadFromRect builds a Quad from two opposite rectangle corners.
func QuadFromRect(x1, y1, x2, y2 float64) Quad {
	return Quad{
		{X: x1, Y: y1},
		{X: x2, Y: y1},
		{X: x2, Y: y2},
		{X: x1, Y: y2},
	}
}

// Center returns the centroid of the quadrilateral.
func (q Quad) Center() Point2D {
	var sumX, sumY float64
	for _, p := range q {
		sumX += p.X
		sumY += p.Y
	}
	return Point2D{X: sumX / 4, Y: sumY / 4}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}
