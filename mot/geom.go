package mot

import (
	"image"
	"math"
)

// Rectangle is a 2-D axis-aligned bounding box, kept for interop with
// callers that still hand detections in as image-space rectangles.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRectFrom converts a stdlib image.Rectangle.
func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// Point is a 2-D point, in pixels or world metres depending on caller.
type Point struct {
	X float64
	Y float64
}

// NewPoint creates a Point.
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec3 is a 3-D vector in world metres; used for TrackedObject.Position and Size.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// NewVec3 creates a Vec3.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

func euclideanDistance3(a, b Vec3) float64 {
	return math.Sqrt(math.Pow(a.X-b.X, 2) + math.Pow(a.Y-b.Y, 2) + math.Pow(a.Z-b.Z, 2))
}

