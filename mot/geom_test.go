package mot

import (
	"image"
	"math"
	"testing"
)

const eps = 0.00001

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correctAnswer := 181.57367
	answer := euclideanDistance(p1, p2)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("wrong answer: %v, correct answer: %v", answer, correctAnswer)
	}
}

func TestEuclideanDistance3(t *testing.T) {
	a := Vec3{X: 1, Y: 1, Z: 0}
	b := Vec3{X: 4, Y: 5, Z: 0}
	correctAnswer := 5.0
	answer := euclideanDistance3(a, b)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("wrong answer: %v, correct answer: %v", answer, correctAnswer)
	}
}

func TestNewRectFrom(t *testing.T) {
	r := NewRectFrom(image.Rect(10, 20, 40, 60))
	if r.X != 10 || r.Y != 20 || r.Width != 30 || r.Height != 40 {
		t.Errorf("unexpected rectangle: %+v", r)
	}
}
