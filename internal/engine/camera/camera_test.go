package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestOrbitCamera_Position(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = mgl32.Vec3{1, 2, 3}
	c.Distance = 10
	c.RotationX = 0
	c.RotationY = 0

	if got := c.Position(); !near(got, mgl32.Vec3{1, 2, 13}) {
		t.Errorf("expected (1, 2, 13), got %v", got)
	}

	// The view matrix maps the center onto the negative z axis.
	center := c.ViewMatrix().Mul4x1(c.Center.Vec4(1))
	if !near(center.Vec3(), mgl32.Vec3{0, 0, -10}) {
		t.Errorf("expected center at (0, 0, -10) in view space, got %v", center)
	}
}

func TestOrbitCamera_Clamps(t *testing.T) {
	c := NewOrbitCamera()

	c.HandleDrag(0, 1e6)
	if c.RotationX != c.MaxPitch {
		t.Errorf("expected pitch clamped to %v, got %v", c.MaxPitch, c.RotationX)
	}
	c.HandleDrag(0, -1e6)
	if c.RotationX != c.MinPitch {
		t.Errorf("expected pitch clamped to %v, got %v", c.MinPitch, c.RotationX)
	}

	c.HandleZoom(1000)
	if c.Distance != c.MinDistance {
		t.Errorf("expected distance clamped to %v, got %v", c.MinDistance, c.Distance)
	}
}

func TestOrbitCamera_FitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{3, 1, 1})

	if !near(c.Center, mgl32.Vec3{1, 0, 0}) {
		t.Errorf("expected center (1, 0, 0), got %v", c.Center)
	}
	radius := mgl32.Vec3{4, 2, 2}.Len() / 2
	if c.Distance <= radius {
		t.Errorf("expected distance beyond radius %v, got %v", radius, c.Distance)
	}
	if c.Near <= 0 || c.Far <= c.Distance {
		t.Errorf("unexpected clip planes near=%v far=%v", c.Near, c.Far)
	}
}

func near(a, b mgl32.Vec3) bool {
	for i := range a {
		if d := a[i] - b[i]; d > 1e-4 || d < -1e-4 {
			return false
		}
	}
	return true
}
