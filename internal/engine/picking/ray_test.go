package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIntersectBox(t *testing.T) {
	min, max := mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}

	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float32
	}{
		{"front hit", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}}, true, 4},
		{"pointing away", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}}, false, 0},
		{"miss beside", Ray{mgl32.Vec3{3, 0, 5}, mgl32.Vec3{0, 0, -1}}, false, 0},
		{"inside", Ray{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}}, true, 1},
		{"diagonal", Ray{mgl32.Vec3{-3, 0, 0}, mgl32.Vec3{1, 0, 0}}, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectBox(min, max)
			if hit != tt.hit {
				t.Fatalf("expected hit=%v, got %v", tt.hit, hit)
			}
			if hit && got != tt.wantT {
				t.Errorf("expected t=%v, got %v", tt.wantT, got)
			}
		})
	}
}

func TestScreenToRay(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	inv := proj.Mul4(view).Inv()

	r := ScreenToRay(50, 50, 100, 100, inv)
	if d := r.Direction.Sub(mgl32.Vec3{0, 0, -1}).Len(); d > 1e-3 {
		t.Errorf("expected center ray along -Z, got %v", r.Direction)
	}
	if _, hit := r.IntersectBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}); !hit {
		t.Error("expected center ray to hit box at origin")
	}

	edge := ScreenToRay(0, 0, 100, 100, inv)
	if _, hit := edge.IntersectBox(mgl32.Vec3{-0.1, -0.1, -0.1}, mgl32.Vec3{0.1, 0.1, 0.1}); hit {
		t.Error("expected corner ray to miss small box")
	}
}
