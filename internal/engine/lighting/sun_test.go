package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		lon, lat float32
		want     mgl32.Vec3
	}{
		{0, 90, mgl32.Vec3{0, -1, 0}},
		{0, 0, mgl32.Vec3{0, 0, -1}},
		{90, 0, mgl32.Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		got := SunDirection(tt.lon, tt.lat)
		if !near(got, tt.want) {
			t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
		}
		if l := got.Len(); l < 0.9999 || l > 1.0001 {
			t.Errorf("expected unit vector, got length %v", l)
		}
	}
}

func near(a, b mgl32.Vec3) bool {
	for i := range a {
		if d := a[i] - b[i]; d > 1e-5 || d < -1e-5 {
			return false
		}
	}
	return true
}
