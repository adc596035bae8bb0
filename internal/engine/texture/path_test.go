package texture

import (
	"path/filepath"
	"testing"
)

func TestDir(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"models/crate/crate.obj", "models/crate"},
		{"/abs/model.glb", "/abs"},
		{"/model.obj", "/"},
		{"model.obj", ""},
	}
	for _, tt := range tests {
		if got := Dir(tt.path); got != tt.want {
			t.Errorf("Dir(%q): expected %q, got %q", tt.path, tt.want, got)
		}
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		model string
		rel   string
		want  string
	}{
		{"models/house.obj", "wall.png", filepath.Join("models", "wall.png")},
		{"models/house.obj", `tex\roof.png`, filepath.Join("models", "tex", "roof.png")},
		{"house.obj", "wall.png", "wall.png"},
		{"models/house.obj", "/abs/wall.png", filepath.FromSlash("/abs/wall.png")},
	}
	for _, tt := range tests {
		if got := ResolvePath(Dir(tt.model), tt.rel); got != tt.want {
			t.Errorf("ResolvePath(%q, %q): expected %q, got %q", tt.model, tt.rel, tt.want, got)
		}
	}
}
