package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/modelview/pkg/formats"
)

func TestCollectTextures(t *testing.T) {
	brick := formats.NewMaterial("brick")
	brick.AddTexture(formats.TextureDiffuse, "brick.png")
	brick.AddTexture(formats.TextureSpecular, "shared.png")
	metal := formats.NewMaterial("metal")
	metal.AddTexture(formats.TextureDiffuse, "shared.png")

	refs := collectTextures(&formats.Scene{Materials: []*formats.Material{brick, metal}})
	if len(refs) != 2 {
		t.Fatalf("expected 2 unique textures, got %d", len(refs))
	}
	if refs[0].path != "brick.png" || refs[1].path != "shared.png" {
		t.Errorf("expected sorted paths, got %q, %q", refs[0].path, refs[1].path)
	}
	if len(refs[1].users) != 2 {
		t.Errorf("expected shared.png used twice, got %v", refs[1].users)
	}
	if refs[1].users[0] != "brick/specular" {
		t.Errorf("expected first user brick/specular, got %s", refs[1].users[0])
	}
}

func TestBadFaces(t *testing.T) {
	m := &formats.Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces: []formats.Face{
			{Indices: []uint32{0, 1, 2}},
			{Indices: []uint32{0, 1, 3}},
			{Indices: []uint32{5, 6, 7}},
		},
	}
	if n := badFaces(m); n != 2 {
		t.Errorf("expected 2 bad faces, got %d", n)
	}
}
