package model

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/modelview/pkg/formats"
)

// resolveMaterial reads the lighting constants of a source material. Each key
// is read on its own: absent colors stay black and an absent or non-positive
// shininess becomes DefaultShininess. A nil material yields the defaults.
func resolveMaterial(src *formats.Material) Material {
	mat := Material{Shininess: DefaultShininess}
	if src == nil {
		return mat
	}
	if c, ok := src.Color(formats.KeyColorDiffuse); ok {
		mat.Diffuse = c
	}
	if c, ok := src.Color(formats.KeyColorAmbient); ok {
		mat.Ambient = c
	}
	if c, ok := src.Color(formats.KeyColorSpecular); ok {
		mat.Specular = c
	}
	if s, ok := src.Float(formats.KeyShininess); ok && s > 0 {
		mat.Shininess = s
	}
	return mat
}

// QuantizeColor converts a [0, 1] color to 8-bit channels, rounding half away
// from zero and clamping to [0, 255]. 0.5 maps to 128.
func QuantizeColor(c mgl32.Vec3) [3]byte {
	var out [3]byte
	for i, ch := range c {
		v := math.Round(float64(ch) * 255)
		switch {
		case math.IsNaN(v) || v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

// Apply uploads the material constants as material.* uniforms.
func (m Material) Apply(s Shader) {
	s.SetVec3("material.diffuse", m.Diffuse)
	s.SetVec3("material.ambient", m.Ambient)
	s.SetVec3("material.specular", m.Specular)
	s.SetFloat("material.shininess", m.Shininess)
}
