// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Models   []ModelConfig  `yaml:"models"`
	Loader   LoaderConfig   `yaml:"loader"`
	Textures TexturesConfig `yaml:"textures"`
	Light    LightConfig    `yaml:"light"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Samples    int    `yaml:"samples"` // MSAA samples, 0 disables
}

// ModelConfig is one model file to load at startup.
type ModelConfig struct {
	Path     string     `yaml:"path"`
	Position [3]float32 `yaml:"position"`
}

// LoaderConfig holds import post-processing settings.
type LoaderConfig struct {
	Triangulate bool `yaml:"triangulate"`
	FlipUVs     bool `yaml:"flip_uvs"`
}

// TexturesConfig holds texture sampling settings.
type TexturesConfig struct {
	MaxAnisotropy float32 `yaml:"max_anisotropy"` // 0 or 1 disables anisotropic filtering
	MaxMipLevel   int32   `yaml:"max_mip_level"`  // 0 keeps the driver default
}

// LightConfig places the directional light, in degrees.
type LightConfig struct {
	Longitude float32 `yaml:"longitude"`
	Latitude  float32 `yaml:"latitude"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Model Viewer",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Samples:    4,
		},
		Loader: LoaderConfig{
			Triangulate: true,
			FlipUVs:     true,
		},
		Textures: TexturesConfig{
			MaxAnisotropy: 8,
			MaxMipLevel:   0,
		},
		Light: LightConfig{
			Longitude: 45,
			Latitude:  50,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
