// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Scene   SceneConfig   `yaml:"scene"`
	Shaders ShaderConfig  `yaml:"shaders"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	// FPS paces the display loop when the display refresh rate is unknown.
	FPS int `yaml:"fps"`
	// ScreenshotDir receives F12 captures.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// SceneConfig lists the meshes placed at startup.
type SceneConfig struct {
	AssetDir   string      `yaml:"asset_dir"`
	Placements []Placement `yaml:"placements"`
}

// Placement positions one mesh asset in the world.
type Placement struct {
	Asset        string     `yaml:"asset"` // identifier relative to AssetDir, without extension
	Position     [3]float32 `yaml:"position"`
	Scale        float32    `yaml:"scale"`
	RotationAxis [3]float32 `yaml:"rotation_axis"`
	Angle        float32    `yaml:"angle"` // radians
}

// ShaderConfig selects the shader sources.
type ShaderConfig struct {
	// Dir holds pbr.vert and pbr.frag; empty uses the built-in pair.
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DefaultPlacements returns the five material spheres in a row along x.
func DefaultPlacements() []Placement {
	ids := []string{
		"gold/sphere",
		"grass/sphere",
		"plastic/sphere",
		"rusted_iron/sphere",
		"wall/sphere",
	}
	placements := make([]Placement, len(ids))
	for i, id := range ids {
		placements[i] = Placement{
			Asset:        id,
			Position:     [3]float32{float32(-6 + 3*i), 0, -5},
			Scale:        1,
			RotationAxis: [3]float32{0, 1, 0},
		}
	}
	return placements
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "PBR Viewer",
			Width:  1280,
			Height: 720,
			VSync:  true,
			FPS:    60,

			ScreenshotDir: "screenshots",
		},
		Scene: SceneConfig{
			AssetDir:   "assets",
			Placements: DefaultPlacements(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
