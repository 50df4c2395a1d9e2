package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFPS        = flag.Int("fps", 0, "Frame rate when the display refresh rate is unknown")
	flagAssets     = flag.String("assets", "", "Asset root directory")
	flagShaders    = flag.String("shaders", "", "Directory holding pbr.vert and pbr.frag")
	flagSave       = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagFPS > 0 {
		cfg.Window.FPS = *flagFPS
	}
	if *flagAssets != "" {
		cfg.Scene.AssetDir = *flagAssets
	}
	if *flagShaders != "" {
		cfg.Shaders.Dir = *flagShaders
	}
}
