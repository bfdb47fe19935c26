package config

// Config represents the application configuration stored in config.json
type Config struct {
	Version      int         `json:"version"`
	ROMPath      string      `json:"romPath"`      // 16 KB system ROM image, "" = built-in boot stub
	Joystick     string      `json:"joystick"`     // "cursor" or "kempston"
	StickyFrames int         `json:"stickyFrames"` // Minimum frames a tapped key stays down
	Video        VideoConfig `json:"video"`
}

// VideoConfig contains video-related settings
type VideoConfig struct {
	Scale int `json:"scale"` // Window scale factor for the direct runner
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		ROMPath:      "",
		Joystick:     "cursor",
		StickyFrames: 1,
		Video: VideoConfig{
			Scale: 2,
		},
	}
}
