package camera

// Preset names for common configurations
const (
	PresetDefault = "default"
	PresetWide    = "wide"
	PresetNarrow  = "narrow"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetWide:    WideConfig(),
		PresetNarrow:  NarrowConfig(),
		Preset720p:    HD720Config(),
		Preset1080p:   HD1080Config(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{
		PresetDefault,
		PresetWide,
		PresetNarrow,
		Preset720p,
		Preset1080p,
	}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// WideConfig uses a 75° lens; head movement maps to larger scene offsets.
func WideConfig() Config {
	cfg := DefaultConfig()
	cfg.FOV = 75
	return cfg
}

// NarrowConfig uses a 30° lens and pulls the camera back.
func NarrowConfig() Config {
	cfg := DefaultConfig()
	cfg.FOV = 30
	cfg.PositionZ = 15
	return cfg
}

// HD720Config renders at 1280x720.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// HD1080Config renders at 1920x1080.
func HD1080Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	return cfg
}
