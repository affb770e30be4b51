package config

const (
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Read: Read{
			Simplify:                true,
			AttachMarkers:           true,
			BakeKeyframedProperties: false,
		},
		Write: Write{
			PreferFileMobID: false,
			UseEmptyMobIDs:  false,
			EmbedEssence:    false,
			CreateEdgeCode:  false,
		},
	}
}
