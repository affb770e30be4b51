package adapter

import "bobbin/internal/config"

// ReadOptions controls container-to-composition conversion.
type ReadOptions struct {
	// Simplify collapses redundant nesting after transcription.
	Simplify bool
	// AttachMarkers relocates event markers onto the items their timeline
	// positions fall within.
	AttachMarkers bool
	// BakeKeyframedProperties converts keyframed effect parameters into
	// per-frame baked values during transcription.
	BakeKeyframedProperties bool
	// ExtraArgs is passed through to hooks untouched.
	ExtraArgs map[string]any
}

// DefaultReadOptions returns the documented read defaults.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Simplify: true, AttachMarkers: true}
}

// ReadOptionsFromConfig maps the [read] config section onto options.
func ReadOptionsFromConfig(cfg *config.Config) ReadOptions {
	if cfg == nil {
		return DefaultReadOptions()
	}
	return ReadOptions{
		Simplify:                cfg.Read.Simplify,
		AttachMarkers:           cfg.Read.AttachMarkers,
		BakeKeyframedProperties: cfg.Read.BakeKeyframedProperties,
	}
}

// WriteOptions controls composition-to-container conversion.
type WriteOptions struct {
	// PreferFileMobID resolves clip identities from referenced container
	// files before clip metadata.
	PreferFileMobID bool
	// UseEmptyMobIDs synthesizes identities for clips that carry none.
	UseEmptyMobIDs bool
	// EmbedEssence copies referenced media into the output container.
	EmbedEssence bool
	// CreateEdgeCode adds a film frame-count slot to every master mob.
	CreateEdgeCode bool
	// ExtraArgs is passed through to hooks untouched.
	ExtraArgs map[string]any
}

// WriteOptionsFromConfig maps the [write] config section onto options.
func WriteOptionsFromConfig(cfg *config.Config) WriteOptions {
	if cfg == nil {
		return WriteOptions{}
	}
	return WriteOptions{
		PreferFileMobID: cfg.Write.PreferFileMobID,
		UseEmptyMobIDs:  cfg.Write.UseEmptyMobIDs,
		EmbedEssence:    cfg.Write.EmbedEssence,
		CreateEdgeCode:  cfg.Write.CreateEdgeCode,
	}
}
