package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bobbin"
	"bobbin/internal/adapter"
	"bobbin/internal/timeline"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		noSimplify      bool
		noMarkers       bool
		bakeKeyframes   bool
		preferFileMobID bool
		useEmptyMobIDs  bool
		embedEssence    bool
		createEdgeCode  bool
	)

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Read a container and write a normalized copy",
		Long: `Convert reads the input container into a composition tree and writes it
back out as a fresh container. Structural simplification, marker
reattachment, and media embedding are applied along the way according to
configuration and flags.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger()
			if err != nil {
				return err
			}

			readOpts := adapter.ReadOptionsFromConfig(cfg)
			if noSimplify {
				readOpts.Simplify = false
			}
			if noMarkers {
				readOpts.AttachMarkers = false
			}
			if bakeKeyframes {
				readOpts.BakeKeyframedProperties = true
			}

			tl, err := bobbin.ReadFile(args[0], readOpts, log)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			writeOpts := adapter.WriteOptionsFromConfig(cfg)
			if preferFileMobID {
				writeOpts.PreferFileMobID = true
			}
			if useEmptyMobIDs {
				writeOpts.UseEmptyMobIDs = true
			}
			if embedEssence {
				writeOpts.EmbedEssence = true
			}
			if createEdgeCode {
				writeOpts.CreateEdgeCode = true
			}

			if err := bobbin.WriteFile(tl, args[1], writeOpts, log); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}

			tracks := len(timeline.FindTracks(tl.Tracks))
			clips := len(timeline.FindClips(tl.Tracks))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d tracks, %d clips)\n", args[1], tracks, clips)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSimplify, "no-simplify", false, "Keep redundant container nesting from the source")
	cmd.Flags().BoolVar(&noMarkers, "no-attach-markers", false, "Leave event markers on their original carrier tracks")
	cmd.Flags().BoolVar(&bakeKeyframes, "bake-keyframes", false, "Bake keyframed effect parameters to per-frame values")
	cmd.Flags().BoolVar(&preferFileMobID, "prefer-file-mob-id", false, "Resolve clip identities from referenced containers first")
	cmd.Flags().BoolVar(&useEmptyMobIDs, "use-empty-mob-ids", false, "Synthesize identities for clips that carry none")
	cmd.Flags().BoolVar(&embedEssence, "embed", false, "Copy referenced media into the output container")
	cmd.Flags().BoolVar(&createEdgeCode, "edgecode", false, "Add film frame-count slots to master mobs")
	return cmd
}
