package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bobbin/internal/aafmodel"
	"bobbin/internal/adapter"
	"bobbin/internal/timeline"
)

// embedClip materializes a clip's media inside the container instead of
// leaving a reference chain behind. Containers are mined for their mobs and
// essence; raw media files are imported wholesale.
func (t *trackTranscriber) embedClip(clip *timeline.Clip) (*aafmodel.Mob, *aafmodel.Slot, error) {
	ref := clip.ActiveRef()
	path := filePathFromURL(ref.TargetURL)
	if _, err := os.Stat(path); err != nil {
		return nil, nil, adapter.Wrap(adapter.ErrEmbedding, "write", "embed",
			fmt.Sprintf("cannot find file to embed essence from: %q", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".aaf":
		return t.copyEssence(clip, path)
	case ".dnx", ".wav":
		return t.importEssence(clip, path)
	default:
		return nil, nil, adapter.Wrap(adapter.ErrEmbedding, "write", "embed",
			fmt.Sprintf("cannot embed %q: only .aaf, .dnx and .wav media can be embedded; transcode via a %q hook first", path, adapter.PreWriteTranscribe), nil)
	}
}

// copyEssence lifts the clip's master mob, its source mob, and the essence
// payload out of the referenced container.
func (t *trackTranscriber) copyEssence(clip *timeline.Clip, path string) (*aafmodel.Mob, *aafmodel.Slot, error) {
	mobID := t.root.clipMobIDs[clip]

	source, err := aafmodel.Open(path)
	if err != nil {
		return nil, nil, adapter.Wrap(adapter.ErrEmbedding, "write", "embed",
			fmt.Sprintf("cannot open container %q", path), err)
	}
	defer source.Close()

	var master *aafmodel.Mob
	for _, mob := range source.Content.MasterMobs() {
		if mob.ID == mobID {
			master = mob
			break
		}
	}
	if master == nil {
		return nil, nil, adapter.Wrap(adapter.ErrEmbedding, "write", "embed",
			fmt.Sprintf("container %q has no master mob matching clip %q", path, clip.Name), nil)
	}

	var masterSlot *aafmodel.Slot
	for _, slot := range master.Slots {
		if slot.Kind == aafmodel.TimelineSlot && slot.Segment != nil {
			masterSlot = slot
			break
		}
	}
	if masterSlot == nil {
		return nil, nil, adapter.Wrap(adapter.ErrEmbedding, "write", "embed",
			fmt.Sprintf("master mob for clip %q has no timeline slot", clip.Name), nil)
	}

	var sourceMob *aafmodel.Mob
	if sc := aafmodel.SourceClipIn(masterSlot.Segment); sc != nil {
		sourceMob = source.Content.Mob(sc.RefMob)
	}
	if sourceMob == nil {
		return nil, nil, adapter.Wrap(adapter.ErrEmbedding, "write", "embed",
			fmt.Sprintf("master mob for clip %q references no source mob", clip.Name), nil)
	}

	var essence []*aafmodel.EssenceData
	for _, e := range source.Content.Essence {
		if e.MobID == sourceMob.ID {
			essence = append(essence, e.Clone())
		}
	}
	if len(essence) == 0 {
		return nil, nil, adapter.Wrap(adapter.ErrEmbedding, "write", "embed",
			fmt.Sprintf("container %q holds no essence for clip %q", path, clip.Name), nil)
	}

	content := t.root.file.Content
	if content.Mob(sourceMob.ID) == nil {
		content.AppendMob(sourceMob.Clone())
	}
	masterCopy := content.Mob(master.ID)
	if masterCopy == nil {
		masterCopy = master.Clone()
		content.AppendMob(masterCopy)
		t.root.masterMobs[master.ID] = masterCopy
	}
	content.Essence = append(content.Essence, essence...)

	return masterCopy, masterCopy.Slot(masterSlot.ID), nil
}

// importEssence reads a raw media file into the container and builds the
// mob chain around it.
func (t *trackTranscriber) importEssence(clip *timeline.Clip, path string) (*aafmodel.Mob, *aafmodel.Slot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, adapter.Wrap(adapter.ErrEmbedding, "write", "embed",
			fmt.Sprintf("cannot read media file %q", path), err)
	}

	ref := clip.ActiveRef()
	available := *ref.AvailableRange
	length := int64(available.Duration.Value)

	tape := t.uniqueTapeMob(clip)
	tapeSlot := t.tapeMobSlot(tape, available)

	fileMob := &aafmodel.Mob{
		ID:         aafmodel.NewMobID(),
		Kind:       aafmodel.SourceMob,
		Name:       clip.Name,
		Descriptor: t.defaultDescriptor(clip),
	}
	t.root.file.Content.AppendMob(fileMob)
	fileSlot := fileMob.CreateTimelineSlot(t.editRate)
	fileSlot.Segment = &aafmodel.Component{
		Kind:      aafmodel.KindSourceClip,
		MediaKind: t.mediaKind,
		Length:    length,
		RefMob:    tape.ID,
		RefSlot:   tapeSlot.ID,
	}
	t.root.file.Content.Essence = append(t.root.file.Content.Essence, &aafmodel.EssenceData{
		MobID: fileMob.ID,
		Data:  data,
	})

	master := t.uniqueMasterMob(clip)
	masterSlot := master.Slot(t.masterSlotID)
	if masterSlot == nil {
		masterSlot = &aafmodel.Slot{ID: t.masterSlotID, Kind: aafmodel.TimelineSlot, EditRate: t.editRate}
		master.Slots = append(master.Slots, masterSlot)
	}
	masterSlot.Segment = &aafmodel.Component{
		Kind:      aafmodel.KindSourceClip,
		MediaKind: t.mediaKind,
		Length:    length,
		RefMob:    fileMob.ID,
		RefSlot:   fileSlot.ID,
	}
	return master, masterSlot, nil
}
