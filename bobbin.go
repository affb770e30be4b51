// Package bobbin converts between editorial interchange containers and
// composition trees. ReadFile and WriteFile are the whole-file entry points;
// the Content variants operate on an already open container so callers can
// batch several conversions under one handle.
package bobbin

import (
	"log/slog"

	"bobbin/internal/aafmodel"
	"bobbin/internal/adapter"
	"bobbin/internal/reader"
	"bobbin/internal/simplify"
	"bobbin/internal/timeline"
	"bobbin/internal/writer"
)

// ReadFile opens a container and converts it into a composition tree.
func ReadFile(path string, opts adapter.ReadOptions, log *slog.Logger) (*timeline.Timeline, error) {
	f, err := aafmodel.Open(path)
	if err != nil {
		return nil, adapter.Wrap(adapter.ErrAdapter, "read", "open", path, err)
	}
	defer f.Close()
	return ReadContent(f.Content, opts, log)
}

// ReadContent converts loaded container content into a composition tree.
func ReadContent(content *aafmodel.ContentStorage, opts adapter.ReadOptions, log *slog.Logger) (*timeline.Timeline, error) {
	if _, err := adapter.RunHooks(adapter.PreReadTranscribe, nil, opts.ExtraArgs); err != nil {
		return nil, err
	}

	tl, err := reader.Read(content, reader.Options{
		AttachMarkers:           opts.AttachMarkers,
		BakeKeyframedProperties: opts.BakeKeyframedProperties,
	}, log)
	if err != nil {
		return nil, err
	}
	if opts.Simplify {
		tl = simplify.Simplify(tl)
	}

	return adapter.RunHooks(adapter.PostReadTranscribe, tl, opts.ExtraArgs)
}

// WriteFile converts a composition tree into a new container at path. A
// failed conversion aborts the file and leaves nothing behind.
func WriteFile(tl *timeline.Timeline, path string, opts adapter.WriteOptions, log *slog.Logger) error {
	f, err := aafmodel.Create(path)
	if err != nil {
		return adapter.Wrap(adapter.ErrAdapter, "write", "create", path, err)
	}
	if err := WriteContent(tl, f, opts, log); err != nil {
		_ = f.Abort()
		return err
	}
	if err := f.Save(); err != nil {
		_ = f.Abort()
		return adapter.Wrap(adapter.ErrAdapter, "write", "save", path, err)
	}
	return f.Close()
}

// WriteContent transcribes a composition tree into an open container. The
// caller decides whether to save or abort the handle.
func WriteContent(tl *timeline.Timeline, f *aafmodel.File, opts adapter.WriteOptions, log *slog.Logger) error {
	tl, err := adapter.RunHooks(adapter.PreWriteTranscribe, tl, opts.ExtraArgs)
	if err != nil {
		return err
	}

	if err := writer.Write(tl, f, writer.Options{
		PreferFileMobID: opts.PreferFileMobID,
		UseEmptyMobIDs:  opts.UseEmptyMobIDs,
		EmbedEssence:    opts.EmbedEssence,
		CreateEdgeCode:  opts.CreateEdgeCode,
	}, log); err != nil {
		return err
	}

	_, err = adapter.RunHooks(adapter.PostWriteTranscribe, tl, opts.ExtraArgs)
	return err
}
