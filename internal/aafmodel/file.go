package aafmodel

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// Mode selects how a container file is opened.
type Mode int

const (
	// ModeRead opens an existing container for transcription.
	ModeRead Mode = iota
	// ModeWrite creates a fresh container, truncating any existing file.
	ModeWrite
)

// File is an open container. It exclusively owns the underlying store for
// the scope of one conversion; Close releases it on all paths.
type File struct {
	Path       string
	Content    *ContentStorage
	Dictionary *Dictionary
	Header     Props

	mode   Mode
	store  *store
	lock   *flock.Flock
	closed bool
}

// Open loads an existing container for reading.
func Open(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	st, err := openStore(path)
	if err != nil {
		return nil, err
	}
	f := &File{
		Path:       path,
		Content:    &ContentStorage{},
		Dictionary: NewDictionary(),
		Header:     Props{},
		mode:       ModeRead,
		store:      st,
	}
	if err := st.load(f); err != nil {
		_ = st.close()
		return nil, err
	}
	return f, nil
}

// Create opens a fresh container for writing, holding an exclusive lock for
// the duration of the conversion.
func Create(path string) (*File, error) {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock container %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("container %s is locked by another writer", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = lock.Unlock()
		return nil, fmt.Errorf("truncate container %s: %w", path, err)
	}
	st, err := openStore(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return &File{
		Path:       path,
		Content:    &ContentStorage{},
		Dictionary: NewDictionary(),
		Header:     Props{},
		mode:       ModeWrite,
		store:      st,
		lock:       lock,
	}, nil
}

// Save persists the in-memory graph. It is a no-op in read mode.
func (f *File) Save() error {
	if f.mode != ModeWrite {
		return nil
	}
	return f.store.save(f)
}

// Close releases the store and, in write mode, persists the graph first and
// releases the writer lock. Safe to call more than once.
func (f *File) Close() error {
	if f == nil || f.closed {
		return nil
	}
	f.closed = true

	var saveErr error
	if f.mode == ModeWrite {
		saveErr = f.store.save(f)
	}
	closeErr := f.store.close()
	if f.lock != nil {
		if err := f.lock.Unlock(); err == nil {
			_ = os.Remove(f.lock.Path())
		}
	}
	if saveErr != nil {
		return saveErr
	}
	return closeErr
}

// Abort releases the store and lock without persisting. Used on failed
// write conversions so a broken container is not left behind.
func (f *File) Abort() error {
	if f == nil || f.closed {
		return nil
	}
	f.closed = true
	closeErr := f.store.close()
	if f.mode == ModeWrite {
		_ = os.Remove(f.Path)
	}
	if f.lock != nil {
		if err := f.lock.Unlock(); err == nil {
			_ = os.Remove(f.lock.Path())
		}
	}
	return closeErr
}
