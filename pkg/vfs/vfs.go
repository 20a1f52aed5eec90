// Package vfs is the machine's cassette shelf: an in-memory set of named
// files (tape logs and saved programs) mirrored to a host directory.
package vfs

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// MaxBytes is the total capacity of the shelf.
const MaxBytes = 1474560

// validName accepts NAME or NAME.EXT in upper case.
var validName = regexp.MustCompile(`^[A-Z0-9_]{1,8}(\.[A-Z0-9]{1,3})?$`)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrQuotaExceeded   = errors.New("disk quota exceeded")
)

// Normalize trims and upper-cases a user supplied name and adds ext when the
// name has none. ext may be empty.
func Normalize(name, ext string) (string, error) {
	name = strings.ToUpper(strings.Trim(strings.TrimSpace(name), `"`))
	if ext != "" && !strings.Contains(name, ".") {
		name += "." + strings.ToUpper(ext)
	}
	if !validName.MatchString(name) {
		return "", ErrInvalidFilename
	}
	return name, nil
}

type file struct {
	data     []byte
	modified time.Time
}

// Disk holds the files. It is safe for concurrent use so a host can persist
// it from a background goroutine while the machine runs.
type Disk struct {
	mu    sync.RWMutex
	files map[string]*file
	dirty map[string]bool
	used  int
	root  string
}

func New() *Disk {
	return &Disk{
		files: make(map[string]*file),
		dirty: make(map[string]bool),
	}
}

// Open returns a Disk backed by the host directory root, loading whatever is
// already there. A missing directory is an empty shelf.
func Open(root string) (*Disk, error) {
	d := New()
	d.root = root
	if err := d.LoadFrom(root); err != nil {
		return d, err
	}
	return d, nil
}

// Root is the host directory given to Open, or "".
func (d *Disk) Root() string {
	return d.root
}

// put replaces a file's contents. The caller holds the write lock.
func (d *Disk) put(name string, data []byte) error {
	if !validName.MatchString(name) {
		return ErrInvalidFilename
	}
	oldSize := 0
	f, ok := d.files[name]
	if ok {
		oldSize = len(f.data)
	}
	if d.used-oldSize+len(data) > MaxBytes {
		return ErrQuotaExceeded
	}
	if !ok {
		f = &file{}
		d.files[name] = f
	}
	f.data = data
	f.modified = time.Now()
	d.used += len(data) - oldSize
	d.dirty[name] = true
	return nil
}

// Write stores a copy of data under name, replacing any previous file.
func (d *Disk) Write(name string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.put(name, append([]byte(nil), data...))
}

// Append adds data to the end of name, creating it if needed.
func (d *Disk) Append(name string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf []byte
	if f, ok := d.files[name]; ok {
		buf = append(buf, f.data...)
	}
	return d.put(name, append(buf, data...))
}

// Read returns a copy of a file's contents.
func (d *Disk) Read(name string) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !validName.MatchString(name) {
		return nil, ErrInvalidFilename
	}
	f, ok := d.files[name]
	if !ok {
		return nil, ErrFileNotFound
	}
	return append([]byte(nil), f.data...), nil
}

func (d *Disk) Size(name string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	f, ok := d.files[name]
	if !ok {
		return 0, ErrFileNotFound
	}
	return len(f.data), nil
}

func (d *Disk) Delete(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.files[name]
	if !ok {
		return ErrFileNotFound
	}
	d.used -= len(f.data)
	delete(d.files, name)
	d.dirty[name] = true
	return nil
}

// Used returns the number of bytes stored.
func (d *Disk) Used() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.used
}

// List returns the file names in sorted order.
func (d *Disk) List() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.files))
	for name := range d.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dirty reports whether anything changed since the last persist.
func (d *Disk) Dirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.dirty) > 0
}

// LoadFrom reads every validly named file in a host directory.
func (d *Disk) LoadFrom(path string) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !validName.MatchString(name) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			continue
		}
		modified := time.Now()
		if info, err := entry.Info(); err == nil {
			modified = info.ModTime()
		}
		if old, ok := d.files[name]; ok {
			d.used -= len(old.data)
		}
		d.files[name] = &file{data: raw, modified: modified}
		d.used += len(raw)
	}
	return nil
}

// PersistTo writes changed files to a host directory and removes deleted
// ones. It returns the first error; files that failed stay dirty.
func (d *Disk) PersistTo(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}

	d.mu.Lock()
	snapshot := make(map[string]file)
	var deleted []string
	for name := range d.dirty {
		if f, ok := d.files[name]; ok {
			snapshot[name] = file{data: append([]byte(nil), f.data...), modified: f.modified}
		} else {
			deleted = append(deleted, name)
		}
	}
	clear(d.dirty)
	d.mu.Unlock()

	var firstErr error
	for _, name := range deleted {
		if err := os.Remove(filepath.Join(path, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	for name, f := range snapshot {
		target := filepath.Join(path, name)
		if err := os.WriteFile(target, f.data, 0644); err != nil {
			d.mu.Lock()
			d.dirty[name] = true
			d.mu.Unlock()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		_ = os.Chtimes(target, time.Now(), f.modified)
	}
	return firstErr
}

// Sync persists to the directory given to Open. It is a no-op for a Disk
// made with New.
func (d *Disk) Sync() error {
	if d.root == "" || !d.Dirty() {
		return nil
	}
	return d.PersistTo(d.root)
}
