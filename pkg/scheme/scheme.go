// Package scheme manages the directory of uploaded evaluation schemes and
// summarizes their history.
package scheme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/willbeason/evalboard/pkg/evalerr"
	"github.com/willbeason/evalboard/pkg/table"
	"github.com/willbeason/evalboard/pkg/tableio"
)

// File is an uploaded scheme.
type File struct {
	// Name is the file name within the directory.
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Stem is the scheme's name: its file name without extension. Feature
// schemas are stored under it.
func (f File) Stem() string {
	return tableio.Stem(f.Name)
}

// Dir is a directory of uploaded scheme tables.
type Dir struct {
	path string
}

func NewDir(path string) Dir {
	return Dir{path: path}
}

func (d Dir) String() string {
	return d.path
}

// Path returns the location of the named file in d.
func (d Dir) Path(name string) string {
	return filepath.Join(d.path, name)
}

// List returns the readable tables in d, sorted by name. A missing directory
// holds no schemes.
func (d Dir) List() ([]File, error) {
	entries, err := os.ReadDir(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: listing %q: %w", evalerr.ErrInput, d.path, err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || tableio.FormatOf(entry.Name()) == tableio.Unsupported {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %q: %w", evalerr.ErrInput, entry.Name(), err)
		}
		files = append(files, File{
			Name:    entry.Name(),
			Path:    d.Path(entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Find returns the named file of d.
func (d Dir) Find(name string) (File, error) {
	info, err := os.Stat(d.Path(name))
	if err != nil {
		return File{}, fmt.Errorf("%w: scheme %q not found in %q: %w", evalerr.ErrInput, name, d.path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%w: scheme %q in %q is a directory", evalerr.ErrInput, name, d.path)
	}
	return File{Name: name, Path: d.Path(name), Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Open reads the named scheme table.
func (d Dir) Open(name string) (*table.Table, error) {
	f, err := d.Find(name)
	if err != nil {
		return nil, err
	}
	return tableio.ReadFile(f.Path)
}

// Add writes t into d under name, replacing any scheme of that name.
func (d Dir) Add(name string, t *table.Table) (File, error) {
	err := os.MkdirAll(d.path, os.ModePerm)
	if err != nil {
		return File{}, fmt.Errorf("creating scheme directory: %w", err)
	}

	err = tableio.WriteFile(d.Path(name), t)
	if err != nil {
		return File{}, fmt.Errorf("writing scheme %q: %w", name, err)
	}
	return d.Find(name)
}

// Remove deletes the named scheme.
func (d Dir) Remove(name string) error {
	err := os.Remove(d.Path(name))
	if err != nil {
		return fmt.Errorf("%w: removing scheme %q: %w", evalerr.ErrInput, name, err)
	}
	return nil
}
