// Package storage contains the default [domain.Storage] implementation:
// whole-file reads and crash-safe whole-file writes.
package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/kivadb/kiva/domain"
)

// Storage implements domain.Storage.
type Storage struct{}

// NewStorage returns a new implementation of domain.Storage.
func NewStorage() domain.Storage {
	return &Storage{}
}

// Exists implements domain.Storage.
func (s *Storage) Exists(filename string) (bool, error) {
	_, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureParentDirectoryExists implements domain.Storage.
func (s *Storage) EnsureParentDirectoryExists(filename string, mode os.FileMode) error {
	dir, err := filepath.Abs(filepath.Dir(filename))
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, mode)
}

// EnsureDatafileIntegrity implements domain.Storage. A write interrupted
// between the temp-file write and the rename leaves only the temp file; the
// temp file then holds the last complete snapshot and is promoted.
func (s *Storage) EnsureDatafileIntegrity(filename string, mode os.FileMode) error {
	exists, err := s.Exists(filename)
	if err != nil || exists {
		return err
	}
	tempExists, err := s.Exists(tempName(filename))
	if err != nil {
		return err
	}
	if !tempExists {
		return os.WriteFile(filename, nil, mode)
	}
	return os.Rename(tempName(filename), filename)
}

// CrashSafeWriteFile implements domain.Storage: write to a temp file, fsync
// it, rename over the target, fsync the directory.
func (s *Storage) CrashSafeWriteFile(filename string, data []byte, dirMode os.FileMode, fileMode os.FileMode) error {
	temp := tempName(filename)

	if err := s.writeAndSync(temp, data, fileMode); err != nil {
		return err
	}
	if err := os.Rename(temp, filename); err != nil {
		return err
	}
	return s.syncDir(filepath.Dir(filename), dirMode)
}

func (s *Storage) writeAndSync(filename string, data []byte, mode os.FileMode) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Storage) syncDir(dir string, mode os.FileMode) error {
	d, err := os.OpenFile(dir, os.O_RDONLY, mode)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

// ReadFile implements domain.Storage.
func (s *Storage) ReadFile(filename string, mode os.FileMode) ([]byte, error) {
	f, err := os.OpenFile(filename, os.O_RDONLY, mode)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Remove implements domain.Storage.
func (s *Storage) Remove(filename string) error {
	return os.Remove(filename)
}

func tempName(filename string) string {
	return filename + "~"
}
