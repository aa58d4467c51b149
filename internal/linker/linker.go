package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// Linker places resource packs from the shared pack directory into an
// instance. A pack is either a zip file or a directory.
type Linker interface {
	Deploy(src, dst string) error
	Undeploy(dst string) error
	// Current reports whether dst is an up-to-date deployment of src.
	Current(src, dst string) (bool, error)
	Method() domain.LinkMethod
}

// New creates a linker for the given method
func New(method domain.LinkMethod) Linker {
	switch method {
	case domain.LinkHardlink:
		return NewHardlink()
	case domain.LinkCopy:
		return NewCopy()
	default:
		return NewSymlink()
	}
}

// vacate removes whatever occupies dst and creates its parent directory.
func vacate(dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating destination dir: %w", err)
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("removing existing pack: %w", err)
	}
	return nil
}

// mirror recreates the directory tree of src at dst and places every regular
// file with place. Other file types are skipped.
func mirror(src, dst string, place func(src, dst string) error) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			return place(path, target)
		}
		return nil
	})
}

// deployTree deploys a file pack with place, or a directory pack by
// mirroring it.
func deployTree(src, dst string, place func(src, dst string) error) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := vacate(dst); err != nil {
		return err
	}
	if !info.IsDir() {
		return place(src, dst)
	}
	return mirror(src, dst, place)
}

// currentTree applies same to a file pack, or to every regular file of a
// directory pack and its counterpart under dst.
func currentTree(src, dst string, same func(src, dst string) (bool, error)) (bool, error) {
	info, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		return same(src, dst)
	}

	current := true
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		ok, err := same(path, filepath.Join(dst, rel))
		if err != nil {
			return err
		}
		if !ok {
			current = false
			return fs.SkipAll
		}
		return nil
	})
	return current, err
}

// statDst stats dst without following links; a missing dst is not an error.
func statDst(dst string) (fs.FileInfo, error) {
	info, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return info, err
}
