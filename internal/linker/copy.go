package linker

import (
	"fmt"
	"io"
	"os"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// CopyLinker deploys packs as copies. Copies keep the source modification
// time so an updated shared pack is noticed.
type CopyLinker struct{}

// NewCopy creates a new copy linker
func NewCopy() *CopyLinker {
	return &CopyLinker{}
}

// Deploy replaces dst with a copy of src.
func (l *CopyLinker) Deploy(src, dst string) error {
	return deployTree(src, dst, copyFile)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("copying file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing destination: %w", err)
	}
	if err := os.Chtimes(tmp, info.ModTime(), info.ModTime()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("setting modification time: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("moving copy into place: %w", err)
	}
	return nil
}

// Undeploy removes dst.
func (l *CopyLinker) Undeploy(dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("removing pack: %w", err)
	}
	return nil
}

// Current reports whether dst matches src in size and modification time.
func (l *CopyLinker) Current(src, dst string) (bool, error) {
	return currentTree(src, dst, func(src, dst string) (bool, error) {
		b, err := statDst(dst)
		if err != nil || b == nil || !b.Mode().IsRegular() {
			return false, err
		}
		a, err := os.Stat(src)
		if err != nil {
			return false, err
		}
		return a.Size() == b.Size() && a.ModTime().Equal(b.ModTime()), nil
	})
}

// Method returns the link method
func (l *CopyLinker) Method() domain.LinkMethod {
	return domain.LinkCopy
}
