package linker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// SymlinkLinker deploys packs as symbolic links. Directory packs are linked
// as a whole.
type SymlinkLinker struct{}

// NewSymlink creates a new symlink linker
func NewSymlink() *SymlinkLinker {
	return &SymlinkLinker{}
}

// Deploy replaces dst with a link to src.
func (l *SymlinkLinker) Deploy(src, dst string) error {
	if err := vacate(dst); err != nil {
		return err
	}
	if err := os.Symlink(src, dst); err != nil {
		return fmt.Errorf("creating symlink: %w", err)
	}
	return nil
}

// Undeploy removes the link at dst and refuses to touch anything else.
func (l *SymlinkLinker) Undeploy(dst string) error {
	info, err := statDst(dst)
	if err != nil {
		return fmt.Errorf("checking pack: %w", err)
	}
	if info == nil {
		return nil
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("not a symlink: %s", dst)
	}
	if err := os.Remove(dst); err != nil {
		return fmt.Errorf("removing symlink: %w", err)
	}
	return nil
}

// Current reports whether dst is a link to src.
func (l *SymlinkLinker) Current(src, dst string) (bool, error) {
	info, err := statDst(dst)
	if err != nil || info == nil || info.Mode()&os.ModeSymlink == 0 {
		return false, err
	}
	target, err := os.Readlink(dst)
	if err != nil {
		return false, fmt.Errorf("reading symlink: %w", err)
	}
	return filepath.Clean(target) == filepath.Clean(src), nil
}

// Method returns the link method
func (l *SymlinkLinker) Method() domain.LinkMethod {
	return domain.LinkSymlink
}
