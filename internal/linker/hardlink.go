package linker

import (
	"fmt"
	"os"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// HardlinkLinker deploys packs as hard links. Directory packs are mirrored
// with every file linked, since directories cannot be hard-linked.
type HardlinkLinker struct{}

// NewHardlink creates a new hardlink linker
func NewHardlink() *HardlinkLinker {
	return &HardlinkLinker{}
}

// Deploy replaces dst with a hard link (or linked tree) of src.
func (l *HardlinkLinker) Deploy(src, dst string) error {
	return deployTree(src, dst, func(src, dst string) error {
		if err := os.Link(src, dst); err != nil {
			return fmt.Errorf("creating hardlink: %w", err)
		}
		return nil
	})
}

// Undeploy removes dst.
func (l *HardlinkLinker) Undeploy(dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("removing pack: %w", err)
	}
	return nil
}

// Current reports whether dst shares its files with src.
func (l *HardlinkLinker) Current(src, dst string) (bool, error) {
	return currentTree(src, dst, func(src, dst string) (bool, error) {
		b, err := statDst(dst)
		if err != nil || b == nil {
			return false, err
		}
		a, err := os.Stat(src)
		if err != nil {
			return false, err
		}
		return os.SameFile(a, b), nil
	})
}

// Method returns the link method
func (l *HardlinkLinker) Method() domain.LinkMethod {
	return domain.LinkHardlink
}
