package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// SyncResult lists the packs a sync deployed and removed.
type SyncResult struct {
	Deployed []string
	Removed  []string
}

// SyncPacks brings dstDir in line with the enabled packs of the shared
// srcDir. An enabled pack present in srcDir is deployed unless dstDir already
// holds a current deployment of it; the shared copy wins over a differing
// file of the same name. An enabled pack found only in dstDir is
// instance-local and left alone. Current deployments of packs no longer
// enabled are removed. Problems are joined into the returned error; the
// remaining packs are still processed.
func SyncPacks(l Linker, srcDir, dstDir string, enabled []string) (SyncResult, error) {
	var res SyncResult
	var errs []error

	want := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		if name == "" || filepath.Base(name) != name {
			errs = append(errs, fmt.Errorf("%w: invalid pack name %q", domain.ErrLinkFailed, name))
			continue
		}
		want[name] = true
		src := filepath.Join(srcDir, name)
		dst := filepath.Join(dstDir, name)

		if _, err := os.Stat(src); err != nil {
			if _, local := os.Lstat(dst); local == nil {
				continue
			}
			errs = append(errs, fmt.Errorf("%w: pack %s: %v", domain.ErrLinkFailed, name, err))
			continue
		}
		ok, err := l.Current(src, dst)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: pack %s: %v", domain.ErrLinkFailed, name, err))
			continue
		}
		if ok {
			continue
		}
		if err := l.Deploy(src, dst); err != nil {
			errs = append(errs, fmt.Errorf("%w: pack %s: %v", domain.ErrLinkFailed, name, err))
			continue
		}
		res.Deployed = append(res.Deployed, name)
	}

	entries, err := os.ReadDir(dstDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, fmt.Errorf("reading %s: %w", dstDir, err))
	}
	for _, e := range entries {
		name := e.Name()
		if want[name] {
			continue
		}
		src := filepath.Join(srcDir, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(dstDir, name)
		ok, err := l.Current(src, dst)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: pack %s: %v", domain.ErrLinkFailed, name, err))
			continue
		}
		if !ok {
			continue
		}
		if err := l.Undeploy(dst); err != nil {
			errs = append(errs, fmt.Errorf("%w: pack %s: %v", domain.ErrLinkFailed, name, err))
			continue
		}
		res.Removed = append(res.Removed, name)
	}

	return res, errors.Join(errs...)
}
