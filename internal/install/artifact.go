package install

import (
	"context"
	"errors"
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
)

// Artifact is one file to place on disk.
type Artifact struct {
	Name     string
	URL      string
	Path     string
	Checksum minecraft.Checksum
	// Size is the expected size, or -1 when unknown.
	Size int64
}

// Ensure makes a.Path hold the expected bytes. A file that already
// verifies is left alone and no request is made. A checksum mismatch is
// re-downloaded once; a second mismatch returns *ChecksumError.
func (n *Network) Ensure(ctx context.Context, a Artifact, progressFn ProgressFunc) (downloaded bool, err error) {
	state, err := minecraft.CheckFile(a.Path, a.Checksum, a.Size)
	if err == nil && state == minecraft.FileOK {
		return false, nil
	}
	if a.URL == "" {
		return false, fmt.Errorf("%s: no download url", a.Name)
	}

	log := ctxlog.FromContext(ctx)
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		res, err := n.Download(ctx, a.URL, a.Path, a.Checksum, progressFn)
		var ce *ChecksumError
		if errors.As(err, &ce) {
			log.Warn("checksum mismatch", "artifact", a.Name, "attempt", attempt, "expected", ce.Expected, "actual", ce.Actual)
			lastErr = err
			continue
		}
		if err != nil {
			return false, fmt.Errorf("downloading %s: %w", a.Name, err)
		}
		if a.Size > 0 && res.Size != a.Size {
			lastErr = fmt.Errorf("%s: expected %d bytes, got %d", a.Name, a.Size, res.Size)
			log.Warn("size mismatch", "artifact", a.Name, "attempt", attempt, "expected", a.Size, "actual", res.Size)
			continue
		}
		return true, nil
	}
	return false, lastErr
}
