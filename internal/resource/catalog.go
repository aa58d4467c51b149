package resource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/db"
)

// Instance subdirectories scanned for resources.
const (
	ModsDir          = "mods"
	ResourcePacksDir = "resourcepacks"
)

// InstanceLookup finds an instance by its path.
type InstanceLookup interface {
	Get(path string) (domain.Instance, error)
}

// Catalog scans instance folders and records the results in the database.
// Mods already seen under the same sha1 are not parsed again.
type Catalog struct {
	db        *db.DB
	instances InstanceLookup
}

// NewCatalog creates a catalog. With a nil lookup every pack found is
// treated as enabled.
func NewCatalog(d *db.DB, instances InstanceLookup) *Catalog {
	return &Catalog{db: d, instances: instances}
}

// Mods rescans the instance's mods folder and returns its mods.
func (c *Catalog) Mods(ctx context.Context, instancePath string) ([]domain.ModResource, error) {
	return c.ScanMods(ctx, instancePath)
}

// ResourcePacks rescans the instance's resource packs and returns the
// enabled ones in load order.
func (c *Catalog) ResourcePacks(ctx context.Context, instancePath string) ([]domain.ResourcePack, error) {
	packs, err := c.ScanResourcePacks(ctx, instancePath)
	if err != nil {
		return nil, err
	}
	if c.instances == nil {
		return packs, nil
	}
	inst, err := c.instances.Get(instancePath)
	if err != nil {
		return nil, fmt.Errorf("looking up instance: %w", err)
	}
	var enabled []domain.ResourcePack
	for _, name := range inst.ResourcePacks {
		if i := slices.IndexFunc(packs, func(p domain.ResourcePack) bool { return p.Name == name }); i >= 0 {
			enabled = append(enabled, packs[i])
		}
	}
	return enabled, nil
}

// ScanMods parses every mod archive of the instance and replaces the
// recorded list. Archives that cannot be read are kept without metadata so
// they surface as unknown mods.
func (c *Catalog) ScanMods(ctx context.Context, instancePath string) ([]domain.ModResource, error) {
	files, err := listDir(filepath.Join(instancePath, ModsDir), func(e os.DirEntry) bool {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		return !e.IsDir() && (ext == ".jar" || ext == ".zip")
	})
	if err != nil {
		return nil, err
	}

	log := ctxlog.FromContext(ctx)
	var mu sync.Mutex
	mods := make([]domain.ModResource, 0, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := c.mod(path)
			if err != nil {
				if !errors.Is(err, ErrNotAMod) {
					log.Warn("reading mod", "path", path, "error", err)
				}
				m = domain.ModResource{Name: filepath.Base(path), Path: path, Hash: m.Hash}
			}
			mu.Lock()
			mods = append(mods, m)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })

	if err := c.db.ReplaceMods(instancePath, mods); err != nil {
		return nil, fmt.Errorf("recording mods: %w", err)
	}
	log.Debug("scanned mods", "instance", instancePath, "count", len(mods))
	return mods, nil
}

// mod returns the metadata of one archive, from the catalog when its hash
// is known.
func (c *Catalog) mod(path string) (domain.ModResource, error) {
	sum, err := minecraft.FileChecksum(path, minecraft.AlgoSHA1)
	if err != nil {
		return domain.ModResource{}, err
	}
	known, err := c.db.FindModByHash(sum)
	if err != nil {
		return domain.ModResource{Hash: sum}, err
	}
	if known != nil && known.Loader != "" {
		m := *known
		m.Name, m.Path = filepath.Base(path), path
		return m, nil
	}
	m, err := parseMod(path)
	m.Hash = sum
	return m, err
}

// ScanResourcePacks parses every pack of the instance and replaces the
// recorded list.
func (c *Catalog) ScanResourcePacks(ctx context.Context, instancePath string) ([]domain.ResourcePack, error) {
	entries, err := listDir(filepath.Join(instancePath, ResourcePacksDir), func(e os.DirEntry) bool {
		return e.IsDir() || strings.EqualFold(filepath.Ext(e.Name()), ".zip")
	})
	if err != nil {
		return nil, err
	}

	log := ctxlog.FromContext(ctx)
	var packs []domain.ResourcePack
	for _, path := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := ParsePack(path)
		if err != nil {
			log.Warn("reading resource pack", "path", path, "error", err)
			continue
		}
		packs = append(packs, p)
	}

	if err := c.db.ReplaceResourcePacks(instancePath, packs); err != nil {
		return nil, fmt.Errorf("recording resource packs: %w", err)
	}
	return packs, nil
}

// listDir returns the sorted paths of dir's entries accepted by keep. A
// missing directory is empty.
func listDir(dir string, keep func(os.DirEntry) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if keep(e) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
