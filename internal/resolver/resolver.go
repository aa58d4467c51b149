// Package resolver maps a requested runtime composition to the installed
// version that launches it.
package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// Resolver caches the installed version list and resolves runtimes against it.
type Resolver struct {
	folder minecraft.Folder
	bus    *event.Bus

	mu     sync.RWMutex
	locals []domain.LocalVersion
}

// New creates a resolver over folder. bus may be nil.
func New(folder minecraft.Folder, bus *event.Bus) *Resolver {
	return &Resolver{folder: folder, bus: bus}
}

// Refresh rescans versions/ and publishes the new list.
func (r *Resolver) Refresh(ctx context.Context) ([]domain.LocalVersion, error) {
	locals, err := r.folder.ScanLocalVersions()
	if err != nil {
		return nil, fmt.Errorf("scanning versions: %w", err)
	}
	r.mu.Lock()
	r.locals = locals
	r.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("local versions refreshed", "count", len(locals))
	if r.bus != nil {
		event.Publish(r.bus, event.LocalVersionsChanged{Versions: locals})
	}
	return locals, nil
}

// Locals returns the cached installed versions.
func (r *Resolver) Locals() []domain.LocalVersion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.LocalVersion(nil), r.locals...)
}

// Resolve returns the id of the installed version matching target. When both
// forge and liteloader are requested and only separate installs exist, it
// writes a composite descriptor that merges both and returns its id. A missing
// component yields *domain.MissingComponentVersionError naming it.
func (r *Resolver) Resolve(target domain.RuntimeVersions) (string, error) {
	locals := r.Locals()
	mc := target.Minecraft
	if mc == "" {
		return "", r.missing(locals, domain.ComponentMinecraft, "", "")
	}

	var bases []domain.LocalVersion
	for _, v := range locals {
		if v.Minecraft == mc {
			bases = append(bases, v)
		}
	}
	if len(bases) == 0 {
		return "", r.missing(locals, domain.ComponentMinecraft, mc, "")
	}

	forge, lite, fabric := target.Forge, target.Liteloader, target.FabricLoader
	find := func(match func(domain.LocalVersion) bool) (domain.LocalVersion, bool) {
		for _, v := range bases {
			if match(v) {
				return v, true
			}
		}
		return domain.LocalVersion{}, false
	}
	hasForge := func(v domain.LocalVersion) bool { return v.Forge != "" && domain.SameForgeVersion(mc, v.Forge, forge) }
	hasLite := func(v domain.LocalVersion) bool {
		return v.Liteloader != "" && domain.SameLiteloaderVersion(v.Liteloader, lite)
	}
	hasFabric := func(v domain.LocalVersion) bool { return v.Fabric == fabric }

	switch {
	case forge == "" && lite == "" && fabric == "":
		if v, ok := find(func(v domain.LocalVersion) bool { return v.ID == mc }); ok {
			return v.ID, nil
		}
		if v, ok := find(func(v domain.LocalVersion) bool { return !v.HasLoader() }); ok {
			return v.ID, nil
		}
		return "", r.missing(locals, domain.ComponentMinecraft, mc, "")

	case fabric != "":
		if v, ok := find(func(v domain.LocalVersion) bool {
			return hasFabric(v) && (forge == "" || hasForge(v)) && (lite == "" || hasLite(v))
		}); ok {
			return v.ID, nil
		}
		if forge != "" {
			if _, ok := find(hasForge); !ok {
				return "", r.missing(locals, domain.ComponentForge, forge, mc)
			}
		}
		return "", r.missing(locals, domain.ComponentFabric, fabric, mc)

	case lite == "":
		if v, ok := find(func(v domain.LocalVersion) bool { return hasForge(v) && v.Liteloader == "" }); ok {
			return v.ID, nil
		}
		return "", r.missing(locals, domain.ComponentForge, forge, mc)

	case forge == "":
		if v, ok := find(func(v domain.LocalVersion) bool { return hasLite(v) && v.Forge == "" }); ok {
			return v.ID, nil
		}
		return "", r.missing(locals, domain.ComponentLiteloader, lite, mc)
	}

	if v, ok := find(func(v domain.LocalVersion) bool { return hasForge(v) && hasLite(v) }); ok {
		return v.ID, nil
	}
	fv, ok := find(func(v domain.LocalVersion) bool { return hasForge(v) && v.Liteloader == "" })
	if !ok {
		return "", r.missing(locals, domain.ComponentForge, forge, mc)
	}
	lv, ok := find(func(v domain.LocalVersion) bool { return hasLite(v) && v.Forge == "" })
	if !ok {
		return "", r.missing(locals, domain.ComponentLiteloader, lite, mc)
	}
	return r.compose(domain.RuntimeVersions{Minecraft: mc, Forge: forge, Liteloader: lite}, fv, lv)
}

// compose materializes the composite descriptor merging the forge and
// liteloader chains and records it as a local version.
func (r *Resolver) compose(target domain.RuntimeVersions, forge, lite domain.LocalVersion) (string, error) {
	id := target.ExpectedID()
	forgeChain, err := r.folder.Chain(forge.ID)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", forge.ID, err)
	}
	liteChain, err := r.folder.Chain(lite.ID)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", lite.ID, err)
	}
	d := minecraft.Compose(id, target.Minecraft, forgeChain, liteChain)
	if err := r.folder.WriteDescriptor(d); err != nil {
		return "", fmt.Errorf("writing composite %s: %w", id, err)
	}

	composite := domain.LocalVersion{
		ID:         id,
		Minecraft:  target.Minecraft,
		Folder:     r.folder.VersionDir(id),
		Forge:      forge.Forge,
		Liteloader: lite.Liteloader,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range r.locals {
		if v.ID == id {
			r.locals[i] = composite
			return id, nil
		}
	}
	r.locals = append(r.locals, composite)
	return id, nil
}

func (r *Resolver) missing(locals []domain.LocalVersion, c domain.Component, version, mc string) error {
	ids := make([]string, len(locals))
	for i, v := range locals {
		ids[i] = v.ID
	}
	var suggestions []string
	if version != "" {
		for _, m := range fuzzy.Find(version, ids) {
			suggestions = append(suggestions, m.Str)
			if len(suggestions) == maxSuggestions {
				break
			}
		}
	}
	return &domain.MissingComponentVersionError{Component: c, Version: version, Minecraft: mc, Suggestions: suggestions}
}
