package diagnose

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// fabricAPIIDs are the mod ids the Fabric API ships under.
var fabricAPIIDs = []string{"fabric", "fabric-api"}

func checkMods(ctx context.Context, e *Engine, inst domain.Instance) (domain.IssueReport, error) {
	rep := empty(CategoryMods)
	rt := inst.Runtime

	mods, err := e.deps.Resources.Mods(ctx, inst.Path)
	if err != nil {
		return nil, fmt.Errorf("listing mods: %w", err)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })

	game := gameVersion(rt.Minecraft)
	var (
		unknown, incompatible []domain.ModArgs
		forgeMods, fabricMods []string
		needAPI               []string
		haveAPI               bool
	)
	for _, m := range mods {
		switch m.Loader {
		case domain.LoaderForge:
			forgeMods = append(forgeMods, m.Name)
		case domain.LoaderFabric:
			fabricMods = append(fabricMods, m.Name)
			if slices.Contains(fabricAPIIDs, m.ModID) {
				haveAPI = true
			} else if slices.ContainsFunc(m.Depends, func(d string) bool { return slices.Contains(fabricAPIIDs, d) }) {
				needAPI = append(needAPI, m.Name)
			}
		}

		args := domain.ModArgs{Name: m.Name, ModID: m.ModID, Path: m.Path, Accepted: m.AcceptedMinecraft, Minecraft: rt.Minecraft}
		if m.AcceptedMinecraft == "" {
			unknown = append(unknown, args)
			continue
		}
		r, err := ParseRange(m.AcceptedMinecraft)
		if err != nil {
			unknown = append(unknown, args)
			continue
		}
		if game != nil && !r.Contains(game) {
			incompatible = append(incompatible, args)
		}
	}

	for _, a := range unknown {
		rep[domain.IssueUnknownMod] = append(rep[domain.IssueUnknownMod], domain.NewIssue(domain.IssueUnknownMod, a))
	}
	for _, a := range incompatible {
		rep[domain.IssueIncompatibleMod] = append(rep[domain.IssueIncompatibleMod], domain.NewIssue(domain.IssueIncompatibleMod, a))
	}
	if len(forgeMods) > 0 && rt.Forge == "" {
		rep[domain.IssueRequireForge] = []domain.Issue{domain.NewIssue(domain.IssueRequireForge, domain.RequireLoaderArgs{Loader: domain.LoaderForge, Mods: forgeMods})}
	}
	if len(fabricMods) > 0 && rt.FabricLoader == "" {
		rep[domain.IssueRequireFabric] = []domain.Issue{domain.NewIssue(domain.IssueRequireFabric, domain.RequireLoaderArgs{Loader: domain.LoaderFabric, Mods: fabricMods})}
	}
	if len(needAPI) > 0 && !haveAPI {
		rep[domain.IssueRequireFabricAPI] = []domain.Issue{domain.NewIssue(domain.IssueRequireFabricAPI, domain.RequireLoaderArgs{Loader: "fabric-api", Mods: needAPI})}
	}
	return rep, nil
}

// packFormats maps resource pack formats to the game versions that read them.
var packFormats = map[int]string{
	1:  "[1.6.1,1.9)",
	2:  "[1.9,1.11)",
	3:  "[1.11,1.13)",
	4:  "[1.13,1.15)",
	5:  "[1.15,1.16.2)",
	6:  "[1.16.2,1.17)",
	7:  "[1.17,1.18)",
	8:  "[1.18,1.19)",
	9:  "[1.19,1.19.3)",
	12: "[1.19.3]",
	13: "[1.19.4]",
	15: "[1.20,1.20.2)",
	18: "[1.20.2]",
	22: "[1.20.3,1.20.5)",
	32: "[1.20.5,1.21)",
	34: "[1.21,1.21.2)",
}

// PackFormatRange returns the accepted game-version range of a pack format,
// consulting overrides first.
func PackFormatRange(format int, overrides map[int]string) (string, bool) {
	if r, ok := overrides[format]; ok {
		return r, true
	}
	r, ok := packFormats[format]
	return r, ok
}

func checkResourcePacks(ctx context.Context, e *Engine, inst domain.Instance) (domain.IssueReport, error) {
	rep := empty(CategoryResourcePacks)
	game := gameVersion(inst.Runtime.Minecraft)
	if game == nil {
		return rep, nil
	}

	packs, err := e.deps.Resources.ResourcePacks(ctx, inst.Path)
	if err != nil {
		return nil, fmt.Errorf("listing resource packs: %w", err)
	}
	sort.Slice(packs, func(i, j int) bool { return packs[i].Name < packs[j].Name })

	for _, p := range packs {
		expr, ok := PackFormatRange(p.PackFormat, e.deps.PackFormats)
		if !ok {
			continue
		}
		r, err := ParseRange(expr)
		if err != nil {
			return nil, fmt.Errorf("pack format %d: %w", p.PackFormat, err)
		}
		if r.Contains(game) {
			continue
		}
		rep[domain.IssueIncompatibleResourcePack] = append(rep[domain.IssueIncompatibleResourcePack],
			domain.NewIssue(domain.IssueIncompatibleResourcePack, domain.ResourcePackArgs{
				Name:       p.Name,
				PackFormat: p.PackFormat,
				Accepted:   expr,
				Minecraft:  inst.Runtime.Minecraft,
			}))
	}
	return rep, nil
}
