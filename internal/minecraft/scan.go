package minecraft

import (
	"regexp"
	"sort"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

var (
	forgeLibrary      = regexp.MustCompile(`^net\.minecraftforge:(forge|fmlloader|minecraftforge)$`)
	fabricLibrary     = regexp.MustCompile(`^net\.fabricmc:fabric-loader$`)
	optifineLibrary   = regexp.MustCompile(`^optifine:(OptiFine|Optifine)$`)
	liteloaderLibrary = regexp.MustCompile(`^com\.mumfrey:liteloader$`)
)

// Loaders holds the loader versions found in a library list. Absent loaders
// are empty strings.
type Loaders struct {
	Forge      string
	Fabric     string
	Liteloader string
	Optifine   string
}

// DetectLoaders inspects library coordinates for loader-identifying entries.
func DetectLoaders(libs []Library) Loaders {
	var l Loaders
	for _, lib := range libs {
		c, err := ParseCoordinate(lib.Name)
		if err != nil {
			continue
		}
		ga := c.Group + ":" + c.Artifact
		switch {
		case forgeLibrary.MatchString(ga) && l.Forge == "":
			l.Forge = c.Version
		case fabricLibrary.MatchString(ga):
			l.Fabric = c.Version
		case liteloaderLibrary.MatchString(ga):
			l.Liteloader = c.Version
		case optifineLibrary.MatchString(ga):
			l.Optifine = c.Version
		}
	}
	return l
}

// ScanLocalVersions reads every installed version and records its base game
// and detected loaders. Versions whose chain is broken are skipped; the
// version check reports them.
func (f Folder) ScanLocalVersions() ([]domain.LocalVersion, error) {
	ids, err := f.ListVersionIDs()
	if err != nil {
		return nil, err
	}
	var out []domain.LocalVersion
	for _, id := range ids {
		chain, err := f.Chain(id)
		if err != nil {
			continue
		}
		var all [][]Library
		for i := len(chain) - 1; i >= 0; i-- {
			all = append(all, chain[i].Libraries)
		}
		l := DetectLoaders(MergeLibraries(all...))
		out = append(out, domain.LocalVersion{
			ID:         id,
			Minecraft:  chain[len(chain)-1].ID,
			Folder:     f.VersionDir(id),
			Forge:      l.Forge,
			Fabric:     l.Fabric,
			Liteloader: l.Liteloader,
			Optifine:   l.Optifine,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
