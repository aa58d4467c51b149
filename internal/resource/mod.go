// Package resource reads mod and resource pack metadata from an instance
// and keeps a catalog of what was found.
package resource

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
)

// ErrNotAMod is returned for archives that carry no known mod metadata.
var ErrNotAMod = errors.New("no mod metadata found")

// modsToml is META-INF/mods.toml of modern forge mods.
type modsToml struct {
	ModLoader     string `toml:"modLoader"`
	LoaderVersion string `toml:"loaderVersion"`
	Mods          []struct {
		ModID       string `toml:"modId"`
		Version     string `toml:"version"`
		DisplayName string `toml:"displayName"`
	} `toml:"mods"`
	Dependencies map[string][]struct {
		ModID        string `toml:"modId"`
		Mandatory    bool   `toml:"mandatory"`
		Type         string `toml:"type"`
		VersionRange string `toml:"versionRange"`
	} `toml:"dependencies"`
}

// fabricMod is fabric.mod.json. Depends values are a string or a list of
// alternatives.
type fabricMod struct {
	ID      string                     `json:"id"`
	Version string                     `json:"version"`
	Name    string                     `json:"name"`
	Depends map[string]json.RawMessage `json:"depends"`
}

// mcmodInfo is one entry of a legacy forge mcmod.info.
type mcmodInfo struct {
	ModID        string   `json:"modid"`
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	MCVersion    string   `json:"mcversion"`
	RequiredMods []string `json:"requiredMods"`
	Dependencies []string `json:"dependencies"`
}

// liteMod is litemod.json.
type liteMod struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	MCVersion string `json:"mcversion"`
}

// ParseMod reads the metadata of the mod archive at path. Fabric metadata
// wins over forge metadata when a jar carries both.
func ParseMod(path string) (domain.ModResource, error) {
	m, err := parseMod(path)
	if err != nil {
		return m, err
	}
	if m.Hash, err = minecraft.FileChecksum(path, minecraft.AlgoSHA1); err != nil {
		return m, fmt.Errorf("hashing %s: %w", m.Name, err)
	}
	return m, nil
}

func parseMod(path string) (domain.ModResource, error) {
	m := domain.ModResource{Name: filepath.Base(path), Path: path}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return m, fmt.Errorf("opening %s: %w", m.Name, err)
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	switch {
	case entries["fabric.mod.json"] != nil:
		err = parseFabric(entries["fabric.mod.json"], &m)
	case entries["META-INF/mods.toml"] != nil:
		err = parseModsToml(entries["META-INF/mods.toml"], entries["META-INF/MANIFEST.MF"], &m)
	case entries["mcmod.info"] != nil:
		err = parseMcmodInfo(entries["mcmod.info"], &m)
	case entries["litemod.json"] != nil:
		err = parseLitemod(entries["litemod.json"], &m)
	default:
		err = ErrNotAMod
	}
	if err != nil {
		return m, fmt.Errorf("%s: %w", m.Name, err)
	}
	return m, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func parseFabric(f *zip.File, m *domain.ModResource) error {
	data, err := readEntry(f)
	if err != nil {
		return err
	}
	var fm fabricMod
	if err := json.Unmarshal(data, &fm); err != nil {
		return fmt.Errorf("parsing fabric.mod.json: %w", err)
	}
	m.Loader = domain.LoaderFabric
	m.ModID, m.Version = fm.ID, fm.Version

	ids := make([]string, 0, len(fm.Depends))
	for id := range fm.Depends {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if id == "minecraft" {
			m.AcceptedMinecraft = fabricRange(fm.Depends[id])
			continue
		}
		m.Depends = append(m.Depends, id)
	}
	return nil
}

// fabricRange joins list alternatives with "||".
func fabricRange(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var alts []string
	if json.Unmarshal(raw, &alts) == nil {
		return strings.Join(alts, " || ")
	}
	return ""
}

func parseModsToml(f, manifest *zip.File, m *domain.ModResource) error {
	data, err := readEntry(f)
	if err != nil {
		return err
	}
	var mt modsToml
	if _, err := toml.Decode(string(data), &mt); err != nil {
		return fmt.Errorf("parsing mods.toml: %w", err)
	}
	if len(mt.Mods) == 0 {
		return errors.New("mods.toml declares no mods")
	}
	m.Loader = domain.LoaderForge
	m.ModID, m.Version = mt.Mods[0].ModID, mt.Mods[0].Version
	if strings.Contains(m.Version, "${") && manifest != nil {
		if v := manifestAttr(manifest, "Implementation-Version"); v != "" {
			m.Version = v
		}
	}

	for _, dep := range mt.Dependencies[m.ModID] {
		required := dep.Mandatory || dep.Type == "required"
		switch {
		case dep.ModID == "minecraft":
			m.AcceptedMinecraft = dep.VersionRange
		case dep.ModID == "forge" || dep.ModID == "neoforge":
		case required:
			m.Depends = append(m.Depends, dep.ModID)
		}
	}
	return nil
}

func manifestAttr(f *zip.File, key string) string {
	data, err := readEntry(f)
	if err != nil {
		return ""
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if v, ok := strings.CutPrefix(sc.Text(), key+":"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func parseMcmodInfo(f *zip.File, m *domain.ModResource) error {
	data, err := readEntry(f)
	if err != nil {
		return err
	}
	var list []mcmodInfo
	if err := json.Unmarshal(data, &list); err != nil {
		var wrapped struct {
			ModList []mcmodInfo `json:"modList"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil {
			return fmt.Errorf("parsing mcmod.info: %w", err)
		}
		list = wrapped.ModList
	}
	if len(list) == 0 {
		return errors.New("mcmod.info declares no mods")
	}
	info := list[0]
	m.Loader = domain.LoaderForge
	m.ModID, m.Version = info.ModID, placeholderFree(info.Version)
	m.AcceptedMinecraft = placeholderFree(info.MCVersion)
	for _, dep := range append(info.RequiredMods, info.Dependencies...) {
		id, _, _ := strings.Cut(dep, "@")
		if id != "" && id != "Forge" && !slices.Contains(m.Depends, id) {
			m.Depends = append(m.Depends, id)
		}
	}
	return nil
}

func parseLitemod(f *zip.File, m *domain.ModResource) error {
	data, err := readEntry(f)
	if err != nil {
		return err
	}
	var lm liteMod
	if err := json.Unmarshal(data, &lm); err != nil {
		return fmt.Errorf("parsing litemod.json: %w", err)
	}
	m.Loader = domain.LoaderLiteloader
	m.ModID, m.Version = strings.ToLower(lm.Name), lm.Version
	m.AcceptedMinecraft = placeholderFree(lm.MCVersion)
	return nil
}

// placeholderFree drops unexpanded build placeholders like "${mcversion}".
func placeholderFree(s string) string {
	if strings.Contains(s, "${") {
		return ""
	}
	return s
}
