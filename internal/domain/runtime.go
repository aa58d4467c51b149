package domain

import "strings"

// RuntimeVersions is the desired composition of an instance: base game plus
// optional loaders. Absent components are empty strings.
type RuntimeVersions struct {
	Minecraft    string `yaml:"minecraft" json:"minecraft"`
	Forge        string `yaml:"forge,omitempty" json:"forge,omitempty"`
	FabricLoader string `yaml:"fabric_loader,omitempty" json:"fabricLoader,omitempty"`
	Yarn         string `yaml:"yarn,omitempty" json:"yarn,omitempty"`
	Liteloader   string `yaml:"liteloader,omitempty" json:"liteloader,omitempty"`
	Optifine     string `yaml:"optifine,omitempty" json:"optifine,omitempty"`
}

// IsZero reports whether no component is requested at all.
func (r RuntimeVersions) IsZero() bool {
	return r == RuntimeVersions{}
}

// ExpectedID returns the version id a full install of r is expected to carry.
// Components are appended in a fixed order so the id is stable.
func (r RuntimeVersions) ExpectedID() string {
	var b strings.Builder
	b.WriteString(r.Minecraft)
	if r.Forge != "" {
		b.WriteString("-forge")
		b.WriteString(r.Forge)
	}
	if r.Liteloader != "" {
		b.WriteString("-liteloader")
		b.WriteString(r.Liteloader)
	}
	if r.FabricLoader != "" {
		b.WriteString("-fabric")
		b.WriteString(r.FabricLoader)
	}
	if r.Optifine != "" {
		b.WriteString("-optifine_")
		b.WriteString(r.Optifine)
	}
	return b.String()
}

// LocalVersion is a version installed under versions/. Loader fields hold the
// detected loader version, or "" when the loader is not part of the chain.
type LocalVersion struct {
	ID         string `json:"id"`
	Minecraft  string `json:"minecraft"`
	Folder     string `json:"folder"`
	Forge      string `json:"forge"`
	Fabric     string `json:"fabric"`
	Liteloader string `json:"liteloader"`
	Optifine   string `json:"optifine"`
}

// HasLoader reports whether any loader was detected in the version's chain.
func (v LocalVersion) HasLoader() bool {
	return v.Forge != "" || v.Fabric != "" || v.Liteloader != "" || v.Optifine != ""
}

// SameForgeVersion reports whether a detected forge library version matches a
// requested forge version for game version minecraft. Installers commonly
// prefix or suffix the game version ("1.12.2-14.23.5.2859",
// "1.7.10-10.13.4.1614-1.7.10"); both are stripped before comparing.
func SameForgeVersion(minecraft, detected, requested string) bool {
	strip := func(s string) string {
		if minecraft == "" {
			return s
		}
		s = strings.TrimPrefix(s, minecraft+"-")
		return strings.TrimSuffix(s, "-"+minecraft)
	}
	return strip(detected) == strip(requested)
}

// SameLiteloaderVersion reports whether a detected liteloader library version
// satisfies a requested one. Library versions often carry the game version
// and a snapshot suffix ("1.12.2-SNAPSHOT" for "1.12").
func SameLiteloaderVersion(detected, requested string) bool {
	if detected == requested {
		return true
	}
	d := strings.TrimSuffix(detected, "-SNAPSHOT")
	return d == requested || strings.HasPrefix(d, requested+".") || strings.HasPrefix(d, requested+"-")
}
