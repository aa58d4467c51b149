package minecraft

import (
	"fmt"
	"strings"
)

// DefaultLibraryHost serves libraries that carry no explicit url.
const DefaultLibraryHost = "https://libraries.minecraft.net/"

// Coordinate is a parsed maven coordinate group:artifact:version[:classifier][@ext].
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseCoordinate parses a maven coordinate.
func ParseCoordinate(name string) (Coordinate, error) {
	c := Coordinate{Extension: "jar"}
	if at := strings.LastIndex(name, "@"); at >= 0 {
		c.Extension = name[at+1:]
		name = name[:at]
	}
	parts := strings.Split(name, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("invalid maven coordinate %q", name)
	}
	c.Group, c.Artifact, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	if c.Group == "" || c.Artifact == "" || c.Version == "" {
		return Coordinate{}, fmt.Errorf("invalid maven coordinate %q", name)
	}
	return c, nil
}

// Path returns the maven repository relative path.
func (c Coordinate) Path() string {
	file := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	file += "." + c.Extension
	return strings.ReplaceAll(c.Group, ".", "/") + "/" + c.Artifact + "/" + c.Version + "/" + file
}

// Key identifies a library independent of its version.
func (c Coordinate) Key() string {
	k := c.Group + ":" + c.Artifact
	if c.Classifier != "" {
		k += ":" + c.Classifier
	}
	return k
}

func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "jar" {
		s += "@" + c.Extension
	}
	return s
}

// ResolvedLibrary is a library artifact selected for a platform.
type ResolvedLibrary struct {
	Name   string // coordinate as declared
	Key    string
	Path   string // maven relative path, slash separated
	URL    string
	SHA1   string
	Size   int64
	Native bool
}

// ResolveLibraries applies rules and native classifier selection and returns
// the artifacts to place on disk. Unparseable coordinates are skipped.
func ResolveLibraries(libs []Library, p Platform) []ResolvedLibrary {
	var out []ResolvedLibrary
	for _, lib := range libs {
		if !p.Allowed(lib.Rules) {
			continue
		}
		coord, err := ParseCoordinate(lib.Name)
		if err != nil {
			continue
		}

		if lib.Natives != nil {
			classifier, ok := lib.Natives[p.Name]
			if !ok {
				continue
			}
			classifier = strings.ReplaceAll(classifier, "${arch}", archBits(p.Arch))
			nc := coord
			nc.Classifier = classifier
			r := ResolvedLibrary{Name: lib.Name, Key: nc.Key(), Path: nc.Path(), Native: true}
			if lib.Downloads != nil {
				if d, ok := lib.Downloads.Classifiers[classifier]; ok {
					r.URL, r.SHA1, r.Size = d.URL, d.SHA1, d.Size
					if d.Path != "" {
						r.Path = d.Path
					}
				}
			}
			if r.URL == "" {
				r.URL = joinURL(libraryBase(lib), r.Path)
			}
			out = append(out, r)
			// Some entries carry both a main artifact and natives.
			if lib.Downloads == nil || lib.Downloads.Artifact == nil {
				continue
			}
		}

		r := ResolvedLibrary{Name: lib.Name, Key: coord.Key(), Path: coord.Path(), SHA1: lib.SHA1, Size: lib.Size}
		if lib.Downloads != nil && lib.Downloads.Artifact != nil {
			a := lib.Downloads.Artifact
			r.URL, r.SHA1, r.Size = a.URL, a.SHA1, a.Size
			if a.Path != "" {
				r.Path = a.Path
			}
		}
		if r.URL == "" {
			r.URL = joinURL(libraryBase(lib), r.Path)
		}
		out = append(out, r)
	}
	return out
}

func libraryBase(lib Library) string {
	if lib.URL != "" {
		return lib.URL
	}
	return DefaultLibraryHost
}

func joinURL(base, rel string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rel, "/")
}

func archBits(arch string) string {
	if arch == "x86" {
		return "32"
	}
	return "64"
}
