package minecraft

import (
	"errors"
	"fmt"
	"os"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// DescriptorError reports a version json in a chain that is missing or does
// not parse.
type DescriptorError struct {
	ID      string
	Path    string
	Missing bool
	Err     error
}

func (e *DescriptorError) Error() string {
	if e.Missing {
		return fmt.Sprintf("version %s: descriptor not found at %s", e.ID, e.Path)
	}
	return fmt.Sprintf("version %s: %v", e.ID, e.Err)
}

func (e *DescriptorError) Unwrap() error {
	if e.Missing {
		return domain.ErrVersionNotFound
	}
	return e.Err
}

// Chain reads id and every inheritsFrom ancestor, leaf first. A loop in the
// chain returns domain.ErrDependencyLoop.
func (f Folder) Chain(id string) ([]*Descriptor, error) {
	// 0 = unvisited, 1 = visiting
	state := make(map[string]int)
	var chain []*Descriptor

	for cur := id; cur != ""; {
		if state[cur] == 1 {
			return nil, fmt.Errorf("resolving %s: %w", id, domain.ErrDependencyLoop)
		}
		state[cur] = 1

		path := f.VersionJSON(cur)
		d, err := ReadDescriptor(path)
		if err != nil {
			return chain, &DescriptorError{ID: cur, Path: path, Missing: errors.Is(err, os.ErrNotExist), Err: err}
		}
		chain = append(chain, d)
		cur = d.InheritsFrom
	}
	return chain, nil
}

// ResolvedVersion is a chain flattened into what is needed to verify and
// launch it.
type ResolvedVersion struct {
	ID                 string
	Minecraft          string   // id of the chain root
	Chain              []string // ids, leaf first
	JarID              string   // version folder holding the main jar
	Type               string
	MainClass          string
	Assets             string
	AssetIndex         *AssetIndexRef
	Client             *Download
	Libraries          []ResolvedLibrary
	GameArgs           []Argument
	JVMArgs            []Argument
	MinecraftArguments string
	JavaVersion        *JavaVersion
}

// Resolve reads and flattens the chain of id for platform p.
func (f Folder) Resolve(id string, p Platform) (*ResolvedVersion, error) {
	chain, err := f.Chain(id)
	if err != nil {
		return nil, err
	}
	return Flatten(chain, p), nil
}

// Flatten merges a leaf-first chain. Descendants override scalar fields,
// their libraries replace inherited ones with the same key, and argument
// lists are appended after inherited ones.
func Flatten(chain []*Descriptor, p Platform) *ResolvedVersion {
	r := &ResolvedVersion{}
	if len(chain) == 0 {
		return r
	}
	for _, d := range chain {
		r.Chain = append(r.Chain, d.ID)
	}
	root := chain[len(chain)-1]
	r.ID = chain[0].ID
	r.Minecraft = root.ID
	r.JarID = root.ID

	var libs [][]Library
	for i := len(chain) - 1; i >= 0; i-- {
		d := chain[i]
		if d.Jar != "" {
			r.JarID = d.Jar
		}
		if d.Type != "" {
			r.Type = d.Type
		}
		if d.MainClass != "" {
			r.MainClass = d.MainClass
		}
		if d.Assets != "" {
			r.Assets = d.Assets
		}
		if d.AssetIndex != nil {
			r.AssetIndex = d.AssetIndex
		}
		if c, ok := d.Downloads["client"]; ok {
			r.Client = &c
		}
		if d.MinecraftArguments != "" {
			r.MinecraftArguments = d.MinecraftArguments
		}
		if d.Arguments != nil {
			r.GameArgs = append(r.GameArgs, d.Arguments.Game...)
			r.JVMArgs = append(r.JVMArgs, d.Arguments.JVM...)
		}
		if d.JavaVersion != nil {
			r.JavaVersion = d.JavaVersion
		}
		libs = append(libs, d.Libraries)
	}
	if r.Assets == "" && r.AssetIndex != nil {
		r.Assets = r.AssetIndex.ID
	}
	r.Libraries = ResolveLibraries(MergeLibraries(libs...), p)
	return r
}
