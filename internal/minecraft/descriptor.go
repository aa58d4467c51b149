// Package minecraft reads and writes the on-disk version descriptor tree:
// version json files with their inheritsFrom chains, maven-laid-out
// libraries, asset indexes and objects, and staged installer profiles.
package minecraft

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Descriptor is a version json file.
type Descriptor struct {
	ID                 string              `json:"id"`
	InheritsFrom       string              `json:"inheritsFrom,omitempty"`
	Jar                string              `json:"jar,omitempty"`
	Type               string              `json:"type,omitempty"`
	Time               string              `json:"time,omitempty"`
	ReleaseTime        string              `json:"releaseTime,omitempty"`
	MainClass          string              `json:"mainClass,omitempty"`
	MinecraftArguments string              `json:"minecraftArguments,omitempty"`
	Arguments          *Arguments          `json:"arguments,omitempty"`
	Assets             string              `json:"assets,omitempty"`
	AssetIndex         *AssetIndexRef      `json:"assetIndex,omitempty"`
	Downloads          map[string]Download `json:"downloads,omitempty"`
	Libraries          []Library           `json:"libraries,omitempty"`
	JavaVersion        *JavaVersion        `json:"javaVersion,omitempty"`
}

// Arguments holds the modern split argument lists.
type Arguments struct {
	Game []Argument `json:"game,omitempty"`
	JVM  []Argument `json:"jvm,omitempty"`
}

// Argument is either a plain string or a rule-guarded list of values.
type Argument struct {
	Values []string
	Rules  []Rule
}

func (a *Argument) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Values = []string{s}
		return nil
	}
	var obj struct {
		Rules []Rule          `json:"rules"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("parsing argument: %w", err)
	}
	a.Rules = obj.Rules
	if err := json.Unmarshal(obj.Value, &s); err == nil {
		a.Values = []string{s}
		return nil
	}
	return json.Unmarshal(obj.Value, &a.Values)
}

func (a Argument) MarshalJSON() ([]byte, error) {
	if len(a.Rules) == 0 && len(a.Values) == 1 {
		return json.Marshal(a.Values[0])
	}
	return json.Marshal(struct {
		Rules []Rule   `json:"rules,omitempty"`
		Value []string `json:"value"`
	}{a.Rules, a.Values})
}

// Download is a remote file with its sha1 and size.
type Download struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url,omitempty"`
}

// AssetIndexRef points at an asset index file.
type AssetIndexRef struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1,omitempty"`
	Size      int64  `json:"size,omitempty"`
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url,omitempty"`
}

// JavaVersion is the runtime a version declares it needs.
type JavaVersion struct {
	Component    string `json:"component,omitempty"`
	MajorVersion int    `json:"majorVersion"`
}

// Library is a dependency entry. Name is a maven coordinate.
type Library struct {
	Name      string            `json:"name"`
	URL       string            `json:"url,omitempty"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Extract   json.RawMessage   `json:"extract,omitempty"`
	// SHA1 and Size are carried by some loader descriptors in place of downloads.
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// LibraryDownloads lists a library's main artifact and classifier artifacts.
type LibraryDownloads struct {
	Artifact    *Download           `json:"artifact,omitempty"`
	Classifiers map[string]Download `json:"classifiers,omitempty"`
}

// ReadDescriptor parses a version json file.
func ReadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDescriptor(data)
}

// ParseDescriptor parses version json bytes.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing version json: %w", err)
	}
	if d.ID == "" {
		return nil, fmt.Errorf("parsing version json: missing id")
	}
	return &d, nil
}

// WriteDescriptor writes d to versions/<id>/<id>.json through a temp file.
func (f Folder) WriteDescriptor(d *Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding version json: %w", err)
	}
	return WriteFileAtomic(f.VersionJSON(d.ID), data)
}

// WriteFileAtomic writes data to a sibling temp file and renames it into
// place. Concurrent writers of the same path each get their own temp file.
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	file, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	tmp := file.Name()
	defer os.Remove(tmp)

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("writing file: %w", err)
	}
	if err := file.Chmod(0644); err != nil {
		file.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming file: %w", err)
	}
	return nil
}
