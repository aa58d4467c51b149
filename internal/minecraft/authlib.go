package minecraft

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AuthlibInjectorCoordinate is the maven coordinate the injector is stored
// under, without its version.
const AuthlibInjectorCoordinate = "org.to2mbn:authlibinjector"

// AuthlibInjection is the metadata file recorded next to the libraries after
// the injector was installed.
type AuthlibInjection struct {
	Version     string `json:"version"`
	BuildNumber int    `json:"build_number,omitempty"`
	DownloadURL string `json:"download_url"`
	Checksums   struct {
		SHA256 string `json:"sha256"`
	} `json:"checksums"`
}

// AuthlibInjectionPath returns the metadata file location.
func (f Folder) AuthlibInjectionPath() string {
	return filepath.Join(f.Root, "authlib-injection.json")
}

// AuthlibInjectorPath returns the library path of the given injector version.
func (f Folder) AuthlibInjectorPath(version string) string {
	c := Coordinate{Group: "org.to2mbn", Artifact: "authlibinjector", Version: version, Extension: "jar"}
	return f.LibraryPath(c.Path())
}

// ReadAuthlibInjection reads the metadata file.
func (f Folder) ReadAuthlibInjection() (*AuthlibInjection, error) {
	data, err := os.ReadFile(f.AuthlibInjectionPath())
	if err != nil {
		return nil, err
	}
	var a AuthlibInjection
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing authlib-injection.json: %w", err)
	}
	return &a, nil
}

// WriteAuthlibInjection stores the metadata file.
func (f Folder) WriteAuthlibInjection(a *AuthlibInjection) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(f.AuthlibInjectionPath(), data)
}

// AuthlibInjector returns the path of the installed injector when both its
// metadata and a sha256-valid jar are present.
func (f Folder) AuthlibInjector() (string, bool, error) {
	meta, err := f.ReadAuthlibInjection()
	if err != nil {
		// missing and unreadable metadata are both repaired by reinstalling
		return "", false, nil
	}
	path := f.AuthlibInjectorPath(meta.Version)
	state, err := CheckFile(path, SHA256(meta.Checksums.SHA256), 0)
	if err != nil && state != FileCorrupted {
		return "", false, err
	}
	return path, state == FileOK, nil
}
