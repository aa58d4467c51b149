package minecraft

import (
	"os"
	"path/filepath"
)

// Folder is a Minecraft root directory laid out the way the official launcher
// lays it out.
type Folder struct {
	Root string
}

// NewFolder returns the layout rooted at root.
func NewFolder(root string) Folder {
	return Folder{Root: root}
}

func (f Folder) VersionsDir() string  { return filepath.Join(f.Root, "versions") }
func (f Folder) LibrariesDir() string { return filepath.Join(f.Root, "libraries") }
func (f Folder) AssetsDir() string    { return filepath.Join(f.Root, "assets") }

// ResourcePacksDir is the shared pack library deployed into instances.
func (f Folder) ResourcePacksDir() string { return filepath.Join(f.Root, "resourcepacks") }

// VersionDir returns versions/<id>.
func (f Folder) VersionDir(id string) string {
	return filepath.Join(f.VersionsDir(), id)
}

// VersionJSON returns versions/<id>/<id>.json.
func (f Folder) VersionJSON(id string) string {
	return filepath.Join(f.VersionDir(id), id+".json")
}

// VersionJar returns versions/<id>/<id>.jar.
func (f Folder) VersionJar(id string) string {
	return filepath.Join(f.VersionDir(id), id+".jar")
}

// InstallProfile returns versions/<id>/install_profile.json.
func (f Folder) InstallProfile(id string) string {
	return filepath.Join(f.VersionDir(id), "install_profile.json")
}

// NativesDir returns versions/<id>/natives.
func (f Folder) NativesDir(id string) string {
	return filepath.Join(f.VersionDir(id), "natives")
}

// LibraryPath joins a maven relative path onto libraries/.
func (f Folder) LibraryPath(rel string) string {
	return filepath.Join(f.LibrariesDir(), filepath.FromSlash(rel))
}

// AssetIndexPath returns assets/indexes/<id>.json.
func (f Folder) AssetIndexPath(id string) string {
	return filepath.Join(f.AssetsDir(), "indexes", id+".json")
}

// AssetObjectPath returns assets/objects/<first two hex chars>/<hash>.
func (f Folder) AssetObjectPath(hash string) string {
	prefix := hash
	if len(hash) >= 2 {
		prefix = hash[:2]
	}
	return filepath.Join(f.AssetsDir(), "objects", prefix, hash)
}

// ListVersionIDs returns the names of every directory under versions/.
func (f Folder) ListVersionIDs() ([]string, error) {
	entries, err := os.ReadDir(f.VersionsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}
