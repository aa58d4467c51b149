package minecraft

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultAssetHost serves asset objects.
const DefaultAssetHost = "https://resources.download.minecraft.net"

// AssetIndex is an assets/indexes/<id>.json file.
type AssetIndex struct {
	Objects        map[string]AssetObject `json:"objects"`
	Virtual        bool                   `json:"virtual,omitempty"`
	MapToResources bool                   `json:"map_to_resources,omitempty"`
}

// AssetObject is a content-addressed asset.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// NamedAsset pairs an index key with its object.
type NamedAsset struct {
	Name string
	AssetObject
}

// ReadAssetIndex parses an asset index file.
func ReadAssetIndex(path string) (*AssetIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx AssetIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing asset index: %w", err)
	}
	return &idx, nil
}

// Sorted returns the objects ordered by name.
func (idx *AssetIndex) Sorted() []NamedAsset {
	out := make([]NamedAsset, 0, len(idx.Objects))
	for name, obj := range idx.Objects {
		out = append(out, NamedAsset{Name: name, AssetObject: obj})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AssetURL returns the download url of an object on host.
func AssetURL(host, hash string) string {
	if len(hash) < 2 {
		return strings.TrimSuffix(host, "/") + "/" + hash
	}
	return strings.TrimSuffix(host, "/") + "/" + hash[:2] + "/" + hash
}
