package resource

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
)

// ErrNotAPack is returned when pack.mcmeta is absent.
var ErrNotAPack = errors.New("no pack.mcmeta found")

type packMeta struct {
	Pack struct {
		PackFormat  int             `json:"pack_format"`
		Description json.RawMessage `json:"description"`
	} `json:"pack"`
}

// ParsePack reads pack.mcmeta of a zipped or unpacked resource pack.
// Directory packs carry no hash.
func ParsePack(path string) (domain.ResourcePack, error) {
	p := domain.ResourcePack{Name: filepath.Base(path), Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return p, err
	}

	var data []byte
	if info.IsDir() {
		data, err = os.ReadFile(filepath.Join(path, "pack.mcmeta"))
		if errors.Is(err, os.ErrNotExist) {
			err = ErrNotAPack
		}
	} else {
		data, err = readPackZip(path)
	}
	if err != nil {
		return p, fmt.Errorf("%s: %w", p.Name, err)
	}

	var meta packMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return p, fmt.Errorf("%s: parsing pack.mcmeta: %w", p.Name, err)
	}
	p.PackFormat = meta.Pack.PackFormat
	p.Description = describe(meta.Pack.Description)

	if !info.IsDir() {
		if p.Hash, err = minecraft.FileChecksum(path, minecraft.AlgoSHA1); err != nil {
			return p, fmt.Errorf("hashing %s: %w", p.Name, err)
		}
	}
	return p, nil
}

func readPackZip(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == "pack.mcmeta" {
			return readEntry(f)
		}
	}
	return nil, ErrNotAPack
}

// describe flattens a text component to plain text.
func describe(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var comp struct {
		Text  string            `json:"text"`
		Extra []json.RawMessage `json:"extra"`
	}
	if json.Unmarshal(raw, &comp) == nil {
		out := comp.Text
		for _, e := range comp.Extra {
			out += describe(e)
		}
		return out
	}
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		out := ""
		for _, e := range list {
			out += describe(e)
		}
		return out
	}
	return ""
}
