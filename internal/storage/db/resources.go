package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// Resource kinds stored in the resources table.
const (
	KindMod          = "mod"
	KindResourcePack = "resourcepack"
)

// ReplaceMods replaces the recorded mods of an instance with mods.
func (d *DB) ReplaceMods(instancePath string, mods []domain.ModResource) error {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM resources WHERE instance_path = ? AND kind = ?", instancePath, KindMod); err != nil {
		return fmt.Errorf("clearing mods: %w", err)
	}
	for _, m := range mods {
		depends, err := json.Marshal(m.Depends)
		if err != nil {
			return fmt.Errorf("encoding depends of %s: %w", m.Name, err)
		}
		_, err = tx.Exec(`
			INSERT INTO resources (instance_path, path, kind, name, sha1, loader, mod_id, version, accepted_minecraft, depends)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, instancePath, m.Path, KindMod, m.Name, m.Hash, m.Loader, m.ModID, m.Version, m.AcceptedMinecraft, string(depends))
		if err != nil {
			return fmt.Errorf("saving mod %s: %w", m.Name, err)
		}
	}
	return tx.Commit()
}

// GetMods returns the recorded mods of an instance ordered by name.
func (d *DB) GetMods(instancePath string) ([]domain.ModResource, error) {
	rows, err := d.Query(`
		SELECT name, path, sha1, COALESCE(loader, ''), COALESCE(mod_id, ''), COALESCE(version, ''),
			COALESCE(accepted_minecraft, ''), COALESCE(depends, '')
		FROM resources
		WHERE instance_path = ? AND kind = ?
		ORDER BY name
	`, instancePath, KindMod)
	if err != nil {
		return nil, fmt.Errorf("querying mods: %w", err)
	}
	defer rows.Close()

	var mods []domain.ModResource
	for rows.Next() {
		m, err := scanMod(rows)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

func scanMod(s interface{ Scan(...any) error }) (domain.ModResource, error) {
	var m domain.ModResource
	var depends string
	if err := s.Scan(&m.Name, &m.Path, &m.Hash, &m.Loader, &m.ModID, &m.Version, &m.AcceptedMinecraft, &depends); err != nil {
		return m, fmt.Errorf("scanning mod: %w", err)
	}
	if depends != "" && depends != "null" {
		if err := json.Unmarshal([]byte(depends), &m.Depends); err != nil {
			return m, fmt.Errorf("decoding depends of %s: %w", m.Name, err)
		}
	}
	return m, nil
}

// FindModByHash looks a mod up by file sha1 across all instances. It returns
// nil when no instance has recorded the file.
func (d *DB) FindModByHash(sha1 string) (*domain.ModResource, error) {
	row := d.QueryRow(`
		SELECT name, path, sha1, COALESCE(loader, ''), COALESCE(mod_id, ''), COALESCE(version, ''),
			COALESCE(accepted_minecraft, ''), COALESCE(depends, '')
		FROM resources
		WHERE sha1 = ? AND kind = ?
		ORDER BY scanned_at DESC
		LIMIT 1
	`, sha1, KindMod)
	m, err := scanMod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ReplaceResourcePacks replaces the recorded resource packs of an instance.
func (d *DB) ReplaceResourcePacks(instancePath string, packs []domain.ResourcePack) error {
	tx, err := d.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM resources WHERE instance_path = ? AND kind = ?", instancePath, KindResourcePack); err != nil {
		return fmt.Errorf("clearing resource packs: %w", err)
	}
	for _, p := range packs {
		_, err := tx.Exec(`
			INSERT INTO resources (instance_path, path, kind, name, sha1, pack_format, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, instancePath, p.Path, KindResourcePack, p.Name, p.Hash, p.PackFormat, p.Description)
		if err != nil {
			return fmt.Errorf("saving resource pack %s: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

// GetResourcePacks returns the recorded resource packs of an instance
// ordered by name.
func (d *DB) GetResourcePacks(instancePath string) ([]domain.ResourcePack, error) {
	rows, err := d.Query(`
		SELECT name, path, sha1, pack_format, COALESCE(description, '')
		FROM resources
		WHERE instance_path = ? AND kind = ?
		ORDER BY name
	`, instancePath, KindResourcePack)
	if err != nil {
		return nil, fmt.Errorf("querying resource packs: %w", err)
	}
	defer rows.Close()

	var packs []domain.ResourcePack
	for rows.Next() {
		var p domain.ResourcePack
		if err := rows.Scan(&p.Name, &p.Path, &p.Hash, &p.PackFormat, &p.Description); err != nil {
			return nil, fmt.Errorf("scanning resource pack: %w", err)
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}
