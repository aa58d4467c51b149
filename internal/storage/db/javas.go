package db

import (
	"fmt"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// SaveJava records a probed java runtime, replacing any previous probe of
// the same path.
func (d *DB) SaveJava(j domain.JavaRecord) error {
	checked := j.CheckedAt
	if checked.IsZero() {
		checked = time.Now()
	}
	_, err := d.Exec(`
		INSERT INTO java_runtimes (path, version, major, arch, valid, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			version = excluded.version,
			major = excluded.major,
			arch = excluded.arch,
			valid = excluded.valid,
			checked_at = excluded.checked_at
	`, j.Path, j.Version, j.Major, j.Arch, j.Valid, checked.UTC())
	if err != nil {
		return fmt.Errorf("saving java %s: %w", j.Path, err)
	}
	return nil
}

// GetJavas returns every recorded runtime ordered by path.
func (d *DB) GetJavas() ([]domain.JavaRecord, error) {
	rows, err := d.Query(`
		SELECT path, COALESCE(version, ''), major, COALESCE(arch, ''), valid, checked_at
		FROM java_runtimes
		ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying javas: %w", err)
	}
	defer rows.Close()

	var javas []domain.JavaRecord
	for rows.Next() {
		var j domain.JavaRecord
		if err := rows.Scan(&j.Path, &j.Version, &j.Major, &j.Arch, &j.Valid, &j.CheckedAt); err != nil {
			return nil, fmt.Errorf("scanning java: %w", err)
		}
		javas = append(javas, j)
	}
	return javas, rows.Err()
}

// DeleteJava forgets a runtime.
func (d *DB) DeleteJava(path string) error {
	if _, err := d.Exec("DELETE FROM java_runtimes WHERE path = ?", path); err != nil {
		return fmt.Errorf("deleting java %s: %w", path, err)
	}
	return nil
}
