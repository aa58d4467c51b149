package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
)

// SaveServerStatus records the latest ping result of a server.
func (d *DB) SaveServerStatus(s domain.ServerStatus) error {
	mods, err := json.Marshal(s.Mods)
	if err != nil {
		return fmt.Errorf("encoding server mods: %w", err)
	}
	pinged := s.PingedAt
	if pinged.IsZero() {
		pinged = time.Now()
	}
	_, err = d.Exec(`
		INSERT INTO server_status (address, version, protocol, mods, pinged_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			version = excluded.version,
			protocol = excluded.protocol,
			mods = excluded.mods,
			pinged_at = excluded.pinged_at
	`, s.Address, s.Version, s.Protocol, string(mods), pinged.UTC())
	if err != nil {
		return fmt.Errorf("saving server status: %w", err)
	}
	return nil
}

// GetServerStatus returns the last recorded status of address. The bool is
// false when the server was never pinged.
func (d *DB) GetServerStatus(address string) (domain.ServerStatus, bool, error) {
	var s domain.ServerStatus
	var mods string
	err := d.QueryRow(`
		SELECT address, COALESCE(version, ''), protocol, COALESCE(mods, ''), pinged_at
		FROM server_status
		WHERE address = ?
	`, address).Scan(&s.Address, &s.Version, &s.Protocol, &mods, &s.PingedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, false, nil
	}
	if err != nil {
		return s, false, fmt.Errorf("getting server status: %w", err)
	}
	if mods != "" && mods != "null" {
		if err := json.Unmarshal([]byte(mods), &s.Mods); err != nil {
			return s, false, fmt.Errorf("decoding server mods: %w", err)
		}
	}
	return s, true, nil
}
