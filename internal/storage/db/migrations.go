package db

import "fmt"

func (d *DB) migrate() error {
	if _, err := d.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	version, err := d.SchemaVersion()
	if err != nil {
		return err
	}

	migrations := []func(*DB) error{
		migrateV1,
		migrateV2,
		migrateV3,
		migrateV4,
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](d); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := d.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

func execAll(d *DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := d.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:min(len(stmt), 50)], err)
		}
	}
	return nil
}

func migrateV1(d *DB) error {
	return execAll(d, []string{
		`CREATE TABLE resources (
			instance_path TEXT NOT NULL,
			path TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			sha1 TEXT NOT NULL,
			loader TEXT,
			mod_id TEXT,
			version TEXT,
			accepted_minecraft TEXT,
			depends TEXT,
			pack_format INTEGER DEFAULT 0,
			description TEXT,
			scanned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY(instance_path, path)
		)`,
		`CREATE INDEX idx_resources_sha1 ON resources(sha1)`,
		`CREATE INDEX idx_resources_instance_kind ON resources(instance_path, kind)`,
	})
}

func migrateV2(d *DB) error {
	return execAll(d, []string{
		`CREATE TABLE java_runtimes (
			path TEXT PRIMARY KEY,
			version TEXT,
			major INTEGER DEFAULT 0,
			arch TEXT,
			valid INTEGER DEFAULT 0,
			checked_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	})
}

func migrateV3(d *DB) error {
	return execAll(d, []string{
		`CREATE TABLE server_status (
			address TEXT PRIMARY KEY,
			version TEXT,
			protocol INTEGER DEFAULT 0,
			mods TEXT,
			pinged_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	})
}

func migrateV4(d *DB) error {
	return execAll(d, []string{
		`CREATE TABLE install_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			operation TEXT NOT NULL,
			target TEXT NOT NULL,
			state TEXT NOT NULL,
			error TEXT,
			finished_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX idx_install_history_finished ON install_history(finished_at)`,
	})
}
