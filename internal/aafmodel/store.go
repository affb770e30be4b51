package aafmodel

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// store persists the object graph to a SQLite database. Mobs serialize as
// one JSON payload per row so insertion order survives round trips.
type store struct {
	db   *sql.DB
	path string
}

func openStore(path string) (*store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open container store %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	st := &store{db: db, path: path}
	if err := st.applySchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *store) applySchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS header (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS mobs (
            position INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            payload TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS essence (
            mob_id TEXT PRIMARY KEY,
            data BLOB NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS definitions (
            kind TEXT NOT NULL,
            id TEXT NOT NULL,
            payload TEXT NOT NULL,
            PRIMARY KEY (kind, id)
        )`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply container schema: %w", err)
		}
	}
	return nil
}

func (s *store) close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *store) load(f *File) error {
	rows, err := s.db.Query(`SELECT payload FROM mobs ORDER BY position`)
	if err != nil {
		return fmt.Errorf("load mobs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scan mob row: %w", err)
		}
		mob := &Mob{}
		if err := json.Unmarshal([]byte(payload), mob); err != nil {
			return fmt.Errorf("decode mob payload: %w", err)
		}
		f.Content.AppendMob(mob)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate mobs: %w", err)
	}

	if err := s.loadEssence(f); err != nil {
		return err
	}
	if err := s.loadDefinitions(f); err != nil {
		return err
	}
	return s.loadHeader(f)
}

func (s *store) loadEssence(f *File) error {
	rows, err := s.db.Query(`SELECT mob_id, data FROM essence`)
	if err != nil {
		return fmt.Errorf("load essence: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mobID string
		var data []byte
		if err := rows.Scan(&mobID, &data); err != nil {
			return fmt.Errorf("scan essence row: %w", err)
		}
		f.Content.Essence = append(f.Content.Essence, &EssenceData{MobID: MobID(mobID), Data: data})
	}
	return rows.Err()
}

func (s *store) loadDefinitions(f *File) error {
	rows, err := s.db.Query(`SELECT kind, payload FROM definitions`)
	if err != nil {
		return fmt.Errorf("load definitions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return fmt.Errorf("scan definition row: %w", err)
		}
		switch kind {
		case "operation":
			var def OperationDef
			if err := json.Unmarshal([]byte(payload), &def); err != nil {
				return fmt.Errorf("decode operation def: %w", err)
			}
			f.Dictionary.RegisterOperation(def)
		case "parameter":
			var def ParameterDef
			if err := json.Unmarshal([]byte(payload), &def); err != nil {
				return fmt.Errorf("decode parameter def: %w", err)
			}
			f.Dictionary.RegisterParameter(def)
		case "interpolation":
			var def InterpolationDef
			if err := json.Unmarshal([]byte(payload), &def); err != nil {
				return fmt.Errorf("decode interpolation def: %w", err)
			}
			f.Dictionary.RegisterInterpolation(def)
		}
	}
	return rows.Err()
}

func (s *store) loadHeader(f *File) error {
	rows, err := s.db.Query(`SELECT key, value FROM header`)
	if err != nil {
		return fmt.Errorf("load header: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan header row: %w", err)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		f.Header[key] = decoded
	}
	return rows.Err()
}

func (s *store) save(f *File) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin container save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"mobs", "essence", "definitions", "header"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, mob := range f.Content.Mobs {
		payload, err := json.Marshal(mob)
		if err != nil {
			return fmt.Errorf("encode mob %s: %w", mob.ID, err)
		}
		if _, err := tx.Exec(`INSERT INTO mobs (id, payload) VALUES (?, ?)`, string(mob.ID), string(payload)); err != nil {
			return fmt.Errorf("insert mob %s: %w", mob.ID, err)
		}
	}

	for _, essence := range f.Content.Essence {
		if _, err := tx.Exec(`INSERT INTO essence (mob_id, data) VALUES (?, ?)`, string(essence.MobID), essence.Data); err != nil {
			return fmt.Errorf("insert essence %s: %w", essence.MobID, err)
		}
	}

	if err := saveDefinitions(tx, f.Dictionary); err != nil {
		return err
	}

	for key, value := range f.Header {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode header %s: %w", key, err)
		}
		if _, err := tx.Exec(`INSERT INTO header (key, value) VALUES (?, ?)`, key, string(encoded)); err != nil {
			return fmt.Errorf("insert header %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit container save: %w", err)
	}
	return nil
}

func saveDefinitions(tx *sql.Tx, dict *Dictionary) error {
	insert := func(kind, id string, def any) error {
		payload, err := json.Marshal(def)
		if err != nil {
			return fmt.Errorf("encode %s def %s: %w", kind, id, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO definitions (kind, id, payload) VALUES (?, ?, ?)`,
			kind, id, string(payload),
		); err != nil {
			return fmt.Errorf("insert %s def %s: %w", kind, id, err)
		}
		return nil
	}
	for id, def := range dict.Operations {
		if err := insert("operation", id, def); err != nil {
			return err
		}
	}
	for id, def := range dict.Parameters {
		if err := insert("parameter", id, def); err != nil {
			return err
		}
	}
	for id, def := range dict.Interpolations {
		if err := insert("interpolation", id, def); err != nil {
			return err
		}
	}
	return nil
}
