// Package database persists projects and the media library in SQLite. A
// project row stores the settings and clip list as the same JSON the
// manifest protocol uses, so a saved project is a superset-compatible
// document of an exported manifest.
package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fluxcut/internal/manifest"
	"fluxcut/pkg/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Database wraps a *sql.DB with the application's persistence helpers. It
// is safe for concurrent use because the underlying *sql.DB is.
type Database struct {
	conn   *sql.DB
	logger *logrus.Logger

	saveProjectStmt   *sql.Stmt
	loadProjectStmt   *sql.Stmt
	deleteProjectStmt *sql.Stmt
	upsertMediaStmt   *sql.Stmt
	removeMediaStmt   *sql.Stmt
}

// New opens (or creates) the SQLite database at the given path, applies
// performance pragmas, and ensures the schema exists. Caller should
// Close() it when finished.
func New(dbPath string) (*Database, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	conn, err := sql.Open("sqlite3", dbPath+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(15 * time.Minute)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA temp_store=memory;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			logger.WithError(err).WithField("pragma", pragma).Warn("Failed to set pragma")
		}
	}

	db := &Database{conn: conn, logger: logger}

	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := db.prepareStatements(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	logger.WithField("db_path", dbPath).Info("Database initialized")
	return db, nil
}

// createTables is idempotent and safe to call on every startup.
func (db *Database) createTables() error {
	projectsTable := `
	CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	mediaTable := `
	CREATE TABLE IF NOT EXISTS media_items (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		size INTEGER NOT NULL,
		type TEXT NOT NULL,
		duration_frames INTEGER DEFAULT 0,
		probed BOOLEAN DEFAULT FALSE,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	for _, stmt := range []string{projectsTable, mediaTable} {
		if _, err := db.conn.Exec(stmt); err != nil {
			return err
		}
	}

	indices := []string{
		"CREATE INDEX IF NOT EXISTS idx_media_filename ON media_items(filename);",
		"CREATE INDEX IF NOT EXISTS idx_media_type ON media_items(type);",
	}
	for _, idx := range indices {
		if _, err := db.conn.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) prepareStatements() error {
	var err error

	db.saveProjectStmt, err = db.conn.Prepare(`
		INSERT INTO projects (name, document, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return err
	}

	db.loadProjectStmt, err = db.conn.Prepare("SELECT document FROM projects WHERE name = ?")
	if err != nil {
		return err
	}

	db.deleteProjectStmt, err = db.conn.Prepare("DELETE FROM projects WHERE name = ?")
	if err != nil {
		return err
	}

	db.upsertMediaStmt, err = db.conn.Prepare(`
		INSERT INTO media_items (id, path, filename, size, type, duration_frames, probed) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename = excluded.filename,
			size = excluded.size,
			type = excluded.type,
			duration_frames = excluded.duration_frames,
			probed = excluded.probed`)
	if err != nil {
		return err
	}

	db.removeMediaStmt, err = db.conn.Prepare("DELETE FROM media_items WHERE path = ?")
	return err
}

// SaveProject stores the project under its name, overwriting any previous
// save. The document is the manifest JSON of the current state.
func (db *Database) SaveProject(name string, m manifest.Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode project document: %w", err)
	}
	if _, err := db.saveProjectStmt.Exec(name, string(data)); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	db.logger.WithField("project", name).Info("Project saved")
	return nil
}

// LoadProject retrieves a saved project document by name.
func (db *Database) LoadProject(name string) (manifest.Manifest, error) {
	var doc string
	if err := db.loadProjectStmt.QueryRow(name).Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return manifest.Manifest{}, fmt.Errorf("project %q not found", name)
		}
		return manifest.Manifest{}, fmt.Errorf("failed to load project: %w", err)
	}
	var m manifest.Manifest
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return manifest.Manifest{}, fmt.Errorf("failed to parse project document: %w", err)
	}
	return m, nil
}

// ListProjects returns saved project names, most recently updated first.
func (db *Database) ListProjects() ([]string, error) {
	rows, err := db.conn.Query("SELECT name FROM projects ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteProject removes a saved project.
func (db *Database) DeleteProject(name string) error {
	res, err := db.deleteProjectStmt.Exec(name)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %q not found", name)
	}
	return nil
}

// UpsertMediaItem stores or refreshes a media-pool entry.
func (db *Database) UpsertMediaItem(item models.MediaItem) error {
	_, err := db.upsertMediaStmt.Exec(item.ID, item.Path, item.Filename, item.Size, string(item.Type), item.DurationFrames, item.Probed)
	if err != nil {
		return fmt.Errorf("failed to upsert media item: %w", err)
	}
	return nil
}

// RemoveMediaItem deletes a media-pool entry by path.
func (db *Database) RemoveMediaItem(path string) error {
	if _, err := db.removeMediaStmt.Exec(path); err != nil {
		return fmt.Errorf("failed to remove media item: %w", err)
	}
	return nil
}

// ListMediaItems returns every stored media-pool entry ordered by filename.
func (db *Database) ListMediaItems() ([]models.MediaItem, error) {
	rows, err := db.conn.Query(`
		SELECT id, path, filename, size, type, duration_frames, probed
		FROM media_items ORDER BY filename`)
	if err != nil {
		return nil, fmt.Errorf("failed to list media items: %w", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		var item models.MediaItem
		var mediaType string
		if err := rows.Scan(&item.ID, &item.Path, &item.Filename, &item.Size, &mediaType, &item.DurationFrames, &item.Probed); err != nil {
			return nil, err
		}
		item.Type = models.MediaType(mediaType)
		items = append(items, item)
	}
	return items, rows.Err()
}

// Close releases prepared statements and the connection.
func (db *Database) Close() error {
	for _, stmt := range []*sql.Stmt{
		db.saveProjectStmt, db.loadProjectStmt, db.deleteProjectStmt,
		db.upsertMediaStmt, db.removeMediaStmt,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return db.conn.Close()
}
