package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Alias1177/Oracle/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// New opens a PostgreSQL connection and prepares the sphere tables.
func New(connStr string) (*DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sphere_snapshots (
			sphere_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			version INT NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

// SaveSnapshot upserts one sphere's versioned envelope.
func (db *DB) SaveSnapshot(snap models.SphereSnapshot, payload []byte) error {
	_, err := db.Exec(`
		INSERT INTO sphere_snapshots (sphere_id, name, version, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sphere_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			version = EXCLUDED.version,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, snap.ID, snap.Config.Name, snap.Version, payload, time.Now())
	if err != nil {
		return fmt.Errorf("saving sphere %q: %w", snap.Config.Name, err)
	}
	return nil
}

// LoadSnapshot reads one sphere's envelope by id, or nil when absent.
func (db *DB) LoadSnapshot(sphereID string) ([]byte, error) {
	var payload []byte
	err := db.QueryRow(`
		SELECT payload FROM sphere_snapshots WHERE sphere_id = $1
	`, sphereID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payload, nil
}

// LoadAllSnapshots reads every persisted sphere envelope.
func (db *DB) LoadAllSnapshots() ([][]byte, error) {
	rows, err := db.Query(`SELECT payload FROM sphere_snapshots ORDER BY sphere_id`)
	if err != nil {
		return nil, fmt.Errorf("loading sphere snapshots: %w", err)
	}
	defer rows.Close()

	var payloads [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	return payloads, rows.Err()
}

// DeleteSnapshot removes a retired sphere's envelope.
func (db *DB) DeleteSnapshot(sphereID string) error {
	_, err := db.Exec(`DELETE FROM sphere_snapshots WHERE sphere_id = $1`, sphereID)
	return err
}
