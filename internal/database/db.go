package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jgoulah/gridserve/internal/isotime"
	"github.com/jgoulah/gridserve/pkg/models"
	_ "modernc.org/sqlite"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// OpenReadOnly opens an existing database without creating or migrating it
func OpenReadOnly(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	// No uniqueness on timestamp: repeated readings are kept as data.
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		energy_usage REAL NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_readings_timestamp ON readings(timestamp);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// InsertReadings inserts all readings in a single transaction, preserving their order
func (db *DB) InsertReadings(ctx context.Context, readings []models.Reading) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO readings (timestamp, energy_usage, created_at)
	VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	createdAt := time.Now().UTC().Format(time.RFC3339)
	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, isotime.Format(r.Timestamp), r.EnergyUsage, createdAt); err != nil {
			return fmt.Errorf("inserting reading %s: %w", isotime.Format(r.Timestamp), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing readings: %w", err)
	}
	return nil
}

// ListReadings retrieves all readings in insertion order
func (db *DB) ListReadings(ctx context.Context) ([]models.Reading, error) {
	query := `
	SELECT id, timestamp, energy_usage
	FROM readings
	ORDER BY id ASC
	`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	var results []models.Reading
	for rows.Next() {
		var (
			id    int64
			tsStr string
			r     models.Reading
		)
		if err := rows.Scan(&id, &tsStr, &r.EnergyUsage); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r.Timestamp, err = isotime.Parse(tsStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing timestamp: %w", id, err)
		}

		results = append(results, r)
	}

	return results, rows.Err()
}

// Count returns the number of stored readings
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting readings: %w", err)
	}
	return n, nil
}
