package db

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/poorboy44/bounding-boxes/internal/geo"
)

// Metadata describes one tiling run, stored alongside the boxes.
type Metadata struct {
	Area      geo.StudyArea
	Offset    geo.Offset
	Tag       string
	BoxCount  int
	Generator string
}

// InitDB creates a fresh boxes database at dbPath, replacing any previous
// run's artifact.
func InitDB(dbPath string) (*sql.DB, error) {
	os.Remove(dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE boxes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			west REAL NOT NULL,
			south REAL NOT NULL,
			east REAL NOT NULL,
			north REAL NOT NULL
		);
		CREATE TABLE metadata (
			name TEXT,
			value TEXT,
			PRIMARY KEY (name)
		);
		CREATE INDEX idx_boxes ON boxes (south, west);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// WriteBoxes inserts the box sequence in a single transaction.
func WriteBoxes(db *sql.DB, boxes []geo.BoundingBox) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO boxes (west, south, east, north) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, b := range boxes {
		if _, err := stmt.Exec(b.West, b.South, b.East, b.North); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// UpdateMetadata records the run parameters in the metadata table.
func UpdateMetadata(db *sql.DB, meta Metadata) error {
	bounds := fmt.Sprintf("%3.5f,%3.5f,%3.5f,%3.5f",
		meta.Area.West, meta.Area.South, meta.Area.East, meta.Area.North)

	rows := [][2]string{
		{"name", "bounding-boxes"},
		{"generator", meta.Generator},
		{"bounds", bounds},
		{"lat_offset", fmt.Sprintf("%g", meta.Offset.Lat)},
		{"initial_lon_offset", fmt.Sprintf("%g", meta.Offset.Lon)},
		{"box_count", fmt.Sprintf("%d", meta.BoxCount)},
	}
	if meta.Tag != "" {
		rows = append(rows, [2]string{"tag", meta.Tag})
	}

	for _, row := range rows {
		_, err := db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", row[0], row[1])
		if err != nil {
			return err
		}
	}
	return nil
}

// Write is the one-shot sink: create the database, store the boxes and the
// run metadata, close.
func Write(dbPath string, boxes []geo.BoundingBox, meta Metadata) error {
	database, err := InitDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := WriteBoxes(database, boxes); err != nil {
		return fmt.Errorf("failed to write boxes: %v", err)
	}
	if err := UpdateMetadata(database, meta); err != nil {
		return fmt.Errorf("failed to write metadata: %v", err)
	}
	return nil
}
