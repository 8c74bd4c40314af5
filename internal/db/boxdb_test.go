package db_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poorboy44/bounding-boxes/internal/db"
	"github.com/poorboy44/bounding-boxes/internal/geo"
)

func TestWriteAndReadBack(t *testing.T) {
	boxes := []geo.BoundingBox{
		{West: -109, South: 37, East: -108.55, North: 37.35},
		{West: -108.55, South: 37, East: -108.1, North: 37.35},
		{West: -109, South: 37.35, East: -108.55, North: 37.7},
	}
	meta := db.Metadata{
		Area:      geo.StudyArea{West: -109, South: 37, East: -102, North: 41},
		Offset:    geo.Offset{Lat: 0.35, Lon: 0.45},
		Tag:       "colorado",
		BoxCount:  len(boxes),
		Generator: "boxgrid",
	}

	path := filepath.Join(t.TempDir(), "boxes.db")
	require.NoError(t, db.Write(path, boxes, meta))

	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer conn.Close()

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM boxes").Scan(&count))
	require.Equal(t, len(boxes), count)

	var west, south, east, north float64
	require.NoError(t, conn.QueryRow(
		"SELECT west, south, east, north FROM boxes ORDER BY id LIMIT 1").
		Scan(&west, &south, &east, &north))
	require.Equal(t, boxes[0], geo.BoundingBox{West: west, South: south, East: east, North: north})

	var tag string
	require.NoError(t, conn.QueryRow(
		"SELECT value FROM metadata WHERE name = 'tag'").Scan(&tag))
	require.Equal(t, "colorado", tag)

	var boxCount string
	require.NoError(t, conn.QueryRow(
		"SELECT value FROM metadata WHERE name = 'box_count'").Scan(&boxCount))
	require.Equal(t, "3", boxCount)
}

func TestWriteReplacesPreviousArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxes.db")
	meta := db.Metadata{
		Area:   geo.StudyArea{West: 0, South: 0.1, East: 1, North: 1},
		Offset: geo.Offset{Lat: 0.35, Lon: 0.35},
	}

	first := []geo.BoundingBox{
		{West: 0, South: 0.1, East: 0.35, North: 0.45},
		{West: 0.35, South: 0.1, East: 0.7, North: 0.45},
	}
	require.NoError(t, db.Write(path, first, meta))

	second := []geo.BoundingBox{{West: 0, South: 0.1, East: 0.35, North: 0.45}}
	require.NoError(t, db.Write(path, second, meta))

	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer conn.Close()

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM boxes").Scan(&count))
	require.Equal(t, 1, count)

	// No tag was supplied, so none is recorded.
	var tag string
	err = conn.QueryRow("SELECT value FROM metadata WHERE name = 'tag'").Scan(&tag)
	require.ErrorIs(t, err, sql.ErrNoRows)
}
