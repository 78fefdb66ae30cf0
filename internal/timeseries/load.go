package timeseries

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jgoulah/gridserve/internal/database"
	"github.com/jgoulah/gridserve/pkg/models"
)

// Load reads a data file and builds a Store from it. Files ending in .db,
// .sqlite or .sqlite3 are read as SQLite databases, anything else as CSV.
// Every failure is returned as a *LoadError.
func Load(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	var readings []models.Reading
	if isSQLite(path) {
		readings, err = loadSQLite(path)
	} else {
		readings, err = loadCSV(path)
	}
	if err != nil {
		le := &LoadError{Path: path, Err: err}
		var re *rowError
		if errors.As(err, &re) {
			le.Line, le.Err = re.line, re.err
		}
		return nil, le
	}

	return New(readings), nil
}

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func loadCSV(path string) ([]models.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

func loadSQLite(path string) ([]models.Reading, error) {
	db, err := database.OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.ListReadings(context.Background())
}
