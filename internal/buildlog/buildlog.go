package buildlog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/geodex-io/geodex/internal/core"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BuildLogManager struct {
	db *gorm.DB
}

// RunRecord is one generation run. Counts and duration are filled in when the
// run finishes; a record with a null duration belongs to a run that crashed.
type RunRecord struct {
	ID        string    `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	ManifestPath string
	Sources      int
	Fields       int
	AssetBytes   int64
	DurationMS   sql.NullInt64
	Error        string
}

const (
	buildLogSchemaVersion = 1
)

func NewBuildLogManager(dbFilePath string) (*BuildLogManager, error) {
	dbFileExists := true
	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "error checking build log db: %v\n", err)
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database")
		return nil, err
	}

	if needsMigration(dbFileExists, db) {
		if err := db.AutoMigrate(&RunRecord{}); err != nil {
			fmt.Fprintf(os.Stderr, "error auto-migrating database schema: %v\n", err)
			return nil, err
		}
		if err := writeSchemaVersion(buildLogSchemaVersion); err != nil {
			fmt.Fprintf(os.Stderr, "error writing build log schema version: %v\n", err)
			return nil, err
		}
	}

	return &BuildLogManager{
		db: db,
	}, nil
}

func needsMigration(dbFileExists bool, db *gorm.DB) bool {
	if !dbFileExists {
		return true
	}

	versionMatches, err := schemaVersionMatches()
	if err != nil || !versionMatches {
		return true
	}

	// If the version marker is present but the table is missing (corruption or manual deletion),
	// re-run migrations to restore the schema.
	return !db.Migrator().HasTable(&RunRecord{})
}

func writeSchemaVersion(version int) error {
	versionPath := schemaVersionPath()
	return os.WriteFile(versionPath, []byte(strconv.Itoa(version)), 0644)
}

func schemaVersionMatches() (bool, error) {
	versionPath := schemaVersionPath()
	data, err := os.ReadFile(versionPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err != nil {
		return false, err
	}
	trimmed := strings.TrimSpace(string(data))
	version, err := strconv.Atoi(trimmed)
	if err != nil {
		return false, err
	}
	if version != buildLogSchemaVersion {
		return false, fmt.Errorf("build log schema version mismatch: got %d, want %d", version, buildLogSchemaVersion)
	}
	return true, nil
}

func schemaVersionPath() string {
	return filepath.Join(core.DataDir(), "buildlog_schema_version")
}

func (buildLogManager *BuildLogManager) StartRun(manifestPath string) (*RunRecord, error) {
	record := RunRecord{
		ID:           uuid.NewString(),
		ManifestPath: manifestPath,
	}

	result := buildLogManager.db.Create(&record)
	if result.Error != nil {
		return nil, result.Error
	}

	return &record, nil
}

func (buildLogManager *BuildLogManager) FinishRun(
	record *RunRecord,
	sources int,
	fields int,
	assetBytes int64,
	runErr error,
) (*RunRecord, error) {
	record.Sources = sources
	record.Fields = fields
	record.AssetBytes = assetBytes
	record.DurationMS = sql.NullInt64{Int64: time.Since(record.CreatedAt).Milliseconds(), Valid: true}
	if runErr != nil {
		record.Error = runErr.Error()
	}

	result := buildLogManager.db.Save(record)
	if result.Error != nil {
		return nil, result.Error
	}

	return record, nil
}

func (buildLogManager *BuildLogManager) GetRecentRuns(limit int) ([]RunRecord, error) {
	var records []RunRecord
	result := buildLogManager.db.Order("created_at desc").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	slices.Reverse(records)
	return records, nil
}

func (buildLogManager *BuildLogManager) ResetRuns() error {
	result := buildLogManager.db.Exec("DELETE FROM run_records")
	if result.Error != nil {
		return result.Error
	}

	return nil
}
