package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "Add Coupons!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260302100000_add_coupons.sql"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "-- +goose Down")
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationBumpsCollidingVersion(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	first, err := createSQLMigration(dir, "one", now)
	require.NoError(t, err)
	second, err := createSQLMigration(dir, "two", now)
	require.NoError(t, err)

	assert.Equal(t, "20260302100000_one.sql", filepath.Base(first))
	assert.Equal(t, "20260302100001_two.sql", filepath.Base(second))
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRejectsEmptyNames(t *testing.T) {
	_, err := CreateSQLMigration("", "x")
	assert.Error(t, err)
	_, err = CreateSQLMigration(t.TempDir(), "!!!")
	assert.Error(t, err)
}
