package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.CSV"), []byte("xy"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.csv"), 0o755))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.CSV", files[0].Name)
	assert.Equal(t, int64(2), files[0].Size)
	assert.Equal(t, filepath.Join(dir, "b.csv"), files[1].Path)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.csv"), []byte("x"), 0o644))

	require.NoError(t, MarkProcessed(dir, "jan.csv"))

	_, err := os.Stat(filepath.Join(dir, "jan.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "processed", "jan.csv"))
	assert.NoError(t, err)

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, files, "processed files are not rescanned")
}

func TestCheckFile(t *testing.T) {
	assert.NoError(t, CheckFile("expenses.csv", ""))
	assert.NoError(t, CheckFile("EXPENSES.CSV", ""))
	assert.NoError(t, CheckFile("upload", "text/csv"))
	assert.NoError(t, CheckFile("upload", "text/csv; charset=utf-8"))

	err := CheckFile("expenses.xlsx", "application/vnd.ms-excel")
	assert.ErrorIs(t, err, ErrNotCSV)
	assert.ErrorIs(t, CheckFile("expenses", ""), ErrNotCSV)
}
