// file: logger/logger_test.go
package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLogger(dir))
	t.Cleanup(func() {
		_ = Close()
		_ = InitLogger("")
	})

	Info.Println("hello from the test")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "expected a single timestamped log file")

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO: ")
	assert.Contains(t, string(data), "hello from the test")
}

func TestSetLogLevel_ProductionDiscardsDebug(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitLogger(dir))
	t.Cleanup(func() {
		_ = Close()
		_ = InitLogger("")
	})

	SetLogLevel("production")
	Debug.Println("should not appear")
	SetLogLevel("development")
	Debug.Println("should appear")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should not appear")
	assert.Contains(t, string(data), "should appear")
}
