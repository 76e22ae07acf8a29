package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesAbsolute(t *testing.T) {
	base := t.TempDir()
	dir, err := EnsureDir(filepath.Join(base, "exports", "bookings"))
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestSafeName(t *testing.T) {
	require.Equal(t, "bookings.xlsx", SafeName("bookings.xlsx"))
	require.Equal(t, "passwd", SafeName("../../etc/passwd"))
	require.Equal(t, "report_2026_.pdf", SafeName("report 2026!.pdf"))
	require.Equal(t, "download", SafeName("  "))
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, "report.csv", []byte("a,b\n"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "report.csv"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a,b\n", string(b))
}
