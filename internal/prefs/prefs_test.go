package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.Equal(t, Prefs{}, Load(""))
}

func TestLoadReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "crmx")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "theme = \"light\"\npage_size = 25\nhidden_columns = [\"gender\"]\nsort = \"aum:desc\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(content), 0o644))

	assert.Equal(t, Prefs{Theme: "light", PageSize: 25, HiddenColumns: []string{"gender"}, Sort: "aum:desc"}, Load(""))
}

func TestLoadMalformedDegradesGracefully(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = [unterminated"), 0o644))
	assert.Equal(t, Prefs{}, Load(path))
}

func TestLoadNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"  warm \"\npage_size = -3\n"), 0o644))
	assert.Equal(t, Prefs{Theme: "warm"}, Load(path))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")
	want := Prefs{Theme: "dark", PageSize: 5, HiddenColumns: []string{"age", "relevance"}, Sort: "name:asc"}

	require.NoError(t, Save(path, want))
	assert.Equal(t, want, Load(path))
}

func TestSaveOmitsZeroFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, Save(path, Prefs{Theme: "dark"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "theme = ")
	assert.Contains(t, string(data), "dark")
	assert.NotContains(t, string(data), "page_size")
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/x/prefs.toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "prefs.toml"), got)

	_, err = expandPath("  ")
	require.Error(t, err)
	assert.Equal(t, "~/.config/crmx/prefs.toml", DefaultPath())
}
