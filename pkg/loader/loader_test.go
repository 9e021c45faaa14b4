package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"json array", `[{"id": "1"}]`, FormatJSON},
		{"json object", `{"customers": []}`, FormatJSON},
		{"ndjson", "{\"id\": \"1\"}\n{\"id\": \"2\"}", FormatNDJSON},
		{"yaml list", "- id: 1\n  name: Alice\n- id: 2\n  name: Bob", FormatYAML},
		{"multi doc yaml", "---\nid: 1\n---\nid: 2", FormatYAML},
		{"toml array of tables", "[[customers]]\nid = \"1\"\n\n[[customers]]\nid = \"2\"", FormatTOML},
		{"toml key values", "name = \"test\"\nvalue = 42", FormatTOML},
		{"json array of numbers is not toml", "[1, 2, 3]", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.input))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("json keeps numbers exact", func(t *testing.T) {
		got, err := Load([]byte(`[{"id": 1, "aum": 120000}]`), FormatAuto)
		require.NoError(t, err)
		arr, ok := got.([]any)
		require.True(t, ok)
		require.Len(t, arr, 1)
		assert.Equal(t, json.Number("120000"), arr[0].(map[string]any)["aum"])
	})

	t.Run("ndjson yields one element per line", func(t *testing.T) {
		got, err := Load([]byte("{\"id\":\"1\"}\n\n{\"id\":\"2\"}\r\n"), FormatAuto)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("single ndjson line is still a list", func(t *testing.T) {
		got, err := Load([]byte(`{"id":"1"}`), FormatNDJSON)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("multi document yaml", func(t *testing.T) {
		got, err := Load([]byte("id: \"1\"\nname: Alice\n---\nid: \"2\"\nname: Bob\n"), FormatAuto)
		require.NoError(t, err)
		docs, ok := got.([]any)
		require.True(t, ok)
		require.Len(t, docs, 2)
		assert.Equal(t, "Bob", docs[1].(map[string]any)["name"])
	})

	t.Run("yaml list", func(t *testing.T) {
		got, err := Load([]byte("- id: 1\n  name: Alice\n  aum: 5000\n"), FormatYAML)
		require.NoError(t, err)
		arr := got.([]any)
		require.Len(t, arr, 1)
		assert.Equal(t, 5000, arr[0].(map[string]any)["aum"])
	})

	t.Run("toml array of tables", func(t *testing.T) {
		input := "[[customers]]\nid = \"1\"\nlastContact = 2025-07-10T14:30:00Z\n"
		got, err := Load([]byte(input), FormatAuto)
		require.NoError(t, err)
		arr, ok := Unwrap(got).([]any)
		require.True(t, ok)
		require.Len(t, arr, 1)
		ts, ok := arr[0].(map[string]any)["lastContact"].(time.Time)
		require.True(t, ok)
		assert.Equal(t, 2025, ts.Year())
	})

	t.Run("errors", func(t *testing.T) {
		for name, input := range map[string]string{
			"empty":          "   ",
			"broken json":    `[{"id": 1}`,
			"trailing json":  `[] []`,
			"broken ndjson":  "{\"id\":1}\n{oops",
			"broken toml":    "[[customers]]\nid = ",
			"empty yaml doc": "---\n---\n",
		} {
			t.Run(name, func(t *testing.T) {
				format := FormatAuto
				if name == "trailing json" {
					format = FormatJSON
				}
				_, err := Load([]byte(input), format)
				require.Error(t, err)
			})
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Load([]byte("x"), Format("xml"))
		require.Error(t, err)
	})
}

func TestUnwrap(t *testing.T) {
	list := []any{map[string]any{"id": "1"}}
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"single array field", map[string]any{"customers": list}, list},
		{"list unchanged", list, list},
		{"several fields unchanged", map[string]any{"a": list, "b": 1}, map[string]any{"a": list, "b": 1}},
		{"scalar field unchanged", map[string]any{"a": 1}, map[string]any{"a": 1}},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unwrap(tt.in))
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("a/customers.JSON"))
	assert.Equal(t, FormatNDJSON, FormatForPath("c.jsonl"))
	assert.Equal(t, FormatYAML, FormatForPath("c.yml"))
	assert.Equal(t, FormatTOML, FormatForPath("c.toml"))
	assert.Equal(t, FormatAuto, FormatForPath("c.txt"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "customers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("customers:\n  - id: \"1\"\n    name: Alice\n"), 0o600))

	got, err := LoadFile(path)
	require.NoError(t, err)
	arr, ok := Unwrap(got).([]any)
	require.True(t, ok)
	assert.Len(t, arr, 1)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestIsLikelyTOML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"section", "[server]\nhost = \"x\"", true},
		{"dotted section", "[database.credentials]\nuser = \"a\"", true},
		{"yaml", "name: x\nvalue: 1", false},
		{"json array", "[1, 2, 3]", false},
		{"comments only", "# nothing", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isLikelyTOML(tt.input))
		})
	}
}
