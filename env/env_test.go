package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	nested := map[string]any{
		"mau": map[string]any{
			"visitor": map[string]any{
				"prefixes": []any{"html5"},
			},
		},
		"title": "A document",
	}

	flat := Flatten(nested)

	assert.Equal(t, map[string]any{
		"mau.visitor.prefixes": []any{"html5"},
		"title":                "A document",
	}, flat)
}

func TestNest(t *testing.T) {
	flat := map[string]any{
		"mau.visitor.prefixes":  []any{"html5"},
		"mau.visitor.extension": "j2",
		"title":                 "A document",
	}

	assert.Equal(t, map[string]any{
		"mau": map[string]any{
			"visitor": map[string]any{
				"prefixes":  []any{"html5"},
				"extension": "j2",
			},
		},
		"title": "A document",
	}, Nest(flat))
}

func TestNestNamespaceWinsOverLeaf(t *testing.T) {
	flat := map[string]any{
		"a":   1,
		"a.b": 2,
	}

	assert.Equal(t, map[string]any{"a": map[string]any{"b": 2}}, Nest(flat))
}

func TestEnvironmentGetters(t *testing.T) {
	e := FromNested(map[string]any{
		"mau": map[string]any{
			"visitor": map[string]any{
				"prefixes":            []any{"html5", "custom"},
				"templates_directory": "templates",
				"custom_templates": map[string]any{
					"text.j2": "{{ value }}",
				},
			},
			"debug": "true",
		},
	})

	assert.Equal(t, []string{"html5", "custom"}, e.GetStrings("mau.visitor.prefixes"))
	assert.Equal(t, "templates", e.GetString("mau.visitor.templates_directory", ""))
	assert.Equal(t, "j2", e.GetString("mau.visitor.extension", "j2"))
	assert.True(t, e.GetBool("mau.debug", false))
	assert.Nil(t, e.GetStrings("missing"))

	// Template names keep their dots inside the namespace
	custom := e.Namespace("mau.visitor.custom_templates")
	assert.Equal(t, map[string]any{"text.j2": "{{ value }}"}, custom)
}

func TestEnvironmentSetAndUpdate(t *testing.T) {
	e := New()
	e.Set("mau.visitor", map[string]any{"extension": "html"})
	e.Set("mau.parser.variables", map[string]any{})

	other := New()
	other.Set("mau.visitor.extension", "txt")
	e.Update(other)

	v, ok := e.Get("mau.visitor.extension")
	require.True(t, ok)
	assert.Equal(t, "txt", v)
	assert.Equal(t, []string{"mau.parser.variables", "mau.visitor.extension"}, e.Keys())

	clone := e.Clone()
	clone.Set("mau.visitor.extension", "j2")
	assert.Equal(t, "txt", e.GetString("mau.visitor.extension", ""))
}

func TestParseYAML(t *testing.T) {
	e, err := ParseYAML([]byte(`
mau:
  visitor:
    prefixes:
      - html5
    custom_templates:
      text.j2: "{{ value }}"
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"html5"}, e.GetStrings("mau.visitor.prefixes"))
	assert.Equal(t, "{{ value }}", e.Namespace("mau.visitor.custom_templates")["text.j2"])

	empty, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Keys())

	_, err = ParseYAML([]byte("- just\n- a list"))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()

	// A missing file gives an empty environment
	e, err := LoadYAML(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, e.Keys())

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mau:\n  visitor:\n    extension: html\n"), 0644))

	e, err = LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "html", e.GetString("mau.visitor.extension", ""))
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKey   string
		wantValue any
		wantErr   bool
	}{
		{name: "string", input: "mau.visitor.extension=html", wantKey: "mau.visitor.extension", wantValue: "html"},
		{name: "list", input: "mau.visitor.prefixes=[html5, custom]", wantKey: "mau.visitor.prefixes", wantValue: []any{"html5", "custom"}},
		{name: "boolean", input: "flag=true", wantKey: "flag", wantValue: true},
		{name: "empty value", input: "flag=", wantKey: "flag", wantValue: ""},
		{name: "missing equal", input: "flag", wantErr: true},
		{name: "missing key", input: "=value", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, err := ParseAssignment(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}
