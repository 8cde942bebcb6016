package templates

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesusruiz/mau/env"
)

func init() {
	RegisterProvider("testing", fstest.MapFS{
		"text.j2":      {Data: []byte("provider:{{ value }}\n")},
		"sentence.j2":  {Data: []byte("{{ content }}")},
		"paragraph.j2": {Data: []byte("{{ content }}")},
	})
}

func TestAddFS(t *testing.T) {
	s := NewSet()
	err := s.AddFS(fstest.MapFS{
		"html5/text.j2":     {Data: []byte("{{ value }}\n")},
		"html5/.swp":        {Data: []byte("ignored")},
		"document.j2":       {Data: []byte("{{ content }}\n\n")},
		"block/quote.j2":    {Data: []byte("quote")},
		".hidden/secret.j2": {Data: []byte("skipped too")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"block.quote.j2", "document.j2", "html5.text.j2"}, s.Names())
	assert.True(t, s.Has("html5.text.j2"))
	assert.False(t, s.Has("text.j2"))

	tpl, err := s.Template("document.j2")
	require.NoError(t, err)
	out, err := tpl.Execute(map[string]any{"content": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x\n", out)

	_, err = s.Template("missing.j2")
	assert.Error(t, err)
}

func TestSetIncludes(t *testing.T) {
	s := NewSet()
	s.Add("base.j2", "[{% block body %}{% endblock %}]")
	s.Add("page.j2", `{% extends "base.j2" %}{% block body %}{{ value }}{% endblock %}`)

	tpl, err := s.Template("page.j2")
	require.NoError(t, err)
	out, err := tpl.Execute(map[string]any{"value": "v"})
	require.NoError(t, err)
	assert.Equal(t, "[v]", out)
}

func TestProviders(t *testing.T) {
	assert.Contains(t, Providers(), "testing")

	_, ok := Provider("testing")
	assert.True(t, ok)
	_, ok = Provider("nope")
	assert.False(t, ok)

	assert.Panics(t, func() { RegisterProvider("testing", fstest.MapFS{}) })
}

func TestLoadSet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "text.j2"), []byte("directory:{{ value }}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "document.j2"), []byte("{{ content }}"), 0o644))

	e := env.New()
	e.Set("mau.visitor.template_providers", []any{"testing"})
	e.Set("mau.visitor.templates_directory", dir)

	s, err := LoadSet(e)
	require.NoError(t, err)
	assert.Equal(t, []string{"document.j2", "paragraph.j2", "sentence.j2", "text.j2"}, s.Names())

	tpl, err := s.Template("text.j2")
	require.NoError(t, err)
	out, err := tpl.Execute(map[string]any{"value": "v"})
	require.NoError(t, err)
	assert.Equal(t, "directory:v", out)

	// Custom templates have the highest priority
	e.Set("mau.visitor.custom_templates.text.j2", "custom:{{ value }}")
	s, err = LoadSet(e)
	require.NoError(t, err)

	tpl, err = s.Template("text.j2")
	require.NoError(t, err)
	out, err = tpl.Execute(map[string]any{"value": "v"})
	require.NoError(t, err)
	assert.Equal(t, "custom:v", out)
}

func TestLoadSetUnknownProvider(t *testing.T) {
	e := env.New()
	e.Set("mau.visitor.template_providers", []any{"unknown"})

	_, err := LoadSet(e)
	assert.ErrorContains(t, err, `unknown template provider "unknown"`)
}
