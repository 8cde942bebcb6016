package templates

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/hesusruiz/mau/env"
)

var (
	providersMu sync.RWMutex
	providers   = make(map[string]fs.FS)
)

// RegisterProvider makes a collection of templates available under name,
// so that it can be selected with "mau.visitor.template_providers".
// It is meant to be called from the init function of the package that
// embeds the templates, and panics if name is registered twice.
func RegisterProvider(name string, fsys fs.FS) {
	providersMu.Lock()
	defer providersMu.Unlock()

	if _, dup := providers[name]; dup {
		panic("templates: RegisterProvider called twice for provider " + name)
	}
	providers[name] = fsys
}

// Provider returns the templates registered under name.
func Provider(name string) (fs.FS, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()

	fsys, ok := providers[name]
	return fsys, ok
}

// Providers returns the sorted names of the registered providers.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set is a flat collection of named templates.
// Templates are compiled the first time they are used. A Set can be shared
// by concurrent renderers once it has been loaded.
type Set struct {
	mu      sync.RWMutex
	sources map[string]string
	pongo   *pongo2.TemplateSet
}

// NewSet returns an empty Set.
func NewSet() *Set {
	s := &Set{sources: make(map[string]string)}
	s.pongo = pongo2.NewSet("mau", &setLoader{s})
	return s
}

// Add stores a template, replacing any previous one with the same name.
func (s *Set) Add(name string, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources[name] = source
}

// AddFS adds all the files in fsys. The name of a template is its path with
// the slashes replaced by dots, so "html5/text.j2" becomes "html5.text.j2".
// A single trailing newline is removed from the files.
func (s *Set) AddFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := p != "." && strings.HasPrefix(path.Base(p), ".")
		if d.IsDir() {
			if hidden {
				return fs.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		s.Add(strings.ReplaceAll(p, "/", "."), strings.TrimSuffix(string(data), "\n"))
		return nil
	})
}

// Has reports whether the template exists.
func (s *Set) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sources[name]
	return ok
}

// Names returns the sorted names of the templates.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns the compiled template. Templates can include or extend
// other templates of the Set by name.
func (s *Set) Template(name string) (*pongo2.Template, error) {
	if !s.Has(name) {
		return nil, fmt.Errorf("template %s does not exist", name)
	}
	return s.pongo.FromCache(name)
}

// setLoader gives pongo2 access to the sources of a Set.
type setLoader struct {
	s *Set
}

func (l *setLoader) Abs(base, name string) string {
	return name
}

func (l *setLoader) Get(name string) (io.Reader, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	source, ok := l.s.sources[name]
	if !ok {
		return nil, fmt.Errorf("template %s does not exist", name)
	}
	return bytes.NewBufferString(source), nil
}

// LoadSet builds the Set described by the configuration. Templates are
// added in order of increasing priority: the providers listed in
// "mau.visitor.template_providers", the files in
// "mau.visitor.templates_directory" and the templates in
// "mau.visitor.custom_templates".
func LoadSet(e *env.Environment) (*Set, error) {
	s := NewSet()

	for _, name := range e.GetStrings("mau.visitor.template_providers") {
		fsys, ok := Provider(name)
		if !ok {
			return nil, fmt.Errorf("unknown template provider %q, available: %s", name, strings.Join(Providers(), ", "))
		}
		if err := s.AddFS(fsys); err != nil {
			return nil, fmt.Errorf("loading templates of provider %s: %w", name, err)
		}
	}

	if dir := e.GetString("mau.visitor.templates_directory", ""); dir != "" {
		if err := s.AddFS(os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("loading templates from %s: %w", dir, err)
		}
	}

	for name, source := range e.Namespace("mau.visitor.custom_templates") {
		s.Add(name, fmt.Sprint(source))
	}

	return s, nil
}
