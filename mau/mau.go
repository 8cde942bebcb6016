// Package mau converts Mau documents into text.
//
// A Mau value wires together the pieces of the pipeline: the configuration
// environment, the parser, the visitor and the emitter selected by the
// "mau.visitor.name" key.
package mau

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/html"
	"github.com/hesusruiz/mau/nodes"
	"github.com/hesusruiz/mau/parser"
	"github.com/hesusruiz/mau/templates"
	"github.com/hesusruiz/mau/visitor"
)

// Names of the visitors accepted by "mau.visitor.name".
const (
	VisitorHTML  = "html"
	VisitorJinja = "jinja"
	VisitorYAML  = "yaml"
)

// DefaultVisitor is used when "mau.visitor.name" is not set.
const DefaultVisitor = VisitorHTML

var ErrNoContent = errors.New("no content")

// Visitors returns the names accepted by "mau.visitor.name".
func Visitors() []string {
	return []string{VisitorHTML, VisitorJinja, VisitorYAML}
}

// Option configures a Mau.
type Option func(*Mau)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Mau) {
		if log != nil {
			m.log = log
		}
	}
}

// WithEnvironment sets the configuration.
func WithEnvironment(e *env.Environment) Option {
	return func(m *Mau) {
		if e != nil {
			m.env = e
		}
	}
}

// WithFS sets the file system used to resolve includes.
func WithFS(fsys fs.FS) Option {
	return func(m *Mau) {
		m.fsys = fsys
	}
}

// WithFrontMatter enables the YAML header. When enabled, a document may
// start with a "---" line followed by YAML and another "---" line, and the
// YAML values are added to the configuration of that document only.
func WithFrontMatter(enabled bool) Option {
	return func(m *Mau) {
		m.frontMatter = enabled
	}
}

// Mau processes documents with a fixed configuration.
type Mau struct {
	env         *env.Environment
	fsys        fs.FS
	frontMatter bool
	log         *zap.SugaredLogger
}

func New(opts ...Option) *Mau {
	m := &Mau{
		env: env.New(),
		log: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Environment returns the configuration shared by all the documents.
func (m *Mau) Environment() *env.Environment {
	return m.env
}

// Parse builds the tree of a document. It returns the configuration used for
// the document, which includes the front matter when there is one.
func (m *Mau) Parse(text string, source string) (*nodes.DocumentNode, *env.Environment, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, nil, ErrNoContent
	}

	e := m.env
	if m.frontMatter {
		header, body, found, err := splitFrontMatter(text)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", source, err)
		}
		if found {
			meta, err := env.ParseYAML([]byte(header))
			if err != nil {
				return nil, nil, fmt.Errorf("%s: malformed front matter: %w", source, err)
			}
			e = m.env.Clone()
			e.Update(meta)
			text = body
			m.log.Debugw("front matter loaded", "source", source, "keys", len(meta.Keys()))
		}
	}

	doc, err := parser.Parse(text, source,
		parser.WithEnvironment(e),
		parser.WithLogger(m.log),
		parser.WithFS(m.fsys),
	)
	if err != nil {
		return nil, nil, err
	}

	return doc, e, nil
}

// Render visits doc with the visitor configured in e.
func (m *Mau) Render(doc *nodes.DocumentNode, e *env.Environment) (string, error) {
	if e == nil {
		e = m.env
	}

	name := e.GetString("mau.visitor.name", DefaultVisitor)
	m.log.Debugw("rendering", "visitor", name)

	switch name {
	case VisitorHTML, VisitorJinja:
		if name == VisitorHTML {
			e = e.Clone()
			html.Configure(e)
		}

		set, err := templates.LoadSet(e)
		if err != nil {
			return "", err
		}

		var emitter visitor.Emitter = templates.NewRenderer(set,
			templates.WithEnvironment(e),
			templates.WithLogger(m.log),
		)
		if name == VisitorHTML {
			emitter = html.NewEmitter(emitter, html.WithEnvironment(e), html.WithLogger(m.log))
		}

		result, err := visitor.New(emitter, visitor.WithEnvironment(e), visitor.WithLogger(m.log)).Visit(doc)
		if err != nil {
			return "", err
		}
		return fmt.Sprint(result), nil

	case VisitorYAML:
		result, err := visitor.New(nil, visitor.WithEnvironment(e), visitor.WithLogger(m.log)).Visit(doc)
		if err != nil {
			return "", err
		}
		out, err := yaml.Marshal(result)
		if err != nil {
			return "", fmt.Errorf("encoding the document: %w", err)
		}
		return string(out), nil

	default:
		return "", fmt.Errorf("unknown visitor %q, available: %s", name, strings.Join(Visitors(), ", "))
	}
}

// Process parses and renders a document.
func (m *Mau) Process(text string, source string) (string, error) {
	doc, e, err := m.Parse(text, source)
	if err != nil {
		return "", err
	}
	return m.Render(doc, e)
}

// ProcessFile processes the file at fileName. Unless a file system was
// given with WithFS, includes are resolved from the directory of the file.
func (m *Mau) ProcessFile(fileName string) (string, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return "", err
	}

	if m.fsys != nil {
		return m.Process(string(data), fileName)
	}

	local := *m
	local.fsys = os.DirFS(filepath.Dir(fileName))
	return local.Process(string(data), filepath.Base(fileName))
}

// Process converts text with a Mau built from opts.
func Process(text string, opts ...Option) (string, error) {
	return New(opts...).Process(text, "")
}

// splitFrontMatter separates the YAML header from the document. The lines of
// the header are replaced by empty lines in body so positions are preserved.
func splitFrontMatter(text string) (header string, body string, found bool, err error) {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t\r\n") != "---" {
		return "", text, false, nil
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r\n") == "---" {
			header = strings.Join(lines[1:i], "")
			body = strings.Repeat("\n", i+1) + strings.Join(lines[i+1:], "")
			return header, body, true, nil
		}
	}

	return "", "", false, errors.New("end of file reached but no end of the front matter found")
}
