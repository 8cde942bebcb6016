package templates

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"
	"go.uber.org/zap"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/lexer"
	"github.com/hesusruiz/mau/nodes"
	"github.com/hesusruiz/mau/visitor"
)

func init() {
	// Children are rendered before their parents, escaping would apply twice
	pongo2.SetAutoescape(false)
}

// TemplateNotFoundError is raised when no candidate template exists for a node.
type TemplateNotFoundError struct {
	NodeType   string
	Context    lexer.Context
	Candidates []string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("%s: cannot find a template for node %q, tried: %s", e.Context, e.NodeType, strings.Join(e.Candidates, ", "))
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for debug traces.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithEnvironment sets the configuration: the prefixes and the extension
// of the template names, and the "config" variable seen by templates.
func WithEnvironment(e *env.Environment) Option {
	return func(r *Renderer) {
		if e == nil {
			return
		}
		r.resolver = Resolver{
			Prefixes:  e.GetStrings("mau.visitor.prefixes"),
			Extension: e.GetString("mau.visitor.extension", DefaultExtension),
		}
		r.config = e.Nested()
	}
}

// Renderer is a visitor.Emitter that renders every node with its template.
type Renderer struct {
	set      *Set
	resolver Resolver
	config   map[string]any
	log      *zap.SugaredLogger
}

// NewRenderer creates a renderer for the templates in set.
func NewRenderer(set *Set, opts ...Option) *Renderer {
	r := &Renderer{
		set:      set,
		resolver: Resolver{Extension: DefaultExtension},
		config:   map[string]any{},
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the name of the template that renders n.
func (r *Renderer) Resolve(n nodes.Node, nodeTemplates []string) (string, error) {
	candidates := r.resolver.Candidates(n, nodeTemplates)
	for _, name := range candidates {
		if r.set.Has(name) {
			r.log.Debugw("template found", "node", n.NodeType(), "template", name)
			return name, nil
		}
	}
	return "", &TemplateNotFoundError{
		NodeType:   n.NodeType(),
		Context:    n.Meta().Context,
		Candidates: candidates,
	}
}

// Emit renders the record of n and returns the resulting string.
func (r *Renderer) Emit(n nodes.Node, rec *visitor.Record) (any, error) {
	name, err := r.Resolve(n, rec.Templates)
	if err != nil {
		return nil, err
	}

	tpl, err := r.set.Template(name)
	if err != nil {
		return nil, fmt.Errorf("compiling template %s: %w", name, err)
	}

	ctx := pongo2.Context{}
	for k, v := range rec.Data {
		ctx[k] = v
	}
	ctx["config"] = r.config

	out, err := tpl.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: rendering template %s: %w", n.Meta().Context, name, err)
	}

	return out, nil
}
