package html

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/nodes"
	"github.com/hesusruiz/mau/visitor"
)

// DefaultStyle is the chroma style used when "mau.visitor.highlight_style" is not set.
const DefaultStyle = "github"

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger used for debug traces.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Emitter) {
		if log != nil {
			e.log = log
		}
	}
}

// WithEnvironment reads "mau.visitor.highlight" and "mau.visitor.highlight_style".
func WithEnvironment(cfg *env.Environment) Option {
	return func(e *Emitter) {
		if cfg == nil {
			return
		}
		e.highlight = cfg.GetBool("mau.visitor.highlight", true)
		e.style = cfg.GetString("mau.visitor.highlight_style", DefaultStyle)
	}
}

// Emitter adds HTML specific data to the records and passes them to next.
//
// Source blocks get the highlighted version of every line in
// lines[i]["highlighted"]. Blocks with preprocessor=d2 get the diagram
// compiled to SVG in "svg".
type Emitter struct {
	next      visitor.Emitter
	highlight bool
	style     string
	log       *zap.SugaredLogger
}

// NewEmitter wraps next, usually a templates.Renderer.
func NewEmitter(next visitor.Emitter, opts ...Option) *Emitter {
	e := &Emitter{
		next:      next,
		highlight: true,
		style:     DefaultStyle,
		log:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Emitter) Emit(n nodes.Node, rec *visitor.Record) (any, error) {
	switch node := n.(type) {
	case *nodes.SourceNode:
		if e.highlight {
			if err := e.highlightSource(node, rec); err != nil {
				return nil, err
			}
		}
	case *nodes.BlockNode:
		if node.Preprocessor == "d2" {
			if err := e.renderDiagram(node, rec); err != nil {
				return nil, err
			}
		}
	}
	return e.next.Emit(n, rec)
}

func (e *Emitter) highlightSource(n *nodes.SourceNode, rec *visitor.Record) error {
	code, _ := rec.Data["content"].(string)
	highlighted, err := highlight(n.Language, code, e.style)
	if err != nil {
		return fmt.Errorf("%s: highlighting %s code: %w", n.Context, n.Language, err)
	}

	lines, _ := rec.Data["lines"].([]any)
	for i, line := range lines {
		if i >= len(highlighted) {
			break
		}
		if m, ok := line.(map[string]any); ok {
			m["highlighted"] = highlighted[i]
		}
	}
	return nil
}

func (e *Emitter) renderDiagram(n *nodes.BlockNode, rec *visitor.Record) error {
	var lines []string
	for _, child := range n.Children() {
		raw, ok := child.(*nodes.RawNode)
		if !ok {
			e.log.Debugw("diagram ignored, the block is not raw", "context", n.Context.String(), "engine", n.Engine)
			return nil
		}
		lines = append(lines, raw.Value)
	}

	svg, err := compileDiagram(context.Background(), strings.Join(lines, "\n"))
	if err != nil {
		return fmt.Errorf("%s: rendering diagram: %w", n.Context, err)
	}
	e.log.Debugw("diagram rendered", "context", n.Context.String(), "bytes", len(svg))

	rec.Data["svg"] = string(svg)
	return nil
}
