package parser

import (
	"fmt"
	"strings"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/lexer"
	"github.com/hesusruiz/mau/nodes"
)

// Engines of the blocks.
const (
	EngineMau    = "mau"
	EngineRaw    = "raw"
	EngineSource = "source"
)

// BlockDefinition describes a blocktype. The first positional attribute of a
// block names its blocktype, and the definition maps the following
// positional attributes to named ones.
type BlockDefinition struct {
	// Engine is used when the block does not declare one
	Engine string

	// Args are the names given to the positional attributes
	Args []string

	// Kwargs are default values of named attributes
	Kwargs map[string]string
}

var defaultBlockDefinitions = map[string]BlockDefinition{
	"source":     {Engine: EngineSource, Args: []string{"language"}},
	"raw":        {Engine: EngineRaw},
	"admonition": {Args: []string{"class", "icon", "label"}},
	"quote":      {Args: []string{"attribution"}},
	"footnote":   {Args: []string{"name"}},
	"reference":  {Args: []string{"content_type", "name"}},
}

// loadBlockDefinitions adds to the default definitions the ones configured
// in "mau.parser.block_definitions", for example
//
//	mau.parser.block_definitions.aside.engine: mau
//	mau.parser.block_definitions.aside.args: [class]
//	mau.parser.block_definitions.aside.kwargs.class: note
func loadBlockDefinitions(e *env.Environment) map[string]BlockDefinition {
	const namespace = "mau.parser.block_definitions"

	defs := make(map[string]BlockDefinition, len(defaultBlockDefinitions))
	for name, def := range defaultBlockDefinitions {
		defs[name] = def
	}

	for key, value := range e.Namespace(namespace) {
		name, field, ok := strings.Cut(key, env.Separator)
		if !ok {
			continue
		}

		def := defs[name]
		switch {
		case field == "engine":
			def.Engine = fmt.Sprint(value)
		case field == "args":
			def.Args = e.GetStrings(namespace + env.Separator + key)
		case strings.HasPrefix(field, "kwargs"+env.Separator):
			kwargs := make(map[string]string, len(def.Kwargs)+1)
			for k, v := range def.Kwargs {
				kwargs[k] = v
			}
			kwargs[strings.TrimPrefix(field, "kwargs"+env.Separator)] = fmt.Sprint(value)
			def.Kwargs = kwargs
		}
		defs[name] = def
	}

	return defs
}

// blocktype extracts the blocktype from the positional attributes and
// applies its definition.
func (p *Parser) blocktype(attrs *nodes.Attributes) (string, BlockDefinition) {
	blocktype := nodes.DefaultBlocktype
	if len(attrs.Args) > 0 {
		blocktype = attrs.Args[0]
		attrs.Args = attrs.Args[1:]
	}

	def := p.definitions[blocktype]

	consumed := 0
	for i, name := range def.Args {
		if i >= len(attrs.Args) {
			break
		}
		if _, declared := attrs.Kwargs[name]; !declared {
			attrs.SetKwarg(name, attrs.Args[i])
		}
		consumed++
	}
	attrs.Args = attrs.Args[consumed:]

	for k, v := range def.Kwargs {
		if _, declared := attrs.Kwargs[k]; !declared {
			attrs.SetKwarg(k, v)
		}
	}

	return blocktype, def
}

// parseBlock parses a fenced block: the primary content up to the closing
// fence and the secondary content up to the next empty line.
func (p *Parser) parseBlock() {
	open := p.next()

	var lines []lexer.Token
	for {
		tok := p.next()
		if tok.Type == lexer.BLOCK {
			break
		}
		if tok.Type == lexer.EOF {
			fail(open.Context, open.Value, "unmatched block fence")
		}
		lines = append(lines, tok)
	}

	var secondary []lexer.Token
	for {
		tok := p.peek()
		if tok.Type == lexer.EOL || tok.Type == lexer.EOF || tok.Type == lexer.BLOCK {
			break
		}
		secondary = append(secondary, p.next())
	}

	attrs := p.attributes.pop()
	title := p.popTitle()

	blocktype, def := p.blocktype(&attrs)
	engine := attrs.Kwarg("engine", def.Engine)

	p.log.Debugw("block", "context", open.Context.String(), "blocktype", blocktype, "engine", engine, "lines", len(lines))

	if engine == EngineSource {
		n := p.parseSource(open, blocktype, attrs, lines, secondary)
		n.SetTitle(title)
		p.appendNode(n)
		return
	}

	switch blocktype {
	case "footnote":
		name := attrs.Kwarg("name", "")
		if name == "" {
			fail(open.Context, open.Value, "footnote without name")
		}
		entry := &nodes.FootnotesEntryNode{Name: name}
		entry.Attributes = attrs
		entry.Context = open.Context
		p.blockContent(entry, engine, lines, open)
		if err := p.footnotes.addBody(entry); err != nil {
			fail(open.Context, name, "%v", err)
		}

	case "reference":
		contentType, name := attrs.Kwarg("content_type", ""), attrs.Kwarg("name", "")
		if contentType == "" || name == "" {
			fail(open.Context, open.Value, "reference without content type or name")
		}
		entry := &nodes.ReferencesEntryNode{
			ContentType: contentType,
			Name:        name,
			Category:    attrs.Kwarg("category", ""),
		}
		entry.Attributes = attrs
		entry.Context = open.Context
		p.blockContent(entry, engine, lines, open)
		if err := p.references.addBody(entry); err != nil {
			fail(open.Context, name, "%v", err)
		}

	default:
		block := &nodes.BlockNode{
			Blocktype:    blocktype,
			Engine:       engine,
			Preprocessor: attrs.Kwarg("preprocessor", ""),
		}
		block.Attributes = attrs
		block.Context = open.Context
		block.SetTitle(title)

		p.blockContent(block, engine, lines, open)

		if len(secondary) > 0 {
			holder := &nodes.DocumentNode{}
			p.parseMau(holder, secondary, true)
			for _, n := range append([]nodes.Node(nil), holder.Children()...) {
				nodes.RemoveChild(holder, n)
				block.AppendSecondary(n)
			}
		}

		p.appendNode(block)
	}
}

// blockContent adds to container the primary content of a block, interpreted by engine.
func (p *Parser) blockContent(container nodes.Node, engine string, lines []lexer.Token, open lexer.Token) {
	switch engine {
	case EngineRaw:
		for _, line := range lines {
			raw := &nodes.RawNode{Value: line.Value}
			raw.Context = line.Context
			nodes.AppendChild(container, raw)
		}
	case "", EngineMau:
		p.parseMau(container, lines, false)
	default:
		p.log.Debugw("unknown engine, parsing as mau", "context", open.Context.String(), "engine", engine)
		p.parseMau(container, lines, false)
	}
}

// parseMau parses lines with a child parser and moves the resulting nodes into container.
// Lines lexed outside a block are taken as they appear in the source.
func (p *Parser) parseMau(container nodes.Node, lines []lexer.Token, raw bool) {
	if len(lines) == 0 {
		return
	}

	texts := make([]string, len(lines))
	for i, line := range lines {
		if raw {
			texts[i] = line.Raw
		} else {
			texts[i] = line.Value
		}
	}

	start := lines[0].Context
	start.Column = 1

	sub := p.child()
	sub.parseBuffer(lexer.NewBufferAt(strings.Join(texts, "\n"), start))
	p.merge(sub, start)

	nodes.ReparentChildren(container, sub.doc)
}
