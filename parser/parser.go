// Package parser builds the document tree from the token stream of the lexer.
//
// The parser works one line token at a time. Attribute lines and caption
// lines are buffered in one-shot managers and consumed by the next block
// level node. Fenced blocks are parsed according to their engine, and the
// content of "mau" blocks and included documents is parsed by child
// parsers whose results are merged back. When the whole source has been
// consumed, a final pass resolves internal links, numbers footnotes and
// references and fills the tables of contents.
package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/lexer"
	"github.com/hesusruiz/mau/nodes"
	"github.com/hesusruiz/mau/sliceedit"
)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for debug traces.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithEnvironment sets the configuration. The parser reads the keys below "mau.parser".
func WithEnvironment(e *env.Environment) Option {
	return func(p *Parser) {
		if e != nil {
			p.env = e
		}
	}
}

// WithFS sets the file system used to read included Mau documents.
// Without it, "<< mau:" includes are an error.
func WithFS(fsys fs.FS) Option {
	return func(p *Parser) {
		p.fsys = fsys
	}
}

// Parser builds a document tree.
// A Parser is used for a single document and is not safe for concurrent use.
type Parser struct {
	env  *env.Environment
	log  *zap.SugaredLogger
	fsys fs.FS

	tokens []lexer.Token
	index  int
	source string

	doc *nodes.DocumentNode

	attributes attributesManager
	title      titleManager
	links      *LinksManager
	footnotes  *footnotesManager
	references *referencesManager
	toc        *tocManager

	// Shared with the child parsers
	anchors     *anchorRegistry
	variables   map[string]string
	definitions map[string]BlockDefinition

	// includes is the chain of documents being included, to detect cycles
	includes []string
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		env:        env.New(),
		log:        zap.NewNop().Sugar(),
		doc:        &nodes.DocumentNode{},
		links:      NewLinksManager(),
		footnotes:  newFootnotesManager(),
		references: newReferencesManager(),
		toc:        &tocManager{},
		anchors:    newAnchorRegistry(),
		variables:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.definitions = loadBlockDefinitions(p.env)
	for name, value := range p.env.Namespace("mau.parser.variables") {
		p.variables[name] = fmt.Sprint(value)
	}

	return p
}

// Parse is a convenience function that parses text with a new Parser.
func Parse(text string, source string, opts ...Option) (*nodes.DocumentNode, error) {
	return New(opts...).Parse(text, source)
}

// Parse parses a whole document. source is the name used in diagnostics and
// the base for relative includes.
func (p *Parser) Parse(text string, source string) (doc *nodes.DocumentNode, err error) {

	// Errors abort the parsing with a panic, which we convert here to a normal error
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *ParseError:
				err = e
			case *LinkError:
				err = e
			default:
				panic(r)
			}
			doc = nil
		}
	}()

	p.parseBuffer(lexer.NewBuffer(text, source))
	p.finalize()

	return p.doc, nil
}

// Links returns the internal links manager of the parser.
func (p *Parser) Links() *LinksManager {
	return p.links
}

func (p *Parser) parseBuffer(buf *lexer.Buffer) {
	p.source = buf.Source()

	tokens, err := lexer.New(buf, lexer.WithLogger(p.log)).Process()
	if err != nil {
		var se *ParseError
		if errors.As(err, &se) {
			panic(se)
		}
		panic(&ParseError{Context: buf.Context(), Msg: err.Error()})
	}

	p.tokens = tokens
	p.index = 0
	p.doc.Context = tokens[0].Context

	for p.parseNext() {
	}
}

// finalize performs the final pass. Only the top level parser calls it.
func (p *Parser) finalize() {
	if err := p.links.Resolve(); err != nil {
		panic(err)
	}
	if err := p.footnotes.process(); err != nil {
		panic(err)
	}
	if err := p.references.process(); err != nil {
		panic(err)
	}
	p.toc.process()

	p.log.Debugw("document parsed", "source", p.source, "nodes", len(p.doc.Children()), "links", len(p.links.links))
}

// child creates a parser for a sub-document, sharing the configuration,
// the variables and the anchors with p.
func (p *Parser) child() *Parser {
	return &Parser{
		env:         p.env,
		log:         p.log,
		fsys:        p.fsys,
		source:      p.source,
		doc:         &nodes.DocumentNode{},
		links:       NewLinksManager(),
		footnotes:   newFootnotesManager(),
		references:  newReferencesManager(),
		toc:         &tocManager{},
		anchors:     p.anchors,
		variables:   p.variables,
		definitions: p.definitions,
		includes:    p.includes,
	}
}

// merge collects the results of the managers of a child parser.
func (p *Parser) merge(sub *Parser, ctx lexer.Context) {
	if err := p.links.Update(sub.links); err != nil {
		panic(err)
	}
	if err := p.footnotes.update(sub.footnotes); err != nil {
		fail(ctx, "", "%v", err)
	}
	if err := p.references.update(sub.references); err != nil {
		fail(ctx, "", "%v", err)
	}
	p.toc.update(sub.toc)
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.index]
}

// next returns the current token and advances, never past EOF.
func (p *Parser) next() lexer.Token {
	tok := p.tokens[p.index]
	if tok.Type != lexer.EOF {
		p.index++
	}
	return tok
}

func (p *Parser) appendNode(n nodes.Node) {
	nodes.AppendChild(p.doc, n)
}

func (p *Parser) parseNext() bool {
	tok := p.peek()

	switch tok.Type {
	case lexer.EOF:
		return false
	case lexer.EOL, lexer.COMMENT:
		p.next()
	case lexer.HEADER:
		p.parseHeader()
	case lexer.LIST:
		p.parseList()
	case lexer.ATTRIBUTES:
		p.parseAttributes()
	case lexer.TITLE:
		p.next()
		p.title.push(p.substitute(tok.Value), tok.Context)
	case lexer.BLOCK:
		p.parseBlock()
	case lexer.COMMAND:
		p.parseCommand()
	case lexer.CONTENT:
		p.parseContent()
	case lexer.VARIABLE:
		p.parseVariable()
	case lexer.HORIZONTAL_RULE:
		p.next()
		n := &nodes.HorizontalRuleNode{}
		n.Attributes = p.attributes.pop()
		n.Context = tok.Context
		p.title.pop()
		p.appendNode(n)
	default:
		p.parseParagraph()
	}

	return true
}

// popTitle returns the buffered caption as a sentence, or nil.
func (p *Parser) popTitle() nodes.Node {
	text, ctx, ok := p.title.pop()
	if !ok {
		return nil
	}
	return p.parseSentence(text, ctx)
}

func (p *Parser) parseAttributes() {
	tok := p.next()

	args, err := ParseArguments(p.substitute(tok.Value))
	if err != nil {
		fail(tok.Context, tok.Raw, "malformed attributes: %v", err)
	}
	p.attributes.pushArguments(args)
}

func (p *Parser) parseVariable() {
	tok := p.next()

	name, value := tok.Prefix, tok.Value
	switch name[0] {
	case '+':
		name, value = name[1:], "true"
	case '-':
		name, value = name[1:], "false"
	}
	if name == "" {
		fail(tok.Context, tok.Raw, "variable without name")
	}

	p.variables[name] = value
}

func (p *Parser) parseHeader() {
	tok := p.next()

	h := &nodes.HeaderNode{
		Value: p.substitute(tok.Value),
		Level: len(tok.Prefix),
	}
	h.Attributes = p.attributes.pop()
	h.Context = tok.Context
	p.title.pop()

	if id := h.Kwarg("id", ""); id != "" {
		p.anchors.reserve(id)
		h.Anchor = id
	} else {
		h.Anchor = p.anchors.generate(h.Value)
	}

	if err := p.links.AddHeader(h.Anchor, h); err != nil {
		panic(err)
	}
	p.toc.addHeader(h)

	p.appendNode(h)
}

func (p *Parser) parseParagraph() {
	first := p.peek()

	para := &nodes.ParagraphNode{}
	para.Attributes = p.attributes.pop()
	para.Context = first.Context
	p.title.pop()

	sentence := &nodes.SentenceNode{}
	sentence.Context = first.Context

	// Lines are joined with a space. Escaped lines are kept as they are,
	// without variables or inline markup.
	var lines []string
	var linesCtx lexer.Context
	separator := ""
	flush := func() {
		if len(lines) > 0 {
			nodes.AppendChildren(sentence, p.parseInlineText(separator+strings.Join(lines, " "), linesCtx)...)
			lines = nil
			separator = " "
		}
	}

	for p.peek().Type == lexer.TEXT {
		tok := p.next()
		if tok.Escaped {
			flush()
			text := &nodes.TextNode{Value: separator + tok.Value}
			text.Context = tok.Context
			nodes.AppendChild(sentence, text)
			separator = " "
			continue
		}
		if len(lines) == 0 {
			linesCtx = tok.Context
		}
		lines = append(lines, p.substitute(tok.Value))
	}

	// Anything else that reaches this point is treated as text
	if len(sentence.Children()) == 0 && len(lines) == 0 {
		tok := p.next()
		linesCtx = tok.Context
		lines = append(lines, tok.Raw)
	}
	flush()

	nodes.AppendChild(para, sentence)

	p.appendNode(para)
}

func (p *Parser) parseList() {
	first := p.peek()

	list := &nodes.ListNode{
		Ordered:  first.Prefix[0] == '#',
		MainNode: true,
	}
	list.Attributes = p.attributes.pop()
	list.Context = first.Context
	p.title.pop()

	p.parseListLevel(list, len(first.Prefix))

	p.appendNode(list)
}

// parseListLevel adds to list the items of the given level.
// Deeper items become nested lists inside the last item.
func (p *Parser) parseListLevel(list *nodes.ListNode, level int) {
	var last *nodes.ListItemNode

	for {
		tok := p.peek()
		if tok.Type != lexer.LIST {
			return
		}

		depth := len(tok.Prefix)
		if depth < level {
			return
		}

		if depth == level {
			p.next()
			item := &nodes.ListItemNode{Level: depth}
			item.Context = tok.Context
			nodes.AppendChild(item, p.parseSentence(p.substitute(tok.Value), tok.Context))
			nodes.AppendChild(list, item)
			last = item
			continue
		}

		// A nested list hangs from the previous item
		if last == nil {
			last = &nodes.ListItemNode{Level: level}
			last.Context = tok.Context
			nodes.AppendChild(list, last)
		}
		nested := &nodes.ListNode{Ordered: tok.Prefix[0] == '#'}
		nested.Context = tok.Context
		p.parseListLevel(nested, depth)
		nodes.AppendChild(last, nested)
	}
}

func (p *Parser) parseCommand() {
	tok := p.next()

	args, err := ParseArguments(p.substitute(tok.Value))
	if err != nil {
		fail(tok.Context, tok.Raw, "malformed command arguments: %v", err)
	}
	p.attributes.pushArguments(args)
	attrs := p.attributes.pop()
	p.title.pop()

	switch tok.Prefix {
	case "toc":
		n := &nodes.TocNode{}
		n.Attributes = attrs
		n.Context = tok.Context
		p.toc.addCommand(n)
		p.appendNode(n)

	case "footnotes":
		n := &nodes.FootnotesNode{}
		n.Attributes = attrs
		n.Context = tok.Context
		p.footnotes.addCommand(n)
		p.appendNode(n)

	case "references":
		n := &nodes.ReferencesNode{}
		if len(attrs.Args) > 0 {
			n.ContentType = attrs.Args[0]
			attrs.Args = attrs.Args[1:]
		}
		n.Attributes = attrs
		n.Context = tok.Context
		p.references.addCommand(n)
		p.appendNode(n)

	default:
		fail(tok.Context, tok.Prefix, "unknown command")
	}
}

func (p *Parser) parseContent() {
	tok := p.next()

	args, err := ParseArguments(p.substitute(tok.Value))
	if err != nil {
		fail(tok.Context, tok.Raw, "malformed content arguments: %v", err)
	}
	if args.Kwargs == nil {
		args.Kwargs = make(map[string]string)
	}

	attrs := p.attributes.pop()
	title := p.popTitle()

	switch tok.Prefix {
	case "image":
		if len(args.Args) == 0 {
			fail(tok.Context, tok.Raw, "image without uri")
		}
		n := &nodes.ContentImageNode{
			URI:     args.Args[0],
			AltText: args.Kwargs["alt_text"],
		}
		if n.AltText == "" {
			n.AltText = attrs.Kwarg("alt_text", "")
		}
		classes := args.Kwargs["classes"]
		if classes == "" {
			classes = attrs.Kwarg("classes", "")
		}
		n.Classes = splitList(classes)
		n.Attributes = attrs
		n.Context = tok.Context
		n.SetTitle(title)
		p.appendNode(n)

	case "mau":
		n := &nodes.ContentNode{ContentType: tok.Prefix, URIArgs: args.Args, URIKwargs: args.Kwargs}
		n.Attributes = attrs
		n.Context = tok.Context
		n.SetTitle(title)
		p.include(n, tok)
		p.appendNode(n)

	default:
		n := &nodes.ContentNode{ContentType: tok.Prefix, URIArgs: args.Args, URIKwargs: args.Kwargs}
		n.Attributes = attrs
		n.Context = tok.Context
		n.SetTitle(title)
		p.appendNode(n)
	}
}

// include parses the Mau document named by the first argument of n and
// adds its nodes as children of n.
func (p *Parser) include(n *nodes.ContentNode, tok lexer.Token) {
	if len(n.URIArgs) == 0 {
		fail(tok.Context, tok.Raw, "include without path")
	}
	if p.fsys == nil {
		fail(tok.Context, tok.Raw, "includes are not available")
	}

	name := p.includePath(n.URIArgs[0])
	if !fs.ValidPath(name) {
		fail(tok.Context, n.URIArgs[0], "invalid include path")
	}
	for _, included := range p.includes {
		if included == name {
			fail(tok.Context, n.URIArgs[0], "circular include")
		}
	}

	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		fail(tok.Context, n.URIArgs[0], "cannot read included document: %v", err)
	}

	p.log.Debugw("including document", "source", p.source, "path", name)

	sub := p.child()
	sub.includes = append(append([]string(nil), p.includes...), name)
	sub.parseBuffer(lexer.NewBuffer(string(data), name))
	p.merge(sub, tok.Context)

	nodes.ReparentChildren(n, sub.doc)
}

// includePath resolves uri relative to the document being parsed.
func (p *Parser) includePath(uri string) string {
	if strings.HasPrefix(uri, "/") {
		return path.Clean(strings.TrimLeft(uri, "/"))
	}
	dir := "."
	if fs.ValidPath(p.source) {
		dir = path.Dir(p.source)
	}
	return path.Join(dir, uri)
}

var reVariableReference = regexp.MustCompile(`\\?\{([a-zA-Z0-9_.+-]+)\}`)

// substitute replaces the references {name} to defined variables.
// A reference preceded by a backslash is left as is, without the backslash.
func (p *Parser) substitute(text string) string {
	matches := reVariableReference.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	b := sliceedit.NewBuffer(text)
	for _, m := range matches {
		if text[m[0]] == '\\' {
			b.Delete(m[0], m[0]+1)
			continue
		}
		if value, ok := p.variables[text[m[2]:m[3]]]; ok {
			b.Replace(m[0], m[1], value)
		}
	}

	return b.String()
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var result []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
