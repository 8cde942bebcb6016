package parser

import (
	"regexp"
	"strings"

	"github.com/hesusruiz/mau/lexer"
	"github.com/hesusruiz/mau/nodes"
)

var styleMarkers = map[byte]string{
	'*': nodes.StyleStar,
	'_': nodes.StyleUnderscore,
	'^': nodes.StyleCaret,
	'~': nodes.StyleTilde,
}

var reMacro = regexp.MustCompile(`^\[([a-zA-Z0-9_.-]+)\]\(`)

// inlineRecords collects the nodes that have to be registered in the
// managers of the parser. They are committed only when the whole text has
// been parsed, as the inline parser backtracks over unclosed styles.
type inlineRecords struct {
	links      []*nodes.MacroHeaderNode
	footnotes  []*nodes.FootnoteNode
	references []*nodes.ReferenceNode
}

type recordsMark struct {
	links, footnotes, references int
}

func (r *inlineRecords) mark() recordsMark {
	return recordsMark{len(r.links), len(r.footnotes), len(r.references)}
}

func (r *inlineRecords) rollback(m recordsMark) {
	r.links = r.links[:m.links]
	r.footnotes = r.footnotes[:m.footnotes]
	r.references = r.references[:m.references]
}

// unclosedStyle is a style marker, identified by the position that follows
// it, that is known to have no closing marker.
type unclosedStyle struct {
	pos    int
	marker byte
}

// inlineParser splits a line of text into inline nodes.
type inlineParser struct {
	text     string
	pos      int
	ctx      lexer.Context
	records  *inlineRecords
	unclosed map[unclosedStyle]bool
}

// parseSentence parses text into a sentence and registers the internal links,
// footnotes and references it contains.
func (p *Parser) parseSentence(text string, ctx lexer.Context) *nodes.SentenceNode {
	sentence := &nodes.SentenceNode{}
	sentence.Context = ctx
	nodes.AppendChildren(sentence, p.parseInlineText(text, ctx)...)
	return sentence
}

// parseInlineText parses text into inline nodes and registers the internal
// links, footnotes and references it contains.
func (p *Parser) parseInlineText(text string, ctx lexer.Context) []nodes.Node {
	records := &inlineRecords{}
	result := parseInline(text, ctx, records)

	for _, link := range records.links {
		p.links.AddLink(link)
	}
	for _, f := range records.footnotes {
		p.footnotes.addMention(f)
	}
	for _, r := range records.references {
		p.references.addMention(r)
	}

	return result
}

func parseInline(text string, ctx lexer.Context, records *inlineRecords) []nodes.Node {
	ip := &inlineParser{
		text:     text,
		ctx:      ctx,
		records:  records,
		unclosed: make(map[unclosedStyle]bool),
	}
	result, _ := ip.parseUntil(0)
	return result
}

// parseUntil parses nodes up to the stop character, which is consumed.
// A stop of 0 parses up to the end of the text. The boolean reports
// whether the stop character was found.
func (ip *inlineParser) parseUntil(stop byte) ([]nodes.Node, bool) {
	var result []nodes.Node
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			n := &nodes.TextNode{Value: text.String()}
			n.Context = ip.ctx
			result = append(result, n)
			text.Reset()
		}
	}

	for ip.pos < len(ip.text) {
		c := ip.text[ip.pos]

		if stop != 0 && c == stop {
			ip.pos++
			flush()
			return result, true
		}

		if c == '\\' && ip.pos+1 < len(ip.text) {
			text.WriteByte(ip.text[ip.pos+1])
			ip.pos += 2
			continue
		}

		if c == '`' {
			if v := ip.verbatim(); v != nil {
				flush()
				result = append(result, v)
				continue
			}
		}

		if style, ok := styleMarkers[c]; ok {
			start := ip.pos
			mark := ip.records.mark()
			key := unclosedStyle{pos: start + 1, marker: c}

			// A failed attempt always fails again from the same position,
			// so it is not repeated when an outer style backtracks
			if !ip.unclosed[key] {
				ip.pos++
				children, closed := ip.parseUntil(c)
				if closed && len(children) > 0 {
					flush()
					n := &nodes.StyleNode{Value: style}
					n.Context = ip.ctx
					nodes.AppendChildren(n, children...)
					result = append(result, n)
					continue
				}
				if !closed {
					ip.unclosed[key] = true
				}
			}

			// Not a style: the marker is plain text
			ip.records.rollback(mark)
			ip.pos = start + 1
			text.WriteByte(c)
			continue
		}

		if c == '[' {
			if m := ip.macro(); m != nil {
				flush()
				result = append(result, m)
				continue
			}
		}

		text.WriteByte(c)
		ip.pos++
	}

	flush()
	return result, stop == 0
}

// verbatim parses `text`. It returns nil if the verbatim is not closed.
func (ip *inlineParser) verbatim() nodes.Node {
	var b strings.Builder
	for i := ip.pos + 1; i < len(ip.text); i++ {
		c := ip.text[i]
		if c == '\\' && i+1 < len(ip.text) && ip.text[i+1] == '`' {
			b.WriteByte('`')
			i++
			continue
		}
		if c == '`' {
			ip.pos = i + 1
			n := &nodes.VerbatimNode{Value: b.String()}
			n.Context = ip.ctx
			return n
		}
		b.WriteByte(c)
	}
	return nil
}

// macro parses [name](arguments). It returns nil if the text is not a macro.
func (ip *inlineParser) macro() nodes.Node {
	m := reMacro.FindStringSubmatch(ip.text[ip.pos:])
	if m == nil {
		return nil
	}

	start := ip.pos + len(m[0])
	end := -1
	inQuote := false
	for i := start; i < len(ip.text) && end == -1; i++ {
		c := ip.text[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(ip.text) && ip.text[i+1] == '"':
			i++
		case c == '"':
			inQuote = !inQuote
		case !inQuote && c == ')':
			end = i
		}
	}
	if end == -1 {
		return nil
	}

	literal := ip.text[ip.pos : end+1]
	args, err := ParseArguments(ip.text[start:end])
	if err != nil {
		fail(ip.ctx, literal, "malformed macro arguments: %v", err)
	}
	ip.pos = end + 1

	return ip.buildMacro(m[1], args, literal)
}

// positionalOrKwarg returns the positional argument i or, if missing, the named argument key.
func positionalOrKwarg(args Arguments, i int, key string) string {
	if i < len(args.Args) {
		return args.Args[i]
	}
	return args.Kwargs[key]
}

func (ip *inlineParser) buildMacro(name string, args Arguments, literal string) nodes.Node {

	require := func(value string, what string) string {
		if value == "" {
			fail(ip.ctx, literal, "macro %s requires %s", name, what)
		}
		return value
	}

	switch name {
	case "link", "mailto":
		target := require(positionalOrKwarg(args, 0, "target"), "a target")
		text := positionalOrKwarg(args, 1, "text")
		if text == "" {
			text = target
		}
		if name == "mailto" {
			target = "mailto:" + target
		}
		n := &nodes.MacroLinkNode{Target: target}
		n.Context = ip.ctx
		nodes.AppendChildren(n, parseInline(text, ip.ctx, ip.records)...)
		return n

	case "image":
		n := &nodes.MacroImageNode{
			URI:     require(positionalOrKwarg(args, 0, "uri"), "an uri"),
			AltText: positionalOrKwarg(args, 1, "alt_text"),
			Width:   args.Kwargs["width"],
			Height:  args.Kwargs["height"],
		}
		n.Context = ip.ctx
		return n

	case "header":
		n := &nodes.MacroHeaderNode{HeaderID: require(positionalOrKwarg(args, 0, "id"), "a header id")}
		n.Context = ip.ctx
		nodes.AppendChildren(n, parseInline(positionalOrKwarg(args, 1, "text"), ip.ctx, ip.records)...)
		ip.records.links = append(ip.records.links, n)
		return n

	case "footnote":
		n := &nodes.FootnoteNode{Name: require(positionalOrKwarg(args, 0, "name"), "a name")}
		n.Context = ip.ctx
		ip.records.footnotes = append(ip.records.footnotes, n)
		return n

	case "reference":
		n := &nodes.ReferenceNode{
			ContentType: require(positionalOrKwarg(args, 0, "content_type"), "a content type"),
			Name:        require(positionalOrKwarg(args, 1, "name"), "a name"),
		}
		n.Context = ip.ctx
		ip.records.references = append(ip.records.references, n)
		return n

	case "class":
		n := &nodes.ClassNode{Classes: splitList(require(positionalOrKwarg(args, 1, "classes"), "classes"))}
		n.Context = ip.ctx
		nodes.AppendChildren(n, parseInline(positionalOrKwarg(args, 0, "text"), ip.ctx, ip.records)...)
		return n
	}

	n := &nodes.MacroNode{Name: name}
	n.Attributes = nodes.NewAttributes(args.Args, args.Kwargs, args.Tags, args.Subtype)
	if n.Kwargs == nil {
		n.Kwargs = make(map[string]string)
	}
	n.Context = ip.ctx
	return n
}
