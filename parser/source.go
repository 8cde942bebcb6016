package parser

import (
	"regexp"
	"strings"

	"github.com/hesusruiz/mau/lexer"
	"github.com/hesusruiz/mau/nodes"
	"github.com/hesusruiz/mau/sliceedit"
)

// reCalloutEntry matches a line of the callouts list, "marker: text"
var reCalloutEntry = regexp.MustCompile(`^([^\s:]+):\s+(.*)$`)

// parseSource builds a SourceNode from the lines of a block with engine "source".
func (p *Parser) parseSource(open lexer.Token, blocktype string, attrs nodes.Attributes, lines []lexer.Token, secondary []lexer.Token) *nodes.SourceNode {
	n := nodes.NewSourceNode()
	n.Attributes = attrs
	n.Context = open.Context
	n.Blocktype = blocktype
	n.Language = attrs.Kwarg("language", n.Language)
	n.Delimiter = attrs.Kwarg("callouts", n.Delimiter)
	n.Highlight = attrs.Kwarg("highlight", n.Highlight)
	n.Preprocessor = attrs.Kwarg("preprocessor", "")
	n.Classes = splitList(attrs.Kwarg("classes", ""))

	if n.Delimiter == "" {
		fail(open.Context, open.Value, "empty callouts delimiter")
	}

	seen := make(map[string]bool)

	for i, tok := range lines {
		line := unescapeSourceLine(tok.Value)

		if code, marker, ok := splitMarker(line, n.Delimiter); ok {
			line = code
			if marker == n.Highlight {
				n.Highlights.Add(i)
			} else {
				if seen[marker] {
					fail(tok.Context, marker, "duplicate callout marker")
				}
				seen[marker] = true

				callout := &nodes.CalloutNode{Line: i, Marker: marker}
				callout.Context = tok.Context
				n.AppendMarker(callout)
			}
		}

		raw := &nodes.RawNode{Value: line}
		raw.Context = tok.Context
		n.AppendCode(raw)
	}

	for _, tok := range secondary {
		m := reCalloutEntry.FindStringSubmatch(strings.TrimSpace(tok.Raw))
		if m == nil {
			fail(tok.Context, tok.Raw, "malformed callout entry")
		}
		entry := &nodes.CalloutsEntryNode{Marker: m[1], Value: m[2]}
		entry.Context = tok.Context
		n.AppendCallout(entry)
	}

	// When the callouts list is present it must explain every marker
	if len(n.Callouts) > 0 {
		explained := make(map[string]bool, len(n.Callouts))
		for _, entry := range n.Callouts {
			explained[entry.Marker] = true
		}
		for _, marker := range n.Markers {
			if !explained[marker.Marker] {
				fail(marker.Context, marker.Marker, "callout marker without entry")
			}
		}
	}

	return n
}

// splitMarker looks for a marker "<delim>token<delim>" at the end of line.
// The token cannot be empty and cannot contain whitespace or the delimiter.
// A single delimiter, like in "def something:", is not a marker.
func splitMarker(line string, delim string) (string, string, bool) {
	if !strings.HasSuffix(line, delim) {
		return "", "", false
	}

	body := line[:len(line)-len(delim)]
	start := strings.LastIndex(body, delim)
	if start == -1 {
		return "", "", false
	}

	token := body[start+len(delim):]
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", "", false
	}

	// Strip the marker from the line
	b := sliceedit.NewBuffer(line)
	b.Delete(start, len(line))

	return b.String(), token, true
}

// unescapeSourceLine removes the backslash that protects lines
// that would otherwise be read as commands or fences.
func unescapeSourceLine(line string) string {
	if !strings.HasPrefix(line, `\`) {
		return line
	}
	rest := line[1:]
	if strings.HasPrefix(rest, "::") || lexer.IsFence(rest) {
		return rest
	}
	return line
}
