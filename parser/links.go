package parser

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/hesusruiz/mau/nodes"
)

// LinksManager collects the headers and the internal links of a document
// and connects them once parsing is complete.
type LinksManager struct {
	headers map[string]*nodes.HeaderNode
	links   []*nodes.MacroHeaderNode
}

// NewLinksManager returns an empty manager.
func NewLinksManager() *LinksManager {
	return &LinksManager{
		headers: make(map[string]*nodes.HeaderNode),
	}
}

// AddHeader registers a header under id. Ids must be unique.
func (m *LinksManager) AddHeader(id string, header *nodes.HeaderNode) error {
	if _, exists := m.headers[id]; exists {
		return &LinkError{ID: id, Msg: "duplicate header id"}
	}
	m.headers[id] = header
	return nil
}

// AddLink registers an internal link to be resolved.
func (m *LinksManager) AddLink(link *nodes.MacroHeaderNode) {
	m.links = append(m.links, link)
}

// Header returns the header registered under id.
func (m *LinksManager) Header(id string) (*nodes.HeaderNode, bool) {
	h, ok := m.headers[id]
	return h, ok
}

// Links returns the links collected so far.
func (m *LinksManager) Links() []*nodes.MacroHeaderNode {
	return m.links
}

// Update merges the headers and links collected by other.
// A header id already known to m is an error.
func (m *LinksManager) Update(other *LinksManager) error {
	for id, header := range other.headers {
		if err := m.AddHeader(id, header); err != nil {
			return err
		}
	}
	m.links = append(m.links, other.links...)
	return nil
}

// Resolve connects every link to its header.
func (m *LinksManager) Resolve() error {
	for _, link := range m.links {
		header, ok := m.headers[link.HeaderID]
		if !ok {
			return &LinkError{ID: link.HeaderID, Msg: "link to unknown header id"}
		}
		link.Header = header
	}
	return nil
}

// anchorRegistry generates header anchors that are unique in a document.
// It is shared by a parser and all its sub-parsers.
type anchorRegistry struct {
	used map[string]bool
}

func newAnchorRegistry() *anchorRegistry {
	return &anchorRegistry{used: make(map[string]bool)}
}

// reserve marks an explicit id as used.
func (r *anchorRegistry) reserve(id string) {
	r.used[id] = true
}

// generate returns a slug of text that has not been used yet,
// adding a numeric suffix if needed.
func (r *anchorRegistry) generate(text string) string {
	base := Slugify(text)
	if base == "" {
		base = "header"
	}

	anchor := base
	for i := 1; r.used[anchor]; i++ {
		anchor = base + "-" + strconv.Itoa(i)
	}
	r.used[anchor] = true

	return anchor
}

// Slugify converts text into a string usable as an anchor:
// lowercase ASCII letters and digits separated by single dashes.
func Slugify(text string) string {
	// Decompose accented letters and drop the marks
	decomposed := norm.NFKD.String(text)
	decomposed = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, decomposed)
	decomposed = cases.Lower(language.Und).String(decomposed)

	var b strings.Builder
	dash := false
	for _, r := range decomposed {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}

	return b.String()
}
