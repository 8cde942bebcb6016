// Package visitor walks a document tree and converts every node into a
// record: a data map with the public fields of the node and the list of
// templates that can render it. Child nodes in the data are replaced by the
// result of visiting them.
//
// What a visit returns is decided by an Emitter. RecordEmitter returns the
// records as plain maps, which is useful to inspect the tree, while the
// template renderer returns strings.
package visitor

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/hesusruiz/mau/env"
	"github.com/hesusruiz/mau/lexer"
	"github.com/hesusruiz/mau/nodes"
)

// Record is the result of visiting a node, before emitting it.
type Record struct {
	Data      map[string]any
	Templates []string
}

// Emitter converts the record of a node into the result of the visit.
type Emitter interface {
	Emit(n nodes.Node, r *Record) (any, error)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(n nodes.Node, r *Record) (any, error)

func (f EmitterFunc) Emit(n nodes.Node, r *Record) (any, error) {
	return f(n, r)
}

// RecordEmitter emits the records as maps with the keys "data" and "templates".
type RecordEmitter struct{}

func (RecordEmitter) Emit(n nodes.Node, r *Record) (any, error) {
	templates := r.Templates
	if templates == nil {
		templates = []string{}
	}
	return map[string]any{
		"data":      r.Data,
		"templates": templates,
	}, nil
}

// VisitorError is raised for nodes that the visitor does not know.
type VisitorError struct {
	NodeType string
	Context  lexer.Context
}

func (e *VisitorError) Error() string {
	return fmt.Sprintf("%s: cannot visit node of type %q", e.Context, e.NodeType)
}

// defaultJoinWith are the separators used to join the visited children of
// container nodes. Other node types join with the empty string.
var defaultJoinWith = map[string]string{
	nodes.TypeBlock:           "\n",
	nodes.TypeContent:         "\n",
	nodes.TypeDocument:        "\n",
	nodes.TypeFootnotesEntry:  "\n",
	nodes.TypeReferencesEntry: "\n",
	nodes.TypeSource:          "\n",
	nodes.TypeListItem:        "\n",
}

// Option configures a Visitor.
type Option func(*Visitor)

// WithLogger sets the logger used for debug traces.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(v *Visitor) {
		if log != nil {
			v.log = log
		}
	}
}

// WithEnvironment sets the configuration. The separators of the join table
// can be changed with "mau.visitor.join_with.<node_type>".
func WithEnvironment(e *env.Environment) Option {
	return func(v *Visitor) {
		if e != nil {
			v.env = e
		}
	}
}

// Visitor converts nodes with an Emitter.
// A Visitor is used for one document at a time.
type Visitor struct {
	env     *env.Environment
	log     *zap.SugaredLogger
	emitter Emitter

	joinWith map[string]string

	// excludeTag filters the entries of the toc being visited
	excludeTag string
}

// New creates a visitor. A nil emitter means RecordEmitter.
func New(emitter Emitter, opts ...Option) *Visitor {
	if emitter == nil {
		emitter = RecordEmitter{}
	}
	v := &Visitor{
		env:      env.New(),
		log:      zap.NewNop().Sugar(),
		emitter:  emitter,
		joinWith: make(map[string]string),
	}
	for _, opt := range opts {
		opt(v)
	}

	for k, sep := range defaultJoinWith {
		v.joinWith[k] = sep
	}
	for k, sep := range v.env.Namespace("mau.visitor.join_with") {
		v.joinWith[k] = fmt.Sprint(sep)
	}

	return v
}

// JoinWith returns the separator used for the children of nodes of the given type.
func (v *Visitor) JoinWith(nodeType string) string {
	return v.joinWith[nodeType]
}

func isNil(n nodes.Node) bool {
	if n == nil {
		return true
	}
	rv := reflect.ValueOf(n)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Visit builds the record of n and emits it. A nil node gives an empty map.
func (v *Visitor) Visit(n nodes.Node) (any, error) {
	if isNil(n) {
		return map[string]any{}, nil
	}

	r, err := v.Record(n)
	if err != nil {
		return nil, err
	}

	return v.emitter.Emit(n, r)
}

// VisitList visits a list of nodes. If join is not nil and all the results
// are strings, they are concatenated with join as separator.
func (v *Visitor) VisitList(list []nodes.Node, join *string) (any, error) {
	results := make([]any, 0, len(list))
	for _, n := range list {
		result, err := v.Visit(n)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if join == nil {
		return results, nil
	}

	texts := make([]string, 0, len(results))
	for _, result := range results {
		s, ok := result.(string)
		if !ok {
			return results, nil
		}
		texts = append(texts, s)
	}

	return strings.Join(texts, *join), nil
}

// visitChildren visits a list with the separator configured for the container type.
func (v *Visitor) visitChildren(containerType string, list []nodes.Node) (any, error) {
	sep := v.joinWith[containerType]
	return v.VisitList(list, &sep)
}

// Record builds the record of n, visiting its children.
func (v *Visitor) Record(n nodes.Node) (*Record, error) {
	r := &Record{Data: commonData(n)}

	var err error
	switch node := n.(type) {
	case *nodes.DocumentNode:
		err = v.content(r, n)
	case *nodes.ParagraphNode:
		err = v.content(r, n)
	case *nodes.SentenceNode:
		err = v.content(r, n)
	case *nodes.TextNode:
		r.Data["value"] = node.Value
	case *nodes.VerbatimNode:
		r.Data["value"] = node.Value
	case *nodes.RawNode:
		r.Data["value"] = node.Value
	case *nodes.StyleNode:
		r.Data["value"] = node.Value
		r.Templates = []string{"style." + node.Value}
		err = v.content(r, n)
	case *nodes.ClassNode:
		r.Data["classes"] = copyStrings(node.Classes)
		err = v.content(r, n)
	case *nodes.MacroNode:
		r.Data["name"] = node.Name
		r.Templates = []string{"macro." + node.Name}
	case *nodes.MacroLinkNode:
		r.Data["target"] = node.Target
		err = v.content(r, n)
	case *nodes.MacroImageNode:
		r.Data["uri"] = node.URI
		r.Data["alt_text"] = node.AltText
		r.Data["width"] = node.Width
		r.Data["height"] = node.Height
	case *nodes.MacroHeaderNode:
		r.Data["header_id"] = node.HeaderID
		r.Data["header"] = headerData(node.Header)
		err = v.content(r, n)
	case *nodes.HeaderNode:
		for k, val := range headerData(node) {
			r.Data[k] = val
		}
	case *nodes.HorizontalRuleNode:
	case *nodes.ListNode:
		r.Data["ordered"] = node.Ordered
		r.Data["main_node"] = node.MainNode
		err = v.content(r, n)
	case *nodes.ListItemNode:
		r.Data["level"] = node.Level
		err = v.content(r, n)
	case *nodes.BlockNode:
		err = v.block(r, node)
	case *nodes.SourceNode:
		err = v.source(r, node)
	case *nodes.CalloutNode:
		r.Data["line"] = node.Line
		r.Data["marker"] = node.Marker
	case *nodes.CalloutsEntryNode:
		r.Data["marker"] = node.Marker
		r.Data["value"] = node.Value
	case *nodes.ContentNode:
		err = v.contentNode(r, node)
	case *nodes.ContentImageNode:
		r.Data["content_type"] = "image"
		r.Data["uri"] = node.URI
		r.Data["alt_text"] = node.AltText
		r.Data["classes"] = copyStrings(node.Classes)
		r.Data["title"], err = v.Visit(node.Title)
	case *nodes.FootnoteNode:
		r.Data["name"] = node.Name
		r.Data["number"] = node.Number
		r.Data["reference_anchor"] = node.ReferenceAnchor
		r.Data["content_anchor"] = node.ContentAnchor
	case *nodes.FootnotesEntryNode:
		r.Data["name"] = node.Name
		r.Data["number"] = node.Number
		r.Data["reference_anchor"] = node.ReferenceAnchor
		r.Data["content_anchor"] = node.ContentAnchor
		err = v.content(r, n)
	case *nodes.FootnotesNode:
		entries := make([]nodes.Node, 0, len(node.Entries))
		for _, e := range node.Entries {
			entries = append(entries, e)
		}
		r.Data["entries"], err = v.visitChildren(nodes.TypeFootnotes, entries)
	case *nodes.ReferenceNode:
		referenceData(r.Data, node.ContentType, node.Category, node.Name, node.Number, node.ReferenceAnchor, node.ContentAnchor)
		r.Templates = []string{"reference." + node.ContentType}
	case *nodes.ReferencesEntryNode:
		referenceData(r.Data, node.ContentType, node.Category, node.Name, node.Number, node.ReferenceAnchor, node.ContentAnchor)
		r.Templates = []string{"references_entry." + node.ContentType}
		err = v.content(r, n)
	case *nodes.ReferencesNode:
		err = v.references(r, node)
	case *nodes.TocNode:
		err = v.toc(r, node)
	case *nodes.TocEntryNode:
		err = v.tocEntry(r, node)
	default:
		v.log.Debugw("unknown node", "type", n.NodeType(), "context", n.Meta().Context.String())
		return nil, &VisitorError{NodeType: n.NodeType(), Context: n.Meta().Context}
	}

	if err != nil {
		return nil, err
	}
	return r, nil
}

func commonData(n nodes.Node) map[string]any {
	b := n.Meta()

	kwargs := make(map[string]string, len(b.Kwargs))
	for k, v := range b.Kwargs {
		kwargs[k] = v
	}

	return map[string]any{
		"type":    n.NodeType(),
		"subtype": b.Subtype,
		"args":    copyStrings(b.Args),
		"kwargs":  kwargs,
		"tags":    copyStrings(b.Tags),
	}
}

// copyStrings returns a copy of list that is never nil.
func copyStrings(list []string) []string {
	return append([]string{}, list...)
}

func headerData(h *nodes.HeaderNode) map[string]any {
	if h == nil {
		return map[string]any{}
	}
	return map[string]any{
		"value":  h.Value,
		"level":  h.Level,
		"anchor": h.Anchor,
	}
}

func referenceData(data map[string]any, contentType, category, name string, number int, referenceAnchor, contentAnchor string) {
	data["content_type"] = contentType
	data["category"] = category
	data["name"] = name
	data["number"] = number
	data["reference_anchor"] = referenceAnchor
	data["content_anchor"] = contentAnchor
}

// content stores the visited children of n in the "content" key.
func (v *Visitor) content(r *Record, n nodes.Node) error {
	content, err := v.visitChildren(n.NodeType(), n.Meta().Children())
	if err != nil {
		return err
	}
	r.Data["content"] = content
	return nil
}

func (v *Visitor) block(r *Record, n *nodes.BlockNode) error {
	r.Data["blocktype"] = n.Blocktype
	r.Data["engine"] = n.Engine
	r.Data["preprocessor"] = n.Preprocessor

	var err error
	if r.Data["title"], err = v.Visit(n.Title); err != nil {
		return err
	}
	if r.Data["secondary_content"], err = v.visitChildren(nodes.TypeBlock, n.SecondaryContent); err != nil {
		return err
	}

	if n.Blocktype != "" && n.Blocktype != nodes.DefaultBlocktype {
		if n.Engine != "" {
			r.Templates = append(r.Templates, "block."+n.Blocktype+"."+n.Engine)
		}
		r.Templates = append(r.Templates, "block."+n.Blocktype)
	}
	if n.Engine != "" {
		r.Templates = append(r.Templates, "block."+n.Engine)
	}

	return v.content(r, n)
}

func (v *Visitor) source(r *Record, n *nodes.SourceNode) error {
	r.Data["blocktype"] = n.Blocktype
	r.Data["language"] = n.Language
	r.Data["preprocessor"] = n.Preprocessor
	r.Data["delimiter"] = n.Delimiter
	r.Data["highlight"] = n.Highlight
	r.Data["classes"] = copyStrings(n.Classes)

	var err error
	if r.Data["title"], err = v.Visit(n.Title); err != nil {
		return err
	}

	code := make([]string, len(n.Code))
	for i, line := range n.Code {
		code[i] = line.Value
	}

	// One entry per line, nil where there is no marker
	markers := make([]any, len(code))
	for _, m := range n.Markers {
		markers[m.Line] = m.Marker
	}

	highlights := n.HighlightedLines()
	highlighted := make(map[int]bool, len(highlights))
	for _, h := range highlights {
		highlighted[h] = true
	}

	lines := make([]any, len(code))
	for i, line := range code {
		lines[i] = map[string]any{
			"code":      line,
			"marker":    markers[i],
			"highlight": highlighted[i],
		}
	}

	callouts := make([]any, len(n.Callouts))
	for i, c := range n.Callouts {
		callouts[i] = map[string]any{"marker": c.Marker, "value": c.Value}
	}

	r.Data["code"] = code
	r.Data["content"] = strings.Join(code, v.joinWith[nodes.TypeSource])
	r.Data["markers"] = markers
	r.Data["highlights"] = highlights
	r.Data["lines"] = lines
	r.Data["callouts"] = callouts

	r.Templates = []string{"source." + n.Language}

	return nil
}

func (v *Visitor) contentNode(r *Record, n *nodes.ContentNode) error {
	uriKwargs := make(map[string]string, len(n.URIKwargs))
	for k, val := range n.URIKwargs {
		uriKwargs[k] = val
	}

	r.Data["content_type"] = n.ContentType
	r.Data["uri_args"] = copyStrings(n.URIArgs)
	r.Data["uri_kwargs"] = uriKwargs

	var err error
	if r.Data["title"], err = v.Visit(n.Title); err != nil {
		return err
	}

	r.Templates = []string{"content." + n.ContentType}

	return v.content(r, n)
}

func (v *Visitor) references(r *Record, n *nodes.ReferencesNode) error {
	exclude := n.Kwarg("exclude_tag", "")

	entries := make([]nodes.Node, 0, len(n.Entries))
	for _, e := range n.Entries {
		if exclude != "" && e.HasTag(exclude) {
			continue
		}
		entries = append(entries, e)
	}

	r.Data["content_type"] = n.ContentType
	if n.ContentType != "" {
		r.Templates = []string{"references." + n.ContentType}
	}

	var err error
	r.Data["entries"], err = v.visitChildren(nodes.TypeReferences, entries)
	return err
}

func (v *Visitor) toc(r *Record, n *nodes.TocNode) error {
	previous := v.excludeTag
	v.excludeTag = n.Kwarg("exclude_tag", "")
	defer func() { v.excludeTag = previous }()

	var err error
	r.Data["entries"], err = v.visitChildren(nodes.TypeToc, v.tocEntries(n))
	return err
}

func (v *Visitor) tocEntry(r *Record, n *nodes.TocEntryNode) error {
	r.Data["header"] = headerData(n.Header)

	var err error
	r.Data["entries"], err = v.visitChildren(nodes.TypeTocEntry, v.tocEntries(n))
	return err
}

// tocEntries returns the children of n whose header does not carry the excluded tag.
func (v *Visitor) tocEntries(n nodes.Node) []nodes.Node {
	var result []nodes.Node
	for _, child := range n.Meta().Children() {
		if e, ok := child.(*nodes.TocEntryNode); ok && v.excludeTag != "" && e.Header != nil && e.Header.HasTag(v.excludeTag) {
			continue
		}
		result = append(result, child)
	}
	return result
}
