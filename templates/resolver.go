// Package templates finds and renders the template of every node.
//
// The name of the template is chosen among a list of candidates built from
// the configured prefixes, the position of the node inside its parent, the
// templates proposed by the visitor, the node subtype and the node tags.
// The first candidate that exists in the template Set is rendered with the
// data of the node and the configuration.
package templates

import (
	"strings"

	"github.com/hesusruiz/mau/nodes"
)

// DefaultExtension is appended to every candidate name.
const DefaultExtension = "j2"

// Resolver enumerates the candidate template names of a node.
type Resolver struct {
	Prefixes  []string
	Extension string
}

// Candidates returns the template names for n, most specific first.
//
// Names are built as prefix.parent.template.subtype.tag.extension, where
// empty parts are skipped. The prefix changes slowest and the tag fastest.
// nodeTemplates are the names proposed by the visitor, and the node type
// is always tried after them. Tags are tried one at a time, never combined.
func (r *Resolver) Candidates(n nodes.Node, nodeTemplates []string) []string {
	ext := r.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	b := n.Meta()

	prefixes := append(append([]string(nil), r.Prefixes...), "")
	parents := parentPaths(n)
	templates := append(append([]string(nil), nodeTemplates...), n.NodeType())

	subtypes := []string{""}
	if b.Subtype != "" {
		subtypes = []string{b.Subtype, ""}
	}

	tags := append(append([]string(nil), b.Tags...), "")

	var result []string
	seen := make(map[string]bool)

	for _, prefix := range prefixes {
		for _, parent := range parents {
			for _, template := range templates {
				for _, subtype := range subtypes {
					for _, tag := range tags {
						name := joinName(prefix, parent, template, subtype, tag) + "." + ext
						if !seen[name] {
							seen[name] = true
							result = append(result, name)
						}
					}
				}
			}
		}
	}

	return result
}

// parentPaths returns the parent part of the names, from the most specific to the empty one.
func parentPaths(n nodes.Node) []string {
	b := n.Meta()
	parent := b.Parent()
	if parent == nil {
		return []string{""}
	}

	ptype := parent.NodeType()
	psubtype := parent.Meta().Subtype
	position := b.ParentPosition

	var paths []string
	if psubtype != "" && position != "" {
		paths = append(paths, joinName(ptype, psubtype, position))
	}
	if psubtype != "" {
		paths = append(paths, joinName(ptype, psubtype))
	}
	if position != "" {
		paths = append(paths, joinName(ptype, position))
	}
	paths = append(paths, ptype, "")

	return paths
}

func joinName(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}
