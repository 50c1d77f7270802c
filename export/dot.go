package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/resolver"
	"github.com/c360studio/spdxld/vocabulary/spdx"
)

const dotHeader = "digraph G {\nnode [fontname=Arial, fontsize=8, shape=box, style=filled, fillcolor=lightskyblue1]\n"

// RenderDOT renders expanded elements as a Graphviz digraph. Every element
// becomes a node labelled n1..nN in input order, showing its compacted id
// and name. Each entry of a collection's elements and members lists becomes
// an edge; targets that are not rendered nodes are drawn as a quoted
// compact identifier. When ids repeat, edges point at the first node.
func RenderDOT(ctx *resolver.Context, expanded []document.Element) string {
	var sb strings.Builder
	_ = WriteDOT(&sb, ctx, expanded)
	return sb.String()
}

// WriteDOT streams the output of RenderDOT to w.
func WriteDOT(w io.Writer, ctx *resolver.Context, expanded []document.Element) error {
	labels := make(map[string]int, len(expanded))
	for i, e := range expanded {
		if _, dup := labels[e.ID]; !dup {
			labels[e.ID] = i + 1
		}
	}

	if _, err := io.WriteString(w, dotHeader); err != nil {
		return err
	}
	for i, e := range expanded {
		src := i + 1
		if _, err := fmt.Fprintf(w, "n%d [label=\"%s\\n%s\"]\n", src, escapeDOT(ctx.Compact(e.ID)), escapeDOT(e.Name)); err != nil {
			return err
		}
		c, ok := e.Type.(*document.Collection)
		if !ok {
			continue
		}
		for _, prop := range spdx.GraphEdgeProperties {
			for _, target := range c.List(prop) {
				var err error
				if dst, ok := labels[target]; ok {
					_, err = fmt.Fprintf(w, "  n%d -> n%d\n", src, dst)
				} else {
					_, err = fmt.Fprintf(w, "  n%d -> \"%s\"\n", src, escapeDOT(ctx.Compact(target)))
				}
				if err != nil {
					return err
				}
			}
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

// escapeDOT escapes a string for use inside a double-quoted DOT ID.
func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
