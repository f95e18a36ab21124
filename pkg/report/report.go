// Package report renders the substitution map of a working directory: which
// deprecated packages are present and which maintained packages they map to.
package report

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-graphviz"
)

// Edge is one old→new substitution in the report.
type Edge struct {
	// From is the deprecated package name.
	From string
	// To is the replacement package name.
	To string
	// Version is the version or constraint the package is pinned at.
	Version string
	// Resolved reports whether the replacement exists at that version.
	Resolved bool
}

// ToDOT converts substitution edges to Graphviz DOT format. Edges are
// emitted sorted by deprecated name so output is deterministic. The
// resulting DOT string can be rendered with [RenderSVG].
func ToDOT(edges []Edge) string {
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })

	var buf bytes.Buffer
	buf.WriteString("digraph substitutions {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, e := range sorted {
		fmt.Fprintf(&buf, "  %q [fillcolor=mistyrose];\n", e.From)
		fmt.Fprintf(&buf, "  %q [fillcolor=honeydew];\n", e.To)
	}

	buf.WriteString("\n")
	for _, e := range sorted {
		if e.Resolved {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Version)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q, style=dashed, color=grey];\n",
				e.From, e.To, e.Version+" (unavailable)")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
