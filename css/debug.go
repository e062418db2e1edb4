package css

import (
	"fmt"

	"fontdl/utils/debug"
)

// Dump returns parsed tree in human readable form.
func (s *Stylesheet) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "stylesheet: %d node(s), %d warning(s)", len(s.Nodes), len(s.Warnings))
	for _, w := range s.Warnings {
		tw.TextBlock(1, "warning", w)
	}
	for i, n := range s.Nodes {
		dumpNode(tw, 1, i, n)
	}
	return tw.String()
}

func dumpNode(tw *debug.TreeWriter, depth, index int, n *Node) {
	switch n.Kind {
	case CommentNode:
		tw.TextBlock(depth, fmt.Sprintf("#%d comment", index), n.Name)
	case DeclarationNode:
		tw.TextBlock(depth, fmt.Sprintf("#%d declaration %s", index, n.Name), joinTokens(n.Values))
	case RawNode:
		tw.TextBlock(depth, fmt.Sprintf("#%d raw", index), joinTokens(n.Values))
	default:
		tw.Line(depth, "#%d %s %s %q (%d child(ren))", index, n.Kind, n.Name, joinTokens(n.Prelude), len(n.Children))
	}
	for i, c := range n.Children {
		dumpNode(tw, depth+1, i, c)
	}
}
