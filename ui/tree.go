package ui

import (
	"strings"
	"unicode/utf8"
)

// Tree hierarchy symbols using box drawing characters
const (
	// Basic tree connectors
	TreeBranch     = "├── " // Branch connector (tee right + horizontal line + space)
	TreeLastBranch = "└── " // Last branch connector (bottom left corner + horizontal line + space)

	// Spacing patterns for different indentation levels
	TreeContinue = "│   " // Vertical line + 3 spaces (parent has more siblings)
	TreeIndent   = "    " // 4 spaces (parent was last, no vertical line needed)

	// Box drawing characters for borders/containers
	BoxTopLeft     = "┌"
	BoxTopRight    = "┐"
	BoxBottomLeft  = "└"
	BoxBottomRight = "┘"
	BoxVertical    = "│"
	BoxHorizontal  = "─"
	BoxTeeRight    = "├"
	BoxTeeLeft     = "┤"
)

// Node is one line of a tree. Depth 0 is the root; its children are at depth 1.
type Node struct {
	Depth int
	Text  string
}

// BuildTreePrefix generates a tree prefix based on depth, position, and parent positions.
// parentIsLast[i] tells whether the ancestor at depth i+1 was the last of its siblings.
func BuildTreePrefix(depth int, isLast bool, parentIsLast []bool) string {
	if depth <= 0 {
		return ""
	}

	var prefix strings.Builder
	for i := 0; i < depth-1; i++ {
		if i < len(parentIsLast) && parentIsLast[i] {
			prefix.WriteString(TreeIndent)
		} else {
			prefix.WriteString(TreeContinue)
		}
	}

	if isLast {
		prefix.WriteString(TreeLastBranch)
	} else {
		prefix.WriteString(TreeBranch)
	}
	return prefix.String()
}

// RenderTree renders nodes given in pre-order, one line each.
func RenderTree(nodes []Node) string {
	var b strings.Builder
	var lastAt []bool

	for i, n := range nodes {
		if n.Depth <= 0 {
			b.WriteString(n.Text + "\n")
			lastAt = lastAt[:0]
			continue
		}
		last := isLastSibling(nodes, i)
		parents := lastAt
		if len(parents) > n.Depth-1 {
			parents = parents[:n.Depth-1]
		}
		b.WriteString(BuildTreePrefix(n.Depth, last, parents) + n.Text + "\n")
		lastAt = append(parents, last)
	}
	return b.String()
}

// isLastSibling reports whether no later node shares the parent of nodes[i].
func isLastSibling(nodes []Node, i int) bool {
	depth := nodes[i].Depth
	for _, n := range nodes[i+1:] {
		if n.Depth < depth {
			return true
		}
		if n.Depth == depth {
			return false
		}
	}
	return true
}

// BuildBoxHeader creates a box header with the given title and width
func BuildBoxHeader(title string, width int) string {
	titleLen := utf8.RuneCountInString(title)
	if width < titleLen+4 { // minimum space for borders and padding
		width = titleLen + 4
	}

	contentWidth := width - 4 // account for "│ " and " │"
	padding := contentWidth - titleLen

	header := BoxTopLeft + repeatString(BoxHorizontal, width-2) + BoxTopRight + "\n"
	header += BoxVertical + " " + title + repeatString(" ", padding+1) + BoxVertical + "\n"
	header += BoxTeeRight + repeatString(BoxHorizontal, width-2) + BoxTeeLeft + "\n"

	return header
}

// BuildBoxFooter creates a box footer with the given width
func BuildBoxFooter(width int) string {
	return BoxBottomLeft + repeatString(BoxHorizontal, width-2) + BoxBottomRight + "\n"
}

// BuildBoxLine creates a content line within a box
func BuildBoxLine(content string, width int) string {
	contentLen := utf8.RuneCountInString(content)
	maxContentLen := width - 4 // account for "│ " and " │"

	if contentLen > maxContentLen { // truncate if too long
		runes := []rune(content)
		content = string(runes[:maxContentLen-3]) + "..."
		contentLen = maxContentLen
	}

	padding := maxContentLen - contentLen
	return BoxVertical + " " + content + repeatString(" ", padding+1) + BoxVertical + "\n"
}

func repeatString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}
