// Package structure renders a capped directory listing of the walked tree.
package structure

import (
	"iter"
	"path"
	"strings"

	"dirdump/pkg/walk"
)

// TruncatedLine ends a listing that hit its entry cap.
const TruncatedLine = "... (structure truncated)"

type node struct {
	name     string
	isDir    bool
	children []*node
}

// Tree is a listing built from walk entries in traversal order.
type Tree struct {
	root      *node
	entries   int
	truncated bool
}

// Build collects at most maxEntries entries accepted by keep (0 means no cap).
// Entries whose parent was not collected are dropped.
func Build(entries iter.Seq[walk.Entry], keep func(walk.Entry) bool, maxEntries int) Tree {
	root := &node{isDir: true}
	dirs := map[string]*node{".": root}
	t := Tree{root: root}

	for e := range entries {
		if keep != nil && !keep(e) {
			continue
		}
		if maxEntries > 0 && t.entries >= maxEntries {
			t.truncated = true
			break
		}
		parent, ok := dirs[path.Dir(e.Rel)]
		if !ok {
			continue
		}
		n := &node{name: e.Name, isDir: e.IsDir}
		parent.children = append(parent.children, n)
		if e.IsDir {
			dirs[e.Rel] = n
		}
		t.entries++
	}
	return t
}

// Entries is the number of listed entries.
func (t Tree) Entries() int {
	return t.entries
}

// Truncated reports whether the cap cut the listing short.
func (t Tree) Truncated() bool {
	return t.truncated
}

// Render draws the tree below a "rootName/" line, one entry per line.
// Directories carry a trailing slash.
func (t Tree) Render(rootName string) string {
	var b strings.Builder
	b.WriteString(rootName)
	b.WriteString("/\n")
	if t.root != nil {
		renderChildren(&b, t.root, "")
	}
	if t.truncated {
		b.WriteString(TruncatedLine)
		b.WriteString("\n")
	}
	return b.String()
}

func renderChildren(b *strings.Builder, n *node, prefix string) {
	for i, child := range n.children {
		connector := "├── "
		extension := "│   "
		if i == len(n.children)-1 {
			connector = "└── "
			extension = "    "
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(child.name)
		if child.isDir {
			b.WriteString("/")
		}
		b.WriteString("\n")
		if child.isDir {
			renderChildren(b, child, prefix+extension)
		}
	}
}
