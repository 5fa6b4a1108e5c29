// Package structparse converts indentation-based project layout text, as
// produced by a model, into a scaffold.Tree. Free-text parsing is
// best-effort and clearly fallible: malformed input yields a typed
// *ParseError instead of a guessed structure.
package structparse

import (
	"fmt"
	"strings"

	"chainforge/internal/scaffold"
)

// ParseError reports the first line the parser could not interpret.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("structparse: line %d: %s", e.Line, e.Msg)
}

// Tree-drawing and bullet prefixes stripped before interpreting a line.
var linePrefixes = []string{"├── ", "└── ", "├─ ", "└─ ", "- ", "* "}

// frame is one open level in the layout. For file entries the tree is
// created lazily: if children show up under a file, the entry is
// promoted to a directory.
type frame struct {
	depth  int
	parent scaffold.Tree
	name   string
	tree   scaffold.Tree
}

func (f *frame) children() scaffold.Tree {
	if f.tree == nil {
		f.tree = scaffold.Tree{}
		f.parent[f.name] = f.tree
	}
	return f.tree
}

// Parse reads an indented layout listing and builds the corresponding
// Tree. Names ending in "/" become directories, everything else becomes
// an empty file to be filled later. Any indentation increase counts as
// exactly one level regardless of its width; a dedent returns to the
// nearest shallower level.
func Parse(text string) (scaffold.Tree, error) {
	root := scaffold.Tree{}
	stack := []*frame{{depth: -1, tree: root}}
	entries := 0

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}

		depth := indentWidth(line)
		name := cleanName(line)
		if name == "" {
			return nil, &ParseError{Line: lineNo, Msg: "entry has no name"}
		}
		if strings.ContainsAny(name, "\\:*?\"<>|") {
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("invalid path segment %q", name)}
		}

		// Pop to the nearest frame shallower than this line.
		for len(stack) > 1 && depth <= stack[len(stack)-1].depth {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].children()

		if dir, ok := strings.CutSuffix(name, "/"); ok {
			if dir == "" {
				return nil, &ParseError{Line: lineNo, Msg: "directory has no name"}
			}
			tree := scaffold.Tree{}
			parent[dir] = tree
			stack = append(stack, &frame{depth: depth, tree: tree})
		} else {
			parent[name] = nil
			stack = append(stack, &frame{depth: depth, parent: parent, name: name})
		}
		entries++
	}

	if entries == 0 {
		return nil, &ParseError{Line: 1, Msg: "no entries found"}
	}
	return root, nil
}

func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t', '│':
			width += 4
		default:
			return width
		}
	}
	return width
}

func cleanName(line string) string {
	s := strings.TrimLeft(line, " \t│")
	for changed := true; changed; {
		changed = false
		for _, prefix := range linePrefixes {
			if strings.HasPrefix(s, prefix) {
				s = strings.TrimPrefix(s, prefix)
				changed = true
			}
		}
	}
	// Drop trailing inline comments such as "main.go  # entry point".
	if idx := strings.Index(s, "#"); idx > 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
