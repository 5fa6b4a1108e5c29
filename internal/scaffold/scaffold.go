// Package scaffold materializes nested file-tree templates onto disk,
// substituting {{Var}} placeholders and resolving {{category.name}}
// fragment references against a template store.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Tree describes a desired file/directory layout. Each key is a path
// segment; the value is nil (empty file), a string (file content), or a
// nested Tree (subdirectory). Trees come from static template literals or
// decoded JSON, so cycles cannot occur.
type Tree map[string]any

// Bindings maps placeholder names to their substitution values. A
// Bindings map is immutable for the duration of a materialization pass.
type Bindings map[string]string

// FragmentStore resolves named template fragments. Lookups that fail are
// recovered by falling back to the literal reference text.
type FragmentStore interface {
	Fragment(category, name string) (string, error)
}

// MaterializationError reports a filesystem failure during
// materialization. Output already written before the failure is left in
// place; there is no rollback.
type MaterializationError struct {
	Path string
	Err  error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("scaffold: materialization failed at %s: %v", e.Path, e.Err)
}

func (e *MaterializationError) Unwrap() error { return e.Err }

var (
	// Whole-string fragment reference, e.g. "{{contracts.erc20}}".
	fragmentRefPattern = regexp.MustCompile(`^\{\{([a-z]+)\.([A-Za-z0-9_.-]+)\}\}$`)

	// Individual placeholder, e.g. "{{ProjectName}}".
	placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z][A-Za-z0-9_]*)\}\}`)
)

// Materializer writes Trees to disk.
type Materializer struct {
	store  FragmentStore
	logger *zap.Logger
}

// NewMaterializer creates a Materializer. store may be nil when no
// fragment references are expected; logger may be nil.
func NewMaterializer(store FragmentStore, logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{store: store, logger: logger}
}

// Materialize reproduces tree under dest, applying vars to every file
// written. Directory creation is idempotent and existing files are
// overwritten, so materializing the same tree twice is safe. The first
// write failure aborts the pass with a *MaterializationError carrying the
// failing path.
func (m *Materializer) Materialize(tree Tree, dest string, vars Bindings) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return &MaterializationError{Path: dest, Err: err}
	}
	return m.walk(tree, dest, vars)
}

func (m *Materializer) walk(tree Tree, dir string, vars Bindings) error {
	for name, node := range tree {
		path := filepath.Join(dir, name)
		switch v := node.(type) {
		case nil:
			if err := os.WriteFile(path, nil, 0o644); err != nil {
				return &MaterializationError{Path: path, Err: err}
			}
		case string:
			content := m.render(v, vars)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return &MaterializationError{Path: path, Err: err}
			}
		case Tree:
			if err := os.MkdirAll(path, 0o755); err != nil {
				return &MaterializationError{Path: path, Err: err}
			}
			if err := m.walk(v, path, vars); err != nil {
				return err
			}
		case map[string]any:
			// Trees decoded from JSON arrive as plain maps.
			if err := os.MkdirAll(path, 0o755); err != nil {
				return &MaterializationError{Path: path, Err: err}
			}
			if err := m.walk(Tree(v), path, vars); err != nil {
				return err
			}
		default:
			return &MaterializationError{
				Path: path,
				Err:  fmt.Errorf("unsupported tree node type %T", node),
			}
		}
	}
	return nil
}

// render resolves a whole-string fragment reference, then substitutes
// placeholders. Unmatched placeholders pass through verbatim so a missing
// binding shows up in the output instead of silently becoming blank.
func (m *Materializer) render(content string, vars Bindings) string {
	effective := content
	if ref := fragmentRefPattern.FindStringSubmatch(strings.TrimSpace(content)); ref != nil && m.store != nil {
		fragment, err := m.store.Fragment(ref[1], ref[2])
		if err != nil {
			m.logger.Warn("fragment lookup failed, keeping literal content",
				zap.String("category", ref[1]),
				zap.String("name", ref[2]),
				zap.Error(err))
		} else {
			effective = fragment
		}
	}

	return placeholderPattern.ReplaceAllStringFunc(effective, func(match string) string {
		name := match[2 : len(match)-2]
		if val, ok := vars[name]; ok {
			return val
		}
		return match
	})
}
