// Package walk traverses a directory tree in a fixed order.
package walk

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

// Entry is a candidate produced during traversal.
type Entry struct {
	Path    string // absolute filesystem path
	Rel     string // slash-separated path relative to the walk root
	Name    string
	IsDir   bool
	Size    int64 // 0 for directories
	Symlink bool  // a symlink resolved to a regular file
	Depth   int   // 1 for direct children of the root
}

// Pruner decides whether a directory is skipped together with its subtree.
type Pruner interface {
	Prune(dir Entry) bool
}

// PrunerFunc adapts a function to the Pruner interface.
type PrunerFunc func(dir Entry) bool

func (f PrunerFunc) Prune(dir Entry) bool { return f(dir) }

// TraversalError records an entry that could not be read. The walk continues.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("traverse %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// Walker yields the entries below a root directory depth-first, with siblings
// in lexicographic order. Directories are offered to the Pruner before they
// are yielded or opened. Symlinks to directories are never followed.
type Walker struct {
	root     string
	pruner   Pruner
	logger   *zap.Logger
	warnings []error
}

// New creates a Walker for root. A nil pruner keeps every directory.
func New(root string, pruner Pruner, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pruner == nil {
		pruner = PrunerFunc(func(Entry) bool { return false })
	}
	return &Walker{root: root, pruner: pruner, logger: logger}
}

// Entries returns the traversal as a single-pass sequence. Ranging over it a
// second time yields nothing; create a new Walker to traverse again. Stopping
// early leaves no open directory handles.
func (w *Walker) Entries() iter.Seq[Entry] {
	consumed := false
	return func(yield func(Entry) bool) {
		if consumed {
			return
		}
		consumed = true
		w.walkDir(w.root, "", 0, yield)
	}
}

// Warnings returns the traversal errors recorded so far.
func (w *Walker) Warnings() []error {
	return w.warnings
}

func (w *Walker) warn(p string, err error) {
	w.warnings = append(w.warnings, &TraversalError{Path: p, Err: err})
	w.logger.Warn("Skipping unreadable entry", zap.String("path", p), zap.Error(err))
}

// walkDir reports false once the consumer has stopped.
func (w *Walker) walkDir(dir, rel string, depth int, yield func(Entry) bool) bool {
	// os.ReadDir returns whatever it read, sorted by name, along with the error.
	children, err := os.ReadDir(dir)
	if err != nil {
		w.warn(dir, err)
	}

	for _, de := range children {
		e := Entry{
			Path:  filepath.Join(dir, de.Name()),
			Rel:   path.Join(rel, de.Name()),
			Name:  de.Name(),
			Depth: depth + 1,
		}

		switch mode := de.Type(); {
		case mode&fs.ModeSymlink != 0:
			info, err := os.Stat(e.Path)
			if err != nil {
				w.warn(e.Path, err)
				continue
			}
			if !info.Mode().IsRegular() {
				w.logger.Debug("Not following symlink", zap.String("path", e.Path))
				continue
			}
			e.Size = info.Size()
			e.Symlink = true

		case mode.IsDir():
			e.IsDir = true
			if w.pruner.Prune(e) {
				w.logger.Debug("Pruned directory", zap.String("path", e.Rel))
				continue
			}
			if !yield(e) {
				return false
			}
			if !w.walkDir(e.Path, e.Rel, e.Depth, yield) {
				return false
			}
			continue

		case mode.IsRegular():
			info, err := de.Info()
			if err != nil {
				w.warn(e.Path, err)
				continue
			}
			e.Size = info.Size()

		default:
			w.logger.Debug("Skipping special file", zap.String("path", e.Path))
			continue
		}

		if !yield(e) {
			return false
		}
	}
	return true
}
