// Package chunk writes rendered blocks into size-bounded output files.
package chunk

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"dirdump/pkg/render"
)

// ErrClosed is returned when blocks are added after Close.
var ErrClosed = errors.New("chunk writer is closed")

// WriteError reports an output chunk that could not be created or written.
// Chunks sealed before it stay on disk.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write chunk %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

type state int

const (
	stateEmpty state = iota
	stateAccumulating
	stateDone
)

// Writer accumulates blocks into the current chunk and seals it when the
// next block would push it past the limit. A chunk always accepts its first
// block, so a block larger than the limit gets a chunk of its own, unsplit.
//
// When only one chunk is produced it is written to the output path itself;
// otherwise chunks are numbered from 1 before the extension (out.1.md, ...).
type Writer struct {
	outputPath string
	limit      int64
	logger     *zap.Logger

	state   state
	blocks  []render.Block
	total   int64
	sealed  int
	written []string
	dirOK   bool
}

// New creates a Writer. A limit of 0 or less disables splitting.
func New(outputPath string, limit int64, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{outputPath: outputPath, limit: limit, logger: logger}
}

// Add appends b, sealing the current chunk first if b does not fit.
func (w *Writer) Add(b render.Block) error {
	if w.state == stateDone {
		return ErrClosed
	}
	if w.state == stateAccumulating && w.limit > 0 && w.total+b.Len() > w.limit {
		if err := w.seal(Path(w.outputPath, w.sealed+1)); err != nil {
			return err
		}
	}
	w.blocks = append(w.blocks, b)
	w.total += b.Len()
	w.state = stateAccumulating
	return nil
}

// Close seals the last non-empty chunk and returns every written path in order.
// Calling Close again returns the same paths.
func (w *Writer) Close() ([]string, error) {
	if w.state == stateAccumulating {
		target := w.outputPath
		if w.sealed > 0 {
			target = Path(w.outputPath, w.sealed+1)
		}
		if err := w.seal(target); err != nil {
			w.state = stateDone
			return w.written, err
		}
	}
	w.state = stateDone
	return w.written, nil
}

// Write drains blocks into a new Writer and closes it. It stops at the first
// write failure.
func Write(blocks iter.Seq[render.Block], outputPath string, limit int64, logger *zap.Logger) ([]string, error) {
	w := New(outputPath, limit, logger)
	for b := range blocks {
		if err := w.Add(b); err != nil {
			return w.written, err
		}
	}
	return w.Close()
}

// Path returns the name of chunk index (1-based) for outputPath.
func Path(outputPath string, index int) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "." + strconv.Itoa(index) + ext
}

func (w *Writer) seal(path string) error {
	if err := w.writeFile(path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	w.logger.Debug("Sealed chunk",
		zap.String("path", path),
		zap.Int("blocks", len(w.blocks)),
		zap.String("size", humanize.Bytes(uint64(w.total))))

	w.written = append(w.written, path)
	w.sealed++
	w.blocks = nil
	w.total = 0
	w.state = stateEmpty
	return nil
}

func (w *Writer) writeFile(path string) (err error) {
	if !w.dirOK {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		w.dirOK = true
	}

	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := outFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	writer := bufio.NewWriter(outFile)
	for _, b := range w.blocks {
		if _, err := writer.Write(b.Data); err != nil {
			return fmt.Errorf("write %s: %w", b.SourcePath, err)
		}
	}
	return writer.Flush()
}
