// Package dump runs the collection pipeline: walk, filter, render, chunk.
package dump

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"dirdump/pkg/chunk"
	"dirdump/pkg/config"
	"dirdump/pkg/filter"
	"dirdump/pkg/render"
	"dirdump/pkg/structure"
	"dirdump/pkg/walk"
)

// StructureTitle heads the structure block in the first chunk.
const StructureTitle = "Structure"

// Summary describes a completed run.
type Summary struct {
	Included          int
	Skipped           map[filter.Verdict]int
	TraversalWarnings int
	StructureEntries  int
	Bytes             int64
	Chunks            []string
	Elapsed           time.Duration
}

// SkippedTotal returns the number of files left out for any reason.
func (s Summary) SkippedTotal() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// Run collects the files selected by cfg into one or more output chunks.
// Per-file problems are logged and counted; only an invalid configuration
// (*config.Error) or a failed chunk write (*chunk.WriteError) is returned.
func Run(cfg config.Config, logger *zap.Logger) (Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	summary := Summary{Skipped: map[filter.Verdict]int{}}

	if cfg.TargetDir == "" || cfg.OutputPath == "" {
		return summary, &config.Error{Err: errors.New("target directory and output path are required")}
	}

	logger.Info("Starting dump",
		zap.String("target", cfg.TargetDir),
		zap.String("output", cfg.OutputPath),
		zap.String("format", string(cfg.Format)),
		zap.String("split", splitLabel(cfg)))

	f := filter.New(cfg, logger)
	r := render.New(cfg, logger)
	walker := walk.New(cfg.TargetDir, f, logger)

	blocks := func(yield func(render.Block) bool) {
		if cfg.EmitStructure {
			// A separate traversal; its warnings repeat those of the main walk.
			sw := walk.New(cfg.TargetDir, f, zap.NewNop())
			tree := structure.Build(sw.Entries(), func(e walk.Entry) bool { return !f.Excluded(e) }, cfg.StructureMaxEntries)
			summary.StructureEntries = tree.Entries()
			if !yield(r.Section(StructureTitle, tree.Render(filepath.Base(cfg.TargetDir)))) {
				return
			}
		}

		for e := range walker.Entries() {
			if e.IsDir {
				continue
			}
			if v := f.Include(e); v != filter.Included {
				summary.Skipped[v]++
				logger.Debug("Skipping file", zap.String("path", e.Rel), zap.Stringer("reason", v))
				continue
			}
			b, err := r.Render(e.Path)
			if err != nil {
				summary.Skipped[filter.Unreadable]++
				logger.Warn("Skipping unreadable file", zap.String("path", e.Rel), zap.Error(err))
				continue
			}
			summary.Included++
			summary.Bytes += b.Len()
			if !yield(b) {
				return
			}
		}
	}

	chunks, err := chunk.Write(blocks, cfg.OutputPath, cfg.SplitBytes, logger)
	summary.Chunks = chunks
	summary.TraversalWarnings = len(walker.Warnings())
	summary.Elapsed = time.Since(start)
	if err != nil {
		logger.Error("Failed to write output", zap.Strings("written", chunks), zap.Error(err))
		return summary, fmt.Errorf("dump %s: %w", cfg.TargetDir, err)
	}

	logger.Info("Dump completed",
		zap.Int("included", summary.Included),
		zap.Int("skipped", summary.SkippedTotal()),
		zap.Int("skippedTooLarge", summary.Skipped[filter.TooLarge]),
		zap.Int("skippedBinary", summary.Skipped[filter.Binary]),
		zap.Int("skippedUnreadable", summary.Skipped[filter.Unreadable]),
		zap.Int("traversalWarnings", summary.TraversalWarnings),
		zap.Int("chunks", len(chunks)),
		zap.String("contentSize", humanize.Bytes(uint64(summary.Bytes))),
		zap.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func splitLabel(cfg config.Config) string {
	if cfg.Unbounded() {
		return "unbounded"
	}
	return humanize.IBytes(uint64(cfg.SplitBytes))
}
