package dump

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"dirdump/pkg/chunk"
	"dirdump/pkg/config"
	"dirdump/pkg/filter"
)

func mustWrite(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func mustBuild(t *testing.T, root, output string, opts map[string]string) config.Config {
	t.Helper()
	cfg, err := config.Build(root, ".", output, opts, config.WithoutEnv())
	require.NoError(t, err)
	return cfg
}

func readChunks(t *testing.T, paths []string) []string {
	t.Helper()
	var out []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		out = append(out, string(data))
	}
	return out
}

func TestRunExcludesAndSplits(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	mustWrite(t, root, "a.py", "aaaaaaaaa\n")
	mustWrite(t, root, "b.py", "bbbbbbbbb\n")
	mustWrite(t, root, "vendor/c.py", "ccccccccc\n")
	outDir := t.TempDir()
	cfg := mustBuild(t, root, filepath.Join(outDir, "out.txt"), map[string]string{
		"exclude":      "vendor",
		"split-bytes":  "25",
		"format":       "txt",
		"no-structure": "true",
	})

	// --- Act ---
	summary, err := Run(cfg, zaptest.NewLogger(t))

	// --- Assert ---
	require.NoError(t, err)
	// Each rendered block is 17 header bytes + 10 content bytes + 1 separator byte.
	assert.Equal(t, []string{
		filepath.Join(outDir, "out.1.txt"),
		filepath.Join(outDir, "out.2.txt"),
	}, summary.Chunks)
	assert.Equal(t, []string{
		"===== a.py =====\naaaaaaaaa\n\n",
		"===== b.py =====\nbbbbbbbbb\n\n",
	}, readChunks(t, summary.Chunks))
	assert.Equal(t, 2, summary.Included)
	assert.Zero(t, summary.SkippedTotal(), "vendor is pruned, not skipped")
}

func TestRunKeepsBlocksTogetherWithinBudget(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "a.py", "aaaaaaaaa\n")
	mustWrite(t, root, "b.py", "bbbbbbbbb\n")
	out := filepath.Join(t.TempDir(), "out.txt")
	cfg := mustBuild(t, root, out, map[string]string{"split-bytes": "56", "format": "txt", "no-structure": ""})

	summary, err := Run(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{out}, summary.Chunks)
	assert.Equal(t, int64(56), summary.Bytes)
}

func TestRunOversizedFileIsNotSplit(t *testing.T) {
	root := t.TempDir()
	content := strings.Repeat("x", 49) + "\n"
	mustWrite(t, root, "big.txt", content)
	out := filepath.Join(t.TempDir(), "out.md")
	cfg := mustBuild(t, root, out, map[string]string{"split-bytes": "10", "no-structure": "true"})

	summary, err := Run(cfg, nil)
	require.NoError(t, err)

	require.Equal(t, []string{out}, summary.Chunks)
	chunks := readChunks(t, summary.Chunks)
	assert.Equal(t, "## big.txt\n\n```\n"+content+"```\n\n", chunks[0])
}

func TestRunExtensionFilter(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "a.py", "print('a')\n")
	mustWrite(t, root, "a.bin", "\x00\x01")
	cfg := mustBuild(t, root, filepath.Join(t.TempDir(), "out.md"), map[string]string{"ext": ".py"})

	summary, err := Run(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Included)
	assert.Equal(t, 1, summary.Skipped[filter.WrongExtension])
	chunks := readChunks(t, summary.Chunks)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "## a.py\n")
	assert.NotContains(t, chunks[0], "## a.bin")
}

func TestRunStructureInFirstChunkOnly(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "a.py", strings.Repeat("a", 40)+"\n")
	mustWrite(t, root, "lib/b.py", strings.Repeat("b", 40)+"\n")
	mustWrite(t, root, "node_modules/x.js", "x\n")
	cfg := mustBuild(t, root, filepath.Join(t.TempDir(), "out.md"), map[string]string{"split-bytes": "100"})

	summary, err := Run(cfg, nil)
	require.NoError(t, err)

	chunks := readChunks(t, summary.Chunks)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasPrefix(chunks[0], "## "+StructureTitle+"\n"))
	assert.Contains(t, chunks[0], "├── a.py\n")
	assert.NotContains(t, chunks[0], "node_modules")
	for _, c := range chunks[1:] {
		assert.NotContains(t, c, "## "+StructureTitle)
	}
	assert.Equal(t, 3, summary.StructureEntries)
}

func TestRunContentAppearsOnceInOrder(t *testing.T) {
	root := t.TempDir()
	files := []string{"a/1.txt", "a/b/2.txt", "a-3.txt", "c.txt", "日本/4.txt"}
	for i, rel := range files {
		mustWrite(t, root, rel, strings.Repeat(string(rune('p'+i)), 30+i)+"\n")
	}
	cfg := mustBuild(t, root, filepath.Join(t.TempDir(), "out.txt"), map[string]string{
		"format": "txt", "split-bytes": "70", "no-structure": "true",
	})

	summary, err := Run(cfg, nil)
	require.NoError(t, err)
	joined := strings.Join(readChunks(t, summary.Chunks), "")

	// Traversal order: per-segment lexicographic, depth first.
	order := []string{"a/1.txt", "a/b/2.txt", "a-3.txt", "c.txt", "日本/4.txt"}
	last := -1
	for _, rel := range order {
		heading := "===== " + rel + " =====\n"
		assert.Equal(t, 1, strings.Count(joined, heading), rel)
		idx := strings.Index(joined, heading)
		assert.Greater(t, idx, last, rel)
		last = idx
	}
	assert.Len(t, summary.Chunks, 5)
}

func TestRunIsDeterministic(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"z.go", "a.go", "m/n.go", "m/a.md"} {
		mustWrite(t, root, rel, "content of "+rel+"\n")
	}

	run := func() []string {
		cfg := mustBuild(t, root, filepath.Join(t.TempDir(), "out.md"), map[string]string{"split-bytes": "120"})
		summary, err := Run(cfg, nil)
		require.NoError(t, err)
		return readChunks(t, summary.Chunks)
	}

	assert.Equal(t, run(), run())
}

func TestRunSkipsOwnOutput(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "a.md", "# a\n")
	cfg := mustBuild(t, root, "", map[string]string{"no-structure": "true"})
	require.Equal(t, filepath.Join(root, "project_dump.md"), cfg.OutputPath)

	first, err := Run(cfg, nil)
	require.NoError(t, err)
	second, err := Run(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Included)
	assert.Equal(t, 1, second.Included)
	assert.Equal(t, 1, second.Skipped[filter.Excluded])
	assert.Equal(t, readChunks(t, first.Chunks), readChunks(t, second.Chunks))
}

func TestRunSkipsBinaryFilesInEveryMode(t *testing.T) {
	root := t.TempDir()
	blob := strings.Repeat("\x89\xfa\xc3\xd7", 256)
	mustWrite(t, root, "blob.dat", blob)
	mustWrite(t, root, "image.png", blob)
	mustWrite(t, root, "ok.txt", "fine\n")

	for name, opts := range map[string]map[string]string{
		"all files":      {"all-files": "true"},
		"extension list": {"ext": "dat,png,txt"},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := mustBuild(t, root, filepath.Join(t.TempDir(), "out.md"), opts)

			summary, err := Run(cfg, nil)
			require.NoError(t, err)

			assert.Equal(t, 1, summary.Included)
			assert.Equal(t, 2, summary.Skipped[filter.Binary])
			joined := strings.Join(readChunks(t, summary.Chunks), "")
			assert.NotContains(t, joined, "## blob.dat")
			assert.NotContains(t, joined, "## image.png")
			assert.NotContains(t, joined, "\uFFFD")
		})
	}
}

func TestRunSkipsUndecodableFiles(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "ok.txt", "fine\n")
	// The NUL sits past the sniffed prefix, so only decoding catches it.
	mustWrite(t, root, "late.txt", strings.Repeat("a", filter.SniffBytes+100)+"\x00")
	cfg := mustBuild(t, root, filepath.Join(t.TempDir(), "out.md"), map[string]string{"all-files": "true"})
	core, logs := observer.New(zapcore.WarnLevel)

	summary, err := Run(cfg, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Included)
	assert.Equal(t, 1, summary.Skipped[filter.Unreadable])
	entries := logs.FilterMessage("Skipping unreadable file").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "late.txt", entries[0].ContextMap()["path"])
	assert.NotContains(t, strings.Join(readChunks(t, summary.Chunks), ""), "## late.txt")
}

func TestRunDefaultBuildExcludesAreAnchored(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "src/build/gen.go", "package build\n")
	mustWrite(t, root, "src/dist/x.go", "package dist\n")
	mustWrite(t, root, "build/out.go", "package out\n")
	mustWrite(t, root, "dist/bundle.js", "x\n")
	cfg := mustBuild(t, root, filepath.Join(t.TempDir(), "out.md"), map[string]string{"no-structure": "true"})

	summary, err := Run(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Included)
	joined := strings.Join(readChunks(t, summary.Chunks), "")
	assert.Contains(t, joined, "## src/build/gen.go\n")
	assert.Contains(t, joined, "## src/dist/x.go\n")
	assert.NotContains(t, joined, "## build/out.go")
	assert.NotContains(t, joined, "## dist/bundle.js")
}

func TestRunWriteErrorIsFatal(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "a.txt", "a\n")
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	cfg := mustBuild(t, root, filepath.Join(blocker, "out.md"), nil)

	_, err := Run(cfg, nil)

	var writeErr *chunk.WriteError
	require.ErrorAs(t, err, &writeErr)
}

func TestRunRequiresBuiltConfig(t *testing.T) {
	_, err := Run(config.DefaultConfig(), nil)

	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
}
