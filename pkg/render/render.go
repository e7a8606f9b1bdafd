// Package render turns file contents into size-measured output blocks.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"dirdump/pkg/config"
)

// Block is one rendered, appendable unit of output. Its Data is never
// modified after Render returns.
type Block struct {
	SourcePath string // slash-separated, relative to the project root
	Data       []byte
}

// Len is the exact number of bytes the block occupies on disk.
func (b Block) Len() int64 {
	return int64(len(b.Data))
}

// ReadError reports a file that could not be read or decoded. The caller
// skips the file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Renderer formats files for one configuration.
type Renderer struct {
	projectRoot string
	format      config.Format
	logger      *zap.Logger
}

// New creates a Renderer for cfg.
func New(cfg config.Config, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{projectRoot: cfg.ProjectRoot, format: cfg.Format, logger: logger}
}

// Render reads path and returns its block.
func (r *Renderer) Render(path string) (Block, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Block{}, &ReadError{Path: path, Err: err}
	}
	text, encoding, err := Decode(raw)
	if err != nil {
		return Block{}, &ReadError{Path: path, Err: err}
	}
	if encoding != EncodingUTF8 {
		r.logger.Debug("Decoded file", zap.String("path", path), zap.String("encoding", encoding))
	}

	rel := r.relative(path)
	return Block{SourcePath: rel, Data: []byte(r.compose(rel, Language(rel), text))}, nil
}

// Section renders a titled block that does not come from a file, such as
// the structure listing.
func (r *Renderer) Section(title, body string) Block {
	return Block{SourcePath: "", Data: []byte(r.compose(title, "text", body))}
}

func (r *Renderer) relative(path string) string {
	rel, err := filepath.Rel(r.projectRoot, path)
	if err != nil {
		r.logger.Warn("Unable to determine relative path, using absolute path",
			zap.String("path", path), zap.String("projectRoot", r.projectRoot), zap.Error(err))
		rel = path
	}
	return filepath.ToSlash(rel)
}

func (r *Renderer) compose(heading, language, content string) string {
	var b strings.Builder
	b.Grow(len(heading) + len(content) + 32)

	if r.format == config.FormatText {
		b.WriteString("===== ")
		b.WriteString(heading)
		b.WriteString(" =====\n")
		writeContent(&b, content)
		b.WriteString("\n")
		return b.String()
	}

	fence := Fence(content)
	b.WriteString("## ")
	b.WriteString(heading)
	b.WriteString("\n\n")
	b.WriteString(fence)
	b.WriteString(language)
	b.WriteString("\n")
	writeContent(&b, content)
	b.WriteString(fence)
	b.WriteString("\n\n")
	return b.String()
}

// writeContent writes content followed by a newline unless it already ends with one.
func writeContent(b *strings.Builder, content string) {
	b.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
}

// Fence returns a backtick fence longer than any backtick run in content.
func Fence(content string) string {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
