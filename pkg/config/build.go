package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"go.uber.org/multierr"
)

// EnvPrefix is the prefix of environment variables read by Build.
const EnvPrefix = "DIRDUMP_"

// allTextSentinel may be passed as the ext value instead of a list.
const allTextSentinel = "all-text"

type buildOptions struct {
	envPrefix string
	useEnv    bool
}

// BuildOption customizes Build.
type BuildOption func(*buildOptions)

// WithEnvPrefix reads environment overrides from variables with the given prefix.
func WithEnvPrefix(prefix string) BuildOption {
	return func(o *buildOptions) {
		o.envPrefix = prefix
		o.useEnv = true
	}
}

// WithoutEnv disables the environment layer.
func WithoutEnv() BuildOption {
	return func(o *buildOptions) {
		o.useEnv = false
	}
}

// Build validates the paths and options and returns the resulting Config.
// Option keys may use any accepted vocabulary. All problems are collected
// into a single *Error.
func Build(projectRoot, targetDir, outputPath string, opts map[string]string, buildOpts ...BuildOption) (Config, error) {
	bo := buildOptions{envPrefix: EnvPrefix, useEnv: true}
	for _, o := range buildOpts {
		o(&bo)
	}

	k := koanf.New(".")
	var errs error

	if bo.useEnv {
		prefix := bo.envPrefix
		err := k.Load(env.Provider(prefix, ".", func(s string) string {
			return CanonicalKey(strings.TrimPrefix(s, prefix))
		}), nil)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("load environment: %w", err))
		}
	}

	for name, value := range opts {
		if !IsKey(name) {
			errs = multierr.Append(errs, fmt.Errorf("unknown option %q", name))
			continue
		}
		if err := k.Set(CanonicalKey(name), value); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("option %q: %w", name, err))
		}
	}

	cfg := DefaultConfig()
	p := parser{k: k}

	if root, err := resolveProjectRoot(projectRoot); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		cfg.ProjectRoot = root
		if target, err := resolveTargetDir(root, targetDir); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			cfg.TargetDir = target
		}
	}

	if v, ok := p.str(KeyFormat); ok {
		switch Format(strings.ToLower(v)) {
		case FormatMarkdown, FormatText:
			cfg.Format = Format(strings.ToLower(v))
		default:
			p.fail(fmt.Errorf("format %q: must be md or txt", v))
		}
	}

	cfg.SplitBytes = p.splitBytes()

	if v, ok := p.str(KeyExt); ok {
		if strings.EqualFold(strings.TrimSpace(v), allTextSentinel) {
			cfg.Extensions = AllTextExtensions()
		} else {
			exts := NewExtensions(splitCSV(v)...)
			if len(exts.List()) == 0 {
				p.fail(fmt.Errorf("ext %q: no extensions given", v))
			}
			cfg.Extensions = exts
		}
	}
	if p.boolean(KeyAllText) {
		cfg.Extensions = AllTextExtensions()
	}

	cfg.ExploreAllFiles = p.boolean(KeyAllFiles)

	if n, ok := p.nonNegative(KeyMaxBytes); ok {
		cfg.MaxFileBytes = n
	}
	if v, ok := p.str(KeyEmitStructure); ok {
		cfg.EmitStructure = p.parseBool(KeyEmitStructure, v)
	}
	if p.boolean(KeyNoStructure) {
		cfg.EmitStructure = false
	}
	if n, ok := p.nonNegative(KeyStructureMax); ok {
		cfg.StructureMaxEntries = int(n)
	}

	tokens := []string{}
	if v, ok := p.str(KeyExclude); ok {
		tokens = append(tokens, splitCSV(v)...)
	}
	if cfg.ProjectRoot != "" {
		ignorePath := filepath.Join(cfg.ProjectRoot, IgnoreFileName)
		if v, ok := p.str(KeyIgnoreFile); ok && v != "" {
			ignorePath = v
			if !filepath.IsAbs(ignorePath) {
				ignorePath = filepath.Join(cfg.ProjectRoot, ignorePath)
			}
		}
		lines, err := LoadIgnoreFile(ignorePath)
		if err != nil {
			p.fail(err)
		}
		tokens = append(tokens, lines...)
	}
	if cfg.TargetDir != "" {
		for _, pattern := range NormalizeExcludes(tokens, cfg.ProjectRoot, cfg.TargetDir) {
			if !slices.Contains(cfg.ExcludePatterns, pattern) {
				cfg.ExcludePatterns = append(cfg.ExcludePatterns, pattern)
			}
		}
	}

	if cfg.ProjectRoot != "" && cfg.TargetDir != "" {
		out, err := resolveOutputPath(outputPath, cfg.ProjectRoot, cfg.TargetDir, cfg.Format)
		if err != nil {
			p.fail(err)
		}
		cfg.OutputPath = out
	}

	errs = multierr.Append(errs, p.errs)
	if errs != nil {
		return Config{}, &Error{Err: errs}
	}
	return cfg, nil
}

// parser reads typed values from the layered koanf instance and collects
// parse failures.
type parser struct {
	k    *koanf.Koanf
	errs error
}

func (p *parser) fail(err error) {
	p.errs = multierr.Append(p.errs, err)
}

func (p *parser) str(key string) (string, bool) {
	if !p.k.Exists(key) {
		return "", false
	}
	return strings.TrimSpace(p.k.String(key)), true
}

func (p *parser) parseBool(key, v string) bool {
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(fmt.Errorf("%s %q: not a boolean", key, v))
		return false
	}
	return b
}

// boolean treats a present key with an empty value as true, like a bare flag.
func (p *parser) boolean(key string) bool {
	v, ok := p.str(key)
	if !ok {
		return false
	}
	return p.parseBool(key, v)
}

func (p *parser) nonNegative(key string) (int64, bool) {
	v, ok := p.str(key)
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		p.fail(fmt.Errorf("%s %q: must be a non-negative integer", key, v))
		return 0, false
	}
	return n, true
}

// splitBytes resolves split-bytes and split-mb. When both are set they must agree.
func (p *parser) splitBytes() int64 {
	b, hasBytes := p.nonNegative(KeySplitBytes)
	mb, hasMB := p.nonNegative(KeySplitMB)
	switch {
	case hasBytes && hasMB && b != mb*MiB:
		p.fail(fmt.Errorf("split-bytes %d and split-mb %d disagree", b, mb))
		return Unbounded
	case hasBytes:
		return b
	case hasMB:
		return mb * MiB
	default:
		return Unbounded
	}
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func resolveProjectRoot(projectRoot string) (string, error) {
	if projectRoot == "" {
		projectRoot = "."
	}
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("project root %q: %w", projectRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project root %q: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project root %q is not a directory", abs)
	}
	return abs, nil
}

func resolveTargetDir(root, targetDir string) (string, error) {
	target := root
	if t := strings.TrimSpace(targetDir); t != "" && t != "." && t != "./" {
		if filepath.IsAbs(t) {
			target = filepath.Clean(t)
		} else {
			target = filepath.Join(root, t)
		}
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("target %q is outside project root %q", target, root)
	}
	dir, err := os.Open(target)
	if err != nil {
		return "", fmt.Errorf("target %q: %w", target, err)
	}
	defer dir.Close()
	info, err := dir.Stat()
	if err != nil {
		return "", fmt.Errorf("target %q: %w", target, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("target %q is not a directory", target)
	}
	return target, nil
}

// resolveOutputPath makes outputPath absolute, relative to the working
// directory, or derives <project>/<name>_dump.<fmt> when it is empty.
func resolveOutputPath(outputPath, root, target string, format Format) (string, error) {
	if outputPath == "" {
		name := filepath.Base(target) + "_dump"
		if target == root {
			name = "project_dump"
		}
		return filepath.Join(root, name+format.Ext()), nil
	}
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return "", fmt.Errorf("output %q: %w", outputPath, err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("output %q is a directory", abs)
	}
	return abs, nil
}
