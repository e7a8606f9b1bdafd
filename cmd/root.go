package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"dirdump/pkg/config"
	"dirdump/pkg/dump"
	"dirdump/pkg/logging"
	"dirdump/pkg/version"
)

const longHelp = `dirdump concatenates the text files below a directory into one or more
Markdown or plain-text documents, split so that each stays under a byte budget.

Positional arguments (all optional):
  project   project root, default "."            (alias: dish)
  target    directory under project, default "."  (alias: food)
  output    output file, default <project>/<target>_dump.<fmt> (alias: serve)

Every option also has a kitchen-themed alias:
%s
Options can also be set through DIRDUMP_* environment variables,
e.g. DIRDUMP_SPLIT_MB=4.`

// app holds the state shared by the root command handlers.
type app struct {
	debug  bool
	quiet  bool
	dryRun bool
	logger *zap.Logger
}

// NewRootCommand builds the dirdump command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "dirdump [project] [target] [output]",
		Short:         "Dump a directory's text files into size-bounded documents",
		Long:          fmt.Sprintf(longHelp, aliasHelp()),
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{
				Debug:      a.debug,
				Quiet:      a.quiet,
				Console:    logging.IsTerminal(os.Stderr),
				AppName:    "dirdump",
				AppVersion: version.Get().Version,
			})
			a.logger = logger
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Sync(a.logger)
		},
		RunE: a.run,
	}

	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	flags := rootCmd.Flags()
	flags.String(config.KeyFormat, string(config.FormatMarkdown), "output format: md or txt")
	flags.Int64(config.KeySplitMB, 0, "split output into chunks of at most N MiB (0 = no split)")
	flags.Int64(config.KeySplitBytes, 0, "split output into chunks of at most N bytes (0 = no split)")
	flags.StringSlice(config.KeyExt, nil, "comma-separated extensions to include, or all-text")
	flags.Bool(config.KeyAllText, false, "include every file that looks like text, ignoring --ext")
	flags.StringSlice(config.KeyExclude, nil, "comma-separated directory names, path prefixes or globs to exclude")
	flags.Bool(config.KeyAllFiles, false, "skip the extension filter; size and exclude rules still apply")
	flags.Int64(config.KeyMaxBytes, config.DefaultMaxFileBytes, "skip files larger than N bytes (0 = no limit)")
	flags.Bool(config.KeyNoStructure, false, "do not emit the directory structure listing")
	flags.Bool(config.KeyEmitStructure, true, "emit the directory structure listing; --no-structure wins")
	flags.Int(config.KeyStructureMax, config.DefaultStructureMaxEntries, "limit structure entries (0 = no limit)")
	flags.String(config.KeyIgnoreFile, "", "file with one exclude pattern per line (default <project>/"+config.IgnoreFileName+")")
	flags.BoolVar(&a.dryRun, "dry-run", false, "print the resolved configuration and exit")

	persistent := rootCmd.PersistentFlags()
	persistent.BoolVar(&a.debug, "debug", false, "enable debug logging")
	persistent.BoolVarP(&a.quiet, "quiet", "q", false, "log warnings and errors only")

	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// ExitCode maps an Execute error onto a process exit status.
func ExitCode(err error) int {
	var cfgErr *config.Error
	switch {
	case err == nil:
		return 0
	case errors.As(err, &cfgErr):
		return 2
	default:
		return 1
	}
}

// normalizeFlagName resolves themed and long-form flag names.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if config.IsKey(name) {
		return pflag.NormalizedName(config.CanonicalKey(name))
	}
	return pflag.NormalizedName(name)
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	var project, target, output string
	if len(args) > 0 {
		project = args[0]
	}
	if len(args) > 1 {
		target = args[1]
	}
	if len(args) > 2 {
		output = args[2]
	}

	cfg, err := config.Build(project, target, output, optionsFromFlags(cmd.Flags()))
	if err != nil {
		a.logger.Error("Invalid configuration", zap.Error(err))
		return err
	}

	if a.dryRun {
		printConfig(cmd.OutOrStdout(), cfg)
		return nil
	}

	summary, err := dump.Run(cfg, a.logger)
	if err != nil {
		return err
	}
	for _, path := range summary.Chunks {
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", path)
	}
	if len(summary.Chunks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No files to dump.")
	}
	return nil
}

// optionsFromFlags returns the option flags the user set explicitly, keyed by
// canonical name. Unset flags are left to the environment and defaults.
func optionsFromFlags(flags *pflag.FlagSet) map[string]string {
	opts := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		if !config.IsKey(f.Name) {
			return
		}
		value := f.Value.String()
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			value = strings.Join(sv.GetSlice(), ",")
		}
		opts[config.CanonicalKey(f.Name)] = value
	})
	return opts
}

func printConfig(w io.Writer, cfg config.Config) {
	exts := "all-text"
	if !cfg.Extensions.AllText() {
		exts = strings.Join(cfg.Extensions.List(), ",")
	}
	fmt.Fprintf(w, "project:        %s\n", cfg.ProjectRoot)
	fmt.Fprintf(w, "target:         %s\n", cfg.TargetDir)
	fmt.Fprintf(w, "output:         %s\n", cfg.OutputPath)
	fmt.Fprintf(w, "format:         %s\n", cfg.Format)
	fmt.Fprintf(w, "split-bytes:    %d\n", cfg.SplitBytes)
	fmt.Fprintf(w, "ext:            %s\n", exts)
	fmt.Fprintf(w, "exclude:        %s\n", strings.Join(cfg.ExcludePatterns, ","))
	fmt.Fprintf(w, "all-files:      %t\n", cfg.ExploreAllFiles)
	fmt.Fprintf(w, "max-bytes:      %d\n", cfg.MaxFileBytes)
	fmt.Fprintf(w, "structure:      %t\n", cfg.EmitStructure)
	fmt.Fprintf(w, "structure-max:  %d\n", cfg.StructureMaxEntries)
}

func aliasHelp() string {
	var lines []string
	for alias, canonical := range config.KitchenAliases() {
		lines = append(lines, fmt.Sprintf("  --%-16s = --%s", alias, canonical))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n"
}
