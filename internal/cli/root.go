// Package cli wires the ten-command surface of ssd-syncer onto the sync
// engine. It is deliberately thin: argument parsing, help text, and output
// rendering are this package's only job, with all sync semantics living in
// internal/syncengine. Mapping a returned error to an exit code is left to
// main().
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssd-syncer/ssd-syncer/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in NewRootCmd.
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagDebug      bool
	flagQuiet      bool
)

// skipConfigAnnotation marks commands that must run before any config file
// exists (init).
const skipConfigAnnotation = "skipConfig"

type rootContextKey struct{}

// rootContext bundles the resolved config and logger built once in
// PersistentPreRunE, so RunE handlers don't each re-derive them.
type rootContext struct {
	cfg        *config.Config
	cfgPath    string
	logger     *slog.Logger
	jsonOutput bool
}

func contextFrom(ctx context.Context) *rootContext {
	rc, _ := ctx.Value(rootContextKey{}).(*rootContext)
	return rc
}

func mustContext(ctx context.Context) *rootContext {
	rc := contextFrom(ctx)
	if rc == nil {
		panic("BUG: rootContext missing — command must not carry skipConfigAnnotation")
	}

	return rc
}

// NewRootCmd builds the fully-assembled root command with all subcommands
// registered. Called once from main().
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ssd-syncer",
		Short:         "Bidirectional sync over a removable SSD transport",
		Long:          "ssd-syncer keeps directories on multiple machines in agreement by using a physically-mounted removable SSD as a passive transport hub.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfigAnnotation] == "true" {
				return nil
			}

			return loadRootContext(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path (default: platform config dir)")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show detailed output")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "debug", "quiet")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSetSSDCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newDiffCmd())
	cmd.AddCommand(newLogCmd())
	cmd.AddCommand(newIgnoreCmd())

	return cmd
}

func loadRootContext(cmd *cobra.Command) error {
	logger := buildLogger()

	path := flagConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.Load(path, logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rc := &rootContext{cfg: cfg, cfgPath: path, logger: logger, jsonOutput: flagJSON}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.SetContext(context.WithValue(ctx, rootContextKey{}, rc))

	return nil
}

// buildLogger creates an slog.Logger writing to stderr, so stdout stays
// reserved for --json output. CLI flags set the level; they are mutually
// exclusive (enforced by Cobra).
func buildLogger() *slog.Logger {
	level := slog.LevelWarn

	switch {
	case flagDebug:
		level = slog.LevelDebug
	case flagVerbose:
		level = slog.LevelInfo
	case flagQuiet:
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ExitOnError prints a user-friendly error message to stderr. Exported so
// main() can call it after Execute returns a non-nil error; exit-code
// mapping itself stays main()'s job per the package doc comment.
func ExitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
