package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/charmbracelet/fang"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vito/typejoin/pkg/conform"
	"github.com/vito/typejoin/pkg/ioctx"
	"github.com/vito/typejoin/pkg/universe"
)

// Config holds the application configuration
type Config struct {
	Debug    bool
	Universe string
	Dump     bool
	Jobs     int
	Plain    bool
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "typejoin",
		Short: "Type conformance and common supertype computation",
		Long: `typejoin decides conformance between type references and computes
the most specific common supertype of a list of types, against a
universe of classes and interfaces declared in a TOML file.`,
		Example: `  # Join two types
  typejoin join -u universe.toml lang.String lang.Integer

  # Check whether int may be used where Number is expected
  typejoin conform -u universe.toml Number int

  # Run every [[query]] in a universe file
  typejoin batch universe.toml

  # Rerun the queries whenever the file changes
  typejoin watch universe.toml`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(setupLogging(cmd.Context(), cfg))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&cfg.Dump, "dump", false, "Dump result structures")
	rootCmd.PersistentFlags().BoolVar(&cfg.Plain, "plain", false, "Disable styled output")

	rootCmd.AddCommand(
		joinCmd(&cfg),
		conformCmd(&cfg),
		batchCmd(&cfg),
		watchCmd(&cfg),
	)

	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(ctx context.Context, cfg Config) context.Context {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(ioctx.StderrFromContext(ctx), &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return ioctx.LoggerToContext(ctx, logger)
}

func computer(ctx context.Context) *conform.Computer {
	return &conform.Computer{Logger: ioctx.LoggerFromContext(ctx)}
}

func joinCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join -u FILE TYPE...",
		Short: "Print the common supertype of the given types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, _, err := universe.Load(cfg.Universe)
			if err != nil {
				return err
			}
			o := evaluate(computer(cmd.Context()), u, universe.Query{Join: args})
			if o.Err != nil {
				return o.Err
			}
			return report(cmd.Context(), *cfg, o)
		},
	}
	cmd.Flags().StringVarP(&cfg.Universe, "universe", "u", "", "Universe file")
	_ = cmd.MarkFlagRequired("universe")
	return cmd
}

func conformCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conform -u FILE EXPECTED ACTUAL",
		Short: "Check whether ACTUAL may be used where EXPECTED is required",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, _, err := universe.Load(cfg.Universe)
			if err != nil {
				return err
			}
			o := evaluate(computer(cmd.Context()), u, universe.Query{Conform: args})
			if o.Err != nil {
				return o.Err
			}
			if err := report(cmd.Context(), *cfg, o); err != nil {
				return err
			}
			return o.Mismatch
		},
	}
	cmd.Flags().StringVarP(&cfg.Universe, "universe", "u", "", "Universe file")
	_ = cmd.MarkFlagRequired("universe")
	return cmd
}

func batchCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run every query declared in a universe file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := universe.LoadFile(args[0])
			if err != nil {
				return err
			}
			failed, err := runBatch(cmd.Context(), *cfg, file)
			if err != nil {
				return err
			}
			if failed > 0 {
				return errors.Errorf("%d of %d queries failed", failed, len(file.Queries))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&cfg.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Number of queries to run concurrently")
	return cmd
}

func watchCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Run the queries of a universe file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), *cfg, args[0])
		},
	}
	cmd.Flags().IntVarP(&cfg.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Number of queries to run concurrently")
	return cmd
}
