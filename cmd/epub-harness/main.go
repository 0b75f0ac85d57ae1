// Command epub-harness clears stale extractor output from a directory of
// sample epubs and runs an extractor over each of them.
//
//	epub-harness                      # test-epubs/ next to the binary, TOC dump
//	epub-harness --extractor jpeg     # JPEG extraction instead
//	epub-harness --command python3 --command epub_dump_toc.py
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twistedogic/epub-extractor/internal/config"
	"github.com/twistedogic/epub-extractor/internal/harness"
)

type options struct {
	baseDir   string
	config    string
	inputDir  string
	extractor string
	command   []string
	logLevel  string
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.baseDir, o.config, o.config != "")
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("input-dir") {
		cfg.InputDir = o.inputDir
	}
	if cmd.Flags().Changed("extractor") {
		if cfg.Extractor, err = config.Preset(o.extractor); err != nil {
			return nil, err
		}
	}
	if len(o.command) > 0 {
		cfg.Extractor = o.command
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	return cfg, cfg.Validate()
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "epub-harness",
		Short:         "Run an epub extractor over every sample in the test directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ext := &harness.CommandExtractor{
				Argv:   cfg.Command(),
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			}
			r := harness.New(cfg.InputPath(), ext, cmd.OutOrStdout(), logger)
			_, err = r.Run(cmd.Context())
			return err
		},
	}
	cmd.Flags().StringVar(&o.baseDir, "base-dir", executableDir(), "directory the input directory is resolved against")
	cmd.Flags().StringVar(&o.config, "config", "", "config file (default <base-dir>/"+config.DefaultFile+")")
	cmd.Flags().StringVar(&o.inputDir, "input-dir", config.DefaultInputDir, "directory holding the sample epubs")
	cmd.Flags().StringVar(&o.extractor, "extractor", config.DefaultPreset, "extractor preset: toc, jpeg, meta or text")
	cmd.Flags().StringArrayVar(&o.command, "command", nil, "extractor argv, repeat for each argument; a relative program path is resolved against --base-dir")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "info", "log level")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "epub-harness:", err)
		os.Exit(1)
	}
}
