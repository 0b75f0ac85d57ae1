// Command epub-extractor dumps the table of contents or metadata of epub
// files, or extracts their page images. It is the extractor epub-harness
// runs by default.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twistedogic/epub-extractor/internal/config"
)

type app struct {
	logLevel string
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "epub-extractor",
		Short:         "Dump the TOC or metadata of epub files, or extract their page images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default(".")
			cfg.LogLevel = a.logLevel
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := cfg.Logger()
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level")
	root.AddCommand(
		a.dumpTOCCmd(),
		a.dumpMetaCmd(),
		a.extractJPEGCmd(),
		a.dumpTextCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "epub-extractor:", err)
		os.Exit(1)
	}
}
