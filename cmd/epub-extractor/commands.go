package main

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/twistedogic/epub-extractor/internal/epub"
)

func (a *app) open(p string) (*epub.Book, error) {
	return epub.Open(p, a.logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// dumpEach runs fn over every file. A single file prints its result alone,
// several files print an array.
func dumpEach[T any](w io.Writer, files []string, fn func(string) (T, error)) error {
	out := make([]T, 0, len(files))
	for _, f := range files {
		v, err := fn(f)
		if err != nil {
			return err
		}
		out = append(out, v)
	}
	if len(out) == 1 {
		return printJSON(w, out[0])
	}
	return printJSON(w, out)
}

func (a *app) toc(p string) ([]epub.Section, error) {
	b, err := a.open(p)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.TOC()
}

func (a *app) dumpTOCCmd() *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:   "dump-toc EPUB...",
		Short: "Dump the table of contents as page ranges",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !render {
				return dumpEach(cmd.OutOrStdout(), args, a.toc)
			}
			for _, p := range args {
				table, err := a.toc(p)
				if err != nil {
					return err
				}
				out, err := epub.Render([]byte("# "+p+"\n\n"+epub.TOCMarkdown(table)), "dark")
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "print a table for the terminal instead of JSON")
	return cmd
}

func (a *app) dumpMetaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-meta EPUB...",
		Short: "Dump package metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpEach(cmd.OutOrStdout(), args, func(p string) (epub.Meta, error) {
				b, err := a.open(p)
				if err != nil {
					return epub.Meta{}, err
				}
				defer b.Close()
				return b.Meta()
			})
		},
	}
}

func (a *app) extractJPEGCmd() *cobra.Command {
	var opts epub.ExtractOptions
	var noConvert bool
	cmd := &cobra.Command{
		Use:   "extract-jpeg EPUB...",
		Short: "Extract one image per page into a directory named after the epub",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.KeepPNG = noConvert
			for _, p := range args {
				b, err := a.open(p)
				if err != nil {
					return err
				}
				_, err = b.ExtractImages(opts)
				b.Close()
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noConvert, "no-png-convert", false, "keep png pages as png")
	cmd.Flags().BoolVar(&opts.DeleteExisting, "delete-exists-dir", false, "replace an existing output directory")
	return cmd
}

func (a *app) dumpTextCmd() *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:   "dump-text EPUB",
		Short: "Convert the spine pages to markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer b.Close()
			if !render {
				return b.Markdown(cmd.OutOrStdout())
			}
			var md bytes.Buffer
			if err := b.Markdown(&md); err != nil {
				return err
			}
			out, err := epub.Render(md.Bytes(), "dark")
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "render the markdown for the terminal")
	return cmd
}
