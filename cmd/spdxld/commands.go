package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/spdxld/codec"
	"github.com/c360studio/spdxld/export"
	"github.com/c360studio/spdxld/spdx2"
)

// outputFlags are shared by the single-document commands.
type outputFlags struct {
	format string
	output string
}

func (f *outputFlags) register(cmd *cobra.Command, defaultFormat, formatHelp string) {
	cmd.Flags().StringVarP(&f.format, "format", "f", defaultFormat, formatHelp)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
}

// open returns the command's output writer and a function that closes it.
func (f *outputFlags) open(cmd *cobra.Command) (io.Writer, func() error, error) {
	if f.output == "" || f.output == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(f.output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return file, file.Close, nil
}

// write runs fn against the output writer and closes it.
func (f *outputFlags) write(cmd *cobra.Command, fn func(io.Writer) error) error {
	w, closeFn, err := f.open(cmd)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

func expandCmd(g *globals) *cobra.Command {
	var (
		out    outputFlags
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "expand <file>",
		Short: "Expand a document's elements to absolute IRIs",
		Long: `Expand resolves every identifier of every element against the document's
namespace, namespace map and document references, and copies inherited
document properties onto the elements. Undefined references are logged as
warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp(g.cfg, g.logger)
			_, res, err := app.Expand(args[0])
			if err != nil {
				return err
			}
			if err := out.write(cmd, func(w io.Writer) error {
				return codec.EncodeElements(w, out.format, res.Elements)
			}); err != nil {
				return err
			}
			if strict {
				return res.Diagnostics.Err()
			}
			return nil
		},
	}

	out.register(cmd, "json", "Output encoding (json, yaml)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any reference is undefined")
	return cmd
}

func compactCmd(g *globals) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "compact <file>",
		Short: "Expand a document, then print it compacted again",
		Long: `Compact expands the document and compacts each element back against the
same context, dropping properties equal to the inherited defaults. The
document header is printed with the compacted elements.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp(g.cfg, g.logger)
			doc, res, err := app.Expand(args[0])
			if err != nil {
				return err
			}
			compacted := doc.Header()
			compacted.Elements = app.walker.CompactDocument(res.Context, res.Elements)
			return out.write(cmd, func(w io.Writer) error {
				return codec.EncodeDocument(w, out.format, compacted)
			})
		},
	}

	out.register(cmd, "json", "Output encoding (json, yaml)")
	return cmd
}

func graphCmd(g *globals) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Render a document's collections as a Graphviz digraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp(g.cfg, g.logger)
			_, res, err := app.Expand(args[0])
			if err != nil {
				return err
			}
			return out.write(cmd, func(w io.Writer) error {
				return export.WriteDOT(w, res.Context, res.Elements)
			})
		},
	}

	cmd.Flags().StringVarP(&out.output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func exportCmd(g *globals) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a document's expanded elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := export.Format(out.format)
			if _, ok := export.GetFormatInfo(format); !ok {
				return fmt.Errorf("%w: %s", export.ErrUnsupportedFormat, out.format)
			}
			app := NewApp(g.cfg, g.logger)
			_, res, err := app.Expand(args[0])
			if err != nil {
				return err
			}
			return out.write(cmd, func(w io.Writer) error {
				return app.Render(w, format, res)
			})
		},
	}

	out.register(cmd, string(export.FormatTurtle), "Export format (turtle, ntriples, jsonld, dot, json, yaml)")
	return cmd
}

func translateCmd(g *globals) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "translate <spdx2.json>",
		Short: "Translate an SPDX 2 JSON document header to an SPDX 3 document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}
			doc, err := spdx2.Translate(data)
			if err != nil {
				return err
			}
			g.logger.Debug("Translated document", "path", args[0], "namespace", doc.Namespace)
			return out.write(cmd, func(w io.Writer) error {
				return codec.EncodeDocument(w, out.format, doc)
			})
		},
	}

	out.register(cmd, "json", "Output encoding (json, yaml)")
	return cmd
}
