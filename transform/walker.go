package transform

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/resolver"
)

// Direction names used when reporting transformed elements.
const (
	DirectionExpand  = "expand"
	DirectionCompact = "compact"
)

// Recorder receives walker statistics. metrics.Recorder implements it.
type Recorder interface {
	ElementsTransformed(direction string, n int)
	DiagnosticsReported(ds resolver.Diagnostics)
}

// Options configures a Walker.
type Options struct {
	// Resolver configures context building.
	Resolver resolver.Options

	// Workers bounds the number of elements transformed concurrently.
	// Values below 2 transform sequentially.
	Workers int

	// Logger receives one warning per diagnostic (default: slog.Default()).
	Logger *slog.Logger

	// Recorder is optional.
	Recorder Recorder
}

// Walker applies the element transforms across whole documents.
type Walker struct {
	opts   Options
	logger *slog.Logger
}

// NewWalker creates a Walker.
func NewWalker(opts Options) *Walker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{opts: opts, logger: logger}
}

// Result is the outcome of expanding a document.
type Result struct {
	Context     *resolver.Context
	Elements    []document.Element
	Diagnostics resolver.Diagnostics
}

// ExpandDocument builds the document's Context and expands every element,
// preserving input order. Only a malformed context is an error;
// diagnostics are collected in the Result.
func (w *Walker) ExpandDocument(doc *document.Document) (*Result, error) {
	ctx, err := resolver.Build(doc, w.opts.Resolver)
	if err != nil {
		return nil, fmt.Errorf("build context: %w", err)
	}

	elements, diags := w.mapElements(doc.Elements, func(e document.Element) (document.Element, resolver.Diagnostics) {
		return ExpandElement(ctx, e)
	})

	for _, d := range diags {
		w.logger.Warn("Undefined element",
			"id", d.Identifier,
			"element", d.Element,
			"field", d.Field)
	}
	if w.opts.Recorder != nil {
		w.opts.Recorder.ElementsTransformed(DirectionExpand, len(elements))
		w.opts.Recorder.DiagnosticsReported(diags)
	}

	return &Result{Context: ctx, Elements: elements, Diagnostics: diags}, nil
}

// CompactDocument compacts expanded elements against an existing Context,
// preserving input order.
func (w *Walker) CompactDocument(ctx *resolver.Context, elements []document.Element) []document.Element {
	out, _ := w.mapElements(elements, func(e document.Element) (document.Element, resolver.Diagnostics) {
		return CompactElement(ctx, e), nil
	})
	if w.opts.Recorder != nil {
		w.opts.Recorder.ElementsTransformed(DirectionCompact, len(out))
	}
	return out
}

// mapElements applies fn to every element. Output slot i always holds the
// result for input i, whatever order the workers finish in.
func (w *Walker) mapElements(in []document.Element, fn func(document.Element) (document.Element, resolver.Diagnostics)) ([]document.Element, resolver.Diagnostics) {
	out := make([]document.Element, len(in))
	perElement := make([]resolver.Diagnostics, len(in))

	if w.opts.Workers < 2 || len(in) < 2 {
		for i, e := range in {
			out[i], perElement[i] = fn(e)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(w.opts.Workers)
		for i := range in {
			g.Go(func() error {
				out[i], perElement[i] = fn(in[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	var diags resolver.Diagnostics
	for _, ds := range perElement {
		diags = append(diags, ds...)
	}
	return out, diags
}

var defaultWalker = NewWalker(Options{})

// ExpandDocument expands doc with a sequential Walker and the standard
// default-property allow-list.
func ExpandDocument(doc *document.Document) (*Result, error) {
	return defaultWalker.ExpandDocument(doc)
}

// CompactDocument compacts elements with a sequential Walker.
func CompactDocument(ctx *resolver.Context, elements []document.Element) []document.Element {
	return defaultWalker.CompactDocument(ctx, elements)
}
