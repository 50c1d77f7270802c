package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/spdxld/codec"
	"github.com/c360studio/spdxld/config"
	"github.com/c360studio/spdxld/document"
	"github.com/c360studio/spdxld/export"
	"github.com/c360studio/spdxld/graph"
	"github.com/c360studio/spdxld/metrics"
	"github.com/c360studio/spdxld/resolver"
	"github.com/c360studio/spdxld/scan"
	"github.com/c360studio/spdxld/storage"
	"github.com/c360studio/spdxld/transform"
	"github.com/c360studio/spdxld/watch"
)

// errStorageDisabled is returned by store commands when storage.url is
// not configured.
var errStorageDisabled = errors.New("storage disabled: set storage.url")

// App wires the walker, outputs, metrics and the optional NATS element
// store together.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	walker  *transform.Walker
	metrics *metrics.Recorder

	// NATS
	natsConn *nats.Conn
	js       jetstream.JetStream

	// Storage
	store     *storage.Store
	publisher *graph.ElementPublisher
}

// FileReport is the outcome of processing one input document.
type FileReport struct {
	Path        string
	Elements    int
	Diagnostics resolver.Diagnostics
	Outputs     []string
	Stored      int
	Published   int
}

// BatchReport is the outcome of a check run.
type BatchReport struct {
	Documents []*FileReport
	Failed    []string
}

// Warnings returns the number of diagnostics across all documents.
func (r *BatchReport) Warnings() int {
	n := 0
	for _, d := range r.Documents {
		n += len(d.Diagnostics)
	}
	return n
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	rec := metrics.New()
	return &App{
		cfg:    cfg,
		logger: logger,
		walker: transform.NewWalker(transform.Options{
			Resolver: resolver.Options{DefaultProperties: cfg.Transform.DefaultProperties},
			Workers:  cfg.Transform.Workers,
			Logger:   logger,
			Recorder: rec,
		}),
		metrics: rec,
	}
}

// Start connects to NATS and opens the element store when storage is
// configured. Without storage.url it does nothing.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.Storage.URL == "" {
		return nil
	}

	a.logger.Info("Connecting to NATS", "url", a.cfg.Storage.URL)
	conn, err := nats.Connect(a.cfg.Storage.URL, nats.Name(appName))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	a.natsConn = conn

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	a.js = js

	store, err := storage.NewStore(ctx, js, a.cfg.Storage.Bucket)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	a.store = store

	if a.cfg.Storage.Subject != "" {
		a.publisher = graph.NewElementPublisher(conn, a.cfg.Storage.Subject)
	}

	a.logger.Info("Element store ready",
		"bucket", a.cfg.Storage.Bucket,
		"subject", a.cfg.Storage.Subject)
	return nil
}

// Shutdown drains and closes the NATS connection.
func (a *App) Shutdown() {
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.logger.Warn("Failed to drain NATS connection", "error", err)
		}
		a.natsConn.Close()
	}
}

// Expand loads and expands one document file.
func (a *App) Expand(path string) (*document.Document, *transform.Result, error) {
	doc, err := codec.Load(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := a.walker.ExpandDocument(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, res, nil
}

// Render writes expanded elements in one output format.
func (a *App) Render(w io.Writer, format export.Format, res *transform.Result) error {
	switch {
	case export.IsEncoding(format):
		return codec.EncodeElements(w, string(format), res.Elements)
	case format == export.FormatDOT:
		return export.WriteDOT(w, res.Context, res.Elements)
	}

	exporter := export.NewRDFExporter(res.Context)
	exporter.AddElements(res.Elements...)
	out, err := exporter.Export(format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// ProcessFile expands the document at rel (relative to the input
// directory), writes the configured outputs and, when storage is
// enabled, stores and publishes its elements.
func (a *App) ProcessFile(ctx context.Context, rel string) (*FileReport, error) {
	start := time.Now()

	_, res, err := a.Expand(filepath.Join(a.cfg.Input.Dir, filepath.FromSlash(rel)))
	if err != nil {
		a.metrics.DocumentProcessed(metrics.ResultFailed, time.Since(start))
		return nil, err
	}

	report := &FileReport{
		Path:        rel,
		Elements:    len(res.Elements),
		Diagnostics: res.Diagnostics,
	}

	report.Outputs, err = a.writeOutputs(rel, res)
	if err == nil {
		report.Stored, report.Published, err = a.persist(ctx, res)
	}
	if err != nil {
		a.metrics.DocumentProcessed(metrics.ResultFailed, time.Since(start))
		return nil, fmt.Errorf("%s: %w", rel, err)
	}

	result := metrics.ResultOK
	if len(res.Diagnostics) > 0 {
		result = metrics.ResultWarnings
	}
	a.metrics.DocumentProcessed(result, time.Since(start))

	a.logger.Debug("Processed document",
		"path", rel,
		"elements", report.Elements,
		"warnings", len(report.Diagnostics))
	return report, nil
}

// writeOutputs writes one file per configured format under the output
// directory, mirroring the input path with the format's extension.
func (a *App) writeOutputs(rel string, res *transform.Result) ([]string, error) {
	base := filepath.FromSlash(rel[:len(rel)-len(path.Ext(rel))])
	outputs := make([]string, 0, len(a.cfg.Output.Formats))

	for _, name := range a.cfg.Output.Formats {
		format := export.Format(name)
		info, ok := export.GetFormatInfo(format)
		if !ok {
			return nil, fmt.Errorf("%w: %s", export.ErrUnsupportedFormat, name)
		}

		var buf bytes.Buffer
		if err := a.Render(&buf, format, res); err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}

		out := filepath.Join(a.cfg.Output.Dir, base+info.Extension)
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", out, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// persist stores and publishes expanded elements when storage is enabled.
func (a *App) persist(ctx context.Context, res *transform.Result) (stored, published int, err error) {
	if a.store == nil {
		return 0, 0, nil
	}
	namespace := res.Context.Namespace()
	if stored, err = a.store.PutElements(ctx, namespace, res.Elements); err != nil {
		return stored, 0, err
	}
	if a.publisher != nil {
		if published, err = a.publisher.PublishElements(ctx, namespace, res.Elements); err != nil {
			return stored, published, err
		}
	}
	return stored, published, nil
}

// CheckAll processes every document under the input directory that
// matches the include globs. A document that fails is logged and skipped.
func (a *App) CheckAll(ctx context.Context) (*BatchReport, error) {
	files, err := scan.Files(a.cfg.Input.Dir, a.cfg.Input.Include)
	if err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	a.logger.Info("Checking documents", "dir", a.cfg.Input.Dir, "count", len(files))

	report := &BatchReport{}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fr, err := a.ProcessFile(ctx, rel)
		if err != nil {
			a.logger.Error("Skipping document", "path", rel, "error", err)
			report.Failed = append(report.Failed, rel)
			continue
		}
		report.Documents = append(report.Documents, fr)
	}

	a.writeMetrics()
	return report, nil
}

// Watch reprocesses documents as they change until ctx is done. onReport
// is called after every successfully processed document.
func (a *App) Watch(ctx context.Context, onReport func(*FileReport)) error {
	files, err := scan.Files(a.cfg.Input.Dir, a.cfg.Input.Include)
	if err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	w, err := watch.NewWatcher(watch.Config{
		Root:     a.cfg.Input.Dir,
		Include:  a.cfg.Input.Include,
		Debounce: a.cfg.Input.Debounce,
		Logger:   a.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.Seed(files)

	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() {
		if err := w.Stop(); err != nil {
			a.logger.Warn("Failed to stop watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			if event.Operation == watch.OpDelete {
				a.logger.Info("Document removed", "path", event.Path)
				continue
			}
			fr, err := a.ProcessFile(ctx, event.Path)
			if err != nil {
				a.logger.Error("Skipping document", "path", event.Path, "error", err)
			} else if onReport != nil {
				onReport(fr)
			}
			a.writeMetrics()
		}
	}
}

func (a *App) writeMetrics() {
	if a.cfg.Metrics.Textfile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Warn("Failed to write metrics", "path", a.cfg.Metrics.Textfile, "error", err)
	}
}
