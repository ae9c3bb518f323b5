package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/isatab/config"
	"github.com/c360studio/isatab/document"
	"github.com/c360studio/isatab/export"
	"github.com/c360studio/isatab/metric"
	"github.com/c360studio/isatab/publish"
	"github.com/c360studio/isatab/storage"
	"github.com/c360studio/isatab/watch"
)

// publisher is the part of *publish.Publisher used by App.
type publisher interface {
	Publish(ctx context.Context, msg publish.Message) error
	Close()
}

// recorder is the part of *storage.Store used by App.
type recorder interface {
	Put(ctx context.Context, r *storage.Record) error
}

// Result describes one exported source document.
type Result struct {
	Source     string
	Output     string
	Identifier string
	Stats      export.Stats
}

// App wires the loader, writer, metrics and publisher together.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	runID  string

	writer   *export.Writer
	registry *prometheus.Registry
	metrics  *metric.Metrics

	publisher publisher
	history   recorder
	server    *http.Server
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	writer, err := export.NewWriter(cfg.WriterOptions())
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}

	runID := uuid.NewString()
	registry := metric.NewRegistry()

	return &App{
		cfg:      cfg,
		logger:   logger.With("run_id", runID),
		runID:    runID,
		writer:   writer,
		registry: registry,
		metrics:  metric.NewMetrics(registry),
	}, nil
}

// Start connects the optional NATS publisher and metrics endpoint.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.Publish.NATSURL != "" && a.publisher == nil {
		p, err := publish.Connect(a.cfg.Publish.NATSURL, a.cfg.Publish.Subject, a.logger)
		if err != nil {
			return fmt.Errorf("start publisher: %w", err)
		}
		a.publisher = p
		a.logger.Info("Publishing investigations",
			"url", a.cfg.Publish.NATSURL,
			"subject", a.cfg.Publish.Subject)

		if a.cfg.Publish.HistoryBucket != "" {
			store, err := openStore(ctx, p, a.cfg.Publish.HistoryBucket)
			if err != nil {
				return err
			}
			a.history = store
			a.logger.Info("Recording export history", "bucket", a.cfg.Publish.HistoryBucket)
		}
	}

	if a.cfg.Metrics.Addr != "" {
		if err := a.startMetrics(ctx); err != nil {
			return err
		}
	}
	return nil
}

func openStore(ctx context.Context, p *publish.Publisher, bucket string) (*storage.Store, error) {
	js, err := p.JetStream()
	if err != nil {
		return nil, fmt.Errorf("open JetStream: %w", err)
	}
	store, err := storage.NewStore(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func (a *App) startMetrics(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Metrics.Addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metric.Handler(a.registry))
	a.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", "error", err)
		}
	}()
	a.logger.Info("Metrics endpoint listening", "addr", ln.Addr().String())
	return nil
}

// Shutdown stops the metrics endpoint and drains the publisher.
func (a *App) Shutdown(timeout time.Duration) {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("Metrics server shutdown failed", "error", err)
		}
		a.server = nil
	}
	if a.publisher != nil {
		a.publisher.Close()
		a.publisher = nil
	}
}

// outputPath returns where the investigation file for a source document is
// written: the configured output directory, or the source's own directory.
func (a *App) outputPath(source, identifier string) string {
	dir := a.cfg.Output.Dir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, export.FileName(export.FormatInvestigation, identifier))
}

// Export loads the source document, writes its investigation file and
// publishes it when a publisher is configured.
func (a *App) Export(ctx context.Context, source string) (Result, error) {
	start := time.Now()
	result, err := a.export(ctx, source)
	a.metrics.Observe(result.Stats, time.Since(start), err)
	a.record(ctx, result, err)
	if err != nil {
		return result, err
	}

	a.logger.Info("Wrote investigation",
		"source", source,
		"output", result.Output,
		"studies", result.Stats.Studies,
		"lines", result.Stats.Lines,
		"bytes", result.Stats.Bytes)

	if a.publisher != nil {
		if err := a.publishResult(ctx, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (a *App) export(ctx context.Context, source string) (Result, error) {
	result := Result{Source: source}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	inv, err := document.Load(source)
	if err != nil {
		return result, err
	}
	result.Identifier = inv.Identifier
	result.Output = a.outputPath(source, inv.Identifier)

	if err := os.MkdirAll(filepath.Dir(result.Output), 0755); err != nil {
		return result, fmt.Errorf("create output directory: %w", err)
	}

	result.Stats, err = a.writer.WriteFile(result.Output, inv)
	return result, err
}

// record stores the outcome of an export in the history bucket. Documents
// that failed to load have no identifier and are not recorded.
func (a *App) record(ctx context.Context, result Result, exportErr error) {
	if a.history == nil || result.Identifier == "" {
		return
	}
	r := &storage.Record{
		Identifier: result.Identifier,
		RunID:      a.runID,
		Source:     result.Source,
		Output:     result.Output,
		Success:    exportErr == nil,
		Lines:      result.Stats.Lines,
		Bytes:      result.Stats.Bytes,
		Studies:    result.Stats.Studies,
	}
	if exportErr != nil {
		r.Error = exportErr.Error()
	}
	if err := a.history.Put(ctx, r); err != nil {
		a.logger.Warn("Failed to record export", "identifier", result.Identifier, "error", err)
	}
}

func (a *App) publishResult(ctx context.Context, result Result) error {
	data, err := os.ReadFile(result.Output)
	if err != nil {
		return fmt.Errorf("read written file: %w", err)
	}
	return a.publisher.Publish(ctx, publish.Message{
		RunID:      a.runID,
		Identifier: result.Identifier,
		FileName:   filepath.Base(result.Output),
		Data:       data,
	})
}

// ExportAll exports every source and returns the results of the successful
// ones. Failures are logged and joined into the returned error.
func (a *App) ExportAll(ctx context.Context, sources []string) ([]Result, error) {
	var results []Result
	var errs []error
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := a.Export(ctx, source)
		if err != nil {
			a.logger.Error("Export failed", "source", source, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			continue
		}
		results = append(results, result)
	}
	return results, errors.Join(errs...)
}

// Watch exports sources once, then re-exports every source document that
// changes until ctx is done.
func (a *App) Watch(ctx context.Context, sources []string) error {
	w, err := watch.New(watch.Config{
		Debounce:   a.cfg.Watch.Debounce,
		Extensions: a.cfg.Watch.Extensions,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	for _, source := range sources {
		if err := w.Add(source); err != nil {
			return fmt.Errorf("watch %s: %w", source, err)
		}
	}

	files, err := resolveSources(sources, a.cfg.Watch.Extensions)
	if err != nil {
		a.logger.Warn("No source documents to export yet", "error", err)
	} else if _, err := a.ExportAll(ctx, files); err != nil {
		a.logger.Warn("Initial export incomplete", "error", err)
	}

	go w.Run(ctx)

	for event := range w.Events() {
		switch event.Operation {
		case watch.OpCreate, watch.OpModify:
			if _, err := a.Export(ctx, event.Path); err != nil {
				a.logger.Error("Re-export failed", "source", event.Path, "error", err)
			}
		case watch.OpDelete:
			a.logger.Info("Source document removed", "source", event.Path)
		}
	}

	if dropped := w.DroppedEvents(); dropped > 0 {
		a.logger.Warn("Watch events were dropped", "count", dropped)
	}
	return nil
}
