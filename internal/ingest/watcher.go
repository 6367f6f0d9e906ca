// Package ingest watches a drop directory for call export files and feeds
// them into the analytics service. Exports are JSON files holding either a
// single call object or an array of them.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/callsight/insights-server/internal/pipeline"
	"github.com/callsight/insights-server/internal/service"
)

var (
	filesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callsight_ingest_files_total",
		Help: "Number of drop-dir files ingested successfully.",
	})
	filesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "callsight_ingest_files_failed_total",
		Help: "Number of drop-dir files skipped due to parse or storage errors.",
	})
)

const ingestTimeout = 30 * time.Second

// Ingester is the slice of the analytics service the watcher needs.
type Ingester interface {
	IngestCall(ctx context.Context, in service.NewCall) (pipeline.CallRecord, error)
}

// Watcher monitors a directory for new JSON call exports.
type Watcher struct {
	dir      string
	ingester Ingester
	logger   *zap.Logger
}

// NewWatcher builds a drop-dir watcher. It panics when no ingester is
// provided, matching the wiring contract of the service layer.
func NewWatcher(dir string, ingester Ingester, logger *zap.Logger) *Watcher {
	if ingester == nil {
		panic("nil Ingester provided to NewWatcher")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		ingester: ingester,
		logger:   logger.Named("ingest-watcher"),
	}
}

// Start sweeps files already present in the directory, then watches for new
// and modified exports until the context is canceled. A malformed file is
// logged and skipped; it never stops the watcher. Write events give a file
// completed in place after a failed parse another chance.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.sweep(ctx); err != nil {
		return fmt.Errorf("initial sweep: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if !isExport(event.Name) {
					continue
				}
				w.ingestFile(ctx, event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", zap.Error(err))
			}
		}
	}()

	w.logger.Info("watching drop directory", zap.String("dir", w.dir))
	return nil
}

// sweep ingests exports that were dropped before the watcher started.
func (w *Watcher) sweep(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isExport(entry.Name()) {
			continue
		}
		w.ingestFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// ingestFile parses one export file and forwards each call to the service.
// Successfully processed files are removed so a restart does not replay them.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	calls, err := parseExport(path)
	if err != nil {
		// A Create and a Write for the same file each trigger an attempt;
		// whichever runs second finds the file already processed and removed.
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		filesFailed.Inc()
		w.logger.Warn("skipping malformed export",
			zap.String("file", path),
			zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()

	var rejected int
	for _, in := range calls {
		if _, err := w.ingester.IngestCall(ctx, in); err != nil {
			rejected++
			w.logger.Warn("call rejected",
				zap.String("file", path),
				zap.String("phone", in.Phone),
				zap.Error(err))
		}
	}

	if rejected == len(calls) && len(calls) > 0 {
		filesFailed.Inc()
		return
	}

	filesIngested.Inc()
	if err := os.Remove(path); err != nil {
		w.logger.Warn("could not remove processed export",
			zap.String("file", path),
			zap.Error(err))
	}
	w.logger.Info("export ingested",
		zap.String("file", path),
		zap.Int("calls", len(calls)-rejected),
		zap.Int("rejected", rejected))
}

// parseExport accepts either a single call object or an array of calls.
func parseExport(path string) ([]service.NewCall, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, errors.New("empty export file")
	}

	if strings.HasPrefix(trimmed, "[") {
		var calls []service.NewCall
		if err := json.Unmarshal(data, &calls); err != nil {
			return nil, fmt.Errorf("parse call array: %w", err)
		}
		return calls, nil
	}

	var call service.NewCall
	if err := json.Unmarshal(data, &call); err != nil {
		return nil, fmt.Errorf("parse call object: %w", err)
	}
	return []service.NewCall{call}, nil
}

func isExport(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
