package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lukemcguire/linkrot/config"
	"github.com/lukemcguire/linkrot/crawler"
	"github.com/lukemcguire/linkrot/logging"
	"github.com/lukemcguire/linkrot/markup"
	"github.com/lukemcguire/linkrot/metrics"
	"github.com/lukemcguire/linkrot/result"
	"github.com/lukemcguire/linkrot/tui"
)

// isTerminal reports whether stdout is an interactive terminal.
var isTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// run performs one crawl and writes its report. It returns ErrBrokenFound
// when anything broken was recorded, including by an interrupted crawl.
func run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	if cfg.MetricsAddr != "" {
		shutdown, serveErr := serveMetrics(cfg.MetricsAddr, reg, logger)
		if serveErr != nil {
			return serveErr
		}
		defer stopMetrics(logger, shutdown)
	}

	parser, err := markup.New(cfg.Parser)
	if err != nil {
		return err
	}

	interactive := !cfg.NoTUI && isTerminal()
	var progressCh chan crawler.CrawlEvent
	if interactive {
		progressCh = make(chan crawler.CrawlEvent, 100)
	}

	cr, err := crawler.New(cfg.Crawler(), progressCh,
		crawler.WithParser(parser),
		crawler.WithLogger(logger),
		crawler.WithMetrics(rec))
	if err != nil {
		return fmt.Errorf("create crawler: %w", err)
	}

	var (
		res      *result.Result
		crawlErr error
	)
	if interactive {
		res, crawlErr = runInteractive(ctx, cr, progressCh, stdout)
	} else {
		res, crawlErr = cr.Run(ctx)
	}
	if res == nil {
		return fmt.Errorf("crawl: %w", crawlErr)
	}
	if crawlErr != nil {
		logger.Warn("reporting partial results", zap.Error(crawlErr))
	}

	// The TUI already showed the summary; only write a report when one was
	// asked for explicitly.
	if !interactive || cfg.Output != "" || cfg.Format != config.FormatText {
		if writeErr := writeOutput(cfg, stdout, res); writeErr != nil {
			return writeErr
		}
	}

	if res.HasBroken() {
		return ErrBrokenFound
	}
	return nil
}

// runInteractive drives the crawl through the Bubble Tea progress view.
func runInteractive(ctx context.Context, cr *crawler.Crawler, progressCh <-chan crawler.CrawlEvent, stdout io.Writer) (*result.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(ctx, cancel, cr, progressCh)
	finalModel, err := tea.NewProgram(model, tea.WithOutput(stdout)).Run()
	if err != nil {
		return nil, fmt.Errorf("run tui: %w", err)
	}

	final, ok := finalModel.(tui.Model)
	if !ok {
		return nil, errors.New("run tui: unexpected model type")
	}
	if final.GetResult() == nil && final.Err() == nil {
		return nil, errors.New("crawl aborted")
	}
	return final.GetResult(), final.Err()
}

// serveMetrics starts the metrics server and returns its shutdown func.
func serveMetrics(addr string, g prometheus.Gatherer, logger *zap.Logger) (func() error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on metrics address: %w", err)
	}

	srv := metrics.NewServer(addr, g)
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(serveErr))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown metrics server: %w", err)
		}
		return nil
	}, nil
}

// stopMetrics shuts the metrics server down. A failure only affects the
// metrics endpoint, so it is logged and the crawl outcome stands.
func stopMetrics(logger *zap.Logger, shutdown func() error) {
	if err := shutdown(); err != nil {
		logger.Warn("metrics server shutdown failed", zap.Error(err))
	}
}

// writeOutput renders res in the configured format to the output file, or
// to stdout when none is set.
func writeOutput(cfg config.Config, stdout io.Writer, res *result.Result) (err error) {
	w := stdout
	if cfg.Output != "" {
		f, createErr := os.Create(cfg.Output)
		if createErr != nil {
			return fmt.Errorf("create output file: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("close output file: %w", closeErr))
			}
		}()
		w = f
	}

	switch cfg.Format {
	case config.FormatMarkdown:
		err = result.WriteReport(w, res.BrokenResources)
	case config.FormatJSON:
		err = result.WriteJSON(w, res)
	case config.FormatCSV:
		err = result.WriteCSV(w, res.BrokenResources)
	default:
		result.PrintResults(w, res)
	}
	if err != nil {
		return fmt.Errorf("write %s report: %w", cfg.Format, err)
	}
	return nil
}
