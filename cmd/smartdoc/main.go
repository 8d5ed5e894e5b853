package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"smartdoc/internal/config"
	"smartdoc/internal/httpapi"
	"smartdoc/internal/logger"
	"smartdoc/internal/metrics"
	"smartdoc/internal/service"
	"smartdoc/internal/tui"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "smartdoc",
		Short:        "Document summarization and question answering",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to YAML config file (optional; uses ~/.config/smartdoc/config.yaml if not provided)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(flags), newConsoleCmd(flags))
	return root
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			srv := httpapi.New(httpapi.Config{
				Addr:           a.cfg.Server.Addr,
				MaxUploadBytes: a.cfg.MaxUploadBytes(),
				CORSOrigins:    a.cfg.Server.CORSOrigins,
				Development:    a.cfg.Log.Development,
			}, a.svc, a.metrics, a.log.Named("http"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
}

func newConsoleCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "console FILE...",
		Short: "Load documents and open the interactive summary and Q&A console",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			ctx := cmd.Context()
			paths, err := expandInputs(args)
			if err != nil {
				return err
			}
			loaded, err := ingestFiles(ctx, a.svc, paths, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.log.Info("documents loaded", zap.Int("count", loaded))

			_, err = tea.NewProgram(tui.New(ctx, a.svc), tea.WithAltScreen()).Run()
			return err
		},
	}
}

// expandInputs resolves paths and globs, including ** patterns. A pattern
// with no matches is kept as-is so the read error names it.
func expandInputs(inputs []string) ([]string, error) {
	var paths []string
	for _, p := range inputs {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			matches = []string{p}
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

// ingestFiles uploads every path, reporting progress to out.
func ingestFiles(ctx context.Context, svc *service.Service, paths []string, out io.Writer) (int, error) {
	if len(paths) == 0 {
		return 0, errors.New("no documents found")
	}
	bar := newProgressBar(len(paths), "ingesting", out)
	loaded := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return loaded, err
		}
		if _, err := svc.Upload(ctx, filepath.Base(path), data); err != nil {
			return loaded, fmt.Errorf("%s: %w", path, err)
		}
		loaded++
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return loaded, nil
}

func newProgressBar(total int, description string, out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

type app struct {
	cfg     *config.AppConfig
	log     *zap.Logger
	metrics *metrics.Manager
	svc     *service.Service
}

func setup(flags *globalFlags) (*app, error) {
	var cfg *config.AppConfig
	var err error
	if flags.configPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(flags.configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if verrs := cfg.Validate(); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Error()
		}
		return nil, fmt.Errorf("invalid config:\n  %s", strings.Join(msgs, "\n  "))
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	m := metrics.NewManager()
	p, err := buildProviders(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("providers ready",
		zap.String("embedder", p.embedder.Name()),
		zap.String("summarizer", p.summarizer.Name()),
		zap.String("answerer", p.answerer.Name()))

	svc := service.New(service.Deps{
		Extractor:  p.extractor,
		Embedder:   p.embedder,
		Summarizer: p.summarizer,
		Answerer:   p.answerer,
		Metrics:    m,
	}, serviceOptions(cfg), log)
	return &app{cfg: cfg, log: log, metrics: m, svc: svc}, nil
}
