package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pyhub-apps/pdfdiff-golang/internal/config"
	"github.com/pyhub-apps/pdfdiff-golang/internal/logger"
	"github.com/pyhub-apps/pdfdiff-golang/internal/metrics"
	"github.com/pyhub-apps/pdfdiff-golang/internal/report"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/batch"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/compare"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/output"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the configuration")
	oldDir := flag.String("old", "", "directory with the old documents (overrides config)")
	newDir := flag.String("new", "", "directory with the new documents (overrides config)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	workers := flag.Int("workers", 0, "number of parallel comparisons (overrides config)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to load %s: %v", *envFile, err)
	}
	if *configPath == "" {
		*configPath = os.Getenv("PDFDIFF_CONFIG")
	}

	cfg, err := loadConfig(*configPath, *oldDir, *newDir, *outDir, *workers)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync() //nolint:errcheck

	if err := run(cfg, l); err != nil {
		l.Error("comparison failed", zap.Error(err))
		l.Sync() //nolint:errcheck
		os.Exit(1)
	}
}

func loadConfig(path, oldDir, newDir, outDir string, workers int) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if oldDir != "" {
		cfg.OldDocumentsDir = oldDir
	}
	if newDir != "" {
		cfg.NewDocumentsDir = newDir
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if workers > 0 {
		cfg.WorkerCount = workers
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(cfg config.Config, l *zap.Logger) error {
	l.Info("starting PDF comparison",
		zap.String("old", cfg.OldDocumentsDir),
		zap.String("new", cfg.NewDocumentsDir),
		zap.String("output", cfg.OutputDir),
		zap.Float64("render_scale", cfg.RenderScale),
	)

	assembler := output.NewAssembler(output.Options{
		Dir:         cfg.OutputDir,
		JPEGQuality: cfg.Output.JPEGQuality,
		PDF:         cfg.PDFOutput(),
	}, l.Named("output"))
	if err := assembler.Reset(); err != nil {
		return fmt.Errorf("reset output: %w", err)
	}

	pairs, err := batch.Discover(cfg.OldDocumentsDir, cfg.NewDocumentsDir)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		l.Warn("no PDF files found",
			zap.String("old", cfg.OldDocumentsDir),
			zap.String("new", cfg.NewDocumentsDir),
		)
	}

	comparer, err := compare.NewComparer(compare.Options{
		Scale:            cfg.RenderScale,
		Tint:             color.RGBA{uint8(cfg.TintColor[0]), uint8(cfg.TintColor[1]), uint8(cfg.TintColor[2]), 255},
		Opacity:          cfg.Opacity(),
		LabelFontSize:    cfg.LabelFontSize,
		LineTolerance:    cfg.LineTolerance,
		WordXTolerance:   cfg.WordXTolerance,
		WordYTolerance:   cfg.WordYTolerance,
		HighlightRegions: cfg.HighlightRegions,
	}, pdf.Open, assembler, l.Named("compare"))
	if err != nil {
		return err
	}

	m := metrics.NewBatch()
	orch := batch.NewOrchestrator(comparer, batch.Options{
		WorkerCount: cfg.WorkerCount,
		BatchSize:   cfg.BatchSize,
	}, l.Named("batch"), m)

	res := orch.Run(pairs)
	res.Summary(l)

	if cfg.MetricsFile != "" {
		if err := m.WriteToTextfile(cfg.MetricsFile); err != nil {
			l.Warn("metrics not written", zap.Error(err))
		}
	}

	if cfg.ReportDB != "" {
		store, err := report.Open(cfg.ReportDB)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveRun(res); err != nil {
			return err
		}
		l.Info("run report saved", zap.String("db", cfg.ReportDB), zap.String("run_id", res.RunID.String()))
	}
	return nil
}
