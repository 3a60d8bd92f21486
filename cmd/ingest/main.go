package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/bootstrap"
	"alfredoptarigan/cv-screener/internal/config"
	"alfredoptarigan/cv-screener/internal/logger"
	"alfredoptarigan/cv-screener/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dir       string
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index a directory of PDF and TXT CVs into the vector store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()

			log, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer log.Sync()

			return ingest(cmd.Context(), cfg, log, dir, recursive)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the CV files")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "descend into subdirectories")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func ingest(ctx context.Context, cfg *config.Config, log *zap.Logger, dir string, recursive bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := collectFiles(dir, recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn("⚠️ no PDF or TXT files found", zap.String("dir", dir))
		return nil
	}

	components, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer components.Close(log)

	indexer := services.NewCVIndexer(
		services.NewTextExtractor(log),
		components.Embedder,
		components.VectorStore,
		components.Storage,
		log,
	)

	log.Info("🚀 starting ingestion", zap.String("dir", dir), zap.Int("files", len(files)))
	summary := indexAll(ctx, indexer, files, log)

	log.Info(strings.Repeat("=", 60))
	log.Info("📊 ingestion summary", zap.Int("succeeded", summary.succeeded), zap.Int("failed", summary.failed))

	if summary.failed > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", summary.failed, len(files))
	}
	log.Info("✅ all files ingested")
	return nil
}
