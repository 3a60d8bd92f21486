package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/services"
)

type cvFile struct {
	Path        string
	ContentType string
}

type ingestSummary struct {
	succeeded int
	failed    int
}

func contentTypeFor(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return services.MimeTypePDF, true
	case ".txt":
		return services.MimeTypeText, true
	default:
		return "", false
	}
}

// collectFiles lists the supported files under dir in lexical order.
func collectFiles(dir string, recursive bool) ([]cvFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []cvFile
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if contentType, ok := contentTypeFor(path); ok {
			files = append(files, cvFile{Path: path, ContentType: contentType})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func indexAll(ctx context.Context, indexer services.CVIndexer, files []cvFile, log *zap.Logger) ingestSummary {
	var summary ingestSummary

	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			log.Error("❌ failed to read file", zap.String("path", f.Path), zap.Error(err))
			summary.failed++
			continue
		}

		vectorID, err := indexer.Index(ctx, filepath.Base(f.Path), f.ContentType, data)
		if err != nil {
			log.Error("❌ failed to index file", zap.String("path", f.Path), zap.Error(err))
			summary.failed++
			continue
		}

		log.Info("📄 indexed", zap.String("path", f.Path), zap.String("vectorId", vectorID))
		summary.succeeded++
	}

	return summary
}
