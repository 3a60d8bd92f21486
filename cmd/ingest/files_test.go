package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-screener/internal/services"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "Jane")
	writeFile(t, filepath.Join(dir, "a.PDF"), "%PDF")
	writeFile(t, filepath.Join(dir, "photo.png"), "png")
	writeFile(t, filepath.Join(dir, "nested", "c.txt"), "John")

	files, err := collectFiles(dir, false)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "a.PDF"), files[0].Path)
	assert.Equal(t, services.MimeTypePDF, files[0].ContentType)
	assert.Equal(t, services.MimeTypeText, files[1].ContentType)

	files, err = collectFiles(dir, true)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	_, err = collectFiles(filepath.Join(dir, "b.txt"), false)
	assert.Error(t, err)
}

type stubIndexer struct {
	seen []string
}

func (s *stubIndexer) Index(_ context.Context, filename, _ string, data []byte) (string, error) {
	s.seen = append(s.seen, filename)
	if len(data) == 0 {
		return "", services.ErrEmptyText
	}
	return "id-" + filename, nil
}

func TestIndexAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.txt"), "Jane Doe")
	writeFile(t, filepath.Join(dir, "empty.txt"), "")

	files := []cvFile{
		{Path: filepath.Join(dir, "empty.txt"), ContentType: services.MimeTypeText},
		{Path: filepath.Join(dir, "missing.txt"), ContentType: services.MimeTypeText},
		{Path: filepath.Join(dir, "ok.txt"), ContentType: services.MimeTypeText},
	}

	idx := &stubIndexer{}
	summary := indexAll(context.Background(), idx, files, zap.NewNop())
	assert.Equal(t, 1, summary.succeeded)
	assert.Equal(t, 2, summary.failed)
	assert.Equal(t, []string{"empty.txt", "ok.txt"}, idx.seen)
}
