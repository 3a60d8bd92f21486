package services

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	MimeTypePDF  = "application/pdf"
	MimeTypeText = "text/plain"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// NormalizeMimeType strips parameters such as charset and lowercases the media type.
func NormalizeMimeType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func IsSupportedMimeType(contentType string) bool {
	switch NormalizeMimeType(contentType) {
	case MimeTypePDF, MimeTypeText:
		return true
	default:
		return false
	}
}

type TextExtractor interface {
	Extract(data []byte, contentType string) (string, error)
}

type textExtractor struct {
	log *zap.Logger
}

func NewTextExtractor(log *zap.Logger) TextExtractor {
	return &textExtractor{log: log.Named("extractor")}
}

// Extract implements TextExtractor. An empty result is not an error; callers
// decide whether empty text is acceptable.
func (e *textExtractor) Extract(data []byte, contentType string) (string, error) {
	switch NormalizeMimeType(contentType) {
	case MimeTypeText:
		return extractPlainText(data), nil
	case MimeTypePDF:
		return e.extractPDF(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
}

func extractPlainText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(data)
}

func (e *textExtractor) extractPDF(data []byte) (string, error) {
	text, err := readPDFText(data)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	e.log.Debug("primary pdf reader produced no text, trying mupdf", zap.Error(err))

	fallback, ferr := readPDFTextMuPDF(data)
	if ferr != nil {
		if err != nil {
			return "", fmt.Errorf("failed to parse PDF: %w", errors.Join(err, ferr))
		}
		return "", fmt.Errorf("failed to parse PDF: %w", ferr)
	}

	return fallback, nil
}

func readPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		b.WriteString(text)
		b.WriteString("\n\n")
	}

	return b.String(), nil
}

func readPDFTextMuPDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF with mupdf: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}

	return b.String(), nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
