package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

type DocType string

const (
	DocTypePDF     DocType = "pdf"
	DocTypeWord    DocType = "word"
	DocTypeText    DocType = "text"
	DocTypeUnknown DocType = "unknown"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptDocument   = errors.New("could not extract document content")
)

var logger = logger_i.NewLogger("ingest")

func DetectDocType(path string) DocType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return DocTypePDF
	case ".docx", ".odt", ".rtf":
		return DocTypeWord
	case ".txt", ".md":
		return DocTypeText
	default:
		return DocTypeUnknown
	}
}

// ExtractText pulls the full plain text out of an uploaded document. The
// result is one string - chunking decides page boundaries itself, classical
// texts don't respect them anyway.
func ExtractText(path string) (string, error) {
	switch DetectDocType(path) {
	case DocTypePDF:
		return extractPDF(path)
	case DocTypeWord:
		return extractWithCat(path)
	case DocTypeText:
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening pdf file", "path", path, "error", err)
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	var sb strings.Builder
	numPages := f.NumPage()
	extracted := 0
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
		extracted++
	}

	if extracted == 0 && numPages > 0 {
		return "", fmt.Errorf("%w: no readable pages", ErrCorruptDocument)
	}
	return sb.String(), nil
}

// cat reads .odt, .docx, .rtf and plaintext files
func extractWithCat(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc", "path", path, "error", err)
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return text, nil
}

// some pdfs hang GetPlainText forever, so each page gets a deadline
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		logger.Error("pageExtract", "timeout", page)
		return "", errors.New("timeout")
	}
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// CleanText normalizes extracted text before chunking: unified newlines,
// blank runs collapsed, surrounding whitespace trimmed.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
