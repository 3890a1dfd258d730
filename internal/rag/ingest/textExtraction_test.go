package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected DocType
	}{
		{"伤寒论.pdf", DocTypePDF},
		{"DOC.DOCX", DocTypeWord},
		{"notes.rtf", DocTypeWord},
		{"金匮要略.txt", DocTypeText},
		{"readme.md", DocTypeText},
		{"image.png", DocTypeUnknown},
		{"noextension", DocTypeUnknown},
	}

	for _, tt := range tests {
		if got := DetectDocType(tt.path); got != tt.expected {
			t.Errorf("DetectDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestExtractText_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "原文.txt")
	content := "太阳之为病，脉浮，头项强痛而恶寒。"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractText(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != content {
		t.Errorf("got %q, want %q", got, content)
	}
}

func TestExtractText_UnsupportedFormat(t *testing.T) {
	_, err := ExtractText("scan.png")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestExtractText_MissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("got %v, want ErrCorruptDocument", err)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"windows newlines", "第一行\r\n第二行", "第一行\n第二行"},
		{"blank run collapsed", "甲\n\n\n\n乙", "甲\n\n乙"},
		{"trimmed", "  \n太阳病\n  ", "太阳病"},
		{"already clean", "桂枝汤主之", "桂枝汤主之"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
