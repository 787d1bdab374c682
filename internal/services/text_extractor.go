package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// TextExtractor turns an uploaded resume into normalized plain text.
type TextExtractor interface {
	Extract(data []byte, fileName string) (string, error)
	ExtractFile(filePath, originalName string) (string, error)
	IsSupported(fileName string) bool
	FileType(fileName string) string
}

var supportedExtensions = map[string]string{
	".pdf":  "PDF",
	".docx": "Word (DOCX)",
	".doc":  "Word (DOC)",
	".txt":  "Plain Text",
	".rtf":  "Rich Text Format",
	".odt":  "OpenDocument Text",
}

// SupportedTypesLabel is shown to users when an upload is rejected.
const SupportedTypesLabel = "PDF, DOCX, DOC, TXT, RTF, ODT"

type textExtractor struct {
	logger *zap.Logger
}

func NewTextExtractor(logger *zap.Logger) TextExtractor {
	return &textExtractor{logger: logger}
}

func extensionOf(fileName string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(fileName)))
}

func (t *textExtractor) IsSupported(fileName string) bool {
	_, ok := supportedExtensions[extensionOf(fileName)]
	return ok
}

func (t *textExtractor) FileType(fileName string) string {
	if name, ok := supportedExtensions[extensionOf(fileName)]; ok {
		return name
	}
	return "Unknown"
}

func (t *textExtractor) ExtractFile(filePath, originalName string) (string, error) {
	if !t.IsSupported(originalName) {
		return "", unsupportedTypeError(originalName)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", newError(ErrorUnreadable, "the uploaded file could not be read", fmt.Errorf("read %s: %w", filePath, err))
	}

	return t.Extract(data, originalName)
}

func (t *textExtractor) Extract(data []byte, fileName string) (string, error) {
	ext := extensionOf(fileName)
	if _, ok := supportedExtensions[ext]; !ok {
		return "", unsupportedTypeError(fileName)
	}

	if len(data) == 0 {
		if ext == ".txt" || ext == ".rtf" {
			return "", nil
		}
		return "", newError(ErrorUnreadable, "the uploaded file is empty", nil)
	}

	raw, err := t.parse(ext, data)
	if err != nil {
		t.logger.Warn("text extraction failed",
			zap.String("file", fileName),
			zap.String("type", t.FileType(fileName)),
			zap.Error(err),
		)
		return "", newError(ErrorParseFailure, fmt.Sprintf("failed to parse %s document", t.FileType(fileName)), err)
	}

	text := Normalize(raw)
	if text == "" && ext != ".txt" {
		return "", newError(ErrorParseFailure, fmt.Sprintf("no text content found in %s document", t.FileType(fileName)), nil)
	}

	t.logger.Info("extracted text",
		zap.String("file", fileName),
		zap.String("type", t.FileType(fileName)),
		zap.Int("characters", len(text)),
	)

	return text, nil
}

func (t *textExtractor) parse(ext string, data []byte) (text string, err error) {
	// Third-party parsers may panic on malformed input.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	switch ext {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		text, _, err = docconv.ConvertDocx(bytes.NewReader(data))
		return text, err
	case ".odt":
		text, _, err = docconv.ConvertODT(bytes.NewReader(data))
		return text, err
	case ".doc":
		return extractDoc(data)
	case ".rtf":
		return stripRTF(data)
	case ".txt":
		return strings.ToValidUTF8(strings.TrimPrefix(string(data), "\ufeff"), "\uFFFD"), nil
	}

	return "", fmt.Errorf("no parser for %s", ext)
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text content found in PDF")
	}

	return text, nil
}

func unsupportedTypeError(fileName string) *Error {
	return newError(
		ErrorUnsupportedType,
		fmt.Sprintf("Unsupported file type. Supported: %s", SupportedTypesLabel),
		fmt.Errorf("extension %q of %q", extensionOf(fileName), fileName),
	)
}

// Normalize collapses every whitespace run (newlines included) into a single
// space, drops the remaining control characters and trims the result.
func Normalize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case r < 0x20:
			return -1
		default:
			return r
		}
	}, text)

	return strings.Join(strings.Fields(cleaned), " ")
}
