package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildPDF writes a single page PDF that shows text with the Helvetica base font.
func buildPDF(t *testing.T, text string) []byte {
	t.Helper()

	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<w:p><w:r><w:t>%s</w:t></w:r></w:p>", p)
	}

	return buildZip(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() +
			`</w:body></w:document>`,
	})
}

func buildODT(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<text:p>%s</text:p>", p)
	}

	return buildZip(t, map[string]string{
		"mimetype": "application/vnd.oasis.opendocument.text",
		"content.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">` +
			`<office:body><office:text>` + body.String() + `</office:text></office:body></office:document-content>`,
	})
}

func newTestExtractor() TextExtractor {
	return NewTextExtractor(zap.NewNop())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapses whitespace", in: "  Senior\n\n  Go\tengineer  ", want: "Senior Go engineer"},
		{name: "strips control characters", in: "Go\x00lang\x07 rocks", want: "Golang rocks"},
		{name: "control between spaces", in: "a \x01 b", want: "a b"},
		{name: "crlf", in: "line one\r\nline two", want: "line one line two"},
		{name: "empty", in: " \n\t ", want: ""},
		{name: "unicode kept", in: "café  résumé", want: "café résumé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, Normalize(got))
		})
	}
}

func TestTextExtractor_IsSupported(t *testing.T) {
	ex := newTestExtractor()

	for _, name := range []string{"cv.pdf", "CV.PDF", "cv.docx", "cv.doc", "cv.txt", "cv.rtf", "cv.odt"} {
		require.True(t, ex.IsSupported(name), name)
	}
	for _, name := range []string{"cv.exe", "cv", "cv.pdf.zip", ""} {
		require.False(t, ex.IsSupported(name), name)
	}

	require.Equal(t, "PDF", ex.FileType("resume.pdf"))
	require.Equal(t, "Unknown", ex.FileType("resume.xyz"))
}

func TestTextExtractor_Txt(t *testing.T) {
	ex := newTestExtractor()

	text, err := ex.Extract([]byte("\ufeffJava  developer\nSpring\x00 Boot\n"), "resume.txt")
	require.NoError(t, err)
	require.Equal(t, "Java developer Spring Boot", text)

	text, err = ex.Extract([]byte{}, "empty.txt")
	require.NoError(t, err)
	require.Empty(t, text)

	text, err = ex.Extract([]byte("ok \xff bytes"), "latin.txt")
	require.NoError(t, err)
	require.Equal(t, "ok \uFFFD bytes", text)
}

func TestTextExtractor_PDF(t *testing.T) {
	ex := newTestExtractor()

	text, err := ex.Extract(buildPDF(t, "Hello Resume"), "resume.pdf")
	require.NoError(t, err)
	require.Contains(t, text, "Hello Resume")
	require.Equal(t, text, Normalize(text))
}

func TestTextExtractor_CorruptPDF(t *testing.T) {
	ex := newTestExtractor()

	_, err := ex.Extract([]byte("this is not a pdf at all"), "resume.pdf")
	require.Error(t, err)
	require.Equal(t, ErrorParseFailure, CodeOf(err))
}

func TestTextExtractor_Docx(t *testing.T) {
	ex := newTestExtractor()

	text, err := ex.Extract(buildDocx(t, "Senior Java Engineer", "Spring Boot and Kafka"), "resume.docx")
	require.NoError(t, err)
	require.Contains(t, text, "Senior Java Engineer")
	require.Contains(t, text, "Spring Boot and Kafka")
	require.NotContains(t, text, "\n")
}

func TestTextExtractor_ODT(t *testing.T) {
	ex := newTestExtractor()

	text, err := ex.Extract(buildODT(t, "Platform engineer", "Kubernetes"), "resume.odt")
	require.NoError(t, err)
	require.Contains(t, text, "Platform engineer")
	require.Contains(t, text, "Kubernetes")
}

func TestTextExtractor_CorruptDocx(t *testing.T) {
	ex := newTestExtractor()

	_, err := ex.Extract([]byte("PK not really a zip"), "resume.docx")
	require.Error(t, err)
	require.Equal(t, ErrorParseFailure, CodeOf(err))
}

func TestTextExtractor_RTF(t *testing.T) {
	ex := newTestExtractor()

	doc := `{\rtf1\ansi{\fonttbl{\f0 Arial;}}{\*\generator Writer;}\f0\pard Hello \b World\b0\par caf\'e9 \u8364?}`
	text, err := ex.Extract([]byte(doc), "resume.rtf")
	require.NoError(t, err)
	require.Equal(t, "Hello World café €", text)
}

func TestTextExtractor_RTFCodePage(t *testing.T) {
	ex := newTestExtractor()

	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "windows-1252 punctuation",
			doc:  `{\rtf1\ansi\ansicpg1252 I don\'92t stop \'93shipping\'94 \'96 ever\'85\par}`,
			want: "I don’t stop “shipping” – ever…",
		},
		{
			name: "ansi without code page",
			doc:  `{\rtf1\ansi Smith\'92s r\'e9sum\'e9}`,
			want: "Smith’s résumé",
		},
		{
			name: "cyrillic code page",
			doc:  `{\rtf1\ansi\ansicpg1251 \'cf\'f0\'e8\'e2\'e5\'f2}`,
			want: "Привет",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := ex.Extract([]byte(tc.doc), "resume.rtf")
			require.NoError(t, err)
			require.Equal(t, tc.want, text)
			for _, r := range text {
				require.False(t, r >= 0x80 && r <= 0x9f, "C1 control %U in %q", r, text)
			}
		})
	}
}

func TestTextExtractor_InvalidRTF(t *testing.T) {
	ex := newTestExtractor()

	_, err := ex.Extract([]byte("plain text pretending"), "resume.rtf")
	require.Equal(t, ErrorParseFailure, CodeOf(err))
}

func TestTextExtractor_Unsupported(t *testing.T) {
	ex := newTestExtractor()

	_, err := ex.Extract([]byte("MZ"), "virus.exe")
	require.Equal(t, ErrorUnsupportedType, CodeOf(err))
	require.Contains(t, MessageOf(err), SupportedTypesLabel)
}

func TestTextExtractor_EmptyBinary(t *testing.T) {
	ex := newTestExtractor()

	_, err := ex.Extract(nil, "resume.pdf")
	require.Equal(t, ErrorUnreadable, CodeOf(err))
}

func TestTextExtractor_ExtractFile(t *testing.T) {
	ex := newTestExtractor()
	dir := t.TempDir()

	path := filepath.Join(dir, "resume_upload.txt")
	require.NoError(t, os.WriteFile(path, []byte("Go\n\nDeveloper"), 0o600))

	text, err := ex.ExtractFile(path, "my resume.txt")
	require.NoError(t, err)
	require.Equal(t, "Go Developer", text)

	_, err = ex.ExtractFile(filepath.Join(dir, "missing.txt"), "missing.txt")
	require.Equal(t, ErrorUnreadable, CodeOf(err))
}
