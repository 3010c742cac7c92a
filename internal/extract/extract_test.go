package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_DocxParagraphs(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>Primeira linha</w:t></w:r></w:p><w:p><w:r><w:t>Segunda linha</w:t></w:r></w:p></w:body></w:document>`)

	res, err := ExtractTextFromBytes(context.Background(), data, mimeDOCX, "doc.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if res.Method != MethodDOCX {
		t.Fatalf("method = %q, want %q", res.Method, MethodDOCX)
	}
	if !strings.Contains(res.Text, "Primeira linha") || !strings.Contains(res.Text, "Segunda linha") {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if !strings.Contains(res.Text, "\n") {
		t.Fatalf("expected paragraph break in %q", res.Text)
	}
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>conteudo</w:t></w:r></w:p></w:body></w:document>`)

	res, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "test.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if res.Method != MethodDOCX {
		t.Fatalf("method = %q, want %q", res.Method, MethodDOCX)
	}
}

func TestExtractTextFromBytes_PlainText(t *testing.T) {
	res, err := ExtractTextFromBytes(context.Background(), []byte("objetivo do projeto"), "text/plain", "notes.txt")
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	if res.Method != MethodText {
		t.Fatalf("method = %q, want %q", res.Method, MethodText)
	}
	if res.Text != "objetivo do projeto" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestExtractTextFromBytes_MarkdownByExtension(t *testing.T) {
	res, err := ExtractTextFromBytes(context.Background(), []byte("# Plano\ncorpo"), "", "plan.md")
	if err != nil {
		t.Fatalf("extract markdown: %v", err)
	}
	if res.Method != MethodText {
		t.Fatalf("method = %q, want %q", res.Method, MethodText)
	}
}

func TestExtractTextFromBytes_RawFallbackOnUnknownMime(t *testing.T) {
	res, err := ExtractTextFromBytes(context.Background(), []byte("texto bruto legivel"), "application/x-unknown", "data.bin")
	if err != nil {
		t.Fatalf("expected raw fallback, got error: %v", err)
	}
	if res.Method != MethodRaw {
		t.Fatalf("method = %q, want %q", res.Method, MethodRaw)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte{0x00, 0x01, 0x02, 0xff}); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for zip")
	}
	if !strings.Contains(err.Error(), "unsupported mime type") {
		t.Fatalf("unexpected error: %v", err)
	}
}
