package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"
)

// ooxmlPart is one file inside an OOXML package.
type ooxmlPart struct {
	name string
	data []byte
}

// writeOOXML assembles the package zip. Entry timestamps come from the
// report so the same input always produces the same bytes.
func writeOOXML(parts []ooxmlPart, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, part := range parts {
		header := &zip.FileHeader{
			Name:     part.name,
			Method:   zip.Deflate,
			Modified: modified.UTC(),
		}
		dst, err := w.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", part.name, err)
		}
		if _, err := dst.Write(part.data); err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", part.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// corePropsXML is the shared docProps/core.xml for both DOCX and XLSX.
func corePropsXML(title string, generatedAt time.Time) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + xmlEscape(title) + `</dc:title>` +
		`<dc:creator>Joel</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + isoTime(generatedAt) + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + isoTime(generatedAt) + `</dcterms:modified>` +
		`</cp:coreProperties>`)
}
