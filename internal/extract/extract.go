// Package extract pulls plain text out of uploaded contract files. The
// format is chosen by file extension: PDF and DOCX are parsed, anything
// else is treated as plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Text extracts contract text from file content based on the filename's
// extension.
func Text(content []byte, filename string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return fromPDF(content)
	case "docx":
		return fromDOCX(content)
	default:
		return fromPlainText(content), nil
	}
}

// fromPDF concatenates the plain text of every page.
func fromPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting pdf page %d: %w", i, err)
		}
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// docx body XML, reduced to the elements that carry text. Paragraphs
// become lines; runs within a paragraph concatenate.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

// fromDOCX reads word/document.xml out of the zip container and joins
// paragraph texts with newlines.
func fromDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("opening docx container: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx container has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("opening docx document: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading docx document: %w", err)
	}

	var parsed docxDocument
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parsing docx document: %w", err)
	}

	lines := make([]string, 0, len(parsed.Body.Paragraphs))
	for _, p := range parsed.Body.Paragraphs {
		var line strings.Builder
		for _, r := range p.Runs {
			line.WriteString(r.Text)
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n"), nil
}

// fromPlainText decodes bytes as UTF-8, falling back to Latin-1 when the
// content is not valid UTF-8. Latin-1 maps every byte to the code point of
// the same value, so the fallback never fails.
func fromPlainText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes)
}
