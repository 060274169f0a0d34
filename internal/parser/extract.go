package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/codewithboateng/lexcheck/internal/ir"
)

// Extract converts raw file bytes to a Document, choosing the extractor by
// the extension of name.
func Extract(name string, data []byte) (ir.Document, error) {
	ext := strings.ToLower(filepath.Ext(name))
	doc := ir.Document{Source: name, Format: strings.TrimPrefix(ext, ".")}

	switch ext {
	case ".txt", ".md":
		doc.Text = strings.ToValidUTF8(string(data), "\uFFFD")
	case ".doc":
		// Legacy binary Word: keep whatever decodes as text.
		doc.Text = strings.ToValidUTF8(string(data), "")
	case ".docx":
		text, err := docxText(data)
		if err != nil {
			return ir.Document{}, fmt.Errorf("docx: %w", err)
		}
		doc.Text = text
	case ".html", ".htm":
		res, err := convertHTML(data)
		if err != nil {
			return ir.Document{}, fmt.Errorf("html: %w", err)
		}
		doc.Title, doc.Text = res.Title, res.Markdown
	default:
		return ir.Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return doc, nil
}

// docxText joins the text of every paragraph in word/document.xml with newlines.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return paragraphs(io.LimitReader(rc, maxFileBytes*4))
	}
	return "", fmt.Errorf("word/document.xml not found")
}

func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    []string
		cur    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				cur.WriteByte('\t')
			case "br", "cr":
				cur.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out = append(out, cur.String())
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return strings.Join(out, "\n"), nil
}
