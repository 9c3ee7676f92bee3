package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
)

const docxBodyPart = "word/document.xml"

var errUnreadableDOCX = fmt.Errorf("%w: the DOCX file could not be read", app_errors.ErrValidation)

// fromDOCX reads the main document part of a Word file. Paragraphs become
// lines; tabs and breaks are kept.
func fromDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errUnreadableDOCX
	}

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == docxBodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", errUnreadableDOCX
	}

	rc, err := part.Open()
	if err != nil {
		slog.Warn("Failed to open DOCX body", "error", err)
		return "", errUnreadableDOCX
	}
	defer func() { _ = rc.Close() }()

	return docxText(rc)
}

// docxText walks WordprocessingML and keeps the content of w:t runs.
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Failed to parse DOCX body", "error", err)
			return "", errUnreadableDOCX
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return collapseBlankLines(b.String()), nil
}
