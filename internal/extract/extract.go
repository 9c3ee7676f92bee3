// Package extract turns uploaded files into plain text for the chat context.
package extract

import (
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
)

const (
	pdfMediaType  = "application/pdf"
	docxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var plainTextExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".tsv":      true,
	".json":     true,
	".log":      true,
}

// Text returns the text content of an uploaded file. The format is chosen by
// extension, then by content type. Unsupported or binary files fail with
// app_errors.ErrValidation.
func Text(filename, contentType string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mediaType, _, _ := mime.ParseMediaType(contentType)

	var text string
	var err error
	switch {
	case ext == ".pdf" || mediaType == pdfMediaType:
		text, err = fromPDF(data)
	case ext == ".docx" || mediaType == docxMediaType:
		text, err = fromDOCX(data)
	case ext == ".html" || ext == ".htm" || mediaType == "text/html":
		text, err = fromHTML(data)
	case plainTextExtensions[ext] || strings.HasPrefix(mediaType, "text/"):
		text, err = fromPlainText(data)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", app_errors.ErrValidation, filename)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %q contains no text", app_errors.ErrValidation, filename)
	}
	return text, nil
}

func fromPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: file is not valid UTF-8 text", app_errors.ErrValidation)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

// fromHTML drops scripts and styles and renders the rest as Markdown so
// headings, lists and links survive.
func fromHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		slog.Warn("Failed to parse HTML upload", "error", err)
		return "", fmt.Errorf("%w: the HTML file could not be read", app_errors.ErrValidation)
	}
	doc.Find("script, style, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("head").Remove()

	body, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(body)
	if err != nil {
		// Plain text is still useful when the converter chokes.
		markdown = doc.Text()
	}
	markdown = strings.TrimSpace(markdown)
	for strings.Contains(markdown, "\n\n\n") {
		markdown = strings.ReplaceAll(markdown, "\n\n\n", "\n\n")
	}

	if title != "" && !strings.Contains(markdown, title) {
		markdown = "# " + title + "\n\n" + markdown
	}
	return markdown, nil
}
