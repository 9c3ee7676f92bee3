package extract

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	app_errors "github.com/Jaydeep9963/M32-BIZ-PILOT/internal/errors"
)

var errUnreadablePDF = fmt.Errorf("%w: the PDF could not be read", app_errors.ErrValidation)

// fromPDF returns the plain text of every page in order. Scanned PDFs have no
// text layer and come back empty.
func fromPDF(data []byte) (text string, err error) {
	// The reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("PDF reader panicked", "panic", r)
			text, err = "", errUnreadablePDF
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("Failed to open PDF", "error", err)
		return "", errUnreadablePDF
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		slog.Warn("Failed to extract PDF text", "error", err)
		return "", errUnreadablePDF
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return collapseBlankLines(string(raw)), nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
