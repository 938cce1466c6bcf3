package source

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPDFText bounds the text extracted from one document.
const maxPDFText = 1 << 20

// PDFText extracts the plain text of a PDF file, page after page. Pages that cannot be read
// are skipped.
func PDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		if sb.Len() > maxPDFText {
			break
		}
	}
	return sb.String(), nil
}
